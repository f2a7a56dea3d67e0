package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/contactfast/relay/internal/analytics"
	"github.com/contactfast/relay/internal/api"
	"github.com/contactfast/relay/internal/config"
	"github.com/contactfast/relay/internal/identity"
	"github.com/contactfast/relay/internal/mailer"
	"github.com/contactfast/relay/internal/ratelimit"
	"github.com/contactfast/relay/internal/relay"
	"github.com/contactfast/relay/internal/repository/postgres"
	"github.com/contactfast/relay/internal/screening"
	"github.com/contactfast/relay/internal/verification"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}
	if cfg.Database.URL == "" {
		log.Fatal("database URL is required (config database.url or DATABASE_URL)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("[db] connected")

	repo := postgres.NewOriginRepo(db)

	// Rate limiter: Redis when configured, otherwise in-process with a
	// janitor sweeping idle keys.
	var limiter ratelimit.Limiter
	if cfg.Redis.URL != "" {
		redisLimiter, err := ratelimit.NewRedisLimiterFromURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		limiter = redisLimiter
		log.Println("[ratelimit] using redis backend")
	} else {
		memLimiter := ratelimit.NewMemoryLimiter()
		memLimiter.StartJanitor(ctx,
			time.Duration(cfg.Limits.JanitorIntervalMinutes)*time.Minute,
			24*time.Hour)
		limiter = memLimiter
		log.Println("[ratelimit] using in-memory backend")
	}

	// Screening
	screen := screening.New()
	if cfg.Screening.DisposableListPath != "" {
		screen, err = screening.NewFromFile(cfg.Screening.DisposableListPath)
		if err != nil {
			log.Fatalf("Failed to load disposable domain list: %v", err)
		}
		log.Printf("[screening] disposable list loaded from %s", cfg.Screening.DisposableListPath)
	}

	// Identity mode decides both key derivation and whether new origins
	// need activation before mail flows.
	resolver := identity.ForMode(cfg.Identity.Mode)
	autoVerify := cfg.Identity.Mode != "form"
	verifier := verification.NewService(repo, autoVerify)
	log.Printf("[identity] mode=%s auto_verify=%v", cfg.Identity.Mode, autoVerify)

	// Outbound mail
	sender, err := mailer.New(ctx, mailer.ProviderConfig{
		Provider:      cfg.Mailer.Provider,
		ResendAPIKey:  cfg.Mailer.APIKey,
		ResendBaseURL: cfg.Mailer.BaseURL,
		AWSRegion:     cfg.Mailer.Region,
		AWSAccessKey:  cfg.Mailer.AccessKey,
		AWSSecretKey:  cfg.Mailer.SecretKey,
	})
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}
	templates, err := mailer.NewTemplates()
	if err != nil {
		log.Fatalf("Failed to parse mail templates: %v", err)
	}
	log.Printf("[mailer] provider=%s from=%s", cfg.Mailer.Provider, cfg.Mailer.FromEmail)

	limits := relay.Limits{
		IPLimit:          cfg.Limits.IPPerHour,
		IPWindow:         time.Hour,
		IdentityLimit:    cfg.Limits.IdentityPerHour,
		IdentityWindow:   time.Hour,
		ActivationLimit:  cfg.Limits.ActivationPerDay,
		ActivationWindow: 24 * time.Hour,
	}

	relaySvc := relay.NewService(limiter, screen, resolver, verifier,
		sender, templates, limits, cfg.Mailer.FromEmail, cfg.Server.PublicBaseURL)

	handlers := api.NewHandlers(relaySvc, verifier, analytics.NewService(repo))
	router := api.SetupRoutes(handlers, cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	// Cancel background tasks
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
