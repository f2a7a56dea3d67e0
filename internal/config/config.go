package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Mailer    MailerConfig    `yaml:"mailer"`
	Identity  IdentityConfig  `yaml:"identity"`
	Limits    LimitsConfig    `yaml:"limits"`
	Screening ScreeningConfig `yaml:"screening"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// PublicBaseURL is the externally reachable URL, used when
	// building activation links.
	PublicBaseURL string `yaml:"public_base_url"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds Redis settings for the distributed rate limiter.
// When URL is empty the service falls back to the in-process limiter.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// MailerConfig holds outbound email provider settings
type MailerConfig struct {
	Provider  string `yaml:"provider"` // "resend" or "ses"
	FromEmail string `yaml:"from_email"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
}

// IdentityConfig selects how submissions are grouped into origins.
type IdentityConfig struct {
	Mode string `yaml:"mode"` // "domain" or "form"
}

// LimitsConfig holds sliding-window rate limit settings
type LimitsConfig struct {
	IPPerHour              int `yaml:"ip_per_hour"`
	IdentityPerHour        int `yaml:"identity_per_hour"`
	ActivationPerDay       int `yaml:"activation_per_day"`
	JanitorIntervalMinutes int `yaml:"janitor_interval_minutes"`
}

// ScreeningConfig holds spam and disposable-address screening settings
type ScreeningConfig struct {
	DisposableListPath string `yaml:"disposable_list_path"`
}

// CORSConfig holds cross-origin settings for the submit endpoint
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.PublicBaseURL == "" {
		cfg.Server.PublicBaseURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Mailer.Provider == "" {
		cfg.Mailer.Provider = "resend"
	}
	if cfg.Mailer.Region == "" {
		cfg.Mailer.Region = "us-west-2"
	}
	if cfg.Identity.Mode == "" {
		cfg.Identity.Mode = "domain"
	}
	if cfg.Limits.IPPerHour == 0 {
		cfg.Limits.IPPerHour = 5
	}
	if cfg.Limits.IdentityPerHour == 0 {
		cfg.Limits.IdentityPerHour = 10
	}
	if cfg.Limits.ActivationPerDay == 0 {
		cfg.Limits.ActivationPerDay = 3
	}
	if cfg.Limits.JanitorIntervalMinutes == 0 {
		cfg.Limits.JanitorIntervalMinutes = 10
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	var cfg *Config
	if _, err := os.Stat(path); err == nil {
		cfg, err = Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = &Config{}
		applyDefaults(cfg)
	}

	// Override with environment variables if present
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.Server.PublicBaseURL = v
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if v := os.Getenv("MAILER_PROVIDER"); v != "" {
		cfg.Mailer.Provider = v
	}
	if v := os.Getenv("FROM_EMAIL"); v != "" {
		cfg.Mailer.FromEmail = v
	}
	if apiKey := os.Getenv("RESEND_API_KEY"); apiKey != "" {
		cfg.Mailer.APIKey = apiKey
	}
	if accessKey := os.Getenv("AWS_SES_ACCESS_KEY"); accessKey != "" {
		cfg.Mailer.AccessKey = accessKey
	}
	if secretKey := os.Getenv("AWS_SES_SECRET_KEY"); secretKey != "" {
		cfg.Mailer.SecretKey = secretKey
	}
	if region := os.Getenv("AWS_SES_REGION"); region != "" {
		cfg.Mailer.Region = region
	}
	if v := os.Getenv("IDENTITY_MODE"); v != "" {
		cfg.Identity.Mode = v
	}
	if v := os.Getenv("DISPOSABLE_LIST_PATH"); v != "" {
		cfg.Screening.DisposableListPath = v
	}

	return cfg, nil
}
