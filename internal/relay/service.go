package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contactfast/relay/internal/domain"
	"github.com/contactfast/relay/internal/identity"
	"github.com/contactfast/relay/internal/mailer"
	"github.com/contactfast/relay/internal/pkg/logger"
	"github.com/contactfast/relay/internal/ratelimit"
	"github.com/contactfast/relay/internal/screening"
	"github.com/contactfast/relay/internal/verification"
)

// Limits holds the sliding-window budgets for the three key scopes.
type Limits struct {
	IPLimit          int
	IPWindow         time.Duration
	IdentityLimit    int
	IdentityWindow   time.Duration
	ActivationLimit  int
	ActivationWindow time.Duration
}

// DefaultLimits mirrors the production budgets: 5 per hour per caller IP,
// 10 per hour per identity, 3 activation emails per recipient per day.
func DefaultLimits() Limits {
	return Limits{
		IPLimit:          5,
		IPWindow:         time.Hour,
		IdentityLimit:    10,
		IdentityWindow:   time.Hour,
		ActivationLimit:  3,
		ActivationWindow: 24 * time.Hour,
	}
}

// Service orchestrates the admission pipeline. All collaborators are
// injected at construction; the service itself holds no mutable state and
// is safe for concurrent use.
type Service struct {
	limiter   ratelimit.Limiter
	screen    *screening.Screen
	resolver  identity.Resolver
	verifier  *verification.Service
	sender    mailer.Sender
	templates *mailer.Templates

	limits    Limits
	fromEmail string
	baseURL   string // public base URL for activation links
}

// NewService wires the pipeline.
func NewService(
	limiter ratelimit.Limiter,
	screen *screening.Screen,
	resolver identity.Resolver,
	verifier *verification.Service,
	sender mailer.Sender,
	templates *mailer.Templates,
	limits Limits,
	fromEmail, baseURL string,
) *Service {
	return &Service{
		limiter:   limiter,
		screen:    screen,
		resolver:  resolver,
		verifier:  verifier,
		sender:    sender,
		templates: templates,
		limits:    limits,
		fromEmail: fromEmail,
		baseURL:   baseURL,
	}
}

// Submit runs one submission through the admission pipeline. The checks
// short-circuit: a deny or reject stops the pipeline with no side effects
// from later steps. Returned errors are infrastructure failures only;
// every business decision comes back as an Outcome.
func (s *Service) Submit(ctx context.Context, sub domain.Submission) (Outcome, error) {
	out, err := s.submit(ctx, sub)
	if err != nil {
		return out, err
	}
	out.Ref = uuid.NewString()
	return out, nil
}

func (s *Service) submit(ctx context.Context, sub domain.Submission) (Outcome, error) {
	// 1. Caller IP budget.
	ok, err := s.limiter.Allow(ctx, "ip:"+sub.CallerIP, s.limits.IPLimit, s.limits.IPWindow)
	if err != nil {
		return Outcome{}, fmt.Errorf("ip rate check: %w", err)
	}
	if !ok {
		return Outcome{Kind: OutcomeRateLimited, Scope: ScopeIP}, nil
	}

	// 2. Disposable addresses, sender and recipient alike.
	if s.screen.IsDisposable(sub.Email) || s.screen.IsDisposable(sub.To) {
		return Outcome{Kind: OutcomeRejected, Reason: ReasonDisposableEmail}, nil
	}

	// 3. Content heuristics.
	if s.screen.IsSpam(sub.Message, sub.Subject) {
		return Outcome{Kind: OutcomeRejected, Reason: ReasonSpam}, nil
	}

	// 4. Identity key.
	key := s.resolver.Resolve(sub)
	if key == "" {
		return Outcome{Kind: OutcomeRejected, Reason: ReasonInvalidOrigin}, nil
	}

	// 5. Per-identity budget.
	ok, err = s.limiter.Allow(ctx, "identity:"+key, s.limits.IdentityLimit, s.limits.IdentityWindow)
	if err != nil {
		return Outcome{}, fmt.Errorf("identity rate check: %w", err)
	}
	if !ok {
		return Outcome{Kind: OutcomeRateLimited, Scope: ScopeIdentity, Identity: key}, nil
	}

	// 6. Load or atomically create the origin record. Under a concurrent
	// first contact, exactly one caller observes created=true.
	rec, created, err := s.verifier.LoadOrCreate(ctx, key, sub)
	if err != nil {
		return Outcome{}, err
	}

	// 7. Branch on verification state.
	switch {
	case created && !rec.Verified:
		return s.sendActivation(ctx, key, rec)

	case rec.Verified:
		return s.forward(ctx, key, rec, sub, created)

	default:
		// Existing, still pending: accepted but nothing is sent and no
		// counters move.
		return Outcome{Kind: OutcomePendingActivation, Identity: key}, nil
	}
}

// sendActivation handles first contact for an activation-gated identity.
// The record already exists (with its token); this only gates and sends
// the activation email. The visitor's message is not forwarded.
func (s *Service) sendActivation(ctx context.Context, key string, rec *domain.Origin) (Outcome, error) {
	ok, err := s.limiter.Allow(ctx, "activation:"+rec.RecipientEmail, s.limits.ActivationLimit, s.limits.ActivationWindow)
	if err != nil {
		return Outcome{}, fmt.Errorf("activation rate check: %w", err)
	}
	if !ok {
		return Outcome{Kind: OutcomeRateLimited, Scope: ScopeActivation, Identity: key}, nil
	}

	if rec.ActivationToken == nil {
		return Outcome{}, fmt.Errorf("pending origin %s has no activation token", key)
	}

	html, err := s.templates.RenderActivation(rec.WebsiteName, s.activationURL(*rec.ActivationToken))
	if err != nil {
		return Outcome{}, err
	}

	subject := fmt.Sprintf("ContactFast: activate your form for %s", rec.WebsiteName)
	if _, err := s.sender.Send(ctx, s.fromEmail, []string{rec.RecipientEmail}, subject, html); err != nil {
		logger.Error("activation email send failed", "identity", key, "recipient_email", rec.RecipientEmail, "error", err)
		return Outcome{Kind: OutcomeRejected, Reason: ReasonSendFailed, Identity: key}, nil
	}

	return Outcome{Kind: OutcomeActivationSent, Identity: key}, nil
}

// forward delivers the visitor's message to the stored recipient. Counters
// move only after the provider accepts the send; a failed send leaves the
// record unmutated (though a just-created record stays created, since the
// identity now legitimately exists for future attempts).
func (s *Service) forward(ctx context.Context, key string, rec *domain.Origin, sub domain.Submission, created bool) (Outcome, error) {
	html, err := s.templates.RenderMessage(rec.WebsiteName, sub.Name, sub.Email, sub.Subject, sub.Message)
	if err != nil {
		return Outcome{}, err
	}

	subject := fmt.Sprintf("New message from %s - %s", rec.WebsiteName, sub.Subject)
	result, err := s.sender.Send(ctx, s.fromEmail, []string{rec.RecipientEmail}, subject, html)
	if err != nil {
		logger.Error("forward send failed", "identity", key, "recipient_email", rec.RecipientEmail, "error", err)
		return Outcome{Kind: OutcomeRejected, Reason: ReasonSendFailed, Identity: key}, nil
	}

	if created {
		// One-time auto-verification notice. Fire and forget: its failure
		// must never fail the submission that triggered it.
		s.notifyAutoVerified(ctx, key, rec)
	}

	if err := s.verifier.RecordSubmission(ctx, key); err != nil {
		// The mail is already out; surface the bookkeeping failure.
		return Outcome{}, err
	}

	return Outcome{Kind: OutcomeForwarded, Identity: key, Mail: result}, nil
}

func (s *Service) notifyAutoVerified(ctx context.Context, key string, rec *domain.Origin) {
	html, err := s.templates.RenderAutoVerified(rec.WebsiteName, key)
	if err != nil {
		logger.Warn("auto-verified notice render failed", "identity", key, "error", err)
		return
	}
	subject := fmt.Sprintf("ContactFast: %s auto-verified", key)
	if _, err := s.sender.Send(ctx, s.fromEmail, []string{rec.RecipientEmail}, subject, html); err != nil {
		logger.Warn("auto-verified notice send failed", "identity", key, "error", err)
	}
}

func (s *Service) activationURL(token string) string {
	return fmt.Sprintf("%s/api/activate/%s", s.baseURL, token)
}
