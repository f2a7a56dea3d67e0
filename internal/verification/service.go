package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contactfast/relay/internal/domain"
)

// ActivationResult is the terminal outcome of an activation attempt.
type ActivationResult string

const (
	// ActivationInvalid means no record holds the token. Idempotent no-op.
	ActivationInvalid ActivationResult = "invalid"
	// ActivationAlreadyActive means the record was verified before this call.
	ActivationAlreadyActive ActivationResult = "already_active"
	// ActivationCompleted means this call flipped the record to verified.
	ActivationCompleted ActivationResult = "activated"
)

// Service implements the origin verification state machine. Safe for
// concurrent use; all coordination is delegated to the repository's
// atomic operations.
type Service struct {
	repo       Repository
	autoVerify bool
}

// NewService creates a verification service. autoVerify selects the
// domain-keyed deployment behavior, where a first-time identity is trusted
// immediately; otherwise new identities start pending with an activation
// token.
func NewService(repo Repository, autoVerify bool) *Service {
	return &Service{repo: repo, autoVerify: autoVerify}
}

// AutoVerify reports which first-contact behavior this deployment runs.
func (s *Service) AutoVerify() bool {
	return s.autoVerify
}

// LoadOrCreate returns the record for key, creating it from the submission
// if the identity has never been seen. The create is atomic: under a race,
// the loser re-reads the winner's record and proceeds as a non-creator.
func (s *Service) LoadOrCreate(ctx context.Context, key string, sub domain.Submission) (*domain.Origin, bool, error) {
	rec, err := s.repo.GetByKey(ctx, key)
	if err == nil {
		return rec, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("load origin: %w", err)
	}

	fresh := &domain.Origin{
		IdentityKey:    key,
		RecipientEmail: sub.To,
		WebsiteName:    sub.WebsiteName,
		WebsiteURL:     sub.WebsiteURL,
		Verified:       s.autoVerify,
		CreatedAt:      time.Now().UTC(),
	}
	if !s.autoVerify {
		token, err := NewActivationToken()
		if err != nil {
			return nil, false, err
		}
		fresh.ActivationToken = &token
	}

	rec, created, err := s.repo.CreateIfAbsent(ctx, fresh)
	if err != nil {
		return nil, false, fmt.Errorf("create origin: %w", err)
	}
	return rec, created, nil
}

// Activate exchanges a token for verified status. Unknown tokens and
// repeat activations report their result without mutating anything.
func (s *Service) Activate(ctx context.Context, token string) (ActivationResult, *domain.Origin, error) {
	if token == "" {
		return ActivationInvalid, nil, nil
	}

	rec, err := s.repo.GetByToken(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return ActivationInvalid, nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("look up activation token: %w", err)
	}

	if rec.Verified {
		return ActivationAlreadyActive, rec, nil
	}

	rec.Verified = true
	if err := s.repo.Update(ctx, rec); err != nil {
		return "", nil, fmt.Errorf("persist activation: %w", err)
	}
	return ActivationCompleted, rec, nil
}

// RecordSubmission bumps the forwarded-submission counter for key. Called
// only after a successful forward; rejected and pending attempts never
// reach it.
func (s *Service) RecordSubmission(ctx context.Context, key string) error {
	if err := s.repo.RecordSubmission(ctx, key, time.Now().UTC()); err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}
