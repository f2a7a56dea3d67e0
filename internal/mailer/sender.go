// Package mailer provides the outbound email capability for the relay:
// a provider-agnostic Sender interface with AWS SES and Resend
// implementations, plus the Liquid templates the pipeline renders into
// message bodies.
package mailer

import (
	"context"
	"fmt"
)

// SendResult carries the provider's opaque acknowledgement.
type SendResult struct {
	MessageID string `json:"message_id"`
	Provider  string `json:"provider"`
}

// Sender sends one HTML email. Implementations bound their own timeouts;
// a timeout is a send failure, never a hang.
type Sender interface {
	Send(ctx context.Context, from string, to []string, subject, html string) (*SendResult, error)
}

// ProviderConfig is what New needs to pick and build a Sender.
type ProviderConfig struct {
	Provider string // "ses" or "resend"

	// Resend settings.
	ResendAPIKey  string
	ResendBaseURL string

	// SES settings.
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
}

// New builds the configured provider's sender.
func New(ctx context.Context, cfg ProviderConfig) (Sender, error) {
	switch cfg.Provider {
	case "ses":
		return NewSESSender(ctx, cfg)
	case "", "resend":
		return NewResendSender(cfg), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
