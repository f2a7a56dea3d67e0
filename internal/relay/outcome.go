package relay

import (
	"github.com/contactfast/relay/internal/mailer"
)

// OutcomeKind enumerates the terminal results of a submission.
type OutcomeKind string

const (
	// OutcomeForwarded: the message was delivered to the recipient.
	OutcomeForwarded OutcomeKind = "forwarded"
	// OutcomeActivationSent: first contact for an activation-gated
	// identity; the activation email went out instead of the message.
	OutcomeActivationSent OutcomeKind = "activation_sent"
	// OutcomePendingActivation: the identity exists but is not yet
	// activated; nothing was sent.
	OutcomePendingActivation OutcomeKind = "pending_activation"
	// OutcomeRejected: a validation or delivery failure; see Reason.
	OutcomeRejected OutcomeKind = "rejected"
	// OutcomeRateLimited: a sliding-window limit was hit; see Scope.
	OutcomeRateLimited OutcomeKind = "rate_limited"
)

// RejectionReason says which check failed a rejected submission.
type RejectionReason string

const (
	ReasonDisposableEmail RejectionReason = "disposable_email"
	ReasonSpam            RejectionReason = "spam"
	ReasonInvalidOrigin   RejectionReason = "invalid_origin"
	ReasonSendFailed      RejectionReason = "send_failed"
)

// RateLimitScope says which key space exhausted its window.
type RateLimitScope string

const (
	ScopeIP         RateLimitScope = "ip"
	ScopeIdentity   RateLimitScope = "identity"
	ScopeActivation RateLimitScope = "activation"
)

// Outcome is the pipeline's decision for one submission. Ref is a unique
// reference for support correlation; it identifies the attempt, not the
// message.
type Outcome struct {
	Ref      string             `json:"ref"`
	Kind     OutcomeKind        `json:"kind"`
	Reason   RejectionReason    `json:"reason,omitempty"`
	Scope    RateLimitScope     `json:"scope,omitempty"`
	Identity string             `json:"identity,omitempty"`
	Mail     *mailer.SendResult `json:"mail,omitempty"`
}
