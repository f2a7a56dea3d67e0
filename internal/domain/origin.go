package domain

import (
	"time"
)

// VerificationState enumerates the lifecycle states of an origin.
type VerificationState string

const (
	// StateUnknown means no record exists for the identity key yet.
	StateUnknown VerificationState = "unknown"
	// StatePending means a record exists but has not been activated.
	StatePending VerificationState = "pending"
	// StateVerified is terminal: the origin may forward mail.
	StateVerified VerificationState = "verified"
)

// Origin is the per-identity record tracked for every submitting website
// or form. The identity key is either a normalized domain or a hash of
// (recipient email, origin header), depending on the deployment's identity
// mode; it is unique and immutable once created.
type Origin struct {
	IdentityKey      string     `json:"identity_key" db:"identity_key"`
	RecipientEmail   string     `json:"recipient_email" db:"recipient_email"`
	WebsiteName      string     `json:"website_name" db:"website_name"`
	WebsiteURL       string     `json:"website_url" db:"website_url"`
	Verified         bool       `json:"verified" db:"verified"`
	ActivationToken  *string    `json:"-" db:"activation_token"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	LastSubmissionAt *time.Time `json:"last_submission_at" db:"last_submission_at"`
	SubmissionCount  int        `json:"submission_count" db:"submission_count"`
}

// State maps the stored flags onto the verification state machine.
func (o *Origin) State() VerificationState {
	if o == nil {
		return StateUnknown
	}
	if o.Verified {
		return StateVerified
	}
	return StatePending
}

// Submission is one inbound contact-form post, as handed to the admission
// pipeline. CallerIP and OriginHeader come from the transport layer; the
// rest is the form body.
type Submission struct {
	To          string `json:"to"`
	WebsiteName string `json:"website_name"`
	WebsiteURL  string `json:"website_url"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`

	CallerIP     string `json:"-"`
	OriginHeader string `json:"-"`
}
