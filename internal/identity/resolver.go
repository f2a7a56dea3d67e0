// Package identity derives the stable identity key that groups submissions
// for rate limiting and verification state.
//
// Two keying strategies exist: domain-keyed (the declared website URL's
// host) and form-hash-keyed (a digest of recipient and browser origin).
// A deployment picks exactly one via configuration; the pipeline only sees
// the Resolver interface.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/contactfast/relay/internal/domain"
)

// Resolver derives the identity key for a submission. Resolve never fails;
// an empty result means the submission carries no usable identity and must
// be rejected by the caller.
type Resolver interface {
	Resolve(sub domain.Submission) string
}

// DomainResolver keys submissions by the declared website's domain.
// Identities resolved this way are auto-verified on first contact.
type DomainResolver struct{}

// Resolve parses the website URL and returns its host. URLs without a
// scheme parse with an empty host, so the path is the fallback; anything
// unparseable resolves to the raw input unchanged.
func (DomainResolver) Resolve(sub domain.Submission) string {
	raw := strings.TrimSpace(sub.WebsiteURL)
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	if u.Host != "" {
		return strings.ToLower(u.Host)
	}
	return strings.ToLower(u.Path)
}

// originSentinel stands in for a missing Origin header so that the hash
// input is always well-defined.
const originSentinel = "unknown"

// FormHashResolver keys submissions by a digest of (recipient email,
// browser origin). Identities resolved this way require activation before
// mail is forwarded.
type FormHashResolver struct{}

// Resolve returns the hex sha256 of recipient+origin. Same inputs always
// produce the same key; distinct pairs colliding is not a practical concern
// at this digest size.
func (FormHashResolver) Resolve(sub domain.Submission) string {
	origin := sub.OriginHeader
	if origin == "" {
		origin = originSentinel
	}
	sum := sha256.Sum256([]byte(sub.To + origin))
	return hex.EncodeToString(sum[:])
}

// ForMode returns the resolver for a configured identity mode. Unknown
// modes fall back to domain keying, the default deployment.
func ForMode(mode string) Resolver {
	if strings.EqualFold(mode, "form") {
		return FormHashResolver{}
	}
	return DomainResolver{}
}
