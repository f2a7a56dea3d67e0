package api

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/contactfast/relay/internal/analytics"
	"github.com/contactfast/relay/internal/domain"
	"github.com/contactfast/relay/internal/relay"
	"github.com/contactfast/relay/internal/verification"
)

// Handlers holds the services the HTTP layer dispatches into.
type Handlers struct {
	relay     *relay.Service
	verifier  *verification.Service
	analytics *analytics.Service
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(relaySvc *relay.Service, verifier *verification.Service, analyticsSvc *analytics.Service) *Handlers {
	return &Handlers{
		relay:     relaySvc,
		verifier:  verifier,
		analytics: analyticsSvc,
	}
}

// SubmitForm accepts a contact-form post and runs it through the admission
// pipeline. Every pipeline decision maps to a status code: 200 for anything
// that progressed (forwarded, activation sent, still pending), 400 for
// rejections, 429 for rate limits, 500 when the outbound send failed.
func (h *Handlers) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var sub domain.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if sub.To == "" || sub.Email == "" || sub.Message == "" {
		respondError(w, http.StatusBadRequest, "to, email and message are required")
		return
	}

	sub.CallerIP = clientIP(r)
	sub.OriginHeader = r.Header.Get("Origin")
	if sub.OriginHeader == "" {
		sub.OriginHeader = r.Header.Get("Referer")
	}

	outcome, err := h.relay.Submit(r.Context(), sub)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "submission failed")
		return
	}

	switch outcome.Kind {
	case relay.OutcomeForwarded:
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "forwarded",
			"ref":      outcome.Ref,
			"identity": outcome.Identity,
			"mail":     outcome.Mail,
		})
	case relay.OutcomeActivationSent:
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "activation_sent",
			"identity": outcome.Identity,
			"message":  "activation email sent; the message will be relayed once the origin is activated",
		})
	case relay.OutcomePendingActivation:
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "pending_activation",
			"identity": outcome.Identity,
			"message":  "origin is awaiting activation",
		})
	case relay.OutcomeRateLimited:
		respondJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"status": "rate_limited",
			"scope":  outcome.Scope,
		})
	case relay.OutcomeRejected:
		if outcome.Reason == relay.ReasonSendFailed {
			respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"status": "rejected",
				"reason": outcome.Reason,
				"ref":    outcome.Ref,
			})
			return
		}
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"status": "rejected",
			"reason": outcome.Reason,
			"ref":    outcome.Ref,
		})
	default:
		respondError(w, http.StatusInternalServerError, "unknown outcome")
	}
}

// Activate resolves an activation token. All terminal answers are 200; the
// body says whether the token activated something, was already used, or
// matched nothing.
func (h *Handlers) Activate(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	result, origin, err := h.verifier.Activate(r.Context(), token)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "activation failed")
		return
	}

	resp := map[string]interface{}{"status": string(result)}
	if origin != nil {
		resp["identity"] = origin.IdentityKey
		resp["website_name"] = origin.WebsiteName
	}
	respondJSON(w, http.StatusOK, resp)
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// clientIP trusts the RealIP middleware when it ran, otherwise strips the
// port from RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
