package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/contactfast/relay/internal/verification"
)

// GetAnalytics returns the aggregate summary plus the busiest origins.
func (h *Handlers) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)

	summary, err := h.analytics.Summary(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to build analytics summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// ListOrigins returns origin records, optionally filtered to verified or
// recently active ones.
func (h *Handlers) ListOrigins(w http.ResponseWriter, r *http.Request) {
	verifiedOnly := r.URL.Query().Get("verified_only") == "true"
	activeOnly := r.URL.Query().Get("active_only") == "true"
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	origins, err := h.analytics.List(r.Context(), verifiedOnly, activeOnly, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list origins")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(origins),
		"origins": origins,
	})
}

// GetOrigin returns a single origin record by identity key.
func (h *Handlers) GetOrigin(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	origin, err := h.analytics.Origin(r.Context(), key)
	if errors.Is(err, verification.ErrNotFound) {
		respondError(w, http.StatusNotFound, "origin not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load origin")
		return
	}
	respondJSON(w, http.StatusOK, origin)
}

// GetActivity returns per-origin activity estimates over a trailing window.
func (h *Handlers) GetActivity(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	limit := queryInt(r, "limit", 20)

	activity, err := h.analytics.Activity(r.Context(), days, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute activity")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"days":    days,
		"origins": activity,
	})
}

// GetStats returns the quick dashboard numbers.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.QuickStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
