// Package analytics provides read-only reporting over origin records:
// totals, verified counts, recent activity, and per-origin statistics for
// the operator dashboard endpoints.
//
// Activity estimates are extrapolated from each origin's average daily
// rate rather than from per-event logs; they are an approximation, not an
// audit trail.
package analytics
