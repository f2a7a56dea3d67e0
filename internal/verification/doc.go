// Package verification owns the per-identity origin record and its state
// machine: UNKNOWN (no record) -> PENDING (record, unverified) -> VERIFIED
// (terminal). Creation is atomic with respect to concurrent first-time
// submissions for the same key; the storage layer's unique constraint is
// the arbiter, never a check-then-insert.
//
// The service layer contains pure business logic and depends on the
// Repository interface defined in repository.go. It never imports
// net/http or database/sql directly.
package verification
