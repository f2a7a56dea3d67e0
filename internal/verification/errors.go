package verification

import "errors"

// Sentinel errors for the verification service layer.
var (
	ErrNotFound = errors.New("origin record not found")
)
