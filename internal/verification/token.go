package verification

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes gives 64 hex characters; guessing one is not practical.
const tokenBytes = 32

// NewActivationToken returns a fresh random activation token.
func NewActivationToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate activation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
