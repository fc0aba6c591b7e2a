package v1

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes of entropy, hex encoded to twice as many characters.
const tokenBytes = 32

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
