package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenKeyBytes is the entropy of an API token; its hex form is 40 characters.
const TokenKeyBytes = 20

// GenerateTokenKey generates a random API token key of 40 hex characters.
func GenerateTokenKey() (string, error) {
	bytes := make([]byte, TokenKeyBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
