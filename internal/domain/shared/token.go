package shared

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the entropy of generated bearer tokens (256 bits).
const tokenBytes = 32

// NewBearerToken generates a cryptographically random bearer token.
// The raw value is returned exactly once to the caller; only its hash
// is ever persisted.
func NewBearerToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken returns the stable one-way hash of a token, hex-encoded.
// Tokens are high-entropy random values, so a plain digest is sufficient;
// adaptive password hashing would break the lookup-by-hash contract.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// DeriveRef produces a stable pseudonymous reference from an arbitrary
// identifier. The same input always yields the same reference.
func DeriveRef(prefix, input string) string {
	sum := sha256.Sum256([]byte(input))
	return prefix + hex.EncodeToString(sum[:8])
}
