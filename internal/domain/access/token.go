package access

import (
	"time"

	"github.com/google/uuid"
)

// Token is a customer access link credential. Only the hash of the raw
// bearer token is stored; the raw value is handed out exactly once at
// issuance and is never retrievable again.
type Token struct {
	ID            uuid.UUID
	TokenHash     string
	CustomerRef   string
	CustomerLabel string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	RevokedAt     *time.Time
}

// IsRevoked checks if the token has been revoked
func (t *Token) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsExpired checks if the token has expired at the given time
func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Status classifies the outcome of presenting a token
type Status string

const (
	StatusNotFound Status = "not_found"
	StatusRevoked  Status = "revoked"
	StatusExpired  Status = "expired"
	StatusValid    Status = "valid"
)

// Resolution is the result of resolving a presented bearer token.
// CustomerRef and CustomerLabel are populated only for StatusValid.
type Resolution struct {
	Status        Status
	CustomerRef   string
	CustomerLabel string
}

// Resolve classifies the token in check order: revocation before expiry,
// so a rotated-then-expired token still reads as revoked.
func (t *Token) Resolve(now time.Time) Resolution {
	if t.IsRevoked() {
		return Resolution{Status: StatusRevoked}
	}
	if t.IsExpired(now) {
		return Resolution{Status: StatusExpired}
	}
	return Resolution{
		Status:        StatusValid,
		CustomerRef:   t.CustomerRef,
		CustomerLabel: t.CustomerLabel,
	}
}
