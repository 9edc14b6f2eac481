package access

import (
	"context"
	"time"
)

// Repository is the persistence contract for customer access tokens
type Repository interface {
	// Create stores a newly issued token
	Create(ctx context.Context, token *Token) error

	// FindByHash returns the token with the given hash, or shared.ErrNotFound
	FindByHash(ctx context.Context, tokenHash string) (*Token, error)

	// Rotate revokes every non-revoked token for the new token's customer
	// and inserts the new token as one atomic unit. No window may exist in
	// which both an old and the new token authorize access.
	Rotate(ctx context.Context, newToken *Token, revokedAt time.Time) error
}
