package access

import (
	"context"
	"errors"
	"time"

	"github.com/doclink/backend/internal/domain/access"
	"github.com/doclink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LinkService issues, rotates and resolves customer access links
type LinkService struct {
	tokens         access.Repository
	defaultTTLDays int
	logger         *zap.Logger
	now            func() time.Time
}

// NewLinkService creates a new LinkService
func NewLinkService(tokens access.Repository, defaultTTLDays int, logger *zap.Logger) *LinkService {
	return &LinkService{
		tokens:         tokens,
		defaultTTLDays: defaultTTLDays,
		logger:         logger,
		now:            time.Now,
	}
}

// IssuedLink carries the raw token back to the publisher. This is the only
// time the raw value exists outside the customer's browser; the store
// keeps just the hash.
type IssuedLink struct {
	Token     string
	ExpiresAt time.Time
}

// Issue creates a new access link for a customer without touching any
// existing links.
func (s *LinkService) Issue(ctx context.Context, customerRef, label string, ttlDays int) (*IssuedLink, error) {
	token, expiresAt, rec, err := s.mint(customerRef, label, ttlDays)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Access link issued",
		zap.String("customer_ref", customerRef),
		zap.Time("expires_at", expiresAt),
	)
	return &IssuedLink{Token: token, ExpiresAt: expiresAt}, nil
}

// Rotate revokes every active link for the customer and issues a fresh
// one as a single unit. Old raw tokens stop working immediately.
func (s *LinkService) Rotate(ctx context.Context, customerRef, label string, ttlDays int) (*IssuedLink, error) {
	token, expiresAt, rec, err := s.mint(customerRef, label, ttlDays)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Rotate(ctx, rec, s.now()); err != nil {
		return nil, err
	}

	s.logger.Info("Access link rotated",
		zap.String("customer_ref", customerRef),
		zap.Time("expires_at", expiresAt),
	)
	return &IssuedLink{Token: token, ExpiresAt: expiresAt}, nil
}

// Resolve classifies a presented bearer token. Order of checks: existence,
// then revocation, then expiry; the route layer maps each status to its
// own HTTP outcome.
func (s *LinkService) Resolve(ctx context.Context, rawToken string) (access.Resolution, error) {
	rec, err := s.tokens.FindByHash(ctx, shared.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return access.Resolution{Status: access.StatusNotFound}, nil
		}
		return access.Resolution{}, err
	}
	return rec.Resolve(s.now()), nil
}

func (s *LinkService) mint(customerRef, label string, ttlDays int) (string, time.Time, *access.Token, error) {
	if customerRef == "" {
		return "", time.Time{}, nil, shared.NewDomainError("INVALID_INPUT", "Customer reference is required")
	}
	if ttlDays <= 0 {
		ttlDays = s.defaultTTLDays
	}

	token, err := shared.NewBearerToken()
	if err != nil {
		return "", time.Time{}, nil, err
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	rec := &access.Token{
		ID:            uuid.New(),
		TokenHash:     shared.HashToken(token),
		CustomerRef:   customerRef,
		CustomerLabel: label,
		CreatedAt:     now,
		ExpiresAt:     expiresAt,
	}
	return token, expiresAt, rec, nil
}
