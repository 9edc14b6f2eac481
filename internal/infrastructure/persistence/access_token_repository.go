package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/doclink/backend/internal/domain/access"
	"github.com/doclink/backend/internal/domain/shared"
	"github.com/doclink/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccessTokenRepository implements access.Repository using GORM
type GormAccessTokenRepository struct {
	db *gorm.DB
}

// NewGormAccessTokenRepository creates a new GormAccessTokenRepository
func NewGormAccessTokenRepository(db *gorm.DB) *GormAccessTokenRepository {
	return &GormAccessTokenRepository{db: db}
}

// Create stores a newly issued token
func (r *GormAccessTokenRepository) Create(ctx context.Context, token *access.Token) error {
	var m models.AccessTokenModel
	m.FromDomain(token)
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// FindByHash finds a token by its hash
func (r *GormAccessTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*access.Token, error) {
	var m models.AccessTokenModel
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// Rotate revokes every non-revoked token for the new token's customer and
// inserts the new token in one transaction. Old tokens stop authorizing
// the moment the transaction commits; there is no grace window.
func (r *GormAccessTokenRepository) Rotate(ctx context.Context, newToken *access.Token, revokedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AccessTokenModel{}).
			Where("customer_ref = ? AND revoked_at IS NULL", newToken.CustomerRef).
			Update("revoked_at", revokedAt).Error; err != nil {
			return err
		}

		var m models.AccessTokenModel
		m.FromDomain(newToken)
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		return tx.Create(&m).Error
	})
}
