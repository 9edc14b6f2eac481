package models

import (
	"time"

	"github.com/doclink/backend/internal/domain/access"
)

// AccessTokenModel is the persistence model for customer access tokens.
// Revoked tokens stay in store as history; at most one token per customer
// is non-revoked after a rotation.
type AccessTokenModel struct {
	BaseModel
	TokenHash     string     `gorm:"type:varchar(64);not null;uniqueIndex"`
	CustomerRef   string     `gorm:"type:varchar(100);not null;index"`
	CustomerLabel string     `gorm:"type:varchar(200)"`
	ExpiresAt     time.Time  `gorm:"not null"`
	RevokedAt     *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (AccessTokenModel) TableName() string {
	return "access_tokens"
}

// ToDomain converts the persistence model to a domain Token entity.
func (m *AccessTokenModel) ToDomain() *access.Token {
	return &access.Token{
		ID:            m.ID,
		TokenHash:     m.TokenHash,
		CustomerRef:   m.CustomerRef,
		CustomerLabel: m.CustomerLabel,
		CreatedAt:     m.CreatedAt,
		ExpiresAt:     m.ExpiresAt,
		RevokedAt:     m.RevokedAt,
	}
}

// FromDomain populates the persistence model from a domain Token entity.
func (m *AccessTokenModel) FromDomain(t *access.Token) {
	m.ID = t.ID
	m.CreatedAt = t.CreatedAt
	m.TokenHash = t.TokenHash
	m.CustomerRef = t.CustomerRef
	m.CustomerLabel = t.CustomerLabel
	m.ExpiresAt = t.ExpiresAt
	m.RevokedAt = t.RevokedAt
}
