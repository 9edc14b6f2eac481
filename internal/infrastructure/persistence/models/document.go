package models

import (
	"encoding/json"
	"time"

	"github.com/doclink/backend/internal/domain/document"
	"github.com/shopspring/decimal"
)

// DocumentModel is the persistence model for the Document domain entity.
// The decision lives inline as nullable columns so the first-write-wins
// guarantee reduces to a single conditional UPDATE; decided_at is the
// discriminant for "a decision exists".
type DocumentModel struct {
	BaseModel
	TokenHash     string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Kind          document.Kind   `gorm:"type:varchar(10);not null"`
	CustomerRef   string          `gorm:"type:varchar(100);not null;index:idx_documents_customer_published,priority:1"`
	CustomerLabel string          `gorm:"type:varchar(200)"`
	PublishedAt   time.Time       `gorm:"not null;index:idx_documents_customer_published,priority:2,sort:desc"`
	ExpiresAt     time.Time       `gorm:"not null"`
	Snapshot      string          `gorm:"type:jsonb;not null;default:'{}'"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PDFKey        string          `gorm:"type:varchar(200)"`

	DecidedAt           *time.Time `gorm:"index"`
	Decision            string     `gorm:"type:varchar(10)"`
	AcceptedName        string     `gorm:"type:varchar(200)"`
	AcceptedEmail       string     `gorm:"type:varchar(200)"`
	DecisionTextVersion string     `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document entity.
func (m *DocumentModel) ToDomain() *document.Document {
	doc := &document.Document{
		ID:            m.ID,
		TokenHash:     m.TokenHash,
		Kind:          m.Kind,
		CustomerRef:   m.CustomerRef,
		CustomerLabel: m.CustomerLabel,
		PublishedAt:   m.PublishedAt,
		ExpiresAt:     m.ExpiresAt,
		Snapshot:      json.RawMessage(m.Snapshot),
		TotalAmount:   m.TotalAmount,
		PDFKey:        m.PDFKey,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.DecidedAt != nil {
		doc.Decision = &document.DecisionRecord{
			Decision:      document.Decision(m.Decision),
			DecidedAt:     *m.DecidedAt,
			AcceptedName:  m.AcceptedName,
			AcceptedEmail: m.AcceptedEmail,
			TextVersion:   m.DecisionTextVersion,
		}
	}
	return doc
}

// FromDomain populates the persistence model from a domain Document entity.
func (m *DocumentModel) FromDomain(d *document.Document) {
	m.ID = d.ID
	m.CreatedAt = d.CreatedAt
	m.UpdatedAt = d.UpdatedAt
	m.TokenHash = d.TokenHash
	m.Kind = d.Kind
	m.CustomerRef = d.CustomerRef
	m.CustomerLabel = d.CustomerLabel
	m.PublishedAt = d.PublishedAt
	m.ExpiresAt = d.ExpiresAt
	m.Snapshot = string(d.Snapshot)
	m.TotalAmount = d.TotalAmount
	m.PDFKey = d.PDFKey
	if d.Decision != nil {
		decidedAt := d.Decision.DecidedAt
		m.DecidedAt = &decidedAt
		m.Decision = string(d.Decision.Decision)
		m.AcceptedName = d.Decision.AcceptedName
		m.AcceptedEmail = d.Decision.AcceptedEmail
		m.DecisionTextVersion = d.Decision.TextVersion
	}
}
