package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/doclink/backend/internal/domain/document"
	"github.com/doclink/backend/internal/domain/shared"
	"github.com/doclink/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Upsert stores a document keyed by its token hash. A fresh document ID is
// assigned only when no record exists for that hash; re-publishing the same
// token updates every field except the ID and the decision columns.
func (r *GormDocumentRepository) Upsert(ctx context.Context, doc *document.Document) (*document.Document, error) {
	var out *document.Document

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.DocumentModel
		err := tx.Where("token_hash = ?", doc.TokenHash).First(&existing).Error

		switch {
		case err == nil:
			updates := map[string]any{
				"kind":           doc.Kind,
				"customer_ref":   doc.CustomerRef,
				"customer_label": doc.CustomerLabel,
				"published_at":   doc.PublishedAt,
				"expires_at":     doc.ExpiresAt,
				"snapshot":       string(doc.Snapshot),
				"total_amount":   doc.TotalAmount,
			}
			// A re-publish without a PDF keeps the previously stored blob.
			if doc.PDFKey != "" {
				updates["pdf_key"] = doc.PDFKey
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}

			var fresh models.DocumentModel
			if err := tx.First(&fresh, "id = ?", existing.ID).Error; err != nil {
				return err
			}
			out = fresh.ToDomain()
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			var m models.DocumentModel
			m.FromDomain(doc)
			if m.ID == uuid.Nil {
				m.ID = uuid.New()
			}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			out = m.ToDomain()
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindByTokenHash finds a document by its publish-token hash
func (r *GormDocumentRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*document.Document, error) {
	var m models.DocumentModel
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByID finds a document by its opaque document ID. A syntactically
// invalid ID is indistinguishable from an unknown one.
func (r *GormDocumentRepository) FindByID(ctx context.Context, id string) (*document.Document, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, shared.ErrNotFound
	}
	var m models.DocumentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// SetDecisionOnce records a decision if none exists yet. The guard is a
// single conditional UPDATE on decided_at IS NULL, so two concurrent
// submissions serialize in the store and exactly one wins; both callers
// get the same persisted record back.
func (r *GormDocumentRepository) SetDecisionOnce(ctx context.Context, id string, rec document.DecisionRecord) (*document.DecisionRecord, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, shared.ErrNotFound
	}

	var persisted *document.DecisionRecord
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.DocumentModel{}).
			Where("id = ? AND decided_at IS NULL", docID).
			Updates(map[string]any{
				"decided_at":            rec.DecidedAt,
				"decision":              string(rec.Decision),
				"accepted_name":         rec.AcceptedName,
				"accepted_email":        rec.AcceptedEmail,
				"decision_text_version": rec.TextVersion,
			})
		if res.Error != nil {
			return res.Error
		}

		var m models.DocumentModel
		if err := tx.First(&m, "id = ?", docID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		doc := m.ToDomain()
		if doc.Decision == nil {
			return fmt.Errorf("decision write for document %s affected no rows and none is stored", docID)
		}
		persisted = doc.Decision
		return nil
	})
	if err != nil {
		return nil, err
	}
	return persisted, nil
}

// ListByCustomerRef pages through a customer's documents ordered by
// published_at descending with the token hash as deterministic tie-break.
func (r *GormDocumentRepository) ListByCustomerRef(ctx context.Context, customerRef string, kind *document.Kind, limit int, cursor *document.Cursor) ([]document.Document, *document.Cursor, error) {
	if limit <= 0 {
		limit = 20
	}

	query := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("customer_ref = ?", customerRef)
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	if cursor != nil {
		query = query.Where(
			"(published_at < ? OR (published_at = ? AND token_hash < ?))",
			cursor.PublishedAt, cursor.PublishedAt, cursor.TokenHash,
		)
	}

	var rows []models.DocumentModel
	if err := query.
		Order("published_at DESC").
		Order("token_hash DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	docs := make([]document.Document, len(rows))
	for i, m := range rows {
		docs[i] = *m.ToDomain()
	}

	var next *document.Cursor
	if len(docs) == limit {
		last := docs[len(docs)-1]
		next = &document.Cursor{PublishedAt: last.PublishedAt, TokenHash: last.TokenHash}
	}
	return docs, next, nil
}
