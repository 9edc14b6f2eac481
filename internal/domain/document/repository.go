package document

import (
	"context"
	"time"
)

// Cursor is the opaque pagination watermark for customer document listings.
// Ordering is published_at descending with the token hash as a stable
// tie-break, so cursor chaining reproduces a single larger page exactly.
type Cursor struct {
	PublishedAt time.Time `json:"p"`
	TokenHash   string    `json:"t"`
}

// Repository is the persistence contract for documents and their decisions
type Repository interface {
	// Upsert stores a document keyed by its token hash. The document ID is
	// assigned only when no record exists for that hash yet; re-publishing
	// updates every field except the ID and any recorded decision.
	Upsert(ctx context.Context, doc *Document) (*Document, error)

	// FindByTokenHash returns the document for a publish-token hash,
	// or shared.ErrNotFound.
	FindByTokenHash(ctx context.Context, tokenHash string) (*Document, error)

	// FindByID returns the document for an opaque document ID,
	// or shared.ErrNotFound.
	FindByID(ctx context.Context, id string) (*Document, error)

	// SetDecisionOnce records a decision if and only if none exists yet,
	// as a single atomic check-and-set. It returns the persisted decision,
	// which is the existing one when the submission lost the race, and
	// shared.ErrNotFound when the document does not exist.
	SetDecisionOnce(ctx context.Context, id string, rec DecisionRecord) (*DecisionRecord, error)

	// ListByCustomerRef pages through a customer's documents, newest first.
	// A nil kind means both kinds. The returned cursor is nil when fewer
	// than limit items remain.
	ListByCustomerRef(ctx context.Context, customerRef string, kind *Kind, limit int, cursor *Cursor) ([]Document, *Cursor, error)
}
