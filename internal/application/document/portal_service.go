package document

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/doclink/backend/internal/domain/document"
	"github.com/doclink/backend/internal/domain/shared"
)

// PortalService serves the customer-facing read surface: document listings
// scoped to a customer reference, single-document views, and PDF retrieval.
type PortalService struct {
	docs  document.Repository
	blobs BlobStore
	now   func() time.Time
}

// NewPortalService creates a new PortalService
func NewPortalService(docs document.Repository, blobs BlobStore) *PortalService {
	return &PortalService{
		docs:  docs,
		blobs: blobs,
		now:   time.Now,
	}
}

// ListPage is one page of a customer's documents
type ListPage struct {
	Items      []document.Document
	NextCursor string
}

// List pages through the documents belonging to a customer reference.
// kindFilter is "offer", "invoice" or empty for both. The cursor is the
// opaque watermark returned by a previous call.
func (s *PortalService) List(ctx context.Context, customerRef, kindFilter string, limit int, cursorStr string) (*ListPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var kind *document.Kind
	if kindFilter != "" {
		k := document.Kind(kindFilter)
		if !k.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Kind filter must be 'offer' or 'invoice'")
		}
		kind = &k
	}

	cursor, err := decodeCursor(cursorStr)
	if err != nil {
		return nil, err
	}

	items, next, err := s.docs.ListByCustomerRef(ctx, customerRef, kind, limit, cursor)
	if err != nil {
		return nil, err
	}

	page := &ListPage{Items: items}
	if next != nil {
		page.NextCursor = encodeCursor(next)
	}
	return page, nil
}

// GetByID returns a single document by its opaque ID
func (s *PortalService) GetByID(ctx context.Context, id string) (*document.Document, error) {
	return s.docs.FindByID(ctx, id)
}

// GetByTokenHash returns a single document by its publish-token hash.
// Used by the legacy token routes to find the canonical location.
func (s *PortalService) GetByTokenHash(ctx context.Context, tokenHash string) (*document.Document, error) {
	return s.docs.FindByTokenHash(ctx, tokenHash)
}

// GetPDF returns the stored PDF bytes for a document
func (s *PortalService) GetPDF(ctx context.Context, id string) ([]byte, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.PDFKey == "" {
		return nil, shared.ErrNotFound
	}
	return s.blobs.Get(ctx, doc.PDFKey)
}

// encodeCursor serializes a listing cursor into an opaque string
func encodeCursor(c *document.Cursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// decodeCursor parses an opaque cursor string; empty means no cursor
func decodeCursor(s string) (*document.Cursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Malformed cursor")
	}
	var c document.Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Malformed cursor")
	}
	return &c, nil
}
