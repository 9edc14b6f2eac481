package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doclink/backend/internal/domain/document"
	"github.com/doclink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PublishService handles document publication from the back-office tool
type PublishService struct {
	docs   document.Repository
	blobs  BlobStore
	logger *zap.Logger
	now    func() time.Time
}

// NewPublishService creates a new PublishService
func NewPublishService(docs document.Repository, blobs BlobStore, logger *zap.Logger) *PublishService {
	return &PublishService{
		docs:   docs,
		blobs:  blobs,
		logger: logger,
		now:    time.Now,
	}
}

// PublishInput carries a publish request. Token is the raw publish token
// embedded in the document's public URL; it is hashed immediately and
// never stored.
type PublishInput struct {
	Kind          document.Kind
	Token         string
	CustomerRef   string
	CustomerLabel string
	ExpiresAt     *time.Time
	Snapshot      json.RawMessage
	PDF           []byte
}

// snapshotHints is the subset of the opaque snapshot payload the service
// inspects to derive a customer reference and a listing total. Everything
// else in the snapshot passes through untouched.
type snapshotHints struct {
	Customer struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"customer"`
	Total json.Number `json:"total"`
}

// Publish upserts a document keyed by the hash of its publish token.
// The operation is idempotent: re-publishing the same token updates fields
// but never reassigns the document ID or touches a recorded decision.
func (s *PublishService) Publish(ctx context.Context, in PublishInput) (*document.Document, error) {
	if !in.Kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Kind must be 'offer' or 'invoice'")
	}
	if len(in.Token) < 8 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Publish token is too short")
	}
	tokenHash := shared.HashToken(in.Token)

	snapshot := in.Snapshot
	if len(snapshot) == 0 {
		snapshot = json.RawMessage("{}")
	}
	var hints snapshotHints
	// Snapshot is opaque; hints are best-effort.
	_ = json.Unmarshal(snapshot, &hints)

	customerRef := s.resolveCustomerRef(in.CustomerRef, hints, tokenHash)
	customerLabel := in.CustomerLabel
	if customerLabel == "" {
		customerLabel = hints.Customer.Name
	}

	total := decimal.Zero
	if hints.Total != "" {
		if parsed, err := decimal.NewFromString(hints.Total.String()); err == nil {
			total = parsed
		}
	}

	now := s.now()
	expiresAt := now.Add(in.Kind.DefaultTTL())
	if in.ExpiresAt != nil {
		expiresAt = *in.ExpiresAt
	}

	// The document ID must be known before the blob goes out, and must
	// survive re-publishes: reuse the existing mapping when there is one.
	id := uuid.New()
	existing, err := s.docs.FindByTokenHash(ctx, tokenHash)
	switch {
	case err == nil:
		id = existing.ID
	case errors.Is(err, shared.ErrNotFound):
	default:
		return nil, err
	}

	pdfKey := ""
	if len(in.PDF) > 0 {
		pdfKey = fmt.Sprintf("documents/%s.pdf", id)
		if err := s.blobs.Put(ctx, pdfKey, in.PDF, "application/pdf"); err != nil {
			return nil, fmt.Errorf("failed to store document PDF: %w", err)
		}
	}

	doc, err := s.docs.Upsert(ctx, &document.Document{
		ID:            id,
		TokenHash:     tokenHash,
		Kind:          in.Kind,
		CustomerRef:   customerRef,
		CustomerLabel: customerLabel,
		PublishedAt:   now,
		ExpiresAt:     expiresAt,
		Snapshot:      snapshot,
		TotalAmount:   total,
		PDFKey:        pdfKey,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Document published",
		zap.String("document_id", doc.ID.String()),
		zap.String("kind", string(doc.Kind)),
		zap.String("customer_ref", doc.CustomerRef),
		zap.Bool("has_pdf", doc.PDFKey != ""),
	)
	return doc, nil
}

// resolveCustomerRef picks the customer reference in priority order:
// explicit value, derivation from the snapshot's embedded client identity,
// anonymous fallback hashed from the token hash. Each branch is
// deterministic so the same customer maps to the same ref across
// re-publishes.
func (s *PublishService) resolveCustomerRef(explicit string, hints snapshotHints, tokenHash string) string {
	if explicit != "" {
		return explicit
	}
	if hints.Customer.ID != "" {
		return shared.DeriveRef("c-", hints.Customer.ID)
	}
	if email := strings.ToLower(strings.TrimSpace(hints.Customer.Email)); email != "" {
		return shared.DeriveRef("c-", email)
	}
	return shared.DeriveRef("anon-", tokenHash)
}
