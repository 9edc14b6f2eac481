package document

import (
	"context"
	"time"

	"github.com/doclink/backend/internal/domain/document"
	"go.uber.org/zap"
)

// DecisionService records the customer's accept/decline on an offer
type DecisionService struct {
	docs   document.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewDecisionService creates a new DecisionService
func NewDecisionService(docs document.Repository, logger *zap.Logger) *DecisionService {
	return &DecisionService{
		docs:   docs,
		logger: logger,
		now:    time.Now,
	}
}

// SubmitInput is a decision submission after transport-level checks
// (rate limit, CSRF, origin) have already passed.
type SubmitInput struct {
	DocumentID  string
	Decision    string
	Name        string
	Email       string
	TextVersion string
}

// Precheck reports whether a document can currently receive a decision
// without committing anything. The route layer runs it before its
// transport checks so a probe against a missing or expired document is
// answered by the document's state, not by a CSRF failure.
func (s *DecisionService) Precheck(ctx context.Context, documentID string) error {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		return err
	}
	return doc.CanDecide(s.now())
}

// Submit validates and commits a decision at most once. If a decision
// already exists the stored one is returned unchanged; the caller cannot
// tell from the result whether this submission won, which keeps the
// outcome of a race unobservable to an attacker.
func (s *DecisionService) Submit(ctx context.Context, in SubmitInput) (*document.DecisionRecord, error) {
	doc, err := s.docs.FindByID(ctx, in.DocumentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := doc.CanDecide(now); err != nil {
		return nil, err
	}

	rec, err := document.NewDecisionRecord(
		document.Decision(in.Decision), in.Name, in.Email, in.TextVersion, now)
	if err != nil {
		return nil, err
	}

	persisted, err := s.docs.SetDecisionOnce(ctx, in.DocumentID, *rec)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Decision recorded",
		zap.String("document_id", in.DocumentID),
		zap.String("decision", string(persisted.Decision)),
		zap.Time("decided_at", persisted.DecidedAt),
	)
	return persisted, nil
}
