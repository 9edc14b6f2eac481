package document_test

import (
	"context"
	"sync"
	"testing"
	"time"

	docapp "github.com/doclink/backend/internal/application/document"
	"github.com/doclink/backend/internal/domain/document"
	"github.com/doclink/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedDocument(t *testing.T, repo *fakeDocumentRepo, kind document.Kind, expiresAt time.Time) *document.Document {
	t.Helper()
	doc, err := repo.Upsert(context.Background(), &document.Document{
		TokenHash:   shared.HashToken("seed-" + string(kind) + expiresAt.String()),
		Kind:        kind,
		CustomerRef: "cust-1",
		PublishedAt: time.Now(),
		ExpiresAt:   expiresAt,
	})
	require.NoError(t, err)
	return doc
}

func TestSubmitDecision(t *testing.T) {
	ctx := context.Background()

	t.Run("records a decision on an open offer", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		svc := docapp.NewDecisionService(repo, zap.NewNop())
		doc := seedDocument(t, repo, document.KindOffer, time.Now().Add(time.Hour))

		rec, err := svc.Submit(ctx, docapp.SubmitInput{
			DocumentID: doc.ID.String(), Decision: "accepted",
			Name: "Jane", Email: "jane@example.com", TextVersion: "v2",
		})
		require.NoError(t, err)
		assert.Equal(t, document.DecisionAccepted, rec.Decision)
		assert.Equal(t, "jane@example.com", rec.AcceptedEmail)

		stored, err := repo.FindByID(ctx, doc.ID.String())
		require.NoError(t, err)
		require.NotNil(t, stored.Decision)
		assert.Equal(t, document.DecisionAccepted, stored.Decision.Decision)
	})

	t.Run("first decision wins", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		svc := docapp.NewDecisionService(repo, zap.NewNop())
		doc := seedDocument(t, repo, document.KindOffer, time.Now().Add(time.Hour))

		first, err := svc.Submit(ctx, docapp.SubmitInput{
			DocumentID: doc.ID.String(), Decision: "accepted",
			Name: "Jane", Email: "jane@example.com", TextVersion: "v2",
		})
		require.NoError(t, err)

		second, err := svc.Submit(ctx, docapp.SubmitInput{
			DocumentID: doc.ID.String(), Decision: "declined",
			Name: "Mallory", Email: "mallory@example.com", TextVersion: "v2",
		})
		require.NoError(t, err)

		// The losing submission gets the stored decision back unchanged.
		assert.Equal(t, first.Decision, second.Decision)
		assert.Equal(t, first.AcceptedName, second.AcceptedName)
		assert.Equal(t, first.DecidedAt, second.DecidedAt)
	})

	t.Run("concurrent submissions agree on one winner", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		svc := docapp.NewDecisionService(repo, zap.NewNop())
		doc := seedDocument(t, repo, document.KindOffer, time.Now().Add(time.Hour))

		verdicts := []string{"accepted", "declined"}
		results := make([]*document.DecisionRecord, 10)
		var wg sync.WaitGroup
		for i := 0; i < len(results); i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rec, err := svc.Submit(ctx, docapp.SubmitInput{
					DocumentID: doc.ID.String(), Decision: verdicts[i%2],
					Name: "Racer", Email: "racer@example.com", TextVersion: "v1",
				})
				assert.NoError(t, err)
				results[i] = rec
			}(i)
		}
		wg.Wait()

		for _, rec := range results[1:] {
			assert.Equal(t, results[0].Decision, rec.Decision)
			assert.Equal(t, results[0].DecidedAt, rec.DecidedAt)
		}
	})

	t.Run("invoices are not decidable", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		svc := docapp.NewDecisionService(repo, zap.NewNop())
		doc := seedDocument(t, repo, document.KindInvoice, time.Now().Add(time.Hour))

		_, err := svc.Submit(ctx, docapp.SubmitInput{
			DocumentID: doc.ID.String(), Decision: "accepted",
			Name: "Jane", Email: "jane@example.com", TextVersion: "v1",
		})
		assert.ErrorIs(t, err, shared.ErrNotDecidable)
	})

	t.Run("expired offers reject decisions", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		svc := docapp.NewDecisionService(repo, zap.NewNop())
		doc := seedDocument(t, repo, document.KindOffer, time.Now().Add(-time.Minute))

		_, err := svc.Submit(ctx, docapp.SubmitInput{
			DocumentID: doc.ID.String(), Decision: "accepted",
			Name: "Jane", Email: "jane@example.com", TextVersion: "v1",
		})
		assert.ErrorIs(t, err, shared.ErrDocumentExpired)
	})

	t.Run("unknown document is not found", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		svc := docapp.NewDecisionService(repo, zap.NewNop())

		_, err := svc.Submit(ctx, docapp.SubmitInput{
			DocumentID: "8f14e45f-ceea-467f-a0d6-000000000000", Decision: "accepted",
			Name: "Jane", Email: "jane@example.com", TextVersion: "v1",
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("invalid payload never reaches the store", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		svc := docapp.NewDecisionService(repo, zap.NewNop())
		doc := seedDocument(t, repo, document.KindOffer, time.Now().Add(time.Hour))

		_, err := svc.Submit(ctx, docapp.SubmitInput{
			DocumentID: doc.ID.String(), Decision: "maybe",
			Name: "Jane", Email: "jane@example.com", TextVersion: "v1",
		})
		require.Error(t, err)

		stored, err := repo.FindByID(ctx, doc.ID.String())
		require.NoError(t, err)
		assert.Nil(t, stored.Decision)
	})
}

func TestPrecheck(t *testing.T) {
	ctx := context.Background()
	repo := newFakeDocumentRepo()
	svc := docapp.NewDecisionService(repo, zap.NewNop())

	open := seedDocument(t, repo, document.KindOffer, time.Now().Add(time.Hour))
	invoice := seedDocument(t, repo, document.KindInvoice, time.Now().Add(time.Hour))
	expired := seedDocument(t, repo, document.KindOffer, time.Now().Add(-time.Hour))

	assert.NoError(t, svc.Precheck(ctx, open.ID.String()))
	assert.ErrorIs(t, svc.Precheck(ctx, invoice.ID.String()), shared.ErrNotDecidable)
	assert.ErrorIs(t, svc.Precheck(ctx, expired.ID.String()), shared.ErrDocumentExpired)
	assert.ErrorIs(t, svc.Precheck(ctx, "nope"), shared.ErrNotFound)
}
