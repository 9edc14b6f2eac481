package document

import (
	"errors"
	"testing"
	"time"

	"github.com/doclink/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	t.Run("validates known kinds", func(t *testing.T) {
		assert.True(t, KindOffer.IsValid())
		assert.True(t, KindInvoice.IsValid())
		assert.False(t, Kind("quote").IsValid())
		assert.False(t, Kind("").IsValid())
	})

	t.Run("offers default to 30 days", func(t *testing.T) {
		assert.Equal(t, 30*24*time.Hour, KindOffer.DefaultTTL())
	})

	t.Run("invoices default to 90 days", func(t *testing.T) {
		assert.Equal(t, 90*24*time.Hour, KindInvoice.DefaultTTL())
	})
}

func TestNewDecisionRecord(t *testing.T) {
	now := time.Now()

	t.Run("builds a valid record", func(t *testing.T) {
		rec, err := NewDecisionRecord(DecisionAccepted, "Jane Doe", "jane@example.com", "v3", now)
		require.NoError(t, err)
		assert.Equal(t, DecisionAccepted, rec.Decision)
		assert.Equal(t, "Jane Doe", rec.AcceptedName)
		assert.Equal(t, "jane@example.com", rec.AcceptedEmail)
		assert.Equal(t, "v3", rec.TextVersion)
		assert.Equal(t, now, rec.DecidedAt)
	})

	t.Run("normalizes email to lower case", func(t *testing.T) {
		rec, err := NewDecisionRecord(DecisionDeclined, "Jane", "Jane@Example.COM", "v1", now)
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", rec.AcceptedEmail)
	})

	t.Run("trims name whitespace", func(t *testing.T) {
		rec, err := NewDecisionRecord(DecisionAccepted, "  Jane  ", "j@e.com", "v1", now)
		require.NoError(t, err)
		assert.Equal(t, "Jane", rec.AcceptedName)
	})

	t.Run("rejects unknown verdicts", func(t *testing.T) {
		_, err := NewDecisionRecord(Decision("maybe"), "Jane", "j@e.com", "v1", now)
		require.Error(t, err)
		var derr *shared.DomainError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, "INVALID_INPUT", derr.Code)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewDecisionRecord(DecisionAccepted, "   ", "j@e.com", "v1", now)
		assert.Error(t, err)
	})

	t.Run("rejects empty email", func(t *testing.T) {
		_, err := NewDecisionRecord(DecisionAccepted, "Jane", "", "v1", now)
		assert.Error(t, err)
	})

	t.Run("rejects empty text version", func(t *testing.T) {
		_, err := NewDecisionRecord(DecisionAccepted, "Jane", "j@e.com", " ", now)
		assert.Error(t, err)
	})
}

func TestDocumentExpiry(t *testing.T) {
	now := time.Now()

	t.Run("not expired before deadline", func(t *testing.T) {
		doc := &Document{ExpiresAt: now.Add(time.Hour)}
		assert.False(t, doc.IsExpired(now))
	})

	t.Run("expired after deadline", func(t *testing.T) {
		doc := &Document{ExpiresAt: now.Add(-time.Second)}
		assert.True(t, doc.IsExpired(now))
	})

	t.Run("zero deadline never expires", func(t *testing.T) {
		doc := &Document{}
		assert.False(t, doc.IsExpired(now))
	})
}

func TestDocumentCanDecide(t *testing.T) {
	now := time.Now()

	t.Run("open offer is decidable", func(t *testing.T) {
		doc := &Document{Kind: KindOffer, ExpiresAt: now.Add(time.Hour)}
		assert.NoError(t, doc.CanDecide(now))
	})

	t.Run("invoices are never decidable", func(t *testing.T) {
		doc := &Document{Kind: KindInvoice, ExpiresAt: now.Add(time.Hour)}
		assert.ErrorIs(t, doc.CanDecide(now), shared.ErrNotDecidable)
	})

	t.Run("expired offers reject decisions", func(t *testing.T) {
		doc := &Document{Kind: KindOffer, ExpiresAt: now.Add(-time.Minute)}
		assert.ErrorIs(t, doc.CanDecide(now), shared.ErrDocumentExpired)
	})

	t.Run("decided offer remains decidable at this level", func(t *testing.T) {
		doc := &Document{
			Kind:      KindOffer,
			ExpiresAt: now.Add(time.Hour),
			Decision:  &DecisionRecord{Decision: DecisionAccepted, DecidedAt: now},
		}
		assert.NoError(t, doc.CanDecide(now))
		assert.True(t, doc.IsDecided())
	})
}
