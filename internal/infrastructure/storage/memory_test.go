package storage

import (
	"testing"

	"github.com/doclink/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlobStore(t *testing.T) {
	t.Run("round-trips a blob", func(t *testing.T) {
		store := NewMemoryBlobStore()
		require.NoError(t, store.Put(t.Context(), "documents/a.pdf", []byte("%PDF-1.7"), "application/pdf"))

		data, err := store.Get(t.Context(), "documents/a.pdf")
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.7"), data)
	})

	t.Run("missing key answers not found", func(t *testing.T) {
		store := NewMemoryBlobStore()
		_, err := store.Get(t.Context(), "documents/missing.pdf")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("stored bytes are isolated from the caller's slice", func(t *testing.T) {
		store := NewMemoryBlobStore()
		payload := []byte("original")
		require.NoError(t, store.Put(t.Context(), "k", payload, "application/octet-stream"))
		payload[0] = 'X'

		data, err := store.Get(t.Context(), "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("original"), data)

		data[0] = 'Y'
		again, err := store.Get(t.Context(), "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("original"), again)
	})
}
