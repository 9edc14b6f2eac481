package document

import "context"

// BlobStore is the opaque byte store for document PDFs, keyed by string.
// Implementations live in infrastructure/storage and are selected once at
// process construction.
type BlobStore interface {
	// Put stores the bytes under the given key, overwriting any previous value
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get returns the bytes stored under the key, or shared.ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
}
