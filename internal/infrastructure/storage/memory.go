package storage

import (
	"context"
	"sync"

	docapp "github.com/doclink/backend/internal/application/document"
	"github.com/doclink/backend/internal/domain/shared"
)

// Ensure MemoryBlobStore implements BlobStore
var _ docapp.BlobStore = (*MemoryBlobStore)(nil)

// MemoryBlobStore is a process-local blob store for development and tests
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore creates a new MemoryBlobStore
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

// Put stores the bytes under the given key
func (s *MemoryBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[key] = cp
	return nil
}

// Get returns the bytes stored under the key, or shared.ErrNotFound
func (s *MemoryBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}
