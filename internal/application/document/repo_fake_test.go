package document_test

import (
	"context"
	"sort"
	"sync"

	"github.com/doclink/backend/internal/domain/document"
	"github.com/doclink/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// fakeDocumentRepo is an in-memory document.Repository with the same
// first-write-wins and ordering semantics as the real store.
type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]*document.Document // keyed by token hash
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*document.Document)}
}

func (r *fakeDocumentRepo) Upsert(ctx context.Context, doc *document.Document) (*document.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.docs[doc.TokenHash]; ok {
		updated := *doc
		updated.ID = existing.ID
		updated.Decision = existing.Decision
		if updated.PDFKey == "" {
			updated.PDFKey = existing.PDFKey
		}
		r.docs[doc.TokenHash] = &updated
		out := updated
		return &out, nil
	}

	stored := *doc
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	r.docs[doc.TokenHash] = &stored
	out := stored
	return &out, nil
}

func (r *fakeDocumentRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*document.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.docs[tokenHash]; ok {
		out := *doc
		return &out, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeDocumentRepo) FindByID(ctx context.Context, id string) (*document.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.ID.String() == id {
			out := *doc
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeDocumentRepo) SetDecisionOnce(ctx context.Context, id string, rec document.DecisionRecord) (*document.DecisionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.ID.String() == id {
			if doc.Decision == nil {
				stored := rec
				doc.Decision = &stored
			}
			out := *doc.Decision
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeDocumentRepo) ListByCustomerRef(ctx context.Context, customerRef string, kind *document.Kind, limit int, cursor *document.Cursor) ([]document.Document, *document.Cursor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	var all []document.Document
	for _, doc := range r.docs {
		if doc.CustomerRef != customerRef {
			continue
		}
		if kind != nil && doc.Kind != *kind {
			continue
		}
		all = append(all, *doc)
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].PublishedAt.Equal(all[j].PublishedAt) {
			return all[i].PublishedAt.After(all[j].PublishedAt)
		}
		return all[i].TokenHash > all[j].TokenHash
	})

	if cursor != nil {
		filtered := all[:0]
		for _, doc := range all {
			before := doc.PublishedAt.Before(cursor.PublishedAt) ||
				(doc.PublishedAt.Equal(cursor.PublishedAt) && doc.TokenHash < cursor.TokenHash)
			if before {
				filtered = append(filtered, doc)
			}
		}
		all = filtered
	}

	if len(all) > limit {
		all = all[:limit]
	}

	var next *document.Cursor
	if len(all) == limit {
		last := all[len(all)-1]
		next = &document.Cursor{PublishedAt: last.PublishedAt, TokenHash: last.TokenHash}
	}
	return all, next, nil
}
