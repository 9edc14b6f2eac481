package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/doclink/backend/internal/domain/access"
	"github.com/doclink/backend/internal/domain/document"
	"github.com/doclink/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// memDocumentRepo is an in-memory document.Repository for route tests
type memDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]*document.Document
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{docs: make(map[string]*document.Document)}
}

func (r *memDocumentRepo) add(doc *document.Document) *document.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	r.docs[doc.TokenHash] = doc
	return doc
}

func (r *memDocumentRepo) Upsert(ctx context.Context, doc *document.Document) (*document.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.docs[doc.TokenHash]; ok {
		doc.ID = existing.ID
		doc.Decision = existing.Decision
		if doc.PDFKey == "" {
			doc.PDFKey = existing.PDFKey
		}
	} else if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	stored := *doc
	r.docs[doc.TokenHash] = &stored
	out := stored
	return &out, nil
}

func (r *memDocumentRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*document.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.docs[tokenHash]; ok {
		out := *doc
		return &out, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memDocumentRepo) FindByID(ctx context.Context, id string) (*document.Document, error) {
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

func (r *memDocumentRepo) SetDecisionOnce(ctx context.Context, id string, rec document.DecisionRecord) (*document.DecisionRecord, error) {
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

func (r *memDocumentRepo) ListByCustomerRef(ctx context.Context, customerRef string, kind *document.Kind, limit int, cursor *document.Cursor) ([]document.Document, *document.Cursor, error) {
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
		kept := all[:0]
		for _, doc := range all {
			if doc.PublishedAt.Before(cursor.PublishedAt) ||
				(doc.PublishedAt.Equal(cursor.PublishedAt) && doc.TokenHash < cursor.TokenHash) {
				kept = append(kept, doc)
			}
		}
		all = kept
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

// memTokenRepo is an in-memory access.Repository for route tests
type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*access.Token
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]*access.Token)}
}

func (r *memTokenRepo) Create(ctx context.Context, token *access.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *token
	r.tokens[token.TokenHash] = &stored
	return nil
}

func (r *memTokenRepo) FindByHash(ctx context.Context, tokenHash string) (*access.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tok, ok := r.tokens[tokenHash]; ok {
		out := *tok
		return &out, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memTokenRepo) Rotate(ctx context.Context, newToken *access.Token, revokedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tok := range r.tokens {
		if tok.CustomerRef == newToken.CustomerRef && tok.RevokedAt == nil {
			at := revokedAt
			tok.RevokedAt = &at
		}
	}
	stored := *newToken
	r.tokens[newToken.TokenHash] = &stored
	return nil
}

// passThrough stands in for the rate-limit middleware in route tests
func passThrough(c *gin.Context) {
	c.Next()
}
