package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	accessapp "github.com/doclink/backend/internal/application/access"
	docapp "github.com/doclink/backend/internal/application/document"
	"github.com/doclink/backend/internal/domain/shared"
	"github.com/doclink/backend/internal/infrastructure/auth"
	"github.com/doclink/backend/internal/infrastructure/config"
	"github.com/doclink/backend/internal/infrastructure/storage"
	"github.com/doclink/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "test-publish-key"

type publishFixture struct {
	engine *gin.Engine
	repo   *memDocumentRepo
	blobs  *storage.MemoryBlobStore
	links  *accessapp.LinkService
}

func newPublishFixture(t *testing.T) *publishFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	repo := newMemDocumentRepo()
	tokens := newMemTokenRepo()
	blobs := storage.NewMemoryBlobStore()

	publish := docapp.NewPublishService(repo, blobs, zap.NewNop())
	links := accessapp.NewLinkService(tokens, 90, zap.NewNop())
	authenticator := auth.NewPublishAuthenticator(config.PublishAuthConfig{APIKey: testAPIKey, Strict: true})

	h := NewPublishHandler(publish, links, middleware.PublishAuth(authenticator), testOrigin)

	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/v1"))
	return &publishFixture{engine: engine, repo: repo, blobs: blobs, links: links}
}

func (f *publishFixture) post(path, body, apiKey string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set(middleware.PublishKeyHeader, apiKey)
	}
	f.engine.ServeHTTP(w, req)
	return w
}

func TestPublishDocument(t *testing.T) {
	t.Run("publishes and returns the opaque URL", func(t *testing.T) {
		f := newPublishFixture(t)

		w := f.post("/api/v1/publish/documents",
			`{"kind":"offer","token":"raw-publish-token","customer_ref":"cust-1","snapshot":{"total":"100"}}`,
			testAPIKey)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Data publishDocumentResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "offer", resp.Data.Kind)
		assert.Equal(t, testOrigin+"/api/v1/documents/"+resp.Data.DocumentID, resp.Data.URL)
		assert.NotContains(t, w.Body.String(), "raw-publish-token")
		assert.NotContains(t, w.Body.String(), shared.HashToken("raw-publish-token"))
	})

	t.Run("republish answers the same URL", func(t *testing.T) {
		f := newPublishFixture(t)
		body := `{"kind":"offer","token":"raw-publish-token","customer_ref":"cust-1"}`

		first := f.post("/api/v1/publish/documents", body, testAPIKey)
		second := f.post("/api/v1/publish/documents", body, testAPIKey)
		require.Equal(t, http.StatusOK, first.Code)
		require.Equal(t, http.StatusOK, second.Code)

		var a, b struct {
			Data publishDocumentResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
		assert.Equal(t, a.Data.DocumentID, b.Data.DocumentID)
	})

	t.Run("stores an inline PDF", func(t *testing.T) {
		f := newPublishFixture(t)
		pdf := base64.StdEncoding.EncodeToString([]byte("%PDF-1.7"))

		w := f.post("/api/v1/publish/documents",
			`{"kind":"invoice","token":"invoice-token-1","customer_ref":"cust-1","pdf_base64":"`+pdf+`"}`,
			testAPIKey)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"has_pdf":true`)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		f := newPublishFixture(t)
		w := f.post("/api/v1/publish/documents",
			`{"kind":"offer","token":"offer-token-12","pdf_base64":"%%%"}`, testAPIKey)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		f := newPublishFixture(t)
		w := f.post("/api/v1/publish/documents",
			`{"kind":"quote","token":"offer-token-12"}`, testAPIKey)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects short tokens", func(t *testing.T) {
		f := newPublishFixture(t)
		w := f.post("/api/v1/publish/documents",
			`{"kind":"offer","token":"short"}`, testAPIKey)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires the API key", func(t *testing.T) {
		f := newPublishFixture(t)
		w := f.post("/api/v1/publish/documents",
			`{"kind":"offer","token":"offer-token-12"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAccessLinkEndpoints(t *testing.T) {
	t.Run("issues a link with the raw token", func(t *testing.T) {
		f := newPublishFixture(t)

		w := f.post("/api/v1/publish/access-links",
			`{"customer_ref":"cust-1","customer_label":"ACME"}`, testAPIKey)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Data accessLinkResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Data.Token, 64)
		assert.Contains(t, resp.Data.URL, "/api/v1/links/"+resp.Data.Token+"/documents")
	})

	t.Run("requires a customer ref", func(t *testing.T) {
		f := newPublishFixture(t)
		w := f.post("/api/v1/publish/access-links", `{}`, testAPIKey)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects customer refs outside the safe alphabet", func(t *testing.T) {
		f := newPublishFixture(t)
		w := f.post("/api/v1/publish/access-links",
			`{"customer_ref":"cust 1; drop"}`, testAPIKey)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rotation endpoint replaces existing links", func(t *testing.T) {
		f := newPublishFixture(t)

		issue := f.post("/api/v1/publish/access-links", `{"customer_ref":"cust-1"}`, testAPIKey)
		require.Equal(t, http.StatusOK, issue.Code)
		var issued struct {
			Data accessLinkResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(issue.Body.Bytes(), &issued))

		rotate := f.post("/api/v1/publish/access-links/rotate", `{"customer_ref":"cust-1"}`, testAPIKey)
		require.Equal(t, http.StatusOK, rotate.Code)

		res, err := f.links.Resolve(t.Context(), issued.Data.Token)
		require.NoError(t, err)
		assert.Equal(t, "revoked", string(res.Status))
	})
}
