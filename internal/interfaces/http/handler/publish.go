package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	accessapp "github.com/doclink/backend/internal/application/access"
	docapp "github.com/doclink/backend/internal/application/document"
	"github.com/doclink/backend/internal/domain/document"
	"github.com/doclink/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PublishHandler serves the back-office publishing surface. Every route it
// registers sits behind the publish API key middleware.
type PublishHandler struct {
	BaseHandler
	publish      *docapp.PublishService
	links        *accessapp.LinkService
	auth         gin.HandlerFunc
	publicOrigin string
}

// NewPublishHandler creates a new PublishHandler
func NewPublishHandler(publish *docapp.PublishService, links *accessapp.LinkService, auth gin.HandlerFunc, publicOrigin string) *PublishHandler {
	return &PublishHandler{
		publish:      publish,
		links:        links,
		auth:         auth,
		publicOrigin: publicOrigin,
	}
}

// RegisterRoutes registers the publishing routes
func (h *PublishHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/publish")
	g.Use(h.auth)
	g.POST("/documents", h.PublishDocument)
	g.POST("/access-links", h.IssueAccessLink)
	g.POST("/access-links/rotate", h.RotateAccessLink)
}

type publishDocumentRequest struct {
	Kind          string          `json:"kind" binding:"required,oneof=offer invoice"`
	Token         string          `json:"token" binding:"required,min=8"`
	CustomerRef   string          `json:"customer_ref" binding:"omitempty,customer_ref,max=128"`
	CustomerLabel string          `json:"customer_label" binding:"omitempty,max=256"`
	ExpiresAt     *time.Time      `json:"expires_at"`
	Snapshot      json.RawMessage `json:"snapshot"`
	PDFBase64     string          `json:"pdf_base64"`
}

type publishDocumentResponse struct {
	DocumentID  string     `json:"document_id"`
	Kind        string     `json:"kind"`
	CustomerRef string     `json:"customer_ref"`
	URL         string     `json:"url"`
	PublishedAt time.Time  `json:"published_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	HasPDF      bool       `json:"has_pdf"`
	Decided     bool       `json:"decided"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

// PublishDocument upserts a document under the hash of its publish token.
// POST /api/v1/publish/documents
func (h *PublishHandler) PublishDocument(c *gin.Context) {
	var req publishDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidJSON), dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	var pdf []byte
	if req.PDFBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.PDFBase64)
		if err != nil {
			h.BadRequest(c, "pdf_base64 is not valid base64")
			return
		}
		pdf = decoded
	}

	doc, err := h.publish.Publish(c.Request.Context(), docapp.PublishInput{
		Kind:          document.Kind(req.Kind),
		Token:         req.Token,
		CustomerRef:   req.CustomerRef,
		CustomerLabel: req.CustomerLabel,
		ExpiresAt:     req.ExpiresAt,
		Snapshot:      req.Snapshot,
		PDF:           pdf,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := publishDocumentResponse{
		DocumentID:  doc.ID.String(),
		Kind:        string(doc.Kind),
		CustomerRef: doc.CustomerRef,
		URL:         fmt.Sprintf("%s/api/v1/documents/%s", h.publicOrigin, doc.ID),
		PublishedAt: doc.PublishedAt,
		ExpiresAt:   doc.ExpiresAt,
		HasPDF:      doc.PDFKey != "",
		Decided:     doc.IsDecided(),
	}
	if doc.Decision != nil {
		resp.DecidedAt = &doc.Decision.DecidedAt
	}
	h.Success(c, resp)
}

type accessLinkRequest struct {
	CustomerRef   string `json:"customer_ref" binding:"required,customer_ref,max=128"`
	CustomerLabel string `json:"customer_label" binding:"omitempty,max=256"`
	TTLDays       int    `json:"ttl_days" binding:"omitempty,min=1,max=3650"`
}

type accessLinkResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueAccessLink mints a fresh customer access link. Existing links for
// the customer keep working.
// POST /api/v1/publish/access-links
func (h *PublishHandler) IssueAccessLink(c *gin.Context) {
	h.issueLink(c, h.links.Issue)
}

// RotateAccessLink revokes every active link for the customer and returns
// a replacement in one step.
// POST /api/v1/publish/access-links/rotate
func (h *PublishHandler) RotateAccessLink(c *gin.Context) {
	h.issueLink(c, h.links.Rotate)
}

type linkOp func(ctx context.Context, customerRef, label string, ttlDays int) (*accessapp.IssuedLink, error)

func (h *PublishHandler) issueLink(c *gin.Context, op linkOp) {
	var req accessLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidJSON), dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	link, err := op(c.Request.Context(), req.CustomerRef, req.CustomerLabel, req.TTLDays)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, accessLinkResponse{
		Token:     link.Token,
		URL:       fmt.Sprintf("%s/api/v1/links/%s/documents", h.publicOrigin, link.Token),
		ExpiresAt: link.ExpiresAt,
	})
}
