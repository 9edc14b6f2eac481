package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	accessapp "github.com/doclink/backend/internal/application/access"
	docapp "github.com/doclink/backend/internal/application/document"
	"github.com/doclink/backend/internal/domain/access"
	"github.com/doclink/backend/internal/domain/document"
	"github.com/doclink/backend/internal/domain/shared"
	"github.com/doclink/backend/internal/infrastructure/config"
	"github.com/doclink/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PortalHandler serves the customer-facing read surface: access-link
// listings, document views, PDF downloads and the legacy token routes.
type PortalHandler struct {
	BaseHandler
	portal        *docapp.PortalService
	links         *accessapp.LinkService
	readLimit     gin.HandlerFunc
	cookie        config.CookieConfig
	secureCookies bool
	logger        *zap.Logger
}

// NewPortalHandler creates a new PortalHandler
func NewPortalHandler(portal *docapp.PortalService, links *accessapp.LinkService, readLimit gin.HandlerFunc, cookie config.CookieConfig, secureCookies bool, logger *zap.Logger) *PortalHandler {
	return &PortalHandler{
		portal:        portal,
		links:         links,
		readLimit:     readLimit,
		cookie:        cookie,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// RegisterRoutes registers the customer portal routes
func (h *PortalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/links/:token/documents", h.readLimit, h.ListDocuments)
	rg.GET("/documents/:id", h.readLimit, h.GetDocument)
	rg.GET("/documents/:id/pdf", h.readLimit, h.GetDocumentPDF)

	// Pre-rework URLs embedded the publish token directly. They stay
	// readable but answer with a redirect to the canonical location.
	rg.GET("/offers/:token", h.readLimit, h.legacyRedirect(document.KindOffer))
	rg.GET("/invoices/:token", h.readLimit, h.legacyRedirect(document.KindInvoice))
}

// documentSummary is one row in a customer's listing. It carries the
// opaque document URL and never anything derived from the publish token.
type documentSummary struct {
	DocumentID    string     `json:"document_id"`
	Kind          string     `json:"kind"`
	CustomerLabel string     `json:"customer_label,omitempty"`
	URL           string     `json:"url"`
	PublishedAt   time.Time  `json:"published_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	Expired       bool       `json:"expired"`
	Total         string     `json:"total"`
	Decided       bool       `json:"decided"`
	Decision      string     `json:"decision,omitempty"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
}

func summarize(doc *document.Document, now time.Time) documentSummary {
	s := documentSummary{
		DocumentID:    doc.ID.String(),
		Kind:          string(doc.Kind),
		CustomerLabel: doc.CustomerLabel,
		URL:           fmt.Sprintf("/api/v1/documents/%s", doc.ID),
		PublishedAt:   doc.PublishedAt,
		ExpiresAt:     doc.ExpiresAt,
		Expired:       doc.IsExpired(now),
		Total:         doc.TotalAmount.String(),
		Decided:       doc.IsDecided(),
	}
	if doc.Decision != nil {
		s.Decision = string(doc.Decision.Decision)
		s.DecidedAt = &doc.Decision.DecidedAt
	}
	return s
}

// ListDocuments lists the documents reachable through an access link.
// GET /api/v1/links/:token/documents?kind=&limit=&cursor=
func (h *PortalHandler) ListDocuments(c *gin.Context) {
	res, err := h.links.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	switch res.Status {
	case access.StatusValid:
	case access.StatusRevoked:
		h.Error(c, http.StatusForbidden, dto.ErrCodeRevoked, "This access link has been replaced")
		return
	case access.StatusExpired:
		h.Error(c, http.StatusGone, dto.ErrCodeGone, "This access link has expired")
		return
	default:
		h.NotFound(c, "Access link not found")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "limit must be an integer")
			return
		}
		limit = parsed
	}

	page, err := h.portal.List(c.Request.Context(), res.CustomerRef, c.Query("kind"), limit, c.Query("cursor"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	now := time.Now()
	items := make([]documentSummary, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, summarize(&page.Items[i], now))
	}

	if page.NextCursor != "" {
		h.SuccessWithCursor(c, items, page.NextCursor)
		return
	}
	h.Success(c, items)
}

// documentView is the full single-document payload. The snapshot passes
// through verbatim; CSRFToken is present only when the view itself minted
// a decision cookie.
type documentView struct {
	documentSummary
	Snapshot  any    `json:"snapshot"`
	HasPDF    bool   `json:"has_pdf"`
	PDFURL    string `json:"pdf_url,omitempty"`
	Decidable bool   `json:"decidable"`
	CSRFToken string `json:"csrf_token,omitempty"`
}

// GetDocument returns one document by its opaque ID. Viewing an open,
// undecided offer arms the decision form: a CSRF token is minted, set as
// a cookie and echoed in the payload.
// GET /api/v1/documents/:id
func (h *PortalHandler) GetDocument(c *gin.Context) {
	doc, err := h.portal.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	now := time.Now()
	view := documentView{
		documentSummary: summarize(doc, now),
		Snapshot:        doc.Snapshot,
		HasPDF:          doc.PDFKey != "",
		Decidable:       doc.CanDecide(now) == nil && !doc.IsDecided(),
	}
	if view.HasPDF {
		view.PDFURL = fmt.Sprintf("/api/v1/documents/%s/pdf", doc.ID)
	}

	if view.Decidable {
		token, err := mintCSRFToken()
		if err != nil {
			h.logger.Error("Failed to mint CSRF token", zap.Error(err))
			h.InternalError(c, "Internal server error")
			return
		}
		setCSRFCookie(c, h.cookie.Name, token, h.cookie.MaxAge, h.secureCookies)
		view.CSRFToken = token
	}

	h.Success(c, view)
}

// GetDocumentPDF streams the stored PDF for a document.
// GET /api/v1/documents/:id/pdf
func (h *PortalHandler) GetDocumentPDF(c *gin.Context) {
	data, err := h.portal.GetPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="document.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// legacyRedirect resolves a raw publish token to its canonical opaque-ID
// location. A token published under a different kind answers 404, the
// same as an unknown token.
func (h *PortalHandler) legacyRedirect(kind document.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := h.portal.GetByTokenHash(c.Request.Context(), shared.HashToken(c.Param("token")))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if doc.Kind != kind {
			h.NotFound(c, "Document not found")
			return
		}
		c.Redirect(http.StatusFound, fmt.Sprintf("/api/v1/documents/%s", doc.ID))
	}
}
