package handler

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
	"time"

	docapp "github.com/doclink/backend/internal/application/document"
	"github.com/doclink/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DecisionHandler accepts the customer's accept/decline on an offer.
// Check order on submission: write rate limit (middleware), document
// existence and kind, expiry, then origin and CSRF for browser form
// posts, then payload validation. A probe against a missing document is
// answered 404 before any transport check can leak a different signal.
type DecisionHandler struct {
	BaseHandler
	decisions    *docapp.DecisionService
	writeLimit   gin.HandlerFunc
	publicOrigin string
	cookieName   string
	logger       *zap.Logger
}

// NewDecisionHandler creates a new DecisionHandler
func NewDecisionHandler(decisions *docapp.DecisionService, writeLimit gin.HandlerFunc, publicOrigin, cookieName string, logger *zap.Logger) *DecisionHandler {
	return &DecisionHandler{
		decisions:    decisions,
		writeLimit:   writeLimit,
		publicOrigin: publicOrigin,
		cookieName:   cookieName,
		logger:       logger,
	}
}

// RegisterRoutes registers the decision route
func (h *DecisionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/decision", h.writeLimit, h.SubmitDecision)
}

type decisionRequest struct {
	Decision    string `json:"decision" form:"decision"`
	Name        string `json:"accepted_name" form:"accepted_name"`
	Email       string `json:"accepted_email" form:"accepted_email"`
	TextVersion string `json:"decision_text_version" form:"decision_text_version"`
	CSRFToken   string `json:"-" form:"csrf_token"`
}

type decisionResponse struct {
	Decision    string    `json:"decision"`
	DecidedAt   time.Time `json:"decided_at"`
	Name        string    `json:"accepted_name"`
	Email       string    `json:"accepted_email"`
	TextVersion string    `json:"decision_text_version"`
}

// SubmitDecision commits an accept/decline at most once.
// POST /api/v1/documents/:id/decision
func (h *DecisionHandler) SubmitDecision(c *gin.Context) {
	id := c.Param("id")

	if err := h.decisions.Precheck(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	isForm := isFormContentType(c.ContentType())
	if isForm {
		if !h.originAllowed(c) {
			h.Error(c, http.StatusForbidden, dto.ErrCodeOriginInvalid,
				"Submission must originate from this site")
			return
		}
		if !h.csrfValid(c) {
			h.Error(c, http.StatusForbidden, dto.ErrCodeCSRFInvalid,
				"Missing or invalid CSRF token")
			return
		}
	}

	var req decisionRequest
	var bindErr error
	if isForm {
		bindErr = c.ShouldBind(&req)
	} else {
		bindErr = c.ShouldBindJSON(&req)
	}
	if bindErr != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidJSON), dto.ErrCodeInvalidJSON,
			"Invalid request body: "+bindErr.Error())
		return
	}

	rec, err := h.decisions.Submit(c.Request.Context(), docapp.SubmitInput{
		DocumentID:  id,
		Decision:    req.Decision,
		Name:        req.Name,
		Email:       req.Email,
		TextVersion: req.TextVersion,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, decisionResponse{
		Decision:    string(rec.Decision),
		DecidedAt:   rec.DecidedAt,
		Name:        rec.AcceptedName,
		Email:       rec.AcceptedEmail,
		TextVersion: rec.TextVersion,
	})
}

// isFormContentType reports whether the submission is a browser form
// post. JSON submissions come from programmatic clients that carry no
// ambient cookie credentials, so only form posts go through the origin
// and CSRF gates.
func isFormContentType(ct string) bool {
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

// originAllowed requires the Origin header (or the Referer's origin when
// Origin is absent) to exactly match the configured public origin.
// Neither header present means reject.
func (h *DecisionHandler) originAllowed(c *gin.Context) bool {
	if origin := c.GetHeader("Origin"); origin != "" {
		return origin == h.publicOrigin
	}
	referer := c.GetHeader("Referer")
	if referer == "" {
		return false
	}
	u, err := url.Parse(referer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	return u.Scheme+"://"+u.Host == h.publicOrigin
}

// csrfValid applies the double-submit check: the cookie minted at view
// time and the hidden form field must both be present and equal.
func (h *DecisionHandler) csrfValid(c *gin.Context) bool {
	cookie, err := c.Cookie(h.cookieName)
	if err != nil || cookie == "" {
		return false
	}
	field := strings.TrimSpace(c.PostForm("csrf_token"))
	if field == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(field)) == 1
}
