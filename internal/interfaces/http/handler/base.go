package handler

import (
	"errors"
	"net/http"

	"github.com/doclink/backend/internal/domain/shared"
	"github.com/doclink/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithCursor sends a success response with a pagination cursor
func (h *BaseHandler) SuccessWithCursor(c *gin.Context, data any, nextCursor string) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithCursor(data, nextCursor))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError translates a service error into an HTTP response.
// Domain errors map through the code tables; anything else is a
// store-layer fault and surfaces as 500 without detail.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		apiCode, ok := dto.DomainErrorCodeMap[domainErr.Code]
		if !ok {
			apiCode = dto.ErrCodeInternal
		}
		h.Error(c, dto.GetHTTPStatus(apiCode), apiCode, domainErr.Message)
		return
	}
	_ = c.Error(err)
	h.InternalError(c, "Internal server error")
}
