package middleware

import (
	"net/http"

	"github.com/doclink/backend/internal/infrastructure/auth"
	"github.com/doclink/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PublishKeyHeader carries the shared publish credential
const PublishKeyHeader = "X-API-Key"

// PublishAuth returns a middleware gating the publish endpoints.
// A wrong or missing key gets 401 with a challenge; a strict deployment
// without a configured key fails closed with 503 so operators see a
// deployment fault, not an attack.
func PublishAuth(authenticator *auth.PublishAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch authenticator.Check(c.GetHeader(PublishKeyHeader)) {
		case auth.PublishAllow:
			c.Next()
		case auth.PublishMisconfigured:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				dto.NewErrorResponse(dto.ErrCodePublishKeyRequired,
					"Publishing is disabled until an API key is configured"))
		default:
			c.Header("WWW-Authenticate", `ApiKey realm="publish"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Invalid or missing publish API key"))
		}
	}
}
