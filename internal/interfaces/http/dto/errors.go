package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found, including when
	// the caller has no claim to know whether it exists
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeGone is used when a document or link is past its expiry
	ErrCodeGone = "ERR_GONE"
)

// Access error codes
const (
	// ErrCodeUnauthorized is used when the publish key is wrong or absent
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeRevoked is used when an access link has been rotated away
	ErrCodeRevoked = "ERR_REVOKED"
	// ErrCodeOriginInvalid is used when a form submission's origin does not
	// match the configured public origin
	ErrCodeOriginInvalid = "ERR_ORIGIN_INVALID"
	// ErrCodeCSRFInvalid is used when the CSRF cookie/field pair is missing
	// or mismatched
	ErrCodeCSRFInvalid = "ERR_CSRF_INVALID"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when the fixed-window budget is exhausted
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// Operational error codes
const (
	// ErrCodePublishKeyRequired is used when strict publish auth is enabled
	// with no key configured; distinct from 401 so operators do not mistake
	// a deployment fault for an attack
	ErrCodePublishKeyRequired = "ERR_PUBLISH_KEY_REQUIRED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeGone:     http.StatusGone,

	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeRevoked:       http.StatusForbidden,
	ErrCodeOriginInvalid: http.StatusForbidden,
	ErrCodeCSRFInvalid:   http.StatusForbidden,

	ErrCodeRateLimited: http.StatusTooManyRequests,

	ErrCodePublishKeyRequired: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an error code,
// defaulting to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMap translates domain error codes into API error codes
var DomainErrorCodeMap = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"LINK_REVOKED":         ErrCodeRevoked,
	"LINK_EXPIRED":         ErrCodeGone,
	"DOCUMENT_EXPIRED":     ErrCodeGone,
	"NOT_DECIDABLE":        ErrCodeNotFound,
	"ORIGIN_INVALID":       ErrCodeOriginInvalid,
	"CSRF_INVALID":         ErrCodeCSRFInvalid,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"PUBLISH_KEY_REQUIRED": ErrCodePublishKeyRequired,
}
