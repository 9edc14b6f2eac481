package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound           = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput       = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrLinkRevoked        = NewDomainError("LINK_REVOKED", "Access link has been revoked")
	ErrLinkExpired        = NewDomainError("LINK_EXPIRED", "Access link has expired")
	ErrDocumentExpired    = NewDomainError("DOCUMENT_EXPIRED", "Document has expired")
	ErrNotDecidable       = NewDomainError("NOT_DECIDABLE", "Document does not accept decisions")
	ErrOriginInvalid      = NewDomainError("ORIGIN_INVALID", "Request origin does not match the public origin")
	ErrCSRFInvalid        = NewDomainError("CSRF_INVALID", "CSRF token missing or mismatched")
	ErrUnauthorized       = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrPublishKeyRequired = NewDomainError("PUBLISH_KEY_REQUIRED", "Publish API key is required but not configured")
)
