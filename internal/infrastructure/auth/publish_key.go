// Package auth gates the publish endpoints behind a shared API key.
package auth

import (
	"crypto/subtle"

	"github.com/doclink/backend/internal/infrastructure/config"
)

// PublishDecision is the outcome of checking a presented publish key
type PublishDecision int

const (
	// PublishAllow lets the request through
	PublishAllow PublishDecision = iota
	// PublishUnauthorized rejects a wrong or missing key
	PublishUnauthorized
	// PublishMisconfigured means strict mode is on but no key is configured;
	// every call fails closed until the operator sets one.
	PublishMisconfigured
)

// PublishAuthenticator validates the shared publish credential
type PublishAuthenticator struct {
	cfg config.PublishAuthConfig
}

// NewPublishAuthenticator creates a new PublishAuthenticator
func NewPublishAuthenticator(cfg config.PublishAuthConfig) *PublishAuthenticator {
	return &PublishAuthenticator{cfg: cfg}
}

// Check classifies a presented key. With no key configured, strict mode
// fails closed and non-strict mode is an explicit opt-in to an open
// deployment (local development). The comparison is constant-time since
// this guards a write path.
func (a *PublishAuthenticator) Check(presentedKey string) PublishDecision {
	if a.cfg.APIKey == "" {
		if a.cfg.Strict {
			return PublishMisconfigured
		}
		return PublishAllow
	}
	if subtle.ConstantTimeCompare([]byte(presentedKey), []byte(a.cfg.APIKey)) == 1 {
		return PublishAllow
	}
	return PublishUnauthorized
}
