package document

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/doclink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind discriminates the document variants. Offers and invoices share all
// fields; they differ only in decision eligibility and default expiry.
type Kind string

const (
	KindOffer   Kind = "offer"
	KindInvoice Kind = "invoice"
)

// IsValid checks whether the kind is a known document kind
func (k Kind) IsValid() bool {
	return k == KindOffer || k == KindInvoice
}

// DefaultTTL returns the default validity period for documents of this kind
func (k Kind) DefaultTTL() time.Duration {
	if k == KindOffer {
		return 30 * 24 * time.Hour
	}
	return 90 * 24 * time.Hour
}

// Decision is the customer's verdict on an offer
type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionDeclined Decision = "declined"
)

// IsValid checks whether the decision is a known verdict
func (d Decision) IsValid() bool {
	return d == DecisionAccepted || d == DecisionDeclined
}

// DecisionRecord captures a customer's irrevocable accept/decline of an offer.
// At most one record ever exists per document; the first writer wins.
type DecisionRecord struct {
	Decision      Decision  `json:"decision"`
	DecidedAt     time.Time `json:"decided_at"`
	AcceptedName  string    `json:"accepted_name"`
	AcceptedEmail string    `json:"accepted_email"`
	TextVersion   string    `json:"decision_text_version"`
}

// NewDecisionRecord validates and builds a decision record.
// The email is normalized to lower case.
func NewDecisionRecord(decision Decision, name, email, textVersion string, decidedAt time.Time) (*DecisionRecord, error) {
	if !decision.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Decision must be 'accepted' or 'declined'")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Name is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Email is required")
	}
	if strings.TrimSpace(textVersion) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Decision text version is required")
	}
	return &DecisionRecord{
		Decision:      decision,
		DecidedAt:     decidedAt,
		AcceptedName:  name,
		AcceptedEmail: email,
		TextVersion:   textVersion,
	}, nil
}

// Document is the system of record for a published offer or invoice.
// ID is opaque and stable: it is assigned exactly once per token hash and
// never changes on re-publish. The raw publish token is never stored.
type Document struct {
	ID            uuid.UUID
	TokenHash     string
	Kind          Kind
	CustomerRef   string
	CustomerLabel string
	PublishedAt   time.Time
	ExpiresAt     time.Time
	Snapshot      json.RawMessage
	TotalAmount   decimal.Decimal
	PDFKey        string
	Decision      *DecisionRecord
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsExpired reports whether the document is past its expiry at the given time.
// Expiry is a read-time overlay, not a stored state.
func (d *Document) IsExpired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && now.After(d.ExpiresAt)
}

// IsDecided reports whether a decision has been recorded
func (d *Document) IsDecided() bool {
	return d.Decision != nil
}

// CanDecide checks whether a decision submission is currently admissible.
// Invoices never accept decisions; expired offers reject new decisions.
// An already-decided offer is still "decidable" at this level: the store
// resolves the race by returning the existing decision unchanged.
func (d *Document) CanDecide(now time.Time) error {
	if d.Kind != KindOffer {
		return shared.ErrNotDecidable
	}
	if d.IsExpired(now) {
		return shared.ErrDocumentExpired
	}
	return nil
}
