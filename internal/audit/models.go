package audit

import (
	"time"

	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
)

// Event is emitted from domain logic after an operation commits. Events are
// append-only and externally observable; they are not part of mutable state.
// Keep the shape transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	Action    Action      `json:"action"`
	Actor     id.WalletID `json:"actor"`
	// Subject names the record the event concerns: a TLD name, or
	// "<name>.<tld>" for domain records.
	Subject string `json:"subject,omitempty"`
	// Old and New carry the before/after values for configuration changes.
	Old string `json:"old,omitempty"`
	New string `json:"new,omitempty"`
	// Amount carries the fee or sale price moved, in minor units.
	Amount    uint64 `json:"amount,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Action identifies what happened.
type Action string

const (
	ActionServiceInitialized Action = "service_initialized"
	ActionAuthorityChanged   Action = "authority_changed"
	ActionTreasuryChanged    Action = "treasury_changed"
	ActionTLDCreated         Action = "tld_created"
	ActionDomainRegistered   Action = "domain_registered"
	ActionDomainRenewed      Action = "domain_renewed"
	ActionDomainTransferred  Action = "domain_transferred"
)
