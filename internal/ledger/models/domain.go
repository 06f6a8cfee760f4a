package models

import (
	"fmt"
	"strings"
	"time"

	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	dErrors "github.com/kfrye1212/digitalpulse-tld/pkg/domain-errors"
)

// Name length bounds for domain records.
const (
	MinNameLen = 1
	MaxNameLen = 63
)

// RegistrationPeriod is the time a registration or renewal buys.
const RegistrationPeriod = 31_536_000 * time.Second

// Failure kinds surfaced by domain record operations.
var (
	ErrNameTooShort = dErrors.New(dErrors.CodeValidation, "domain name is too short")
	ErrNameTooLong  = dErrors.New(dErrors.CodeValidation, "domain name is too long")
	// ErrDomainInactive marks operations against a record whose active flag
	// is cleared. No current operation clears it; the state exists for
	// records seeded by older deployments.
	ErrDomainInactive = dErrors.New(dErrors.CodeInvalidState, "domain is not active")
	// ErrNotOwner rejects renewals by anyone but the record owner.
	ErrNotOwner = dErrors.New(dErrors.CodeUnauthorized, "caller is not the domain owner")
	// ErrUnauthorized rejects transfers where the named seller does not own
	// the record.
	ErrUnauthorized = dErrors.New(dErrors.CodeUnauthorized, "seller is not the domain owner")
)

// Domain is a registered name within a namespace.
//
// Invariants:
//   - Name is 1-63 characters, lowercase
//   - ExpiresAt is strictly after RegisteredAt
//   - Owner changes only through a successful transfer
//   - IsActive is set at creation and never cleared; expiry is informational
//     only and blocks nothing, including renewal
//
// Uniqueness is enforced by the store key derived from (Name, TLD).
type Domain struct {
	Name         string      `json:"name"`
	TLD          string      `json:"tld"`
	Owner        id.WalletID `json:"owner"`
	RegisteredAt time.Time   `json:"registered_at"`
	ExpiresAt    time.Time   `json:"expires_at"`
	IsActive     bool        `json:"is_active"`
	// AssetRef identifies the unique token issued alongside the record.
	// Zero when asset issuance is disabled.
	AssetRef id.TokenID `json:"asset_ref,omitempty"`
}

// NewDomain validates the name and constructs a record owned by owner,
// expiring one registration period after now.
func NewDomain(name, tld string, owner id.WalletID, now time.Time) (*Domain, error) {
	name = Normalize(name)
	if len(name) < MinNameLen {
		return nil, ErrNameTooShort
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &Domain{
		Name:         name,
		TLD:          tld,
		Owner:        owner,
		RegisteredAt: now,
		ExpiresAt:    now.Add(RegistrationPeriod),
		IsActive:     true,
	}, nil
}

// Normalize lowercases a domain name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FullName renders "<name>.<tld>".
func (d *Domain) FullName() string {
	return fmt.Sprintf("%s.%s", d.Name, d.TLD)
}

// IsExpired reports whether the record is past its expiry. Informational
// only: no operation deactivates or blocks an expired record.
func (d *Domain) IsExpired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}

// CanRenew checks that caller may renew the record.
func (d *Domain) CanRenew(caller id.WalletID) error {
	if !d.IsActive {
		return ErrDomainInactive
	}
	if d.Owner != caller {
		return ErrNotOwner
	}
	return nil
}

// ApplyRenewal resets the expiry to one registration period from now.
// Renewal does not stack on the previous expiry, so renewing early forfeits
// remaining time.
func (d *Domain) ApplyRenewal(now time.Time) {
	d.ExpiresAt = now.Add(RegistrationPeriod)
}

// CanTransfer checks that seller owns the active record.
func (d *Domain) CanTransfer(seller id.WalletID) error {
	if !d.IsActive {
		return ErrDomainInactive
	}
	if d.Owner != seller {
		return ErrUnauthorized
	}
	return nil
}

// ApplyTransfer hands ownership to buyer. Call CanTransfer first; the fund
// settlement happens before this in the same transaction.
func (d *Domain) ApplyTransfer(buyer id.WalletID) {
	d.Owner = buyer
}
