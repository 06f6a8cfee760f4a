package models

import (
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	dErrors "github.com/kfrye1212/digitalpulse-tld/pkg/domain-errors"
)

// Registry is the singleton service configuration and counter record.
//
// Invariants:
//   - Authority and Treasury are always set (never zero)
//   - TotalDomains and TotalTLDs are monotonically non-decreasing
//   - Authority and Treasury change only through an authority-gated update
type Registry struct {
	Authority    id.WalletID `json:"authority"`
	Treasury     id.WalletID `json:"treasury"`
	TotalDomains uint64      `json:"total_domains"`
	TotalTLDs    uint64      `json:"total_tlds"`
}

// NewRegistry constructs the singleton with zeroed counters.
func NewRegistry(authority, treasury id.WalletID) (*Registry, error) {
	if authority.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "authority wallet is required")
	}
	if treasury.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "treasury wallet is required")
	}
	return &Registry{Authority: authority, Treasury: treasury}, nil
}

// IsAuthority reports whether caller is the privileged operator. This is the
// single authorization predicate behind fee waivers, namespace creation, and
// configuration updates. Identifiers compare as fixed-width values, never as
// formatted text.
func (r *Registry) IsAuthority(caller id.WalletID) bool {
	return caller == r.Authority
}

// CanReconfigure checks that caller may change authority or treasury.
func (r *Registry) CanReconfigure(caller id.WalletID) error {
	if !r.IsAuthority(caller) {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the authority")
	}
	return nil
}

// ApplyAuthority replaces the authority wallet. Call CanReconfigure first.
func (r *Registry) ApplyAuthority(newAuthority id.WalletID) (old id.WalletID) {
	old = r.Authority
	r.Authority = newAuthority
	return old
}

// ApplyTreasury replaces the treasury wallet. Call CanReconfigure first.
func (r *Registry) ApplyTreasury(newTreasury id.WalletID) (old id.WalletID) {
	old = r.Treasury
	r.Treasury = newTreasury
	return old
}
