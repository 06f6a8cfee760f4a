package models

import (
	"strings"
	"time"

	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	dErrors "github.com/kfrye1212/digitalpulse-tld/pkg/domain-errors"
)

// MaxNameLen bounds namespace names.
const MaxNameLen = 10

// Validation failures for namespace creation.
var (
	ErrNameTooLong  = dErrors.New(dErrors.CodeValidation, "tld name is too long")
	ErrNameEmpty    = dErrors.New(dErrors.CodeValidation, "tld name is required")
	ErrInvalidPrice = dErrors.New(dErrors.CodeValidation, "tld price must be positive")
)

// TLD is a namespace record.
//
// Invariants:
//   - Name is non-empty, lowercase, and at most MaxNameLen characters
//   - Price is positive at creation (advisory list price; not enforced at
//     registration)
//   - IsActive is true from creation; no operation ever clears it
//   - TotalDomains is monotonically non-decreasing
//
// Uniqueness is enforced by the store key derived from Name, not by a
// secondary index.
type TLD struct {
	Name         string      `json:"name"`
	Price        uint64      `json:"price"`
	Owner        id.WalletID `json:"owner"`
	CreatedAt    time.Time   `json:"created_at"`
	IsActive     bool        `json:"is_active"`
	TotalDomains uint64      `json:"total_domains"`
}

// NewTLD validates inputs and constructs a namespace record.
func NewTLD(name string, price uint64, owner id.WalletID, now time.Time) (*TLD, error) {
	name = Normalize(name)
	if name == "" {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	if price == 0 {
		return nil, ErrInvalidPrice
	}
	return &TLD{
		Name:      name,
		Price:     price,
		Owner:     owner,
		CreatedAt: now,
		IsActive:  true,
	}, nil
}

// Normalize lowercases a namespace name; keys are derived from the
// normalized form so lookups are case-insensitive.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
