// Package asset models the external Asset Issuer: the collaborator that
// mints one unique token per registered name and attaches descriptive
// metadata. The core calls it through the Issuer port and never depends on a
// concrete token protocol.
package asset

import (
	"context"
	"fmt"

	"github.com/kfrye1212/digitalpulse-tld/internal/fees"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
)

// Symbol annotates every issued token.
const Symbol = "DPULSE"

// metadataURIFormat locates the off-chain metadata document for a name.
const metadataURIFormat = "https://digitalpulse.pv/metadata/%s.json"

// Creator attributes a share of resale royalties.
type Creator struct {
	Address  id.WalletID `json:"address"`
	Verified bool        `json:"verified"`
	Share    uint8       `json:"share"`
}

// Metadata describes an issued token.
type Metadata struct {
	Name                 string    `json:"name"`
	Symbol               string    `json:"symbol"`
	URI                  string    `json:"uri"`
	SellerFeeBasisPoints uint16    `json:"seller_fee_basis_points"`
	Creators             []Creator `json:"creators"`
}

// DomainMetadata builds the metadata attached to a registered name: display
// name "<name>.<tld>", the project symbol, the royalty annotation, and a
// single creator entry pointing at the treasury with full share. No
// collection grouping.
func DomainMetadata(name, tld string, treasury id.WalletID) Metadata {
	full := fmt.Sprintf("%s.%s", name, tld)
	return Metadata{
		Name:                 full,
		Symbol:               Symbol,
		URI:                  fmt.Sprintf(metadataURIFormat, full),
		SellerFeeBasisPoints: uint16(fees.RoyaltyBasisPoints),
		Creators: []Creator{
			{Address: treasury, Verified: false, Share: 100},
		},
	}
}

// Issuer is the external collaborator that mints and moves unique tokens.
// Every call participates in the surrounding transaction: a failed
// registration or transfer leaves no orphan token state.
type Issuer interface {
	// MintUnique issues exactly one unit of a new unique token to owner.
	MintUnique(ctx context.Context, owner id.WalletID) (id.TokenID, error)
	// CreateMetadata attaches descriptive metadata to a minted token.
	CreateMetadata(ctx context.Context, token id.TokenID, md Metadata) error
	// TransferUnique moves the token between holdings.
	TransferUnique(ctx context.Context, token id.TokenID, from, to id.WalletID) error
}
