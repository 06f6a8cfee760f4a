// Package fees computes fee and royalty amounts and moves funds through an
// external transfer port. It never mutates registry or record state.
package fees

import (
	"context"

	registrymodels "github.com/kfrye1212/digitalpulse-tld/internal/registry/models"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	dErrors "github.com/kfrye1212/digitalpulse-tld/pkg/domain-errors"
)

// Fee schedule, in minor currency units.
const (
	RegistrationFee uint64 = 250_000_000
	RenewalFee      uint64 = 150_000_000
)

// Royalty rate on resales. The canonical representation is basis points;
// 500/10000 is 5% of the sale price.
const (
	RoyaltyBasisPoints     uint64 = 500
	BasisPointsDenominator uint64 = 10_000
)

// ErrInsufficientFunds is returned before any transfer is attempted when the
// payer cannot cover the amount.
var ErrInsufficientFunds = dErrors.New(dErrors.CodeInsufficientFunds, "insufficient funds")

// FundsPort moves funds between wallets. Implementations participate in the
// surrounding transaction, so a failed operation moves nothing.
type FundsPort interface {
	Balance(ctx context.Context, wallet id.WalletID) (uint64, error)
	Transfer(ctx context.Context, from, to id.WalletID, amount uint64) error
}

// SplitSale divides a sale price into the treasury royalty and the seller
// remainder. royalty + sellerAmount == salePrice holds exactly: the royalty
// rounds down and the seller keeps the remainder.
func SplitSale(salePrice uint64) (royalty, sellerAmount uint64) {
	// Decompose to avoid overflow on large sale prices:
	// floor(p*bps/den) == (p/den)*bps + floor((p%den)*bps/den).
	royalty = (salePrice/BasisPointsDenominator)*RoyaltyBasisPoints +
		(salePrice%BasisPointsDenominator)*RoyaltyBasisPoints/BasisPointsDenominator
	return royalty, salePrice - royalty
}

// Engine performs waiver-aware fee collection and sale settlement.
type Engine struct {
	funds FundsPort
}

func NewEngine(funds FundsPort) *Engine {
	return &Engine{funds: funds}
}

// Collect charges amount from caller to the registry treasury. The authority
// registers free: no transfer occurs at all on the waived path.
func (e *Engine) Collect(ctx context.Context, caller id.WalletID, registry *registrymodels.Registry, amount uint64) error {
	if registry.IsAuthority(caller) {
		return nil
	}

	balance, err := e.funds.Balance(ctx, caller)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read payer balance")
	}
	if balance < amount {
		return ErrInsufficientFunds
	}
	return e.funds.Transfer(ctx, caller, registry.Treasury, amount)
}

// SettleSale performs the two transfers of an ownership sale: buyer→seller
// for sellerAmount and buyer→treasury for royalty. Both happen inside the
// caller's transaction; a failure of either moves nothing.
func (e *Engine) SettleSale(ctx context.Context, buyer, seller, treasury id.WalletID, royalty, sellerAmount uint64) error {
	balance, err := e.funds.Balance(ctx, buyer)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read buyer balance")
	}
	if balance < royalty+sellerAmount {
		return ErrInsufficientFunds
	}

	if sellerAmount > 0 {
		if err := e.funds.Transfer(ctx, buyer, seller, sellerAmount); err != nil {
			return err
		}
	}
	if royalty > 0 {
		return e.funds.Transfer(ctx, buyer, treasury, royalty)
	}
	return nil
}
