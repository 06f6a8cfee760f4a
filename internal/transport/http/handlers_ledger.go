package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	ledgermodels "github.com/kfrye1212/digitalpulse-tld/internal/ledger/models"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	dErrors "github.com/kfrye1212/digitalpulse-tld/pkg/domain-errors"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/httputil"
	"github.com/kfrye1212/digitalpulse-tld/pkg/requestcontext"
)

// LedgerService exposes the domain record operations.
type LedgerService interface {
	Register(ctx context.Context, caller id.WalletID, name, tld string) (*ledgermodels.Domain, error)
	Renew(ctx context.Context, caller id.WalletID, name, tld string) (*ledgermodels.Domain, error)
	Transfer(ctx context.Context, buyer, seller id.WalletID, name, tld string, salePrice uint64) (*ledgermodels.Domain, error)
	Resolve(ctx context.Context, name, tld string) (*ledgermodels.Domain, error)
	ListByOwner(ctx context.Context, owner id.WalletID) ([]*ledgermodels.Domain, error)
}

// FundsReader reads wallet balances.
type FundsReader interface {
	Balance(ctx context.Context, wallet id.WalletID) (uint64, error)
}

// LedgerHandler serves the /v1/domains and /v1/wallets endpoints.
type LedgerHandler struct {
	ledger LedgerService
	funds  FundsReader
	logger *slog.Logger
}

func NewLedgerHandler(ledger LedgerService, funds FundsReader, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, funds: funds, logger: logger}
}

type registerDomainRequest struct {
	Name string `json:"name"`
	TLD  string `json:"tld"`
}

type transferDomainRequest struct {
	Seller    string `json:"seller"`
	SalePrice uint64 `json:"sale_price"`
}

type domainResponse struct {
	*ledgermodels.Domain
	FullName string `json:"full_name"`
}

func toDomainResponse(d *ledgermodels.Domain) domainResponse {
	return domainResponse{Domain: d, FullName: d.FullName()}
}

func (h *LedgerHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[registerDomainRequest](w, r)
	if !ok {
		return
	}

	d, err := h.ledger.Register(r.Context(), requestcontext.Wallet(r.Context()), req.Name, req.TLD)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toDomainResponse(d))
}

func (h *LedgerHandler) handleRenew(w http.ResponseWriter, r *http.Request) {
	d, err := h.ledger.Renew(r.Context(), requestcontext.Wallet(r.Context()),
		chi.URLParam(r, "name"), chi.URLParam(r, "tld"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDomainResponse(d))
}

// handleTransfer settles a sale. The authenticated caller is the buyer; the
// request names the seller and the agreed price.
func (h *LedgerHandler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[transferDomainRequest](w, r)
	if !ok {
		return
	}
	seller, err := id.ParseWalletID(req.Seller)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid seller wallet"))
		return
	}

	d, err := h.ledger.Transfer(r.Context(), requestcontext.Wallet(r.Context()), seller,
		chi.URLParam(r, "name"), chi.URLParam(r, "tld"), req.SalePrice)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDomainResponse(d))
}

func (h *LedgerHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	d, err := h.ledger.Resolve(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "tld"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDomainResponse(d))
}

func (h *LedgerHandler) handleListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerParam := r.URL.Query().Get("owner")
	if ownerParam == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "owner query parameter is required"))
		return
	}
	owner, err := id.ParseWalletID(ownerParam)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid owner wallet"))
		return
	}

	domains, err := h.ledger.ListByOwner(r.Context(), owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]domainResponse, 0, len(domains))
	for _, d := range domains {
		out = append(out, toDomainResponse(d))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"domains": out})
}

func (h *LedgerHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	wallet, err := id.ParseWalletID(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid wallet"))
		return
	}

	balance, err := h.funds.Balance(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read balance"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"wallet":  wallet.String(),
		"balance": balance,
	})
}
