package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	registrymodels "github.com/kfrye1212/digitalpulse-tld/internal/registry/models"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	dErrors "github.com/kfrye1212/digitalpulse-tld/pkg/domain-errors"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/httputil"
	"github.com/kfrye1212/digitalpulse-tld/pkg/requestcontext"
)

// RegistryService exposes the service configuration operations.
type RegistryService interface {
	Initialize(ctx context.Context, authority, treasury id.WalletID) (*registrymodels.Registry, error)
	Get(ctx context.Context) (*registrymodels.Registry, error)
	UpdateAuthority(ctx context.Context, caller, newAuthority id.WalletID) (*registrymodels.Registry, error)
	UpdateTreasury(ctx context.Context, caller, newTreasury id.WalletID) (*registrymodels.Registry, error)
}

// RegistryHandler serves the /v1/service endpoints.
type RegistryHandler struct {
	registry RegistryService
	logger   *slog.Logger
}

func NewRegistryHandler(registry RegistryService, logger *slog.Logger) *RegistryHandler {
	return &RegistryHandler{registry: registry, logger: logger}
}

type initializeRequest struct {
	Authority string `json:"authority"`
	Treasury  string `json:"treasury"`
}

type updateWalletRequest struct {
	Wallet string `json:"wallet"`
}

func (h *RegistryHandler) handleInitialize(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[initializeRequest](w, r)
	if !ok {
		return
	}
	authority, err := id.ParseWalletID(req.Authority)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid authority wallet"))
		return
	}
	treasury, err := id.ParseWalletID(req.Treasury)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid treasury wallet"))
		return
	}

	reg, err := h.registry.Initialize(r.Context(), authority, treasury)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, reg)
}

func (h *RegistryHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	reg, err := h.registry.Get(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

func (h *RegistryHandler) handleUpdateAuthority(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[updateWalletRequest](w, r)
	if !ok {
		return
	}
	newAuthority, err := id.ParseWalletID(req.Wallet)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid wallet"))
		return
	}

	reg, err := h.registry.UpdateAuthority(r.Context(), requestcontext.Wallet(r.Context()), newAuthority)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

func (h *RegistryHandler) handleUpdateTreasury(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[updateWalletRequest](w, r)
	if !ok {
		return
	}
	newTreasury, err := id.ParseWalletID(req.Wallet)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid wallet"))
		return
	}

	reg, err := h.registry.UpdateTreasury(r.Context(), requestcontext.Wallet(r.Context()), newTreasury)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}
