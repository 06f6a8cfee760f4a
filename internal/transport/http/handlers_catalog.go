package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	catalogmodels "github.com/kfrye1212/digitalpulse-tld/internal/catalog/models"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/httputil"
	"github.com/kfrye1212/digitalpulse-tld/pkg/requestcontext"
)

// CatalogService exposes the namespace catalog operations.
type CatalogService interface {
	CreateTLD(ctx context.Context, caller id.WalletID, name string, price uint64) (*catalogmodels.TLD, error)
	GetTLD(ctx context.Context, name string) (*catalogmodels.TLD, error)
	ListTLDs(ctx context.Context) ([]*catalogmodels.TLD, error)
}

// CatalogHandler serves the /v1/tlds endpoints.
type CatalogHandler struct {
	catalog CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

type createTLDRequest struct {
	Name  string `json:"name"`
	Price uint64 `json:"price"`
}

func (h *CatalogHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[createTLDRequest](w, r)
	if !ok {
		return
	}

	t, err := h.catalog.CreateTLD(r.Context(), requestcontext.Wallet(r.Context()), req.Name, req.Price)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, t)
}

func (h *CatalogHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.catalog.GetTLD(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	tlds, err := h.catalog.ListTLDs(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tlds": tlds})
}
