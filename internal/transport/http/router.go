// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services and never embed business logic, so transport concerns stay
// isolated from ledger semantics.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kfrye1212/digitalpulse-tld/internal/platform/middleware"
)

// Deps collects everything the router needs.
type Deps struct {
	Registry  RegistryService
	Catalog   CatalogService
	Ledger    LedgerService
	Funds     FundsReader
	Validator middleware.WalletValidator
	Logger    *slog.Logger
}

// NewRouter wires all public endpoints. Reads are open; mutations require a
// bearer token carrying the caller wallet.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registryHandler := NewRegistryHandler(deps.Registry, logger)
	catalogHandler := NewCatalogHandler(deps.Catalog, logger)
	ledgerHandler := NewLedgerHandler(deps.Ledger, deps.Funds, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/v1/service", registryHandler.handleGet)
	r.Get("/v1/tlds", catalogHandler.handleList)
	r.Get("/v1/tlds/{name}", catalogHandler.handleGet)
	r.Get("/v1/domains", ledgerHandler.handleListByOwner)
	r.Get("/v1/domains/{tld}/{name}", ledgerHandler.handleResolve)
	r.Get("/v1/wallets/{wallet}/balance", ledgerHandler.handleBalance)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireWallet(deps.Validator, logger))
		r.Post("/v1/service", registryHandler.handleInitialize)
		r.Put("/v1/service/authority", registryHandler.handleUpdateAuthority)
		r.Put("/v1/service/treasury", registryHandler.handleUpdateTreasury)
		r.Post("/v1/tlds", catalogHandler.handleCreate)
		r.Post("/v1/domains", ledgerHandler.handleRegister)
		r.Post("/v1/domains/{tld}/{name}/renew", ledgerHandler.handleRenew)
		r.Post("/v1/domains/{tld}/{name}/transfer", ledgerHandler.handleTransfer)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
