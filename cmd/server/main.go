package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/kfrye1212/digitalpulse-tld/internal/asset"
	"github.com/kfrye1212/digitalpulse-tld/internal/audit"
	catalogmetrics "github.com/kfrye1212/digitalpulse-tld/internal/catalog/metrics"
	catalogservice "github.com/kfrye1212/digitalpulse-tld/internal/catalog/service"
	catalogstore "github.com/kfrye1212/digitalpulse-tld/internal/catalog/store"
	"github.com/kfrye1212/digitalpulse-tld/internal/fees"
	"github.com/kfrye1212/digitalpulse-tld/internal/fees/bank"
	jwttoken "github.com/kfrye1212/digitalpulse-tld/internal/jwt_token"
	ledgercache "github.com/kfrye1212/digitalpulse-tld/internal/ledger/cache"
	ledgermetrics "github.com/kfrye1212/digitalpulse-tld/internal/ledger/metrics"
	ledgerservice "github.com/kfrye1212/digitalpulse-tld/internal/ledger/service"
	ledgerstore "github.com/kfrye1212/digitalpulse-tld/internal/ledger/store"
	"github.com/kfrye1212/digitalpulse-tld/internal/platform/config"
	"github.com/kfrye1212/digitalpulse-tld/internal/platform/httpserver"
	"github.com/kfrye1212/digitalpulse-tld/internal/platform/logger"
	"github.com/kfrye1212/digitalpulse-tld/internal/platform/migrations"
	platformredis "github.com/kfrye1212/digitalpulse-tld/internal/platform/redis"
	registrymetrics "github.com/kfrye1212/digitalpulse-tld/internal/registry/metrics"
	registryservice "github.com/kfrye1212/digitalpulse-tld/internal/registry/service"
	registrystore "github.com/kfrye1212/digitalpulse-tld/internal/registry/store"
	httptransport "github.com/kfrye1212/digitalpulse-tld/internal/transport/http"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/tx"
	"github.com/kfrye1212/digitalpulse-tld/pkg/requestcontext"
)

// stores groups one backend's implementations of every persistence port.
type stores struct {
	registry registryservice.Store
	tlds     catalogservice.Store
	domains  ledgerservice.Store
	funds    fees.FundsPort
	runner   tx.Runner
}

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	st, cleanup, err := buildStores(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	auditor := buildAuditor(cfg, log)

	registryService := registryservice.New(st.registry, st.runner,
		registryservice.WithLogger(log),
		registryservice.WithAuditPublisher(auditor),
		registryservice.WithMetrics(registrymetrics.New()),
	)
	catalogService := catalogservice.New(st.tlds, st.registry, st.runner,
		catalogservice.WithLogger(log),
		catalogservice.WithAuditPublisher(auditor),
		catalogservice.WithMetrics(catalogmetrics.New()),
	)

	engine := fees.NewEngine(st.funds)
	ledgerOpts := []ledgerservice.Option{
		ledgerservice.WithLogger(log),
		ledgerservice.WithAuditPublisher(auditor),
		ledgerservice.WithMetrics(ledgermetrics.New()),
	}
	if cfg.AssetIssuance {
		issuer := asset.NewInMemoryIssuer()
		if mem, ok := st.runner.(*tx.InMemory); ok {
			mem.Register(issuer)
		}
		ledgerOpts = append(ledgerOpts, ledgerservice.WithAssetIssuer(issuer))
	}
	if redisClient, err := platformredis.New(cfg.Redis); err != nil {
		log.Warn("redis unavailable, resolve cache disabled", "error", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		ledgerOpts = append(ledgerOpts,
			ledgerservice.WithResolveCache(ledgercache.NewResolveCache(redisClient.Client, config.ResolveCacheTTL)))
	}
	ledgerService := ledgerservice.New(st.domains, st.tlds, st.registry, engine, st.runner, ledgerOpts...)

	if err := bootstrapRegistry(cfg, log, registryService); err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Registry:  registryService,
		Catalog:   catalogService,
		Ledger:    ledgerService,
		Funds:     st.funds,
		Validator: jwttoken.NewJWTService(cfg.JWTSigningKey, "digitalpulse-tld", "registry-api"),
		Logger:    log,
	})
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting registry server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildStores selects the persistence backend. A Postgres DSN switches every
// store to Postgres inside real transactions; otherwise everything runs in
// memory behind a snapshotting runner.
func buildStores(cfg config.Server) (stores, func(), error) {
	if cfg.PostgresDSN == "" {
		registry := registrystore.NewInMemory()
		tlds := catalogstore.NewInMemory()
		domains := ledgerstore.NewInMemory()
		funds := bank.NewInMemory()
		return stores{
			registry: registry,
			tlds:     tlds,
			domains:  domains,
			funds:    funds,
			runner:   tx.NewInMemory(registry, tlds, domains, funds),
		}, func() {}, nil
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		return stores{}, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return stores{}, nil, err
	}
	if err := migrations.Apply(context.Background(), db); err != nil {
		db.Close()
		return stores{}, nil, err
	}
	return stores{
		registry: registrystore.NewPostgres(db),
		tlds:     catalogstore.NewPostgres(db),
		domains:  ledgerstore.NewPostgres(db),
		funds:    bank.NewPostgres(db),
		runner:   tx.NewPostgres(db),
	}, func() { db.Close() }, nil
}

func buildAuditor(cfg config.Server, log *slog.Logger) *audit.Publisher {
	var sinks []audit.Sink
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Warn("kafka unavailable, change notifications disabled", "error", err)
		} else {
			sinks = append(sinks, sink)
		}
	}
	return audit.NewPublisher(audit.NewInMemoryStore(), log, sinks...)
}

// bootstrapRegistry initializes the service singleton from deployment config
// when both wallets are set. An already initialized registry is left alone;
// rotation goes through the authority-gated API.
func bootstrapRegistry(cfg config.Server, log *slog.Logger, svc *registryservice.Service) error {
	if cfg.AuthorityWallet == "" || cfg.TreasuryWallet == "" {
		return nil
	}
	authority, err := id.ParseWalletID(cfg.AuthorityWallet)
	if err != nil {
		return err
	}
	treasury, err := id.ParseWalletID(cfg.TreasuryWallet)
	if err != nil {
		return err
	}

	ctx := requestcontext.WithTime(context.Background(), time.Now())
	if _, err := svc.Initialize(ctx, authority, treasury); err != nil {
		if errors.Is(err, registryservice.ErrAlreadyInitialized) {
			log.Info("service registry already initialized")
			return nil
		}
		return err
	}
	log.Info("service registry initialized",
		"authority", authority.String(),
		"treasury", treasury.String(),
	)
	return nil
}
