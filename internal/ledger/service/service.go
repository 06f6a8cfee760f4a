package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kfrye1212/digitalpulse-tld/internal/asset"
	"github.com/kfrye1212/digitalpulse-tld/internal/audit"
	catalogmodels "github.com/kfrye1212/digitalpulse-tld/internal/catalog/models"
	"github.com/kfrye1212/digitalpulse-tld/internal/fees"
	ledgermetrics "github.com/kfrye1212/digitalpulse-tld/internal/ledger/metrics"
	"github.com/kfrye1212/digitalpulse-tld/internal/ledger/models"
	registrymodels "github.com/kfrye1212/digitalpulse-tld/internal/registry/models"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	dErrors "github.com/kfrye1212/digitalpulse-tld/pkg/domain-errors"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/circuit"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/sentinel"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/tx"
	"github.com/kfrye1212/digitalpulse-tld/pkg/requestcontext"
)

// Specific failure kinds surfaced by ledger operations.
var (
	ErrDomainExists      = dErrors.New(dErrors.CodeConflict, "domain name is already registered in this tld")
	ErrDomainNotFound    = dErrors.New(dErrors.CodeNotFound, "domain not found")
	ErrNamespaceNotFound = dErrors.New(dErrors.CodeNotFound, "tld not found")
	ErrNamespaceInactive = dErrors.New(dErrors.CodeInvalidState, "tld is not active")
)

// Store persists domain records.
type Store interface {
	CreateIfNameAvailable(ctx context.Context, d *models.Domain) error
	Find(ctx context.Context, name, tld string) (*models.Domain, error)
	Update(ctx context.Context, d *models.Domain) error
	ListByOwner(ctx context.Context, owner id.WalletID) ([]*models.Domain, error)
}

// CatalogStore resolves and updates namespace records.
type CatalogStore interface {
	FindByName(ctx context.Context, name string) (*catalogmodels.TLD, error)
	Update(ctx context.Context, t *catalogmodels.TLD) error
}

// RegistryStore provides the singleton for counter updates and fee waivers.
type RegistryStore interface {
	Get(ctx context.Context) (*registrymodels.Registry, error)
	Update(ctx context.Context, r *registrymodels.Registry) error
}

// FeeEngine collects fees and settles sales.
type FeeEngine interface {
	Collect(ctx context.Context, caller id.WalletID, registry *registrymodels.Registry, amount uint64) error
	SettleSale(ctx context.Context, buyer, seller, treasury id.WalletID, royalty, sellerAmount uint64) error
}

// ResolveCache is an optional read-through cache for Resolve.
type ResolveCache interface {
	Get(ctx context.Context, name, tld string) (*models.Domain, error)
	Set(ctx context.Context, d *models.Domain) error
	Invalidate(ctx context.Context, name, tld string) error
}

// AuditPublisher emits append-only change notifications.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the domain ledger: registrations, renewals, transfers
// and reads. All mutations run inside a transaction; fee movement, record
// changes, counters and asset issuance commit or roll back together.
type Service struct {
	domains  Store
	catalog  CatalogStore
	registry RegistryStore
	fees     FeeEngine
	runner   tx.Runner
	issuer   asset.Issuer
	cache    ResolveCache
	breaker  *circuit.Breaker
	logger   *slog.Logger
	auditor  AuditPublisher
	metrics  *ledgermetrics.Metrics
	tracer   trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func WithMetrics(m *ledgermetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAssetIssuer enables unique-token issuance on registration. When absent,
// records are created without an asset reference.
func WithAssetIssuer(issuer asset.Issuer) Option {
	return func(s *Service) { s.issuer = issuer }
}

// WithResolveCache enables the read-through cache on Resolve.
func WithResolveCache(cache ResolveCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithResolveBreaker replaces the circuit breaker guarding the resolve cache.
func WithResolveBreaker(b *circuit.Breaker) Option {
	return func(s *Service) { s.breaker = b }
}

// New constructs a Service.
func New(domains Store, catalog CatalogStore, registry RegistryStore, fees FeeEngine, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		domains:  domains,
		catalog:  catalog,
		registry: registry,
		fees:     fees,
		runner:   runner,
		breaker:  circuit.New("resolve-cache", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		logger:   slog.Default(),
		tracer:   otel.Tracer("ledger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a domain record under an active namespace. The caller pays
// the registration fee to the treasury unless they are the authority. When an
// asset issuer is configured, a unique token is minted to the caller and its
// metadata attached; an issuance failure rolls the whole registration back.
func (s *Service) Register(ctx context.Context, caller id.WalletID, name, tld string) (*models.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Register", trace.WithAttributes(
		attribute.String("domain.name", models.Normalize(name)),
		attribute.String("domain.tld", catalogmodels.Normalize(tld)),
	))
	defer span.End()

	now := requestcontext.Now(ctx)

	var (
		created *models.Domain
		waived  bool
	)
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		registry, err := s.loadRegistry(txCtx)
		if err != nil {
			return err
		}
		namespace, err := s.loadNamespace(txCtx, tld)
		if err != nil {
			return err
		}
		waived = registry.IsAuthority(caller)

		d, err := models.NewDomain(name, namespace.Name, caller, now)
		if err != nil {
			return err
		}

		if err := s.fees.Collect(txCtx, caller, registry, fees.RegistrationFee); err != nil {
			return err
		}

		if err := s.domains.CreateIfNameAvailable(txCtx, d); err != nil {
			if errors.Is(err, sentinel.ErrKeyOccupied) {
				return ErrDomainExists
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create domain")
		}

		if s.issuer != nil {
			token, err := s.issuer.MintUnique(txCtx, caller)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint domain asset")
			}
			md := asset.DomainMetadata(d.Name, d.TLD, registry.Treasury)
			if err := s.issuer.CreateMetadata(txCtx, token, md); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to attach asset metadata")
			}
			d.AssetRef = token
			if err := s.domains.Update(txCtx, d); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record asset reference")
			}
		}

		namespace.TotalDomains++
		if err := s.catalog.Update(txCtx, namespace); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update tld counters")
		}
		registry.TotalDomains++
		if err := s.registry.Update(txCtx, registry); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update registry counters")
		}
		created = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "domain registered",
		"domain", created.FullName(),
		"owner", created.Owner.String(),
		"expires_at", created.ExpiresAt,
		"fee_waived", waived,
	)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionDomainRegistered,
		Actor:   caller,
		Subject: created.FullName(),
		Amount:  s.collectedAmount(waived, fees.RegistrationFee),
	})
	s.invalidate(ctx, created.Name, created.TLD)
	if s.metrics != nil {
		s.metrics.IncrementRegistered()
		s.metrics.AddFees(s.collectedAmount(waived, fees.RegistrationFee))
	}
	return created, nil
}

// Renew resets the record's expiry to one registration period from now. Only
// the owner may renew; the renewal fee follows the same waiver rule as
// registration. Expired records renew like any other.
func (s *Service) Renew(ctx context.Context, caller id.WalletID, name, tld string) (*models.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Renew", trace.WithAttributes(
		attribute.String("domain.name", models.Normalize(name)),
		attribute.String("domain.tld", catalogmodels.Normalize(tld)),
	))
	defer span.End()

	now := requestcontext.Now(ctx)

	var (
		renewed *models.Domain
		waived  bool
	)
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		registry, err := s.loadRegistry(txCtx)
		if err != nil {
			return err
		}
		d, err := s.loadDomain(txCtx, name, tld)
		if err != nil {
			return err
		}
		if err := d.CanRenew(caller); err != nil {
			return err
		}
		waived = registry.IsAuthority(caller)

		if err := s.fees.Collect(txCtx, caller, registry, fees.RenewalFee); err != nil {
			return err
		}

		d.ApplyRenewal(now)
		if err := s.domains.Update(txCtx, d); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update domain")
		}
		renewed = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "domain renewed",
		"domain", renewed.FullName(),
		"expires_at", renewed.ExpiresAt,
		"fee_waived", waived,
	)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionDomainRenewed,
		Actor:   caller,
		Subject: renewed.FullName(),
		Amount:  s.collectedAmount(waived, fees.RenewalFee),
	})
	s.invalidate(ctx, renewed.Name, renewed.TLD)
	if s.metrics != nil {
		s.metrics.IncrementRenewed()
		s.metrics.AddFees(s.collectedAmount(waived, fees.RenewalFee))
	}
	return renewed, nil
}

// Transfer sells the record from seller to buyer at salePrice. The buyer pays
// the full price: the treasury royalty rounds down and the seller keeps the
// remainder, so the two amounts always sum to the price exactly. When the
// record carries an asset reference, the token moves with it. Either
// everything applies or nothing does.
func (s *Service) Transfer(ctx context.Context, buyer, seller id.WalletID, name, tld string, salePrice uint64) (*models.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Transfer", trace.WithAttributes(
		attribute.String("domain.name", models.Normalize(name)),
		attribute.String("domain.tld", catalogmodels.Normalize(tld)),
	))
	defer span.End()

	royalty, sellerAmount := fees.SplitSale(salePrice)

	var transferred *models.Domain
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		registry, err := s.loadRegistry(txCtx)
		if err != nil {
			return err
		}
		d, err := s.loadDomain(txCtx, name, tld)
		if err != nil {
			return err
		}
		if err := d.CanTransfer(seller); err != nil {
			return err
		}

		if err := s.fees.SettleSale(txCtx, buyer, seller, registry.Treasury, royalty, sellerAmount); err != nil {
			return err
		}

		if s.issuer != nil && !d.AssetRef.IsZero() {
			if err := s.issuer.TransferUnique(txCtx, d.AssetRef, seller, buyer); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transfer domain asset")
			}
		}

		d.ApplyTransfer(buyer)
		if err := s.domains.Update(txCtx, d); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update domain")
		}
		transferred = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "domain transferred",
		"domain", transferred.FullName(),
		"seller", seller.String(),
		"buyer", buyer.String(),
		"sale_price", salePrice,
		"royalty", royalty,
	)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionDomainTransferred,
		Actor:   buyer,
		Subject: transferred.FullName(),
		Old:     seller.String(),
		New:     buyer.String(),
		Amount:  salePrice,
	})
	s.invalidate(ctx, transferred.Name, transferred.TLD)
	if s.metrics != nil {
		s.metrics.IncrementTransferred()
		s.metrics.AddFees(royalty)
	}
	return transferred, nil
}

// Resolve fetches one record by (name, tld), consulting the cache first when
// one is configured. Cache failures are logged and fall through to the store.
func (s *Service) Resolve(ctx context.Context, name, tld string) (*models.Domain, error) {
	if s.cache != nil && s.breaker.Allow() {
		cached, err := s.cache.Get(ctx, name, tld)
		if err != nil {
			if _, change := s.breaker.RecordFailure(); change.Opened {
				s.logger.WarnContext(ctx, "resolve cache circuit opened", "error", err)
			}
		} else {
			if _, change := s.breaker.RecordSuccess(); change.Closed {
				s.logger.InfoContext(ctx, "resolve cache circuit closed")
			}
			if cached != nil {
				if s.metrics != nil {
					s.metrics.IncrementCacheHit()
				}
				return cached, nil
			}
			if s.metrics != nil {
				s.metrics.IncrementCacheMiss()
			}
		}
	}

	d, err := s.loadDomain(ctx, name, tld)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && s.breaker.Allow() {
		if err := s.cache.Set(ctx, d); err != nil {
			s.breaker.RecordFailure()
			s.logger.WarnContext(ctx, "resolve cache write failed", "error", err)
		}
	}
	return d, nil
}

// ListByOwner returns every record owned by owner, ordered by full name.
func (s *Service) ListByOwner(ctx context.Context, owner id.WalletID) ([]*models.Domain, error) {
	domains, err := s.domains.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list domains")
	}
	return domains, nil
}

func (s *Service) loadRegistry(ctx context.Context) (*registrymodels.Registry, error) {
	registry, err := s.registry.Get(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "service registry not initialized")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry")
	}
	return registry, nil
}

func (s *Service) loadNamespace(ctx context.Context, tld string) (*catalogmodels.TLD, error) {
	namespace, err := s.catalog.FindByName(ctx, tld)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrNamespaceNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tld")
	}
	if !namespace.IsActive {
		return nil, ErrNamespaceInactive
	}
	return namespace, nil
}

func (s *Service) loadDomain(ctx context.Context, name, tld string) (*models.Domain, error) {
	d, err := s.domains.Find(ctx, name, tld)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrDomainNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain")
	}
	return d, nil
}

func (s *Service) collectedAmount(waived bool, amount uint64) uint64 {
	if waived {
		return 0
	}
	return amount
}

func (s *Service) invalidate(ctx context.Context, name, tld string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, name, tld); err != nil {
		s.logger.WarnContext(ctx, "resolve cache invalidation failed",
			"domain", name+"."+tld,
			"error", err,
		)
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
