package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kfrye1212/digitalpulse-tld/internal/audit"
	catalogmetrics "github.com/kfrye1212/digitalpulse-tld/internal/catalog/metrics"
	"github.com/kfrye1212/digitalpulse-tld/internal/catalog/models"
	registrymodels "github.com/kfrye1212/digitalpulse-tld/internal/registry/models"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	dErrors "github.com/kfrye1212/digitalpulse-tld/pkg/domain-errors"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/sentinel"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/tx"
	"github.com/kfrye1212/digitalpulse-tld/pkg/requestcontext"
)

// Specific failure kinds surfaced by catalog operations.
var (
	ErrNamespaceExists = dErrors.New(dErrors.CodeConflict, "tld name must be unique")
	ErrNotAuthority    = dErrors.New(dErrors.CodeUnauthorized, "caller is not the authority")
	ErrNotFound        = dErrors.New(dErrors.CodeNotFound, "tld not found")
)

// Store persists namespace records.
type Store interface {
	CreateIfNameAvailable(ctx context.Context, t *models.TLD) error
	FindByName(ctx context.Context, name string) (*models.TLD, error)
	Update(ctx context.Context, t *models.TLD) error
	List(ctx context.Context) ([]*models.TLD, error)
}

// RegistryStore provides the singleton for authority checks and counter updates.
type RegistryStore interface {
	Get(ctx context.Context) (*registrymodels.Registry, error)
	Update(ctx context.Context, r *registrymodels.Registry) error
}

// AuditPublisher emits append-only change notifications.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the namespace catalog.
type Service struct {
	tlds     Store
	registry RegistryStore
	runner   tx.Runner
	logger   *slog.Logger
	auditor  AuditPublisher
	metrics  *catalogmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func WithMetrics(m *catalogmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(tlds Store, registry RegistryStore, runner tx.Runner, opts ...Option) *Service {
	s := &Service{tlds: tlds, registry: registry, runner: runner, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTLD creates a namespace. Only the authority may create namespaces;
// creation is not fee-gated. The registry TLD counter moves in the same
// transaction as the record creation.
func (s *Service) CreateTLD(ctx context.Context, caller id.WalletID, name string, price uint64) (*models.TLD, error) {
	now := requestcontext.Now(ctx)

	var created *models.TLD
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		registry, err := s.registry.Get(txCtx)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "service registry not initialized")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry")
		}
		if !registry.IsAuthority(caller) {
			return ErrNotAuthority
		}

		t, err := models.NewTLD(name, price, caller, now)
		if err != nil {
			return err
		}

		if err := s.tlds.CreateIfNameAvailable(txCtx, t); err != nil {
			if errors.Is(err, sentinel.ErrKeyOccupied) {
				return ErrNamespaceExists
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tld")
		}

		registry.TotalTLDs++
		if err := s.registry.Update(txCtx, registry); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update registry counters")
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tld created",
		"tld", created.Name,
		"price", created.Price,
	)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionTLDCreated,
		Actor:   caller,
		Subject: created.Name,
		Amount:  created.Price,
	})
	if s.metrics != nil {
		s.metrics.IncrementTLDCreated()
	}
	return created, nil
}

// GetTLD fetches one namespace by name.
func (s *Service) GetTLD(ctx context.Context, name string) (*models.TLD, error) {
	t, err := s.tlds.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tld")
	}
	return t, nil
}

// ListTLDs returns all namespaces ordered by name.
func (s *Service) ListTLDs(ctx context.Context) ([]*models.TLD, error) {
	tlds, err := s.tlds.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tlds")
	}
	return tlds, nil
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
