package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kfrye1212/digitalpulse-tld/internal/audit"
	registrymetrics "github.com/kfrye1212/digitalpulse-tld/internal/registry/metrics"
	"github.com/kfrye1212/digitalpulse-tld/internal/registry/models"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	dErrors "github.com/kfrye1212/digitalpulse-tld/pkg/domain-errors"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/sentinel"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/tx"
	"github.com/kfrye1212/digitalpulse-tld/pkg/requestcontext"
)

// Specific failure kinds surfaced by registry operations.
var (
	ErrAlreadyInitialized = dErrors.New(dErrors.CodeConflict, "service registry already initialized")
	ErrNotInitialized     = dErrors.New(dErrors.CodeNotFound, "service registry not initialized")
	ErrNotAuthority       = dErrors.New(dErrors.CodeUnauthorized, "caller is not the authority")
)

// Store persists the registry singleton.
type Store interface {
	Create(ctx context.Context, r *models.Registry) error
	Get(ctx context.Context) (*models.Registry, error)
	Update(ctx context.Context, r *models.Registry) error
}

// AuditPublisher emits append-only change notifications.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates registry initialization and reconfiguration.
type Service struct {
	registry Store
	runner   tx.Runner
	logger   *slog.Logger
	auditor  AuditPublisher
	metrics  *registrymetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func WithMetrics(m *registrymetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(registry Store, runner tx.Runner, opts ...Option) *Service {
	s := &Service{registry: registry, runner: runner, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize creates the singleton with the deployment-time authority and
// treasury. A second call fails with ErrAlreadyInitialized; the record
// store's creation semantics enforce this.
func (s *Service) Initialize(ctx context.Context, authority, treasury id.WalletID) (*models.Registry, error) {
	registry, err := models.NewRegistry(authority, treasury)
	if err != nil {
		return nil, err
	}

	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.registry.Create(txCtx, registry); err != nil {
			if errors.Is(err, sentinel.ErrKeyOccupied) {
				return ErrAlreadyInitialized
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create registry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "service registry initialized",
		"authority", authority,
		"treasury", treasury,
	)
	s.emit(ctx, audit.Event{
		Action: audit.ActionServiceInitialized,
		Actor:  authority,
		New:    treasury.String(),
	})
	return registry, nil
}

// Get returns the current registry snapshot.
func (s *Service) Get(ctx context.Context) (*models.Registry, error) {
	registry, err := s.registry.Get(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry")
	}
	return registry, nil
}

// UpdateAuthority replaces the authority wallet. Only the current authority
// may call it.
func (s *Service) UpdateAuthority(ctx context.Context, caller, newAuthority id.WalletID) (*models.Registry, error) {
	if newAuthority.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "new authority wallet is required")
	}

	var registry *models.Registry
	var old id.WalletID
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.loadForUpdate(txCtx, caller)
		if err != nil {
			return err
		}
		old = r.ApplyAuthority(newAuthority)
		if err := s.registry.Update(txCtx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update registry")
		}
		registry = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "authority updated", "old", old, "new", newAuthority)
	s.emit(ctx, audit.Event{
		Action: audit.ActionAuthorityChanged,
		Actor:  caller,
		Old:    old.String(),
		New:    newAuthority.String(),
	})
	s.observeReconfiguration()
	return registry, nil
}

// UpdateTreasury replaces the treasury wallet. Only the current authority
// may call it.
func (s *Service) UpdateTreasury(ctx context.Context, caller, newTreasury id.WalletID) (*models.Registry, error) {
	if newTreasury.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "new treasury wallet is required")
	}

	var registry *models.Registry
	var old id.WalletID
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.loadForUpdate(txCtx, caller)
		if err != nil {
			return err
		}
		old = r.ApplyTreasury(newTreasury)
		if err := s.registry.Update(txCtx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update registry")
		}
		registry = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "treasury updated", "old", old, "new", newTreasury)
	s.emit(ctx, audit.Event{
		Action: audit.ActionTreasuryChanged,
		Actor:  caller,
		Old:    old.String(),
		New:    newTreasury.String(),
	})
	s.observeReconfiguration()
	return registry, nil
}

func (s *Service) loadForUpdate(ctx context.Context, caller id.WalletID) (*models.Registry, error) {
	r, err := s.registry.Get(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry")
	}
	if err := r.CanReconfigure(caller); err != nil {
		return nil, ErrNotAuthority
	}
	return r, nil
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

func (s *Service) observeReconfiguration() {
	if s.metrics != nil {
		s.metrics.IncrementReconfigurations()
	}
}
