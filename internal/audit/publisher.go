package audit

import (
	"context"
	"log/slog"
	"time"
)

// Store persists events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}

// Sink receives events for delivery outside the process (Kafka, webhooks).
// Delivery failures are logged, never propagated: the operation already
// committed and must not be failed retroactively.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger, sinks ...Sink) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, sinks: sinks, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			p.logger.ErrorContext(ctx, "audit sink delivery failed",
				"action", event.Action,
				"subject", event.Subject,
				"error", err,
			)
		}
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, subject string) ([]Event, error) {
	return p.store.ListBySubject(ctx, subject)
}
