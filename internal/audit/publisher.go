package audit

import (
	"context"
	"log/slog"
	"time"
)

// Store persists audit events. Append-only; events are never mutated.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySession(ctx context.Context, sessionID string) ([]Event, error)
}

// Sink forwards events to an external system (for example a Kafka topic).
// Sinks are best-effort: a sink failure must never fail the resolution that
// produced the event.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It writes to the store and
// forwards to an optional sink; both failures degrade to log lines.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger
}

// NewPublisher builds a publisher. sink may be nil when no external audit
// pipeline is configured.
func NewPublisher(store Store, sink Sink, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, sink: sink, logger: logger}
}

// Emit records one event. Resolution outcomes must not depend on audit
// availability, so store and sink failures only produce log lines.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to append audit event",
			"session_id", event.SessionID,
			"error", err,
		)
	}
	if p.sink == nil {
		return
	}
	if err := p.sink.Publish(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish audit event",
			"session_id", event.SessionID,
			"error", err,
		)
	}
}

// List returns the recorded events for a session.
func (p *Publisher) List(ctx context.Context, sessionID string) ([]Event, error) {
	return p.store.ListBySession(ctx, sessionID)
}
