package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finvoice/pkg/domain"
)

// Publisher captures structured audit events. The store write is the source
// of truth; additional sinks (Kafka, etc.) are fanned out best-effort.
type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithSink adds a downstream sink.
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

// WithLogger sets a logger for sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps and persists the event, then fans it out to sinks.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Emit(ctx, event); err != nil && p.logger != nil {
			p.logger.WarnContext(ctx, "audit sink emit failed",
				"action", event.Action,
				"error", err.Error(),
			)
		}
	}
	return nil
}

// List returns the trail for one actor.
func (p *Publisher) List(ctx context.Context, actor domain.Principal) ([]Event, error) {
	return p.store.ListByActor(ctx, actor)
}
