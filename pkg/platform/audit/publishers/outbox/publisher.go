// Package outbox provides a fail-closed audit publisher.
//
// Emit blocks until the event is persisted. If persistence fails, the caller
// MUST fail its operation: the admin override path depends on this, since an
// override without its exception record is exactly the silent state write the
// lifecycle rules exist to prevent.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"grantgate/pkg/platform/audit"
)

type Publisher struct {
	store  audit.Store
	logger *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes the event. Returns error if persistence fails.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ActorID.IsNil() {
		return fmt.Errorf("audit event requires ActorID")
	}
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit persistence failed",
				"action", event.Action,
				"actor_id", event.ActorID,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return nil
}
