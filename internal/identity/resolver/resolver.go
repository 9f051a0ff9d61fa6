// Package resolver resolves an actor id to its current role and area.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"grantgate/internal/identity/models"
	"grantgate/internal/identity/ports"
	"grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
	"grantgate/pkg/platform/sentinel"
)

// Resolver is a thin lookup over the user store with an optional short-lived
// cache. Correctness beats latency: entries are invalidated on every user
// write so an authorization decision never evaluates a role or area an admin
// edit has already changed.
type Resolver struct {
	store  ports.UserStore
	cache  ports.IdentityCache
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Resolver)

func WithCache(cache ports.IdentityCache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = cache
		r.ttl = ttl
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func New(store ports.UserStore, opts ...Option) (*Resolver, error) {
	if store == nil {
		return nil, fmt.Errorf("user store is required")
	}
	r := &Resolver{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve returns the actor's current identity. Deactivated users resolve
// like any other; no rule acts on the flag yet, it is bookkeeping for
// administrators.
func (r *Resolver) Resolve(ctx context.Context, id domain.UserID) (models.Identity, error) {
	if id.IsNil() {
		return models.Identity{}, dErrors.New(dErrors.CodeBadRequest, "actor id is required")
	}

	if r.cache != nil {
		identity, err := r.cache.Get(ctx, id)
		if err == nil {
			return identity, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) && r.logger != nil {
			// Cache trouble degrades to a store read, never to a failure.
			r.logger.WarnContext(ctx, "identity cache read failed", "user_id", id, "error", err)
		}
	}

	user, err := r.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Identity{}, dErrors.Wrap(err, dErrors.CodeNotFound, "actor not found")
		}
		if errors.Is(err, sentinel.ErrUnavailable) {
			return models.Identity{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "identity store unavailable")
		}
		return models.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve identity")
	}

	identity := user.Identity()
	if r.cache != nil {
		if err := r.cache.Set(ctx, identity, r.ttl); err != nil && r.logger != nil {
			r.logger.WarnContext(ctx, "identity cache write failed", "user_id", id, "error", err)
		}
	}
	return identity, nil
}

// Invalidate drops any cached identity for the user. The gateway calls this
// after every user write.
func (r *Resolver) Invalidate(ctx context.Context, id domain.UserID) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, id); err != nil && r.logger != nil {
		r.logger.WarnContext(ctx, "identity cache invalidation failed", "user_id", id, "error", err)
	}
}
