// Package ports defines shared interfaces for the identity module.
package ports

import (
	"context"
	"time"

	"grantgate/internal/identity/models"
	"grantgate/pkg/domain"
)

// UserStore persists User records. Implementations return sentinel.ErrNotFound
// for missing ids.
type UserStore interface {
	// Save creates or replaces a user record.
	Save(ctx context.Context, user models.User) error

	// FindByID point-reads a user record.
	FindByID(ctx context.Context, id domain.UserID) (models.User, error)
}

// IdentityCache is a bounded, short-lived cache over resolved identities.
// Implementations return sentinel.ErrNotFound on a miss. The resolver
// invalidates entries on every user write so authorization decisions never
// see a role or area that an admin edit has already changed.
type IdentityCache interface {
	Get(ctx context.Context, id domain.UserID) (models.Identity, error)
	Set(ctx context.Context, identity models.Identity, ttl time.Duration) error
	Invalidate(ctx context.Context, id domain.UserID) error
}
