// Package ports defines shared interfaces for the application module.
package ports

import (
	"context"

	"grantgate/internal/application/models"
	"grantgate/pkg/domain"
)

// ApplicationStore persists Application records. The store surface is the
// minimum the gateway needs: point reads, an existence check, whole-record
// writes, and an atomic compare-and-set on status for lifecycle transitions.
// Implementations return sentinel errors for missing records and failed
// preconditions.
type ApplicationStore interface {
	// Save creates or replaces an application record.
	Save(ctx context.Context, app models.Application) error

	// FindByID point-reads an application record.
	FindByID(ctx context.Context, id domain.ApplicationID) (models.Application, error)

	// Exists reports whether a record exists without fetching it.
	Exists(ctx context.Context, id domain.ApplicationID) (bool, error)

	// Delete removes a record. The gateway only permits this for drafts.
	Delete(ctx context.Context, id domain.ApplicationID) error

	// CompareAndSetStatus atomically moves status from `from` to `to`.
	// Returns sentinel.ErrInvalidState when the current status is not `from`,
	// which is how exactly one of two racing transition attempts wins.
	CompareAndSetStatus(ctx context.Context, id domain.ApplicationID, from, to domain.Status) error
}
