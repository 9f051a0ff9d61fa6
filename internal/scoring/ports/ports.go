// Package ports defines shared interfaces for the scoring module.
package ports

import (
	"context"

	"grantgate/internal/scoring/models"
	"grantgate/pkg/domain"
)

// ScoreStore persists Score records keyed by (application, scorer). Upsert is
// serialized per key by the store's native per-document atomicity;
// last-writer-wins is acceptable because only a scorer's own revisions race,
// and only before the application is decided.
type ScoreStore interface {
	// Upsert creates or replaces the score for its key.
	Upsert(ctx context.Context, score models.Score) error

	// Find point-reads a score.
	Find(ctx context.Context, key domain.ScoreKey) (models.Score, error)

	// Delete removes a score.
	Delete(ctx context.Context, key domain.ScoreKey) error

	// ListByApplication returns all scores for an application.
	ListByApplication(ctx context.Context, id domain.ApplicationID) ([]models.Score, error)
}
