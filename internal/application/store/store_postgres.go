package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"grantgate/internal/application/models"
	"grantgate/pkg/domain"
	"grantgate/pkg/platform/sentinel"
)

// PostgresStore persists application records in PostgreSQL. Status moves only
// through CompareAndSetStatus, which relies on a conditional UPDATE for the
// same single-winner semantics the in-memory store gets from its lock.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, app models.Application) error {
	scorers := make([]string, len(app.AssignedScorers))
	for i, id := range app.AssignedScorers {
		scorers[i] = id.String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO applications
			(id, owner_id, round_id, area, title, summary, funds_requested, status, assigned_scorers, created_at, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			area = EXCLUDED.area,
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			funds_requested = EXCLUDED.funds_requested,
			status = EXCLUDED.status,
			assigned_scorers = EXCLUDED.assigned_scorers,
			submitted_at = EXCLUDED.submitted_at`,
		app.ID.String(), app.OwnerID.String(), app.RoundID.String(), app.Area.String(),
		app.Title, app.Summary, app.FundsRequested, app.Status.String(),
		scorers, app.CreatedAt, app.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("save application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ApplicationID) (models.Application, error) {
	var (
		app models.Application
		appID, ownerID, roundID, area, status string
		scorers []string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, round_id, area, title, summary, funds_requested, status, assigned_scorers, created_at, submitted_at
		FROM applications WHERE id = $1`, id.String(),
	).Scan(&appID, &ownerID, &roundID, &area, &app.Title, &app.Summary,
		&app.FundsRequested, &status, &scorers, &app.CreatedAt, &app.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Application{}, sentinel.ErrNotFound
		}
		return models.Application{}, fmt.Errorf("find application: %w", err)
	}
	app.ID = domain.ApplicationID(appID)
	app.OwnerID = domain.UserID(ownerID)
	app.RoundID = domain.RoundID(roundID)
	app.Area = domain.Area(area)
	app.Status = domain.Status(status)
	app.AssignedScorers = make([]domain.UserID, len(scorers))
	for i, s := range scorers {
		app.AssignedScorers[i] = domain.UserID(s)
	}
	return app, nil
}

func (s *PostgresStore) Exists(ctx context.Context, id domain.ApplicationID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, id.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("application exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.ApplicationID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CompareAndSetStatus(ctx context.Context, id domain.ApplicationID, from, to domain.Status) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE applications
		SET status = $3,
		    submitted_at = CASE WHEN $3 = 'submitted' AND submitted_at IS NULL THEN now() ELSE submitted_at END
		WHERE id = $1 AND status = $2`,
		id.String(), from.String(), to.String(),
	)
	if err != nil {
		return fmt.Errorf("compare-and-set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := s.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrInvalidState
	}
	return nil
}
