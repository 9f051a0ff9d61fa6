package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"grantgate/internal/scoring/models"
	"grantgate/pkg/domain"
	"grantgate/pkg/platform/sentinel"
)

// PostgresStore persists score records in PostgreSQL. The primary key is
// (application_id, scorer_id), so duplicates are structurally impossible and
// an upsert is a single atomic statement.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Upsert(ctx context.Context, score models.Score) error {
	criteria, err := json.Marshal(score.Criteria)
	if err != nil {
		return fmt.Errorf("encode criteria: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO scores (application_id, scorer_id, criteria, final, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (application_id, scorer_id) DO UPDATE SET
			criteria = EXCLUDED.criteria,
			final = EXCLUDED.final,
			updated_at = EXCLUDED.updated_at`,
		score.ApplicationID.String(), score.ScorerID.String(), criteria, score.Final, score.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, key domain.ScoreKey) (models.Score, error) {
	var (
		score    models.Score
		criteria []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT criteria, final, updated_at
		FROM scores WHERE application_id = $1 AND scorer_id = $2`,
		key.ApplicationID.String(), key.ScorerID.String(),
	).Scan(&criteria, &score.Final, &score.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Score{}, sentinel.ErrNotFound
		}
		return models.Score{}, fmt.Errorf("find score: %w", err)
	}
	if err := json.Unmarshal(criteria, &score.Criteria); err != nil {
		return models.Score{}, fmt.Errorf("decode criteria: %w", err)
	}
	score.ApplicationID = key.ApplicationID
	score.ScorerID = key.ScorerID
	return score, nil
}

func (s *PostgresStore) Delete(ctx context.Context, key domain.ScoreKey) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM scores WHERE application_id = $1 AND scorer_id = $2`,
		key.ApplicationID.String(), key.ScorerID.String(),
	)
	if err != nil {
		return fmt.Errorf("delete score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByApplication(ctx context.Context, id domain.ApplicationID) ([]models.Score, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT scorer_id, criteria, final, updated_at
		FROM scores WHERE application_id = $1`, id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var out []models.Score
	for rows.Next() {
		var (
			score    models.Score
			scorerID string
			criteria []byte
		)
		if err := rows.Scan(&scorerID, &criteria, &score.Final, &score.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		if err := json.Unmarshal(criteria, &score.Criteria); err != nil {
			return nil, fmt.Errorf("decode criteria: %w", err)
		}
		score.ApplicationID = id
		score.ScorerID = domain.UserID(scorerID)
		out = append(out, score)
	}
	return out, rows.Err()
}
