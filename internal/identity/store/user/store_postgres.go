package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"grantgate/internal/identity/models"
	"grantgate/pkg/domain"
	"grantgate/pkg/platform/sentinel"
)

// PostgresStore persists user records in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, user models.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, phone, bio, role, area, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			bio = EXCLUDED.bio,
			role = EXCLUDED.role,
			area = EXCLUDED.area,
			active = EXCLUDED.active`,
		user.ID.String(), user.Name, user.Email, user.Phone, user.Bio,
		user.Role.String(), user.Area.String(), user.Active, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.UserID) (models.User, error) {
	var (
		user models.User
		uid, role, area string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, bio, role, area, active, created_at
		FROM users WHERE id = $1`, id.String(),
	).Scan(&uid, &user.Name, &user.Email, &user.Phone, &user.Bio, &role, &area, &user.Active, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, sentinel.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	user.ID = domain.UserID(uid)
	user.Role = domain.Role(role)
	user.Area = domain.Area(area)
	return user, nil
}
