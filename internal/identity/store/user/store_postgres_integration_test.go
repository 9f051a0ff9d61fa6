//go:build integration

package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"grantgate/internal/identity/models"
	"grantgate/pkg/domain"
	"grantgate/pkg/platform/sentinel"
	"grantgate/pkg/testutil/containers"
)

type PostgresUserSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresUserSuite(t *testing.T) {
	suite.Run(t, new(PostgresUserSuite))
}

func (s *PostgresUserSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.Pool)
}

func (s *PostgresUserSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
}

func (s *PostgresUserSuite) TestSaveAndFind() {
	user := models.User{
		ID:        "committee-1",
		Name:      "Carys Morgan",
		Email:     "carys.morgan@example.org",
		Phone:     "+44 29 2018 0000",
		Bio:       "Panel member since 2021.",
		Role:      domain.RoleCommittee,
		Area:      "north",
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	s.Run("round-trips every column", func() {
		s.Require().NoError(s.store.Save(s.ctx, user))

		got, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Equal(user.Name, got.Name)
		s.Equal(user.Email, got.Email)
		s.Equal(user.Phone, got.Phone)
		s.Equal(user.Bio, got.Bio)
		s.Equal(domain.RoleCommittee, got.Role)
		s.Equal(domain.Area("north"), got.Area)
		s.True(got.Active)
		s.WithinDuration(user.CreatedAt, got.CreatedAt, time.Second)
	})

	s.Run("save replaces the existing row", func() {
		user.Area = "south"
		user.Active = false
		s.Require().NoError(s.store.Save(s.ctx, user))

		got, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Equal(domain.Area("south"), got.Area)
		s.False(got.Active)
	})

	s.Run("missing id reports not found", func() {
		_, err := s.store.FindByID(s.ctx, "ghost")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
