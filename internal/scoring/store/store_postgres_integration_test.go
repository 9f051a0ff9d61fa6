//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"grantgate/internal/scoring/models"
	"grantgate/pkg/domain"
	"grantgate/pkg/platform/sentinel"
	"grantgate/pkg/testutil/containers"
)

type PostgresScoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresScoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresScoreSuite))
}

func (s *PostgresScoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.Pool)
}

func (s *PostgresScoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
}

func (s *PostgresScoreSuite) sheet(scorerID domain.UserID, points int, final bool) models.Score {
	return models.Score{
		ApplicationID: "app-1",
		ScorerID:      scorerID,
		Criteria: []models.CriterionScore{
			{CriterionID: "impact", Points: points, Notes: "solid plan"},
			{CriterionID: "budget", Points: 2},
		},
		Final:     final,
		UpdatedAt: time.Now().UTC(),
	}
}

func (s *PostgresScoreSuite) TestUpsertAndFind() {
	s.Run("round-trips the criteria payload", func() {
		score := s.sheet("committee-n1", 7, false)
		s.Require().NoError(s.store.Upsert(s.ctx, score))

		got, err := s.store.Find(s.ctx, domain.ScoreKey{ApplicationID: "app-1", ScorerID: "committee-n1"})
		s.Require().NoError(err)
		s.Equal(score.Criteria, got.Criteria)
		s.Equal(9, got.Total())
		s.False(got.Final)
	})

	s.Run("second upsert replaces the sheet in place", func() {
		s.Require().NoError(s.store.Upsert(s.ctx, s.sheet("committee-n1", 7, false)))
		s.Require().NoError(s.store.Upsert(s.ctx, s.sheet("committee-n1", 5, true)))

		got, err := s.store.Find(s.ctx, domain.ScoreKey{ApplicationID: "app-1", ScorerID: "committee-n1"})
		s.Require().NoError(err)
		s.Equal(7, got.Total())
		s.True(got.Final)

		all, err := s.store.ListByApplication(s.ctx, "app-1")
		s.Require().NoError(err)
		s.Len(all, 1)
	})

	s.Run("missing sheet reports not found", func() {
		_, err := s.store.Find(s.ctx, domain.ScoreKey{ApplicationID: "app-1", ScorerID: "ghost"})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresScoreSuite) TestListByApplication() {
	s.Require().NoError(s.store.Upsert(s.ctx, s.sheet("committee-n1", 7, true)))
	s.Require().NoError(s.store.Upsert(s.ctx, s.sheet("committee-n2", 4, false)))

	other := s.sheet("committee-n1", 3, false)
	other.ApplicationID = "app-2"
	s.Require().NoError(s.store.Upsert(s.ctx, other))

	got, err := s.store.ListByApplication(s.ctx, "app-1")
	s.Require().NoError(err)
	s.Len(got, 2)
	for _, score := range got {
		s.Equal(domain.ApplicationID("app-1"), score.ApplicationID)
	}

	empty, err := s.store.ListByApplication(s.ctx, "app-3")
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *PostgresScoreSuite) TestDelete() {
	s.Require().NoError(s.store.Upsert(s.ctx, s.sheet("committee-n1", 7, false)))

	key := domain.ScoreKey{ApplicationID: "app-1", ScorerID: "committee-n1"}
	s.Require().NoError(s.store.Delete(s.ctx, key))

	_, err := s.store.Find(s.ctx, key)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, key), sentinel.ErrNotFound)
}
