package resolver

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"grantgate/internal/identity/cache"
	"grantgate/internal/identity/models"
	userstore "grantgate/internal/identity/store/user"
	"grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
)

type ResolverSuite struct {
	suite.Suite
	store *userstore.InMemoryStore
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.store = userstore.NewInMemory()
	s.Require().NoError(s.store.Save(context.Background(), models.User{
		ID:     "committee-1",
		Name:   "Carys Morgan",
		Role:   domain.RoleCommittee,
		Area:   "north",
		Active: true,
	}))
}

func (s *ResolverSuite) TestResolve() {
	s.Run("returns the stored role and area", func() {
		r, err := New(s.store)
		s.Require().NoError(err)

		identity, err := r.Resolve(context.Background(), "committee-1")
		s.Require().NoError(err)
		s.Equal(domain.RoleCommittee, identity.Role)
		s.Equal(domain.Area("north"), identity.Area)
	})

	s.Run("empty actor id is a bad request", func() {
		r, err := New(s.store)
		s.Require().NoError(err)

		_, err = r.Resolve(context.Background(), "")
		s.Require().Error(err)
		s.True(dErrors.IsCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown actor maps to not found", func() {
		r, err := New(s.store)
		s.Require().NoError(err)

		_, err = r.Resolve(context.Background(), "ghost")
		s.Require().Error(err)
		s.True(dErrors.IsCode(err, dErrors.CodeNotFound))
	})

	s.Run("requires a store", func() {
		_, err := New(nil)
		s.Require().Error(err)
	})
}

func (s *ResolverSuite) TestCaching() {
	s.Run("second resolve is served from cache", func() {
		counting := &countingStore{inner: s.store}
		r, err := New(counting, WithCache(cache.NewInMemory(0), time.Minute))
		s.Require().NoError(err)

		_, err = r.Resolve(context.Background(), "committee-1")
		s.Require().NoError(err)
		_, err = r.Resolve(context.Background(), "committee-1")
		s.Require().NoError(err)
		s.Equal(1, counting.finds)
	})

	s.Run("invalidate forces a fresh store read", func() {
		counting := &countingStore{inner: s.store}
		r, err := New(counting, WithCache(cache.NewInMemory(0), time.Minute))
		s.Require().NoError(err)

		_, err = r.Resolve(context.Background(), "committee-1")
		s.Require().NoError(err)

		s.Require().NoError(s.store.Save(context.Background(), models.User{
			ID: "committee-1", Role: domain.RoleCommittee, Area: "south", Active: true,
		}))
		r.Invalidate(context.Background(), "committee-1")

		identity, err := r.Resolve(context.Background(), "committee-1")
		s.Require().NoError(err)
		s.Equal(domain.Area("south"), identity.Area)
		s.Equal(2, counting.finds)
	})

	s.Run("cache trouble degrades to the store", func() {
		r, err := New(s.store, WithCache(brokenCache{}, time.Minute))
		s.Require().NoError(err)

		identity, err := r.Resolve(context.Background(), "committee-1")
		s.Require().NoError(err)
		s.Equal(domain.RoleCommittee, identity.Role)
	})
}

// countingStore counts FindByID calls to observe cache hits.
type countingStore struct {
	inner *userstore.InMemoryStore
	finds int
}

func (c *countingStore) Save(ctx context.Context, user models.User) error {
	return c.inner.Save(ctx, user)
}

func (c *countingStore) FindByID(ctx context.Context, id domain.UserID) (models.User, error) {
	c.finds++
	return c.inner.FindByID(ctx, id)
}

// brokenCache fails every call.
type brokenCache struct{}

func (brokenCache) Get(context.Context, domain.UserID) (models.Identity, error) {
	return models.Identity{}, fmt.Errorf("cache down")
}

func (brokenCache) Set(context.Context, models.Identity, time.Duration) error {
	return fmt.Errorf("cache down")
}

func (brokenCache) Invalidate(context.Context, domain.UserID) error {
	return fmt.Errorf("cache down")
}
