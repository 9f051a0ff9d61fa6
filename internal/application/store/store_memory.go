package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"grantgate/internal/application/models"
	"grantgate/pkg/domain"
	"grantgate/pkg/platform/sentinel"
)

// InMemoryStore keeps application records in a map. Compare-and-set runs
// under the write lock, giving the same per-document atomicity the document
// store provides in production.
type InMemoryStore struct {
	mu   sync.RWMutex
	apps map[domain.ApplicationID]models.Application
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{apps: make(map[domain.ApplicationID]models.Application)}
}

func (s *InMemoryStore) Save(_ context.Context, app models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app.AssignedScorers = slices.Clone(app.AssignedScorers)
	s.apps[app.ID] = app
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.ApplicationID) (models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if app, ok := s.apps[id]; ok {
		app.AssignedScorers = slices.Clone(app.AssignedScorers)
		return app, nil
	}
	return models.Application{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Exists(_ context.Context, id domain.ApplicationID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.apps[id]
	return ok, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.apps, id)
	return nil
}

func (s *InMemoryStore) CompareAndSetStatus(_ context.Context, id domain.ApplicationID, from, to domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if app.Status != from {
		return sentinel.ErrInvalidState
	}
	app.Status = to
	if to == domain.StatusSubmitted && app.SubmittedAt == nil {
		now := time.Now()
		app.SubmittedAt = &now
	}
	s.apps[id] = app
	return nil
}
