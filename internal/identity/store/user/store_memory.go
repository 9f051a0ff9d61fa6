package user

import (
	"context"
	"sync"

	"grantgate/internal/identity/models"
	"grantgate/pkg/domain"
	"grantgate/pkg/platform/sentinel"
)

// InMemoryStore keeps user records in a map. It is the primary store for
// tests and local development.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[domain.UserID]models.User
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{users: make(map[domain.UserID]models.User)}
}

func (s *InMemoryStore) Save(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.UserID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return models.User{}, sentinel.ErrNotFound
}
