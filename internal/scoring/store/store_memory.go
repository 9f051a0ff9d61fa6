package store

import (
	"context"
	"slices"
	"sync"

	"grantgate/internal/scoring/models"
	"grantgate/pkg/domain"
	"grantgate/pkg/platform/sentinel"
)

// InMemoryStore keeps score records in a map keyed by (application, scorer).
// The map key is what makes a duplicate record impossible: a second write for
// the same pair replaces the first.
type InMemoryStore struct {
	mu     sync.RWMutex
	scores map[domain.ScoreKey]models.Score
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{scores: make(map[domain.ScoreKey]models.Score)}
}

func (s *InMemoryStore) Upsert(_ context.Context, score models.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	score.Criteria = slices.Clone(score.Criteria)
	s.scores[score.Key()] = score
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, key domain.ScoreKey) (models.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if score, ok := s.scores[key]; ok {
		score.Criteria = slices.Clone(score.Criteria)
		return score, nil
	}
	return models.Score{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Delete(_ context.Context, key domain.ScoreKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scores[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.scores, key)
	return nil
}

func (s *InMemoryStore) ListByApplication(_ context.Context, id domain.ApplicationID) ([]models.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Score
	for key, score := range s.scores {
		if key.ApplicationID == id {
			score.Criteria = slices.Clone(score.Criteria)
			out = append(out, score)
		}
	}
	return out, nil
}
