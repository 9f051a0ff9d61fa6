package models

import (
	"fmt"
	"time"

	"grantgate/pkg/domain"
)

// CriterionScore is one criterion's points and notes within a score sheet.
type CriterionScore struct {
	CriterionID string
	Points      int
	Notes       string
}

// Score is a committee member's score sheet for one application. Keyed by
// (application, scorer): the scorer id is part of the key, so a scorer can
// never author a record under another scorer's id. A scorer may revise their
// sheet until the application is decided; only final sheets count toward the
// scored transition.
type Score struct {
	ApplicationID domain.ApplicationID
	ScorerID      domain.UserID
	Criteria      []CriterionScore
	Final         bool
	UpdatedAt     time.Time
}

// Key returns the record's composite key.
func (s Score) Key() domain.ScoreKey {
	return domain.ScoreKey{ApplicationID: s.ApplicationID, ScorerID: s.ScorerID}
}

// Total sums the criterion points.
func (s Score) Total() int {
	total := 0
	for _, c := range s.Criteria {
		total += c.Points
	}
	return total
}

// Validate checks structural invariants on the record itself.
func (s Score) Validate() error {
	if s.ApplicationID.IsNil() {
		return fmt.Errorf("application id is required")
	}
	if s.ScorerID.IsNil() {
		return fmt.Errorf("scorer id is required")
	}
	for _, c := range s.Criteria {
		if c.Points < 0 {
			return fmt.Errorf("criterion %s: points must be non-negative", c.CriterionID)
		}
	}
	return nil
}

// Sheet is the payload for creating or revising a score. The scorer id is
// never part of the payload; the gateway stamps the authenticated actor's id.
type Sheet struct {
	Criteria []CriterionScore
	Final    bool
}
