package models

import (
	"fmt"
	"slices"
	"time"

	"grantgate/pkg/domain"
)

// Application is a grant application record. It is owned by its creating user
// until submission; after that, mutation rights pass to the review process
// under the lifecycle rules.
type Application struct {
	ID             domain.ApplicationID
	OwnerID        domain.UserID
	RoundID        domain.RoundID
	Area           domain.Area
	Title          string
	Summary        string
	FundsRequested int64 // pence
	Status         domain.Status

	// AssignedScorers lists committee members eligible to score this
	// application regardless of area match. Managed by admins only.
	AssignedScorers []domain.UserID

	CreatedAt   time.Time
	SubmittedAt *time.Time
}

// IsOwnedBy reports whether the actor owns the application.
func (a Application) IsOwnedBy(id domain.UserID) bool {
	return !id.IsNil() && a.OwnerID == id
}

// IsAssigned reports whether the actor appears in the assigned-scorer set.
func (a Application) IsAssigned(id domain.UserID) bool {
	return slices.Contains(a.AssignedScorers, id)
}

// Validate checks structural invariants on the record itself. Authorization
// and lifecycle rules live elsewhere.
func (a Application) Validate() error {
	if a.OwnerID.IsNil() {
		return fmt.Errorf("owner is required")
	}
	if a.Area.IsNil() {
		return fmt.Errorf("area is required")
	}
	if a.FundsRequested < 0 {
		return fmt.Errorf("funds requested must be non-negative")
	}
	return nil
}

// Draft is the payload for creating an application. Ownership and the draft
// status are established by the gateway, never by the caller.
type Draft struct {
	RoundID        domain.RoundID
	Area           domain.Area
	Title          string
	Summary        string
	FundsRequested int64
}

// Patch carries a partial update. Content fields belong to the owner while
// the application is a draft; oversight fields (area, assigned scorers)
// belong to admins.
type Patch struct {
	Title          *string
	Summary        *string
	FundsRequested *int64

	Area            *domain.Area
	AssignedScorers *[]domain.UserID
}

// HasContent reports whether the patch touches owner-editable fields.
func (p Patch) HasContent() bool {
	return p.Title != nil || p.Summary != nil || p.FundsRequested != nil
}

// HasOversight reports whether the patch touches admin-only fields.
func (p Patch) HasOversight() bool {
	return p.Area != nil || p.AssignedScorers != nil
}

// Apply copies the patch onto an application record.
func (p Patch) Apply(a *Application) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Summary != nil {
		a.Summary = *p.Summary
	}
	if p.FundsRequested != nil {
		a.FundsRequested = *p.FundsRequested
	}
	if p.Area != nil {
		a.Area = *p.Area
	}
	if p.AssignedScorers != nil {
		a.AssignedScorers = slices.Clone(*p.AssignedScorers)
	}
}
