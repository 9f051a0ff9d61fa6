package models

import (
	"time"

	"grantgate/pkg/domain"
)

// User is the identity record backing every authorization decision. Accounts
// are provisioned by an admin; users are never hard-deleted, only deactivated.
type User struct {
	ID        domain.UserID
	Name      string
	Email     string
	Phone     string
	Bio       string
	Role      domain.Role
	Area      domain.Area // meaningful only for committee members
	Active    bool
	CreatedAt time.Time
}

// Identity is the resolved (role, area) pair the policy engine evaluates
// against. It always reflects the stored record at resolution time.
type Identity struct {
	ID   domain.UserID
	Role domain.Role
	Area domain.Area
}

// Identity returns the resolved view of the user.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Role: u.Role, Area: u.Area}
}

// UserPatch carries a partial update. Oversight fields (role, area, active)
// are admin-only; profile fields may be updated by the user themselves.
type UserPatch struct {
	Name  *string
	Email *string
	Phone *string
	Bio   *string

	Role   *domain.Role
	Area   *domain.Area
	Active *bool
}

// HasOversight reports whether the patch touches admin-only fields.
func (p UserPatch) HasOversight() bool {
	return p.Role != nil || p.Area != nil || p.Active != nil
}

// HasProfile reports whether the patch touches self-service profile fields.
func (p UserPatch) HasProfile() bool {
	return p.Name != nil || p.Email != nil || p.Phone != nil || p.Bio != nil
}

// Apply copies the patch onto a user record.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Area != nil {
		u.Area = *p.Area
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
}
