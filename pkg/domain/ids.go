package domain

import "github.com/google/uuid"

// UserID identifies a User record. IDs are issued at account provisioning and
// never reused.
type UserID string

func (id UserID) String() string {
	return string(id)
}

func (id UserID) IsNil() bool {
	return id == ""
}

// ApplicationID identifies an Application record.
type ApplicationID string

// NewApplicationID returns a fresh random application id.
func NewApplicationID() ApplicationID {
	return ApplicationID(uuid.NewString())
}

func (id ApplicationID) String() string {
	return string(id)
}

func (id ApplicationID) IsNil() bool {
	return id == ""
}

// RoundID identifies an application window. Rounds are managed by an external
// collaborator; the core only carries the reference.
type RoundID string

func (id RoundID) String() string {
	return string(id)
}

func (id RoundID) IsNil() bool {
	return id == ""
}

// ScoreKey identifies a Score record. Keying by (application, scorer) is what
// enforces at most one score per scorer per application: there is no separate
// score id a second record could hide behind.
type ScoreKey struct {
	ApplicationID ApplicationID
	ScorerID      UserID
}

func (k ScoreKey) IsNil() bool {
	return k.ApplicationID.IsNil() || k.ScorerID.IsNil()
}

func (k ScoreKey) String() string {
	return k.ApplicationID.String() + "/" + k.ScorerID.String()
}
