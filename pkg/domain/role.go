package domain

import "fmt"

// Role is the actor's role claim as stored on the User record. The policy
// engine always evaluates against the stored role, never a cached token claim.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCommittee Role = "committee"
	RoleApplicant Role = "applicant"
)

var validRoles = map[Role]struct{}{
	RoleAdmin:     {},
	RoleCommittee: {},
	RoleApplicant: {},
}

// ParseRole validates and returns a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := validRoles[r]; !ok {
		return "", fmt.Errorf("unknown role: %s", s)
	}
	return r, nil
}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsNil() bool {
	return r == ""
}

// Area is one of a fixed enumerated set of organizational regions used to
// partition committee visibility. The closed set itself is configuration
// (see platform/config); Area carries no validation of its own so operators
// can add areas without recompiling.
type Area string

func (a Area) String() string {
	return string(a)
}

func (a Area) IsNil() bool {
	return a == ""
}
