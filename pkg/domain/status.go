package domain

import "fmt"

// Status is an Application's lifecycle state. The lifecycle is linear; the
// order map below defines the progression used for monotonicity checks. Which
// transitions are legal, and for whom, lives in the lifecycle machine.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusScored      Status = "scored"
	StatusDecided     Status = "decided"
)

// statusOrder defines the linear progression. Higher numbers are later states.
var statusOrder = map[Status]int{
	StatusDraft:       1,
	StatusSubmitted:   2,
	StatusUnderReview: 3,
	StatusScored:      4,
	StatusDecided:     5,
}

// ParseStatus validates and returns a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusOrder[st]; !ok {
		return "", fmt.Errorf("unknown status: %s", s)
	}
	return st, nil
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsNil() bool {
	return s == ""
}

// After reports whether s is strictly later than other in the lifecycle.
// Unknown statuses are treated as earlier than any known status.
func (s Status) After(other Status) bool {
	thisOrder, thisOK := statusOrder[s]
	otherOrder, otherOK := statusOrder[other]
	if !thisOK {
		return false
	}
	if !otherOK {
		return true
	}
	return thisOrder > otherOrder
}
