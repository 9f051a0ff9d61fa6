// Package lifecycle governs the legal state transitions of an application.
package lifecycle

import (
	"fmt"

	"grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
)

// Trigger identifies who (or what) is driving a transition. The gateway
// derives it from the resolved actor: the owner for submissions, an admin for
// review activation and decisions, the system for the automatic scored
// transition.
type Trigger string

const (
	TriggerOwner  Trigger = "owner"
	TriggerAdmin  Trigger = "admin"
	TriggerSystem Trigger = "system"
)

// ParseTrigger validates and returns a Trigger.
func ParseTrigger(s string) (Trigger, error) {
	switch t := Trigger(s); t {
	case TriggerOwner, TriggerAdmin, TriggerSystem:
		return t, nil
	}
	return "", fmt.Errorf("unknown trigger: %s", s)
}

// Rule is one legal transition. The machine allows nothing outside its rule
// table; the table is configuration so operators can audit and adjust it
// without touching the machine.
type Rule struct {
	From    domain.Status
	To      domain.Status
	Trigger Trigger
}

// DefaultRules is the linear lifecycle:
//
//	draft -> submitted       owner
//	submitted -> under_review admin
//	under_review -> scored    system (all assigned scorers have final scores)
//	scored -> decided         admin
//
// No skips, no back-transitions. The only correction path is the admin
// override, which bypasses the machine deliberately and is always recorded as
// an audited exception by the gateway.
func DefaultRules() []Rule {
	return []Rule{
		{From: domain.StatusDraft, To: domain.StatusSubmitted, Trigger: TriggerOwner},
		{From: domain.StatusSubmitted, To: domain.StatusUnderReview, Trigger: TriggerAdmin},
		{From: domain.StatusUnderReview, To: domain.StatusScored, Trigger: TriggerSystem},
		{From: domain.StatusScored, To: domain.StatusDecided, Trigger: TriggerAdmin},
	}
}

// Machine validates transitions against its rule table.
type Machine struct {
	rules []Rule
}

func New(rules []Rule) (*Machine, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("transition table is required")
	}
	for _, r := range rules {
		if r.From.IsNil() || r.To.IsNil() {
			return nil, fmt.Errorf("transition with empty status: %+v", r)
		}
		if _, err := domain.ParseStatus(r.From.String()); err != nil {
			return nil, err
		}
		if _, err := domain.ParseStatus(r.To.String()); err != nil {
			return nil, err
		}
		if _, err := ParseTrigger(string(r.Trigger)); err != nil {
			return nil, err
		}
	}
	return &Machine{rules: rules}, nil
}

// Validate checks that moving from `from` to `to` under `trigger` is in the
// table. The returned error carries the current and requested states so
// callers can surface both.
func (m *Machine) Validate(from, to domain.Status, trigger Trigger) error {
	for _, r := range m.rules {
		if r.From == from && r.To == to && r.Trigger == trigger {
			return nil
		}
	}
	return dErrors.Newf(dErrors.CodeIllegalTransition,
		"cannot transition from %s to %s", from, to)
}
