package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"grantgate/internal/application/lifecycle"
	"grantgate/internal/policy"
	"grantgate/pkg/domain"
	pstrings "grantgate/pkg/platform/strings"
)

// Policy is the data-driven part of authorization: the closed area set, the
// per-resource rule ordering, and the lifecycle transition table. Operators
// add areas or reorder rules by editing the policy file, without recompiling.
type Policy struct {
	Areas       []domain.Area
	Ordering    policy.Ordering
	Transitions []lifecycle.Rule
}

// AreaSet answers membership in the closed area enumeration.
type AreaSet map[domain.Area]struct{}

func (s AreaSet) Contains(a domain.Area) bool {
	_, ok := s[a]
	return ok
}

// AreaSet returns the policy's areas as a set.
func (p Policy) AreaSet() AreaSet {
	set := make(AreaSet, len(p.Areas))
	for _, a := range p.Areas {
		set[a] = struct{}{}
	}
	return set
}

// DefaultPolicy is the compiled-in policy: the fund's three areas, the
// documented rule ordering, and the linear lifecycle.
func DefaultPolicy() Policy {
	return Policy{
		Areas: []domain.Area{
			"Blaenavon",
			"Thornhill & Upper Cwmbran",
			"Trevethin, Penygarn & St. Cadocs",
		},
		Ordering:    policy.DefaultOrdering(),
		Transitions: lifecycle.DefaultRules(),
	}
}

type policyFile struct {
	Areas       []string            `yaml:"areas"`
	Rules       map[string][]string `yaml:"rules"`
	Transitions []transitionEntry   `yaml:"transitions"`
}

type transitionEntry struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Trigger string `yaml:"trigger"`
}

// LoadPolicy reads a policy file. Omitted sections keep their defaults;
// present sections replace them wholesale so the file is the single source of
// truth for what it states. Unknown statuses, triggers and resource kinds are
// load errors; unknown rule names surface at engine construction.
func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}

	p := DefaultPolicy()

	if len(file.Areas) > 0 {
		trimmed := pstrings.DedupeAndTrim(file.Areas)
		if len(trimmed) == 0 {
			return Policy{}, fmt.Errorf("policy file: areas section has no usable names")
		}
		areas := make([]domain.Area, 0, len(trimmed))
		for _, a := range trimmed {
			areas = append(areas, domain.Area(a))
		}
		p.Areas = areas
	}

	if len(file.Rules) > 0 {
		ordering := make(policy.Ordering, len(file.Rules))
		for rawKind, names := range file.Rules {
			kind, err := domain.ParseResourceKind(rawKind)
			if err != nil {
				return Policy{}, fmt.Errorf("policy file: %w", err)
			}
			ordering[kind] = names
		}
		p.Ordering = ordering
	}

	if len(file.Transitions) > 0 {
		rules := make([]lifecycle.Rule, 0, len(file.Transitions))
		for _, entry := range file.Transitions {
			from, err := domain.ParseStatus(entry.From)
			if err != nil {
				return Policy{}, fmt.Errorf("policy file: %w", err)
			}
			to, err := domain.ParseStatus(entry.To)
			if err != nil {
				return Policy{}, fmt.Errorf("policy file: %w", err)
			}
			trigger, err := lifecycle.ParseTrigger(entry.Trigger)
			if err != nil {
				return Policy{}, fmt.Errorf("policy file: %w", err)
			}
			rules = append(rules, lifecycle.Rule{From: from, To: to, Trigger: trigger})
		}
		p.Transitions = rules
	}

	return p, nil
}
