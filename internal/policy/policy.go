// Package policy is the authorization engine. It evaluates a fixed, ordered
// set of predicate rules per resource kind; the first matching rule wins.
// Evaluation is pure: every cross-document fact a rule needs (the actor's
// stored role and area, the resource snapshot, the score's parent
// application) is resolved by the gateway and handed in as a Request, so the
// engine is testable in isolation with fixture data and performs no I/O.
package policy

import (
	"fmt"
	"log/slog"

	appmodels "grantgate/internal/application/models"
	idmodels "grantgate/internal/identity/models"
	scoremodels "grantgate/internal/scoring/models"
	"grantgate/pkg/domain"
)

// Reason is the coarse denial reason surfaced to callers. It deliberately
// carries no detail about which rule matched, so a denied caller learns
// nothing about other users' records.
type Reason string

const (
	ReasonNotFound  Reason = "not_found"
	ReasonForbidden Reason = "forbidden"
)

// Decision is a first-class authorization result. Denial is a value, never an
// error: callers cannot accidentally swallow a security decision as a bug.
type Decision struct {
	Allowed bool
	Reason  Reason
	// Rule names the matching rule. For logs and metrics only; never
	// surfaced to callers.
	Rule string
}

// Request is the full evaluation input. Snapshot fields are nil when the
// record does not exist; they must reflect the CURRENT stored state, never a
// cached or prior value, so a committee member cannot retain access after
// reassignment.
type Request struct {
	Actor     idmodels.Identity
	Operation domain.Operation
	Kind      domain.ResourceKind

	Application *appmodels.Application
	Score       *scoremodels.Score
	// ScoreParent is the score's parent application, set for score requests.
	ScoreParent *appmodels.Application
	User        *idmodels.User

	// Write payloads, for field-subset gating on updates.
	ApplicationPatch *appmodels.Patch
	UserPatch        *idmodels.UserPatch

	// Addressed keys, set even when the record itself does not exist yet.
	ScoreKey     domain.ScoreKey
	TargetUserID domain.UserID
}

// verdict is a single rule's outcome. Skip means the rule did not match and
// evaluation continues down the chain.
type verdict int

const (
	verdictSkip verdict = iota
	verdictAllow
	verdictDenyForbidden
	verdictDenyNotFound
)

// RuleFunc evaluates one predicate rule against a request.
type RuleFunc func(Request) verdict

type rule struct {
	name string
	fn   RuleFunc
}

// Ordering is the per-resource rule order, loadable as data. Reordering rules
// changes who sees what: a broader allow evaluated before a narrower
// state-gated rule widens access. NewEngine validates that names exist and
// that every chain leads with the existence rule; the order of the rest is
// the operator's contract.
type Ordering map[domain.ResourceKind][]string

// existenceRule must head every chain: the rules behind it read the resource
// snapshot without nil checks.
const existenceRule = "resource-exists"

// DefaultOrdering mirrors the documented rule tables.
func DefaultOrdering() Ordering {
	return Ordering{
		domain.ResourceApplication: {
			"resource-exists",
			"admin-read",
			"admin-oversight-write",
			"admin-transition",
			"applicant-create",
			"owner-submit",
			"owner-draft-write",
			"owner-read",
			"committee-area-read",
		},
		domain.ResourceScore: {
			"resource-exists",
			"admin-read",
			"scorer-own-write",
			"scorer-own-read",
		},
		domain.ResourceUser: {
			"resource-exists",
			"admin-manage",
			"self-read",
			"self-profile-update",
		},
	}
}

// Engine evaluates rule chains. Construction fails on unknown rule names so a
// typo in the policy file cannot silently drop a rule.
type Engine struct {
	chains map[domain.ResourceKind][]rule
	logger *slog.Logger
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func NewEngine(ordering Ordering, opts ...Option) (*Engine, error) {
	if len(ordering) == 0 {
		return nil, fmt.Errorf("rule ordering is required")
	}
	chains := make(map[domain.ResourceKind][]rule, len(ordering))
	for kind, names := range ordering {
		registry, ok := ruleRegistry[kind]
		if !ok {
			return nil, fmt.Errorf("no rules registered for resource kind %q", kind)
		}
		if len(names) == 0 || names[0] != existenceRule {
			return nil, fmt.Errorf("%s rule chain must start with %q", kind, existenceRule)
		}
		chain := make([]rule, 0, len(names))
		for _, name := range names {
			fn, ok := registry[name]
			if !ok {
				return nil, fmt.Errorf("unknown %s rule %q", kind, name)
			}
			chain = append(chain, rule{name: name, fn: fn})
		}
		chains[kind] = chain
	}
	e := &Engine{chains: chains}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Authorize walks the chain for the request's resource kind; the first
// matching rule decides. Anything unmatched is denied.
func (e *Engine) Authorize(req Request) Decision {
	chain, ok := e.chains[req.Kind]
	if !ok {
		return e.decided(req, Decision{Allowed: false, Reason: ReasonForbidden, Rule: "unknown-resource"})
	}
	for _, r := range chain {
		switch r.fn(req) {
		case verdictAllow:
			return e.decided(req, Decision{Allowed: true, Rule: r.name})
		case verdictDenyForbidden:
			return e.decided(req, Decision{Allowed: false, Reason: ReasonForbidden, Rule: r.name})
		case verdictDenyNotFound:
			return e.decided(req, Decision{Allowed: false, Reason: ReasonNotFound, Rule: r.name})
		}
	}
	return e.decided(req, Decision{Allowed: false, Reason: ReasonForbidden, Rule: "default-deny"})
}

func (e *Engine) decided(req Request, d Decision) Decision {
	if e.logger != nil {
		e.logger.Debug("authorization decision",
			"actor", req.Actor.ID,
			"operation", req.Operation,
			"resource", req.Kind,
			"allowed", d.Allowed,
			"rule", d.Rule,
		)
	}
	return d
}
