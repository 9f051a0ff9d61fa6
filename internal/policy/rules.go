package policy

import (
	"grantgate/pkg/domain"
)

// ruleRegistry maps rule names to predicates per resource kind. The ordering
// tables (policy file or DefaultOrdering) pick from here; the registry itself
// carries no order.
//
// Rule chains are first-match-wins, and several rules deliberately match AND
// deny rather than fall through: a state-gated narrow rule (owner update
// outside draft, a score write on a decided application, a self update
// touching oversight fields) must short-circuit before any broader allow
// could be reached.
var ruleRegistry = map[domain.ResourceKind]map[string]RuleFunc{
	domain.ResourceApplication: {
		"resource-exists":       applicationExists,
		"admin-read":            applicationAdminRead,
		"admin-oversight-write": applicationAdminOversightWrite,
		"admin-transition":      applicationAdminTransition,
		"applicant-create":      applicationApplicantCreate,
		"owner-submit":          applicationOwnerSubmit,
		"owner-draft-write":     applicationOwnerDraftWrite,
		"owner-read":            applicationOwnerRead,
		"committee-area-read":   applicationCommitteeAreaRead,
	},
	domain.ResourceScore: {
		"resource-exists":  scoreExists,
		"admin-read":       scoreAdminRead,
		"scorer-own-write": scoreScorerOwnWrite,
		"scorer-own-read":  scoreScorerOwnRead,
	},
	domain.ResourceUser: {
		"resource-exists":     userExists,
		"admin-manage":        userAdminManage,
		"self-read":           userSelfRead,
		"self-profile-update": userSelfProfileUpdate,
	},
}

// ---------------------------------------------------------------------------
// Application rules. Documented priority:
//  1. resource-exists       operations on a missing record fail NotFound
//  2. admin-read            unconditional admin read
//  3. admin-oversight-write admin writes gated to the oversight field subset
//  4. admin-transition      review activation, decision, override
//  5. applicant-create      any applicant may open a draft
//  6. owner-submit          owner-triggered submission (machine gates state)
//  7. owner-draft-write     owner update/delete, draft state only
//  8. owner-read            owner read at any state
//  9. committee-area-read   area match or assigned-scorer membership
// ---------------------------------------------------------------------------

func applicationExists(req Request) verdict {
	if req.Operation == domain.OpCreate {
		return verdictSkip
	}
	if req.Application == nil {
		return verdictDenyNotFound
	}
	return verdictSkip
}

func applicationAdminRead(req Request) verdict {
	if req.Actor.Role == domain.RoleAdmin && req.Operation == domain.OpRead {
		return verdictAllow
	}
	return verdictSkip
}

// applicationAdminOversightWrite lets admins write the oversight subset
// (area, assigned scorers) and nothing else. An admin update touching content
// fields is denied here rather than left to fall through.
func applicationAdminOversightWrite(req Request) verdict {
	if req.Actor.Role != domain.RoleAdmin {
		return verdictSkip
	}
	switch req.Operation {
	case domain.OpUpdate:
		p := req.ApplicationPatch
		if p != nil && p.HasOversight() && !p.HasContent() {
			return verdictAllow
		}
		return verdictDenyForbidden
	case domain.OpDelete:
		// Applications are never hard-deleted past draft, and drafts belong
		// to their owner.
		return verdictDenyForbidden
	}
	return verdictSkip
}

func applicationAdminTransition(req Request) verdict {
	if req.Actor.Role != domain.RoleAdmin {
		return verdictSkip
	}
	switch req.Operation {
	case domain.OpStartReview, domain.OpDecide, domain.OpOverrideStatus:
		return verdictAllow
	}
	return verdictSkip
}

func applicationApplicantCreate(req Request) verdict {
	if req.Operation != domain.OpCreate {
		return verdictSkip
	}
	if req.Actor.Role == domain.RoleApplicant {
		return verdictAllow
	}
	return verdictDenyForbidden
}

func applicationOwnerSubmit(req Request) verdict {
	if req.Operation != domain.OpSubmit {
		return verdictSkip
	}
	if req.Application.IsOwnedBy(req.Actor.ID) {
		return verdictAllow
	}
	return verdictSkip
}

// applicationOwnerDraftWrite is the state-gated owner rule: update and delete
// are for the owner while the record is a draft, and for no one after. The
// deny on a non-draft state must short-circuit here, before owner-read or any
// broader rule can match.
func applicationOwnerDraftWrite(req Request) verdict {
	if req.Operation != domain.OpUpdate && req.Operation != domain.OpDelete {
		return verdictSkip
	}
	if !req.Application.IsOwnedBy(req.Actor.ID) {
		return verdictSkip
	}
	if req.Application.Status != domain.StatusDraft {
		return verdictDenyForbidden
	}
	if req.Operation == domain.OpUpdate {
		p := req.ApplicationPatch
		if p == nil || !p.HasContent() || p.HasOversight() {
			return verdictDenyForbidden
		}
	}
	return verdictAllow
}

func applicationOwnerRead(req Request) verdict {
	if req.Operation == domain.OpRead && req.Application.IsOwnedBy(req.Actor.ID) {
		return verdictAllow
	}
	return verdictSkip
}

func applicationCommitteeAreaRead(req Request) verdict {
	if req.Actor.Role != domain.RoleCommittee || req.Operation != domain.OpRead {
		return verdictSkip
	}
	app := req.Application
	if app.Area == req.Actor.Area || app.IsAssigned(req.Actor.ID) {
		return verdictAllow
	}
	return verdictSkip
}

// ---------------------------------------------------------------------------
// Score rules. A scorer writes only their own record, only when the parent
// application is visible to them, and only while the parent is submitted or
// under review. Admins read everything and write nothing: oversight never
// extends to scoring content.
// ---------------------------------------------------------------------------

func scoreExists(req Request) verdict {
	if req.ScoreParent == nil {
		return verdictDenyNotFound
	}
	if req.Operation != domain.OpCreate && req.Score == nil {
		return verdictDenyNotFound
	}
	return verdictSkip
}

func scoreAdminRead(req Request) verdict {
	if req.Actor.Role == domain.RoleAdmin && req.Operation == domain.OpRead {
		return verdictAllow
	}
	return verdictSkip
}

// scoreScorerOwnWrite checks, in order: the record key carries the actor's
// own id (a scorer can never author another scorer's record), the parent is
// visible by area match or assignment, and the parent is still in a scoring
// state. Each failed check is a deny, not a fall-through.
func scoreScorerOwnWrite(req Request) verdict {
	if req.Actor.Role != domain.RoleCommittee {
		return verdictSkip
	}
	switch req.Operation {
	case domain.OpCreate, domain.OpUpdate, domain.OpDelete:
	default:
		return verdictSkip
	}
	if req.ScoreKey.ScorerID != req.Actor.ID {
		return verdictDenyForbidden
	}
	parent := req.ScoreParent
	if parent.Area != req.Actor.Area && !parent.IsAssigned(req.Actor.ID) {
		return verdictDenyForbidden
	}
	switch parent.Status {
	case domain.StatusSubmitted, domain.StatusUnderReview:
		return verdictAllow
	}
	return verdictDenyForbidden
}

func scoreScorerOwnRead(req Request) verdict {
	if req.Actor.Role != domain.RoleCommittee || req.Operation != domain.OpRead {
		return verdictSkip
	}
	if req.Score.ScorerID == req.Actor.ID {
		return verdictAllow
	}
	return verdictSkip
}

// ---------------------------------------------------------------------------
// User rules. Admins provision and manage accounts; a user reads their own
// record and edits profile fields only. Nobody deletes: accounts are
// deactivated through the oversight subset.
// ---------------------------------------------------------------------------

func userExists(req Request) verdict {
	if req.Operation == domain.OpCreate {
		return verdictSkip
	}
	if req.User == nil {
		return verdictDenyNotFound
	}
	return verdictSkip
}

func userAdminManage(req Request) verdict {
	if req.Actor.Role != domain.RoleAdmin {
		return verdictSkip
	}
	switch req.Operation {
	case domain.OpRead, domain.OpCreate, domain.OpUpdate:
		return verdictAllow
	}
	return verdictSkip
}

func userSelfRead(req Request) verdict {
	if req.Operation == domain.OpRead && req.TargetUserID == req.Actor.ID {
		return verdictAllow
	}
	return verdictSkip
}

// userSelfProfileUpdate allows profile edits on the actor's own record. A
// self update touching role, area or active is denied here: the short-circuit
// is what stops privilege escalation, so it must not fall through.
func userSelfProfileUpdate(req Request) verdict {
	if req.Operation != domain.OpUpdate || req.TargetUserID != req.Actor.ID {
		return verdictSkip
	}
	p := req.UserPatch
	if p != nil && p.HasProfile() && !p.HasOversight() {
		return verdictAllow
	}
	return verdictDenyForbidden
}
