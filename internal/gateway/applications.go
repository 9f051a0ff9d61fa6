package gateway

import (
	"context"
	"time"

	"grantgate/internal/application/lifecycle"
	appmodels "grantgate/internal/application/models"
	idmodels "grantgate/internal/identity/models"
	"grantgate/internal/policy"
	"grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
	"grantgate/pkg/platform/audit"
	pstrings "grantgate/pkg/platform/strings"
)

func (g *Gateway) performApplication(ctx context.Context, actor idmodels.Identity, op domain.Operation, ref ResourceRef, payload any) (*Result, error) {
	var snapshot *appmodels.Application
	if op != domain.OpCreate {
		if ref.ApplicationID.IsNil() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "application id is required")
		}
		app, err := g.fetchApplication(ctx, ref.ApplicationID)
		if err != nil {
			return nil, err
		}
		snapshot = app
	}

	req := policy.Request{
		Actor:       actor,
		Operation:   op,
		Kind:        domain.ResourceApplication,
		Application: snapshot,
	}
	if op == domain.OpUpdate {
		patch, ok := payload.(*appmodels.Patch)
		if !ok || patch == nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "application patch is required")
		}
		req.ApplicationPatch = patch
	}

	if err := g.authorize(ctx, req); err != nil {
		return nil, err
	}

	switch op {
	case domain.OpRead:
		return &Result{Application: snapshot}, nil

	case domain.OpCreate:
		return g.createApplication(ctx, actor, payload)

	case domain.OpUpdate:
		return g.updateApplication(ctx, actor, snapshot, req.ApplicationPatch)

	case domain.OpDelete:
		if err := g.write(ctx, func(c context.Context) error {
			return g.apps.Delete(c, snapshot.ID)
		}); err != nil {
			return nil, err
		}
		g.emit(ctx, audit.Event{
			Category:   audit.CategoryOperations,
			ActorID:    actor.ID,
			Action:     audit.ActionApplicationDeleted,
			Resource:   domain.ResourceApplication,
			ResourceID: snapshot.ID.String(),
			Decision:   "allow",
		})
		return &Result{}, nil

	case domain.OpSubmit:
		checklist, ok := payload.(*SubmissionChecklist)
		if !ok || checklist == nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "submission checklist is required")
		}
		if !checklist.FieldsComplete {
			return nil, dErrors.New(dErrors.CodeBadRequest, "mandatory fields are incomplete")
		}
		return g.transition(ctx, actor, snapshot, domain.StatusSubmitted, lifecycle.TriggerOwner, audit.ActionApplicationSubmitted)

	case domain.OpStartReview:
		result, err := g.transition(ctx, actor, snapshot, domain.StatusUnderReview, lifecycle.TriggerAdmin, audit.ActionReviewStarted)
		if err != nil {
			return nil, err
		}
		// The panel may have finished its final sheets while the application
		// was still submitted, so the scored condition can hold the moment
		// review opens.
		moved, err := g.maybeMarkScored(ctx, actor, result.Application)
		if err != nil {
			return nil, err
		}
		if moved {
			result.Application.Status = domain.StatusScored
		}
		return result, nil

	case domain.OpDecide:
		return g.transition(ctx, actor, snapshot, domain.StatusDecided, lifecycle.TriggerAdmin, audit.ActionApplicationDecided)

	case domain.OpOverrideStatus:
		return g.overrideStatus(ctx, actor, snapshot, payload)
	}
	return nil, dErrors.Newf(dErrors.CodeBadRequest, "operation %q does not apply to applications", op)
}

// fetchApplication returns nil without error when the record is missing; the
// resource-exists policy rule turns that into a uniform NotFound denial.
func (g *Gateway) fetchApplication(ctx context.Context, id domain.ApplicationID) (*appmodels.Application, error) {
	var app appmodels.Application
	err := g.read(ctx, func(c context.Context) error {
		var ferr error
		app, ferr = g.apps.FindByID(c, id)
		return ferr
	})
	if err != nil {
		if dErrors.IsCode(err, dErrors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (g *Gateway) createApplication(ctx context.Context, actor idmodels.Identity, payload any) (*Result, error) {
	draft, ok := payload.(*appmodels.Draft)
	if !ok || draft == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "application draft is required")
	}
	if !g.areas.Contains(draft.Area) {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown area %q", draft.Area)
	}

	app := appmodels.Application{
		ID:             domain.NewApplicationID(),
		OwnerID:        actor.ID,
		RoundID:        draft.RoundID,
		Area:           draft.Area,
		Title:          draft.Title,
		Summary:        draft.Summary,
		FundsRequested: draft.FundsRequested,
		Status:         domain.StatusDraft,
		CreatedAt:      time.Now(),
	}
	if err := app.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid application")
	}

	if err := g.write(ctx, func(c context.Context) error {
		return g.apps.Save(c, app)
	}); err != nil {
		return nil, err
	}

	g.emit(ctx, audit.Event{
		Category:   audit.CategoryOperations,
		ActorID:    actor.ID,
		Action:     audit.ActionApplicationCreated,
		Resource:   domain.ResourceApplication,
		ResourceID: app.ID.String(),
		Decision:   "allow",
	})
	return &Result{Application: &app}, nil
}

func (g *Gateway) updateApplication(ctx context.Context, actor idmodels.Identity, snapshot *appmodels.Application, patch *appmodels.Patch) (*Result, error) {
	if patch.Area != nil && !g.areas.Contains(*patch.Area) {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown area %q", *patch.Area)
	}

	updated := *snapshot
	patch.Apply(&updated)
	updated.AssignedScorers = pstrings.DedupeAndTrim(updated.AssignedScorers)
	if err := updated.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid application")
	}

	if err := g.write(ctx, func(c context.Context) error {
		return g.apps.Save(c, updated)
	}); err != nil {
		return nil, err
	}

	// Oversight edits change who can see and score the record; those land in
	// the security stream rather than routine operations.
	category := audit.CategoryOperations
	if patch.HasOversight() {
		category = audit.CategorySecurity
	}
	g.emit(ctx, audit.Event{
		Category:   category,
		ActorID:    actor.ID,
		Action:     audit.ActionApplicationUpdated,
		Resource:   domain.ResourceApplication,
		ResourceID: updated.ID.String(),
		Decision:   "allow",
	})
	return &Result{Application: &updated}, nil
}

// transition validates the move against the lifecycle table, then commits it
// with a compare-and-set keyed on the status the decision was made against. A
// concurrent transition makes the CAS fail, and the loser reports an illegal
// transition against the state that actually held.
func (g *Gateway) transition(ctx context.Context, actor idmodels.Identity, snapshot *appmodels.Application, to domain.Status, trigger lifecycle.Trigger, action audit.Action) (*Result, error) {
	if err := g.machine.Validate(snapshot.Status, to, trigger); err != nil {
		return nil, err
	}

	if err := g.write(ctx, func(c context.Context) error {
		return g.apps.CompareAndSetStatus(c, snapshot.ID, snapshot.Status, to)
	}); err != nil {
		if dErrors.IsCode(err, dErrors.CodeConflict) {
			return nil, dErrors.Newf(dErrors.CodeIllegalTransition,
				"application is no longer %s", snapshot.Status)
		}
		return nil, err
	}

	g.metrics.IncrementTransition(snapshot.Status.String(), to.String())
	g.emit(ctx, audit.Event{
		Category:   audit.CategoryCompliance,
		ActorID:    actor.ID,
		Action:     action,
		Resource:   domain.ResourceApplication,
		ResourceID: snapshot.ID.String(),
		Decision:   "allow",
		Reason:     snapshot.Status.String() + " -> " + to.String(),
	})

	updated := *snapshot
	updated.Status = to
	if to == domain.StatusSubmitted {
		now := time.Now()
		updated.SubmittedAt = &now
	}
	return &Result{Application: &updated}, nil
}

// overrideStatus bypasses the lifecycle table. The exception record is
// written first and is fail-closed: if it cannot be recorded, the override
// does not happen.
func (g *Gateway) overrideStatus(ctx context.Context, actor idmodels.Identity, snapshot *appmodels.Application, payload any) (*Result, error) {
	override, ok := payload.(*StatusOverride)
	if !ok || override == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "status override is required")
	}
	to, err := domain.ParseStatus(override.To.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid override status")
	}
	if to == snapshot.Status {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "application is already %s", to)
	}

	if err := g.emitExceptional(ctx, audit.Event{
		Category:   audit.CategoryCompliance,
		ActorID:    actor.ID,
		Action:     audit.ActionStatusOverridden,
		Resource:   domain.ResourceApplication,
		ResourceID: snapshot.ID.String(),
		Decision:   "allow",
		Reason:     snapshot.Status.String() + " -> " + to.String() + ": " + override.Note,
	}); err != nil {
		return nil, err
	}

	if err := g.write(ctx, func(c context.Context) error {
		return g.apps.CompareAndSetStatus(c, snapshot.ID, snapshot.Status, to)
	}); err != nil {
		return nil, err
	}

	g.metrics.IncrementTransition(snapshot.Status.String(), to.String())
	updated := *snapshot
	updated.Status = to
	return &Result{Application: &updated}, nil
}
