package gateway

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	appmodels "grantgate/internal/application/models"
	idmodels "grantgate/internal/identity/models"
	"grantgate/internal/policy"
	scoremodels "grantgate/internal/scoring/models"
	"grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
	"grantgate/pkg/platform/audit"
)

func (g *Gateway) performScore(ctx context.Context, actor idmodels.Identity, op domain.Operation, ref ResourceRef, payload any) (*Result, error) {
	key := ref.ScoreKey
	if key.ApplicationID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "score key requires an application id")
	}
	// A write addressed without a scorer id targets the actor's own sheet.
	// An explicit foreign scorer id survives to the policy check, which
	// denies it.
	if key.ScorerID.IsNil() {
		key.ScorerID = actor.ID
	}

	parent, existing, err := g.fetchScoreContext(ctx, key)
	if err != nil {
		return nil, err
	}

	// Score writes are upserts: the caller does not need to know whether a
	// sheet exists yet, so create and update normalize on the stored state.
	if op == domain.OpCreate || op == domain.OpUpdate {
		if existing == nil {
			op = domain.OpCreate
		} else {
			op = domain.OpUpdate
		}
	}

	req := policy.Request{
		Actor:       actor,
		Operation:   op,
		Kind:        domain.ResourceScore,
		Score:       existing,
		ScoreParent: parent,
		ScoreKey:    key,
	}
	if err := g.authorize(ctx, req); err != nil {
		return nil, err
	}

	switch op {
	case domain.OpRead:
		return &Result{Score: existing}, nil

	case domain.OpCreate, domain.OpUpdate:
		return g.upsertScore(ctx, actor, parent, key, payload)

	case domain.OpDelete:
		if err := g.write(ctx, func(c context.Context) error {
			return g.scores.Delete(c, key)
		}); err != nil {
			return nil, err
		}
		g.emit(ctx, audit.Event{
			Category:   audit.CategoryOperations,
			ActorID:    actor.ID,
			Action:     audit.ActionScoreDeleted,
			Resource:   domain.ResourceScore,
			ResourceID: key.String(),
			Decision:   "allow",
		})
		return &Result{}, nil
	}
	return nil, dErrors.Newf(dErrors.CodeBadRequest, "operation %q does not apply to scores", op)
}

// fetchScoreContext gathers the parent application and the existing score in
// parallel. Either may be absent; the policy chain's existence rule decides
// what that means for the operation.
func (g *Gateway) fetchScoreContext(ctx context.Context, key domain.ScoreKey) (*appmodels.Application, *scoremodels.Score, error) {
	var (
		parent   *appmodels.Application
		existing *scoremodels.Score
	)

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		app, err := g.fetchApplication(grpCtx, key.ApplicationID)
		if err != nil {
			return err
		}
		parent = app
		return nil
	})
	grp.Go(func() error {
		var score scoremodels.Score
		err := g.read(grpCtx, func(c context.Context) error {
			var ferr error
			score, ferr = g.scores.Find(c, key)
			return ferr
		})
		if err != nil {
			if dErrors.IsCode(err, dErrors.CodeNotFound) {
				return nil
			}
			return err
		}
		existing = &score
		return nil
	})
	if err := grp.Wait(); err != nil {
		return nil, nil, err
	}
	return parent, existing, nil
}

func (g *Gateway) upsertScore(ctx context.Context, actor idmodels.Identity, parent *appmodels.Application, key domain.ScoreKey, payload any) (*Result, error) {
	sheet, ok := payload.(*scoremodels.Sheet)
	if !ok || sheet == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "score sheet is required")
	}

	score := scoremodels.Score{
		ApplicationID: key.ApplicationID,
		ScorerID:      actor.ID,
		Criteria:      sheet.Criteria,
		Final:         sheet.Final,
		UpdatedAt:     time.Now(),
	}
	if err := score.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid score")
	}

	if err := g.write(ctx, func(c context.Context) error {
		return g.scores.Upsert(c, score)
	}); err != nil {
		return nil, err
	}

	g.emit(ctx, audit.Event{
		Category:   audit.CategoryCompliance,
		ActorID:    actor.ID,
		Action:     audit.ActionScoreRecorded,
		Resource:   domain.ResourceScore,
		ResourceID: score.Key().String(),
		Decision:   "allow",
	})

	if score.Final {
		if _, err := g.maybeMarkScored(ctx, actor, parent); err != nil {
			return nil, err
		}
	}
	return &Result{Score: &score}, nil
}

// maybeMarkScored moves the application to scored once every assigned scorer
// has a final sheet. It runs after every final score write and after review
// opens, since the panel can finish its sheets while the application is still
// submitted. The status compare-and-set is the commit point: when two
// finalizing writes race, both may observe the full set, but only one CAS
// succeeds and the loser treats the failed precondition as already done.
func (g *Gateway) maybeMarkScored(ctx context.Context, actor idmodels.Identity, parent *appmodels.Application) (bool, error) {
	if parent.Status != domain.StatusUnderReview || len(parent.AssignedScorers) == 0 {
		return false, nil
	}

	var scores []scoremodels.Score
	if err := g.read(ctx, func(c context.Context) error {
		var ferr error
		scores, ferr = g.scores.ListByApplication(c, parent.ID)
		return ferr
	}); err != nil {
		return false, err
	}

	final := make(map[domain.UserID]bool, len(scores))
	for _, s := range scores {
		if s.Final {
			final[s.ScorerID] = true
		}
	}
	for _, scorer := range parent.AssignedScorers {
		if !final[scorer] {
			return false, nil
		}
	}

	err := g.write(ctx, func(c context.Context) error {
		return g.apps.CompareAndSetStatus(c, parent.ID, domain.StatusUnderReview, domain.StatusScored)
	})
	if err != nil {
		if dErrors.IsCode(err, dErrors.CodeConflict) {
			return false, nil
		}
		return false, err
	}

	g.metrics.IncrementTransition(domain.StatusUnderReview.String(), domain.StatusScored.String())
	g.emit(ctx, audit.Event{
		Category:   audit.CategoryCompliance,
		ActorID:    actor.ID,
		Action:     audit.ActionApplicationScored,
		Resource:   domain.ResourceApplication,
		ResourceID: parent.ID.String(),
		Decision:   "allow",
		Reason:     "all assigned scorers final",
	})
	return true, nil
}
