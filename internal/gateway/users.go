package gateway

import (
	"context"
	"time"

	idmodels "grantgate/internal/identity/models"
	"grantgate/internal/policy"
	"grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
	"grantgate/pkg/email"
	"grantgate/pkg/platform/audit"
)

func (g *Gateway) performUser(ctx context.Context, actor idmodels.Identity, op domain.Operation, ref ResourceRef, payload any) (*Result, error) {
	var target *idmodels.User
	if op != domain.OpCreate {
		if ref.UserID.IsNil() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "user id is required")
		}
		user, err := g.fetchUser(ctx, ref.UserID)
		if err != nil {
			return nil, err
		}
		target = user
	}

	req := policy.Request{
		Actor:        actor,
		Operation:    op,
		Kind:         domain.ResourceUser,
		User:         target,
		TargetUserID: ref.UserID,
	}
	if op == domain.OpUpdate {
		patch, ok := payload.(*idmodels.UserPatch)
		if !ok || patch == nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "user patch is required")
		}
		req.UserPatch = patch
	}

	if err := g.authorize(ctx, req); err != nil {
		return nil, err
	}

	switch op {
	case domain.OpRead:
		return &Result{User: target}, nil

	case domain.OpCreate:
		return g.createUser(ctx, actor, payload)

	case domain.OpUpdate:
		return g.updateUser(ctx, actor, target, req.UserPatch)
	}
	return nil, dErrors.Newf(dErrors.CodeBadRequest, "operation %q does not apply to users", op)
}

func (g *Gateway) fetchUser(ctx context.Context, id domain.UserID) (*idmodels.User, error) {
	var user idmodels.User
	err := g.read(ctx, func(c context.Context) error {
		var ferr error
		user, ferr = g.users.FindByID(c, id)
		return ferr
	})
	if err != nil {
		if dErrors.IsCode(err, dErrors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (g *Gateway) createUser(ctx context.Context, actor idmodels.Identity, payload any) (*Result, error) {
	account, ok := payload.(*idmodels.User)
	if !ok || account == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user record is required")
	}
	if account.ID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}
	if err := g.validateRoleArea(account.Role, account.Area); err != nil {
		return nil, err
	}

	user := *account
	if user.Name == "" && user.Email != "" {
		user.Name = email.DeriveDisplayName(user.Email)
	}
	user.Active = true
	user.CreatedAt = time.Now()

	if err := g.write(ctx, func(c context.Context) error {
		return g.users.Save(c, user)
	}); err != nil {
		return nil, err
	}
	g.resolver.Invalidate(ctx, user.ID)

	g.emit(ctx, audit.Event{
		Category:   audit.CategoryCompliance,
		ActorID:    actor.ID,
		Action:     audit.ActionUserCreated,
		Resource:   domain.ResourceUser,
		ResourceID: user.ID.String(),
		Decision:   "allow",
	})
	return &Result{User: &user}, nil
}

func (g *Gateway) updateUser(ctx context.Context, actor idmodels.Identity, target *idmodels.User, patch *idmodels.UserPatch) (*Result, error) {
	updated := *target
	patch.Apply(&updated)
	if err := g.validateRoleArea(updated.Role, updated.Area); err != nil {
		return nil, err
	}

	if err := g.write(ctx, func(c context.Context) error {
		return g.users.Save(c, updated)
	}); err != nil {
		return nil, err
	}
	// Every user write drops the cached identity so the next authorization
	// decision sees the updated role and area.
	g.resolver.Invalidate(ctx, updated.ID)

	category := audit.CategoryOperations
	if patch.HasOversight() {
		category = audit.CategorySecurity
	}
	g.emit(ctx, audit.Event{
		Category:   category,
		ActorID:    actor.ID,
		Action:     audit.ActionUserUpdated,
		Resource:   domain.ResourceUser,
		ResourceID: updated.ID.String(),
		Decision:   "allow",
	})
	return &Result{User: &updated}, nil
}

// validateRoleArea enforces the role/area pairing: committee members carry
// exactly one configured ward area, nobody else carries one.
func (g *Gateway) validateRoleArea(role domain.Role, area domain.Area) error {
	if _, err := domain.ParseRole(role.String()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid role")
	}
	if role == domain.RoleCommittee {
		if !g.areas.Contains(area) {
			return dErrors.Newf(dErrors.CodeBadRequest, "unknown area %q", area)
		}
		return nil
	}
	if !area.IsNil() {
		return dErrors.Newf(dErrors.CodeBadRequest, "area applies only to committee members")
	}
	return nil
}
