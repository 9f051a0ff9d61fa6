// Package audit captures security-relevant actions as events. Keep the event
// transport-agnostic so stores and sinks can fan out.
package audit

import (
	"context"
	"time"

	"grantgate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. Categories
// map to retention policies and routing, not to severity.
type EventCategory string

const (
	// CategoryCompliance covers events a grant audit must be able to replay:
	// lifecycle transitions, decisions, and every admin override.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authorization denials and oversight changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine access worth sampling for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted by the gateway for every consequential action.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	ActorID   domain.UserID
	Action    Action
	Resource  domain.ResourceKind
	// ResourceID is the addressed record id (application id, user id, or the
	// application/scorer pair for scores).
	ResourceID string
	// Decision is "allow" or "deny" for authorization events, empty otherwise.
	Decision string
	// Reason carries the coarse denial reason or transition detail.
	Reason    string
	RequestID string
}

// Action names what happened.
type Action string

const (
	ActionApplicationCreated   Action = "application_created"
	ActionApplicationUpdated   Action = "application_updated"
	ActionApplicationDeleted   Action = "application_deleted"
	ActionApplicationSubmitted Action = "application_submitted"
	ActionReviewStarted        Action = "review_started"
	ActionApplicationScored    Action = "application_scored"
	ActionApplicationDecided   Action = "application_decided"
	ActionStatusOverridden     Action = "status_overridden"
	ActionScoreRecorded        Action = "score_recorded"
	ActionScoreDeleted         Action = "score_deleted"
	ActionUserCreated          Action = "user_created"
	ActionUserUpdated          Action = "user_updated"
	ActionAuthorizationDenied  Action = "authorization_denied"
)

//go:generate mockgen -source=models.go -destination=mocks/mocks.go -package=mocks Store,Publisher

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actorID domain.UserID) ([]Event, error)
}

// Publisher emits audit events toward a store or broker. Implementations
// choose their failure semantics: the outbox publisher is fail-closed (the
// caller must abort on error), the kafka publisher is fail-open.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}
