// Package gateway is the single entry point surrounding every store
// operation. It resolves the acting identity, asks the policy engine to
// authorize the specific (operation, resource) pair, validates lifecycle
// transitions, and only then touches the store. Nothing else in the system
// performs I/O on grant records.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"grantgate/internal/application/lifecycle"
	appmodels "grantgate/internal/application/models"
	appports "grantgate/internal/application/ports"
	"grantgate/internal/gateway/metrics"
	idmodels "grantgate/internal/identity/models"
	idports "grantgate/internal/identity/ports"
	"grantgate/internal/identity/resolver"
	"grantgate/internal/platform/config"
	"grantgate/internal/platform/middleware"
	"grantgate/internal/policy"
	scoremodels "grantgate/internal/scoring/models"
	scoreports "grantgate/internal/scoring/ports"
	"grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
	"grantgate/pkg/platform/audit"
	"grantgate/pkg/platform/circuit"
	"grantgate/pkg/platform/sentinel"
)

// ResourceRef addresses the record an operation targets. Exactly one of the
// id fields is meaningful, selected by Kind.
type ResourceRef struct {
	Kind          domain.ResourceKind
	UserID        domain.UserID
	ApplicationID domain.ApplicationID
	ScoreKey      domain.ScoreKey
}

func UserRef(id domain.UserID) ResourceRef {
	return ResourceRef{Kind: domain.ResourceUser, UserID: id}
}

func ApplicationRef(id domain.ApplicationID) ResourceRef {
	return ResourceRef{Kind: domain.ResourceApplication, ApplicationID: id}
}

func ScoreRef(key domain.ScoreKey) ResourceRef {
	return ResourceRef{Kind: domain.ResourceScore, ScoreKey: key}
}

// Result carries the record an allowed operation produced or read.
type Result struct {
	Application *appmodels.Application
	Score       *scoremodels.Score
	User        *idmodels.User
}

// SubmissionChecklist is the external validation collaborator's verdict on a
// draft's mandatory fields. The gateway only gates the transition; it does
// not re-validate form content.
type SubmissionChecklist struct {
	FieldsComplete bool
}

// StatusOverride is the admin-only correction payload. Every accepted
// override is recorded as an audited exception before the write happens.
type StatusOverride struct {
	To   domain.Status
	Note string
}

// Gateway composes the identity resolver, policy engine and lifecycle
// machine around the stores.
type Gateway struct {
	resolver *resolver.Resolver
	users    idports.UserStore
	apps     appports.ApplicationStore
	scores   scoreports.ScoreStore
	engine   *policy.Engine
	machine  *lifecycle.Machine
	areas    config.AreaSet

	audit   audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
	breaker *circuit.Breaker

	storeTimeout  time.Duration
	retryAttempts int
	retryBackoff  time.Duration
}

type Option func(*Gateway)

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(g *Gateway) {
		g.audit = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func WithStoreTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.storeTimeout = d
	}
}

// WithRetryPolicy bounds the transient-error retry on store writes.
func WithRetryPolicy(attempts int, backoff time.Duration) Option {
	return func(g *Gateway) {
		g.retryAttempts = attempts
		g.retryBackoff = backoff
	}
}

func New(
	res *resolver.Resolver,
	users idports.UserStore,
	apps appports.ApplicationStore,
	scores scoreports.ScoreStore,
	engine *policy.Engine,
	machine *lifecycle.Machine,
	areas config.AreaSet,
	opts ...Option,
) (*Gateway, error) {
	if res == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}
	if users == nil || apps == nil || scores == nil {
		return nil, fmt.Errorf("user, application and score stores are required")
	}
	if engine == nil {
		return nil, fmt.Errorf("policy engine is required")
	}
	if machine == nil {
		return nil, fmt.Errorf("lifecycle machine is required")
	}
	if len(areas) == 0 {
		return nil, fmt.Errorf("area set is required")
	}

	g := &Gateway{
		resolver:      res,
		users:         users,
		apps:          apps,
		scores:        scores,
		engine:        engine,
		machine:       machine,
		areas:         areas,
		tracer:        otel.Tracer("grantgate/gateway"),
		breaker:       circuit.New("store", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		storeTimeout:  5 * time.Second,
		retryAttempts: 3,
		retryBackoff:  50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Perform executes one operation on behalf of an actor. Each call is
// logically independent: identity is resolved fresh (modulo the short-lived
// invalidated cache), authorization happens against the current stored
// snapshot, and the only side effects are the store calls issued here.
func (g *Gateway) Perform(ctx context.Context, actorID domain.UserID, op domain.Operation, ref ResourceRef, payload any) (result *Result, err error) {
	ctx, span := g.tracer.Start(ctx, "gateway.perform", trace.WithAttributes(
		attribute.String("operation", op.String()),
		attribute.String("resource", string(ref.Kind)),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		g.metrics.ObservePerformLatency(string(ref.Kind), op.String(), time.Since(start))
	}()

	actor, err := g.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	switch ref.Kind {
	case domain.ResourceApplication:
		return g.performApplication(ctx, actor, op, ref, payload)
	case domain.ResourceScore:
		return g.performScore(ctx, actor, op, ref, payload)
	case domain.ResourceUser:
		return g.performUser(ctx, actor, op, ref, payload)
	}
	return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown resource kind %q", ref.Kind)
}

// authorize runs the policy engine and converts a denial into a coded error
// with a coarse reason. Which rule matched stays in logs and metrics.
func (g *Gateway) authorize(ctx context.Context, req policy.Request) error {
	decision := g.engine.Authorize(req)
	g.metrics.IncrementDecision(string(req.Kind), req.Operation.String(), decision.Allowed)
	if decision.Allowed {
		return nil
	}

	g.emit(ctx, audit.Event{
		Category:   audit.CategorySecurity,
		ActorID:    req.Actor.ID,
		Action:     audit.ActionAuthorizationDenied,
		Resource:   req.Kind,
		ResourceID: requestResourceID(req),
		Decision:   "deny",
		Reason:     string(decision.Reason),
	})

	if decision.Reason == policy.ReasonNotFound {
		return dErrors.Newf(dErrors.CodeNotFound, "%s not found", req.Kind)
	}
	return dErrors.New(dErrors.CodeForbidden, "operation not permitted")
}

func requestResourceID(req policy.Request) string {
	switch req.Kind {
	case domain.ResourceApplication:
		if req.Application != nil {
			return req.Application.ID.String()
		}
	case domain.ResourceScore:
		return req.ScoreKey.String()
	case domain.ResourceUser:
		return req.TargetUserID.String()
	}
	return ""
}

// read runs a store read under the bounded timeout.
func (g *Gateway) read(ctx context.Context, fn func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, g.storeTimeout)
	defer cancel()
	return translateStore(fn(opCtx))
}

// write runs a store write under the bounded timeout, retrying transient
// failures with exponential backoff. Authorization failures never reach here;
// only unavailability is retried. While the breaker is open the write is
// still attempted once (the probe that can close it again) but never
// retried, so a dead store fails fast instead of burning backoff.
func (g *Gateway) write(ctx context.Context, fn func(context.Context) error) error {
	attempts := g.retryAttempts
	if attempts < 1 || g.breaker.IsOpen() {
		attempts = 1
	}
	backoff := g.retryBackoff
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			g.metrics.IncrementStoreRetry()
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return dErrors.Wrap(ctx.Err(), dErrors.CodeUnavailable, "store unavailable")
			}
			backoff *= 2
		}
		opCtx, cancel := context.WithTimeout(ctx, g.storeTimeout)
		err = translateStore(fn(opCtx))
		cancel()
		if err == nil || !dErrors.IsCode(err, dErrors.CodeUnavailable) {
			g.recordStoreOutcome(ctx, true)
			return err
		}
	}
	g.recordStoreOutcome(ctx, false)
	return err
}

func (g *Gateway) recordStoreOutcome(ctx context.Context, ok bool) {
	if ok {
		if _, change := g.breaker.RecordSuccess(); change.Closed && g.logger != nil {
			g.logger.InfoContext(ctx, "store circuit closed")
		}
		return
	}
	if _, change := g.breaker.RecordFailure(); change.Opened && g.logger != nil {
		g.logger.WarnContext(ctx, "store circuit opened, suspending write retries")
	}
}

// translateStore maps sentinel and timeout errors onto the coded taxonomy.
func translateStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "record not found")
	case errors.Is(err, sentinel.ErrInvalidState), errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "record changed concurrently")
	case errors.Is(err, sentinel.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "store failure")
	}
}

// emit publishes a fail-open audit event. Publisher trouble is logged, never
// surfaced: routine audit must not fail business operations.
func (g *Gateway) emit(ctx context.Context, event audit.Event) {
	if g.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.RequestID = middleware.GetRequestID(ctx)
	if err := g.audit.Emit(ctx, event); err != nil && g.logger != nil {
		g.logger.WarnContext(ctx, "audit emission failed",
			"action", event.Action,
			"actor_id", event.ActorID,
			"error", err,
		)
	}
}

// emitExceptional publishes a fail-closed audit event. The admin override
// depends on this: no exception record, no override.
func (g *Gateway) emitExceptional(ctx context.Context, event audit.Event) error {
	if g.audit == nil {
		return dErrors.New(dErrors.CodeUnavailable, "audit publisher is required for override operations")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.RequestID = middleware.GetRequestID(ctx)
	if err := g.audit.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "override exception could not be recorded")
	}
	return nil
}
