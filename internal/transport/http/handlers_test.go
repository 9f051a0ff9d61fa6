package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantgate/internal/application/lifecycle"
	appstore "grantgate/internal/application/store"
	"grantgate/internal/gateway"
	idmodels "grantgate/internal/identity/models"
	"grantgate/internal/identity/resolver"
	userstore "grantgate/internal/identity/store/user"
	jwttoken "grantgate/internal/jwt_token"
	"grantgate/internal/platform/config"
	"grantgate/internal/policy"
	scorestore "grantgate/internal/scoring/store"
	"grantgate/pkg/domain"
	"grantgate/pkg/platform/audit/publishers/outbox"
	auditmemory "grantgate/pkg/platform/audit/store/memory"
	"grantgate/pkg/testutil"
)

type env struct {
	router http.Handler
	tokens *jwttoken.JWTService
	users  *userstore.InMemoryStore
}

func newEnv(t *testing.T) *env {
	t.Helper()

	users := userstore.NewInMemory()
	apps := appstore.NewInMemory()
	scores := scorestore.NewInMemory()

	res, err := resolver.New(users)
	require.NoError(t, err)
	engine, err := policy.NewEngine(policy.DefaultOrdering())
	require.NoError(t, err)
	machine, err := lifecycle.New(lifecycle.DefaultRules())
	require.NoError(t, err)

	gw, err := gateway.New(res, users, apps, scores, engine, machine,
		config.AreaSet{"north": {}, "south": {}},
		gateway.WithAuditPublisher(outbox.New(auditmemory.New())),
	)
	require.NoError(t, err)

	tokens := jwttoken.NewJWTService("test-signing-key", "grantgate", "grantgate-api")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(gw, jwttoken.NewJWTServiceAdapter(tokens), logger)

	e := &env{router: NewRouter(handler), tokens: tokens, users: users}
	e.seedUser(t, "admin-1", domain.RoleAdmin, "")
	e.seedUser(t, "applicant-1", domain.RoleApplicant, "")
	e.seedUser(t, "committee-n1", domain.RoleCommittee, "north")
	e.seedUser(t, "committee-n2", domain.RoleCommittee, "north")
	return e
}

func (e *env) seedUser(t *testing.T, id domain.UserID, role domain.Role, area domain.Area) {
	t.Helper()
	require.NoError(t, e.users.Save(context.Background(), idmodels.User{
		ID: id, Role: role, Area: area, Active: true,
	}))
}

// do issues an authenticated request as the given actor.
func (e *env) do(t *testing.T, actor domain.UserID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = testutil.NewJSONRequest(t, method, path, body)
	} else {
		req = testutil.NewRequest(t, method, path)
	}
	token, err := e.tokens.GenerateAccessToken(actor, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return testutil.DoRequest(e.router, req)
}

func TestRouter_OpenEndpoints(t *testing.T) {
	e := newEnv(t)

	t.Run("healthz needs no token", func(t *testing.T) {
		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("metrics needs no token", func(t *testing.T) {
		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatus(t, rr, http.StatusOK)
	})
}

func TestRouter_Auth(t *testing.T) {
	e := newEnv(t)

	t.Run("missing token is unauthorized", func(t *testing.T) {
		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/applications/app-1"))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("expired token is unauthorized", func(t *testing.T) {
		token, err := e.tokens.GenerateAccessToken("applicant-1", -time.Hour)
		require.NoError(t, err)
		req := testutil.NewRequest(t, http.MethodGet, "/applications/app-1")
		req.Header.Set("Authorization", "Bearer "+token)
		testutil.AssertStatus(t, testutil.DoRequest(e.router, req), http.StatusUnauthorized)
	})

	t.Run("non-JSON body is rejected", func(t *testing.T) {
		token, err := e.tokens.GenerateAccessToken("applicant-1", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader("title=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+token)
		testutil.AssertStatus(t, testutil.DoRequest(e.router, req), http.StatusUnsupportedMediaType)
	})
}

func TestRouter_FullGrantFlow(t *testing.T) {
	e := newEnv(t)
	var appID string

	testutil.Given(t, "an applicant with a draft", func(t *testing.T) {
		rr := e.do(t, "applicant-1", http.MethodPost, "/applications", map[string]any{
			"area":            "north",
			"title":           "Community garden",
			"summary":         "Raised beds for the estate.",
			"funds_requested": 250000,
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)
		body := testutil.UnmarshalResponse[applicationResponse](t, rr)
		assert.Equal(t, "draft", body.Status)
		assert.Equal(t, "applicant-1", body.OwnerID)
		appID = body.ID
	})

	testutil.When(t, "the applicant submits with the checklist complete", func(t *testing.T) {
		rr := e.do(t, "applicant-1", http.MethodPost, "/applications/"+appID+"/submit",
			map[string]any{"fields_complete": false})
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")

		rr = e.do(t, "applicant-1", http.MethodPost, "/applications/"+appID+"/submit",
			map[string]any{"fields_complete": true})
		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalResponse[applicationResponse](t, rr)
		assert.Equal(t, "submitted", body.Status)
		assert.NotNil(t, body.SubmittedAt)
	})

	testutil.When(t, "the admin opens the review with a scoring panel", func(t *testing.T) {
		rr := e.do(t, "admin-1", http.MethodPatch, "/applications/"+appID,
			map[string]any{"assigned_scorers": []string{"committee-n1", "committee-n2"}})
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = e.do(t, "admin-1", http.MethodPost, "/applications/"+appID+"/start-review", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalResponse[applicationResponse](t, rr)
		assert.Equal(t, "under_review", body.Status)
	})

	testutil.When(t, "both panel members file final sheets", func(t *testing.T) {
		sheet := map[string]any{
			"criteria": []map[string]any{{"criterion_id": "impact", "points": 8}},
			"final":    true,
		}
		rr := e.do(t, "committee-n1", http.MethodPut, "/applications/"+appID+"/score", sheet)
		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalResponse[scoreResponse](t, rr)
		assert.Equal(t, "committee-n1", body.ScorerID)
		assert.Equal(t, 8, body.Total)

		rr = e.do(t, "committee-n2", http.MethodPut, "/applications/"+appID+"/score", sheet)
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	testutil.Then(t, "the application is scored and the admin decides", func(t *testing.T) {
		rr := e.do(t, "admin-1", http.MethodGet, "/applications/"+appID, nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalResponse[applicationResponse](t, rr)
		assert.Equal(t, "scored", body.Status)

		rr = e.do(t, "admin-1", http.MethodPost, "/applications/"+appID+"/decide", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		body = testutil.UnmarshalResponse[applicationResponse](t, rr)
		assert.Equal(t, "decided", body.Status)
	})
}

func TestRouter_ErrorEnvelopes(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, "applicant-1", http.MethodPost, "/applications", map[string]any{
		"area": "north", "title": "Garden",
	})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	app := testutil.UnmarshalResponse[applicationResponse](t, rr)

	t.Run("missing record is 404", func(t *testing.T) {
		rr := e.do(t, "admin-1", http.MethodGet, "/applications/no-such-app", nil)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("denied access is 403", func(t *testing.T) {
		rr := e.do(t, "committee-n1", http.MethodDelete, "/applications/"+app.ID, nil)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("illegal transition is 409", func(t *testing.T) {
		rr := e.do(t, "admin-1", http.MethodPost, "/applications/"+app.ID+"/decide", nil)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "illegal_transition")
	})

	t.Run("malformed JSON body is 400", func(t *testing.T) {
		token, err := e.tokens.GenerateAccessToken("applicant-1", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("unknown area is 400 with a description", func(t *testing.T) {
		rr := e.do(t, "applicant-1", http.MethodPost, "/applications", map[string]any{
			"area": "atlantis", "title": "Garden",
		})
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
		envelope := testutil.UnmarshalErrorResponse(t, rr)
		assert.Contains(t, envelope["error_description"], "atlantis")
	})
}

func TestRouter_ScoreEndpoints(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, "applicant-1", http.MethodPost, "/applications", map[string]any{
		"area": "north", "title": "Garden",
	})
	app := testutil.UnmarshalResponse[applicationResponse](t, rr)
	rr = e.do(t, "applicant-1", http.MethodPost, "/applications/"+app.ID+"/submit",
		map[string]any{"fields_complete": true})
	testutil.AssertStatus(t, rr, http.StatusOK)

	sheet := map[string]any{
		"criteria": []map[string]any{{"criterion_id": "impact", "points": 7, "notes": "solid plan"}},
	}

	t.Run("PUT records the caller's own sheet", func(t *testing.T) {
		rr := e.do(t, "committee-n1", http.MethodPut, "/applications/"+app.ID+"/score", sheet)
		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalResponse[scoreResponse](t, rr)
		assert.Equal(t, "committee-n1", body.ScorerID)
		assert.False(t, body.Final)
	})

	t.Run("scorer reads own sheet by path", func(t *testing.T) {
		rr := e.do(t, "committee-n1", http.MethodGet, "/applications/"+app.ID+"/scores/committee-n1", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("colleague's sheet is forbidden", func(t *testing.T) {
		rr := e.do(t, "committee-n2", http.MethodGet, "/applications/"+app.ID+"/scores/committee-n1", nil)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("DELETE removes the caller's sheet", func(t *testing.T) {
		rr := e.do(t, "committee-n1", http.MethodDelete, "/applications/"+app.ID+"/score", nil)
		testutil.AssertStatus(t, rr, http.StatusNoContent)

		rr = e.do(t, "committee-n1", http.MethodGet, "/applications/"+app.ID+"/scores/committee-n1", nil)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func TestRouter_UserEndpoints(t *testing.T) {
	e := newEnv(t)

	t.Run("admin provisions an account", func(t *testing.T) {
		rr := e.do(t, "admin-1", http.MethodPost, "/users", map[string]any{
			"id":    "committee-new",
			"email": "gareth.price@example.org",
			"role":  "committee",
			"area":  "south",
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)
		body := testutil.UnmarshalResponse[userResponse](t, rr)
		assert.Equal(t, "Gareth Price", body.Name)
		assert.True(t, body.Active)
	})

	t.Run("user reads and edits own profile", func(t *testing.T) {
		rr := e.do(t, "applicant-1", http.MethodGet, "/users/applicant-1", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = e.do(t, "applicant-1", http.MethodPatch, "/users/applicant-1",
			map[string]any{"bio": "Long-time volunteer."})
		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalResponse[userResponse](t, rr)
		assert.Equal(t, "Long-time volunteer.", body.Bio)
	})

	t.Run("self role escalation is forbidden", func(t *testing.T) {
		rr := e.do(t, "applicant-1", http.MethodPatch, "/users/applicant-1",
			map[string]any{"role": "admin"})
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("reading a colleague's record is forbidden", func(t *testing.T) {
		rr := e.do(t, "applicant-1", http.MethodGet, "/users/admin-1", nil)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})
}
