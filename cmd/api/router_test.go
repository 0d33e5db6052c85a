package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/taskflow/internal/entity"
	"github.com/xavierca1/taskflow/internal/infra/http/handlers"
	"github.com/xavierca1/taskflow/internal/infra/http/middleware"
	"github.com/xavierca1/taskflow/internal/progression"
	"github.com/xavierca1/taskflow/internal/usecase"
)

type stubRecorder struct{}

func (stubRecorder) Execute(_ context.Context, in usecase.RecordActivityInput) (*usecase.RecordActivityOutput, error) {
	return &usecase.RecordActivityOutput{
		Activity: entity.NewLeadActivity("lead-1", entity.ActivityType(in.Type), in.Action, nil),
		LeadID:   "lead-1",
	}, nil
}

type stubProgress struct{}

func (stubProgress) Execute(_ context.Context, _ string) (*progression.Progress, error) {
	return &progression.Progress{Level: 1}, nil
}

type stubAwarder struct{}

func (stubAwarder) Execute(_ context.Context, in usecase.AwardXPInput) (*usecase.AwardXPOutput, error) {
	return &usecase.AwardXPOutput{Progress: progression.Progress{Level: 1, XP: in.Amount}, PreviousLevel: 1}, nil
}

type stubLeads struct{}

func (stubLeads) Execute(_ context.Context, _ usecase.ListLeadsInput) ([]*entity.Lead, error) {
	return []*entity.Lead{}, nil
}

type stubLeadGetter struct{}

func (stubLeadGetter) Execute(_ context.Context, id string) (*usecase.LeadDetailsOutput, error) {
	return &usecase.LeadDetailsOutput{Lead: &entity.Lead{ID: id}}, nil
}

type stubStatusUpdater struct{}

func (stubStatusUpdater) Execute(_ context.Context, id, status string) (*entity.Lead, error) {
	return &entity.Lead{ID: id, Status: entity.LeadStatus(status)}, nil
}

type denyAll struct{}

func (denyAll) Allow(_ context.Context, _ string) (bool, error) { return false, nil }

func testRouter(t *testing.T, limiter middleware.Limiter) (http.Handler, *middleware.Authenticator) {
	t.Helper()
	return testRouterWithProxy(t, limiter, false)
}

func testRouterWithProxy(t *testing.T, limiter middleware.Limiter, trustProxy bool) (http.Handler, *middleware.Authenticator) {
	t.Helper()
	auth, err := middleware.NewAuthenticator("test-secret", time.Hour)
	require.NoError(t, err)

	if limiter == nil {
		ml := middleware.NewMemoryLimiter(100, time.Minute)
		t.Cleanup(ml.Close)
		limiter = ml
	}

	return newRouter(routerDeps{
		Logger:      zerolog.Nop(),
		CORSOrigins: []string{"*"},
		Auth:        auth,
		Limiter:     limiter,
		TrustProxy:  trustProxy,
		Activities:  handlers.NewActivityHandler(stubRecorder{}),
		Progress:    handlers.NewProgressHandler(stubProgress{}, stubAwarder{}, stubProgress{}),
		Leads:       handlers.NewLeadHandler(stubLeadGetter{}, stubLeads{}, stubStatusUpdater{}),
		Health:      handlers.NewHealthHandler("test", map[string]handlers.Pinger{"database": nil}),
	}), auth
}

func do(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterAuthGates(t *testing.T) {
	router, auth := testRouter(t, nil)

	userToken, err := auth.GenerateToken("user-1", "")
	require.NoError(t, err)
	adminToken, err := auth.GenerateToken("admin-1", middleware.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{"progress sem token", http.MethodGet, "/me/progress", "", "", http.StatusUnauthorized},
		{"progress token inválido", http.MethodGet, "/me/progress", "garbage", "", http.StatusUnauthorized},
		{"progress com token", http.MethodGet, "/me/progress", userToken, "", http.StatusOK},
		{"award com token", http.MethodPost, "/me/xp", userToken, `{"amount":10}`, http.StatusOK},
		{"reset com token", http.MethodPost, "/me/reset", userToken, "", http.StatusOK},
		{"leads sem token", http.MethodGet, "/leads", "", "", http.StatusUnauthorized},
		{"leads como usuário", http.MethodGet, "/leads", userToken, "", http.StatusForbidden},
		{"leads como admin", http.MethodGet, "/leads", adminToken, "", http.StatusOK},
		{"lead por id como admin", http.MethodGet, "/leads/abc", adminToken, "", http.StatusOK},
		{"status como usuário", http.MethodPatch, "/leads/abc/status", userToken, `{"status":"QUALIFIED"}`, http.StatusForbidden},
		{"activities é público", http.MethodPost, "/activities", "", `{"email":"a@b.com","type":"page_view","action":"home"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRouterRateLimitsActivities(t *testing.T) {
	router, _ := testRouter(t, denyAll{})

	rec := do(router, http.MethodPost, "/activities", "", `{"email":"a@b.com","type":"page_view","action":"home"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// health não passa pelo limiter
	rec = do(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestRouterForwardedForOnlyBehindProxy - X-Forwarded-For só vira chave do limiter com TRUST_PROXY
func TestRouterForwardedForOnlyBehindProxy(t *testing.T) {
	send := func(h http.Handler, i int) int {
		req := httptest.NewRequest(http.MethodPost, "/activities",
			strings.NewReader(`{"email":"a@b.com","type":"page_view","action":"home"}`))
		req.RemoteAddr = "192.0.2.10:51234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	direct := middleware.NewMemoryLimiter(1, time.Minute)
	t.Cleanup(direct.Close)
	router, _ := testRouterWithProxy(t, direct, false)
	assert.Equal(t, http.StatusOK, send(router, 1))
	assert.Equal(t, http.StatusTooManyRequests, send(router, 2))

	proxied := middleware.NewMemoryLimiter(1, time.Minute)
	t.Cleanup(proxied.Close)
	router, _ = testRouterWithProxy(t, proxied, true)
	assert.Equal(t, http.StatusOK, send(router, 1))
	assert.Equal(t, http.StatusOK, send(router, 2))
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router, _ := testRouter(t, nil)

	rec := do(router, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "not configured", body.Dependencies["database"])

	rec = do(router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
