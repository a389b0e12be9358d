package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Boluski2/lendsqr-admin/internal/auth"
	"github.com/Boluski2/lendsqr-admin/internal/cache"
	"github.com/Boluski2/lendsqr-admin/internal/config"
	"github.com/Boluski2/lendsqr-admin/internal/dashboard"
	"github.com/Boluski2/lendsqr-admin/internal/domain"
	"github.com/Boluski2/lendsqr-admin/internal/events"
	"github.com/Boluski2/lendsqr-admin/internal/kv"
	"github.com/Boluski2/lendsqr-admin/internal/metrics"
	"github.com/Boluski2/lendsqr-admin/internal/repository"
	"github.com/Boluski2/lendsqr-admin/internal/service"
)

type testEnv struct {
	handler  http.Handler
	store    *kv.MemoryStore
	cache    *cache.LocalCache
	events   *events.Recorder
	auth     *auth.Service
	metrics  *metrics.Metrics
	loadErr  error
	failLoad bool
}

func fixtureUsers(n int) []domain.User {
	orgs := []string{"Lendsqr", "Irorun", "Lendstar"}
	users := make([]domain.User, n)
	for i := range users {
		users[i] = domain.User{
			ID:           fmt.Sprintf("LSQFf587g%02d", i+1),
			Organization: orgs[i%len(orgs)],
			Username:     fmt.Sprintf("user%d", i+1),
			Email:        fmt.Sprintf("user%d@lendsqr.com", i+1),
			PhoneNumber:  fmt.Sprintf("0803%07d", i+1),
			DateJoined:   "May 15, 2020, 10:00 AM",
			Status:       domain.Statuses[i%len(domain.Statuses)],
			Tier:         1 + i%3,
		}
	}
	return users
}

func newTestEnv(t *testing.T, authRequired bool) *testEnv {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	env := &testEnv{
		store:   kv.NewMemory(),
		events:  events.NewRecorder(),
		metrics: metrics.New(),
	}

	users := fixtureUsers(60)
	repo := repository.New(func(context.Context) ([]domain.User, error) {
		if env.failLoad {
			return nil, env.loadErr
		}
		return users, nil
	})
	query := service.NewQueryService(repo, service.Latency{})
	env.cache = cache.New(env.store, logger)
	resolver := service.NewResolver(env.cache, query, env.metrics, logger)
	mutation := service.NewMutationService(query, env.cache, env.events, env.metrics, logger)
	env.auth = auth.New(env.store, config.AuthConfig{TokenSecret: "test-secret"}, logger)

	dash, err := dashboard.New(query, 16, logger)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	api := NewAPIHandlers(logger, query, resolver, mutation)
	dashHandlers := NewDashboardHandlers(logger, dash)
	api.OnStatusChange(dashHandlers.StatusChanged)

	env.handler = NewRouter(logger, RouterDependencies{
		Health:           StorageHealthService{Store: env.store},
		API:              api,
		Dashboard:        dashHandlers,
		Auth:             NewAuthHandlers(logger, env.auth),
		Tokens:           env.auth,
		AuthRequired:     authRequired,
		Metrics:          env.metrics,
		MetricsEnabled:   true,
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

type listBody struct {
	Items      []domain.User         `json:"items"`
	Visible    int                   `json:"visible"`
	Total      int                   `json:"total"`
	Pagination domain.PaginationMeta `json:"pagination"`
	Labels     []any                 `json:"labels"`
	HasPrev    bool                  `json:"hasPrev"`
	HasNext    bool                  `json:"hasNext"`
}

type detailBody struct {
	User domain.User        `json:"user"`
	Tabs []domain.DetailTab `json:"tabs"`
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, true)
	rec := env.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}

	rec = env.do(t, http.MethodGet, "/healthz", "", requestIDHeader, "req-1")
	if rec.Header().Get(requestIDHeader) != "req-1" {
		t.Fatal("expected the caller's request id to be echoed")
	}
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/users", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode[listBody](t, rec)
	if len(body.Items) != 10 || body.Total != 60 || body.Pagination.TotalPages != 6 {
		t.Fatalf("unexpected default page: items=%d total=%d pages=%d", len(body.Items), body.Total, body.Pagination.TotalPages)
	}
	if body.HasPrev || !body.HasNext {
		t.Fatal("first page should only allow next")
	}

	rec = env.do(t, http.MethodGet, "/users?organization=Lendsqr&pageSize=25&page=1", "")
	body = decode[listBody](t, rec)
	if body.Visible != 20 || len(body.Items) != 20 {
		t.Fatalf("expected 20 Lendsqr users, got visible=%d items=%d", body.Visible, len(body.Items))
	}
	for _, u := range body.Items {
		if u.Organization != "Lendsqr" {
			t.Fatalf("unexpected organization %s", u.Organization)
		}
	}

	rec = env.do(t, http.MethodGet, "/users?status=Active&page=9", "")
	body = decode[listBody](t, rec)
	if len(body.Items) != 0 || body.Visible != 15 {
		t.Fatalf("expected empty out of range page, got %d items of %d", len(body.Items), body.Visible)
	}

	rec = env.do(t, http.MethodGet, "/users?pageSize=7", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid page size, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/users", "{}")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestStatsAndOrganizations(t *testing.T) {
	env := newTestEnv(t, false)

	stats := decode[domain.UsersStats](t, env.do(t, http.MethodGet, "/users/stats", ""))
	if stats.TotalUsers != 60 || stats.ActiveUsers != 15 || stats.UsersWithLoans != 15 || stats.UsersWithSavings != 24 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	orgs := decode[map[string][]string](t, env.do(t, http.MethodGet, "/users/organizations", ""))
	if strings.Join(orgs["organizations"], ",") != "Lendsqr,Irorun,Lendstar" {
		t.Fatalf("unexpected organizations %v", orgs)
	}
}

func TestUserDetail(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/users/LSQFf587g07", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode[detailBody](t, rec)
	if body.User.ID != "LSQFf587g07" || len(body.Tabs) != len(domain.DetailTabs) {
		t.Fatalf("unexpected detail %+v", body)
	}
	if _, ok := env.cache.Get(context.Background(), "LSQFf587g07"); !ok {
		t.Fatal("detail view should populate the cache")
	}

	rec = env.do(t, http.MethodGet, "/users/LSQFf587g99", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if decode[map[string]string](t, rec)["error"] != "User not found" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestStatusMutations(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, "/users/LSQFf587g01/blacklist", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[detailBody](t, rec).User.Status; got != domain.StatusBlacklisted {
		t.Fatalf("unexpected status %s", got)
	}
	if got := decode[detailBody](t, env.do(t, http.MethodGet, "/users/LSQFf587g01", "")).User.Status; got != domain.StatusBlacklisted {
		t.Fatalf("detail should reflect mutation, got %s", got)
	}
	if got := decode[listBody](t, env.do(t, http.MethodGet, "/users?username=user1&pageSize=100", "")).Items[0].Status; got != domain.StatusBlacklisted {
		t.Fatalf("list should reflect mutation, got %s", got)
	}

	rec = env.do(t, http.MethodPost, "/users/LSQFf587g01/activate", "")
	if got := decode[detailBody](t, rec).User.Status; got != domain.StatusActive {
		t.Fatalf("unexpected status after activate %s", got)
	}

	rec = env.do(t, http.MethodPatch, "/users/LSQFf587g02/status", `{"status":"Pending"}`)
	if got := decode[detailBody](t, rec).User.Status; got != domain.StatusPending {
		t.Fatalf("unexpected status after patch %s", got)
	}
	if len(env.events.Events()) != 3 {
		t.Fatalf("expected 3 published events, got %d", len(env.events.Events()))
	}

	if rec := env.do(t, http.MethodPatch, "/users/LSQFf587g02/status", `{"status":"Suspended"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid status, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPatch, "/users/LSQFf587g02/status", `{"state":"Active"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/users/LSQFf587g99/blacklist", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", rec.Code)
	}
	if _, ok := env.cache.Get(context.Background(), "LSQFf587g99"); ok {
		t.Fatal("failed mutation must not create a cache entry")
	}
	if rec := env.do(t, http.MethodGet, "/users/LSQFf587g01/blacklist", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/users/LSQFf587g01/suspend", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown action, got %d", rec.Code)
	}
}

func TestLoadFailureIsRetryable(t *testing.T) {
	env := newTestEnv(t, false)
	env.failLoad = true
	env.loadErr = errors.New("upstream timeout")

	for _, path := range []string{"/users", "/users/stats", "/dashboard/users"} {
		rec := env.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503, got %d", path, rec.Code)
		}
		body := decode[map[string]any](t, rec)
		if body["error"] != dashboard.LoadFailureMessage || body["retryable"] != true {
			t.Fatalf("%s: unexpected body %v", path, body)
		}
	}

	env.failLoad = false
	if rec := env.do(t, http.MethodGet, "/users", ""); rec.Code != http.StatusOK {
		t.Fatalf("retry should succeed, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/dashboard/users", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected dashboard retry to succeed, got %d", rec.Code)
	}
	rec := env.do(t, http.MethodPost, "/dashboard/users/refresh", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected refresh to succeed, got %d", rec.Code)
	}
	if page := decode[dashboardBody](t, rec); page.Stats.TotalUsers != 60 {
		t.Fatalf("unexpected refreshed stats %+v", page.Stats)
	}
	if rec := env.do(t, http.MethodGet, "/dashboard/users/refresh", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestDashboardSeesStatusChange(t *testing.T) {
	env := newTestEnv(t, false)
	session := []string{sessionHeader, "tab-1"}

	env.do(t, http.MethodPut, "/dashboard/users/filters", `{"status":"Blacklisted"}`, session...)
	page := decode[dashboardBody](t, env.do(t, http.MethodPost, "/dashboard/users/filters/apply", "", session...))
	if page.Visible != 15 || page.Stats.ActiveUsers != 15 {
		t.Fatalf("unexpected initial page visible=%d active=%d", page.Visible, page.Stats.ActiveUsers)
	}

	if rec := env.do(t, http.MethodPost, "/users/LSQFf587g01/blacklist", ""); rec.Code != http.StatusOK {
		t.Fatalf("blacklist: expected 200, got %d", rec.Code)
	}

	page = decode[dashboardBody](t, env.do(t, http.MethodGet, "/dashboard/users", "", session...))
	if page.Visible != 16 || page.Stats.ActiveUsers != 14 {
		t.Fatalf("expected the dashboard to reflect the change, visible=%d active=%d", page.Visible, page.Stats.ActiveUsers)
	}
}

func TestAuthGuard(t *testing.T) {
	env := newTestEnv(t, true)

	if rec := env.do(t, http.MethodGet, "/users", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/users", "", "Authorization", "Bearer forged"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", rec.Code)
	}

	if rec := env.do(t, http.MethodPost, "/auth/login", `{"email":"admin@lendsqr.com","password":""}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/auth/login", `{"email":"admin@lendsqr.com","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from login, got %d: %s", rec.Code, rec.Body.String())
	}
	session := decode[auth.Session](t, rec)
	bearer := "Bearer " + session.Token

	if rec := env.do(t, http.MethodGet, "/users", "", "Authorization", bearer); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
	if got := decode[map[string]bool](t, env.do(t, http.MethodGet, "/auth/session", ""))["authenticated"]; !got {
		t.Fatal("expected authenticated flag after login")
	}

	if rec := env.do(t, http.MethodPost, "/auth/logout", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from logout, got %d", rec.Code)
	}
	if got := decode[map[string]bool](t, env.do(t, http.MethodGet, "/auth/session", ""))["authenticated"]; got {
		t.Fatal("expected flag cleared after logout")
	}
}

func TestDashboardFlow(t *testing.T) {
	env := newTestEnv(t, false)
	session := []string{sessionHeader, "tab-1"}

	rec := env.do(t, http.MethodGet, "/dashboard/users", "", session...)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	page := decode[dashboardBody](t, rec)
	if page.Stats.TotalUsers != 60 || page.Visible != 60 || len(page.Items) != 10 {
		t.Fatalf("unexpected initial page %+v", page.Pagination)
	}

	page = decode[dashboardBody](t, env.do(t, http.MethodPut, "/dashboard/users/filters", `{"status":"Pending"}`, session...))
	if page.Visible != 60 || page.State.Draft.Status != "Pending" {
		t.Fatal("draft criteria must not filter until applied")
	}

	page = decode[dashboardBody](t, env.do(t, http.MethodPost, "/dashboard/users/filters/apply", "", session...))
	if page.Visible != 15 || page.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected applied page visible=%d pages=%d", page.Visible, page.Pagination.TotalPages)
	}

	page = decode[dashboardBody](t, env.do(t, http.MethodPut, "/dashboard/users/page", `{"direction":"next"}`, session...))
	if page.State.Page != 2 || len(page.Items) != 5 || page.HasNext {
		t.Fatalf("unexpected second page %+v", page.State)
	}
	page = decode[dashboardBody](t, env.do(t, http.MethodPut, "/dashboard/users/page", `{"direction":"next"}`, session...))
	if page.State.Page != 2 {
		t.Fatalf("next on the last page must stay put, got %d", page.State.Page)
	}

	other := decode[dashboardBody](t, env.do(t, http.MethodGet, "/dashboard/users", "", sessionHeader, "tab-2"))
	if other.Visible != 60 {
		t.Fatal("sessions must not share view state")
	}

	page = decode[dashboardBody](t, env.do(t, http.MethodPut, "/dashboard/users/page-size", `{"pageSize":25}`, session...))
	if page.State.Page != 1 || page.State.PageSize != 25 {
		t.Fatalf("page size change should reset page, got %+v", page.State)
	}
	if rec := env.do(t, http.MethodPut, "/dashboard/users/page-size", `{"pageSize":30}`, session...); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid page size, got %d", rec.Code)
	}

	page = decode[dashboardBody](t, env.do(t, http.MethodPost, "/dashboard/users/filters/reset", "", session...))
	if page.Visible != 60 || !page.State.Applied.IsZero() || !page.State.Draft.IsZero() {
		t.Fatal("reset should clear both filter layers")
	}

	if rec := env.do(t, http.MethodGet, "/dashboard/users/filters/apply", "", session...); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

type dashboardBody struct {
	listBody
	Stats domain.UsersStats `json:"stats"`
	State struct {
		Draft    domain.FilterCriteria `json:"draft"`
		Applied  domain.FilterCriteria `json:"applied"`
		Page     int                   `json:"page"`
		PageSize int                   `json:"pageSize"`
	} `json:"state"`
}

func TestMetricsAndCORS(t *testing.T) {
	env := newTestEnv(t, false)
	env.do(t, http.MethodGet, "/users/LSQFf587g03", "")

	rec := env.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `route="/users/{id}"`) {
		t.Fatalf("expected collapsed route label in metrics:\n%s", rec.Body.String())
	}

	rec = env.do(t, http.MethodOptions, "/users", "", "Origin", "http://localhost:3000")
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("unexpected preflight response %d %v", rec.Code, rec.Header())
	}
	rec = env.do(t, http.MethodOptions, "/users", "", "Origin", "http://evil.test")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown origin, got %d", rec.Code)
	}
}

func TestCORSWildcardWithoutCredentials(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := corsMiddleware([]string{"*", "http://localhost:3000"}, true)(next)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("wildcard origin must not be granted credentials, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" || rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("listed origin should keep credentials, got %v", rec.Header())
	}
}

func TestRouteLabel(t *testing.T) {
	cases := map[string]string{
		"/users":                     "/users",
		"/users/stats":               "/users/stats",
		"/users/LSQFf587g01":         "/users/{id}",
		"/users/LSQFf587g01/status":  "/users/{id}/status",
		"/dashboard/users/page-size": "/dashboard/users/page-size",
	}
	for in, want := range cases {
		if got := routeLabel(in); got != want {
			t.Errorf("routeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
