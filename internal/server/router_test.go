package server

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

	"github.com/fintrack/fintrack/internal/auth"
	"github.com/fintrack/fintrack/internal/cache"
	"github.com/fintrack/fintrack/internal/handler"
	"github.com/fintrack/fintrack/internal/handler/dto"
	"github.com/fintrack/fintrack/internal/metrics"
	"github.com/fintrack/fintrack/internal/middleware"
	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/service"
	"github.com/fintrack/fintrack/internal/testutil"
)

type denyLimiter struct{ calls int }

func (d *denyLimiter) CheckLoginRateLimit(ctx context.Context, ip string, rps float64, burst int) (*cache.RateLimitResult, error) {
	d.calls++
	return &cache.RateLimitResult{Allowed: false, RetryAfter: 2 * time.Second, ResetAt: time.Now().Add(2 * time.Second)}, nil
}

type routerEnv struct {
	router http.Handler
	tokens *auth.TokenManager
	store  *testutil.MemoryStore
}

func newRouterEnv(t *testing.T, limiter middleware.LoginLimiter) *routerEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := testutil.NewMemoryStore()
	recorder := metrics.NewInMemory()
	tokens := auth.NewTokenManager([]byte("router-test-secret-0123456789"), time.Hour)
	reports := service.NewReportService(store, recorder)

	h := Handlers{
		Health: handler.NewHealthHandler(store, nil, logger),
		Accounts: handler.NewAccountHandler(service.NewAccountService(store, tokens, recorder),
			handler.CookieConfig{Name: "token", TTL: time.Hour}, logger),
		Transactions: handler.NewTransactionHandler(service.NewTransactionService(store, recorder), logger),
		Reports:      handler.NewReportHandler(reports, logger),
		Admin:        handler.NewAdminHandler(reports, dto.SettingsResponse{Environment: "test"}, logger),
		Metrics:      handler.NewMetricsHandler(recorder),
	}

	cfg := RouterConfig{
		Logger:   logger,
		Gate:     middleware.NewGate(middleware.GateConfig{Logger: logger, Tokens: tokens, CookieName: "token"}),
		Security: middleware.SecurityConfig{IsDevelopment: true, MaxRequestBodySize: 1 << 20},
		CORS:     middleware.DefaultCORSConfig([]string{"http://localhost:5173"}),
		RateLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Enabled: limiter != nil,
			Limiter: limiter,
			RPS:     1,
			Burst:   5,
		},
	}

	return &routerEnv{router: NewRouter(cfg, h), tokens: tokens, store: store}
}

func (e *routerEnv) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *routerEnv) token(t *testing.T, userID string, isAdmin bool) string {
	t.Helper()
	tok, _, err := e.tokens.Issue(userID, isAdmin)
	require.NoError(t, err)
	return tok
}

func TestRoutes_EveryRouteDeclaresPolicy(t *testing.T) {
	routes := Routes(Handlers{
		Health: &handler.HealthHandler{}, Accounts: &handler.AccountHandler{},
		Transactions: &handler.TransactionHandler{}, Reports: &handler.ReportHandler{},
		Admin: &handler.AdminHandler{}, Metrics: &handler.MetricsHandler{},
	}, func(next http.Handler) http.Handler { return next })

	seen := make(map[string]bool)
	for _, r := range routes {
		key := r.Method + " " + r.Pattern
		assert.False(t, seen[key], "duplicate route %s", key)
		seen[key] = true

		switch {
		case strings.HasPrefix(r.Pattern, "/api/admin/"):
			assert.Equal(t, middleware.PolicyAdmin, r.Policy, key)
		case r.Pattern == "/api/users/profile", r.Pattern == "/api/transactions",
			r.Pattern == "/api/transactions/transaction", r.Pattern == "/api/transactions/{id}":
			assert.Equal(t, middleware.PolicyAuthenticated, r.Policy, key)
		default:
			assert.Equal(t, middleware.PolicyPublic, r.Policy, key)
		}
	}
	assert.Len(t, routes, 17)
}

func TestRouter_Policies(t *testing.T) {
	env := newRouterEnv(t, nil)
	userToken := env.token(t, "u1", false)
	adminToken := env.token(t, "admin", true)

	tests := []struct {
		name   string
		method string
		target string
		token  string
		want   int
	}{
		{"public totals without token", http.MethodGet, "/api/transactions/totals", "", http.StatusOK},
		{"public monthly without token", http.MethodGet, "/api/transactions/report/monthly", "", http.StatusOK},
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"list without token", http.MethodGet, "/api/transactions", "", http.StatusUnauthorized},
		{"list with trailing slash", http.MethodGet, "/api/transactions/", userToken, http.StatusOK},
		{"list with garbage token", http.MethodGet, "/api/transactions", "not-a-jwt", http.StatusUnauthorized},
		{"admin as user", http.MethodGet, "/api/admin/dashboard", userToken, http.StatusForbidden},
		{"admin without token", http.MethodGet, "/api/admin/settings", "", http.StatusUnauthorized},
		{"admin as admin", http.MethodGet, "/api/admin/dashboard", adminToken, http.StatusOK},
		{"admin metrics", http.MethodGet, "/api/admin/metrics", adminToken, http.StatusOK},
		{"unknown path", http.MethodGet, "/api/nope", "", http.StatusNotFound},
		{"wrong method", http.MethodPatch, "/api/users/login", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.target, "", tt.token)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), "Authentication required")
			}
		})
	}
}

func TestRouter_RegisterLoginAndUseCookie(t *testing.T) {
	env := newRouterEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/users/register",
		`{"fullName":"Ana Souza","cpf":"12345678900","email":"ana@example.com","password":"pw-123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/users/login", `{"email":"ana@example.com","password":"pw-123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	token := cookies[0].Value

	rec = env.do(t, http.MethodPost, "/api/transactions/transaction",
		`{"type":"expense","category":"food","value":"12.30"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/users/profile", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ana@example.com"`)

	rec = env.do(t, http.MethodGet, "/api/transactions", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"food"`)
}

func TestRouter_BearerFallback(t *testing.T) {
	env := newRouterEnv(t, nil)
	user := testutil.NewTestUser(t, "bea@example.com", "999")
	require.NoError(t, env.store.CreateUser(context.Background(), user))

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+env.token(t, user.ID, false))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_UpdateOtherUsersTransaction(t *testing.T) {
	env := newRouterEnv(t, nil)
	tx := testutil.NewTestTransaction(t, "owner", model.TypeIncome, "10", testutil.Date(2024, 1, 1))
	require.NoError(t, env.store.CreateTransaction(context.Background(), tx))

	rec := env.do(t, http.MethodPut, "/api/transactions/"+tx.ID, `{"value":"9999"}`, env.token(t, "intruder", false))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/transactions/"+tx.ID, `{"value":"11"}`, env.token(t, "owner", false))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_LoginThrottled(t *testing.T) {
	limiter := &denyLimiter{}
	env := newRouterEnv(t, limiter)

	rec := env.do(t, http.MethodPost, "/api/users/login", `{"email":"a@example.com","password":"x"}`, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, limiter.calls)

	// Only the login route is throttled.
	rec = env.do(t, http.MethodPost, "/api/users/register", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, limiter.calls)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	env := newRouterEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/transactions/totals", "", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	// Gate rejections carry the same headers.
	rec = env.do(t, http.MethodGet, "/api/transactions", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestRouter_TotalsRenderAmountsAsNumbers(t *testing.T) {
	env := newRouterEnv(t, nil)
	ctx := context.Background()
	require.NoError(t, env.store.CreateTransaction(ctx,
		testutil.NewTestTransaction(t, "u1", model.TypeIncome, "1500", testutil.Date(2024, 3, 1))))
	require.NoError(t, env.store.CreateTransaction(ctx,
		testutil.NewTestTransaction(t, "u2", model.TypeExpense, "250.50", testutil.Date(2024, 3, 2))))

	rec := env.do(t, http.MethodGet, "/api/transactions/totals", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"totalIncome":1500,"totalExpense":250.5}`, strings.TrimSpace(rec.Body.String()))
}
