package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fintrack/fintrack/internal/handler"
	"github.com/fintrack/fintrack/internal/middleware"
)

// Route is one entry of the route table. Every route declares its policy.
type Route struct {
	Method     string
	Pattern    string
	Policy     middleware.Policy
	Handler    http.HandlerFunc
	Middleware []func(http.Handler) http.Handler
}

// Handlers groups the HTTP handlers the router dispatches to.
type Handlers struct {
	Health       *handler.HealthHandler
	Accounts     *handler.AccountHandler
	Transactions *handler.TransactionHandler
	Reports      *handler.ReportHandler
	Admin        *handler.AdminHandler
	Metrics      *handler.MetricsHandler
}

// RouterConfig holds the middleware configuration for NewRouter.
type RouterConfig struct {
	Logger         *slog.Logger
	Gate           *middleware.Gate
	Security       middleware.SecurityConfig
	CORS           middleware.CORSConfig
	RateLimit      middleware.RateLimitConfig
	TrustedProxies middleware.TrustedProxies
}

// Routes returns the application route table.
func Routes(h Handlers, loginThrottle func(http.Handler) http.Handler) []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/healthz", Policy: middleware.PolicyPublic, Handler: h.Health.Healthz},
		{Method: http.MethodGet, Pattern: "/readyz", Policy: middleware.PolicyPublic, Handler: h.Health.Readyz},

		{Method: http.MethodPost, Pattern: "/api/users/register", Policy: middleware.PolicyPublic, Handler: h.Accounts.Register},
		{Method: http.MethodPost, Pattern: "/api/users/login", Policy: middleware.PolicyPublic, Handler: h.Accounts.Login,
			Middleware: []func(http.Handler) http.Handler{loginThrottle}},
		{Method: http.MethodPost, Pattern: "/api/users/logout", Policy: middleware.PolicyPublic, Handler: h.Accounts.Logout},
		{Method: http.MethodGet, Pattern: "/api/users/profile", Policy: middleware.PolicyAuthenticated, Handler: h.Accounts.Profile},

		{Method: http.MethodPost, Pattern: "/api/transactions/transaction", Policy: middleware.PolicyAuthenticated, Handler: h.Transactions.Create},
		{Method: http.MethodGet, Pattern: "/api/transactions", Policy: middleware.PolicyAuthenticated, Handler: h.Transactions.List},
		{Method: http.MethodPut, Pattern: "/api/transactions/{id}", Policy: middleware.PolicyAuthenticated, Handler: h.Transactions.Update},
		{Method: http.MethodDelete, Pattern: "/api/transactions/{id}", Policy: middleware.PolicyAuthenticated, Handler: h.Transactions.Delete},

		{Method: http.MethodGet, Pattern: "/api/transactions/totals", Policy: middleware.PolicyPublic, Handler: h.Reports.Totals},
		{Method: http.MethodGet, Pattern: "/api/transactions/totals/balance", Policy: middleware.PolicyPublic, Handler: h.Reports.Balance},
		{Method: http.MethodGet, Pattern: "/api/transactions/report/monthly", Policy: middleware.PolicyPublic, Handler: h.Reports.Monthly},
		{Method: http.MethodGet, Pattern: "/api/transactions/report/annual", Policy: middleware.PolicyPublic, Handler: h.Reports.Annual},

		{Method: http.MethodGet, Pattern: "/api/admin/dashboard", Policy: middleware.PolicyAdmin, Handler: h.Admin.Dashboard},
		{Method: http.MethodGet, Pattern: "/api/admin/settings", Policy: middleware.PolicyAdmin, Handler: h.Admin.Settings},
		{Method: http.MethodGet, Pattern: "/api/admin/metrics", Policy: middleware.PolicyAdmin, Handler: h.Metrics.Metrics},
	}
}

// NewRouter builds the chi router: global middleware first, then every
// route wrapped in the gate for its declared policy.
func NewRouter(cfg RouterConfig, h Handlers) *chi.Mux {
	ConfigureJSON()

	r := chi.NewRouter()

	r.Use(middleware.RealIP(cfg.TrustedProxies))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))
	r.Use(chimiddleware.StripSlashes)

	for _, route := range Routes(h, middleware.RateLimitLogin(cfg.RateLimit)) {
		chain := append([]func(http.Handler) http.Handler{cfg.Gate.Require(route.Policy)}, route.Middleware...)
		r.With(chain...).Method(route.Method, route.Pattern, route.Handler)
	}

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
