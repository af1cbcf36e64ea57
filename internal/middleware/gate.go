package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fintrack/fintrack/internal/auth"
	"github.com/fintrack/fintrack/internal/model"
)

// Policy is the access level a route declares at registration.
type Policy int

const (
	// PolicyPublic routes skip authentication entirely.
	PolicyPublic Policy = iota
	// PolicyAuthenticated routes need a valid identity token.
	PolicyAuthenticated
	// PolicyAdmin routes need a valid identity token with the admin flag.
	PolicyAdmin
)

// String returns the policy name used in logs.
func (p Policy) String() string {
	switch p {
	case PolicyPublic:
		return "public"
	case PolicyAuthenticated:
		return "authenticated"
	case PolicyAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// unauthorizedMessage is shared by every 401 so callers cannot tell
// which check failed.
const unauthorizedMessage = "Authentication required"

// TokenVerifier verifies identity tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// GateConfig holds configuration for the authorization gate.
type GateConfig struct {
	Logger     *slog.Logger
	Tokens     TokenVerifier
	CookieName string
}

// Gate decides per request whether the caller may reach a route.
type Gate struct {
	logger     *slog.Logger
	tokens     TokenVerifier
	cookieName string
}

// NewGate creates a Gate.
func NewGate(cfg GateConfig) *Gate {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "token"
	}
	return &Gate{
		logger:     logger,
		tokens:     cfg.Tokens,
		cookieName: cookieName,
	}
}

// Require returns middleware enforcing policy.
// On success the caller's identity is attached to the request context.
func (g *Gate) Require(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if policy == PolicyPublic {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				recordAccess(r.Context(), policy, "granted")
				next.ServeHTTP(w, r)
			})
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := g.extractToken(r)
			if token == "" {
				g.reject(w, r, http.StatusUnauthorized, "missing_token", policy)
				return
			}

			// Verify also rejects tokens that are not a compact JWS.
			claims, err := g.tokens.Verify(token)
			if err != nil {
				g.reject(w, r, http.StatusUnauthorized, verifyFailureReason(err), policy)
				return
			}

			if policy == PolicyAdmin && !claims.IsAdmin {
				g.reject(w, r, http.StatusForbidden, "forbidden", policy)
				return
			}

			recordAccess(r.Context(), policy, "granted")
			ctx := auth.ContextWithIdentity(r.Context(), &model.Identity{
				UserID:  claims.UserID,
				IsAdmin: claims.IsAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the identity cookie, falling back to a Bearer header.
func (g *Gate) extractToken(r *http.Request) string {
	if c, err := r.Cookie(g.cookieName); err == nil && c.Value != "" {
		return c.Value
	}

	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}

	return ""
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, status int, reason string, policy Policy) {
	recordAccess(r.Context(), policy, reason)
	g.logger.Warn("authorization failed",
		slog.String("reason", reason),
		slog.String("policy", policy.String()),
		slog.String("ip", peerIP(r.RemoteAddr)),
		slog.String("endpoint", r.Method+" "+routePattern(r)),
		slog.String("request_id", GetRequestID(r.Context())),
	)

	if status == http.StatusForbidden {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Administrator access required")
		return
	}
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", unauthorizedMessage)
}

func verifyFailureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired_token"
	case errors.Is(err, auth.ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, auth.ErrMissingToken):
		return "missing_token"
	default:
		return "invalid_token"
	}
}
