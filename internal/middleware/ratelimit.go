package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fintrack/fintrack/internal/cache"
)

// LoginLimiter consumes one login attempt for a client IP.
type LoginLimiter interface {
	CheckLoginRateLimit(ctx context.Context, ip string, ratePerSecond float64, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for login throttling.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter LoginLimiter // nil disables throttling
	Enabled bool
	RPS     float64
	Burst   int
}

// RateLimitLogin returns middleware that throttles login attempts per client IP.
// Limiter errors are logged and the request is allowed.
func RateLimitLogin(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled || cfg.Limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			result, err := cfg.Limiter.CheckLoginRateLimit(r.Context(), ip, cfg.RPS, cfg.Burst)
			if err != nil {
				cfg.Logger.Error("login rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
			}
			if result == nil || result.Allowed {
				if result != nil {
					setRateLimitHeaders(w, cfg.Burst, result.Remaining, result.ResetAt)
				}
				next.ServeHTTP(w, r)
				return
			}

			cfg.Logger.Warn("rate limit exceeded",
				slog.String("type", "login"),
				slog.String("ip", ip),
				slog.String("endpoint", r.Method+" "+routePattern(r)),
				slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			setRateLimitHeaders(w, cfg.Burst, result.Remaining, result.ResetAt)
			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			writeRateLimitError(w, result.RetryAfter)
		})
	}
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}

// writeRateLimitError writes a 429 Too Many Requests response.
func writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	writeError(w, http.StatusTooManyRequests, "RATE_LIMITED",
		"Too many login attempts. Retry after "+strconv.Itoa(int(retryAfter.Seconds()))+" seconds.")
}

// getClientIP returns the peer address used as the throttling key.
// Forwarding headers are only honoured through RealIP, which rewrites
// RemoteAddr for trusted proxies.
func getClientIP(r *http.Request) string {
	return peerIP(r.RemoteAddr)
}
