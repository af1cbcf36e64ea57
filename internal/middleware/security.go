package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// SecurityConfig holds configuration for response hardening.
type SecurityConfig struct {
	// IsDevelopment disables HSTS so plain-HTTP local setups keep working.
	IsDevelopment bool

	// HSTSMaxAge defaults to one year when zero.
	HSTSMaxAge time.Duration

	// MaxRequestBodySize caps JSON request bodies in bytes.
	MaxRequestBodySize int64
}

// DefaultSecurityConfig returns production settings.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSMaxAge:         365 * 24 * time.Hour,
		MaxRequestBodySize: 1 << 20,
	}
}

// apiHeaders apply to every response. The API serves JSON only, so nothing
// may be framed, embedded or cached: totals and profiles are per-user data.
var apiHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "no-referrer"},
	{"Cross-Origin-Opener-Policy", "same-origin"},
	{"Cross-Origin-Resource-Policy", "same-site"},
	{"Cache-Control", "no-store"},
	{"Pragma", "no-cache"},
}

// Security returns a middleware that sets the API's response headers before
// the handler runs, so error responses from later middleware carry them too.
func Security(cfg SecurityConfig) func(http.Handler) http.Handler {
	hsts := ""
	if !cfg.IsDevelopment {
		maxAge := cfg.HSTSMaxAge
		if maxAge <= 0 {
			maxAge = DefaultSecurityConfig().HSTSMaxAge
		}
		hsts = "max-age=" + strconv.FormatInt(int64(maxAge/time.Second), 10) + "; includeSubDomains"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range apiHeaders {
				h.Set(kv[0], kv[1])
			}
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			h.Del("Server")

			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodySize returns a middleware that limits request body size. A declared
// Content-Length over the limit is rejected before the handler runs; bodies
// without one are cut off by http.MaxBytesReader while decoding.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
