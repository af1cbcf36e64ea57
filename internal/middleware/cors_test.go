package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webClientOrigin = "http://localhost:5173"

func corsHandler(cfg CORSConfig) http.Handler {
	return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORS_CredentialedWebClient(t *testing.T) {
	h := corsHandler(DefaultCORSConfig([]string{webClientOrigin}))

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/totals", nil)
	req.Header.Set("Origin", webClientOrigin)
	req.AddCookie(&http.Cookie{Name: "token", Value: "a.b.c"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, webClientOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), RequestIDHeader)
}

func TestCORS_Preflight(t *testing.T) {
	h := corsHandler(DefaultCORSConfig([]string{webClientOrigin}))

	tests := []struct {
		name       string
		origin     string
		method     string
		wantStatus int
		wantOrigin string
	}{
		{"update transaction", webClientOrigin, http.MethodPut, http.StatusNoContent, webClientOrigin},
		{"delete transaction", webClientOrigin, http.MethodDelete, http.StatusNoContent, webClientOrigin},
		{"trailing slash and case", "HTTP://LOCALHOST:5173/", http.MethodPost, http.StatusNoContent, "HTTP://LOCALHOST:5173/"},
		{"method not allowed", webClientOrigin, http.MethodPatch, http.StatusForbidden, webClientOrigin},
		{"foreign origin", "https://evil.example", http.MethodDelete, http.StatusForbidden, ""},
		{"different port", "http://localhost:3000", http.MethodGet, http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/transactions/01J0000000000000000000000", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", tt.method)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantStatus == http.StatusNoContent {
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
				assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestCORS_ForeignOriginSimpleRequestGetsNoGrant(t *testing.T) {
	h := corsHandler(DefaultCORSConfig([]string{webClientOrigin}))

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_NoOriginSkipsHeaders(t *testing.T) {
	h := corsHandler(DefaultCORSConfig([]string{webClientOrigin}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Vary"))
}

func TestCORS_WildcardIgnoredWithCredentials(t *testing.T) {
	h := corsHandler(DefaultCORSConfig([]string{"*"}))

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_WildcardWithoutCredentials(t *testing.T) {
	cfg := DefaultCORSConfig([]string{"*"})
	cfg.AllowCredentials = false
	h := corsHandler(cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://status.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultCORSConfig([]string{webClientOrigin, "https://app.example.com/"}).Validate())
	require.NoError(t, DefaultCORSConfig(nil).Validate())

	err := DefaultCORSConfig([]string{webClientOrigin, "*"}).Validate()
	assert.ErrorIs(t, err, ErrWildcardWithCredentials)

	err = DefaultCORSConfig([]string{"https://*.example.com"}).Validate()
	assert.ErrorIs(t, err, ErrWildcardWithCredentials)

	open := DefaultCORSConfig([]string{"*"})
	open.AllowCredentials = false
	assert.NoError(t, open.Validate())

	for _, bad := range []string{"localhost:5173", "http://", "http://localhost:5173/app"} {
		err := DefaultCORSConfig([]string{bad}).Validate()
		assert.Error(t, err, bad)
		assert.NotErrorIs(t, err, ErrWildcardWithCredentials, bad)
	}
}
