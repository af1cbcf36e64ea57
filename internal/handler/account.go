package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fintrack/fintrack/internal/auth"
	"github.com/fintrack/fintrack/internal/handler/dto"
	"github.com/fintrack/fintrack/internal/service"
)

// CookieConfig controls the identity cookie set on login.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// AccountHandler handles registration, login, logout and profile requests.
type AccountHandler struct {
	svc    *service.AccountService
	cookie CookieConfig
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.AccountService, cookie CookieConfig, logger *slog.Logger) *AccountHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &AccountHandler{
		svc:    svc,
		cookie: cookie,
		logger: logger,
	}
}

// Register handles POST /api/users/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		FullName:   req.FullName,
		NationalID: req.CPF,
		Email:      req.Email,
		Password:   req.Password,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		Message: "User registered successfully",
		User:    user,
	})
}

// Login handles POST /api/users/login.
// The token is delivered only through the identity cookie.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	http.SetCookie(w, h.newCookie(result.Token, int(h.cookie.TTL/time.Second)))
	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Message:   "Login successful",
		User:      result.User,
		ExpiresAt: result.ExpiresAt,
	})
}

// Logout handles POST /api/users/logout by expiring the identity cookie.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.newCookie("", -1))
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logout successful"})
}

// Profile handles GET /api/users/profile.
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		unauthenticated(w)
		return
	}

	user, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AccountHandler) newCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteNoneMode,
	}
}
