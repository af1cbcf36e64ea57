package dto

import (
	"time"

	"github.com/fintrack/fintrack/internal/model"
)

// RegisterRequest represents the request body for creating an account.
type RegisterRequest struct {
	FullName string `json:"fullName"`
	CPF      string `json:"cpf"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse confirms a registration without echoing credentials.
type RegisterResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// LoginResponse confirms a login. The token itself travels in the cookie.
type LoginResponse struct {
	Message   string      `json:"message"`
	User      *model.User `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}
