// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account holder.
// Email and NationalID (CPF) are each unique across all users.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	NationalID   string    `json:"cpf"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID  string
	IsAdmin bool
}
