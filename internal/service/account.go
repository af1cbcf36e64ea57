package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fintrack/fintrack/internal/auth"
	"github.com/fintrack/fintrack/internal/metrics"
	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/repository"
)

// emailRegex is a shape check only: local@domain.tld without spaces.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByNationalID(ctx context.Context, nationalID string) (*model.User, error)
}

// AccountService handles registration, login and profile lookups.
type AccountService struct {
	users   UserStore
	tokens  *auth.TokenManager
	metrics metrics.Recorder
	now     func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserStore, tokens *auth.TokenManager, recorder metrics.Recorder) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		users:   users,
		tokens:  tokens,
		metrics: recorder,
		now:     time.Now,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	FullName   string
	NationalID string
	Email      string
	Password   string
	IsAdmin    bool
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// Register validates input and persists a new user with a hashed password.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	nationalID := strings.TrimSpace(input.NationalID)
	email := normalizeEmail(input.Email)

	switch {
	case fullName == "":
		return nil, missingField("fullName")
	case nationalID == "":
		return nil, missingField("cpf")
	case email == "":
		return nil, missingField("email")
	case input.Password == "":
		return nil, missingField("password")
	case len(input.Password) > auth.MaxPasswordLength:
		return nil, invalidField("password", "is too long")
	}
	if !emailRegex.MatchString(email) {
		return nil, invalidField("email", "is not a valid address")
	}

	if err := s.ensureAvailable(ctx, email, nationalID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		FullName:     fullName,
		NationalID:   nationalID,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      input.IsAdmin,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrNationalIDExists):
			return nil, ErrNationalIDTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// ensureAvailable checks email first, then national ID.
func (s *AccountService) ensureAvailable(ctx context.Context, email, nationalID string) error {
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("failed to look up email: %w", err)
	}

	if _, err := s.users.GetUserByNationalID(ctx, nationalID); err == nil {
		return ErrNationalIDTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("failed to look up cpf: %w", err)
	}

	return nil
}

// Login verifies credentials and issues an identity token.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, missingField("email")
	}
	if password == "" {
		return nil, missingField("password")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin(false)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		s.metrics.IncLogin(false)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLogin(true)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// Profile returns the user record for userID.
func (s *AccountService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
