package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack/internal/auth"
	"github.com/fintrack/fintrack/internal/metrics"
	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/repository"
	"github.com/fintrack/fintrack/internal/testutil"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAccountService(t *testing.T) (*AccountService, *testutil.MemoryStore, *auth.TokenManager, *metrics.InMemoryRecorder) {
	t.Helper()
	store := testutil.NewMemoryStore()
	tokens := auth.NewTokenManager([]byte(testSecret), time.Hour)
	recorder := metrics.NewInMemory()
	return NewAccountService(store, tokens, recorder), store, tokens, recorder
}

func validRegistration() RegisterInput {
	return RegisterInput{
		FullName:   "Ana Souza",
		NationalID: "123.456.789-00",
		Email:      "Ana@Example.com ",
		Password:   "s3cret-pass",
	}
}

func TestAccountService_Register(t *testing.T) {
	svc, store, _, recorder := newAccountService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "123.456.789-00", user.NationalID)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.False(t, user.CreatedAt.IsZero())

	stored, err := store.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	ok, err := auth.VerifyPassword("s3cret-pass", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, uint64(1), recorder.Snapshot().UsersRegistered)
}

func TestAccountService_Register_Conflicts(t *testing.T) {
	svc, _, _, _ := newAccountService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	sameEmail := validRegistration()
	sameEmail.NationalID = "999"
	_, err = svc.Register(ctx, sameEmail)
	assert.ErrorIs(t, err, ErrEmailTaken)

	sameCPF := validRegistration()
	sameCPF.Email = "other@example.com"
	_, err = svc.Register(ctx, sameCPF)
	assert.ErrorIs(t, err, ErrNationalIDTaken)

	// Email is checked before national ID.
	_, err = svc.Register(ctx, validRegistration())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAccountService_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing name", func(in *RegisterInput) { in.FullName = "  " }},
		{"missing cpf", func(in *RegisterInput) { in.NationalID = "" }},
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"missing password", func(in *RegisterInput) { in.Password = "" }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"password too long", func(in *RegisterInput) { in.Password = strings.Repeat("x", auth.MaxPasswordLength+1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newAccountService(t)
			in := validRegistration()
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAccountService_Register_StoreRace(t *testing.T) {
	svc, store, _, _ := newAccountService(t)
	ctx := context.Background()

	// Another writer took the email between the lookup and the insert.
	require.NoError(t, store.CreateUser(ctx, testutil.NewTestUser(t, "ana@example.com", "other-cpf")))
	svc.users = staleLookupStore{store}

	_, err := svc.Register(ctx, validRegistration())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

// staleLookupStore never finds users on lookup but still enforces
// uniqueness on insert.
type staleLookupStore struct {
	*testutil.MemoryStore
}

func (staleLookupStore) GetUserByEmail(context.Context, string) (*model.User, error) {
	return nil, repository.ErrUserNotFound
}

func (staleLookupStore) GetUserByNationalID(context.Context, string) (*model.User, error) {
	return nil, repository.ErrUserNotFound
}

func TestAccountService_Login(t *testing.T) {
	svc, _, tokens, recorder := newAccountService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	result, err := svc.Login(ctx, "ANA@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, 5*time.Second)

	claims, err := tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.False(t, claims.IsAdmin)

	assert.Equal(t, uint64(1), recorder.Snapshot().LoginsSucceeded)
}

func TestAccountService_Login_GenericFailure(t *testing.T) {
	svc, _, _, recorder := newAccountService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "ana@example.com", "nope")
	_, unknownEmail := svc.Login(ctx, "ghost@example.com", "s3cret-pass")
	_, oversized := svc.Login(ctx, "ana@example.com", strings.Repeat("x", auth.MaxPasswordLength+1))

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	require.ErrorIs(t, oversized, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, wrongPassword.Error(), oversized.Error())
	assert.Equal(t, uint64(3), recorder.Snapshot().LoginsFailed)
}

func TestAccountService_Login_AdminFlag(t *testing.T) {
	svc, _, tokens, _ := newAccountService(t)
	ctx := context.Background()

	in := validRegistration()
	in.IsAdmin = true
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	result, err := svc.Login(ctx, in.Email, in.Password)
	require.NoError(t, err)

	claims, err := tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestAccountService_Profile(t *testing.T) {
	svc, _, _, _ := newAccountService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	got, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.Profile(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAccountService_StoreFailure(t *testing.T) {
	svc, store, _, _ := newAccountService(t)
	store.Err = errors.New("connection refused")

	_, err := svc.Profile(context.Background(), "any")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Login(context.Background(), "ana@example.com", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
