package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_StoredForm(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=4$"), hash)

	decoded, err := decodeHash(hash)
	require.NoError(t, err)
	assert.Len(t, decoded.salt, 16)
	assert.Len(t, decoded.key, 32)
	assert.Equal(t, hash, decoded.encode())
}

func TestVerifyPassword_UserPasswords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
	}{
		{"unicode", "sêñha-çom-acentuação-🔒"},
		{"spaces kept", "  padded password  "},
		{"max length", strings.Repeat("p", MaxPasswordLength)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash, err := HashPassword(tt.password)
			require.NoError(t, err)

			ok, err := VerifyPassword(tt.password, hash)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = VerifyPassword(strings.TrimSpace(tt.password)+"x", hash)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerifyPassword_AnotherUsersHash(t *testing.T) {
	t.Parallel()

	// Two users with the same password get unrelated hashes.
	anaHash, err := HashPassword("shared-password")
	require.NoError(t, err)
	beaHash, err := HashPassword("shared-password")
	require.NoError(t, err)
	assert.NotEqual(t, anaHash, beaHash)

	carlosHash, err := HashPassword("carlos-password")
	require.NoError(t, err)

	ok, err := VerifyPassword("shared-password", carlosHash)
	require.NoError(t, err)
	assert.False(t, ok, "one user's password must not open another user's hash")

	ok, err = VerifyPassword("carlos-password", anaHash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_NormalizationIsNotApplied(t *testing.T) {
	t.Parallel()

	// "é" precomposed vs. "e" + combining acute accent.
	hash, err := HashPassword("caf\u00e9")
	require.NoError(t, err)

	ok, err := VerifyPassword("cafe\u0301", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordTooLong(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", MaxPasswordLength+1)

	_, err := HashPassword(long)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	hash, err := HashPassword("short")
	require.NoError(t, err)
	ok, err := VerifyPassword(long, hash)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.False(t, ok)
}

func TestVerifyPassword_BadStoredHash(t *testing.T) {
	t.Parallel()

	const salt = "c29tZXNhbHRoZXJl" // "somesalthere"
	const key = "c29tZWhhc2hoZXJl"

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"plain text", "hunter2", ErrInvalidHash},
		{"bcrypt", "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy", ErrInvalidHash},
		{"argon2i", "$argon2i$v=19$m=65536,t=3,p=4$" + salt + "$" + key, ErrInvalidHash},
		{"missing leading dollar", "argon2id$v=19$m=65536,t=3,p=4$" + salt + "$" + key + "$", ErrInvalidHash},
		{"old version", "$argon2id$v=16$m=65536,t=3,p=4$" + salt + "$" + key, ErrIncompatibleVersion},
		{"cost out of order", "$argon2id$v=19$t=3,m=65536,p=4$" + salt + "$" + key, ErrInvalidHash},
		{"zero lanes", "$argon2id$v=19$m=65536,t=3,p=0$" + salt + "$" + key, ErrInvalidHash},
		{"huge memory", "$argon2id$v=19$m=4294967295,t=3,p=4$" + salt + "$" + key, ErrInvalidHash},
		{"short salt", "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$" + key, ErrInvalidHash},
		{"bad base64 key", "$argon2id$v=19$m=65536,t=3,p=4$" + salt + "$!!!", ErrInvalidHash},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, err := VerifyPassword("password", tt.hash)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, ok)
		})
	}
}
