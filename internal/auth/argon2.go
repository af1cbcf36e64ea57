// Package auth provides password hashing and identity token primitives.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// MaxPasswordLength bounds the bytes fed to Argon2id per login attempt.
const MaxPasswordLength = 1024

var (
	// ErrInvalidHash indicates a stored hash that is not an argon2id PHC string.
	ErrInvalidHash = errors.New("invalid hash format")
	// ErrIncompatibleVersion indicates a hash produced by another argon2 version.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
	// ErrPasswordTooLong indicates a password over MaxPasswordLength bytes.
	ErrPasswordTooLong = errors.New("password too long")
)

// passwordParams are the Argon2id cost settings stored alongside each hash.
type passwordParams struct {
	memory  uint32 // KiB
	time    uint32
	threads uint8
	keyLen  uint32
	saltLen uint32
}

// userPasswordParams follows the OWASP argon2id minimum for interactive logins.
var userPasswordParams = passwordParams{
	memory:  64 * 1024,
	time:    3,
	threads: 4,
	keyLen:  32,
	saltLen: 16,
}

// Upper bounds accepted when decoding a stored hash.
const (
	maxHashMemory  = 1 << 20
	maxHashTime    = 16
	maxHashKeyLen  = 128
	minHashSaltLen = 8
)

// storedHash is a decoded PHC string.
type storedHash struct {
	params passwordParams
	salt   []byte
	key    []byte
}

// encode renders the PHC form $argon2id$v=19$m=65536,t=3,p=4$<salt>$<key>.
func (h storedHash) encode() string {
	var b strings.Builder
	b.WriteString("$argon2id$v=")
	b.WriteString(strconv.Itoa(argon2.Version))
	fmt.Fprintf(&b, "$m=%d,t=%d,p=%d$", h.params.memory, h.params.time, h.params.threads)
	b.WriteString(base64.RawStdEncoding.EncodeToString(h.salt))
	b.WriteByte('$')
	b.WriteString(base64.RawStdEncoding.EncodeToString(h.key))
	return b.String()
}

func decodeHash(encoded string) (storedHash, error) {
	// Leading "$" yields an empty first field.
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return storedHash{}, ErrInvalidHash
	}

	version, ok := strings.CutPrefix(fields[2], "v=")
	if !ok {
		return storedHash{}, ErrInvalidHash
	}
	v, err := strconv.Atoi(version)
	if err != nil {
		return storedHash{}, ErrInvalidHash
	}
	if v != argon2.Version {
		return storedHash{}, ErrIncompatibleVersion
	}

	var h storedHash
	if err := h.params.parseCost(fields[3]); err != nil {
		return storedHash{}, err
	}

	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil || len(h.salt) < minHashSaltLen {
		return storedHash{}, ErrInvalidHash
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil || len(h.key) == 0 || len(h.key) > maxHashKeyLen {
		return storedHash{}, ErrInvalidHash
	}
	h.params.saltLen = uint32(len(h.salt))
	h.params.keyLen = uint32(len(h.key))

	return h, nil
}

// parseCost reads "m=<KiB>,t=<passes>,p=<lanes>" in that order.
func (p *passwordParams) parseCost(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return ErrInvalidHash
	}

	values := make([]uint64, 3)
	for i, name := range []string{"m", "t", "p"} {
		raw, ok := strings.CutPrefix(parts[i], name+"=")
		if !ok {
			return ErrInvalidHash
		}
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			return ErrInvalidHash
		}
		values[i] = n
	}

	if values[0] > maxHashMemory || values[1] > maxHashTime || values[2] > 255 {
		return ErrInvalidHash
	}
	p.memory = uint32(values[0])
	p.time = uint32(values[1])
	p.threads = uint8(values[2])
	return nil
}

// HashPassword creates an Argon2id hash of a user password in PHC string format.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	p := userPasswordParams
	salt := make([]byte, p.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return storedHash{
		params: p,
		salt:   salt,
		key:    argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen),
	}.encode(), nil
}

// VerifyPassword reports whether password matches encodedHash, using the cost
// settings recorded in the hash. Keys are compared in constant time.
func VerifyPassword(password, encodedHash string) (bool, error) {
	if len(password) > MaxPasswordLength {
		return false, ErrPasswordTooLong
	}

	h, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	p := h.params
	key := argon2.IDKey([]byte(password), h.salt, p.time, p.memory, p.threads, p.keyLen)
	return subtle.ConstantTimeCompare(key, h.key) == 1, nil
}
