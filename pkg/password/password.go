package password

import (
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinLength is the minimum accepted password length.
const MinLength = 8

// ErrTooLong is returned by Hash for passwords bcrypt cannot hash
var ErrTooLong = bcrypt.ErrPasswordTooLong

// Hasher hashes and checks passwords
type Hasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
}

// BcryptHasher implements Hasher with bcrypt
type BcryptHasher struct {
	cost int
	// dummy is compared against when no stored hash exists, so lookups for
	// unknown accounts cost the same as a real comparison.
	dummy []byte
}

// NewBcryptHasher creates a new BcryptHasher. A non-positive cost selects
// bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("business-trust-dummy-password"), cost)
	return &BcryptHasher{cost: cost, dummy: dummy}
}

// Hash hashes the password with a random salt
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Check reports whether password matches hash. An empty hash is compared
// against the dummy hash and always fails.
func (h *BcryptHasher) Check(password, hash string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Valid reports whether password has at least MinLength characters
func Valid(password string) bool {
	return utf8.RuneCountInString(password) >= MinLength
}
