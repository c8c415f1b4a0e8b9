package entities

import (
	"strings"
	"time"
)

// UserType distinguishes company owners from customers
type UserType string

const (
	UserTypeCompany  UserType = "company"
	UserTypeCustomer UserType = "customer"
)

// Valid reports whether t is a known user type
func (t UserType) Valid() bool {
	return t == UserTypeCompany || t == UserTypeCustomer
}

// User represents an account in the system
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	UserType     UserType  `json:"user_type" db:"user_type"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName returns "first last", falling back to the email and then to
// "Anonymous".
func (u *User) DisplayName() string {
	if u == nil {
		return "Anonymous"
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Anonymous"
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Token is a persisted bearer credential. TokenHash is the digest of the
// opaque string handed to the client.
type Token struct {
	TokenHash string    `json:"-" db:"token_hash"`
	UserID    string    `json:"user_id" db:"user_id"`
	UserType  UserType  `json:"user_type" db:"user_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the token is past its expiry at now
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Identity is the payload resolved from a valid token
type Identity struct {
	UserID   string   `json:"user_id"`
	UserType UserType `json:"user_type"`
}
