package entities

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxCommentLength is the maximum comment length in characters
const MaxCommentLength = 2000

// Comment is an append-only customer comment on a company
type Comment struct {
	ID            string    `json:"id" db:"id"`
	CompanyID     string    `json:"company_id" db:"company_id"`
	UserID        string    `json:"user_id" db:"user_id"`
	Comment       string    `json:"comment" db:"comment"`
	CustomerName  string    `json:"customer_name" db:"customer_name"`
	CustomerEmail string    `json:"customer_email" db:"customer_email"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizeComment trims text and validates its length
func NormalizeComment(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyComment
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return "", ErrCommentTooLong
	}
	return text, nil
}
