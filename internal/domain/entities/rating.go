package entities

import (
	"math"
	"time"
)

const (
	// MinRating is the lowest accepted rating value
	MinRating = 1.0
	// MaxRating is the highest accepted rating value
	MaxRating = 5.0
)

// Rating is a single customer's rating of a company. At most one exists per
// (CompanyID, UserID).
type Rating struct {
	ID        string    `json:"id" db:"id"`
	CompanyID string    `json:"company_id" db:"company_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Rating    float64   `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RatingAggregate is the derived (average, count) pair of a company
type RatingAggregate struct {
	CompanyID     string  `json:"company_id"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// ValidRating reports whether v is a finite number in [MinRating, MaxRating]
func ValidRating(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= MinRating && v <= MaxRating
}
