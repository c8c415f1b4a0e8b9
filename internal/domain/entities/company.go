package entities

import (
	"time"
)

// Company represents a business profile owned by a company-type user
type Company struct {
	ID                  string    `json:"id" db:"id"`
	UserID              string    `json:"user_id" db:"user_id"`
	Name                string    `json:"name" db:"name"`
	Email               string    `json:"email" db:"email"`
	Category            string    `json:"category" db:"category"`
	Description         string    `json:"description" db:"description"`
	Phone               string    `json:"phone" db:"phone"`
	Address             string    `json:"address" db:"address"`
	City                string    `json:"city" db:"city"`
	Country             string    `json:"country" db:"country"`
	AverageRating       float64   `json:"average_rating" db:"average_rating"`
	TotalReviews        int       `json:"total_reviews" db:"total_reviews"`
	ReputationScore     float64   `json:"reputation_score" db:"reputation_score"`
	RecommendationScore float64   `json:"recommendation_score" db:"recommendation_score"`
	IsVerified          bool      `json:"is_verified" db:"is_verified"`
	IsActive            bool      `json:"is_active" db:"is_active"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// Aggregate returns the derived rating pair of the company
func (c *Company) Aggregate() RatingAggregate {
	return RatingAggregate{CompanyID: c.ID, AverageRating: c.AverageRating, TotalReviews: c.TotalReviews}
}

// CompanyProfilePatch carries the owner-editable profile fields. Nil fields
// are left unchanged.
type CompanyProfilePatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
}

// Empty reports whether the patch changes nothing
func (p CompanyProfilePatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil && p.Email == nil &&
		p.Phone == nil && p.Address == nil && p.City == nil && p.Country == nil
}

// Apply copies the set fields onto c and returns the names of changed columns
func (p CompanyProfilePatch) Apply(c *Company) []string {
	var changed []string
	set := func(name string, dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = append(changed, name)
		}
	}
	set("name", &c.Name, p.Name)
	set("description", &c.Description, p.Description)
	set("category", &c.Category, p.Category)
	set("email", &c.Email, p.Email)
	set("phone", &c.Phone, p.Phone)
	set("address", &c.Address, p.Address)
	set("city", &c.City, p.City)
	set("country", &c.Country, p.Country)
	return changed
}
