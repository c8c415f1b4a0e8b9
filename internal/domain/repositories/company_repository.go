package repositories

import (
	"context"

	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
)

// CompanyFilter holds optional case-insensitive substring filters. Only
// active companies are returned by filtered queries.
type CompanyFilter struct {
	Query    string
	Category string
	City     string
	Country  string
	Limit    int
}

// CompanyRepository defines the interface for company data operations
type CompanyRepository interface {
	// Create persists a new company. The owner must not already own a company.
	Create(ctx context.Context, company *entities.Company) error

	GetByID(ctx context.Context, id string) (*entities.Company, error)

	// GetByIDs retrieves companies in the order of ids, skipping missing ones
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Company, error)

	// GetByOwner retrieves the company owned by userID
	GetByOwner(ctx context.Context, userID string) (*entities.Company, error)

	// Update persists the profile fields of a company
	Update(ctx context.Context, company *entities.Company) error

	// List returns all active companies ordered by (-average_rating, name)
	List(ctx context.Context) ([]*entities.Company, error)

	// Search returns active companies matching filter ordered by (-average_rating, name)
	Search(ctx context.Context, filter CompanyFilter) ([]*entities.Company, error)

	// Recommendations returns active companies matching filter ordered by
	// (-reputation_score, -average_rating, name)
	Recommendations(ctx context.Context, filter CompanyFilter) ([]*entities.Company, error)

	// Categories returns the distinct categories of active companies, sorted
	Categories(ctx context.Context) ([]string, error)

	// TopByCategory returns up to limit active companies of category ordered by
	// (-average_rating, -total_reviews, name)
	TopByCategory(ctx context.Context, category string, limit int) ([]*entities.Company, error)

	// RefreshAggregate recomputes average_rating and total_reviews from the
	// full rating set and persists them in a single statement
	RefreshAggregate(ctx context.Context, companyID string) (*entities.RatingAggregate, error)

	// ResetScores zeroes reputation and recommendation scores on every company
	ResetScores(ctx context.Context) (int64, error)

	// ListIDs returns the ids of all companies
	ListIDs(ctx context.Context) ([]string, error)
}

// CompanySearchRepository defines the interface for the company search index
type CompanySearchRepository interface {
	Index(ctx context.Context, company *entities.Company) error
	Delete(ctx context.Context, id string) error
	// Search returns matching company ids ordered by (-average_rating, name)
	Search(ctx context.Context, filter CompanyFilter) ([]string, error)
}
