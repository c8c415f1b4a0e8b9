package repositories

import (
	"context"

	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
)

// RatingRepository defines the interface for rating data operations
type RatingRepository interface {
	// Create persists a rating. A second rating for the same (company, user)
	// returns entities.ErrDuplicateRating.
	Create(ctx context.Context, rating *entities.Rating) error

	// GetByCompanyAndUser returns entities.ErrRatingNotFound when absent
	GetByCompanyAndUser(ctx context.Context, companyID, userID string) (*entities.Rating, error)

	// ListByCompany returns all ratings of a company, newest first
	ListByCompany(ctx context.Context, companyID string) ([]*entities.Rating, error)
}

// CommentRepository defines the interface for the append-only comment log
type CommentRepository interface {
	Create(ctx context.Context, comment *entities.Comment) error
	// ListByCompany returns comments newest first. limit <= 0 means unbounded.
	ListByCompany(ctx context.Context, companyID string, limit int) ([]*entities.Comment, error)
}

// EventRepository records activity audit events
type EventRepository interface {
	Create(ctx context.Context, event *entities.ActivityEvent) error
}
