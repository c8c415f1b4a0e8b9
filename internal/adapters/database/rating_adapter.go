package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/businesstrust/backend/pkg/errors"
)

// RatingAdapter implements the RatingRepository interface
type RatingAdapter struct {
	client *postgres.Client
}

// NewRatingAdapter creates a new rating adapter
func NewRatingAdapter(client *postgres.Client) repositories.RatingRepository {
	return &RatingAdapter{client: client}
}

// Create inserts a rating. The ratings_company_user_key index is the
// authoritative one-rating-per-customer guard.
func (a *RatingAdapter) Create(ctx context.Context, rating *entities.Rating) error {
	query := `
		INSERT INTO ratings (id, company_id, user_id, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := a.client.DB().ExecContext(ctx, query,
		rating.ID, rating.CompanyID, rating.UserID, rating.Rating, rating.CreatedAt, rating.UpdatedAt)
	if isUniqueViolation(err, "ratings_company_user_key") {
		return entities.ErrDuplicateRating
	}
	if err != nil {
		return apperrors.NewInternalError("failed to create rating", err)
	}
	return nil
}

// GetByCompanyAndUser retrieves the rating a user gave a company
func (a *RatingAdapter) GetByCompanyAndUser(ctx context.Context, companyID, userID string) (*entities.Rating, error) {
	if !isUUID(companyID) || !isUUID(userID) {
		return nil, entities.ErrRatingNotFound
	}
	query := `
		SELECT id, company_id, user_id, rating, created_at, updated_at
		FROM ratings
		WHERE company_id = $1 AND user_id = $2
	`
	rating, err := scanRating(a.client.DB().QueryRowContext(ctx, query, companyID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrRatingNotFound
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get rating", err)
	}
	return rating, nil
}

// ListByCompany returns the ratings of a company newest first
func (a *RatingAdapter) ListByCompany(ctx context.Context, companyID string) ([]*entities.Rating, error) {
	if !isUUID(companyID) {
		return []*entities.Rating{}, nil
	}
	query := `
		SELECT id, company_id, user_id, rating, created_at, updated_at
		FROM ratings
		WHERE company_id = $1
		ORDER BY created_at DESC, id
	`
	rows, err := a.client.DB().QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list ratings", err)
	}
	defer rows.Close()

	ratings := []*entities.Rating{}
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan rating", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate ratings", err)
	}
	return ratings, nil
}

func scanRating(row rowScanner) (*entities.Rating, error) {
	r := &entities.Rating{}
	if err := row.Scan(&r.ID, &r.CompanyID, &r.UserID, &r.Rating, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return r, nil
}
