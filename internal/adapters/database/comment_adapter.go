package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/businesstrust/backend/pkg/errors"
)

// CommentAdapter implements the CommentRepository interface
type CommentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCommentAdapter creates a new comment adapter
func NewCommentAdapter(client *postgres.Client) repositories.CommentRepository {
	return &CommentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create appends a comment
func (a *CommentAdapter) Create(ctx context.Context, comment *entities.Comment) error {
	query := `
		INSERT INTO comments (id, company_id, user_id, comment, customer_name, customer_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := a.client.DB().ExecContext(ctx, query,
		comment.ID,
		comment.CompanyID,
		comment.UserID,
		comment.Comment,
		comment.CustomerName,
		comment.CustomerEmail,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to create comment", err)
	}
	return nil
}

// ListByCompany returns comments newest first, up to limit when positive
func (a *CommentAdapter) ListByCompany(ctx context.Context, companyID string, limit int) ([]*entities.Comment, error) {
	if !isUUID(companyID) {
		return []*entities.Comment{}, nil
	}
	ds := a.db.Select(
		"id", "company_id", "user_id", "comment", "customer_name", "customer_email", "created_at", "updated_at",
	).From("comments").
		Prepared(true).
		Where(goqu.Ex{"company_id": companyID}).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build comment query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list comments", err)
	}
	defer rows.Close()

	comments := []*entities.Comment{}
	for rows.Next() {
		c := &entities.Comment{}
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.UserID, &c.Comment, &c.CustomerName, &c.CustomerEmail, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan comment", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate comments", err)
	}
	return comments, nil
}
