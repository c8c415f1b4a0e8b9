package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
)

// CommentService appends and lists customer comments
type CommentService struct {
	companies repositories.CompanyRepository
	comments  repositories.CommentRepository
	activity  *ActivityRecorder
	metrics   *observability.Metrics
}

// NewCommentService creates a new comment service
func NewCommentService(companies repositories.CompanyRepository, comments repositories.CommentRepository, activity *ActivityRecorder, metrics *observability.Metrics) *CommentService {
	return &CommentService{
		companies: companies,
		comments:  comments,
		activity:  activity,
		metrics:   metrics,
	}
}

// AddComment appends a comment by customer on a company
func (s *CommentService) AddComment(ctx context.Context, companyID string, customer *entities.User, text string) (*entities.Comment, error) {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, err
	}

	body, err := entities.NormalizeComment(text)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := &entities.Comment{
		ID:            uuid.NewString(),
		CompanyID:     companyID,
		UserID:        customer.ID,
		Comment:       body,
		CustomerName:  customer.DisplayName(),
		CustomerEmail: customer.Email,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	start := time.Now()
	err = s.comments.Create(ctx, comment)
	observability.RecordDBMetric(ctx, s.metrics, "comments.create", time.Since(start))
	if err != nil {
		return nil, err
	}

	observability.RecordComment(ctx, s.metrics)
	s.activity.Record(ctx, entities.ActivityCommentAdded, companyID, customer.ID, map[string]interface{}{
		"comment_id": comment.ID,
	})

	return comment, nil
}

// ListComments returns a company's comments newest first. limit <= 0 returns all.
func (s *CommentService) ListComments(ctx context.Context, companyID string, limit int) ([]*entities.Comment, error) {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, err
	}
	return s.comments.ListByCompany(ctx, companyID, limit)
}
