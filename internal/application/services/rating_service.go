package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
)

// RatingSummary is a company's aggregate together with the caller's own rating
type RatingSummary struct {
	Company  *entities.Company
	MyRating *float64
}

// RatingService records customer ratings, one per customer and company
type RatingService struct {
	companies   repositories.CompanyRepository
	ratings     repositories.RatingRepository
	aggregation *AggregationService
	activity    *ActivityRecorder
	metrics     *observability.Metrics
}

// NewRatingService creates a new rating service. metrics may be nil.
func NewRatingService(companies repositories.CompanyRepository, ratings repositories.RatingRepository, aggregation *AggregationService, activity *ActivityRecorder, metrics *observability.Metrics) *RatingService {
	return &RatingService{
		companies:   companies,
		ratings:     ratings,
		aggregation: aggregation,
		activity:    activity,
		metrics:     metrics,
	}
}

// SubmitRating stores the customer's rating of a company and returns the
// refreshed aggregate. A second rating for the same pair is rejected with
// entities.ErrDuplicateRating and leaves the aggregate unchanged.
func (s *RatingService) SubmitRating(ctx context.Context, companyID string, customer *entities.User, value float64) (*RatingSummary, error) {
	ctx, span := observability.StartSpan(ctx, "RatingService.SubmitRating")
	defer span.End()

	if !entities.ValidRating(value) {
		return nil, entities.ErrInvalidRating
	}
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ratings.GetByCompanyAndUser(ctx, companyID, customer.ID); err == nil {
		return nil, entities.ErrDuplicateRating
	} else if !errors.Is(err, entities.ErrRatingNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	rating := &entities.Rating{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		UserID:    customer.ID,
		Rating:    value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	start := time.Now()
	err = s.ratings.Create(ctx, rating)
	observability.RecordDBMetric(ctx, s.metrics, "ratings.create", time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	agg, err := s.aggregation.RefreshAggregate(ctx, companyID)
	if err != nil {
		return nil, err
	}

	observability.RecordRating(ctx, s.metrics, companyID)
	s.activity.Record(ctx, entities.ActivityCompanyRated, companyID, customer.ID, map[string]interface{}{
		"rating": value,
	})

	refreshed := *company
	refreshed.AverageRating = agg.AverageRating
	refreshed.TotalReviews = agg.TotalReviews
	return &RatingSummary{Company: &refreshed, MyRating: &rating.Rating}, nil
}

// GetMyRating returns the customer's rating of a company, or nil
func (s *RatingService) GetMyRating(ctx context.Context, companyID, customerID string) (*float64, error) {
	rating, err := s.ratings.GetByCompanyAndUser(ctx, companyID, customerID)
	if errors.Is(err, entities.ErrRatingNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating.Rating, nil
}

// RatingSummary returns the company aggregate and, when customer is set, the
// customer's own rating
func (s *RatingService) RatingSummary(ctx context.Context, companyID string, customer *entities.User) (*RatingSummary, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	summary := &RatingSummary{Company: company}
	if customer != nil {
		if summary.MyRating, err = s.GetMyRating(ctx, companyID, customer.ID); err != nil {
			return nil, err
		}
	}
	return summary, nil
}
