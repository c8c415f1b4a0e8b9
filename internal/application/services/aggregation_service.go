package services

import (
	"context"
	"time"

	"github.com/zatekoja/businesstrust/backend/internal/adapters/loaders"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/providers"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
)

// RatingFeedback is one rating as shown to the rated company
type RatingFeedback struct {
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentFeedback is one comment as shown to the commented company
type CommentFeedback struct {
	UserID    string    `json:"user_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	Sentiment float64   `json:"sentiment"`
}

// FeedbackReport is the derived view a company gets of its own feedback
type FeedbackReport struct {
	Company          *entities.Company
	AverageSentiment float64
	ReputationScore  float64
	Ratings          []RatingFeedback
	Comments         []CommentFeedback
}

// AggregationService keeps derived company fields in sync with the rating
// set and mirrors them to the search index and event bus
type AggregationService struct {
	companies repositories.CompanyRepository
	ratings   repositories.RatingRepository
	comments  repositories.CommentRepository
	users     repositories.UserRepository
	mirror    *companyMirror
	flags     *FeatureFlags
}

// NewAggregationService creates a new aggregation service. search and
// eventBus may be nil.
func NewAggregationService(
	companies repositories.CompanyRepository,
	ratings repositories.RatingRepository,
	comments repositories.CommentRepository,
	users repositories.UserRepository,
	search repositories.CompanySearchRepository,
	eventBus providers.EventBus,
	flags *FeatureFlags,
) *AggregationService {
	return &AggregationService{
		companies: companies,
		ratings:   ratings,
		comments:  comments,
		users:     users,
		mirror:    newCompanyMirror(companies, search, eventBus),
		flags:     flags,
	}
}

// RefreshAggregate recomputes the rating aggregate of a company from its full
// rating set. Search and bus failures are logged only.
func (s *AggregationService) RefreshAggregate(ctx context.Context, companyID string) (*entities.RatingAggregate, error) {
	ctx, span := observability.StartSpan(ctx, "AggregationService.RefreshAggregate")
	defer span.End()

	agg, err := s.companies.RefreshAggregate(ctx, companyID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.mirror.reindex(ctx, companyID)
	s.mirror.publish(ctx, entities.NewCompanyEvent(companyID, entities.CompanyEventAggregateUpdated, map[string]interface{}{
		"average_rating": agg.AverageRating,
		"total_reviews":  agg.TotalReviews,
	}))

	return agg, nil
}

// Feedback returns the ratings and comments of company with a freshly
// recomputed aggregate
func (s *AggregationService) Feedback(ctx context.Context, company *entities.Company) (*FeedbackReport, error) {
	ratings, err := s.ratings.ListByCompany(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByCompany(ctx, company.ID, 0)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(ratings))
	for _, r := range ratings {
		ids = append(ids, r.UserID)
	}
	l := loaders.For(ctx)
	if l == nil {
		l = loaders.NewLoaders(s.users, s.companies)
	}
	raters, err := l.LoadUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	agg, err := s.RefreshAggregate(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	refreshed := *company
	refreshed.AverageRating = agg.AverageRating
	refreshed.TotalReviews = agg.TotalReviews

	report := &FeedbackReport{
		Company:         &refreshed,
		ReputationScore: company.ReputationScore,
		Ratings:         make([]RatingFeedback, 0, len(ratings)),
		Comments:        make([]CommentFeedback, 0, len(comments)),
	}

	for _, r := range ratings {
		name := "Anonymous"
		if u, ok := raters[r.UserID]; ok {
			name = u.DisplayName()
		}
		report.Ratings = append(report.Ratings, RatingFeedback{
			UserID:    r.UserID,
			UserName:  name,
			Rating:    r.Rating,
			CreatedAt: r.CreatedAt,
		})
	}

	var total float64
	for _, c := range comments {
		score := Sentiment(c.Comment)
		total += score
		report.Comments = append(report.Comments, CommentFeedback{
			UserID:    c.UserID,
			Comment:   c.Comment,
			CreatedAt: c.CreatedAt,
			Sentiment: score,
		})
	}
	if s.flags.SentimentSummaryEnabled() && len(comments) > 0 {
		report.AverageSentiment = total / float64(len(comments))
	}

	return report, nil
}

// RecomputeAll refreshes the aggregate of every company and returns how many
// were refreshed
func (s *AggregationService) RecomputeAll(ctx context.Context) (int, error) {
	ids, err := s.companies.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	logger := observability.LoggerFromContext(ctx)
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := s.RefreshAggregate(ctx, id); err != nil {
			return i, err
		}
		if (i+1)%100 == 0 {
			logger.Info().Int("done", i+1).Int("total", len(ids)).Msg("Recomputing company aggregates")
		}
	}
	return len(ids), nil
}

// ResetScores zeroes reputation and recommendation scores on every company
func (s *AggregationService) ResetScores(ctx context.Context) (int64, error) {
	n, err := s.companies.ResetScores(ctx)
	if err != nil {
		return 0, err
	}

	if s.mirror.search != nil {
		ids, err := s.companies.ListIDs(ctx)
		if err != nil {
			return n, err
		}
		for _, id := range ids {
			s.mirror.reindex(ctx, id)
		}
	}

	s.mirror.publish(ctx, entities.NewCompanyEvent("", entities.CompanyEventScoresReset, map[string]interface{}{
		"companies": n,
	}))
	return n, nil
}
