// Package memory provides mutex-guarded in-process implementations of the
// repository interfaces. They enforce the same uniqueness rules as the
// Postgres schema. Test code only.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/businesstrust/backend/pkg/errors"
)

// Store holds every table. The repository views returned by its accessors
// share one lock.
type Store struct {
	mu       sync.RWMutex
	users    map[string]entities.User
	emails   map[string]string
	tokens   map[string]entities.Token
	company  map[string]entities.Company
	owners   map[string]string
	ratings  map[string]entities.Rating
	rated    map[[2]string]string
	comments []entities.Comment
	events   []entities.ActivityEvent

	now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:   make(map[string]entities.User),
		emails:  make(map[string]string),
		tokens:  make(map[string]entities.Token),
		company: make(map[string]entities.Company),
		owners:  make(map[string]string),
		ratings: make(map[string]entities.Rating),
		rated:   make(map[[2]string]string),
		now:     time.Now,
	}
}

// Users returns the user repository view
func (s *Store) Users() repositories.UserRepository { return (*userRepo)(s) }

// Tokens returns the token repository view
func (s *Store) Tokens() repositories.TokenRepository { return (*tokenRepo)(s) }

// Companies returns the company repository view
func (s *Store) Companies() repositories.CompanyRepository { return (*companyRepo)(s) }

// Ratings returns the rating repository view
func (s *Store) Ratings() repositories.RatingRepository { return (*ratingRepo)(s) }

// Comments returns the comment repository view
func (s *Store) Comments() repositories.CommentRepository { return (*commentRepo)(s) }

// Events returns the activity event repository view
func (s *Store) Events() repositories.EventRepository { return (*eventRepo)(s) }

// ActivityEvents returns a copy of the recorded activity events
func (s *Store) ActivityEvents() []entities.ActivityEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.ActivityEvent(nil), s.events...)
}

// TokenCount returns the number of stored tokens
func (s *Store) TokenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

type userRepo Store

func (r *userRepo) Create(ctx context.Context, user *entities.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	email := entities.NormalizeEmail(user.Email)
	if _, taken := s.emails[email]; taken {
		return entities.ErrDuplicateEmail
	}
	if _, exists := s.users[user.ID]; exists {
		return apperrors.NewConflictError("user id already exists")
	}
	u := *user
	u.Email = email
	s.users[u.ID] = u
	s.emails[email] = u.ID
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entities.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*entities.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[entities.NormalizeEmail(email)]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	u := s.users[id]
	return &u, nil
}

type tokenRepo Store

func (r *tokenRepo) Create(ctx context.Context, token *entities.Token) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[token.TokenHash]; exists {
		return apperrors.NewConflictError("token already exists")
	}
	s.tokens[token.TokenHash] = *token
	return nil
}

func (r *tokenRepo) GetByHash(ctx context.Context, tokenHash string) (*entities.Token, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[tokenHash]
	if !ok {
		return nil, entities.ErrTokenNotFound
	}
	return &t, nil
}

func (r *tokenRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	s := (*Store)(r)
	s.mu.Lock()
	delete(s.tokens, tokenHash)
	s.mu.Unlock()
	return nil
}

type companyRepo Store

func (r *companyRepo) Create(ctx context.Context, company *entities.Company) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, owned := s.owners[company.UserID]; owned {
		return apperrors.NewConflictError("This user already owns a company.")
	}
	s.company[company.ID] = *company
	s.owners[company.UserID] = company.ID
	return nil
}

func (r *companyRepo) GetByID(ctx context.Context, id string) (*entities.Company, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.company[id]
	if !ok {
		return nil, entities.ErrCompanyNotFound
	}
	return &c, nil
}

func (r *companyRepo) GetByIDs(ctx context.Context, ids []string) ([]*entities.Company, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Company, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.company[id]; ok {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *companyRepo) GetByOwner(ctx context.Context, userID string) (*entities.Company, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.owners[userID]
	if !ok {
		return nil, entities.ErrCompanyNotFound
	}
	c := s.company[id]
	return &c, nil
}

func (r *companyRepo) Update(ctx context.Context, company *entities.Company) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.company[company.ID]
	if !ok {
		return entities.ErrCompanyNotFound
	}
	company.UpdatedAt = s.now().UTC()
	c.Name = company.Name
	c.Email = company.Email
	c.Category = company.Category
	c.Description = company.Description
	c.Phone = company.Phone
	c.Address = company.Address
	c.City = company.City
	c.Country = company.Country
	c.UpdatedAt = company.UpdatedAt
	s.company[c.ID] = c
	return nil
}

func (r *companyRepo) List(ctx context.Context) ([]*entities.Company, error) {
	return r.filter(repositories.CompanyFilter{}, byRatingThenName), nil
}

func (r *companyRepo) Search(ctx context.Context, filter repositories.CompanyFilter) ([]*entities.Company, error) {
	return r.filter(filter, byRatingThenName), nil
}

func (r *companyRepo) Recommendations(ctx context.Context, filter repositories.CompanyFilter) ([]*entities.Company, error) {
	return r.filter(filter, byReputation), nil
}

func (r *companyRepo) Categories(ctx context.Context) ([]string, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]struct{}{}
	out := []string{}
	for _, c := range s.company {
		if !c.IsActive || c.Category == "" {
			continue
		}
		if _, ok := seen[c.Category]; !ok {
			seen[c.Category] = struct{}{}
			out = append(out, c.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *companyRepo) TopByCategory(ctx context.Context, category string, limit int) ([]*entities.Company, error) {
	s := (*Store)(r)
	s.mu.RLock()
	out := []*entities.Company{}
	for _, c := range s.company {
		if c.IsActive && c.Category == category {
			c := c
			out = append(out, &c)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		if a.TotalReviews != b.TotalReviews {
			return a.TotalReviews > b.TotalReviews
		}
		return a.Name < b.Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *companyRepo) RefreshAggregate(ctx context.Context, companyID string) (*entities.RatingAggregate, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.company[companyID]
	if !ok {
		return nil, entities.ErrCompanyNotFound
	}

	var sum float64
	count := 0
	for _, rating := range s.ratings {
		if rating.CompanyID == companyID {
			sum += rating.Rating
			count++
		}
	}
	c.AverageRating = 0
	if count > 0 {
		c.AverageRating = sum / float64(count)
	}
	c.TotalReviews = count
	c.UpdatedAt = s.now().UTC()
	s.company[companyID] = c

	agg := c.Aggregate()
	return &agg, nil
}

func (r *companyRepo) ResetScores(ctx context.Context) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, c := range s.company {
		if c.ReputationScore == 0 && c.RecommendationScore == 0 {
			continue
		}
		c.ReputationScore = 0
		c.RecommendationScore = 0
		c.UpdatedAt = s.now().UTC()
		s.company[id] = c
		n++
	}
	return n, nil
}

func (r *companyRepo) ListIDs(ctx context.Context) ([]string, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.company))
	for id := range s.company {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *companyRepo) filter(f repositories.CompanyFilter, less func(a, b *entities.Company) bool) []*entities.Company {
	s := (*Store)(r)
	s.mu.RLock()
	out := []*entities.Company{}
	for _, c := range s.company {
		if !c.IsActive {
			continue
		}
		if !containsFold(c.Name, f.Query) || !containsFold(c.Category, f.Category) ||
			!containsFold(c.City, f.City) || !containsFold(c.Country, f.Country) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func containsFold(field, needle string) bool {
	needle = strings.TrimSpace(needle)
	return needle == "" || strings.Contains(strings.ToLower(field), strings.ToLower(needle))
}

func byRatingThenName(a, b *entities.Company) bool {
	if a.AverageRating != b.AverageRating {
		return a.AverageRating > b.AverageRating
	}
	return a.Name < b.Name
}

func byReputation(a, b *entities.Company) bool {
	if a.ReputationScore != b.ReputationScore {
		return a.ReputationScore > b.ReputationScore
	}
	return byRatingThenName(a, b)
}

type ratingRepo Store

func (r *ratingRepo) Create(ctx context.Context, rating *entities.Rating) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{rating.CompanyID, rating.UserID}
	if _, exists := s.rated[key]; exists {
		return entities.ErrDuplicateRating
	}
	s.ratings[rating.ID] = *rating
	s.rated[key] = rating.ID
	return nil
}

func (r *ratingRepo) GetByCompanyAndUser(ctx context.Context, companyID, userID string) (*entities.Rating, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.rated[[2]string{companyID, userID}]
	if !ok {
		return nil, entities.ErrRatingNotFound
	}
	rating := s.ratings[id]
	return &rating, nil
}

func (r *ratingRepo) ListByCompany(ctx context.Context, companyID string) ([]*entities.Rating, error) {
	s := (*Store)(r)
	s.mu.RLock()
	out := []*entities.Rating{}
	for _, rating := range s.ratings {
		if rating.CompanyID == companyID {
			rating := rating
			out = append(out, &rating)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type commentRepo Store

func (r *commentRepo) Create(ctx context.Context, comment *entities.Comment) error {
	s := (*Store)(r)
	s.mu.Lock()
	s.comments = append(s.comments, *comment)
	s.mu.Unlock()
	return nil
}

// ListByCompany walks the log backwards so equal timestamps keep insertion order reversed
func (r *commentRepo) ListByCompany(ctx context.Context, companyID string, limit int) ([]*entities.Comment, error) {
	s := (*Store)(r)
	s.mu.RLock()
	out := []*entities.Comment{}
	for i := len(s.comments) - 1; i >= 0; i-- {
		if s.comments[i].CompanyID == companyID {
			c := s.comments[i]
			out = append(out, &c)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type eventRepo Store

func (r *eventRepo) Create(ctx context.Context, event *entities.ActivityEvent) error {
	s := (*Store)(r)
	s.mu.Lock()
	s.events = append(s.events, *event)
	s.mu.Unlock()
	return nil
}
