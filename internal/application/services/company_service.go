package services

import (
	"context"
	"strings"

	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/providers"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
)

const (
	// SearchLimit caps the number of search results
	SearchLimit = 200
	// DefaultTopLimit is the per-category size of the top listing
	DefaultTopLimit = 5
	// DefaultRecommendationLimit is the default size of the recommendations listing
	DefaultRecommendationLimit = 10
	// maxSearchCandidates bounds the ids requested from the search index
	maxSearchCandidates = 250
)

// CompanyService serves the public company listings and the owner profile
type CompanyService struct {
	companies repositories.CompanyRepository
	search    repositories.CompanySearchRepository
	mirror    *companyMirror
}

// NewCompanyService creates a new company service. search and eventBus may be nil.
func NewCompanyService(companies repositories.CompanyRepository, search repositories.CompanySearchRepository, eventBus providers.EventBus) *CompanyService {
	return &CompanyService{
		companies: companies,
		search:    search,
		mirror:    newCompanyMirror(companies, search, eventBus),
	}
}

// Search returns active companies matching filter ordered by rating then name.
// Name queries go to the search index when one is configured; the database
// serves everything else and any index failure.
func (s *CompanyService) Search(ctx context.Context, filter repositories.CompanyFilter) ([]*entities.Company, error) {
	ctx, span := observability.StartSpan(ctx, "CompanyService.Search")
	defer span.End()

	filter = trimFilter(filter)
	filter.Limit = SearchLimit

	if s.search != nil && filter.Query != "" {
		results, err := s.searchIndex(ctx, filter)
		if err == nil {
			return results, nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("query", filter.Query).Msg("Search index unavailable, falling back to database")
	}

	return s.companies.Search(ctx, filter)
}

func (s *CompanyService) searchIndex(ctx context.Context, filter repositories.CompanyFilter) ([]*entities.Company, error) {
	indexFilter := filter
	indexFilter.Limit = maxSearchCandidates

	ids, err := s.search.Search(ctx, indexFilter)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*entities.Company{}, nil
	}

	hydrated, err := s.companies.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]*entities.Company, 0, len(hydrated))
	for _, c := range hydrated {
		if !c.IsActive || !matchesFilter(c, filter) {
			continue
		}
		results = append(results, c)
		if len(results) == filter.Limit {
			break
		}
	}
	return results, nil
}

// TopByCategory returns, per active category, the best rated companies
func (s *CompanyService) TopByCategory(ctx context.Context, limit int) (map[string][]*entities.Company, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	categories, err := s.companies.Categories(ctx)
	if err != nil {
		return nil, err
	}

	top := make(map[string][]*entities.Company, len(categories))
	for _, category := range categories {
		companies, err := s.companies.TopByCategory(ctx, category, limit)
		if err != nil {
			return nil, err
		}
		top[category] = companies
	}
	return top, nil
}

// Recommendations returns active companies ordered by reputation, rating then name
func (s *CompanyService) Recommendations(ctx context.Context, filter repositories.CompanyFilter) ([]*entities.Company, error) {
	filter = trimFilter(filter)
	if filter.Limit <= 0 {
		filter.Limit = DefaultRecommendationLimit
	}
	return s.companies.Recommendations(ctx, filter)
}

// List returns all active companies
func (s *CompanyService) List(ctx context.Context) ([]*entities.Company, error) {
	return s.companies.List(ctx)
}

// Get returns a company by id
func (s *CompanyService) Get(ctx context.Context, id string) (*entities.Company, error) {
	return s.companies.GetByID(ctx, id)
}

// UpdateProfile applies an owner edit to company. Name and category may not
// be cleared.
func (s *CompanyService) UpdateProfile(ctx context.Context, company *entities.Company, patch entities.CompanyProfilePatch) (*entities.Company, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, entities.ErrProfileFieldRequired
	}
	if patch.Category != nil && strings.TrimSpace(*patch.Category) == "" {
		return nil, entities.ErrProfileFieldRequired
	}

	updated := *company
	changed := patch.Apply(&updated)
	if len(changed) == 0 {
		return company, nil
	}

	if err := s.companies.Update(ctx, &updated); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{}, len(changed))
	for _, name := range changed {
		fields[name] = true
	}
	s.mirror.reindex(ctx, updated.ID)
	s.mirror.publish(ctx, entities.NewCompanyEvent(updated.ID, entities.CompanyEventProfileUpdated, fields))

	return s.companies.GetByID(ctx, updated.ID)
}

func trimFilter(f repositories.CompanyFilter) repositories.CompanyFilter {
	f.Query = strings.TrimSpace(f.Query)
	f.Category = strings.TrimSpace(f.Category)
	f.City = strings.TrimSpace(f.City)
	f.Country = strings.TrimSpace(f.Country)
	return f
}

func matchesFilter(c *entities.Company, f repositories.CompanyFilter) bool {
	return containsFold(c.Name, f.Query) &&
		containsFold(c.Category, f.Category) &&
		containsFold(c.City, f.City) &&
		containsFold(c.Country, f.Country)
}

func containsFold(field, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(field), strings.ToLower(needle))
}

// ReindexAll pushes every company to the search index and returns how many
// were indexed. Inactive companies are indexed too and filtered at query time.
func (s *CompanyService) ReindexAll(ctx context.Context) (int, error) {
	if s.search == nil {
		return 0, nil
	}

	ids, err := s.companies.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		company, err := s.companies.GetByID(ctx, id)
		if err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("company_id", id).Msg("Skipping company during reindex")
			continue
		}
		if err := s.search.Index(ctx, company); err != nil {
			return indexed, err
		}
		indexed++
	}
	return indexed, nil
}
