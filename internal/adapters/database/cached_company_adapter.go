package database

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/providers"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
)

// companyByIDTTL is the cache lifetime of a single company, in seconds
const companyByIDTTL = 300

// CompanyCacheKey returns the cache key of a single company
func CompanyCacheKey(id string) string {
	return "company:" + id
}

// CachedCompanyAdapter wraps a CompanyRepository with a read-through cache
// for single-company lookups. Writes evict before returning.
type CachedCompanyAdapter struct {
	repositories.CompanyRepository
	cache providers.CacheProvider
}

// NewCachedCompanyAdapter creates a new cached company adapter
func NewCachedCompanyAdapter(adapter repositories.CompanyRepository, cache providers.CacheProvider) *CachedCompanyAdapter {
	return &CachedCompanyAdapter{CompanyRepository: adapter, cache: cache}
}

// GetByID retrieves a company by ID with caching
func (a *CachedCompanyAdapter) GetByID(ctx context.Context, id string) (*entities.Company, error) {
	key := CompanyCacheKey(id)

	if cached, err := a.cache.Get(ctx, key); err == nil {
		var company entities.Company
		if err := json.Unmarshal(cached, &company); err == nil {
			return &company, nil
		}
		log.Warn().Err(err).Str("company_id", id).Msg("Discarding undecodable cached company")
	} else if !errors.Is(err, providers.ErrCacheMiss) {
		log.Warn().Err(err).Str("company_id", id).Msg("Company cache read failed")
	}

	company, err := a.CompanyRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(company)
	if err != nil {
		return company, nil
	}
	if err := a.cache.Set(ctx, key, data, companyByIDTTL); err != nil {
		log.Warn().Err(err).Str("company_id", id).Msg("Failed to cache company")
	}

	return company, nil
}

// Prime stores an already loaded company in the cache
func (a *CachedCompanyAdapter) Prime(ctx context.Context, company *entities.Company) error {
	data, err := json.Marshal(company)
	if err != nil {
		return err
	}
	return a.cache.Set(ctx, CompanyCacheKey(company.ID), data, companyByIDTTL)
}

// Update persists the profile and evicts the cached copy
func (a *CachedCompanyAdapter) Update(ctx context.Context, company *entities.Company) error {
	if err := a.CompanyRepository.Update(ctx, company); err != nil {
		return err
	}
	a.Evict(ctx, company.ID)
	return nil
}

// RefreshAggregate recomputes the aggregate and evicts the cached copy
func (a *CachedCompanyAdapter) RefreshAggregate(ctx context.Context, companyID string) (*entities.RatingAggregate, error) {
	agg, err := a.CompanyRepository.RefreshAggregate(ctx, companyID)
	if err != nil {
		return nil, err
	}
	a.Evict(ctx, companyID)
	return agg, nil
}

// ResetScores zeroes scores and evicts every cached company
func (a *CachedCompanyAdapter) ResetScores(ctx context.Context) (int64, error) {
	n, err := a.CompanyRepository.ResetScores(ctx)
	if err != nil {
		return 0, err
	}
	if err := a.cache.DeletePattern(ctx, CompanyCacheKey("*")); err != nil {
		log.Warn().Err(err).Msg("Failed to evict cached companies")
	}
	return n, nil
}

// Evict drops the cached copy of a company. Failures are logged only.
func (a *CachedCompanyAdapter) Evict(ctx context.Context, id string) {
	if err := a.cache.Delete(ctx, CompanyCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("company_id", id).Msg("Failed to evict cached company")
	}
}
