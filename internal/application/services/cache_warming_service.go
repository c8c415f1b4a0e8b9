package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
)

// warmTopCompanies is how many of the best rated companies are kept warm
const warmTopCompanies = 50

// CompanyPrimer stores a loaded company in the read cache
type CompanyPrimer interface {
	Prime(ctx context.Context, company *entities.Company) error
}

// CacheWarmingService keeps the detail cache of the best rated companies warm
type CacheWarmingService struct {
	companies repositories.CompanyRepository
	primer    CompanyPrimer
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(companies repositories.CompanyRepository, primer CompanyPrimer) *CacheWarmingService {
	return &CacheWarmingService{companies: companies, primer: primer}
}

// WarmCache primes the cache with the top rated active companies and returns
// how many were stored
func (s *CacheWarmingService) WarmCache(ctx context.Context) (int, error) {
	companies, err := s.companies.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch top companies: %w", err)
	}
	if len(companies) > warmTopCompanies {
		companies = companies[:warmTopCompanies]
	}

	warmed := 0
	for _, c := range companies {
		if err := s.primer.Prime(ctx, c); err != nil {
			log.Warn().Err(err).Str("company_id", c.ID).Msg("Failed to warm company")
			continue
		}
		warmed++
	}
	return warmed, nil
}

// StartPeriodicWarming warms once, then again every interval until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	warm := func() {
		n, err := s.WarmCache(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Cache warming failed")
			return
		}
		log.Debug().Int("companies", n).Msg("Warmed company cache")
	}

	warm()
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				warm()
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("Started periodic cache warming")
}
