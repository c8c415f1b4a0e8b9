package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/database"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/providers"
)

const (
	// HTTPCachePrefix prefixes response cache keys written by the cache middleware
	HTTPCachePrefix = "http:cache:"
	// listingCachePattern matches the cached public company listings
	listingCachePattern = HTTPCachePrefix + "/api/compan*"
)

// CacheInvalidationService evicts cached company data when company events
// arrive on the bus. It keeps other replicas' caches coherent with writes
// made elsewhere.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.CompanyEventsChannel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to company events: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.processEvents(eventChan)
	}()
	log.Info().Msg("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service and waits for the worker to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.CompanyEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.CompanyEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := log.With().
		Str("event_id", event.ID).
		Str("company_id", event.CompanyID).
		Str("event_type", string(event.EventType)).
		Logger()

	if event.CompanyID != "" {
		if err := s.InvalidateCompanyCache(ctx, event.CompanyID); err != nil {
			logger.Warn().Err(err).Msg("Failed to invalidate company cache")
		}
	} else if err := s.cache.DeletePattern(ctx, "company:*"); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate company caches")
	}

	// Listings embed aggregates, so every company event makes them stale.
	if err := s.InvalidateListingCaches(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate listing caches")
		return
	}
	logger.Debug().Msg("Invalidated caches for company event")
}

// InvalidateCompanyCache evicts the cached record of one company
func (s *CacheInvalidationService) InvalidateCompanyCache(ctx context.Context, companyID string) error {
	if err := s.cache.Delete(ctx, database.CompanyCacheKey(companyID)); err != nil {
		return fmt.Errorf("failed to invalidate company cache: %w", err)
	}
	return nil
}

// InvalidateListingCaches evicts every cached public company listing
func (s *CacheInvalidationService) InvalidateListingCaches(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, listingCachePattern); err != nil {
		return fmt.Errorf("failed to invalidate pattern %s: %w", listingCachePattern, err)
	}
	return nil
}
