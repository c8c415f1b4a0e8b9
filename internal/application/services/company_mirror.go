package services

import (
	"context"

	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/providers"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
)

// companyMirror propagates company changes to the search index and the event
// bus. Postgres stays the source of truth, so failures are only logged.
type companyMirror struct {
	companies repositories.CompanyRepository
	search    repositories.CompanySearchRepository
	eventBus  providers.EventBus
}

func newCompanyMirror(companies repositories.CompanyRepository, search repositories.CompanySearchRepository, eventBus providers.EventBus) *companyMirror {
	return &companyMirror{companies: companies, search: search, eventBus: eventBus}
}

func (m *companyMirror) reindex(ctx context.Context, companyID string) {
	if m.search == nil {
		return
	}

	logger := observability.LoggerFromContext(ctx)
	company, err := m.companies.GetByID(ctx, companyID)
	if err != nil {
		logger.Warn().Err(err).Str("company_id", companyID).Msg("Failed to load company for indexing")
		return
	}
	if err := m.search.Index(ctx, company); err != nil {
		logger.Warn().Err(err).Str("company_id", companyID).Msg("Failed to index company")
	}
}

func (m *companyMirror) publish(ctx context.Context, event *entities.CompanyEvent) {
	if m.eventBus == nil {
		return
	}

	logger := observability.LoggerFromContext(ctx)
	if err := m.eventBus.Publish(ctx, providers.CompanyEventsChannel, event); err != nil {
		logger.Warn().Err(err).Str("company_id", event.CompanyID).Str("event_type", string(event.EventType)).Msg("Failed to publish company event")
		return
	}
	if event.CompanyID != "" {
		if err := m.eventBus.Publish(ctx, providers.CompanyChannel(event.CompanyID), event); err != nil {
			logger.Warn().Err(err).Str("company_id", event.CompanyID).Msg("Failed to publish company event")
		}
	}
}
