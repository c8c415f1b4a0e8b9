package providers

import (
	"context"

	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
)

// EventBus publishes and subscribes to company change events
type EventBus interface {
	Publish(ctx context.Context, channel string, event *entities.CompanyEvent) error
	Subscribe(ctx context.Context, channel string) (<-chan *entities.CompanyEvent, error)
	Unsubscribe(ctx context.Context, channel string) error
	Close() error
}

const (
	// CompanyEventsChannel receives every company event
	CompanyEventsChannel = "companies:events"
)

// CompanyChannel returns the per-company event channel
func CompanyChannel(companyID string) string {
	return "company:" + companyID + ":events"
}
