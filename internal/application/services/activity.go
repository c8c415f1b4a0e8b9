package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
)

// ActivityRecorder appends audit events. Failures are logged and never
// surface to the caller.
type ActivityRecorder struct {
	events repositories.EventRepository
}

// NewActivityRecorder creates a recorder; a nil repository disables recording
func NewActivityRecorder(events repositories.EventRepository) *ActivityRecorder {
	return &ActivityRecorder{events: events}
}

// Record stores one activity event
func (r *ActivityRecorder) Record(ctx context.Context, eventType entities.ActivityEventType, companyID, userID string, payload map[string]interface{}) {
	if r == nil || r.events == nil {
		return
	}

	event := &entities.ActivityEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		CompanyID: companyID,
		UserID:    userID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.events.Create(ctx, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("event_type", string(eventType)).
			Str("user_id", userID).
			Msg("Failed to record activity event")
	}
}
