package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/businesstrust/backend/pkg/errors"
)

// EventAdapter records activity events
type EventAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewEventAdapter creates a new activity event adapter
func NewEventAdapter(client *postgres.Client) repositories.EventRepository {
	return &EventAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts an activity event
func (a *EventAdapter) Create(ctx context.Context, event *entities.ActivityEvent) error {
	payload := event.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewInternalError("failed to encode event payload", err)
	}

	record := goqu.Record{
		"id":         event.ID,
		"event_type": string(event.EventType),
		"company_id": sql.NullString{String: event.CompanyID, Valid: event.CompanyID != ""},
		"user_id":    event.UserID,
		"payload":    string(data),
		"created_at": event.CreatedAt,
	}

	query, args, err := a.db.Insert("activity_events").Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build event insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to record activity event", err)
	}
	return nil
}
