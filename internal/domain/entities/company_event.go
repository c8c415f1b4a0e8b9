package entities

import (
	"time"

	"github.com/google/uuid"
)

// CompanyEventType represents the type of company event
type CompanyEventType string

const (
	CompanyEventAggregateUpdated CompanyEventType = "aggregate_updated"
	CompanyEventProfileUpdated   CompanyEventType = "profile_updated"
	CompanyEventScoresReset      CompanyEventType = "scores_reset"
)

// CompanyEvent is published when a company's derived or profile fields change
type CompanyEvent struct {
	ID            string                 `json:"id"`
	CompanyID     string                 `json:"company_id"`
	EventType     CompanyEventType       `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields map[string]interface{} `json:"changed_fields"`
}

// NewCompanyEvent creates a new company event
func NewCompanyEvent(companyID string, eventType CompanyEventType, changedFields map[string]interface{}) *CompanyEvent {
	return &CompanyEvent{
		ID:            uuid.NewString(),
		CompanyID:     companyID,
		EventType:     eventType,
		Timestamp:     time.Now().UTC(),
		ChangedFields: changedFields,
	}
}
