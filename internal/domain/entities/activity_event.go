package entities

import (
	"time"
)

// ActivityEventType names an audited account or feedback action
type ActivityEventType string

const (
	ActivityCompanySignup  ActivityEventType = "company_signup"
	ActivityCompanyLogin   ActivityEventType = "company_login"
	ActivityCustomerSignup ActivityEventType = "customer_signup"
	ActivityCustomerLogin  ActivityEventType = "customer_login"
	ActivityCompanyRated   ActivityEventType = "company_rated"
	ActivityCommentAdded   ActivityEventType = "company_comment_added"
)

// ActivityEvent is an audit trail entry
type ActivityEvent struct {
	ID        string                 `json:"id" db:"id"`
	EventType ActivityEventType      `json:"event_type" db:"event_type"`
	CompanyID string                 `json:"company_id,omitempty" db:"company_id"`
	UserID    string                 `json:"user_id" db:"user_id"`
	Payload   map[string]interface{} `json:"payload,omitempty" db:"payload"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
}
