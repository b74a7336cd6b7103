// internal/models/notification.go
package models

// Notification is an operator alert about a pipeline failure.
type Notification struct {
	ID        string                 `json:"id"`
	Channel   string                 `json:"channel"` // "ses" or "sns"
	Subject   string                 `json:"subject"`
	Body      string                 `json:"body"`
	Status    string                 `json:"status"` // "sent", "failed", "disabled"
	Payload   map[string]interface{} `json:"payload,omitempty"`
	SentAt    string                 `json:"sentAt,omitempty"`
	CreatedAt string                 `json:"createdAt"`
}

const (
	NotificationStatusSent     = "sent"
	NotificationStatusFailed   = "failed"
	NotificationStatusDisabled = "disabled"
)
