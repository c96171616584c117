package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPostCreated     EventType = "post_created"
	EventPostUpdated     EventType = "post_updated"
	EventPostDeleted     EventType = "post_deleted"
	EventCategoryChanged EventType = "category_changed"
	EventUserProvisioned EventType = "user_provisioned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// PostChangedPayload accompanies post lifecycle events.
type PostChangedPayload struct {
	PostID    int64  `json:"post_id"`
	Slug      string `json:"slug"`
	Published bool   `json:"published"`
}

// CategoryChangedPayload accompanies category lifecycle events.
type CategoryChangedPayload struct {
	CategoryID int64  `json:"category_id"`
	Slug       string `json:"slug"`
}

// UserProvisionedPayload accompanies first-time account creation, regardless
// of origin (registration or external login).
type UserProvisionedPayload struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}
