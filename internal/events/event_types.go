package events

import (
	"time"

	"github.com/cloudblitz/enquiry-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEnquiryCreated       EventType = "enquiry_created"
	EventEnquiryAssigned      EventType = "enquiry_assigned"
	EventEnquiryStatusChanged EventType = "enquiry_status_changed"
	EventEnquiryDeleted       EventType = "enquiry_deleted"
	EventUserCreated          EventType = "user_created"
)

// Actor encapsulates actor metadata for an event. A nil UserID means the
// action was taken anonymously.
type Actor struct {
	UserID *string     `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EnquiryID string      `json:"enquiry_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EnquiryCreatedPayload payload.
type EnquiryCreatedPayload struct {
	CustomerName string                 `json:"customer_name"`
	Priority     domain.EnquiryPriority `json:"priority"`
	AssignedTo   *string                `json:"assigned_to,omitempty"`
	AutoAssigned bool                   `json:"auto_assigned"`
}

// EnquiryAssignedPayload payload.
type EnquiryAssignedPayload struct {
	AssignedTo *string `json:"assigned_to,omitempty"`
	Previous   *string `json:"previous,omitempty"`
}

// EnquiryStatusChangedPayload payload.
type EnquiryStatusChangedPayload struct {
	OldStatus domain.EnquiryStatus `json:"old_status"`
	NewStatus domain.EnquiryStatus `json:"new_status"`
}

// EnquiryDeletedPayload payload.
type EnquiryDeletedPayload struct {
	CustomerName string `json:"customer_name"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}
