package domain

import "time"

// EnquiryStatus enumerates lifecycle states for enquiries.
type EnquiryStatus string

const (
	EnquiryStatusNew        EnquiryStatus = "new"
	EnquiryStatusInProgress EnquiryStatus = "in-progress"
	EnquiryStatusClosed     EnquiryStatus = "closed"
)

// IsValid reports whether the status is a known value.
func (s EnquiryStatus) IsValid() bool {
	switch s {
	case EnquiryStatusNew, EnquiryStatusInProgress, EnquiryStatusClosed:
		return true
	}
	return false
}

// EnquiryPriority enumerates handling urgency.
type EnquiryPriority string

const (
	EnquiryPriorityLow    EnquiryPriority = "low"
	EnquiryPriorityMedium EnquiryPriority = "medium"
	EnquiryPriorityHigh   EnquiryPriority = "high"
)

// IsValid reports whether the priority is a known value.
func (p EnquiryPriority) IsValid() bool {
	switch p {
	case EnquiryPriorityLow, EnquiryPriorityMedium, EnquiryPriorityHigh:
		return true
	}
	return false
}

// Enquiry is the aggregate for customer contact requests and their handling
// state. AssignedTo and CreatedBy are weak references; deleting a user never
// cascades to their enquiries. DeletedAt marks soft deletion; live records
// have it unset and are the only ones returned by default queries.
type Enquiry struct {
	ID           string
	CustomerName string
	Email        string
	Phone        string
	Message      string
	Status       EnquiryStatus
	Priority     EnquiryPriority
	AssignedTo   *string
	CreatedBy    *string
	Notes        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// IsOwnedBy reports whether the given user created the enquiry.
func (e *Enquiry) IsOwnedBy(userID string) bool {
	return e.CreatedBy != nil && *e.CreatedBy == userID
}

// IsAssignedTo reports whether the given user is the current assignee.
func (e *Enquiry) IsAssignedTo(userID string) bool {
	return e.AssignedTo != nil && *e.AssignedTo == userID
}
