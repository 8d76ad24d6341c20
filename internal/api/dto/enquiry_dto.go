package dto

import (
	"time"

	"github.com/cloudblitz/enquiry-service/internal/domain"
)

// CreateEnquiryRequest payload.
type CreateEnquiryRequest struct {
	CustomerName string                  `json:"customerName" validate:"required"`
	Email        string                  `json:"email" validate:"required,email"`
	Phone        string                  `json:"phone" validate:"required"`
	Message      string                  `json:"message" validate:"required,min=10,max=1000"`
	Priority     *domain.EnquiryPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	AutoAssign   bool                    `json:"autoAssign"`
}

// UpdateEnquiryRequest payload; nil fields are untouched. assignedTo and
// status are stripped for plain users before the update is applied, so
// they carry no validate tags; the service checks them after stripping.
type UpdateEnquiryRequest struct {
	CustomerName *string                 `json:"customerName" validate:"omitempty,min=1"`
	Email        *string                 `json:"email" validate:"omitempty,email"`
	Phone        *string                 `json:"phone"`
	Message      *string                 `json:"message" validate:"omitempty,min=10,max=1000"`
	Status       *domain.EnquiryStatus   `json:"status"`
	Priority     *domain.EnquiryPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo   *string                 `json:"assignedTo"`
	Notes        *[]string               `json:"notes"`
	AutoAssign   bool                    `json:"autoAssign"`
}

// AssignEnquiryRequest payload for the explicit assignment endpoint.
type AssignEnquiryRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// EnquiryResponse is the wire representation of an enquiry.
type EnquiryResponse struct {
	ID           string                 `json:"id"`
	CustomerName string                 `json:"customerName"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone"`
	Message      string                 `json:"message"`
	Status       domain.EnquiryStatus   `json:"status"`
	Priority     domain.EnquiryPriority `json:"priority"`
	AssignedTo   *string                `json:"assignedTo"`
	CreatedBy    *string                `json:"createdBy"`
	Notes        []string               `json:"notes"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}
