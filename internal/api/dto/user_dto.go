package dto

import (
	"time"

	"github.com/cloudblitz/enquiry-service/internal/domain"
)

// RegisterRequest payload for self-registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateUserRequest payload for admin-initiated account creation.
type CreateUserRequest struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8"`
	Role     domain.Role `json:"role" validate:"omitempty,oneof=admin staff user"`
	IsActive *bool       `json:"isActive"`
}

// UpdateUserRequest payload; nil fields are untouched. role and isActive
// are stripped for non-admin callers, hasSeenTutorial for non-admins
// targeting another account.
type UpdateUserRequest struct {
	Name            *string      `json:"name" validate:"omitempty,min=1"`
	Email           *string      `json:"email" validate:"omitempty,email"`
	Password        *string      `json:"password" validate:"omitempty,min=8"`
	Role            *domain.Role `json:"role" validate:"omitempty,oneof=admin staff user"`
	IsActive        *bool        `json:"isActive"`
	HasSeenTutorial *bool        `json:"hasSeenTutorial"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// PasswordChangeRequest payload.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// UserResponse is the wire representation of a user; the password hash
// never leaves the service.
type UserResponse struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Role            domain.Role `json:"role"`
	IsActive        bool        `json:"isActive"`
	HasSeenTutorial bool        `json:"hasSeenTutorial"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
