// Package policy holds the role-based access rules for enquiries and users.
// Each action gets an explicit predicate so the rules stay testable without
// any HTTP plumbing. Denials return DomainError; field-level restrictions
// are applied by silently stripping the disallowed fields and letting the
// request succeed.
package policy

import (
	"github.com/cloudblitz/enquiry-service/internal/domain"
	apperrors "github.com/cloudblitz/enquiry-service/pkg/util"
)

// EnquiryChanges is a partial enquiry update. Nil fields are untouched.
type EnquiryChanges struct {
	CustomerName *string
	Email        *string
	Phone        *string
	Message      *string
	Status       *domain.EnquiryStatus
	Priority     *domain.EnquiryPriority
	AssignedTo   *string
	Notes        *[]string
}

// CanCreateEnquiry allows everyone, anonymous callers included. Enquiry
// creation is the public contact-form entry point.
func CanCreateEnquiry(actor *domain.User) error {
	return nil
}

// CanReadEnquiry gates single-record reads: admin reads anything, other
// roles only records they created or are assigned to.
func CanReadEnquiry(actor *domain.User, enquiry *domain.Enquiry) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	if enquiry.IsOwnedBy(actor.ID) || enquiry.IsAssignedTo(actor.ID) {
		return nil
	}
	return apperrors.NewForbidden("not permitted to access this enquiry")
}

// CanUpdateEnquiry gates non-assignment updates: admin and staff update any
// record, plain users only their own.
func CanUpdateEnquiry(actor *domain.User, enquiry *domain.Enquiry) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role.IsPrivileged() {
		return nil
	}
	if enquiry.IsOwnedBy(actor.ID) {
		return nil
	}
	return apperrors.NewForbidden("not permitted to access this enquiry")
}

// CanAssignEnquiry gates the explicit assignment endpoint and auto
// reassignment: admin and staff only.
func CanAssignEnquiry(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role.IsPrivileged() {
		return nil
	}
	return apperrors.NewForbidden("not permitted to assign enquiries")
}

// CanDeleteEnquiry gates soft deletion: admin deletes anything, other roles
// only records they created. Being the assignee is deliberately not enough.
func CanDeleteEnquiry(actor *domain.User, enquiry *domain.Enquiry) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	if enquiry.IsOwnedBy(actor.ID) {
		return nil
	}
	return apperrors.NewForbidden("not permitted to delete this enquiry")
}

// SanitizeEnquiryChanges strips workflow fields a plain user may not touch.
// Stripping is silent: the update proceeds and returns the sanitized record,
// never an error.
func SanitizeEnquiryChanges(actor *domain.User, changes EnquiryChanges) EnquiryChanges {
	if actor != nil && actor.Role.IsPrivileged() {
		return changes
	}
	changes.Status = nil
	changes.AssignedTo = nil
	return changes
}
