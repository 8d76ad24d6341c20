package policy

import (
	"github.com/cloudblitz/enquiry-service/internal/domain"
	apperrors "github.com/cloudblitz/enquiry-service/pkg/util"
)

// UserChanges is a partial user update. Nil fields are untouched. Password
// carries the plaintext; hashing happens in the service.
type UserChanges struct {
	Name            *string
	Email           *string
	Password        *string
	Role            *domain.Role
	IsActive        *bool
	HasSeenTutorial *bool
}

// CanListUsers restricts the user directory to admins.
func CanListUsers(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	return apperrors.NewForbidden("admin role required")
}

// CanReadUser allows any authenticated caller to read any user record.
// Deliberately looser than the enquiry read gate.
func CanReadUser(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return nil
}

// CanCreateUser restricts account creation (outside self-registration)
// to admins.
func CanCreateUser(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	return apperrors.NewForbidden("admin role required")
}

// CanUpdateUser allows admins to update anyone and everyone else only
// themselves.
func CanUpdateUser(actor *domain.User, target *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role == domain.RoleAdmin || actor.ID == target.ID {
		return nil
	}
	return apperrors.NewForbidden("not permitted to update this user")
}

// CanDeleteUser restricts deletion to admins. The last-admin invariant is
// enforced separately by the service, which owns the admin count query.
func CanDeleteUser(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	return apperrors.NewForbidden("admin role required")
}

// SanitizeUserChanges drops fields the caller may not change. Non-admins
// never change roles; a non-admin touching someone else's tutorial flag is
// ignored too. Activation is left alone: a user may deactivate their own
// account, and foreign updates never reach this point for non-admins. The
// update still succeeds with the remaining fields.
func SanitizeUserChanges(actor *domain.User, target *domain.User, changes UserChanges) UserChanges {
	if actor == nil || actor.Role == domain.RoleAdmin {
		return changes
	}
	changes.Role = nil
	if actor.ID != target.ID {
		changes.HasSeenTutorial = nil
	}
	return changes
}
