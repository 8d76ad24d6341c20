package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cloudblitz/enquiry-service/internal/auth"
	"github.com/cloudblitz/enquiry-service/internal/domain"
	"github.com/cloudblitz/enquiry-service/internal/events"
	"github.com/cloudblitz/enquiry-service/internal/policy"
	"github.com/cloudblitz/enquiry-service/internal/repository"
	apperrors "github.com/cloudblitz/enquiry-service/pkg/util"
)

// UserService coordinates account management: admin CRUD, self-service
// updates with field stripping, and the last-admin delete protection.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	BcryptCost int
}

// UserCreateInput describes admin-initiated account creation.
type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	IsActive *bool
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		bcryptCost: deps.BcryptCost,
	}
}

// ListUsers returns accounts; admin only.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if err := policy.CanListUsers(actor); err != nil {
		return nil, err
	}
	result, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// GetUser returns a single account; any authenticated caller may read any
// user record.
func (s *UserService) GetUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if err := policy.CanReadUser(actor); err != nil {
		return nil, err
	}
	return s.fetch(ctx, id)
}

// CreateUser creates an account with an explicit role; admin only.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.User, input UserCreateInput) (*domain.User, error) {
	if err := policy.CanCreateUser(actor); err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.IsValid() {
		return nil, apperrors.NewValidationError("invalid role", nil)
	}
	if err := s.ensureEmailFree(ctx, input.Email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishCreated(ctx, actor, user)
	return user, nil
}

// UpdateUser applies a partial update. Admins may change anything; everyone
// else only themselves, with role, activation and foreign tutorial-flag
// changes silently dropped. Stripped fields are not an error: the response
// is the sanitized record.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, id string, changes policy.UserChanges) (*domain.User, error) {
	target, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanUpdateUser(actor, target); err != nil {
		return nil, err
	}
	changes = policy.SanitizeUserChanges(actor, target, changes)

	if changes.Name != nil {
		target.Name = strings.TrimSpace(*changes.Name)
	}
	if changes.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*changes.Email))
		if email != target.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}
		}
		target.Email = email
	}
	if changes.Password != nil {
		hash, err := auth.HashPassword(*changes.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		target.PasswordHash = hash
	}
	if changes.Role != nil {
		if !changes.Role.IsValid() {
			return nil, apperrors.NewValidationError("invalid role", nil)
		}
		target.Role = *changes.Role
	}
	if changes.IsActive != nil {
		target.IsActive = *changes.IsActive
	}
	if changes.HasSeenTutorial != nil {
		target.HasSeenTutorial = *changes.HasSeenTutorial
	}

	if err := s.users.Update(ctx, target); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return target, nil
}

// DeleteUser removes an account; admin only. Deleting the last remaining
// admin is refused so the system always keeps at least one admin.
func (s *UserService) DeleteUser(ctx context.Context, actor *domain.User, id string) error {
	if err := policy.CanDeleteUser(actor); err != nil {
		return err
	}
	target, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleAdmin {
		count, err := s.users.CountAdmins(ctx)
		if err != nil {
			return apperrors.MapError(err)
		}
		if count <= 1 {
			return apperrors.NewLastAdmin()
		}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *UserService) fetch(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return apperrors.NewConflict("email already registered", map[string]any{"email": strings.ToLower(email)})
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return apperrors.MapError(err)
}

func (s *UserService) publishCreated(ctx context.Context, actor *domain.User, user *domain.User) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserCreated,
		Timestamp: time.Now(),
		Payload:   events.UserCreatedPayload{UserID: user.ID, Role: user.Role},
	}
	if actor != nil {
		actorID := actor.ID
		event.Actor = events.Actor{UserID: &actorID, Role: actor.Role}
	}
	_ = s.dispatcher.Publish(ctx, event)
}
