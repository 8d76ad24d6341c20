package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cloudblitz/enquiry-service/internal/cache"
	"github.com/cloudblitz/enquiry-service/internal/domain"
	"github.com/cloudblitz/enquiry-service/internal/events"
	"github.com/cloudblitz/enquiry-service/internal/policy"
	"github.com/cloudblitz/enquiry-service/internal/repository"
	apperrors "github.com/cloudblitz/enquiry-service/pkg/util"
)

// EnquiryService coordinates enquiry workflows: authorization, field
// sanitization, auto-assignment and persistence.
type EnquiryService struct {
	enquiries  repository.EnquiryRepository
	users      repository.UserRepository
	assignment *AssignmentService
	cache      *cache.EnquiryCache
	dispatcher events.Dispatcher
}

// EnquiryDependencies bundles collaborators for the enquiry service.
type EnquiryDependencies struct {
	EnquiryRepo repository.EnquiryRepository
	UserRepo    repository.UserRepository
	Assignment  *AssignmentService
	Cache       *cache.EnquiryCache
	Dispatcher  events.Dispatcher
}

// EnquiryCreateInput describes enquiry creation payload.
type EnquiryCreateInput struct {
	CustomerName string
	Email        string
	Phone        string
	Message      string
	Priority     domain.EnquiryPriority
	AutoAssign   bool
}

// EnquiryListFilter describes listing filters.
type EnquiryListFilter struct {
	Statuses    []domain.EnquiryStatus
	Priorities  []domain.EnquiryPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewEnquiryService constructs the service.
func NewEnquiryService(deps EnquiryDependencies) *EnquiryService {
	return &EnquiryService{
		enquiries:  deps.EnquiryRepo,
		users:      deps.UserRepo,
		assignment: deps.Assignment,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
	}
}

// CreateEnquiry creates an enquiry, resolving the assignee first when auto
// assignment is requested. The actor may be nil: enquiry creation is the
// only write open to anonymous callers. When the resolver fails, nothing
// is written.
func (s *EnquiryService) CreateEnquiry(ctx context.Context, actor *domain.User, input EnquiryCreateInput) (*domain.Enquiry, error) {
	if err := policy.CanCreateEnquiry(actor); err != nil {
		return nil, err
	}

	enquiry := &domain.Enquiry{
		CustomerName: strings.TrimSpace(input.CustomerName),
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		Message:      strings.TrimSpace(input.Message),
		Status:       domain.EnquiryStatusNew,
		Priority:     input.Priority,
		Notes:        []string{},
	}
	if enquiry.Priority == "" {
		enquiry.Priority = domain.EnquiryPriorityMedium
	}
	if actor != nil {
		actorID := actor.ID
		enquiry.CreatedBy = &actorID
	}

	if input.AutoAssign {
		assignee, err := s.assignment.ResolveNextAssignee(ctx)
		if err != nil {
			return nil, err
		}
		assigneeID := assignee.ID
		enquiry.AssignedTo = &assigneeID
	}

	if err := s.enquiries.Create(ctx, enquiry); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.Event{
		Type:      events.EventEnquiryCreated,
		EnquiryID: enquiry.ID,
		Payload: events.EnquiryCreatedPayload{
			CustomerName: enquiry.CustomerName,
			Priority:     enquiry.Priority,
			AssignedTo:   enquiry.AssignedTo,
			AutoAssigned: input.AutoAssign,
		},
	})
	return enquiry, nil
}

// GetEnquiry fetches a single live enquiry, enforcing the read gate.
func (s *EnquiryService) GetEnquiry(ctx context.Context, actor *domain.User, id string) (*domain.Enquiry, error) {
	enquiry, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanReadEnquiry(actor, enquiry); err != nil {
		return nil, err
	}
	return enquiry, nil
}

// ListEnquiries returns live enquiries visible to the actor: everything for
// admins, owned-or-assigned records for everyone else.
func (s *EnquiryService) ListEnquiries(ctx context.Context, actor *domain.User, filter EnquiryListFilter) ([]domain.Enquiry, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	repoFilter := repository.EnquiryFilter{
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if actor.Role != domain.RoleAdmin {
		actorID := actor.ID
		repoFilter.AccessibleBy = &actorID
	}
	result, err := s.enquiries.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// UpdateEnquiry applies a partial update. Plain users get status and
// assignment silently stripped before the write; the response is still the
// sanitized record, not an error. autoAssign re-runs the resolver in place
// of a manually supplied assignee and is ignored for non-privileged actors,
// consistent with the stripping rule.
func (s *EnquiryService) UpdateEnquiry(ctx context.Context, actor *domain.User, id string, changes policy.EnquiryChanges, autoAssign bool) (*domain.Enquiry, error) {
	enquiry, err := s.fetchForWrite(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanUpdateEnquiry(actor, enquiry); err != nil {
		return nil, err
	}
	changes = policy.SanitizeEnquiryChanges(actor, changes)

	oldStatus := enquiry.Status
	oldAssignee := enquiry.AssignedTo

	if changes.CustomerName != nil {
		enquiry.CustomerName = strings.TrimSpace(*changes.CustomerName)
	}
	if changes.Email != nil {
		enquiry.Email = strings.TrimSpace(*changes.Email)
	}
	if changes.Phone != nil {
		enquiry.Phone = strings.TrimSpace(*changes.Phone)
	}
	if changes.Message != nil {
		enquiry.Message = strings.TrimSpace(*changes.Message)
	}
	if changes.Priority != nil {
		if !changes.Priority.IsValid() {
			return nil, apperrors.NewValidationError("invalid priority", nil)
		}
		enquiry.Priority = *changes.Priority
	}
	if changes.Status != nil {
		if !changes.Status.IsValid() {
			return nil, apperrors.NewValidationError("invalid status", nil)
		}
		enquiry.Status = *changes.Status
	}
	if changes.Notes != nil {
		enquiry.Notes = *changes.Notes
	}

	if autoAssign && actor != nil && actor.Role.IsPrivileged() {
		assignee, err := s.assignment.ResolveNextAssignee(ctx)
		if err != nil {
			return nil, err
		}
		assigneeID := assignee.ID
		enquiry.AssignedTo = &assigneeID
	} else if changes.AssignedTo != nil {
		if _, err := uuid.Parse(*changes.AssignedTo); err != nil {
			return nil, apperrors.NewInvalidIdentifier("assignee id")
		}
		if _, err := s.resolveActiveAssignee(ctx, *changes.AssignedTo); err != nil {
			return nil, err
		}
		enquiry.AssignedTo = changes.AssignedTo
	}

	if err := s.persistUpdate(ctx, enquiry); err != nil {
		return nil, err
	}

	if enquiry.Status != oldStatus {
		s.publish(ctx, actor, events.Event{
			Type:      events.EventEnquiryStatusChanged,
			EnquiryID: enquiry.ID,
			Payload: events.EnquiryStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: enquiry.Status,
			},
		})
	}
	if !sameAssignee(oldAssignee, enquiry.AssignedTo) {
		s.publish(ctx, actor, events.Event{
			Type:      events.EventEnquiryAssigned,
			EnquiryID: enquiry.ID,
			Payload: events.EnquiryAssignedPayload{
				AssignedTo: enquiry.AssignedTo,
				Previous:   oldAssignee,
			},
		})
	}
	return enquiry, nil
}

// AssignEnquiry is the explicit manual assignment operation, admin/staff
// only.
func (s *EnquiryService) AssignEnquiry(ctx context.Context, actor *domain.User, enquiryID, userID string) (*domain.Enquiry, error) {
	if err := policy.CanAssignEnquiry(actor); err != nil {
		return nil, err
	}
	assignee, err := s.resolveActiveAssignee(ctx, userID)
	if err != nil {
		return nil, err
	}

	enquiry, err := s.fetchForWrite(ctx, enquiryID)
	if err != nil {
		return nil, err
	}
	oldAssignee := enquiry.AssignedTo
	assigneeID := assignee.ID
	enquiry.AssignedTo = &assigneeID

	if err := s.persistUpdate(ctx, enquiry); err != nil {
		return nil, err
	}
	s.publish(ctx, actor, events.Event{
		Type:      events.EventEnquiryAssigned,
		EnquiryID: enquiry.ID,
		Payload: events.EnquiryAssignedPayload{
			AssignedTo: enquiry.AssignedTo,
			Previous:   oldAssignee,
		},
	})
	return enquiry, nil
}

// DeleteEnquiry soft-deletes the record. The row stays in storage with
// deleted_at set and disappears from all default queries.
func (s *EnquiryService) DeleteEnquiry(ctx context.Context, actor *domain.User, id string) error {
	enquiry, err := s.fetchForWrite(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CanDeleteEnquiry(actor, enquiry); err != nil {
		return err
	}
	if err := s.enquiries.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("enquiry", map[string]any{"enquiry_id": id})
		}
		return apperrors.MapError(err)
	}
	_ = s.cache.Invalidate(ctx, id)
	s.publish(ctx, actor, events.Event{
		Type:      events.EventEnquiryDeleted,
		EnquiryID: id,
		Payload:   events.EnquiryDeletedPayload{CustomerName: enquiry.CustomerName},
	})
	return nil
}

// fetch reads through the cache; used by read paths only.
func (s *EnquiryService) fetch(ctx context.Context, id string) (*domain.Enquiry, error) {
	if cached, err := s.cache.Get(ctx, id); err == nil {
		return cached, nil
	}
	enquiry, err := s.fetchForWrite(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, enquiry)
	return enquiry, nil
}

// fetchForWrite always hits the database.
func (s *EnquiryService) fetchForWrite(ctx context.Context, id string) (*domain.Enquiry, error) {
	enquiry, err := s.enquiries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("enquiry", map[string]any{"enquiry_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return enquiry, nil
}

func (s *EnquiryService) persistUpdate(ctx context.Context, enquiry *domain.Enquiry) error {
	if err := s.enquiries.Update(ctx, enquiry); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("enquiry", map[string]any{"enquiry_id": enquiry.ID})
		}
		return apperrors.MapError(err)
	}
	_ = s.cache.Invalidate(ctx, enquiry.ID)
	return nil
}

// resolveActiveAssignee loads a manual assignment target and refuses
// deactivated accounts; deactivation removes a user from manual assignment
// the same way it removes them from the rotation pool.
func (s *EnquiryService) resolveActiveAssignee(ctx context.Context, userID string) (*domain.User, error) {
	assignee, err := s.lookupAssignee(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !assignee.IsActive {
		return nil, apperrors.NewConflict("assignee inactive", map[string]any{"user_id": userID})
	}
	return assignee, nil
}

func (s *EnquiryService) lookupAssignee(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *EnquiryService) publish(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if actor != nil {
		actorID := actor.ID
		event.Actor = events.Actor{UserID: &actorID, Role: actor.Role}
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
