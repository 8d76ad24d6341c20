package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/cloudblitz/enquiry-service/internal/domain"
	"github.com/cloudblitz/enquiry-service/internal/repository"
	apperrors "github.com/cloudblitz/enquiry-service/pkg/util"
)

// AssignmentService selects the next assignee for auto-assigned enquiries
// using round-robin rotation over active admin/staff accounts. No rotation
// pointer is persisted; the position is rebuilt on every call from the most
// recently assigned enquiry, so membership changes take effect immediately.
//
// Two concurrent resolutions can read the same last-assigned enquiry and
// pick the same user. That skips a rotation slot but corrupts nothing, and
// matches the long-standing behavior of this system.
type AssignmentService struct {
	users     repository.UserRepository
	enquiries repository.EnquiryRepository
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	UserRepo    repository.UserRepository
	EnquiryRepo repository.EnquiryRepository
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		users:     deps.UserRepo,
		enquiries: deps.EnquiryRepo,
	}
}

// ResolveNextAssignee returns the user who should receive the next
// auto-assigned enquiry. It performs no writes; the caller persists the
// assignment as part of the enquiry write.
func (s *AssignmentService) ResolveNextAssignee(ctx context.Context) (*domain.User, error) {
	eligible, err := s.users.ListEligibleAssignees(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(eligible) == 0 {
		return nil, apperrors.NewNoEligibleAssignees()
	}

	ids := make([]string, len(eligible))
	for i := range eligible {
		ids[i] = eligible[i].ID
	}

	last, err := s.enquiries.LastAssignedWithin(ctx, ids)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &eligible[0], nil
		}
		return nil, apperrors.MapError(err)
	}

	return NextAssignee(eligible, last.AssignedTo), nil
}

// NextAssignee advances the rotation ring. eligible must be sorted by
// account age ascending and non-empty. A last assignee that is no longer in
// the ring yields index -1, and (-1+1) mod n lands on the ring start; the
// degenerate case needs no separate branch.
func NextAssignee(eligible []domain.User, lastAssignedTo *string) *domain.User {
	index := -1
	if lastAssignedTo != nil {
		for i := range eligible {
			if eligible[i].ID == *lastAssignedTo {
				index = i
				break
			}
		}
	}
	return &eligible[(index+1)%len(eligible)]
}
