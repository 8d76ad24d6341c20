package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudblitz/enquiry-service/internal/domain"
	apperrors "github.com/cloudblitz/enquiry-service/pkg/util"
)

func newAssignmentFixture(eligible []domain.User, last *domain.Enquiry) *AssignmentService {
	users := &MockUserRepository{
		ListEligibleAssigneesFunc: func(ctx context.Context) ([]domain.User, error) {
			return eligible, nil
		},
	}
	enquiries := &MockEnquiryRepository{
		LastAssignedWithinFunc: func(ctx context.Context, assigneeIDs []string) (*domain.Enquiry, error) {
			if last == nil {
				return nil, pgx.ErrNoRows
			}
			return last, nil
		},
	}
	return NewAssignmentService(AssignmentDependencies{UserRepo: users, EnquiryRepo: enquiries})
}

func TestResolveNextAssignee_FirstAssignmentStartsAtOldestAccount(t *testing.T) {
	eligible := []domain.User{
		testUser("s1", domain.RoleStaff, 0),
		testUser("s2", domain.RoleStaff, time.Hour),
		testUser("s3", domain.RoleAdmin, 2*time.Hour),
	}
	svc := newAssignmentFixture(eligible, nil)

	got, err := svc.ResolveNextAssignee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
}

func TestResolveNextAssignee_ContinuesAfterLastAssignee(t *testing.T) {
	eligible := []domain.User{
		testUser("s1", domain.RoleStaff, 0),
		testUser("s2", domain.RoleStaff, time.Hour),
		testUser("s3", domain.RoleAdmin, 2*time.Hour),
	}
	svc := newAssignmentFixture(eligible, &domain.Enquiry{ID: "e1", AssignedTo: strPtr("s1")})

	got, err := svc.ResolveNextAssignee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s2", got.ID)
}

func TestResolveNextAssignee_WrapsToRingStart(t *testing.T) {
	eligible := []domain.User{
		testUser("s1", domain.RoleStaff, 0),
		testUser("s2", domain.RoleStaff, time.Hour),
		testUser("s3", domain.RoleAdmin, 2*time.Hour),
	}
	svc := newAssignmentFixture(eligible, &domain.Enquiry{ID: "e1", AssignedTo: strPtr("s3")})

	got, err := svc.ResolveNextAssignee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
}

// A full cycle of resolutions visits every eligible user exactly once, in
// account-age order. The mock tracks the last resolved assignee the way the
// real query would, via the most recently created assigned enquiry.
func TestResolveNextAssignee_FullRotationVisitsEachOnce(t *testing.T) {
	eligible := []domain.User{
		testUser("s1", domain.RoleStaff, 0),
		testUser("s2", domain.RoleStaff, time.Hour),
		testUser("s3", domain.RoleStaff, 2*time.Hour),
		testUser("s4", domain.RoleAdmin, 3*time.Hour),
	}
	var lastAssigned *string
	users := &MockUserRepository{
		ListEligibleAssigneesFunc: func(ctx context.Context) ([]domain.User, error) {
			return eligible, nil
		},
	}
	enquiries := &MockEnquiryRepository{
		LastAssignedWithinFunc: func(ctx context.Context, assigneeIDs []string) (*domain.Enquiry, error) {
			if lastAssigned == nil {
				return nil, pgx.ErrNoRows
			}
			return &domain.Enquiry{ID: "last", AssignedTo: lastAssigned}, nil
		},
	}
	svc := NewAssignmentService(AssignmentDependencies{UserRepo: users, EnquiryRepo: enquiries})

	var order []string
	for i := 0; i < len(eligible); i++ {
		got, err := svc.ResolveNextAssignee(context.Background())
		require.NoError(t, err)
		order = append(order, got.ID)
		id := got.ID
		lastAssigned = &id
	}
	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, order)

	// The next resolution wraps back to the start.
	got, err := svc.ResolveNextAssignee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
}

func TestResolveNextAssignee_NoEligibleUsers(t *testing.T) {
	lastAssignedCalled := false
	users := &MockUserRepository{
		ListEligibleAssigneesFunc: func(ctx context.Context) ([]domain.User, error) {
			return []domain.User{}, nil
		},
	}
	enquiries := &MockEnquiryRepository{
		LastAssignedWithinFunc: func(ctx context.Context, assigneeIDs []string) (*domain.Enquiry, error) {
			lastAssignedCalled = true
			return nil, pgx.ErrNoRows
		},
	}
	svc := NewAssignmentService(AssignmentDependencies{UserRepo: users, EnquiryRepo: enquiries})

	got, err := svc.ResolveNextAssignee(context.Background())
	require.Error(t, err)
	assert.Nil(t, got)
	assert.False(t, lastAssignedCalled)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "No active staff/admin users available for assignment", domainErr.Message)
	assert.Equal(t, 400, domainErr.HTTPStatus)
}

// Membership changes take effect on the next resolution because the position
// is rebuilt from assigned enquiries, never from a stored pointer. With the
// ring s1,s2,s3 and s2 deactivated after receiving the last assignment, the
// pool-restricted lookup now sees the latest enquiry assigned to s1 or s3.
func TestResolveNextAssignee_DeactivatedMemberLeavesRing(t *testing.T) {
	eligible := []domain.User{
		testUser("s1", domain.RoleStaff, 0),
		testUser("s3", domain.RoleStaff, 2*time.Hour),
	}
	users := &MockUserRepository{
		ListEligibleAssigneesFunc: func(ctx context.Context) ([]domain.User, error) {
			return eligible, nil
		},
	}
	enquiries := &MockEnquiryRepository{
		LastAssignedWithinFunc: func(ctx context.Context, assigneeIDs []string) (*domain.Enquiry, error) {
			assert.Equal(t, []string{"s1", "s3"}, assigneeIDs)
			return &domain.Enquiry{ID: "e1", AssignedTo: strPtr("s1")}, nil
		},
	}
	svc := NewAssignmentService(AssignmentDependencies{UserRepo: users, EnquiryRepo: enquiries})

	got, err := svc.ResolveNextAssignee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s3", got.ID)
}

func TestNextAssignee_StaleLastAssigneeRestartsRing(t *testing.T) {
	eligible := []domain.User{
		testUser("s1", domain.RoleStaff, 0),
		testUser("s2", domain.RoleStaff, time.Hour),
	}

	got := NextAssignee(eligible, strPtr("gone"))
	assert.Equal(t, "s1", got.ID)
}

func TestNextAssignee_SingleMemberAlwaysSelected(t *testing.T) {
	eligible := []domain.User{testUser("s1", domain.RoleStaff, 0)}

	assert.Equal(t, "s1", NextAssignee(eligible, nil).ID)
	assert.Equal(t, "s1", NextAssignee(eligible, strPtr("s1")).ID)
}

func TestResolveNextAssignee_RepositoryErrorPropagates(t *testing.T) {
	users := &MockUserRepository{
		ListEligibleAssigneesFunc: func(ctx context.Context) ([]domain.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewAssignmentService(AssignmentDependencies{UserRepo: users, EnquiryRepo: &MockEnquiryRepository{}})

	got, err := svc.ResolveNextAssignee(context.Background())
	require.Error(t, err)
	assert.Nil(t, got)
}
