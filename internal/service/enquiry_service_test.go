package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudblitz/enquiry-service/internal/cache"
	"github.com/cloudblitz/enquiry-service/internal/domain"
	"github.com/cloudblitz/enquiry-service/internal/policy"
	"github.com/cloudblitz/enquiry-service/internal/repository"
	apperrors "github.com/cloudblitz/enquiry-service/pkg/util"
)

func newEnquiryFixture(enquiries *MockEnquiryRepository, users *MockUserRepository) *EnquiryService {
	if enquiries == nil {
		enquiries = &MockEnquiryRepository{}
	}
	if users == nil {
		users = &MockUserRepository{}
	}
	assignment := NewAssignmentService(AssignmentDependencies{UserRepo: users, EnquiryRepo: enquiries})
	return NewEnquiryService(EnquiryDependencies{
		EnquiryRepo: enquiries,
		UserRepo:    users,
		Assignment:  assignment,
		Cache:       cache.NewEnquiryCache(nil, time.Minute),
	})
}

func liveEnquiry(id string, createdBy, assignedTo *string) *domain.Enquiry {
	return &domain.Enquiry{
		ID:           id,
		CustomerName: "Asha Patel",
		Email:        "asha@example.com",
		Message:      "Please call me back about the course fees.",
		Status:       domain.EnquiryStatusNew,
		Priority:     domain.EnquiryPriorityMedium,
		CreatedBy:    createdBy,
		AssignedTo:   assignedTo,
		Notes:        []string{},
	}
}

func TestCreateEnquiry_AnonymousCaller(t *testing.T) {
	var created *domain.Enquiry
	enquiries := &MockEnquiryRepository{
		CreateFunc: func(ctx context.Context, enquiry *domain.Enquiry) error {
			enquiry.ID = "e1"
			created = enquiry
			return nil
		},
	}
	svc := newEnquiryFixture(enquiries, nil)

	got, err := svc.CreateEnquiry(context.Background(), nil, EnquiryCreateInput{
		CustomerName: "Asha Patel",
		Email:        "asha@example.com",
		Message:      "Please call me back about the course fees.",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Nil(t, got.CreatedBy)
	assert.Nil(t, got.AssignedTo)
	assert.Equal(t, domain.EnquiryStatusNew, got.Status)
	assert.Equal(t, domain.EnquiryPriorityMedium, got.Priority)
}

func TestCreateEnquiry_AutoAssignSetsResolvedAssignee(t *testing.T) {
	users := &MockUserRepository{
		ListEligibleAssigneesFunc: func(ctx context.Context) ([]domain.User, error) {
			return []domain.User{testUser("s1", domain.RoleStaff, 0)}, nil
		},
	}
	enquiries := &MockEnquiryRepository{
		CreateFunc: func(ctx context.Context, enquiry *domain.Enquiry) error {
			enquiry.ID = "e1"
			return nil
		},
		LastAssignedWithinFunc: func(ctx context.Context, assigneeIDs []string) (*domain.Enquiry, error) {
			return nil, pgx.ErrNoRows
		},
	}
	svc := newEnquiryFixture(enquiries, users)

	actor := testUser("u1", domain.RoleUser, 0)
	got, err := svc.CreateEnquiry(context.Background(), &actor, EnquiryCreateInput{
		CustomerName: "Asha Patel",
		Email:        "asha@example.com",
		Message:      "Please call me back about the course fees.",
		AutoAssign:   true,
	})
	require.NoError(t, err)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, "s1", *got.AssignedTo)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, "u1", *got.CreatedBy)
}

// When the resolver finds nobody to assign, the enquiry must not be written.
func TestCreateEnquiry_AutoAssignFailureWritesNothing(t *testing.T) {
	createCalled := false
	enquiries := &MockEnquiryRepository{
		CreateFunc: func(ctx context.Context, enquiry *domain.Enquiry) error {
			createCalled = true
			return nil
		},
	}
	users := &MockUserRepository{
		ListEligibleAssigneesFunc: func(ctx context.Context) ([]domain.User, error) {
			return []domain.User{}, nil
		},
	}
	svc := newEnquiryFixture(enquiries, users)

	_, err := svc.CreateEnquiry(context.Background(), nil, EnquiryCreateInput{
		CustomerName: "Asha Patel",
		Email:        "asha@example.com",
		Message:      "Please call me back about the course fees.",
		AutoAssign:   true,
	})
	require.Error(t, err)
	assert.False(t, createCalled)
	assert.Contains(t, err.Error(), "No active staff/admin users available for assignment")
}

func TestGetEnquiry_AssigneeMayRead(t *testing.T) {
	enquiries := &MockEnquiryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Enquiry, error) {
			return liveEnquiry(id, strPtr("someone-else"), strPtr("staff-1")), nil
		},
	}
	svc := newEnquiryFixture(enquiries, nil)

	actor := testUser("staff-1", domain.RoleStaff, 0)
	got, err := svc.GetEnquiry(context.Background(), &actor, "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)
}

func TestGetEnquiry_UnrelatedStaffDenied(t *testing.T) {
	enquiries := &MockEnquiryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Enquiry, error) {
			return liveEnquiry(id, strPtr("someone-else"), strPtr("other-staff")), nil
		},
	}
	svc := newEnquiryFixture(enquiries, nil)

	actor := testUser("staff-1", domain.RoleStaff, 0)
	_, err := svc.GetEnquiry(context.Background(), &actor, "e1")
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 403, domainErr.HTTPStatus)
}

func TestGetEnquiry_SoftDeletedIsNotFound(t *testing.T) {
	enquiries := &MockEnquiryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Enquiry, error) {
			return nil, pgx.ErrNoRows
		},
	}
	svc := newEnquiryFixture(enquiries, nil)

	actor := testUser("a1", domain.RoleAdmin, 0)
	_, err := svc.GetEnquiry(context.Background(), &actor, "e1")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestListEnquiries_AdminSeesEverything(t *testing.T) {
	var captured repository.EnquiryFilter
	enquiries := &MockEnquiryRepository{
		ListWithFilterFunc: func(ctx context.Context, filter repository.EnquiryFilter) ([]domain.Enquiry, error) {
			captured = filter
			return []domain.Enquiry{}, nil
		},
	}
	svc := newEnquiryFixture(enquiries, nil)

	actor := testUser("a1", domain.RoleAdmin, 0)
	_, err := svc.ListEnquiries(context.Background(), &actor, EnquiryListFilter{})
	require.NoError(t, err)
	assert.Nil(t, captured.AccessibleBy)
}

func TestListEnquiries_NonAdminScopedToOwnedOrAssigned(t *testing.T) {
	var captured repository.EnquiryFilter
	enquiries := &MockEnquiryRepository{
		ListWithFilterFunc: func(ctx context.Context, filter repository.EnquiryFilter) ([]domain.Enquiry, error) {
			captured = filter
			return []domain.Enquiry{}, nil
		},
	}
	svc := newEnquiryFixture(enquiries, nil)

	actor := testUser("staff-1", domain.RoleStaff, 0)
	_, err := svc.ListEnquiries(context.Background(), &actor, EnquiryListFilter{})
	require.NoError(t, err)
	require.NotNil(t, captured.AccessibleBy)
	assert.Equal(t, "staff-1", *captured.AccessibleBy)
}

// A plain user updating their own enquiry may change contact fields, but
// status and assignment are silently dropped; the call still succeeds.
func TestUpdateEnquiry_PlainUserWorkflowFieldsStripped(t *testing.T) {
	var persisted *domain.Enquiry
	enquiries := &MockEnquiryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Enquiry, error) {
			return liveEnquiry(id, strPtr("u1"), nil), nil
		},
		UpdateFunc: func(ctx context.Context, enquiry *domain.Enquiry) error {
			persisted = enquiry
			return nil
		},
	}
	svc := newEnquiryFixture(enquiries, nil)

	actor := testUser("u1", domain.RoleUser, 0)
	closed := domain.EnquiryStatusClosed
	got, err := svc.UpdateEnquiry(context.Background(), &actor, "e1", policy.EnquiryChanges{
		CustomerName: strPtr("Asha P."),
		Status:       &closed,
		AssignedTo:   strPtr("staff-1"),
	}, false)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "Asha P.", got.CustomerName)
	assert.Equal(t, domain.EnquiryStatusNew, got.Status)
	assert.Nil(t, got.AssignedTo)
}

func TestUpdateEnquiry_StaffChangesStatus(t *testing.T) {
	enquiries := &MockEnquiryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Enquiry, error) {
			return liveEnquiry(id, strPtr("someone-else"), nil), nil
		},
	}
	svc := newEnquiryFixture(enquiries, nil)

	actor := testUser("staff-1", domain.RoleStaff, 0)
	inProgress := domain.EnquiryStatusInProgress
	got, err := svc.UpdateEnquiry(context.Background(), &actor, "e1", policy.EnquiryChanges{
		Status: &inProgress,
	}, false)
	require.NoError(t, err)
	assert.Equal(t, domain.EnquiryStatusInProgress, got.Status)
}

func TestUpdateEnquiry_PlainUserCannotTouchForeignEnquiry(t *testing.T) {
	enquiries := &MockEnquiryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Enquiry, error) {
			return liveEnquiry(id, strPtr("someone-else"), nil), nil
		},
	}
	svc := newEnquiryFixture(enquiries, nil)

	actor := testUser("u1", domain.RoleUser, 0)
	_, err := svc.UpdateEnquiry(context.Background(), &actor, "e1", policy.EnquiryChanges{
		CustomerName: strPtr("Asha P."),
	}, false)
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
}

func TestUpdateEnquiry_ManualAssigneeMustExist(t *testing.T) {
	enquiries := &MockEnquiryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Enquiry, error) {
			return liveEnquiry(id, nil, nil), nil
		},
	}
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return nil, pgx.ErrNoRows
		},
	}
	svc := newEnquiryFixture(enquiries, users)

	actor := testUser("a1", domain.RoleAdmin, 0)
	_, err := svc.UpdateEnquiry(context.Background(), &actor, "e1", policy.EnquiryChanges{
		AssignedTo: strPtr("3e9c6f1a-0000-4000-8000-000000000009"),
	}, false)
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestUpdateEnquiry_MalformedManualAssigneeRejected(t *testing.T) {
	enquiries := &MockEnquiryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Enquiry, error) {
			return liveEnquiry(id, nil, nil), nil
		},
	}
	svc := newEnquiryFixture(enquiries, nil)

	actor := testUser("a1", domain.RoleAdmin, 0)
	_, err := svc.UpdateEnquiry(context.Background(), &actor, "e1", policy.EnquiryChanges{
		AssignedTo: strPtr("not-a-uuid"),
	}, false)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "invalid assignee id", domainErr.Message)
}

func TestUpdateEnquiry_InactiveManualAssigneeRejected(t *testing.T) {
	enquiries := &MockEnquiryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Enquiry, error) {
			return liveEnquiry(id, nil, nil), nil
		},
	}
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			user := testUser(id, domain.RoleStaff, 0)
			user.IsActive = false
			return &user, nil
		},
	}
	svc := newEnquiryFixture(enquiries, users)

	actor := testUser("a1", domain.RoleAdmin, 0)
	_, err := svc.UpdateEnquiry(context.Background(), &actor, "e1", policy.EnquiryChanges{
		AssignedTo: strPtr("3e9c6f1a-0000-4000-8000-000000000009"),
	}, false)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestAssignEnquiry_PlainUserForbidden(t *testing.T) {
	svc := newEnquiryFixture(nil, nil)

	actor := testUser("u1", domain.RoleUser, 0)
	_, err := svc.AssignEnquiry(context.Background(), &actor, "e1", "staff-1")
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
}

func TestAssignEnquiry_InactiveAssigneeRejected(t *testing.T) {
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			user := testUser(id, domain.RoleStaff, 0)
			user.IsActive = false
			return &user, nil
		},
	}
	svc := newEnquiryFixture(nil, users)

	actor := testUser("a1", domain.RoleAdmin, 0)
	_, err := svc.AssignEnquiry(context.Background(), &actor, "e1", "staff-1")
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestAssignEnquiry_StaffAssignsExplicitly(t *testing.T) {
	var persisted *domain.Enquiry
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			user := testUser(id, domain.RoleStaff, 0)
			return &user, nil
		},
	}
	enquiries := &MockEnquiryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Enquiry, error) {
			return liveEnquiry(id, nil, nil), nil
		},
		UpdateFunc: func(ctx context.Context, enquiry *domain.Enquiry) error {
			persisted = enquiry
			return nil
		},
	}
	svc := newEnquiryFixture(enquiries, users)

	actor := testUser("staff-1", domain.RoleStaff, 0)
	got, err := svc.AssignEnquiry(context.Background(), &actor, "e1", "staff-2")
	require.NoError(t, err)
	require.NotNil(t, persisted)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, "staff-2", *got.AssignedTo)
}

// Deletion requires ownership or admin. Being the assignee is not enough.
func TestDeleteEnquiry_AssigneeWithoutOwnershipDenied(t *testing.T) {
	softDeleteCalled := false
	enquiries := &MockEnquiryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Enquiry, error) {
			return liveEnquiry(id, strPtr("someone-else"), strPtr("staff-1")), nil
		},
		SoftDeleteFunc: func(ctx context.Context, id string) error {
			softDeleteCalled = true
			return nil
		},
	}
	svc := newEnquiryFixture(enquiries, nil)

	actor := testUser("staff-1", domain.RoleStaff, 0)
	err := svc.DeleteEnquiry(context.Background(), &actor, "e1")
	require.Error(t, err)
	assert.False(t, softDeleteCalled)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
}

func TestDeleteEnquiry_CreatorMayDelete(t *testing.T) {
	softDeleteCalled := false
	enquiries := &MockEnquiryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Enquiry, error) {
			return liveEnquiry(id, strPtr("u1"), nil), nil
		},
		SoftDeleteFunc: func(ctx context.Context, id string) error {
			softDeleteCalled = true
			return nil
		},
	}
	svc := newEnquiryFixture(enquiries, nil)

	actor := testUser("u1", domain.RoleUser, 0)
	err := svc.DeleteEnquiry(context.Background(), &actor, "e1")
	require.NoError(t, err)
	assert.True(t, softDeleteCalled)
}

func TestDeleteEnquiry_AdminMayDeleteAnything(t *testing.T) {
	enquiries := &MockEnquiryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Enquiry, error) {
			return liveEnquiry(id, strPtr("someone-else"), nil), nil
		},
	}
	svc := newEnquiryFixture(enquiries, nil)

	actor := testUser("a1", domain.RoleAdmin, 0)
	require.NoError(t, svc.DeleteEnquiry(context.Background(), &actor, "e1"))
}
