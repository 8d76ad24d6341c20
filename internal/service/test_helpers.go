package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cloudblitz/enquiry-service/internal/domain"
	"github.com/cloudblitz/enquiry-service/internal/repository"
)

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	CreateFunc                func(ctx context.Context, user *domain.User) error
	UpdateFunc                func(ctx context.Context, user *domain.User) error
	DeleteFunc                func(ctx context.Context, id string) error
	GetByIDFunc               func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc            func(ctx context.Context, email string) (*domain.User, error)
	ListFunc                  func(ctx context.Context, filter repository.UserFilter) ([]domain.User, error)
	ListEligibleAssigneesFunc func(ctx context.Context) ([]domain.User, error)
	CountAdminsFunc           func(ctx context.Context) (int, error)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	user.ID = "generated-user-id"
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []domain.User{}, nil
}

func (m *MockUserRepository) ListEligibleAssignees(ctx context.Context) ([]domain.User, error) {
	if m.ListEligibleAssigneesFunc != nil {
		return m.ListEligibleAssigneesFunc(ctx)
	}
	return []domain.User{}, nil
}

func (m *MockUserRepository) CountAdmins(ctx context.Context) (int, error) {
	if m.CountAdminsFunc != nil {
		return m.CountAdminsFunc(ctx)
	}
	return 0, nil
}

// MockEnquiryRepository implements repository.EnquiryRepository for testing
type MockEnquiryRepository struct {
	CreateFunc             func(ctx context.Context, enquiry *domain.Enquiry) error
	UpdateFunc             func(ctx context.Context, enquiry *domain.Enquiry) error
	SoftDeleteFunc         func(ctx context.Context, id string) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.Enquiry, error)
	ListWithFilterFunc     func(ctx context.Context, filter repository.EnquiryFilter) ([]domain.Enquiry, error)
	LastAssignedWithinFunc func(ctx context.Context, assigneeIDs []string) (*domain.Enquiry, error)
}

func (m *MockEnquiryRepository) Create(ctx context.Context, enquiry *domain.Enquiry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, enquiry)
	}
	enquiry.ID = "generated-enquiry-id"
	enquiry.CreatedAt = time.Now()
	enquiry.UpdatedAt = enquiry.CreatedAt
	return nil
}

func (m *MockEnquiryRepository) Update(ctx context.Context, enquiry *domain.Enquiry) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, enquiry)
	}
	return nil
}

func (m *MockEnquiryRepository) SoftDelete(ctx context.Context, id string) error {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockEnquiryRepository) GetByID(ctx context.Context, id string) (*domain.Enquiry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockEnquiryRepository) ListWithFilter(ctx context.Context, filter repository.EnquiryFilter) ([]domain.Enquiry, error) {
	if m.ListWithFilterFunc != nil {
		return m.ListWithFilterFunc(ctx, filter)
	}
	return []domain.Enquiry{}, nil
}

func (m *MockEnquiryRepository) LastAssignedWithin(ctx context.Context, assigneeIDs []string) (*domain.Enquiry, error) {
	if m.LastAssignedWithinFunc != nil {
		return m.LastAssignedWithinFunc(ctx, assigneeIDs)
	}
	return nil, pgx.ErrNoRows
}

// testUser builds an active account with the given role. The creation time
// offset keeps rotation ordering deterministic across helpers.
func testUser(id string, role domain.Role, createdOffset time.Duration) domain.User {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.User{
		ID:        id,
		Name:      fmt.Sprintf("User %s", id),
		Email:     fmt.Sprintf("%s@example.com", id),
		Role:      role,
		IsActive:  true,
		CreatedAt: base.Add(createdOffset),
		UpdatedAt: base.Add(createdOffset),
	}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
