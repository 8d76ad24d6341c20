package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudblitz/enquiry-service/internal/domain"
)

func actor(id string, role domain.Role) *domain.User {
	return &domain.User{ID: id, Role: role, IsActive: true}
}

func enquiryOwnedBy(createdBy, assignedTo string) *domain.Enquiry {
	e := &domain.Enquiry{ID: "e1"}
	if createdBy != "" {
		e.CreatedBy = &createdBy
	}
	if assignedTo != "" {
		e.AssignedTo = &assignedTo
	}
	return e
}

func TestCanCreateEnquiry_OpenToEveryone(t *testing.T) {
	assert.NoError(t, CanCreateEnquiry(nil))
	assert.NoError(t, CanCreateEnquiry(actor("u1", domain.RoleUser)))
}

func TestCanReadEnquiry(t *testing.T) {
	tests := []struct {
		name    string
		actor   *domain.User
		enquiry *domain.Enquiry
		allowed bool
	}{
		{"admin reads anything", actor("a1", domain.RoleAdmin), enquiryOwnedBy("x", "y"), true},
		{"staff reads assigned", actor("s1", domain.RoleStaff), enquiryOwnedBy("x", "s1"), true},
		{"staff reads owned", actor("s1", domain.RoleStaff), enquiryOwnedBy("s1", ""), true},
		{"staff denied on unrelated", actor("s1", domain.RoleStaff), enquiryOwnedBy("x", "y"), false},
		{"user reads owned", actor("u1", domain.RoleUser), enquiryOwnedBy("u1", ""), true},
		{"user reads assigned", actor("u1", domain.RoleUser), enquiryOwnedBy("x", "u1"), true},
		{"user denied on unrelated", actor("u1", domain.RoleUser), enquiryOwnedBy("x", "y"), false},
		{"anonymous denied", nil, enquiryOwnedBy("", ""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanReadEnquiry(tt.actor, tt.enquiry)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCanUpdateEnquiry(t *testing.T) {
	tests := []struct {
		name    string
		actor   *domain.User
		enquiry *domain.Enquiry
		allowed bool
	}{
		{"admin updates anything", actor("a1", domain.RoleAdmin), enquiryOwnedBy("x", "y"), true},
		{"staff updates anything", actor("s1", domain.RoleStaff), enquiryOwnedBy("x", "y"), true},
		{"user updates owned", actor("u1", domain.RoleUser), enquiryOwnedBy("u1", ""), true},
		{"user denied when only assignee", actor("u1", domain.RoleUser), enquiryOwnedBy("x", "u1"), false},
		{"user denied on unrelated", actor("u1", domain.RoleUser), enquiryOwnedBy("x", ""), false},
		{"anonymous denied", nil, enquiryOwnedBy("", ""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanUpdateEnquiry(tt.actor, tt.enquiry)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCanAssignEnquiry(t *testing.T) {
	assert.NoError(t, CanAssignEnquiry(actor("a1", domain.RoleAdmin)))
	assert.NoError(t, CanAssignEnquiry(actor("s1", domain.RoleStaff)))
	assert.Error(t, CanAssignEnquiry(actor("u1", domain.RoleUser)))
	assert.Error(t, CanAssignEnquiry(nil))
}

func TestCanDeleteEnquiry(t *testing.T) {
	tests := []struct {
		name    string
		actor   *domain.User
		enquiry *domain.Enquiry
		allowed bool
	}{
		{"admin deletes anything", actor("a1", domain.RoleAdmin), enquiryOwnedBy("x", "y"), true},
		{"staff deletes owned", actor("s1", domain.RoleStaff), enquiryOwnedBy("s1", ""), true},
		{"staff denied when only assignee", actor("s1", domain.RoleStaff), enquiryOwnedBy("x", "s1"), false},
		{"user deletes owned", actor("u1", domain.RoleUser), enquiryOwnedBy("u1", ""), true},
		{"user denied when only assignee", actor("u1", domain.RoleUser), enquiryOwnedBy("x", "u1"), false},
		{"anonymous denied", nil, enquiryOwnedBy("", ""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanDeleteEnquiry(tt.actor, tt.enquiry)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSanitizeEnquiryChanges_PlainUserLosesWorkflowFields(t *testing.T) {
	closed := domain.EnquiryStatusClosed
	assignee := "staff-1"
	name := "Asha P."
	changes := EnquiryChanges{
		CustomerName: &name,
		Status:       &closed,
		AssignedTo:   &assignee,
	}

	got := SanitizeEnquiryChanges(actor("u1", domain.RoleUser), changes)
	assert.Nil(t, got.Status)
	assert.Nil(t, got.AssignedTo)
	require.NotNil(t, got.CustomerName)
	assert.Equal(t, "Asha P.", *got.CustomerName)
}

func TestSanitizeEnquiryChanges_PrivilegedKeepEverything(t *testing.T) {
	closed := domain.EnquiryStatusClosed
	assignee := "staff-1"
	changes := EnquiryChanges{Status: &closed, AssignedTo: &assignee}

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleStaff} {
		got := SanitizeEnquiryChanges(actor("x", role), changes)
		assert.NotNil(t, got.Status)
		assert.NotNil(t, got.AssignedTo)
	}
}
