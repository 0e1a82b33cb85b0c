package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/field-task-api/internal/models"
)

func principal(userID, companyID uint64, role models.Role, super bool) Principal {
	return Principal{UserID: userID, CompanyID: companyID, Role: role, IsSuperAdmin: super}
}

func TestNewPrincipal(t *testing.T) {
	user := &models.User{ID: 7, CompanyID: 3, Username: "bob", FullName: "Bob", Team: "fusao", Role: models.RoleUser}
	company := &models.Company{ID: 3, Name: "Acme"}

	p, err := NewPrincipal(user, company)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), p.UserID)
	assert.Equal(t, uint64(3), p.CompanyID)
	assert.Equal(t, "Acme", p.CompanyName)
	assert.False(t, p.IsAdmin())

	_, err = NewPrincipal(user, &models.Company{ID: 4})
	assert.ErrorIs(t, err, models.ErrMissingTenant)
}

func TestCanAccessCompany(t *testing.T) {
	tests := []struct {
		name    string
		p       Principal
		target  uint64
		wantErr error
	}{
		{"same company user", principal(1, 1, models.RoleUser, false), 1, nil},
		{"same company admin", principal(1, 1, models.RoleAdmin, false), 1, nil},
		{"other company admin", principal(1, 1, models.RoleAdmin, false), 2, ErrNotFound},
		{"other company user", principal(1, 1, models.RoleUser, false), 2, ErrNotFound},
		{"super admin crosses tenants", principal(1, 1, models.RoleAdmin, true), 2, nil},
		{"zero company", principal(1, 1, models.RoleAdmin, true), 0, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanAccessCompany(tt.p, tt.target)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestListScope(t *testing.T) {
	user := principal(5, 1, models.RoleUser, false)
	scope, err := ListScope(user, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Scope{CompanyID: 1, UserID: 5}, scope)

	_, err = ListScope(user, 0, 6)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ListScope(user, 2, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	admin := principal(9, 1, models.RoleAdmin, false)
	scope, err = ListScope(admin, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Scope{CompanyID: 1}, scope)

	scope, err = ListScope(admin, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, Scope{CompanyID: 1, UserID: 5}, scope)

	_, err = ListScope(admin, 2, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	super := principal(10, 1, models.RoleAdmin, true)
	scope, err = ListScope(super, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, Scope{CompanyID: 2}, scope)
}

func TestCanManageUser(t *testing.T) {
	admin := principal(1, 1, models.RoleAdmin, false)
	member := &models.User{ID: 2, CompanyID: 1, Role: models.RoleUser}
	foreign := &models.User{ID: 3, CompanyID: 2, Role: models.RoleUser}
	superUser := &models.User{ID: 4, CompanyID: 1, Role: models.RoleAdmin, IsSuperAdmin: true}

	assert.NoError(t, CanManageUser(admin, member))
	assert.ErrorIs(t, CanManageUser(admin, foreign), ErrNotFound)
	assert.ErrorIs(t, CanManageUser(admin, &models.User{ID: 1, CompanyID: 1}), ErrSelfAction)
	assert.ErrorIs(t, CanManageUser(admin, superUser), ErrForbidden)

	plain := principal(2, 1, models.RoleUser, false)
	assert.ErrorIs(t, CanManageUser(plain, &models.User{ID: 5, CompanyID: 1}), ErrNotFound)
	assert.ErrorIs(t, CanManageUser(plain, member), ErrForbidden)

	super := principal(4, 1, models.RoleAdmin, true)
	assert.NoError(t, CanManageUser(super, foreign))
	assert.ErrorIs(t, CanManageUser(super, superUser), ErrSelfAction)
}

func TestCanDeleteCompany(t *testing.T) {
	super := principal(1, 1, models.RoleAdmin, true)
	assert.NoError(t, CanDeleteCompany(super, 2))
	assert.ErrorIs(t, CanDeleteCompany(super, 1), ErrSelfAction)
	assert.ErrorIs(t, CanDeleteCompany(principal(2, 2, models.RoleAdmin, false), 3), ErrForbidden)
}

func TestTaskGuards(t *testing.T) {
	task := &models.Task{ID: 1, CompanyID: 1, UserID: 5}

	assert.NoError(t, CanReadTask(principal(5, 1, models.RoleUser, false), task))
	assert.NoError(t, CanMutateTask(principal(9, 1, models.RoleAdmin, false), task))
	assert.ErrorIs(t, CanReadTask(principal(6, 1, models.RoleUser, false), task), ErrNotFound)
	assert.ErrorIs(t, CanReadTask(principal(9, 2, models.RoleAdmin, false), task), ErrNotFound)
	assert.ErrorIs(t, CanReadTask(principal(9, 2, models.RoleAdmin, false), nil), ErrNotFound)
}

func TestAssignmentGuards(t *testing.T) {
	a := &models.Assignment{ID: 1, CompanyID: 1, AssignedByID: 9, AssignedToID: 5}

	assignee := principal(5, 1, models.RoleUser, false)
	assert.NoError(t, CanReadAssignment(assignee, a))
	assert.NoError(t, CanWorkOnAssignment(assignee, a))
	assert.ErrorIs(t, CanManageAssignment(assignee, a), ErrForbidden)

	manager := principal(9, 1, models.RoleAdmin, false)
	assert.NoError(t, CanManageAssignment(manager, a))
	assert.NoError(t, CanWorkOnAssignment(manager, a))

	bystander := principal(6, 1, models.RoleUser, false)
	assert.ErrorIs(t, CanReadAssignment(bystander, a), ErrNotFound)
	assert.ErrorIs(t, CanWorkOnAssignment(bystander, a), ErrNotFound)

	otherAdmin := principal(20, 2, models.RoleAdmin, false)
	assert.ErrorIs(t, CanReadAssignment(otherAdmin, a), ErrNotFound)
	assert.ErrorIs(t, CanManageAssignment(otherAdmin, a), ErrNotFound)
}

func TestCanAccessNotification(t *testing.T) {
	n := &models.Notification{ID: 1, UserID: 5, CompanyID: 1}
	assert.NoError(t, CanAccessNotification(principal(5, 1, models.RoleUser, false), n))
	assert.ErrorIs(t, CanAccessNotification(principal(9, 1, models.RoleAdmin, false), n), ErrNotFound)
	assert.ErrorIs(t, CanAccessNotification(principal(9, 2, models.RoleAdmin, true), n), ErrNotFound)
}

func TestCanActAs(t *testing.T) {
	p := principal(5, 1, models.RoleUser, false)
	assert.NoError(t, CanActAs(p, 5))
	assert.ErrorIs(t, CanActAs(p, 6), ErrNotFound)
}
