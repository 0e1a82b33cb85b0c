package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompany(t *testing.T) {
	c, err := NewCompany("  Acme Telecom ", " ACME-01 ")
	require.NoError(t, err)
	assert.Equal(t, "Acme Telecom", c.Name)
	assert.Equal(t, "acme-01", c.Slug)
	assert.True(t, c.Active)

	_, err = NewCompany("My Co", "bad slug!")
	assert.ErrorIs(t, err, ErrInvalidSlug)

	_, err = NewCompany("", "acme")
	assert.ErrorIs(t, err, ErrEmptyCompanyName)

	_, err = NewCompany("Acme", "   ")
	assert.ErrorIs(t, err, ErrEmptySlug)
}

func TestNewUser(t *testing.T) {
	u, err := NewUser(1, " bob ", "hash", " Bob Silva ", "fusao", RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	assert.Equal(t, "Bob Silva", u.FullName)
	assert.True(t, u.Active)
	assert.False(t, u.IsSuperAdmin)

	_, err = NewUser(0, "bob", "hash", "Bob", "", RoleUser)
	assert.ErrorIs(t, err, ErrMissingTenant)

	_, err = NewUser(1, "bob", "hash", "Bob", "", Role("owner"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, r)

	r, err = ParseRole("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("root")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestNewTask(t *testing.T) {
	creator := &User{ID: 5, CompanyID: 2}

	task, err := NewTask(creator, TaskFields{
		Contractor:   "Provedor X",
		Neighborhood: "Centro",
		CTOOpened:    true,
		FiberType:    "F.12",
		FiberLaid:    decimal.RequireFromString("120.456"),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), task.CompanyID)
	assert.Equal(t, uint64(5), task.UserID)
	assert.Equal(t, "120.46", task.FiberLaid.StringFixed(2))

	_, err = NewTask(creator, TaskFields{Contractor: "X", Neighborhood: "Y"})
	assert.ErrorIs(t, err, ErrNoActivity)

	_, err = NewTask(creator, TaskFields{Neighborhood: "Y", CTOCount: 1})
	assert.ErrorIs(t, err, ErrMissingContractor)

	_, err = NewTask(creator, TaskFields{Contractor: "X", CTOCount: 1})
	assert.ErrorIs(t, err, ErrMissingNeighborhood)

	_, err = NewTask(creator, TaskFields{Contractor: "X", Neighborhood: "Y", CTOCount: 1, FiberType: "F.99"})
	assert.ErrorIs(t, err, ErrInvalidFiberType)

	_, err = NewTask(creator, TaskFields{Contractor: "X", Neighborhood: "Y", CTOCount: -1, RosetteOpened: true})
	assert.ErrorIs(t, err, ErrNegativeQuantity)
}

func TestNewAssignment(t *testing.T) {
	alice := &User{ID: 1, CompanyID: 1, Role: RoleAdmin, Active: true}
	bob := &User{ID: 2, CompanyID: 1, Role: RoleUser, Active: true}
	eve := &User{ID: 3, CompanyID: 2, Role: RoleUser, Active: true}

	a, err := NewAssignment(1, alice, bob, AssignmentFields{Title: " Fix line "})
	require.NoError(t, err)
	assert.Equal(t, "Fix line", a.Title)
	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, PriorityMedium, a.Priority)

	_, err = NewAssignment(1, alice, eve, AssignmentFields{Title: "x"})
	assert.ErrorIs(t, err, ErrCrossTenantAssignment)

	_, err = NewAssignment(2, alice, bob, AssignmentFields{Title: "x"})
	assert.ErrorIs(t, err, ErrCrossTenantAssignment)

	_, err = NewAssignment(1, alice, alice, AssignmentFields{Title: "x"})
	assert.ErrorIs(t, err, ErrSelfAssignment)

	inactive := &User{ID: 4, CompanyID: 1}
	_, err = NewAssignment(1, alice, inactive, AssignmentFields{Title: "x"})
	assert.ErrorIs(t, err, ErrInactiveAssignee)

	_, err = NewAssignment(1, alice, bob, AssignmentFields{Title: "  "})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	lat := 10.0
	_, err = NewAssignment(1, alice, bob, AssignmentFields{Title: "x", Latitude: &lat})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestAssignmentTransitions(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	a := &Assignment{Status: StatusPending}

	changed, err := a.TransitionTo(StatusPending, now)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = a.TransitionTo(StatusInProgress, now)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, a.StartedAt)
	assert.Nil(t, a.CompletedAt)

	_, err = a.TransitionTo(StatusPending, now)
	assert.ErrorIs(t, err, ErrStatusRegression)

	changed, err = a.TransitionTo(StatusCompleted, now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, a.CompletedAt)
	assert.Equal(t, now, *a.StartedAt)

	_, err = a.TransitionTo(StatusInProgress, now)
	assert.ErrorIs(t, err, ErrAssignmentClosed)

	skip := &Assignment{Status: StatusPending}
	changed, err = skip.TransitionTo(StatusCompleted, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotNil(t, skip.StartedAt)
}

func TestParseAssignmentStatus(t *testing.T) {
	cases := map[string]AssignmentStatus{
		"pending":        StatusPending,
		"pendente":       StatusPending,
		" EM_ANDAMENTO ": StatusInProgress,
		"in_progress":    StatusInProgress,
		"concluida":      StatusCompleted,
		"concluída":      StatusCompleted,
		"completed":      StatusCompleted,
	}
	for raw, want := range cases {
		got, err := ParseAssignmentStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseAssignmentStatus("done")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("alta")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	p, err = ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, p)

	_, err = ParsePriority("critical")
	assert.ErrorIs(t, err, ErrInvalidPriority)
}
