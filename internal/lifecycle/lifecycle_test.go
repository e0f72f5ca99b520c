package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvallb/records-request-api/internal/models"
	appErrors "github.com/duvallb/records-request-api/pkg/errors"
)

func TestInitial(t *testing.T) {
	assert.Equal(t, models.StatusPending, Initial())
}

func TestIsTerminal(t *testing.T) {
	terminal := []models.RequestStatus{models.StatusCompleted, models.StatusDenied, models.StatusCancelled}
	open := []models.RequestStatus{models.StatusPending, models.StatusAssigned, models.StatusInProgress}

	for _, s := range terminal {
		assert.True(t, IsTerminal(s), "expected %s to be terminal", s)
	}
	for _, s := range open {
		assert.False(t, IsTerminal(s), "expected %s to be open", s)
	}
	assert.False(t, IsTerminal(models.RequestStatus("bogus")))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    models.RequestStatus
		to      models.RequestStatus
		allowed bool
	}{
		{models.StatusPending, models.StatusAssigned, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusPending, models.StatusInProgress, false},
		{models.StatusPending, models.StatusCompleted, false},
		{models.StatusAssigned, models.StatusInProgress, true},
		{models.StatusAssigned, models.StatusCompleted, true},
		{models.StatusAssigned, models.StatusDenied, true},
		{models.StatusAssigned, models.StatusCancelled, true},
		{models.StatusAssigned, models.StatusPending, false},
		{models.StatusInProgress, models.StatusCompleted, true},
		{models.StatusInProgress, models.StatusDenied, true},
		{models.StatusInProgress, models.StatusCancelled, true},
		{models.StatusInProgress, models.StatusAssigned, false},
		{models.StatusCompleted, models.StatusInProgress, false},
		{models.StatusCompleted, models.StatusCancelled, false},
		{models.StatusDenied, models.StatusInProgress, false},
		{models.StatusCancelled, models.StatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestGuardRejectsUnknownStatuses(t *testing.T) {
	err := Guard(models.RequestStatus("bogus"), models.StatusAssigned, Actor{Role: models.RoleAdmin})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)

	err = Guard(models.StatusPending, models.RequestStatus("bogus"), Actor{Role: models.RoleAdmin})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestGuardRejectsLeavingTerminalState(t *testing.T) {
	for _, from := range []models.RequestStatus{models.StatusCompleted, models.StatusDenied, models.StatusCancelled} {
		err := Guard(from, models.StatusCancelled, Actor{Role: models.RoleAdmin})
		require.Error(t, err, "leaving %s should fail", from)
		assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	}
}

func TestGuardAdminMayDoEverythingAllowedByGraph(t *testing.T) {
	admin := Actor{Role: models.RoleAdmin}

	require.NoError(t, Guard(models.StatusPending, models.StatusAssigned, admin))
	require.NoError(t, Guard(models.StatusPending, models.StatusCancelled, admin))
	require.NoError(t, Guard(models.StatusAssigned, models.StatusInProgress, admin))
	require.NoError(t, Guard(models.StatusAssigned, models.StatusCompleted, admin))
	require.NoError(t, Guard(models.StatusInProgress, models.StatusDenied, admin))
	require.NoError(t, Guard(models.StatusInProgress, models.StatusCancelled, admin))
}

func TestGuardStaffMustBeAssignee(t *testing.T) {
	assignee := Actor{Role: models.RoleStaff, IsAssignee: true}
	otherStaff := Actor{Role: models.RoleStaff, IsAssignee: false}

	require.NoError(t, Guard(models.StatusAssigned, models.StatusInProgress, assignee))
	require.NoError(t, Guard(models.StatusInProgress, models.StatusCompleted, assignee))
	require.NoError(t, Guard(models.StatusInProgress, models.StatusDenied, assignee))

	err := Guard(models.StatusAssigned, models.StatusInProgress, otherStaff)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGuardStaffMayNotAssignOrCancel(t *testing.T) {
	assignee := Actor{Role: models.RoleStaff, IsAssignee: true}

	err := Guard(models.StatusPending, models.StatusAssigned, assignee)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	err = Guard(models.StatusInProgress, models.StatusCancelled, assignee)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGuardCitizenMayNotTransition(t *testing.T) {
	citizen := Actor{Role: models.RoleCitizen}

	for _, tc := range []struct{ from, to models.RequestStatus }{
		{models.StatusPending, models.StatusAssigned},
		{models.StatusPending, models.StatusCancelled},
		{models.StatusAssigned, models.StatusInProgress},
		{models.StatusInProgress, models.StatusCompleted},
	} {
		err := Guard(tc.from, tc.to, citizen)
		require.Error(t, err, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	}
}

func TestRequiresAssignee(t *testing.T) {
	assert.False(t, RequiresAssignee(models.StatusPending))
	assert.False(t, RequiresAssignee(models.StatusCancelled))
	assert.True(t, RequiresAssignee(models.StatusAssigned))
	assert.True(t, RequiresAssignee(models.StatusInProgress))
	assert.True(t, RequiresAssignee(models.StatusCompleted))
	assert.True(t, RequiresAssignee(models.StatusDenied))
}
