package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duvallb/records-request-api/internal/models"
)

var allActions = []Action{
	ActionView, ActionCreate, ActionUpdate, ActionAssign, ActionTransition, ActionCancel,
	ActionDelete, ActionUploadFile, ActionDownloadFile, ActionMessage, ActionViewAll,
}

func TestAdminMayDoEverything(t *testing.T) {
	for _, action := range allActions {
		assert.True(t, Decide(models.RoleAdmin, action, Ownership{}), "admin should be allowed %s", action)
	}
}

func TestStaffMatrix(t *testing.T) {
	assignee := Ownership{IsAssignee: true}
	stranger := Ownership{}

	cases := []struct {
		action  Action
		own     Ownership
		allowed bool
	}{
		{ActionView, assignee, true},
		{ActionView, stranger, false},
		{ActionViewAll, stranger, false},
		{ActionViewAll, assignee, false},
		{ActionTransition, assignee, true},
		{ActionTransition, stranger, false},
		{ActionUploadFile, assignee, true},
		{ActionUploadFile, stranger, false},
		{ActionDownloadFile, assignee, true},
		{ActionDownloadFile, stranger, false},
		{ActionMessage, assignee, true},
		{ActionMessage, stranger, false},
		{ActionCreate, assignee, false},
		{ActionUpdate, assignee, false},
		{ActionAssign, assignee, false},
		{ActionCancel, assignee, false},
		{ActionDelete, assignee, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, Decide(models.RoleStaff, tc.action, tc.own),
			"staff %s (assignee=%v)", tc.action, tc.own.IsAssignee)
	}
}

func TestCitizenMatrix(t *testing.T) {
	owner := Ownership{IsOwner: true}
	stranger := Ownership{}

	cases := []struct {
		action  Action
		own     Ownership
		allowed bool
	}{
		{ActionCreate, stranger, true},
		{ActionView, owner, true},
		{ActionView, stranger, false},
		{ActionUpdate, owner, true},
		{ActionUpdate, stranger, false},
		{ActionUploadFile, owner, true},
		{ActionUploadFile, stranger, false},
		{ActionDownloadFile, owner, true},
		{ActionDownloadFile, stranger, false},
		{ActionMessage, owner, true},
		{ActionMessage, stranger, false},
		{ActionAssign, owner, false},
		{ActionTransition, owner, false},
		{ActionCancel, owner, false},
		{ActionDelete, owner, false},
		{ActionViewAll, owner, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, Decide(models.RoleCitizen, tc.action, tc.own),
			"citizen %s (owner=%v)", tc.action, tc.own.IsOwner)
	}
}

func TestUnknownRoleAndActionDenied(t *testing.T) {
	assert.False(t, Decide(models.UserRole("auditor"), ActionView, Ownership{IsOwner: true}))
	assert.False(t, Decide(models.RoleAdmin, Action("reap"), Ownership{}))
	assert.False(t, Decide(models.RoleStaff, Action("reap"), Ownership{IsAssignee: true}))
	assert.False(t, Decide(models.RoleCitizen, Action("reap"), Ownership{IsOwner: true}))
}
