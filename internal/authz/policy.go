// Package authz is the single authorization decision point for records
// requests. Every permission check funnels through Decide so the full
// role/action matrix can be read, and tested, in one place.
package authz

import "github.com/duvallb/records-request-api/internal/models"

// Action enumerates everything a user can attempt against a request.
type Action string

const (
	ActionView         Action = "view"
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionAssign       Action = "assign"
	ActionTransition   Action = "transition"
	ActionCancel       Action = "cancel"
	ActionDelete       Action = "delete"
	ActionUploadFile   Action = "upload_file"
	ActionDownloadFile Action = "download_file"
	ActionMessage      Action = "message"
	ActionViewAll      Action = "view_all"
)

// Ownership captures the caller's relationship to a specific request.
type Ownership struct {
	IsOwner    bool
	IsAssignee bool
}

// Decide returns whether role may perform action given its relationship to
// the request. The matrix is total over known roles and actions; anything
// unknown is denied.
func Decide(role models.UserRole, action Action, own Ownership) bool {
	switch role {
	case models.RoleAdmin:
		return decideAdmin(action)
	case models.RoleStaff:
		return decideStaff(action, own)
	case models.RoleCitizen:
		return decideCitizen(action, own)
	default:
		return false
	}
}

func decideAdmin(action Action) bool {
	switch action {
	case ActionView, ActionCreate, ActionUpdate, ActionAssign, ActionTransition, ActionCancel,
		ActionDelete, ActionUploadFile, ActionDownloadFile, ActionMessage, ActionViewAll:
		return true
	default:
		return false
	}
}

func decideStaff(action Action, own Ownership) bool {
	switch action {
	// Staff work their own queue only. The master list and unassigned
	// requests stay admin territory.
	case ActionView, ActionTransition, ActionUploadFile, ActionDownloadFile, ActionMessage:
		return own.IsAssignee
	case ActionCreate, ActionUpdate, ActionAssign, ActionCancel, ActionDelete, ActionViewAll:
		return false
	default:
		return false
	}
}

func decideCitizen(action Action, own Ownership) bool {
	switch action {
	case ActionCreate:
		return true
	case ActionView, ActionUpdate, ActionUploadFile, ActionDownloadFile, ActionMessage:
		return own.IsOwner
	case ActionAssign, ActionTransition, ActionCancel, ActionDelete, ActionViewAll:
		return false
	default:
		return false
	}
}
