// Package lifecycle implements the request status state machine: which
// transitions exist, which roles may trigger them, and which states are
// terminal. Services consult this package before any status write so the
// rules live in one place instead of scattered handler checks.
package lifecycle

import (
	"fmt"

	"github.com/duvallb/records-request-api/internal/models"
	appErrors "github.com/duvallb/records-request-api/pkg/errors"
)

// Actor describes who is attempting a transition relative to the request.
type Actor struct {
	Role       models.UserRole
	IsAssignee bool
}

var transitions = map[models.RequestStatus][]models.RequestStatus{
	models.StatusPending:    {models.StatusAssigned, models.StatusCancelled},
	models.StatusAssigned:   {models.StatusInProgress, models.StatusCompleted, models.StatusDenied, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCompleted, models.StatusDenied, models.StatusCancelled},
	models.StatusCompleted:  {},
	models.StatusDenied:     {},
	models.StatusCancelled:  {},
}

// Initial returns the sole entry status for new requests.
func Initial() models.RequestStatus {
	return models.StatusPending
}

// IsTerminal reports whether no further transition may leave the status.
func IsTerminal(s models.RequestStatus) bool {
	edges, ok := transitions[s]
	return ok && len(edges) == 0
}

// CanTransition reports whether an edge from one status to the other exists
// in the lifecycle graph, ignoring actor permissions.
func CanTransition(from, to models.RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Guard validates a transition attempt for the given actor. It returns
// InvalidTransition when the edge does not exist (including any move out of a
// terminal state) and Forbidden when the edge exists but the actor may not
// trigger it. A nil return means the transition may proceed.
func Guard(from, to models.RequestStatus, actor Actor) error {
	if !from.Valid() {
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("unknown status %q", from))
	}
	if !to.Valid() {
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("unknown status %q", to))
	}
	if IsTerminal(from) {
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("request is already %s", from))
	}
	if !CanTransition(from, to) {
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot move from %s to %s", from, to))
	}

	switch to {
	case models.StatusAssigned, models.StatusCancelled:
		// Assignment and cancellation are admin-only operations.
		if actor.Role != models.RoleAdmin {
			return appErrors.ErrForbidden
		}
	case models.StatusInProgress, models.StatusCompleted, models.StatusDenied:
		if actor.Role == models.RoleAdmin {
			return nil
		}
		if actor.Role == models.RoleStaff && actor.IsAssignee {
			return nil
		}
		return appErrors.ErrForbidden
	}

	return nil
}

// RequiresAssignee reports whether the status implies a bound staff member.
// The request invariant is: assigned_staff_id is set if and only if this
// returns true for the current status.
func RequiresAssignee(s models.RequestStatus) bool {
	switch s {
	case models.StatusAssigned, models.StatusInProgress, models.StatusCompleted, models.StatusDenied:
		return true
	default:
		return false
	}
}
