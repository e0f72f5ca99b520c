package models

import "fmt"

// RequestStatus is the lifecycle stage of a records request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusAssigned   RequestStatus = "assigned"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusDenied     RequestStatus = "denied"
	StatusCancelled  RequestStatus = "cancelled"
)

// StatusMeta is display metadata for a status. The mapping is total: callers
// asking for an unknown status get an error, not a silent fallthrough.
type StatusMeta struct {
	Label string `json:"label"`
	Badge string `json:"badge"`
}

var statusMeta = map[RequestStatus]StatusMeta{
	StatusPending:    {Label: "Pending Review", Badge: "amber"},
	StatusAssigned:   {Label: "Assigned", Badge: "blue"},
	StatusInProgress: {Label: "In Progress", Badge: "indigo"},
	StatusCompleted:  {Label: "Completed", Badge: "green"},
	StatusDenied:     {Label: "Denied", Badge: "red"},
	StatusCancelled:  {Label: "Cancelled", Badge: "slate"},
}

// Valid reports whether s is a known lifecycle status.
func (s RequestStatus) Valid() bool {
	_, ok := statusMeta[s]
	return ok
}

// Meta returns display metadata for the status.
func (s RequestStatus) Meta() (StatusMeta, error) {
	meta, ok := statusMeta[s]
	if !ok {
		return StatusMeta{}, fmt.Errorf("unknown request status %q", s)
	}
	return meta, nil
}
