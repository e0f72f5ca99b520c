package models

import "time"

// RequestType enumerates the kinds of records a citizen can ask for.
type RequestType string

const (
	TypeIncidentReport RequestType = "incident_report"
	TypePoliceReport   RequestType = "police_report"
	TypeBodyCamFootage RequestType = "body_cam_footage"
	TypeCaseFile       RequestType = "case_file"
	TypeOther          RequestType = "other"
)

// RequestPriority enumerates triage priorities.
type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityMedium RequestPriority = "medium"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"
)

// Request is a citizen's records request. Ownership (RequesterID) never
// changes; AssignedStaffID is set exactly while the status is one of
// assigned/in_progress/completed/denied. Version is bumped on every write and
// checked on status transitions so racing writers surface a conflict instead
// of silently overwriting each other.
type Request struct {
	ID              string          `db:"id" json:"id"`
	Title           string          `db:"title" json:"title"`
	Description     string          `db:"description" json:"description"`
	RequestType     RequestType     `db:"request_type" json:"request_type"`
	Priority        RequestPriority `db:"priority" json:"priority"`
	Status          RequestStatus   `db:"status" json:"status"`
	RequesterID     string          `db:"requester_id" json:"requester_id"`
	AssignedStaffID *string         `db:"assigned_staff_id" json:"assigned_staff_id,omitempty"`
	CancelReason    *string         `db:"cancel_reason" json:"cancel_reason,omitempty"`

	IncidentDate     *string `db:"incident_date" json:"incident_date,omitempty"`
	IncidentTime     *string `db:"incident_time" json:"incident_time,omitempty"`
	IncidentLocation *string `db:"incident_location" json:"incident_location,omitempty"`
	OfficerNames     *string `db:"officer_names" json:"officer_names,omitempty"`
	CaseNumber       *string `db:"case_number" json:"case_number,omitempty"`
	CostAcknowledged bool    `db:"cost_acknowledged" json:"cost_acknowledged"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RequestFilter captures filtering criteria for listing requests.
type RequestFilter struct {
	Status          *RequestStatus
	RequestType     *RequestType
	Priority        *RequestPriority
	RequesterID     string
	AssignedStaffID string
	Unassigned      bool
	Search          string
	Page            int
	PageSize        int
}

// RequestRow is a request joined with requester and assignee display fields.
// The display fields are looked up at read time, never denormalised into the
// requests table.
type RequestRow struct {
	Request
	RequesterName      string  `db:"requester_name" json:"requester_name"`
	RequesterEmail     string  `db:"requester_email" json:"requester_email"`
	AssignedStaffName  *string `db:"assigned_staff_name" json:"assigned_staff_name,omitempty"`
	AssignedStaffEmail *string `db:"assigned_staff_email" json:"assigned_staff_email,omitempty"`
}
