package dto

import (
	"time"

	"github.com/duvallb/records-request-api/internal/models"
)

// CreateRequestRequest is the citizen-facing payload for opening a records
// request. The incident fields are only meaningful for body-worn camera
// footage; the service enforces their presence for that type.
type CreateRequestRequest struct {
	Title       string                 `json:"title" validate:"required,min=3,max=200"`
	Description string                 `json:"description" validate:"required,min=10"`
	RequestType models.RequestType     `json:"request_type" validate:"required,oneof=incident_report police_report body_cam_footage case_file other"`
	Priority    models.RequestPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`

	IncidentDate     string `json:"incident_date" validate:"omitempty,datetime=2006-01-02"`
	IncidentTime     string `json:"incident_time"`
	IncidentLocation string `json:"incident_location"`
	OfficerNames     string `json:"officer_names"`
	CaseNumber       string `json:"case_number"`
	CostAcknowledged bool   `json:"cost_acknowledged"`
}

// UpdateRequestRequest lets the owner amend an open request's descriptive
// fields. Lifecycle fields are never writable through this payload.
type UpdateRequestRequest struct {
	Title       string                 `json:"title" validate:"omitempty,min=3,max=200"`
	Description string                 `json:"description" validate:"omitempty,min=10"`
	Priority    models.RequestPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// AssignRequest binds a staff member to a request.
type AssignRequest struct {
	StaffID string `json:"staff_id" validate:"required,uuid4"`
}

// UpdateStatusRequest moves a request along its lifecycle. Version carries the
// caller's last-seen version stamp for conflict detection.
type UpdateStatusRequest struct {
	Status  models.RequestStatus `json:"status" validate:"required,oneof=in_progress completed denied"`
	Note    string               `json:"note" validate:"omitempty,max=2000"`
	Version int                  `json:"version" validate:"required,min=1"`
}

// CancelRequest terminates a request administratively. A reason is mandatory.
type CancelRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=2000"`
}

// RequestQuery mirrors supported listing filters.
type RequestQuery struct {
	Status      string `form:"status"`
	RequestType string `form:"request_type"`
	Priority    string `form:"priority"`
	Unassigned  bool   `form:"unassigned"`
	Search      string `form:"search"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

// RequestSummary is the list-view projection of a request.
type RequestSummary struct {
	ID                string                 `json:"id"`
	Title             string                 `json:"title"`
	RequestType       models.RequestType     `json:"request_type"`
	Priority          models.RequestPriority `json:"priority"`
	Status            models.RequestStatus   `json:"status"`
	StatusMeta        models.StatusMeta      `json:"status_meta"`
	RequesterName     string                 `json:"requester_name"`
	AssignedStaffName *string                `json:"assigned_staff_name,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// RequestDetail is the full aggregate view: the request row plus its files
// and message thread.
type RequestDetail struct {
	models.RequestRow
	StatusMeta models.StatusMeta     `json:"status_meta"`
	Files      []models.AttachedFile `json:"files"`
	Messages   []models.Message      `json:"messages"`
}

// FileUploadResponse is returned after a successful attachment upload.
type FileUploadResponse struct {
	File        models.AttachedFile `json:"file"`
	DownloadURL string              `json:"download_url"`
}

// CreateMessageRequest posts to a request's message thread.
type CreateMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}
