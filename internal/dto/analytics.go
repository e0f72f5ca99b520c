package dto

import "github.com/duvallb/records-request-api/internal/models"

// CitizenDashboard summarises a citizen's own requests.
type CitizenDashboard struct {
	TotalRequests int                  `json:"total_requests"`
	OpenRequests  int                  `json:"open_requests"`
	ByStatus      []models.StatusCount `json:"by_status"`
	Recent        []RequestSummary     `json:"recent"`
}

// StaffDashboard summarises the queue from an assignee's point of view.
type StaffDashboard struct {
	AssignedToMe    int                  `json:"assigned_to_me"`
	InProgress      int                  `json:"in_progress"`
	CompletedByMe   int                  `json:"completed_by_me"`
	UnassignedQueue int                  `json:"unassigned_queue"`
	ByStatus        []models.StatusCount `json:"by_status"`
	Recent          []RequestSummary     `json:"recent"`
}

// AdminDashboard is the full operational overview.
type AdminDashboard struct {
	TotalRequests      int                    `json:"total_requests"`
	PendingRequests    int                    `json:"pending_requests"`
	UnassignedRequests int                    `json:"unassigned_requests"`
	ByStatus           []models.StatusCount   `json:"by_status"`
	ByType             []models.TypeCount     `json:"by_type"`
	ByPriority         []models.PriorityCount `json:"by_priority"`
	AvgResolutionHours *float64               `json:"avg_resolution_hours"`
	StaffWorkload      []models.StaffWorkload `json:"staff_workload"`
	RecentRequests     []RequestSummary       `json:"recent_requests"`
	RegisteredUsers    int                    `json:"registered_users"`
	CompletedThisMonth int                    `json:"completed_this_month"`
}

// AnalyticsDashboardResponse combines the admin dashboard with a system
// metrics snapshot for the analytics endpoint.
type AnalyticsDashboardResponse struct {
	Dashboard AdminDashboard                 `json:"dashboard"`
	System    *models.AnalyticsSystemMetrics `json:"system,omitempty"`
}
