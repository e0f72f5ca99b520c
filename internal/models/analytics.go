package models

import "time"

// StatusCount pairs a request status with its occurrence count.
type StatusCount struct {
	Status RequestStatus `db:"status" json:"status"`
	Count  int           `db:"count" json:"count"`
}

// TypeCount pairs a request type with its occurrence count.
type TypeCount struct {
	RequestType RequestType `db:"request_type" json:"request_type"`
	Count       int         `db:"count" json:"count"`
}

// PriorityCount pairs a priority with its occurrence count.
type PriorityCount struct {
	Priority RequestPriority `db:"priority" json:"priority"`
	Count    int             `db:"count" json:"count"`
}

// StaffWorkload reports per-staff assignment load for the workload view.
type StaffWorkload struct {
	StaffID        string `db:"staff_id" json:"staff_id"`
	StaffName      string `db:"staff_name" json:"staff_name"`
	StaffEmail     string `db:"staff_email" json:"staff_email"`
	AssignedCount  int    `db:"assigned_count" json:"assigned_count"`
	CompletedCount int    `db:"completed_count" json:"completed_count"`
}

// ResolutionSample is a (created_at, updated_at) pair for a completed request,
// used to compute average resolution time.
type ResolutionSample struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// AnalyticsSystemMetrics is a lightweight observability snapshot surfaced on
// the admin analytics endpoint.
type AnalyticsSystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
