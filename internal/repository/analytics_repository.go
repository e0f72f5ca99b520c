package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/duvallb/records-request-api/internal/models"
)

// AnalyticsRepository runs the aggregate queries behind dashboards and the
// admin analytics view. All queries are read-only.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// CountByStatus groups requests by status, optionally scoped to a requester
// or an assignee. Empty scope arguments mean no scoping.
func (r *AnalyticsRepository) CountByStatus(ctx context.Context, requesterID, assignedStaffID string) ([]models.StatusCount, error) {
	query := `SELECT status, COUNT(*) AS count FROM requests WHERE 1=1`
	var args []interface{}
	if requesterID != "" {
		args = append(args, requesterID)
		query += fmt.Sprintf(" AND requester_id = $%d", len(args))
	}
	if assignedStaffID != "" {
		args = append(args, assignedStaffID)
		query += fmt.Sprintf(" AND assigned_staff_id = $%d", len(args))
	}
	query += " GROUP BY status ORDER BY status"

	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}
	return counts, nil
}

// CountByType groups all requests by request type.
func (r *AnalyticsRepository) CountByType(ctx context.Context) ([]models.TypeCount, error) {
	const query = `SELECT request_type, COUNT(*) AS count FROM requests GROUP BY request_type ORDER BY request_type`
	var counts []models.TypeCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count requests by type: %w", err)
	}
	return counts, nil
}

// CountByPriority groups all requests by priority.
func (r *AnalyticsRepository) CountByPriority(ctx context.Context) ([]models.PriorityCount, error) {
	const query = `SELECT priority, COUNT(*) AS count FROM requests GROUP BY priority ORDER BY priority`
	var counts []models.PriorityCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count requests by priority: %w", err)
	}
	return counts, nil
}

// CountUnassigned returns the number of pending requests with no assignee.
func (r *AnalyticsRepository) CountUnassigned(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM requests WHERE assigned_staff_id IS NULL AND status = 'pending'`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count unassigned requests: %w", err)
	}
	return total, nil
}

// CountCompletedSince returns completed requests updated after the cutoff.
func (r *AnalyticsRepository) CountCompletedSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM requests WHERE status = 'completed' AND updated_at >= $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, since); err != nil {
		return 0, fmt.Errorf("count completed requests: %w", err)
	}
	return total, nil
}

// ResolutionSamples returns (created_at, updated_at) pairs for completed
// requests. The service computes the average resolution time from these so
// the arithmetic stays testable without a database.
func (r *AnalyticsRepository) ResolutionSamples(ctx context.Context) ([]models.ResolutionSample, error) {
	const query = `SELECT created_at, updated_at FROM requests WHERE status = 'completed'`
	var samples []models.ResolutionSample
	if err := r.db.SelectContext(ctx, &samples, query); err != nil {
		return nil, fmt.Errorf("resolution samples: %w", err)
	}
	return samples, nil
}

// StaffWorkload aggregates per-staff assignment and completion counts.
func (r *AnalyticsRepository) StaffWorkload(ctx context.Context) ([]models.StaffWorkload, error) {
	const query = `SELECT u.id AS staff_id, u.full_name AS staff_name, u.email AS staff_email,
		COUNT(r.id) FILTER (WHERE r.status IN ('assigned', 'in_progress')) AS assigned_count,
		COUNT(r.id) FILTER (WHERE r.status = 'completed') AS completed_count
		FROM users u
		LEFT JOIN requests r ON r.assigned_staff_id = u.id
		WHERE u.role = 'staff' AND u.active = TRUE
		GROUP BY u.id, u.full_name, u.email
		ORDER BY assigned_count DESC, u.full_name ASC`
	var workload []models.StaffWorkload
	if err := r.db.SelectContext(ctx, &workload, query); err != nil {
		return nil, fmt.Errorf("staff workload: %w", err)
	}
	return workload, nil
}
