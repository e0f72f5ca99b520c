package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/duvallb/records-request-api/internal/models"
)

// ErrStaleVersion is returned when a conditional update matched no rows
// because another writer got there first.
var ErrStaleVersion = errors.New("request was modified concurrently")

const requestRowColumns = `r.id, r.title, r.description, r.request_type, r.priority, r.status, r.requester_id, r.assigned_staff_id, r.cancel_reason, r.incident_date, r.incident_time, r.incident_location, r.officer_names, r.case_number, r.cost_acknowledged, r.version, r.created_at, r.updated_at, req.full_name AS requester_name, req.email AS requester_email, staff.full_name AS assigned_staff_name, staff.email AS assigned_staff_email`

const requestRowJoins = `FROM requests r JOIN users req ON req.id = r.requester_id LEFT JOIN users staff ON staff.id = r.assigned_staff_id`

// RequestRepository provides database access for records requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository creates a new instance of RequestRepository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new request.
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	if req.Version == 0 {
		req.Version = 1
	}

	const query = `INSERT INTO requests (id, title, description, request_type, priority, status, requester_id, assigned_staff_id, cancel_reason, incident_date, incident_time, incident_location, officer_names, case_number, cost_acknowledged, version, created_at, updated_at) VALUES (:id, :title, :description, :request_type, :priority, :status, :requester_id, :assigned_staff_id, :cancel_reason, :incident_date, :incident_time, :incident_location, :officer_names, :case_number, :cost_acknowledged, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// FindByID returns a request with requester and assignee display fields.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.RequestRow, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE r.id = $1 LIMIT 1", requestRowColumns, requestRowJoins)
	var row models.RequestRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request by id: %w", err)
	}
	return &row, nil
}

// List returns requests matching the filter with a total count. Role scoping
// is expressed through the filter: citizens set RequesterID, staff listing
// their own queue set AssignedStaffID.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.RequestRow, int, error) {
	baseQuery := requestRowJoins + ` WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.RequestType != nil {
		conditions = append(conditions, fmt.Sprintf("r.request_type = $%d", len(args)+1))
		args = append(args, *filter.RequestType)
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("r.priority = $%d", len(args)+1))
		args = append(args, *filter.Priority)
	}
	if filter.RequesterID != "" {
		conditions = append(conditions, fmt.Sprintf("r.requester_id = $%d", len(args)+1))
		args = append(args, filter.RequesterID)
	}
	if filter.AssignedStaffID != "" {
		conditions = append(conditions, fmt.Sprintf("r.assigned_staff_id = $%d", len(args)+1))
		args = append(args, filter.AssignedStaffID)
	}
	if filter.Unassigned {
		conditions = append(conditions, "r.assigned_staff_id IS NULL AND r.status = 'pending'")
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(r.title) LIKE $%d OR LOWER(r.description) LIKE $%d OR LOWER(COALESCE(r.case_number, '')) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY r.created_at DESC LIMIT %d OFFSET %d", requestRowColumns, baseQuery, pageSize, offset)

	var rows []models.RequestRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	return rows, total, nil
}

// Update amends the descriptive fields of a request.
func (r *RequestRepository) Update(ctx context.Context, req *models.Request) error {
	req.UpdatedAt = time.Now().UTC()
	const query = `UPDATE requests SET title = :title, description = :description, priority = :priority, version = version + 1, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	return nil
}

// Assign binds a staff member to a pending request and moves it to assigned,
// inserting the transition notifications in the same transaction. The status
// predicate guards against a racing admin: a request that is no longer
// pending yields ErrStaleVersion instead of a double assignment.
func (r *RequestRepository) Assign(ctx context.Context, id, staffID string, ns []models.Notification) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assign transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE requests SET status = 'assigned', assigned_staff_id = $2, version = version + 1, updated_at = $3 WHERE id = $1 AND status = 'pending'`
	res, err := tx.ExecContext(ctx, query, id, staffID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("assign request: %w", err)
	}
	if n, raErr := res.RowsAffected(); raErr == nil && n == 0 {
		err = ErrStaleVersion
		return err
	}
	if err = insertNotificationsTx(ctx, tx, ns); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit assign request: %w", err)
	}
	return nil
}

// UpdateStatus transitions a request, guarded by the caller's last-seen
// version stamp, and inserts the transition notifications in the same
// transaction. A zero-row update means the stamp was stale.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, to models.RequestStatus, expectedVersion int, ns []models.Notification) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE requests SET status = $2, version = version + 1, updated_at = $3 WHERE id = $1 AND version = $4`
	res, err := tx.ExecContext(ctx, query, id, to, time.Now().UTC(), expectedVersion)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	if n, raErr := res.RowsAffected(); raErr == nil && n == 0 {
		err = ErrStaleVersion
		return err
	}
	if err = insertNotificationsTx(ctx, tx, ns); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit request status: %w", err)
	}
	return nil
}

// Cancel terminates a non-terminal request with a reason, detaches the
// assignee so cancelled requests never carry a bound staff member, and
// inserts the cancellation notifications in the same transaction.
func (r *RequestRepository) Cancel(ctx context.Context, id, reason string, ns []models.Notification) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cancel transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE requests SET status = 'cancelled', cancel_reason = $2, assigned_staff_id = NULL, version = version + 1, updated_at = $3 WHERE id = $1 AND status NOT IN ('completed', 'denied', 'cancelled')`
	res, err := tx.ExecContext(ctx, query, id, reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cancel request: %w", err)
	}
	if n, raErr := res.RowsAffected(); raErr == nil && n == 0 {
		err = ErrStaleVersion
		return err
	}
	if err = insertNotificationsTx(ctx, tx, ns); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit cancel request: %w", err)
	}
	return nil
}

func insertNotificationsTx(ctx context.Context, tx *sqlx.Tx, ns []models.Notification) error {
	const query = `INSERT INTO notifications (id, user_id, title, message, is_read, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	now := time.Now().UTC()
	for i := range ns {
		if ns[i].ID == "" {
			ns[i].ID = uuid.NewString()
		}
		if ns[i].CreatedAt.IsZero() {
			ns[i].CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx, query, ns[i].ID, ns[i].UserID, ns[i].Title, ns[i].Message, ns[i].IsRead, ns[i].CreatedAt); err != nil {
			return fmt.Errorf("insert transition notification: %w", err)
		}
	}
	return nil
}

// Delete removes a request and its dependent rows in one transaction. File
// blobs on disk are the caller's responsibility.
func (r *RequestRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM messages WHERE request_id = $1`, id); err != nil {
		return fmt.Errorf("delete request messages: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM attached_files WHERE request_id = $1`, id); err != nil {
		return fmt.Errorf("delete request files: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if n, raErr := res.RowsAffected(); raErr == nil && n == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete request: %w", err)
	}
	return nil
}
