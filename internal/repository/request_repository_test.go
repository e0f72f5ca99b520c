package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvallb/records-request-api/internal/models"
)

var requestRowTestColumns = []string{
	"id", "title", "description", "request_type", "priority", "status",
	"requester_id", "assigned_staff_id", "cancel_reason", "incident_date",
	"incident_time", "incident_location", "officer_names", "case_number",
	"cost_acknowledged", "version", "created_at", "updated_at",
	"requester_name", "requester_email", "assigned_staff_name", "assigned_staff_email",
}

func TestRequestFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(requestRowTestColumns).
		AddRow("r1", "Incident report 2024-1187", "Copy of the report", string(models.TypeIncidentReport),
			string(models.PriorityMedium), string(models.StatusPending), "u1", nil, nil,
			nil, nil, nil, nil, nil, false, 1, now, now,
			"Jane Citizen", "jane@example.com", nil, nil)
	mock.ExpectQuery("SELECT r.id, r.title").WithArgs("r1").WillReturnRows(rows)

	row, err := repo.FindByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", row.ID)
	assert.Equal(t, models.StatusPending, row.Status)
	assert.Equal(t, "Jane Citizen", row.RequesterName)
	assert.Nil(t, row.AssignedStaffID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery("SELECT r.id, r.title").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestListScopedToRequester(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows(requestRowTestColumns).
		AddRow("r1", "Case file", "Need the case file", string(models.TypeCaseFile),
			string(models.PriorityLow), string(models.StatusPending), "u1", nil, nil,
			nil, nil, nil, nil, nil, false, 1, now, now,
			"Jane Citizen", "jane@example.com", nil, nil)
	mock.ExpectQuery("SELECT r.id, r.title").WithArgs("u1").WillReturnRows(listRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows, total, err := repo.List(context.Background(), models.RequestFilter{RequesterID: "u1"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestAssignInsertsNotifications(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET status = 'assigned', assigned_staff_id = $2, version = version + 1, updated_at = $3 WHERE id = $1 AND status = 'pending'")).
		WithArgs("r1", "s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(sqlmock.AnyArg(), "s1", "Request assigned to you", sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ns := []models.Notification{{UserID: "s1", Title: "Request assigned to you", Message: "You were assigned a request."}}
	require.NoError(t, repo.Assign(context.Background(), "r1", "s1", ns))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestAssignRace(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE requests SET status = 'assigned'").
		WithArgs("r1", "s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Assign(context.Background(), "r1", "s1", nil)
	assert.ErrorIs(t, err, ErrStaleVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestUpdateStatusStaleVersion(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET status = $2, version = version + 1, updated_at = $3 WHERE id = $1 AND version = $4")).
		WithArgs("r1", models.StatusCompleted, sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateStatus(context.Background(), "r1", models.StatusCompleted, 3, nil)
	assert.ErrorIs(t, err, ErrStaleVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestUpdateStatusCommitsWithNotification(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE requests SET status = ").
		WithArgs("r1", models.StatusInProgress, sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(sqlmock.AnyArg(), "u1", "Request status updated", sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ns := []models.Notification{{UserID: "u1", Title: "Request status updated", Message: "Your request is now In Progress."}}
	require.NoError(t, repo.UpdateStatus(context.Background(), "r1", models.StatusInProgress, 1, ns))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestCancelClearsAssignee(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET status = 'cancelled', cancel_reason = $2, assigned_staff_id = NULL, version = version + 1, updated_at = $3 WHERE id = $1 AND status NOT IN ('completed', 'denied', 'cancelled')")).
		WithArgs("r1", "duplicate submission", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Cancel(context.Background(), "r1", "duplicate submission", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestCancelAlreadyTerminal(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE requests SET status = 'cancelled'").
		WithArgs("r1", "too late", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Cancel(context.Background(), "r1", "too late", nil)
	assert.ErrorIs(t, err, ErrStaleVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestDeleteCascades(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM messages WHERE request_id = $1")).
		WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attached_files WHERE request_id = $1")).
		WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM requests WHERE id = $1")).
		WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "r1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM messages").WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM attached_files").WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM requests").WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
