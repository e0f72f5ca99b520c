package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/duvallb/records-request-api/internal/authz"
	"github.com/duvallb/records-request-api/internal/models"
	appErrors "github.com/duvallb/records-request-api/pkg/errors"
	"github.com/duvallb/records-request-api/pkg/export"
)

// exportPageSize bounds each page pulled while streaming the master list.
const exportPageSize = 500

type exportRequestSource interface {
	FindByID(ctx context.Context, id string) (*models.RequestRow, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.RequestRow, int, error)
}

type exportFileStore interface {
	ListByRequest(ctx context.Context, requestID string) ([]models.AttachedFile, error)
}

type exportMessageStore interface {
	ListByRequest(ctx context.Context, requestID string) ([]models.Message, error)
}

// ExportService renders the master request list as CSV and individual
// requests as PDF summaries.
type ExportService struct {
	requests exportRequestSource
	files    exportFileStore
	messages exportMessageStore
	logger   *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(requests exportRequestSource, files exportFileStore, messages exportMessageStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		requests: requests,
		files:    files,
		messages: messages,
		logger:   logger,
	}
}

var masterListHeaders = []string{
	"ID", "Title", "Type", "Priority", "Status",
	"Requester", "Assigned To", "Case Number", "Created", "Updated",
}

// RequestsCSV renders every request into a CSV master list.
func (s *ExportService) RequestsCSV(ctx context.Context, actor *models.JWTClaims) ([]byte, string, error) {
	if actor.Role != models.RoleAdmin {
		return nil, "", appErrors.ErrForbidden
	}

	table := export.Table{Columns: masterListHeaders}
	for page := 1; ; page++ {
		rows, _, err := s.requests.List(ctx, models.RequestFilter{Page: page, PageSize: exportPageSize})
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requests for export")
		}
		for i := range rows {
			table.Rows = append(table.Rows, masterListRow(&rows[i]))
		}
		if len(rows) < exportPageSize {
			break
		}
	}

	buf := &bytes.Buffer{}
	if err := export.WriteCSV(buf, table); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	filename := fmt.Sprintf("requests-%s.csv", time.Now().UTC().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// RequestPDF renders one request as a PDF summary. Visibility follows the
// same rules as viewing the request itself.
func (s *ExportService) RequestPDF(ctx context.Context, actor *models.JWTClaims, requestID string) ([]byte, string, error) {
	row, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}

	own := authz.Ownership{
		IsOwner:    row.RequesterID == actor.UserID,
		IsAssignee: row.AssignedStaffID != nil && *row.AssignedStaffID == actor.UserID,
	}
	if !authz.Decide(actor.Role, authz.ActionView, own) {
		if actor.Role == models.RoleCitizen {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, "", appErrors.ErrForbidden
	}

	files, err := s.files.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load files")
	}
	msgs, err := s.messages.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load messages")
	}

	data, err := export.RenderPDF(requestTable(row, files, msgs), "Records Request "+row.ID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	filename := fmt.Sprintf("request-%s.pdf", row.ID)
	return data, filename, nil
}

func masterListRow(row *models.RequestRow) []string {
	assigned := ""
	if row.AssignedStaffName != nil {
		assigned = *row.AssignedStaffName
	}
	caseNumber := ""
	if row.CaseNumber != nil {
		caseNumber = *row.CaseNumber
	}
	return []string{
		row.ID,
		row.Title,
		string(row.RequestType),
		string(row.Priority),
		string(row.Status),
		row.RequesterName,
		assigned,
		caseNumber,
		row.CreatedAt.UTC().Format(time.RFC3339),
		row.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// requestTable flattens one request into Field/Value rows for the PDF.
func requestTable(row *models.RequestRow, files []models.AttachedFile, msgs []models.Message) export.Table {
	statusLabel := string(row.Status)
	if meta, err := row.Status.Meta(); err == nil {
		statusLabel = meta.Label
	}

	rows := [][]string{
		{"Title", row.Title},
		{"Type", string(row.RequestType)},
		{"Priority", string(row.Priority)},
		{"Status", statusLabel},
		{"Requester", row.RequesterName},
		{"Description", row.Description},
	}
	if row.AssignedStaffName != nil {
		rows = append(rows, []string{"Assigned To", *row.AssignedStaffName})
	}
	if row.CaseNumber != nil {
		rows = append(rows, []string{"Case Number", *row.CaseNumber})
	}
	if row.IncidentDate != nil {
		rows = append(rows, []string{"Incident Date", *row.IncidentDate})
	}
	if row.IncidentLocation != nil {
		rows = append(rows, []string{"Incident Location", *row.IncidentLocation})
	}
	if row.CancelReason != nil {
		rows = append(rows, []string{"Cancellation Reason", *row.CancelReason})
	}
	rows = append(rows,
		[]string{"Attached Files", strconv.Itoa(len(files))},
		[]string{"Messages", strconv.Itoa(len(msgs))},
		[]string{"Created", row.CreatedAt.UTC().Format(time.RFC3339)},
		[]string{"Updated", row.UpdatedAt.UTC().Format(time.RFC3339)},
	)
	for _, f := range files {
		rows = append(rows, []string{"File", f.OriginalName})
	}
	return export.Table{Columns: []string{"Field", "Value"}, Rows: rows}
}
