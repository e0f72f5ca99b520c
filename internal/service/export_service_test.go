package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvallb/records-request-api/internal/models"
	appErrors "github.com/duvallb/records-request-api/pkg/errors"
)

type exportFixture struct {
	svc      *ExportService
	requests *mockRequestRepo
	files    *mockFileStore
	messages *mockMessageStore
}

func newExportFixture() *exportFixture {
	f := &exportFixture{
		requests: newMockRequestRepo(),
		files:    &mockFileStore{files: make(map[string][]models.AttachedFile)},
		messages: &mockMessageStore{},
	}
	f.svc = NewExportService(f.requests, f.files, f.messages, nil)
	return f
}

func seedExportRequest(f *exportFixture, id string, status models.RequestStatus) {
	f.requests.rows[id] = &models.RequestRow{
		Request: models.Request{
			ID:          id,
			Title:       "Incident report copy",
			Description: "Copy of the incident report from March 3rd.",
			RequestType: models.TypeIncidentReport,
			Priority:    models.PriorityMedium,
			Status:      status,
			RequesterID: "citizen-1",
			Version:     1,
		},
		RequesterName:  "Jane Citizen",
		RequesterEmail: "jane@example.com",
	}
}

func TestRequestsCSVAdminOnly(t *testing.T) {
	f := newExportFixture()

	_, _, err := f.svc.RequestsCSV(context.Background(), citizenClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, _, err = f.svc.RequestsCSV(context.Background(), staffClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestRequestsCSVMasterList(t *testing.T) {
	f := newExportFixture()
	seedExportRequest(f, "r1", models.StatusPending)
	seedExportRequest(f, "r2", models.StatusCompleted)

	data, filename, err := f.svc.RequestsCSV(context.Background(), adminClaims())
	require.NoError(t, err)
	assert.Contains(t, filename, ".csv")

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, masterListHeaders, records[0])
	assert.Equal(t, "Jane Citizen", records[1][5])
}

func TestRequestPDFRendered(t *testing.T) {
	f := newExportFixture()
	seedExportRequest(f, "r1", models.StatusInProgress)
	f.files.files["r1"] = []models.AttachedFile{{ID: "f1", RequestID: "r1", OriginalName: "report.pdf"}}
	f.messages.messages = []models.Message{{ID: "m1", RequestID: "r1", Content: "Working on it."}}

	data, filename, err := f.svc.RequestPDF(context.Background(), citizenClaims(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "request-r1.pdf", filename)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRequestPDFHiddenForForeignCitizen(t *testing.T) {
	f := newExportFixture()
	seedExportRequest(f, "r1", models.StatusPending)

	other := &models.JWTClaims{UserID: "citizen-2", Role: models.RoleCitizen}
	_, _, err := f.svc.RequestPDF(context.Background(), other, "r1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRequestPDFMissingRequest(t *testing.T) {
	f := newExportFixture()

	_, _, err := f.svc.RequestPDF(context.Background(), adminClaims(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
