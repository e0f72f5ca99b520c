package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvallb/records-request-api/internal/models"
	appErrors "github.com/duvallb/records-request-api/pkg/errors"
	"github.com/duvallb/records-request-api/pkg/storage"
)

type mockFileRepo struct {
	files map[string]*models.AttachedFile
}

func (m *mockFileRepo) Create(ctx context.Context, file *models.AttachedFile) error {
	if file.ID == "" {
		file.ID = "file-1"
	}
	if m.files == nil {
		m.files = make(map[string]*models.AttachedFile)
	}
	m.files[file.ID] = file
	return nil
}

func (m *mockFileRepo) FindByID(ctx context.Context, id string) (*models.AttachedFile, error) {
	f, ok := m.files[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return f, nil
}

func (m *mockFileRepo) ListByRequest(ctx context.Context, requestID string) ([]models.AttachedFile, error) {
	var out []models.AttachedFile
	for _, f := range m.files {
		if f.RequestID == requestID {
			out = append(out, *f)
		}
	}
	return out, nil
}

type fileServiceFixture struct {
	svc      *FileService
	repo     *mockFileRepo
	requests *mockRequestRepo
	users    *mockUserDirectory
}

func newFileFixture(t *testing.T, maxBytes int64) *fileServiceFixture {
	t.Helper()
	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-signing-secret", time.Hour)

	f := &fileServiceFixture{
		repo:     &mockFileRepo{files: make(map[string]*models.AttachedFile)},
		requests: newMockRequestRepo(),
		users:    &mockUserDirectory{},
	}
	f.svc = NewFileService(f.repo, f.requests, blobs, signer, f.users, nil, maxBytes, nil)
	return f
}

func seedFileRequest(f *fileServiceFixture, id string, status models.RequestStatus, assignee *string) {
	f.requests.rows[id] = &models.RequestRow{
		Request: models.Request{
			ID:              id,
			Title:           "Incident report copy",
			Status:          status,
			RequesterID:     "citizen-1",
			AssignedStaffID: assignee,
			Version:         1,
		},
		RequesterName:  "Jane Citizen",
		RequesterEmail: "jane@example.com",
	}
}

func TestUploadByOwner(t *testing.T) {
	f := newFileFixture(t, 1024)
	seedFileRequest(f, "r1", models.StatusPending, nil)

	content := "supporting document body"
	file, token, err := f.svc.Upload(context.Background(), citizenClaims(), "r1", "claim.pdf", "application/pdf", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "claim.pdf", file.OriginalName)
	assert.Equal(t, int64(len(content)), file.SizeBytes)
	assert.Equal(t, "citizen-1", file.UploadedBy)
	assert.NotEmpty(t, token)
}

func TestUploadRejectsOversizedDeclaredFile(t *testing.T) {
	f := newFileFixture(t, 16)
	seedFileRequest(f, "r1", models.StatusPending, nil)

	_, _, err := f.svc.Upload(context.Background(), citizenClaims(), "r1", "big.bin", "application/octet-stream", 1024, strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUploadTooLarge.Code, appErrors.FromError(err).Code)
}

func TestUploadRejectsOversizedStreamWithLyingSizeHeader(t *testing.T) {
	f := newFileFixture(t, 16)
	seedFileRequest(f, "r1", models.StatusPending, nil)

	payload := strings.Repeat("a", 64)
	_, _, err := f.svc.Upload(context.Background(), citizenClaims(), "r1", "sneaky.bin", "application/octet-stream", 8, strings.NewReader(payload))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUploadTooLarge.Code, appErrors.FromError(err).Code)
}

func TestUploadBlockedOnTerminalRequest(t *testing.T) {
	f := newFileFixture(t, 1024)
	seedFileRequest(f, "r1", models.StatusCompleted, nil)

	_, _, err := f.svc.Upload(context.Background(), citizenClaims(), "r1", "late.pdf", "application/pdf", 4, strings.NewReader("late"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUploadSameNameTwiceKeepsBothFiles(t *testing.T) {
	f := newFileFixture(t, 1024)
	seedFileRequest(f, "r1", models.StatusPending, nil)

	first, _, err := f.svc.Upload(context.Background(), citizenClaims(), "r1", "document.pdf", "application/pdf", 5, strings.NewReader("first"))
	require.NoError(t, err)
	second, _, err := f.svc.Upload(context.Background(), citizenClaims(), "r1", "document.pdf", "application/pdf", 6, strings.NewReader("second"))
	require.NoError(t, err)

	assert.NotEqual(t, first.StoragePath, second.StoragePath)

	// The first blob keeps its original bytes.
	blob, err := f.svc.blobs.Open(first.StoragePath)
	require.NoError(t, err)
	defer blob.Close()
	data, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestUploadForbiddenForNonOwnerCitizen(t *testing.T) {
	f := newFileFixture(t, 1024)
	seedFileRequest(f, "r1", models.StatusPending, nil)

	other := &models.JWTClaims{UserID: "citizen-2", Role: models.RoleCitizen}
	_, _, err := f.svc.Upload(context.Background(), other, "r1", "doc.pdf", "application/pdf", 4, strings.NewReader("data"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestUploadAllowedForAssignedStaff(t *testing.T) {
	f := newFileFixture(t, 1024)
	assignee := "staff-1"
	seedFileRequest(f, "r1", models.StatusInProgress, &assignee)

	file, _, err := f.svc.Upload(context.Background(), staffClaims(), "r1", "records.zip", "application/zip", 7, strings.NewReader("records"))
	require.NoError(t, err)
	assert.Equal(t, "staff-1", file.UploadedBy)
}

func TestSignedDownloadRoundTrip(t *testing.T) {
	f := newFileFixture(t, 1024)
	seedFileRequest(f, "r1", models.StatusInProgress, nil)

	content := "the requested records"
	uploaded, _, err := f.svc.Upload(context.Background(), citizenClaims(), "r1", "records.txt", "text/plain", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)

	token, err := f.svc.SignedDownloadToken(context.Background(), citizenClaims(), uploaded.ID)
	require.NoError(t, err)

	file, blob, err := f.svc.OpenByToken(context.Background(), token)
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, uploaded.ID, file.ID)
	data, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestSignedDownloadForbiddenForNonAssigneeStaff(t *testing.T) {
	f := newFileFixture(t, 1024)
	other := "staff-2"
	seedFileRequest(f, "r1", models.StatusInProgress, &other)

	uploaded, _, err := f.svc.Upload(context.Background(), citizenClaims(), "r1", "records.txt", "text/plain", 4, strings.NewReader("data"))
	require.NoError(t, err)

	_, err = f.svc.SignedDownloadToken(context.Background(), staffClaims(), uploaded.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestOpenByTokenRejectsTamperedToken(t *testing.T) {
	f := newFileFixture(t, 1024)
	seedFileRequest(f, "r1", models.StatusInProgress, nil)

	uploaded, token, err := f.svc.Upload(context.Background(), citizenClaims(), "r1", "records.txt", "text/plain", 4, strings.NewReader("data"))
	require.NoError(t, err)
	_ = uploaded

	_, _, err = f.svc.OpenByToken(context.Background(), token+"tampered")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestSignedDownloadForbiddenForForeignCitizen(t *testing.T) {
	f := newFileFixture(t, 1024)
	seedFileRequest(f, "r1", models.StatusInProgress, nil)

	uploaded, _, err := f.svc.Upload(context.Background(), citizenClaims(), "r1", "records.txt", "text/plain", 4, strings.NewReader("data"))
	require.NoError(t, err)

	other := &models.JWTClaims{UserID: "citizen-2", Role: models.RoleCitizen}
	_, err = f.svc.SignedDownloadToken(context.Background(), other, uploaded.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
