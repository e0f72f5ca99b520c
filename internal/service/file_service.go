package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duvallb/records-request-api/internal/authz"
	"github.com/duvallb/records-request-api/internal/lifecycle"
	"github.com/duvallb/records-request-api/internal/models"
	appErrors "github.com/duvallb/records-request-api/pkg/errors"
)

type fileRepository interface {
	Create(ctx context.Context, file *models.AttachedFile) error
	FindByID(ctx context.Context, id string) (*models.AttachedFile, error)
	ListByRequest(ctx context.Context, requestID string) ([]models.AttachedFile, error)
}

type fileRequestLookup interface {
	FindByID(ctx context.Context, id string) (*models.RequestRow, error)
}

type fileBlobStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

// countingReader tracks how many bytes passed through so oversized uploads
// can be detected even when the declared size lied.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

type downloadSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (id, relPath string, expiresAt time.Time, err error)
}

type fileAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// FileService handles attachment uploads and signed downloads. Uploads are
// capped in size and blocked once a request reaches a terminal status.
type FileService struct {
	repo     fileRepository
	requests fileRequestLookup
	blobs    fileBlobStorage
	signer   downloadSigner
	auditor  fileAuditor
	metrics  *MetricsService
	maxBytes int64
	logger   *zap.Logger
}

// NewFileService constructs a FileService instance.
func NewFileService(repo fileRepository, requests fileRequestLookup, blobs fileBlobStorage, signer downloadSigner, auditor fileAuditor, metrics *MetricsService, maxBytes int64, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &FileService{repo: repo, requests: requests, blobs: blobs, signer: signer, auditor: auditor, metrics: metrics, maxBytes: maxBytes, logger: logger}
}

// MaxBytes returns the upload size cap.
func (s *FileService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload attaches a file to a request. The reader is capped at the configured
// limit; exceeding it aborts the upload rather than truncating it.
func (s *FileService) Upload(ctx context.Context, actor *models.JWTClaims, requestID, originalName, contentType string, size int64, r io.Reader) (*models.AttachedFile, string, error) {
	if size > s.maxBytes {
		return nil, "", appErrors.Clone(appErrors.ErrUploadTooLarge, fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes))
	}

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
	if !authz.Decide(actor.Role, authz.ActionUploadFile, own) {
		return nil, "", appErrors.ErrForbidden
	}

	if lifecycle.IsTerminal(row.Status) {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "request is closed, no further uploads accepted")
	}

	// LimitReader with one extra byte: reading past the cap means the
	// declared size lied.
	counted := &countingReader{r: io.LimitReader(r, s.maxBytes+1)}
	// The blob path carries the file ID so same-named uploads on one
	// request never clobber each other.
	fileID := uuid.NewString()
	relPath := filepath.Join(requestID, fileID+"-"+filepath.Base(originalName))
	if _, err := s.blobs.SaveStream(relPath, counted); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}
	if counted.n > s.maxBytes {
		_ = s.blobs.Delete(relPath)
		return nil, "", appErrors.Clone(appErrors.ErrUploadTooLarge, fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes))
	}

	file := &models.AttachedFile{
		ID:           fileID,
		RequestID:    requestID,
		OriginalName: filepath.Base(originalName),
		ContentType:  contentType,
		SizeBytes:    counted.n,
		StoragePath:  relPath,
		UploadedBy:   actor.UserID,
	}
	if err := s.repo.Create(ctx, file); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record file")
	}
	s.metrics.RecordUpload()

	if err := s.auditor.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionFileUpload,
		Resource:   "file",
		ResourceID: &file.ID,
		NewValues:  []byte(fmt.Sprintf(`{"request_id":%q,"name":%q}`, requestID, file.OriginalName)),
	}); err != nil {
		s.logger.Warn("failed to record upload audit log", zap.Error(err))
	}

	token, _, err := s.signer.Generate(file.ID, file.StoragePath)
	if err != nil {
		s.logger.Warn("failed to sign download token", zap.String("file_id", file.ID), zap.Error(err))
		return file, "", nil
	}
	return file, token, nil
}

// SignedDownloadToken authorizes the actor against the file's request and
// returns a time-limited token for the download endpoint.
func (s *FileService) SignedDownloadToken(ctx context.Context, actor *models.JWTClaims, fileID string) (string, error) {
	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}

	row, err := s.requests.FindByID(ctx, file.RequestID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}

	own := authz.Ownership{
		IsOwner:    row.RequesterID == actor.UserID,
		IsAssignee: row.AssignedStaffID != nil && *row.AssignedStaffID == actor.UserID,
	}
	if !authz.Decide(actor.Role, authz.ActionDownloadFile, own) {
		return "", appErrors.ErrForbidden
	}

	token, _, err := s.signer.Generate(file.ID, file.StoragePath)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	return token, nil
}

// OpenByToken validates a signed token and opens the referenced blob. The
// token itself is the credential; no session is required.
func (s *FileService) OpenByToken(ctx context.Context, token string) (*models.AttachedFile, *os.File, error) {
	fileID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	if file.StoragePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "download token does not match file")
	}

	blob, err := s.blobs.Open(file.StoragePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return file, blob, nil
}

// ListForRequest returns the attachments the actor may see.
func (s *FileService) ListForRequest(ctx context.Context, actor *models.JWTClaims, requestID string) ([]models.AttachedFile, error) {
	row, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}

	own := authz.Ownership{
		IsOwner:    row.RequesterID == actor.UserID,
		IsAssignee: row.AssignedStaffID != nil && *row.AssignedStaffID == actor.UserID,
	}
	if !authz.Decide(actor.Role, authz.ActionView, own) {
		if actor.Role == models.RoleCitizen {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.ErrForbidden
	}

	files, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list files")
	}
	return files, nil
}
