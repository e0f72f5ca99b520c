package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/duvallb/records-request-api/internal/models"
)

// FileRepository provides database access for request attachments.
type FileRepository struct {
	db *sqlx.DB
}

// NewFileRepository creates a new instance of FileRepository.
func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts an attachment record.
func (r *FileRepository) Create(ctx context.Context, file *models.AttachedFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attached_files (id, request_id, original_name, content_type, size_bytes, storage_path, uploaded_by, uploaded_at) VALUES (:id, :request_id, :original_name, :content_type, :size_bytes, :storage_path, :uploaded_by, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, file); err != nil {
		return fmt.Errorf("create attached file: %w", err)
	}
	return nil
}

// FindByID returns an attachment by identifier.
func (r *FileRepository) FindByID(ctx context.Context, id string) (*models.AttachedFile, error) {
	const query = `SELECT id, request_id, original_name, content_type, size_bytes, storage_path, uploaded_by, uploaded_at FROM attached_files WHERE id = $1 LIMIT 1`
	var file models.AttachedFile
	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attached file: %w", err)
	}
	return &file, nil
}

// ListByRequest returns all attachments for a request, oldest first.
func (r *FileRepository) ListByRequest(ctx context.Context, requestID string) ([]models.AttachedFile, error) {
	const query = `SELECT id, request_id, original_name, content_type, size_bytes, storage_path, uploaded_by, uploaded_at FROM attached_files WHERE request_id = $1 ORDER BY uploaded_at ASC`
	var files []models.AttachedFile
	if err := r.db.SelectContext(ctx, &files, query, requestID); err != nil {
		return nil, fmt.Errorf("list attached files: %w", err)
	}
	return files, nil
}

// CountByRequest returns the number of attachments on a request.
func (r *FileRepository) CountByRequest(ctx context.Context, requestID string) (int, error) {
	const query = `SELECT COUNT(*) FROM attached_files WHERE request_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, requestID); err != nil {
		return 0, fmt.Errorf("count attached files: %w", err)
	}
	return total, nil
}
