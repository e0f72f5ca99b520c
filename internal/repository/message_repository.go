package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/duvallb/records-request-api/internal/models"
)

// MessageRepository provides database access for request message threads.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new instance of MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message to a request thread.
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO messages (id, request_id, sender_id, sender_name, sender_role, content, created_at) VALUES (:id, :request_id, :sender_id, :sender_name, :sender_role, :content, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListByRequest returns the thread for a request in chronological order.
func (r *MessageRepository) ListByRequest(ctx context.Context, requestID string) ([]models.Message, error) {
	const query = `SELECT id, request_id, sender_id, sender_name, sender_role, content, created_at FROM messages WHERE request_id = $1 ORDER BY created_at ASC`
	var msgs []models.Message
	if err := r.db.SelectContext(ctx, &msgs, query, requestID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// CountByRequest returns the number of messages on a request.
func (r *MessageRepository) CountByRequest(ctx context.Context, requestID string) (int, error) {
	const query = `SELECT COUNT(*) FROM messages WHERE request_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, requestID); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return total, nil
}
