package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/duvallb/records-request-api/internal/models"
)

// EmailTemplateRepository provides database access for notification email
// templates. Templates are keyed by type; there is exactly one row per kind.
type EmailTemplateRepository struct {
	db *sqlx.DB
}

// NewEmailTemplateRepository creates a new instance of EmailTemplateRepository.
func NewEmailTemplateRepository(db *sqlx.DB) *EmailTemplateRepository {
	return &EmailTemplateRepository{db: db}
}

// FindByType returns the template for a notification kind.
func (r *EmailTemplateRepository) FindByType(ctx context.Context, t models.EmailTemplateType) (*models.EmailTemplate, error) {
	const query = `SELECT template_type, subject, body, enabled, updated_at FROM email_templates WHERE template_type = $1 LIMIT 1`
	var tpl models.EmailTemplate
	if err := r.db.GetContext(ctx, &tpl, query, t); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find email template: %w", err)
	}
	return &tpl, nil
}

// List returns all templates ordered by type.
func (r *EmailTemplateRepository) List(ctx context.Context) ([]models.EmailTemplate, error) {
	const query = `SELECT template_type, subject, body, enabled, updated_at FROM email_templates ORDER BY template_type ASC`
	var tpls []models.EmailTemplate
	if err := r.db.SelectContext(ctx, &tpls, query); err != nil {
		return nil, fmt.Errorf("list email templates: %w", err)
	}
	return tpls, nil
}

// Upsert writes a template, inserting the row on first edit.
func (r *EmailTemplateRepository) Upsert(ctx context.Context, tpl *models.EmailTemplate) error {
	tpl.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO email_templates (template_type, subject, body, enabled, updated_at) VALUES (:template_type, :subject, :body, :enabled, :updated_at) ON CONFLICT (template_type) DO UPDATE SET subject = EXCLUDED.subject, body = EXCLUDED.body, enabled = EXCLUDED.enabled, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, tpl); err != nil {
		return fmt.Errorf("upsert email template: %w", err)
	}
	return nil
}
