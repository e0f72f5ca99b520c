package models

import "time"

// EmailTemplateType enumerates the notification template kinds.
type EmailTemplateType string

const (
	TemplateNewRequest   EmailTemplateType = "new_request"
	TemplateAssignment   EmailTemplateType = "assignment_notification"
	TemplateStatusUpdate EmailTemplateType = "status_update"
	TemplateCancellation EmailTemplateType = "cancellation"
)

// EmailTemplate holds an editable notification template. Subject and body may
// reference request/user fields with #{variable} placeholders.
type EmailTemplate struct {
	TemplateType EmailTemplateType `db:"template_type" json:"template_type"`
	Subject      string            `db:"subject" json:"subject"`
	Body         string            `db:"body" json:"body"`
	Enabled      bool              `db:"enabled" json:"enabled"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}
