package dto

// UpdateTemplateRequest replaces an email template's subject and body. Subject
// and body may use #{variable} placeholders resolved at send time.
type UpdateTemplateRequest struct {
	Subject string `json:"subject" validate:"required,min=1,max=300"`
	Body    string `json:"body" validate:"required,min=1"`
	Enabled *bool  `json:"enabled" validate:"required"`
}

// TestEmailRequest sends a rendered template to an arbitrary address so an
// admin can verify SMTP settings and placeholder output.
type TestEmailRequest struct {
	To string `json:"to" validate:"required,email"`
}
