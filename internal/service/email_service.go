package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duvallb/records-request-api/internal/dto"
	"github.com/duvallb/records-request-api/internal/models"
	appErrors "github.com/duvallb/records-request-api/pkg/errors"
	"github.com/duvallb/records-request-api/pkg/jobs"
	"github.com/duvallb/records-request-api/pkg/mailer"
)

type emailTemplateRepository interface {
	FindByType(ctx context.Context, t models.EmailTemplateType) (*models.EmailTemplate, error)
	List(ctx context.Context) ([]models.EmailTemplate, error)
	Upsert(ctx context.Context, tpl *models.EmailTemplate) error
}

type mailSender interface {
	Send(mail mailer.Mail) error
}

// defaultTemplates seed the four notification kinds. Placeholders use the
// #{variable} form and are substituted at send time; unknown placeholders are
// left in place so a typo is visible in the delivered mail rather than
// silently dropped.
var defaultTemplates = map[models.EmailTemplateType]models.EmailTemplate{
	models.TemplateNewRequest: {
		TemplateType: models.TemplateNewRequest,
		Subject:      "New records request: #{title}",
		Body:         "#{requester_name} submitted a new #{request_type} request.\n\nTitle: #{title}\nPriority: #{priority}\n\nPlease triage it in the records portal.",
		Enabled:      true,
	},
	models.TemplateAssignment: {
		TemplateType: models.TemplateAssignment,
		Subject:      "Request assigned to you: #{title}",
		Body:         "The request \"#{title}\" (#{request_type}) has been assigned to you.\n\nRequester: #{requester_name}\nPriority: #{priority}",
		Enabled:      true,
	},
	models.TemplateStatusUpdate: {
		TemplateType: models.TemplateStatusUpdate,
		Subject:      "Update on your records request: #{title}",
		Body:         "Hello #{requester_name},\n\nYour request \"#{title}\" is now #{status_label}.",
		Enabled:      true,
	},
	models.TemplateCancellation: {
		TemplateType: models.TemplateCancellation,
		Subject:      "Your records request was cancelled: #{title}",
		Body:         "Hello #{requester_name},\n\nYour request \"#{title}\" has been cancelled.\n\nReason: #{reason}",
		Enabled:      true,
	},
}

// EmailService renders notification templates and delivers them through a
// background queue so request handling never blocks on SMTP.
type EmailService struct {
	repo      emailTemplateRepository
	sender    mailSender
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	queue     *jobs.Queue
}

// NewEmailService constructs an EmailService with its delivery queue.
func NewEmailService(repo emailTemplateRepository, sender mailSender, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, queueCfg jobs.QueueConfig) *EmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	s := &EmailService{repo: repo, sender: sender, validator: validate, metrics: metrics, logger: logger}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("emails", s.processJob, queueCfg)
	return s
}

// Start begins background delivery workers.
func (s *EmailService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *EmailService) Stop() {
	s.queue.Stop()
}

func (s *EmailService) processJob(ctx context.Context, job jobs.Job) error {
	mail, ok := job.Payload.(mailer.Mail)
	if !ok {
		s.logger.Error("unexpected email job payload", zap.String("job_id", job.ID))
		return nil
	}
	err := s.sender.Send(mail)
	s.metrics.RecordEmail(job.Type, err == nil)
	return err
}

// Dispatch renders the template of the given kind and queues one mail per
// recipient. Disabled templates are skipped silently.
func (s *EmailService) Dispatch(ctx context.Context, kind models.EmailTemplateType, recipients []string, vars map[string]string) error {
	tpl, err := s.template(ctx, kind)
	if err != nil {
		return err
	}
	if !tpl.Enabled {
		return nil
	}

	subject := RenderPlaceholders(tpl.Subject, vars)
	body := RenderPlaceholders(tpl.Body, vars)

	for _, to := range recipients {
		if to == "" {
			continue
		}
		mail := mailer.Mail{To: to, Subject: subject, Body: body}
		if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: string(kind), Payload: mail}); err != nil {
			// Queue not running, e.g. in tests or during shutdown.
			// Deliver inline instead of dropping the mail.
			sendErr := s.sender.Send(mail)
			s.metrics.RecordEmail(string(kind), sendErr == nil)
			if sendErr != nil {
				s.logger.Warn("inline email delivery failed", zap.String("to", to), zap.Error(sendErr))
			}
		}
	}
	return nil
}

// SendTest delivers the template of the given kind with sample values so an
// admin can verify SMTP settings and placeholder output.
func (s *EmailService) SendTest(ctx context.Context, kind models.EmailTemplateType, req dto.TestEmailRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid test email payload")
	}
	vars := map[string]string{
		"title":          "Sample records request",
		"request_type":   string(models.TypeIncidentReport),
		"priority":       string(models.PriorityMedium),
		"requester_name": "Test Requester",
		"status_label":   "In Progress",
		"reason":         "This is a test delivery.",
	}
	return s.Dispatch(ctx, kind, []string{req.To}, vars)
}

// ListTemplates returns all templates, filling in defaults for kinds that
// have never been edited.
func (s *EmailService) ListTemplates(ctx context.Context) ([]models.EmailTemplate, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list email templates")
	}

	byType := make(map[models.EmailTemplateType]models.EmailTemplate, len(stored))
	for _, tpl := range stored {
		byType[tpl.TemplateType] = tpl
	}

	kinds := []models.EmailTemplateType{
		models.TemplateNewRequest,
		models.TemplateAssignment,
		models.TemplateStatusUpdate,
		models.TemplateCancellation,
	}
	out := make([]models.EmailTemplate, 0, len(kinds))
	for _, kind := range kinds {
		if tpl, ok := byType[kind]; ok {
			out = append(out, tpl)
			continue
		}
		out = append(out, defaultTemplates[kind])
	}
	return out, nil
}

// GetTemplate returns one template, falling back to the built-in default.
func (s *EmailService) GetTemplate(ctx context.Context, kind models.EmailTemplateType) (*models.EmailTemplate, error) {
	if _, ok := defaultTemplates[kind]; !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown template type %q", kind))
	}
	return s.template(ctx, kind)
}

// UpdateTemplate stores an edited template.
func (s *EmailService) UpdateTemplate(ctx context.Context, kind models.EmailTemplateType, req dto.UpdateTemplateRequest) (*models.EmailTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}
	if _, ok := defaultTemplates[kind]; !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown template type %q", kind))
	}

	tpl := &models.EmailTemplate{
		TemplateType: kind,
		Subject:      req.Subject,
		Body:         req.Body,
		Enabled:      *req.Enabled,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, tpl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save email template")
	}
	return tpl, nil
}

func (s *EmailService) template(ctx context.Context, kind models.EmailTemplateType) (*models.EmailTemplate, error) {
	tpl, err := s.repo.FindByType(ctx, kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			def := defaultTemplates[kind]
			return &def, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load email template")
	}
	return tpl, nil
}

// RenderPlaceholders substitutes #{name} markers with values from vars.
// Markers without a matching value are left untouched.
func RenderPlaceholders(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "#{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// requestVars builds the substitution set shared by request-related mails.
func requestVars(row *models.RequestRow) map[string]string {
	vars := map[string]string{
		"title":          row.Title,
		"request_type":   string(row.RequestType),
		"priority":       string(row.Priority),
		"status":         string(row.Status),
		"requester_name": row.RequesterName,
	}
	if meta, err := row.Status.Meta(); err == nil {
		vars["status_label"] = meta.Label
	}
	if row.CancelReason != nil {
		vars["reason"] = *row.CancelReason
	}
	return vars
}
