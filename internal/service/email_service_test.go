package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvallb/records-request-api/internal/dto"
	"github.com/duvallb/records-request-api/internal/models"
	"github.com/duvallb/records-request-api/pkg/jobs"
	"github.com/duvallb/records-request-api/pkg/mailer"
)

type mockTemplateRepo struct {
	templates map[models.EmailTemplateType]*models.EmailTemplate
	upserted  []*models.EmailTemplate
}

func (m *mockTemplateRepo) FindByType(ctx context.Context, t models.EmailTemplateType) (*models.EmailTemplate, error) {
	tpl, ok := m.templates[t]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return tpl, nil
}

func (m *mockTemplateRepo) List(ctx context.Context) ([]models.EmailTemplate, error) {
	var out []models.EmailTemplate
	for _, tpl := range m.templates {
		out = append(out, *tpl)
	}
	return out, nil
}

func (m *mockTemplateRepo) Upsert(ctx context.Context, tpl *models.EmailTemplate) error {
	if m.templates == nil {
		m.templates = make(map[models.EmailTemplateType]*models.EmailTemplate)
	}
	m.templates[tpl.TemplateType] = tpl
	m.upserted = append(m.upserted, tpl)
	return nil
}

type captureSender struct {
	mu    sync.Mutex
	mails []mailer.Mail
}

func (c *captureSender) Send(mail mailer.Mail) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mails = append(c.mails, mail)
	return nil
}

func (c *captureSender) sent() []mailer.Mail {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]mailer.Mail, len(c.mails))
	copy(out, c.mails)
	return out
}

func newEmailService(repo *mockTemplateRepo, sender *captureSender) *EmailService {
	// The queue is never started here so Dispatch falls back to inline
	// delivery, keeping assertions synchronous.
	return NewEmailService(repo, sender, nil, nil, nil, jobs.QueueConfig{Workers: 1})
}

func TestRenderPlaceholders(t *testing.T) {
	out := RenderPlaceholders("Hello #{name}, your #{thing} is ready", map[string]string{
		"name":  "Jane",
		"thing": "report",
	})
	assert.Equal(t, "Hello Jane, your report is ready", out)
}

func TestRenderPlaceholdersKeepsUnknownMarkers(t *testing.T) {
	out := RenderPlaceholders("Hi #{name}, see #{mystery}", map[string]string{"name": "Jane"})
	assert.Equal(t, "Hi Jane, see #{mystery}", out)
}

func TestDispatchUsesDefaultTemplate(t *testing.T) {
	repo := &mockTemplateRepo{}
	sender := &captureSender{}
	svc := newEmailService(repo, sender)

	err := svc.Dispatch(context.Background(), models.TemplateStatusUpdate, []string{"jane@example.com"}, map[string]string{
		"title":          "Crash report",
		"requester_name": "Jane",
		"status_label":   "Completed",
	})
	require.NoError(t, err)

	mails := sender.sent()
	require.Len(t, mails, 1)
	assert.Equal(t, "jane@example.com", mails[0].To)
	assert.Equal(t, "Update on your records request: Crash report", mails[0].Subject)
	assert.Contains(t, mails[0].Body, "is now Completed")
}

func TestDispatchSkipsDisabledTemplate(t *testing.T) {
	repo := &mockTemplateRepo{templates: map[models.EmailTemplateType]*models.EmailTemplate{
		models.TemplateNewRequest: {TemplateType: models.TemplateNewRequest, Subject: "s", Body: "b", Enabled: false},
	}}
	sender := &captureSender{}
	svc := newEmailService(repo, sender)

	err := svc.Dispatch(context.Background(), models.TemplateNewRequest, []string{"admin@pd.example.com"}, nil)
	require.NoError(t, err)
	assert.Empty(t, sender.sent())
}

func TestDispatchFansOutToAllRecipients(t *testing.T) {
	repo := &mockTemplateRepo{}
	sender := &captureSender{}
	svc := newEmailService(repo, sender)

	err := svc.Dispatch(context.Background(), models.TemplateNewRequest,
		[]string{"one@pd.example.com", "", "two@pd.example.com"},
		map[string]string{"title": "T", "requester_name": "R", "request_type": "other", "priority": "low"})
	require.NoError(t, err)
	assert.Len(t, sender.sent(), 2)
}

func TestListTemplatesFillsDefaults(t *testing.T) {
	repo := &mockTemplateRepo{templates: map[models.EmailTemplateType]*models.EmailTemplate{
		models.TemplateCancellation: {TemplateType: models.TemplateCancellation, Subject: "custom", Body: "b", Enabled: true},
	}}
	svc := newEmailService(repo, &captureSender{})

	tpls, err := svc.ListTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, tpls, 4)

	byType := make(map[models.EmailTemplateType]models.EmailTemplate)
	for _, tpl := range tpls {
		byType[tpl.TemplateType] = tpl
	}
	assert.Equal(t, "custom", byType[models.TemplateCancellation].Subject)
	assert.Equal(t, defaultTemplates[models.TemplateNewRequest].Subject, byType[models.TemplateNewRequest].Subject)
}

func TestUpdateTemplate(t *testing.T) {
	repo := &mockTemplateRepo{}
	svc := newEmailService(repo, &captureSender{})

	enabled := true
	tpl, err := svc.UpdateTemplate(context.Background(), models.TemplateAssignment, dto.UpdateTemplateRequest{
		Subject: "You're up: #{title}",
		Body:    "Assigned to you.",
		Enabled: &enabled,
	})
	require.NoError(t, err)
	assert.Equal(t, "You're up: #{title}", tpl.Subject)
	require.Len(t, repo.upserted, 1)
}

func TestUpdateTemplateUnknownKind(t *testing.T) {
	svc := newEmailService(&mockTemplateRepo{}, &captureSender{})

	enabled := true
	_, err := svc.UpdateTemplate(context.Background(), models.EmailTemplateType("bogus"), dto.UpdateTemplateRequest{
		Subject: "s", Body: "b", Enabled: &enabled,
	})
	require.Error(t, err)
}
