package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duvallb/records-request-api/internal/dto"
	"github.com/duvallb/records-request-api/internal/models"
	appErrors "github.com/duvallb/records-request-api/pkg/errors"
	"github.com/duvallb/records-request-api/pkg/response"
)

type emailTemplateService interface {
	ListTemplates(ctx context.Context) ([]models.EmailTemplate, error)
	GetTemplate(ctx context.Context, kind models.EmailTemplateType) (*models.EmailTemplate, error)
	UpdateTemplate(ctx context.Context, kind models.EmailTemplateType, req dto.UpdateTemplateRequest) (*models.EmailTemplate, error)
	SendTest(ctx context.Context, kind models.EmailTemplateType, req dto.TestEmailRequest) error
}

// EmailTemplateHandler wires email template management to HTTP endpoints.
type EmailTemplateHandler struct {
	service emailTemplateService
}

// NewEmailTemplateHandler constructs the handler.
func NewEmailTemplateHandler(service emailTemplateService) *EmailTemplateHandler {
	return &EmailTemplateHandler{service: service}
}

// List godoc
// @Summary List the notification email templates
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/email-templates [get]
func (h *EmailTemplateHandler) List(c *gin.Context) {
	templates, err := h.service.ListTemplates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, templates, nil)
}

// Get godoc
// @Summary Fetch one email template
// @Tags Admin
// @Produce json
// @Param type path string true "Template type"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/email-templates/{type} [get]
func (h *EmailTemplateHandler) Get(c *gin.Context) {
	tpl, err := h.service.GetTemplate(c.Request.Context(), models.EmailTemplateType(c.Param("type")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, tpl, nil)
}

// Update godoc
// @Summary Replace an email template's subject and body
// @Tags Admin
// @Accept json
// @Produce json
// @Param type path string true "Template type"
// @Param payload body dto.UpdateTemplateRequest true "Template payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/email-templates/{type} [put]
func (h *EmailTemplateHandler) Update(c *gin.Context) {
	var req dto.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template payload"))
		return
	}

	tpl, err := h.service.UpdateTemplate(c.Request.Context(), models.EmailTemplateType(c.Param("type")), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, tpl, nil)
}

// SendTest godoc
// @Summary Send a rendered test email
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body object true "Template type and recipient"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/email-templates/test [post]
func (h *EmailTemplateHandler) SendTest(c *gin.Context) {
	var payload struct {
		TemplateType string `json:"template_type" binding:"required"`
		To           string `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "template_type and to are required"))
		return
	}

	err := h.service.SendTest(c.Request.Context(), models.EmailTemplateType(payload.TemplateType), dto.TestEmailRequest{To: payload.To})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusAccepted, gin.H{"message": "test email queued"}, nil)
}
