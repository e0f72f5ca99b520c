package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duvallb/records-request-api/internal/models"
	appErrors "github.com/duvallb/records-request-api/pkg/errors"
	"github.com/duvallb/records-request-api/pkg/response"
)

type exportService interface {
	RequestsCSV(ctx context.Context, actor *models.JWTClaims) ([]byte, string, error)
	RequestPDF(ctx context.Context, actor *models.JWTClaims, requestID string) ([]byte, string, error)
}

// ExportHandler serves CSV and PDF exports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// RequestsCSV godoc
// @Summary Export the master request list as CSV
// @Tags Export
// @Produce text/csv
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /export/requests/csv [get]
func (h *ExportHandler) RequestsCSV(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	data, filename, err := h.service.RequestsCSV(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// RequestPDF godoc
// @Summary Export one request as a PDF summary
// @Tags Export
// @Produce application/pdf
// @Param id path string true "Request ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /export/requests/{id}/pdf [get]
func (h *ExportHandler) RequestPDF(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	data, filename, err := h.service.RequestPDF(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
