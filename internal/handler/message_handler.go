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

type messageService interface {
	Post(ctx context.Context, actor *models.JWTClaims, requestID string, req dto.CreateMessageRequest) (*models.Message, error)
	List(ctx context.Context, actor *models.JWTClaims, requestID string) ([]models.Message, error)
}

// MessageHandler wires request message threads to HTTP endpoints.
type MessageHandler struct {
	service messageService
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(service messageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Post godoc
// @Summary Post a message on a request
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.CreateMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id}/messages [post]
func (h *MessageHandler) Post(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	msg, err := h.service.Post(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, msg)
}

// List godoc
// @Summary List a request's message thread
// @Tags Messages
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id}/messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	msgs, err := h.service.List(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, msgs, nil)
}
