package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/duvallb/records-request-api/internal/authz"
	"github.com/duvallb/records-request-api/internal/dto"
	"github.com/duvallb/records-request-api/internal/models"
	appErrors "github.com/duvallb/records-request-api/pkg/errors"
)

type messageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByRequest(ctx context.Context, requestID string) ([]models.Message, error)
}

type messageRequestLookup interface {
	FindByID(ctx context.Context, id string) (*models.RequestRow, error)
}

type messageNotificationStore interface {
	CreateBatch(ctx context.Context, ns []models.Notification) error
}

// MessageService manages request message threads. Posting stays open on
// terminal requests so decisions can still be discussed after the fact.
type MessageService struct {
	repo          messageRepository
	requests      messageRequestLookup
	notifications messageNotificationStore
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewMessageService constructs a MessageService instance.
func NewMessageService(repo messageRepository, requests messageRequestLookup, notifications messageNotificationStore, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MessageService{repo: repo, requests: requests, notifications: notifications, validator: validate, logger: logger}
}

// Post appends a message to a request's thread and notifies the other party.
func (s *MessageService) Post(ctx context.Context, actor *models.JWTClaims, requestID string, req dto.CreateMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}

	row, err := s.loadVisible(ctx, actor, requestID, authz.ActionMessage)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		RequestID:  requestID,
		SenderID:   actor.UserID,
		SenderName: actor.FullName,
		SenderRole: actor.Role,
		Content:    req.Content,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to post message")
	}

	s.notifyCounterparty(ctx, actor, row)

	return msg, nil
}

// List returns the thread for a request, oldest first.
func (s *MessageService) List(ctx context.Context, actor *models.JWTClaims, requestID string) ([]models.Message, error) {
	if _, err := s.loadVisible(ctx, actor, requestID, authz.ActionView); err != nil {
		return nil, err
	}

	msgs, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return msgs, nil
}

func (s *MessageService) loadVisible(ctx context.Context, actor *models.JWTClaims, requestID string, action authz.Action) (*models.RequestRow, error) {
	row, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}

	own := authz.Ownership{
		IsOwner:    row.RequesterID == actor.UserID,
		IsAssignee: row.AssignedStaffID != nil && *row.AssignedStaffID == actor.UserID,
	}
	if !authz.Decide(actor.Role, action, own) {
		if actor.Role == models.RoleCitizen {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.ErrForbidden
	}
	return row, nil
}

// notifyCounterparty pings the requester when staff write, and the assignee
// when the requester writes.
func (s *MessageService) notifyCounterparty(ctx context.Context, actor *models.JWTClaims, row *models.RequestRow) {
	var target string
	switch {
	case actor.UserID != row.RequesterID:
		target = row.RequesterID
	case row.AssignedStaffID != nil:
		target = *row.AssignedStaffID
	default:
		return
	}

	err := s.notifications.CreateBatch(ctx, []models.Notification{{
		UserID:  target,
		Title:   "New message on request",
		Message: actor.FullName + " posted a message on \"" + row.Title + "\".",
	}})
	if err != nil {
		s.logger.Warn("failed to create message notification", zap.Error(err))
	}
}
