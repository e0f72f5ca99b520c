package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/duvallb/records-request-api/internal/authz"
	"github.com/duvallb/records-request-api/internal/dto"
	"github.com/duvallb/records-request-api/internal/lifecycle"
	"github.com/duvallb/records-request-api/internal/models"
	"github.com/duvallb/records-request-api/internal/repository"
	appErrors "github.com/duvallb/records-request-api/pkg/errors"
)

type requestRepository interface {
	Create(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, id string) (*models.RequestRow, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.RequestRow, int, error)
	Update(ctx context.Context, req *models.Request) error
	Assign(ctx context.Context, id, staffID string, ns []models.Notification) error
	UpdateStatus(ctx context.Context, id string, to models.RequestStatus, expectedVersion int, ns []models.Notification) error
	Cancel(ctx context.Context, id, reason string, ns []models.Notification) error
	Delete(ctx context.Context, id string) error
}

type requestUserDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListActiveByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type requestFileStore interface {
	ListByRequest(ctx context.Context, requestID string) ([]models.AttachedFile, error)
}

type requestMessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByRequest(ctx context.Context, requestID string) ([]models.Message, error)
}

type requestNotificationStore interface {
	CreateBatch(ctx context.Context, ns []models.Notification) error
}

type requestMailDispatcher interface {
	Dispatch(ctx context.Context, kind models.EmailTemplateType, recipients []string, vars map[string]string) error
}

type requestBlobStore interface {
	Delete(filename string) error
}

type dashboardInvalidator interface {
	InvalidateDashboards(ctx context.Context)
}

// RequestService implements the records request lifecycle: creation, triage,
// assignment, status transitions, cancellation and deletion.
type RequestService struct {
	repo          requestRepository
	users         requestUserDirectory
	files         requestFileStore
	messages      requestMessageStore
	notifications requestNotificationStore
	emails        requestMailDispatcher
	blobs         requestBlobStore
	cache         dashboardInvalidator
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
}

// RequestServiceDeps bundles the collaborators of RequestService.
type RequestServiceDeps struct {
	Repo          requestRepository
	Users         requestUserDirectory
	Files         requestFileStore
	Messages      requestMessageStore
	Notifications requestNotificationStore
	Emails        requestMailDispatcher
	Blobs         requestBlobStore
	Cache         dashboardInvalidator
	Metrics       *MetricsService
	Validator     *validator.Validate
	Logger        *zap.Logger
}

// NewRequestService constructs a RequestService instance.
func NewRequestService(deps RequestServiceDeps) *RequestService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	return &RequestService{
		repo:          deps.Repo,
		users:         deps.Users,
		files:         deps.Files,
		messages:      deps.Messages,
		notifications: deps.Notifications,
		emails:        deps.Emails,
		blobs:         deps.Blobs,
		cache:         deps.Cache,
		metrics:       deps.Metrics,
		validator:     deps.Validator,
		logger:        deps.Logger,
	}
}

// Create opens a new records request for the acting user.
func (s *RequestService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateRequestRequest) (*models.RequestRow, error) {
	if !authz.Decide(actor.Role, authz.ActionCreate, authz.Ownership{}) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	if err := validateBodyCamFields(req); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	record := &models.Request{
		Title:            req.Title,
		Description:      req.Description,
		RequestType:      req.RequestType,
		Priority:         priority,
		Status:           lifecycle.Initial(),
		RequesterID:      actor.UserID,
		IncidentDate:     optional(req.IncidentDate),
		IncidentTime:     optional(req.IncidentTime),
		IncidentLocation: optional(req.IncidentLocation),
		OfficerNames:     optional(req.OfficerNames),
		CaseNumber:       optional(req.CaseNumber),
		CostAcknowledged: req.CostAcknowledged,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}

	row, err := s.repo.FindByID(ctx, record.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load created request")
	}

	s.notifyAdminsOfNewRequest(ctx, row)
	s.audit(ctx, actor, models.AuditActionRequestCreate, record.ID, fmt.Sprintf(`{"type":%q}`, record.RequestType))
	s.invalidateDashboards(ctx)

	return row, nil
}

// List returns requests visible to the actor, scoped by role: citizens see
// only their own, staff only their assignments, admins everything the filter
// allows.
func (s *RequestService) List(ctx context.Context, actor *models.JWTClaims, query dto.RequestQuery) ([]dto.RequestSummary, *models.Pagination, error) {
	filter, err := buildRequestFilter(query)
	if err != nil {
		return nil, nil, err
	}

	if !authz.Decide(actor.Role, authz.ActionViewAll, authz.Ownership{}) {
		if filter.Unassigned {
			// The unassigned triage queue is admin-only.
			return nil, nil, appErrors.ErrForbidden
		}
		if actor.Role == models.RoleStaff {
			filter.AssignedStaffID = actor.UserID
		} else {
			filter.RequesterID = actor.UserID
		}
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}

	summaries := make([]dto.RequestSummary, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, toRequestSummary(&rows[i]))
	}

	return summaries, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// ListAssignedTo returns the actor's own staff queue.
func (s *RequestService) ListAssignedTo(ctx context.Context, actor *models.JWTClaims, query dto.RequestQuery) ([]dto.RequestSummary, *models.Pagination, error) {
	if actor.Role != models.RoleStaff && actor.Role != models.RoleAdmin {
		return nil, nil, appErrors.ErrForbidden
	}
	filter, err := buildRequestFilter(query)
	if err != nil {
		return nil, nil, err
	}
	filter.AssignedStaffID = actor.UserID

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned requests")
	}

	summaries := make([]dto.RequestSummary, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, toRequestSummary(&rows[i]))
	}
	return summaries, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns the full request aggregate: the row, its files and its thread.
func (s *RequestService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*dto.RequestDetail, error) {
	row, err := s.loadVisible(ctx, actor, id, authz.ActionView)
	if err != nil {
		return nil, err
	}

	files, err := s.files.ListByRequest(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attachments")
	}
	messages, err := s.messages.ListByRequest(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load messages")
	}

	meta, err := row.Status.Meta()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt request status")
	}

	return &dto.RequestDetail{
		RequestRow: *row,
		StatusMeta: meta,
		Files:      files,
		Messages:   messages,
	}, nil
}

// Update amends the descriptive fields of a pending request.
func (s *RequestService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateRequestRequest) (*models.RequestRow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	row, err := s.loadVisible(ctx, actor, id, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if row.Status != models.StatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only pending requests can be edited")
	}

	record := row.Request
	if req.Title != "" {
		record.Title = req.Title
	}
	if req.Description != "" {
		record.Description = req.Description
	}
	if req.Priority != "" {
		record.Priority = req.Priority
	}

	if err := s.repo.Update(ctx, &record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload request")
	}
	return updated, nil
}

// Assign binds a staff member to a pending request.
func (s *RequestService) Assign(ctx context.Context, actor *models.JWTClaims, id string, req dto.AssignRequest) (*models.RequestRow, error) {
	if !authz.Decide(actor.Role, authz.ActionAssign, authz.Ownership{}) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Guard(row.Status, models.StatusAssigned, lifecycle.Actor{Role: actor.Role}); err != nil {
		return nil, err
	}

	staff, err := s.users.FindByID(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	if staff.Role != models.RoleStaff || !staff.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignee must be an active staff member")
	}

	// The status change and its notifications commit together.
	notifications := []models.Notification{
		{UserID: staff.ID, Title: "Request assigned to you", Message: fmt.Sprintf("You were assigned %q.", row.Title)},
		{UserID: row.RequesterID, Title: "Your request was assigned", Message: fmt.Sprintf("Your request %q is being handled by %s.", row.Title, staff.FullName)},
	}
	if err := s.repo.Assign(ctx, id, staff.ID, notifications); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request is no longer pending")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign request")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload request")
	}

	s.dispatchEmail(ctx, models.TemplateAssignment, []string{staff.Email}, updated)
	s.metrics.RecordTransition(models.StatusAssigned)
	s.audit(ctx, actor, models.AuditActionRequestAssign, id, fmt.Sprintf(`{"staff_id":%q}`, staff.ID))
	s.invalidateDashboards(ctx)

	return updated, nil
}

// UpdateStatus transitions a request through its lifecycle. The payload
// carries the caller's last-seen version so concurrent transitions surface as
// conflicts instead of lost updates.
func (s *RequestService) UpdateStatus(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateStatusRequest) (*models.RequestRow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	isAssignee := row.AssignedStaffID != nil && *row.AssignedStaffID == actor.UserID
	if err := lifecycle.Guard(row.Status, req.Status, lifecycle.Actor{Role: actor.Role, IsAssignee: isAssignee}); err != nil {
		return nil, err
	}

	label := string(req.Status)
	if meta, metaErr := req.Status.Meta(); metaErr == nil {
		label = meta.Label
	}
	// The status change and its notification commit together.
	notifications := []models.Notification{{
		UserID:  row.RequesterID,
		Title:   "Request status updated",
		Message: fmt.Sprintf("Your request %q is now %s.", row.Title, label),
	}}
	if err := s.repo.UpdateStatus(ctx, id, req.Status, req.Version, notifications); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request was modified concurrently, reload and retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}

	if req.Note != "" {
		if err := s.messages.Create(ctx, &models.Message{
			RequestID:  id,
			SenderID:   actor.UserID,
			SenderName: actor.FullName,
			SenderRole: actor.Role,
			Content:    req.Note,
		}); err != nil {
			s.logger.Warn("failed to record status note", zap.String("request_id", id), zap.Error(err))
		}
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload request")
	}

	s.dispatchEmail(ctx, models.TemplateStatusUpdate, []string{updated.RequesterEmail}, updated)
	s.metrics.RecordTransition(updated.Status)
	s.audit(ctx, actor, models.AuditActionRequestStatus, id, fmt.Sprintf(`{"from":%q,"to":%q}`, row.Status, updated.Status))
	s.invalidateDashboards(ctx)

	return updated, nil
}

// Cancel terminates a request administratively. The assignee binding is
// cleared so no cancelled request carries a staff member.
func (s *RequestService) Cancel(ctx context.Context, actor *models.JWTClaims, id string, req dto.CancelRequest) (*models.RequestRow, error) {
	if !authz.Decide(actor.Role, authz.ActionCancel, authz.Ownership{}) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cancellation requires a reason")
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Guard(row.Status, models.StatusCancelled, lifecycle.Actor{Role: actor.Role}); err != nil {
		return nil, err
	}

	// The status change and its notifications commit together.
	notifications := []models.Notification{{
		UserID:  row.RequesterID,
		Title:   "Request cancelled",
		Message: fmt.Sprintf("Your request %q was cancelled: %s", row.Title, req.Reason),
	}}
	if row.AssignedStaffID != nil {
		notifications = append(notifications, models.Notification{
			UserID:  *row.AssignedStaffID,
			Title:   "Assigned request cancelled",
			Message: fmt.Sprintf("The request %q was cancelled by an administrator.", row.Title),
		})
	}
	if err := s.repo.Cancel(ctx, id, req.Reason, notifications); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "request already reached a terminal status")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel request")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload request")
	}

	s.dispatchEmail(ctx, models.TemplateCancellation, []string{updated.RequesterEmail}, updated)
	s.metrics.RecordTransition(models.StatusCancelled)
	s.audit(ctx, actor, models.AuditActionRequestCancel, id, fmt.Sprintf(`{"reason":%q}`, req.Reason))
	s.invalidateDashboards(ctx)

	return updated, nil
}

// Delete permanently removes a request, its messages, its attachment records
// and their blobs on disk.
func (s *RequestService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	if !authz.Decide(actor.Role, authz.ActionDelete, authz.Ownership{}) {
		return appErrors.ErrForbidden
	}

	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	files, err := s.files.ListByRequest(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attachments")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete request")
	}

	// Blob cleanup happens after the commit: an orphaned blob is recoverable,
	// a dangling database row pointing at a deleted blob is not.
	for _, file := range files {
		if err := s.blobs.Delete(file.StoragePath); err != nil {
			s.logger.Warn("failed to remove attachment blob", zap.String("path", file.StoragePath), zap.Error(err))
		}
	}

	s.audit(ctx, actor, models.AuditActionRequestDelete, id, `{"cascade":true}`)
	s.invalidateDashboards(ctx)

	return nil
}

func (s *RequestService) load(ctx context.Context, id string) (*models.RequestRow, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return row, nil
}

func (s *RequestService) loadVisible(ctx context.Context, actor *models.JWTClaims, id string, action authz.Action) (*models.RequestRow, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	own := authz.Ownership{
		IsOwner:    row.RequesterID == actor.UserID,
		IsAssignee: row.AssignedStaffID != nil && *row.AssignedStaffID == actor.UserID,
	}
	if !authz.Decide(actor.Role, action, own) {
		// Citizens learn nothing about other people's requests, not even
		// their existence.
		if actor.Role == models.RoleCitizen {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.ErrForbidden
	}
	return row, nil
}

func (s *RequestService) notifyAdminsOfNewRequest(ctx context.Context, row *models.RequestRow) {
	admins, err := s.users.ListActiveByRole(ctx, models.RoleAdmin)
	if err != nil {
		s.logger.Warn("failed to list admins for notification", zap.Error(err))
		return
	}
	notifications := make([]models.Notification, 0, len(admins))
	emails := make([]string, 0, len(admins))
	for _, admin := range admins {
		notifications = append(notifications, models.Notification{
			UserID:  admin.ID,
			Title:   "New records request",
			Message: fmt.Sprintf("%s submitted %q.", row.RequesterName, row.Title),
		})
		emails = append(emails, admin.Email)
	}
	s.notify(ctx, notifications...)
	s.dispatchEmail(ctx, models.TemplateNewRequest, emails, row)
}

func (s *RequestService) notify(ctx context.Context, ns ...models.Notification) {
	if len(ns) == 0 {
		return
	}
	if err := s.notifications.CreateBatch(ctx, ns); err != nil {
		s.logger.Warn("failed to create notifications", zap.Error(err))
	}
}

func (s *RequestService) dispatchEmail(ctx context.Context, kind models.EmailTemplateType, recipients []string, row *models.RequestRow) {
	if s.emails == nil {
		return
	}
	if err := s.emails.Dispatch(ctx, kind, recipients, requestVars(row)); err != nil {
		s.logger.Warn("failed to dispatch email", zap.String("template", string(kind)), zap.Error(err))
	}
}

func (s *RequestService) audit(ctx context.Context, actor *models.JWTClaims, action, resourceID, newValues string) {
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "request",
		ResourceID: &resourceID,
		NewValues:  []byte(newValues),
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func (s *RequestService) invalidateDashboards(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateDashboards(ctx)
	}
}

// validateBodyCamFields enforces the extra vetting required for body-worn
// camera footage: when, where, who, and an explicit cost acknowledgement.
func validateBodyCamFields(req dto.CreateRequestRequest) error {
	if req.RequestType != models.TypeBodyCamFootage {
		return nil
	}
	if req.IncidentDate == "" || req.IncidentTime == "" || req.IncidentLocation == "" {
		return appErrors.Clone(appErrors.ErrValidation, "body camera footage requests require incident date, time and location")
	}
	if req.OfficerNames == "" {
		return appErrors.Clone(appErrors.ErrValidation, "body camera footage requests require the involved officer names")
	}
	if !req.CostAcknowledged {
		return appErrors.Clone(appErrors.ErrValidation, "body camera footage requests require cost acknowledgement")
	}
	return nil
}

func buildRequestFilter(query dto.RequestQuery) (models.RequestFilter, error) {
	filter := models.RequestFilter{
		Unassigned: query.Unassigned,
		Search:     query.Search,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if query.Status != "" {
		status := models.RequestStatus(query.Status)
		if !status.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", query.Status))
		}
		filter.Status = &status
	}
	if query.RequestType != "" {
		rt := models.RequestType(query.RequestType)
		filter.RequestType = &rt
	}
	if query.Priority != "" {
		p := models.RequestPriority(query.Priority)
		filter.Priority = &p
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	return filter, nil
}

func toRequestSummary(row *models.RequestRow) dto.RequestSummary {
	meta, _ := row.Status.Meta()
	return dto.RequestSummary{
		ID:                row.ID,
		Title:             row.Title,
		RequestType:       row.RequestType,
		Priority:          row.Priority,
		Status:            row.Status,
		StatusMeta:        meta,
		RequesterName:     row.RequesterName,
		AssignedStaffName: row.AssignedStaffName,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
