package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/duvallb/records-request-api/internal/dto"
	"github.com/duvallb/records-request-api/internal/lifecycle"
	"github.com/duvallb/records-request-api/internal/models"
	appErrors "github.com/duvallb/records-request-api/pkg/errors"
)

const dashboardRecentLimit = 5

type analyticsRepository interface {
	CountByStatus(ctx context.Context, requesterID, assignedStaffID string) ([]models.StatusCount, error)
	CountByType(ctx context.Context) ([]models.TypeCount, error)
	CountByPriority(ctx context.Context) ([]models.PriorityCount, error)
	CountUnassigned(ctx context.Context) (int, error)
	CountCompletedSince(ctx context.Context, since time.Time) (int, error)
	ResolutionSamples(ctx context.Context) ([]models.ResolutionSample, error)
	StaffWorkload(ctx context.Context) ([]models.StaffWorkload, error)
}

type analyticsRequestLister interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.RequestRow, int, error)
}

type analyticsUserCounter interface {
	CountAll(ctx context.Context) (int, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// AnalyticsService assembles the role-specific dashboards. Results are cached
// per role and invalidated by request mutations, so a dashboard is at most one
// TTL behind the queue it describes.
type AnalyticsService struct {
	repo     analyticsRepository
	requests analyticsRequestLister
	users    analyticsUserCounter
	cache    dashboardCache
	metrics  *MetricsService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAnalyticsService constructs an AnalyticsService instance.
func NewAnalyticsService(repo analyticsRepository, requests analyticsRequestLister, users analyticsUserCounter, cache dashboardCache, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &AnalyticsService{
		repo:     repo,
		requests: requests,
		users:    users,
		cache:    cache,
		metrics:  metrics,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// CitizenDashboard summarises the actor's own requests.
func (s *AnalyticsService) CitizenDashboard(ctx context.Context, actor *models.JWTClaims) (*dto.CitizenDashboard, error) {
	key := cacheKeyCitizenDashboard + actor.UserID
	var cached dto.CitizenDashboard
	if hit, _ := s.cacheGet(ctx, key, &cached); hit {
		return &cached, nil
	}

	byStatus, err := s.repo.CountByStatus(ctx, actor.UserID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}

	dashboard := &dto.CitizenDashboard{ByStatus: byStatus}
	for _, c := range byStatus {
		dashboard.TotalRequests += c.Count
		if !lifecycle.IsTerminal(c.Status) {
			dashboard.OpenRequests += c.Count
		}
	}

	recent, err := s.recent(ctx, models.RequestFilter{RequesterID: actor.UserID})
	if err != nil {
		return nil, err
	}
	dashboard.Recent = recent

	s.cacheSet(ctx, key, dashboard)
	return dashboard, nil
}

// StaffDashboard summarises the actor's assignment queue.
func (s *AnalyticsService) StaffDashboard(ctx context.Context, actor *models.JWTClaims) (*dto.StaffDashboard, error) {
	key := cacheKeyStaffDashboard + actor.UserID
	var cached dto.StaffDashboard
	if hit, _ := s.cacheGet(ctx, key, &cached); hit {
		return &cached, nil
	}

	byStatus, err := s.repo.CountByStatus(ctx, "", actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}

	dashboard := &dto.StaffDashboard{ByStatus: byStatus}
	for _, c := range byStatus {
		switch c.Status {
		case models.StatusAssigned:
			dashboard.AssignedToMe += c.Count
		case models.StatusInProgress:
			dashboard.InProgress += c.Count
		case models.StatusCompleted:
			dashboard.CompletedByMe += c.Count
		}
	}

	unassigned, err := s.repo.CountUnassigned(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}
	dashboard.UnassignedQueue = unassigned

	recent, err := s.recent(ctx, models.RequestFilter{AssignedStaffID: actor.UserID})
	if err != nil {
		return nil, err
	}
	dashboard.Recent = recent

	s.cacheSet(ctx, key, dashboard)
	return dashboard, nil
}

// AdminDashboard builds the full operational overview.
func (s *AnalyticsService) AdminDashboard(ctx context.Context) (*dto.AdminDashboard, error) {
	var cached dto.AdminDashboard
	if hit, _ := s.cacheGet(ctx, cacheKeyAdminDashboard, &cached); hit {
		return &cached, nil
	}

	byStatus, err := s.repo.CountByStatus(ctx, "", "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}
	byType, err := s.repo.CountByType(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}
	byPriority, err := s.repo.CountByPriority(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}
	unassigned, err := s.repo.CountUnassigned(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}
	workload, err := s.repo.StaffWorkload(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}
	samples, err := s.repo.ResolutionSamples(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}
	registered, err := s.users.CountAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}
	completedThisMonth, err := s.repo.CountCompletedSince(ctx, monthStart(time.Now().UTC()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}
	recent, err := s.recent(ctx, models.RequestFilter{})
	if err != nil {
		return nil, err
	}

	dashboard := &dto.AdminDashboard{
		ByStatus:           byStatus,
		ByType:             byType,
		ByPriority:         byPriority,
		UnassignedRequests: unassigned,
		AvgResolutionHours: averageResolutionHours(samples),
		StaffWorkload:      workload,
		RecentRequests:     recent,
		RegisteredUsers:    registered,
		CompletedThisMonth: completedThisMonth,
	}
	for _, c := range byStatus {
		dashboard.TotalRequests += c.Count
		if c.Status == models.StatusPending {
			dashboard.PendingRequests += c.Count
		}
	}

	s.cacheSet(ctx, cacheKeyAdminDashboard, dashboard)
	return dashboard, nil
}

// Analytics pairs the admin dashboard with a system metrics snapshot.
func (s *AnalyticsService) Analytics(ctx context.Context) (*dto.AnalyticsDashboardResponse, error) {
	dashboard, err := s.AdminDashboard(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.AnalyticsDashboardResponse{Dashboard: *dashboard}
	if s.metrics != nil {
		snapshot := s.metrics.Snapshot()
		resp.System = &snapshot
	}
	return resp, nil
}

func (s *AnalyticsService) recent(ctx context.Context, filter models.RequestFilter) ([]dto.RequestSummary, error) {
	filter.Page = 1
	filter.PageSize = dashboardRecentLimit
	rows, _, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent requests")
	}
	out := make([]dto.RequestSummary, 0, len(rows))
	for i := range rows {
		out = append(out, toRequestSummary(&rows[i]))
	}
	return out, nil
}

func (s *AnalyticsService) cacheGet(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	return s.cache.Get(ctx, key, dest)
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard", zap.String("key", key), zap.Error(err))
	}
}

// averageResolutionHours is the arithmetic mean of completed request
// turnaround times. Nil when nothing has completed yet, so clients can tell
// "no data" from "instant".
func averageResolutionHours(samples []models.ResolutionSample) *float64 {
	if len(samples) == 0 {
		return nil
	}
	var total float64
	for _, s := range samples {
		total += s.UpdatedAt.Sub(s.CreatedAt).Hours()
	}
	avg := total / float64(len(samples))
	return &avg
}

func monthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
