package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvallb/records-request-api/internal/models"
)

type mockAnalyticsRepo struct {
	byStatus           []models.StatusCount
	byType             []models.TypeCount
	byPriority         []models.PriorityCount
	unassigned         int
	completedSince     int
	samples            []models.ResolutionSample
	workload           []models.StaffWorkload
	countByStatusCalls int
}

func (m *mockAnalyticsRepo) CountByStatus(ctx context.Context, requesterID, assignedStaffID string) ([]models.StatusCount, error) {
	m.countByStatusCalls++
	return m.byStatus, nil
}

func (m *mockAnalyticsRepo) CountByType(ctx context.Context) ([]models.TypeCount, error) {
	return m.byType, nil
}

func (m *mockAnalyticsRepo) CountByPriority(ctx context.Context) ([]models.PriorityCount, error) {
	return m.byPriority, nil
}

func (m *mockAnalyticsRepo) CountUnassigned(ctx context.Context) (int, error) {
	return m.unassigned, nil
}

func (m *mockAnalyticsRepo) CountCompletedSince(ctx context.Context, since time.Time) (int, error) {
	return m.completedSince, nil
}

func (m *mockAnalyticsRepo) ResolutionSamples(ctx context.Context) ([]models.ResolutionSample, error) {
	return m.samples, nil
}

func (m *mockAnalyticsRepo) StaffWorkload(ctx context.Context) ([]models.StaffWorkload, error) {
	return m.workload, nil
}

type mockUserCounter struct {
	total int
}

func (m *mockUserCounter) CountAll(ctx context.Context) (int, error) {
	return m.total, nil
}

// memoryCache is an in-process dashboardCache with the same JSON round trip
// the Redis-backed repository performs.
type memoryCache struct {
	entries map[string][]byte
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = raw
	return nil
}

type analyticsFixture struct {
	svc      *AnalyticsService
	repo     *mockAnalyticsRepo
	requests *mockRequestRepo
	users    *mockUserCounter
	cache    *memoryCache
}

func newAnalyticsFixture() *analyticsFixture {
	f := &analyticsFixture{
		repo:     &mockAnalyticsRepo{},
		requests: newMockRequestRepo(),
		users:    &mockUserCounter{},
		cache:    &memoryCache{},
	}
	f.svc = NewAnalyticsService(f.repo, f.requests, f.users, f.cache, nil, time.Minute, nil)
	return f
}

func TestAverageResolutionHours(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	samples := []models.ResolutionSample{
		{CreatedAt: base, UpdatedAt: base.Add(24 * time.Hour)},
		{CreatedAt: base, UpdatedAt: base.Add(48 * time.Hour)},
	}

	avg := averageResolutionHours(samples)
	require.NotNil(t, avg)
	assert.InDelta(t, 36.0, *avg, 0.001)
}

func TestAverageResolutionHoursNoCompletedRequests(t *testing.T) {
	assert.Nil(t, averageResolutionHours(nil))
}

func TestCitizenDashboardCounts(t *testing.T) {
	f := newAnalyticsFixture()
	f.repo.byStatus = []models.StatusCount{
		{Status: models.StatusPending, Count: 2},
		{Status: models.StatusInProgress, Count: 1},
		{Status: models.StatusCompleted, Count: 3},
		{Status: models.StatusCancelled, Count: 1},
	}

	dashboard, err := f.svc.CitizenDashboard(context.Background(), citizenClaims())
	require.NoError(t, err)
	assert.Equal(t, 7, dashboard.TotalRequests)
	assert.Equal(t, 3, dashboard.OpenRequests)
}

func TestStaffDashboardCounts(t *testing.T) {
	f := newAnalyticsFixture()
	f.repo.byStatus = []models.StatusCount{
		{Status: models.StatusAssigned, Count: 2},
		{Status: models.StatusInProgress, Count: 1},
		{Status: models.StatusCompleted, Count: 4},
	}
	f.repo.unassigned = 6

	dashboard, err := f.svc.StaffDashboard(context.Background(), staffClaims())
	require.NoError(t, err)
	assert.Equal(t, 2, dashboard.AssignedToMe)
	assert.Equal(t, 1, dashboard.InProgress)
	assert.Equal(t, 4, dashboard.CompletedByMe)
	assert.Equal(t, 6, dashboard.UnassignedQueue)
}

func TestAdminDashboard(t *testing.T) {
	f := newAnalyticsFixture()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f.repo.byStatus = []models.StatusCount{
		{Status: models.StatusPending, Count: 4},
		{Status: models.StatusCompleted, Count: 6},
	}
	f.repo.byType = []models.TypeCount{{RequestType: models.TypeIncidentReport, Count: 10}}
	f.repo.unassigned = 3
	f.repo.completedSince = 2
	f.repo.samples = []models.ResolutionSample{{CreatedAt: base, UpdatedAt: base.Add(12 * time.Hour)}}
	f.repo.workload = []models.StaffWorkload{{StaffID: "s1", AssignedCount: 2}}
	f.users.total = 42

	dashboard, err := f.svc.AdminDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, dashboard.TotalRequests)
	assert.Equal(t, 4, dashboard.PendingRequests)
	assert.Equal(t, 3, dashboard.UnassignedRequests)
	assert.Equal(t, 42, dashboard.RegisteredUsers)
	assert.Equal(t, 2, dashboard.CompletedThisMonth)
	require.NotNil(t, dashboard.AvgResolutionHours)
	assert.InDelta(t, 12.0, *dashboard.AvgResolutionHours, 0.001)
	require.Len(t, dashboard.StaffWorkload, 1)
}

func TestAdminDashboardServedFromCache(t *testing.T) {
	f := newAnalyticsFixture()
	f.repo.byStatus = []models.StatusCount{{Status: models.StatusPending, Count: 1}}

	first, err := f.svc.AdminDashboard(context.Background())
	require.NoError(t, err)
	second, err := f.svc.AdminDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.TotalRequests, second.TotalRequests)
	assert.Equal(t, 1, f.repo.countByStatusCalls)
}

func TestAnalyticsIncludesSystemSnapshot(t *testing.T) {
	f := newAnalyticsFixture()
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest("GET", "/api/requests", 200, 10*time.Millisecond)
	f.svc.metrics = metrics

	resp, err := f.svc.Analytics(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.System)
	assert.Equal(t, uint64(1), resp.System.RequestsTotal)
}
