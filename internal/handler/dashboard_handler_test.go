package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvallb/records-request-api/internal/dto"
	"github.com/duvallb/records-request-api/internal/models"
)

type fakeDashboardSrv struct {
	citizenCalls int
	staffCalls   int
	adminCalls   int
}

func (f *fakeDashboardSrv) CitizenDashboard(context.Context, *models.JWTClaims) (*dto.CitizenDashboard, error) {
	f.citizenCalls++
	return &dto.CitizenDashboard{TotalRequests: 3, OpenRequests: 2}, nil
}

func (f *fakeDashboardSrv) StaffDashboard(context.Context, *models.JWTClaims) (*dto.StaffDashboard, error) {
	f.staffCalls++
	return &dto.StaffDashboard{AssignedToMe: 4}, nil
}

func (f *fakeDashboardSrv) AdminDashboard(context.Context) (*dto.AdminDashboard, error) {
	f.adminCalls++
	return &dto.AdminDashboard{TotalRequests: 10}, nil
}

func (f *fakeDashboardSrv) Analytics(context.Context) (*dto.AnalyticsDashboardResponse, error) {
	return &dto.AnalyticsDashboardResponse{
		Dashboard: dto.AdminDashboard{TotalRequests: 10},
		System:    &models.AnalyticsSystemMetrics{Goroutines: 8},
	}, nil
}

func TestDashboardStatsRequiresAuth(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	c, rec := testContext(t, http.MethodGet, "/dashboard/stats", "")
	handler.Stats(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardStatsPicksViewByRole(t *testing.T) {
	cases := []struct {
		role models.UserRole
		want func(*fakeDashboardSrv) int
	}{
		{models.RoleCitizen, func(f *fakeDashboardSrv) int { return f.citizenCalls }},
		{models.RoleStaff, func(f *fakeDashboardSrv) int { return f.staffCalls }},
		{models.RoleAdmin, func(f *fakeDashboardSrv) int { return f.adminCalls }},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			srv := &fakeDashboardSrv{}
			handler := NewDashboardHandler(srv)

			c, rec := testContext(t, http.MethodGet, "/dashboard/stats", "")
			authed(c, tc.role)
			handler.Stats(c)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, 1, tc.want(srv))
		})
	}
}

func TestDashboardAnalyticsIncludesSystemMetrics(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	c, rec := testContext(t, http.MethodGet, "/analytics/dashboard", "")
	authed(c, models.RoleAdmin)
	handler.Analytics(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data struct {
			Dashboard dto.AdminDashboard             `json:"dashboard"`
			System    *models.AnalyticsSystemMetrics `json:"system"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 10, envelope.Data.Dashboard.TotalRequests)
	require.NotNil(t, envelope.Data.System)
	assert.Equal(t, 8, envelope.Data.System.Goroutines)
}
