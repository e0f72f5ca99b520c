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

type dashboardService interface {
	CitizenDashboard(ctx context.Context, actor *models.JWTClaims) (*dto.CitizenDashboard, error)
	StaffDashboard(ctx context.Context, actor *models.JWTClaims) (*dto.StaffDashboard, error)
	AdminDashboard(ctx context.Context) (*dto.AdminDashboard, error)
	Analytics(ctx context.Context) (*dto.AnalyticsDashboardResponse, error)
}

// DashboardHandler serves the role-dependent dashboard and the admin
// analytics view.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats godoc
// @Summary Dashboard counters for the caller's role
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		payload interface{}
		err     error
	)
	switch claims.Role {
	case models.RoleCitizen:
		payload, err = h.service.CitizenDashboard(c.Request.Context(), claims)
	case models.RoleStaff:
		payload, err = h.service.StaffDashboard(c.Request.Context(), claims)
	case models.RoleAdmin:
		payload, err = h.service.AdminDashboard(c.Request.Context())
	default:
		err = appErrors.ErrForbidden
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, payload, nil)
}

// Analytics godoc
// @Summary Admin analytics with system metrics snapshot
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /analytics/dashboard [get]
func (h *DashboardHandler) Analytics(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	resp, err := h.service.Analytics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, resp, nil)
}
