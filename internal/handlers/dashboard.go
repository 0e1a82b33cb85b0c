package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/field-task-api/internal/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard returns monthly aggregates. Super-admins may pass company_id.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	companyID, ok := queryUint(c, "company_id")
	if !ok {
		return
	}
	year, month, ok := queryMonth(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), p, services.DashboardInput{
		CompanyID: companyID,
		Year:      year,
		Month:     month,
	})
	if err != nil {
		respondError(c, err, "Company not found")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
