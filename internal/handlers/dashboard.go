// internal/handlers/dashboard.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tandatangan/katalog-backend/internal/services"
	"github.com/tandatangan/katalog-backend/internal/utils"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GET /v1/dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetStats()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	limit := 5
	if limitStr := c.Query("top"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	topProducts, err := h.dashboardService.MostScannedProducts(limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats":        stats,
		"most_scanned": topProducts,
	})
}
