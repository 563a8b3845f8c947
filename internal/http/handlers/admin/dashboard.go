package admin

import (
	"strconv"

	"github.com/fixmore/mall/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview returns sales, order and user aggregates over a
// trailing window of days (default 30).
func (h *Handler) GetDashboardOverview(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	overview, err := h.DashboardService.Overview(c.Request.Context(), days)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load dashboard overview", err)
		return
	}
	response.Success(c, overview)
}

// GetStockStats returns catalog stock aggregates.
func (h *Handler) GetStockStats(c *gin.Context) {
	stats, err := h.DashboardService.StockStats()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load stock stats", err)
		return
	}
	response.Success(c, stats)
}

// GetRecentOrders returns the newest orders for the dashboard feed.
func (h *Handler) GetRecentOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	orders, err := h.DashboardService.RecentOrders(limit)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load recent orders", err)
		return
	}
	response.Success(c, orders)
}
