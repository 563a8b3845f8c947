package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fixmore/mall/internal/cache"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"
)

const (
	dashboardCacheTTL         = 45 * time.Second
	dashboardDefaultRangeDays = 7
	dashboardMaxRangeDays     = 90
)

// DashboardService composes the admin dashboard rollups. Responses are
// cached briefly so a busy admin panel does not hammer the aggregates.
type DashboardService struct {
	repo repository.DashboardRepository
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// DashboardOverview is the full dashboard payload.
type DashboardOverview struct {
	Days           int                                     `json:"days"`
	From           string                                  `json:"from"`
	To             string                                  `json:"to"`
	Summary        repository.DashboardOverviewRow         `json:"summary"`
	OrderTrends    []repository.DashboardOrderTrendRow     `json:"order_trends"`
	PaymentTrends  []repository.DashboardPaymentTrendRow   `json:"payment_trends"`
	Stock          repository.DashboardStockStatsRow       `json:"stock"`
	TopProducts    []repository.DashboardProductRankingRow `json:"top_products"`
	PaymentMethods []repository.DashboardPaymentMethodRow  `json:"payment_methods"`
	RecentOrders   []models.Order                          `json:"recent_orders"`
}

// dashboardWindow clamps the range and anchors it at midnight N days back.
func dashboardWindow(days int) (time.Time, time.Time, int) {
	if days <= 0 {
		days = dashboardDefaultRangeDays
	}
	if days > dashboardMaxRangeDays {
		days = dashboardMaxRangeDays
	}
	now := time.Now()
	start := now.AddDate(0, 0, -(days - 1))
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	return start, now, days
}

// Overview assembles the dashboard for the last N days.
func (s *DashboardService) Overview(ctx context.Context, days int) (*DashboardOverview, error) {
	start, end, clamped := dashboardWindow(days)

	cacheKey := fmt.Sprintf("dashboard:overview:%d", clamped)
	var cached DashboardOverview
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	summary, err := s.repo.GetOverview(start, end)
	if err != nil {
		return nil, err
	}
	orderTrends, err := s.repo.GetOrderTrends(start, end)
	if err != nil {
		return nil, err
	}
	paymentTrends, err := s.repo.GetPaymentTrends(start, end)
	if err != nil {
		return nil, err
	}
	stock, err := s.repo.GetStockStats()
	if err != nil {
		return nil, err
	}
	topProducts, err := s.repo.GetTopProducts(start, end, 10)
	if err != nil {
		return nil, err
	}
	paymentMethods, err := s.repo.GetPaymentMethodStats(start, end)
	if err != nil {
		return nil, err
	}
	recentOrders, err := s.repo.GetRecentOrders(10)
	if err != nil {
		return nil, err
	}

	overview := &DashboardOverview{
		Days:           clamped,
		From:           start.Format(time.RFC3339),
		To:             end.Format(time.RFC3339),
		Summary:        summary,
		OrderTrends:    orderTrends,
		PaymentTrends:  paymentTrends,
		Stock:          stock,
		TopProducts:    topProducts,
		PaymentMethods: paymentMethods,
		RecentOrders:   recentOrders,
	}
	_ = cache.SetJSON(ctx, cacheKey, overview, dashboardCacheTTL)
	return overview, nil
}

// StockStats returns the current stock health counters, uncached.
func (s *DashboardService) StockStats() (repository.DashboardStockStatsRow, error) {
	return s.repo.GetStockStats()
}

// RecentOrders returns the latest orders.
func (s *DashboardService) RecentOrders(limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.repo.GetRecentOrders(limit)
}
