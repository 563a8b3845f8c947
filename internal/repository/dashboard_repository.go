package repository

import (
	"fmt"
	"time"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository aggregates admin dashboard statistics. It carries no
// business rules, only raw rollups.
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetOrderTrends(startAt, endAt time.Time) ([]DashboardOrderTrendRow, error)
	GetPaymentTrends(startAt, endAt time.Time) ([]DashboardPaymentTrendRow, error)
	GetStockStats() (DashboardStockStatsRow, error)
	GetTopProducts(startAt, endAt time.Time, limit int) ([]DashboardProductRankingRow, error)
	GetPaymentMethodStats(startAt, endAt time.Time) ([]DashboardPaymentMethodRow, error)
	GetRecentOrders(limit int) ([]models.Order, error)
}

// DashboardOverviewRow is the raw overview rollup.
type DashboardOverviewRow struct {
	OrdersTotal     int64
	PaidOrders      int64
	PendingOrders   int64
	DeliveredOrders int64
	CancelledOrders int64
	RevenuePaid     float64
	PaymentsTotal   int64
	PaymentsSuccess int64
	PaymentsFailed  int64
	NewUsers        int64
	ActiveProducts  int64
	PendingReviews  int64
}

// DashboardOrderTrendRow is a per-day order rollup.
type DashboardOrderTrendRow struct {
	Day         string
	OrdersTotal int64
	OrdersPaid  int64
}

// DashboardPaymentTrendRow is a per-day payment rollup.
type DashboardPaymentTrendRow struct {
	Day             string
	PaymentsSuccess int64
	PaymentsFailed  int64
	RevenuePaid     float64
}

// DashboardStockStatsRow is the stock rollup.
type DashboardStockStatsRow struct {
	OutOfStockProducts int64
	LowStockProducts   int64
	TotalUnits         int64
}

// DashboardProductRankingRow is a raw product ranking row.
type DashboardProductRankingRow struct {
	ProductID  uint
	Name       string
	PaidOrders int64
	Quantity   int64
	PaidAmount float64
}

// DashboardPaymentMethodRow is a raw payment method rollup row.
type DashboardPaymentMethodRow struct {
	Method        string
	SuccessCount  int64
	FailedCount   int64
	SuccessAmount float64
}

// GormDashboardRepository is the GORM implementation.
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a dashboard repository.
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview collects the overview rollup.
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	orderBase := func() *gorm.DB {
		return r.db.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}

	if err := orderBase().Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("payment_status = ?", constants.OrderPaymentStatusPaid).Count(&result.PaidOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusPending).Count(&result.PendingOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusDelivered).Count(&result.DeliveredOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusCancelled).Count(&result.CancelledOrders).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Order{}).
		Where("paid_at IS NOT NULL AND paid_at >= ? AND paid_at < ? AND payment_status = ?",
			startAt, endAt, constants.OrderPaymentStatusPaid).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&result.RevenuePaid).Error; err != nil {
		return result, err
	}

	paymentBase := func() *gorm.DB {
		return r.db.Model(&models.Payment{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}
	if err := paymentBase().Count(&result.PaymentsTotal).Error; err != nil {
		return result, err
	}
	if err := paymentBase().Where("status = ?", constants.PaymentStatusSuccess).Count(&result.PaymentsSuccess).Error; err != nil {
		return result, err
	}
	if err := paymentBase().Where("status = ?", constants.PaymentStatusFailed).Count(&result.PaymentsFailed).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewUsers).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Product{}).
		Where("is_active = ?", true).
		Count(&result.ActiveProducts).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Review{}).
		Where("status = ?", constants.ReviewStatusPending).
		Count(&result.PendingReviews).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetOrderTrends collects per-day order counts.
func (r *GormDashboardRepository) GetOrderTrends(startAt, endAt time.Time) ([]DashboardOrderTrendRow, error) {
	type totalRow struct {
		Day   string
		Total int64
	}
	type paidRow struct {
		Day  string
		Paid int64
	}

	var totals []totalRow
	dayExpr := "CAST(date(created_at) AS TEXT)"
	if err := r.db.Model(&models.Order{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group(dayExpr).
		Order("day asc").
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	var paids []paidRow
	if err := r.db.Model(&models.Order{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as paid", dayExpr)).
		Where("created_at >= ? AND created_at < ? AND payment_status = ?",
			startAt, endAt, constants.OrderPaymentStatusPaid).
		Group(dayExpr).
		Order("day asc").
		Scan(&paids).Error; err != nil {
		return nil, err
	}

	paidMap := make(map[string]int64, len(paids))
	for _, item := range paids {
		paidMap[item.Day] = item.Paid
	}

	result := make([]DashboardOrderTrendRow, 0, len(totals))
	for _, item := range totals {
		result = append(result, DashboardOrderTrendRow{
			Day:         item.Day,
			OrdersTotal: item.Total,
			OrdersPaid:  paidMap[item.Day],
		})
	}
	return result, nil
}

// GetPaymentTrends collects per-day payment counts and paid amounts.
func (r *GormDashboardRepository) GetPaymentTrends(startAt, endAt time.Time) ([]DashboardPaymentTrendRow, error) {
	type countRow struct {
		Day   string
		Total int64
	}
	type amountRow struct {
		Day   string
		Total float64
	}

	dayExpr := "CAST(date(created_at) AS TEXT)"
	paymentBase := func() *gorm.DB {
		return r.db.Model(&models.Payment{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}

	var successRows []countRow
	if err := paymentBase().
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Where("status = ?", constants.PaymentStatusSuccess).
		Group(dayExpr).
		Order("day asc").
		Scan(&successRows).Error; err != nil {
		return nil, err
	}

	var failedRows []countRow
	if err := paymentBase().
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Where("status = ?", constants.PaymentStatusFailed).
		Group(dayExpr).
		Order("day asc").
		Scan(&failedRows).Error; err != nil {
		return nil, err
	}

	var amountRows []amountRow
	if err := paymentBase().
		Select(fmt.Sprintf("%s as day, COALESCE(SUM(amount), 0) as total", dayExpr)).
		Where("status = ?", constants.PaymentStatusSuccess).
		Group(dayExpr).
		Order("day asc").
		Scan(&amountRows).Error; err != nil {
		return nil, err
	}

	successMap := make(map[string]int64, len(successRows))
	for _, item := range successRows {
		successMap[item.Day] = item.Total
	}
	failedMap := make(map[string]int64, len(failedRows))
	for _, item := range failedRows {
		failedMap[item.Day] = item.Total
	}
	amountMap := make(map[string]float64, len(amountRows))
	for _, item := range amountRows {
		amountMap[item.Day] = item.Total
	}

	seen := make(map[string]struct{}, len(successRows)+len(failedRows)+len(amountRows))
	result := make([]DashboardPaymentTrendRow, 0)
	push := func(day string) {
		if day == "" {
			return
		}
		if _, ok := seen[day]; ok {
			return
		}
		seen[day] = struct{}{}
		result = append(result, DashboardPaymentTrendRow{
			Day:             day,
			PaymentsSuccess: successMap[day],
			PaymentsFailed:  failedMap[day],
			RevenuePaid:     amountMap[day],
		})
	}
	for _, item := range successRows {
		push(item.Day)
	}
	for _, item := range failedRows {
		push(item.Day)
	}
	for _, item := range amountRows {
		push(item.Day)
	}

	return result, nil
}

// GetStockStats collects the stock rollup over active products.
func (r *GormDashboardRepository) GetStockStats() (DashboardStockStatsRow, error) {
	result := DashboardStockStatsRow{}

	base := func() *gorm.DB {
		return r.db.Model(&models.Product{}).Where("is_active = ?", true)
	}

	if err := base().Where("stock_quantity <= 0").Count(&result.OutOfStockProducts).Error; err != nil {
		return result, err
	}
	if err := base().Where("stock_quantity > 0 AND stock_quantity <= low_stock_threshold").
		Count(&result.LowStockProducts).Error; err != nil {
		return result, err
	}
	if err := base().Select("COALESCE(SUM(stock_quantity), 0)").Scan(&result.TotalUnits).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetTopProducts collects the best sellers over paid orders.
func (r *GormDashboardRepository) GetTopProducts(startAt, endAt time.Time, limit int) ([]DashboardProductRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]DashboardProductRankingRow, 0)
	if err := r.db.Model(&models.OrderItem{}).
		Select(`
			order_items.product_id as product_id,
			order_items.product_name as name,
			COUNT(DISTINCT order_items.order_id) as paid_orders,
			COALESCE(SUM(order_items.quantity), 0) as quantity,
			COALESCE(SUM(order_items.total_price), 0) as paid_amount
		`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ? AND orders.payment_status = ?",
			startAt, endAt, constants.OrderPaymentStatusPaid).
		Group("order_items.product_id, order_items.product_name").
		Order("paid_amount DESC, quantity DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetPaymentMethodStats collects per-method payment outcomes.
func (r *GormDashboardRepository) GetPaymentMethodStats(startAt, endAt time.Time) ([]DashboardPaymentMethodRow, error) {
	rows := make([]DashboardPaymentMethodRow, 0)
	if err := r.db.Model(&models.Payment{}).
		Select(`
			method,
			SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END) as failed_count,
			COALESCE(SUM(CASE WHEN status = 'success' THEN amount ELSE 0 END), 0) as success_amount
		`).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group("method").
		Order("success_amount DESC, success_count DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetRecentOrders fetches the newest orders for the dashboard feed.
func (r *GormDashboardRepository) GetRecentOrders(limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	var orders []models.Order
	if err := r.db.Model(&models.Order{}).
		Order("id desc").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
