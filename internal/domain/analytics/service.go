// internal/domain/analytics/service.go
package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zodak/storefront-api/internal/domain/order"
	"github.com/zodak/storefront-api/internal/domain/product"
	"github.com/zodak/storefront-api/internal/domain/user"
	"gorm.io/gorm"
)

// Service computes admin dashboard statistics
type Service struct {
	db *gorm.DB
}

// NewService creates a new analytics service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DashboardStats represents the admin dashboard overview
type DashboardStats struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalOrders     int64           `json:"total_orders"`
	TotalUsers      int64           `json:"total_users"`
	TotalProducts   int64           `json:"total_products"`
	PendingOrders   int64           `json:"pending_orders"`
	CompletedOrders int64           `json:"completed_orders"`
	RecentOrders    []order.Order   `json:"recent_orders"`
}

// Dashboard returns the storefront-wide stats shown on the admin home
// page. Revenue excludes cancelled orders.
func (s *Service) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}

	var revenue struct {
		Total decimal.Decimal
	}
	err := s.db.Model(&order.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("status <> ?", order.StatusCancelled).
		Scan(&revenue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}
	stats.TotalRevenue = revenue.Total

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalOrders, s.db.Model(&order.Order{})},
		{&stats.TotalUsers, s.db.Model(&user.User{}).Where("is_admin = ?", false)},
		{&stats.TotalProducts, s.db.Model(&product.Product{}).Where("is_active = ?", true)},
		{&stats.PendingOrders, s.db.Model(&order.Order{}).Where("status = ?", order.StatusPending)},
		{&stats.CompletedOrders, s.db.Model(&order.Order{}).Where("status = ?", order.StatusDelivered)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to compute dashboard counts: %w", err)
		}
	}

	err = s.db.Preload("Items").
		Order("created_at DESC").
		Limit(5).
		Find(&stats.RecentOrders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}

	return stats, nil
}
