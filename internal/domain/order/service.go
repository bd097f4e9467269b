// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zodak/storefront-api/internal/domain/pricing"
	"github.com/zodak/storefront-api/internal/domain/promo"
	"gorm.io/gorm"
)

var (
	// ErrEmptyCart is returned when placing an order with no items.
	ErrEmptyCart = errors.New("no items in order")
	// ErrNotFound is returned when the order does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("order not found")
	// ErrNotCancellable is returned when the order has progressed past
	// the point of customer cancellation.
	ErrNotCancellable = errors.New("order can no longer be cancelled")
)

// PromoResolver validates a promo code against a subtotal. Implemented by
// the promo service.
type PromoResolver interface {
	Resolve(ctx context.Context, code string, subtotal decimal.Decimal) (*promo.Resolution, error)
}

// Service handles order business logic
type Service struct {
	db     *gorm.DB
	promos PromoResolver
	logger *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, promos PromoResolver, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		promos: promos,
		logger: logger,
	}
}

// CreateRequest carries everything needed to place an order. Lines come
// from the caller's cart; every price figure is recomputed server-side
// from them, never trusted from the client.
type CreateRequest struct {
	UserID    *uint
	Email     string
	Lines     []pricing.Line
	PromoCode string
	Address   Address
}

// ListRequest represents admin/user order list parameters.
type ListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Status string `form:"status"`
}

// ListResponse is a page of orders.
type ListResponse struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// Create places an order from the given cart lines. Totals are
// recomputed through the pricing engine; the promo code, if any, is
// re-resolved against the authoritative subtotal at this moment, so a
// discount fetched against a stale subtotal cannot leak into the order.
// The final total is clamped at zero. Payment is recorded as pending;
// gateway integration is out of scope. The caller clears the cart only
// after Create succeeds, so a failed placement can be retried.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Order, error) {
	if req.Email == "" {
		return nil, fmt.Errorf("email is required")
	}

	quote, err := Quote(ctx, s.promos, req.Lines, req.PromoCode)
	if err != nil {
		return nil, err
	}

	ord := Order{
		UserID:          req.UserID,
		Email:           req.Email,
		Status:          StatusPending,
		SubtotalAmount:  quote.Subtotal,
		TaxAmount:       quote.TaxAmount,
		ShippingAmount:  quote.ShippingCost,
		DiscountAmount:  quote.DiscountAmount,
		TotalAmount:     quote.TotalAmount,
		PromoCode:       quote.PromoCode,
		Currency:        "USD",
		ShippingAddress: req.Address,
	}

	for _, line := range req.Lines {
		ord.Items = append(ord.Items, Item{
			ProductID: line.ProductID,
			Name:      line.Name,
			Size:      line.Size,
			Color:     line.Color,
			ImageRef:  line.ImageRef,
			UnitPrice: line.UnitPrice.Round(2),
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal().Round(2),
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Provisional value keeps the unique order_number column happy
		// until the real number, which needs the row id, is assigned.
		ord.OrderNumber = fmt.Sprintf("TMP-%d", time.Now().UnixNano())
		if err := tx.Create(&ord).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		ord.OrderNumber = NumberFor(ord.ID, time.Now().UTC())
		if err := tx.Model(&Order{}).Where("id = ?", ord.ID).
			Update("order_number", ord.OrderNumber).Error; err != nil {
			return fmt.Errorf("failed to assign order number: %w", err)
		}

		history := StatusHistory{
			OrderID:   ord.ID,
			Status:    StatusPending,
			Comment:   "Order placed",
			CreatedBy: req.UserID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record order history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": ord.OrderNumber,
		"total":        ord.TotalAmount.StringFixed(2),
		"items":        len(ord.Items),
	}).Info("order placed")

	return &ord, nil
}

// Get retrieves an order visible to the caller: admins see everything,
// users only their own orders.
func (s *Service) Get(ctx context.Context, id uint, userID *uint, isAdmin bool) (*Order, error) {
	query := s.db.WithContext(ctx).Preload("Items").Preload("StatusHistory")
	if !isAdmin {
		if userID == nil {
			return nil, ErrNotFound
		}
		query = query.Where("user_id = ?", *userID)
	}

	var ord Order
	if err := query.Where("id = ?", id).First(&ord).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &ord, nil
}

// ListForUser returns the user's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uint, req *ListRequest) (*ListResponse, error) {
	return s.list(ctx, req, s.db.WithContext(ctx).Where("user_id = ?", userID))
}

// List returns all orders for the admin dashboard, newest first,
// optionally filtered by status.
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	return s.list(ctx, req, s.db.WithContext(ctx))
}

func (s *Service) list(ctx context.Context, req *ListRequest, query *gorm.DB) (*ListResponse, error) {
	query = query.Model(&Order{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var orders []Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &ListResponse{Orders: orders, Total: total, Page: page, Limit: limit}, nil
}

// Cancel cancels a customer's own order while it is still cancellable.
func (s *Service) Cancel(ctx context.Context, id, userID uint) (*Order, error) {
	uid := userID
	ord, err := s.Get(ctx, id, &uid, false)
	if err != nil {
		return nil, err
	}
	if !ord.CanBeCancelled() {
		return nil, ErrNotCancellable
	}
	return s.transition(ctx, ord, StatusCancelled, "Cancelled by customer", &uid)
}

// UpdateStatus transitions an order to a new status (admin only).
func (s *Service) UpdateStatus(ctx context.Context, id uint, status Status, comment string, adminID uint) (*Order, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("invalid order status %q", status)
	}

	ord, err := s.Get(ctx, id, nil, true)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, ord, status, comment, &adminID)
}

func (s *Service) transition(ctx context.Context, ord *Order, status Status, comment string, by *uint) (*Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Order{}).Where("id = ?", ord.ID).Update("status", status).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		history := StatusHistory{
			OrderID:   ord.ID,
			Status:    status,
			Comment:   comment,
			CreatedBy: by,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ord.Status = status
	return ord, nil
}
