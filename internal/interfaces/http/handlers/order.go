// internal/interfaces/http/handlers/order.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zodak/storefront-api/internal/domain/cart"
	"github.com/zodak/storefront-api/internal/domain/order"
	"github.com/zodak/storefront-api/internal/domain/promo"
	"github.com/zodak/storefront-api/internal/interfaces/http/middleware"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService *order.Service
	cartService  *cart.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, cartService *cart.Service) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		cartService:  cartService,
	}
}

// CreateOrderRequest is the checkout payload. Cart contents and all
// amounts are taken server-side; the client supplies contact and
// shipping details plus an optional promo code.
type CreateOrderRequest struct {
	Email     string        `json:"email" binding:"required,email"`
	PromoCode string        `json:"promo_code"`
	Address   order.Address `json:"shipping_address" binding:"required"`
}

// Create handles POST /orders. Works for both authenticated users and
// guests with a session cart. The cart is cleared only after the order
// is placed, so a failed placement can be retried.
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, sessionID := orderIdentity(c)

	lines, err := h.cartService.Lines(c.Request.Context(), userID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load cart",
		})
		return
	}

	placed, err := h.orderService.Create(c.Request.Context(), &order.CreateRequest{
		UserID:    userID,
		Email:     req.Email,
		Lines:     lines,
		PromoCode: req.PromoCode,
		Address:   req.Address,
	})
	if err != nil {
		var minErr *promo.MinOrderError
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cart is empty",
			})
		case errors.Is(err, promo.ErrInvalidCode), errors.As(err, &minErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to place order",
			})
		}
		return
	}

	// The order exists at this point; a stale cart is an inconvenience,
	// not a failure.
	_ = h.cartService.Clear(c.Request.Context(), userID, sessionID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    placed,
	})
}

// List handles GET /orders for the authenticated user
func (h *OrderHandler) List(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req order.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.orderService.ListForUser(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	ord, err := h.orderService.Get(c.Request.Context(), id, &userID, middleware.IsAdminFromContext(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": ord,
	})
}

// Cancel handles PUT /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	ord, err := h.orderService.Cancel(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		case errors.Is(err, order.ErrNotCancellable):
			c.JSON(http.StatusConflict, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to cancel order",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled",
		"data":    ord,
	})
}

// AdminList handles GET /admin/orders
func (h *OrderHandler) AdminList(c *gin.Context) {
	var req order.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.orderService.List(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// AdminUpdateStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) AdminUpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status  order.Status `json:"status" binding:"required"`
		Comment string       `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if !order.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order status",
		})
		return
	}

	adminID, _ := middleware.GetUserIDFromContext(c)
	ord, err := h.orderService.UpdateStatus(c.Request.Context(), id, req.Status, req.Comment, adminID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update order status",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"data":    ord,
	})
}

// orderIdentity resolves the cart owner for checkout, same rules as the
// cart endpoints but without minting a new session.
func orderIdentity(c *gin.Context) (*uint, string) {
	if userID, exists := middleware.GetUserIDFromContext(c); exists {
		return &userID, ""
	}
	sessionID, _ := c.Cookie(sessionCookie)
	return nil, sessionID
}
