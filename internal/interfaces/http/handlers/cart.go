// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zodak/storefront-api/internal/config"
	"github.com/zodak/storefront-api/internal/domain/cart"
	"github.com/zodak/storefront-api/internal/interfaces/http/middleware"
)

// sessionCookie carries the guest cart identity across requests.
const sessionCookie = "zodak_session"

// sessionCookieMaxAge matches the guest cart TTL in Redis.
const sessionCookieMaxAge = 24 * 60 * 60

// CartHandler handles shopping cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		config:      cfg,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, sessionID := h.identity(c)

	response, err := h.cartService.Get(c.Request.Context(), userID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, sessionID := h.identity(c)

	var req cart.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	response, err := h.cartService.Add(c.Request.Context(), userID, sessionID, &req)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"data":    response,
	})
}

// UpdateItem handles PUT /cart/items/:lineId. Quantity zero removes the
// line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, sessionID := h.identity(c)

	var req cart.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	response, err := h.cartService.UpdateQuantity(c.Request.Context(), userID, sessionID, c.Param("lineId"), req.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// RemoveItem handles DELETE /cart/items/:lineId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, sessionID := h.identity(c)

	response, err := h.cartService.Remove(c.Request.Context(), userID, sessionID, c.Param("lineId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, sessionID := h.identity(c)

	if err := h.cartService.Clear(c.Request.Context(), userID, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}

// MergeCart handles POST /cart/merge. Called after login to fold the
// guest cart into the user cart.
func (h *CartHandler) MergeCart(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	sessionID, err := c.Cookie(sessionCookie)
	if err != nil || sessionID == "" {
		// Nothing to merge, return the user cart as-is
		response, err := h.cartService.Get(c.Request.Context(), &userID, "")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve cart",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": response})
		return
	}

	response, err := h.cartService.MergeGuestCart(c.Request.Context(), userID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to merge cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart merged",
		"data":    response,
	})
}

// identity resolves the cart owner for this request. Authenticated users
// are keyed by user ID; guests get a session cookie minted on first use.
func (h *CartHandler) identity(c *gin.Context) (*uint, string) {
	if userID, exists := middleware.GetUserIDFromContext(c); exists {
		return &userID, ""
	}

	sessionID, err := c.Cookie(sessionCookie)
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()
		secure := h.config.IsProduction()
		c.SetCookie(sessionCookie, sessionID, sessionCookieMaxAge, "/", "", secure, true)
	}
	return nil, sessionID
}
