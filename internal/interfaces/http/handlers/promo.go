// internal/interfaces/http/handlers/promo.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/zodak/storefront-api/internal/domain/promo"
)

// PromoHandler handles promo code validation
type PromoHandler struct {
	promoService *promo.Service
}

// NewPromoHandler creates a new promo handler
func NewPromoHandler(promoService *promo.Service) *PromoHandler {
	return &PromoHandler{promoService: promoService}
}

// Apply handles POST /promo. The client sends the code and its current
// subtotal; the response carries the discount and a display message. The
// discount is advisory only, orders re-resolve the code at placement.
func (h *PromoHandler) Apply(c *gin.Context) {
	var req struct {
		Code     string          `json:"code" binding:"required"`
		Subtotal decimal.Decimal `json:"subtotal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Promo code is required",
		})
		return
	}

	resolution, err := h.promoService.Resolve(c.Request.Context(), req.Code, req.Subtotal)
	if err != nil {
		var minErr *promo.MinOrderError
		switch {
		case errors.Is(err, promo.ErrInvalidCode):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid promo code",
			})
		case errors.As(err, &minErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": minErr.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to apply promo code",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": resolution,
	})
}
