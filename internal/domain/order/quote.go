// internal/domain/order/quote.go
package order

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/zodak/storefront-api/internal/domain/pricing"
)

// OrderQuote is the authoritative price breakdown of an order about to be
// placed: totals recomputed from the cart lines, the promo code
// re-resolved against that subtotal, and the payable total clamped at
// zero. Every amount is rounded to cents.
type OrderQuote struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	ShippingCost   decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	PromoCode      string
}

// Quote prices the given cart lines for order creation. The promo code is
// validated against the subtotal computed here, not whatever subtotal the
// client last saw; interactive promo resolution is advisory only.
func Quote(ctx context.Context, promos PromoResolver, lines []pricing.Line, promoCode string) (*OrderQuote, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	totals := pricing.FromLines(lines).Totals().Rounded()

	discount := decimal.Zero
	code := ""
	if promoCode != "" {
		resolution, err := promos.Resolve(ctx, promoCode, totals.Subtotal)
		if err != nil {
			return nil, err
		}
		discount = resolution.DiscountAmount
		code = resolution.Code
	}

	return &OrderQuote{
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.TaxAmount,
		ShippingCost:   totals.ShippingCost,
		DiscountAmount: discount,
		TotalAmount:    pricing.FinalTotal(totals.TotalAmount, discount).Round(2),
		PromoCode:      code,
	}, nil
}
