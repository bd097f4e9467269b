// internal/domain/order/quote_test.go
package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zodak/storefront-api/internal/domain/pricing"
	"github.com/zodak/storefront-api/internal/domain/promo"
)

func lines(price string, qty int) []pricing.Line {
	return []pricing.Line{{
		ID:         pricing.LineID(1, "M", "Black"),
		ProductID:  1,
		Name:       "Heritage Washed Hoodie",
		UnitPrice:  decimal.RequireFromString(price),
		Size:       "M",
		Color:      "Black",
		Quantity:   qty,
		StockLimit: 10,
	}}
}

func TestQuote(t *testing.T) {
	resolver := promo.NewService(promo.NewStaticTable())
	ctx := context.Background()

	t.Run("empty cart rejected", func(t *testing.T) {
		_, err := Quote(ctx, resolver, nil, "")
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("no promo", func(t *testing.T) {
		q, err := Quote(ctx, resolver, lines("50", 1), "")
		require.NoError(t, err)
		assert.Equal(t, "50.00", q.Subtotal.StringFixed(2))
		assert.Equal(t, "4.00", q.TaxAmount.StringFixed(2))
		assert.Equal(t, "15.00", q.ShippingCost.StringFixed(2))
		assert.True(t, q.DiscountAmount.IsZero())
		assert.Equal(t, "69.00", q.TotalAmount.StringFixed(2))
	})

	t.Run("promo re-resolved against the authoritative subtotal", func(t *testing.T) {
		// 3 x 50 = 150 qualifies for ZODAK20 (min 100): 20% of 150.
		q, err := Quote(ctx, resolver, lines("50", 3), "zodak20")
		require.NoError(t, err)
		assert.Equal(t, "30.00", q.DiscountAmount.StringFixed(2))
		assert.Equal(t, "ZODAK20", q.PromoCode)
		// 150 + 12 tax + 15 shipping - 30 discount.
		assert.Equal(t, "147.00", q.TotalAmount.StringFixed(2))
	})

	t.Run("promo below minimum fails placement", func(t *testing.T) {
		_, err := Quote(ctx, resolver, lines("50", 1), "ZODAK20")
		var minErr *promo.MinOrderError
		require.ErrorAs(t, err, &minErr)
	})

	t.Run("fixed discount", func(t *testing.T) {
		q, err := Quote(ctx, resolver, lines("0.50", 1), "FREESHIP")
		require.NoError(t, err)
		// 0.50 + 0.04 tax + 15 shipping = 15.54, minus the $15 code.
		assert.Equal(t, "0.54", q.TotalAmount.StringFixed(2))
	})

	t.Run("discount larger than total clamps to zero", func(t *testing.T) {
		q, err := Quote(ctx, overResolver{}, lines("0.50", 1), "BIG")
		require.NoError(t, err)
		assert.True(t, q.TotalAmount.IsZero(), "total %s", q.TotalAmount)
	})

	t.Run("unknown promo fails placement", func(t *testing.T) {
		_, err := Quote(ctx, resolver, lines("50", 3), "NOPE")
		assert.ErrorIs(t, err, promo.ErrInvalidCode)
	})
}

// overResolver grants a discount larger than any total in these tests.
type overResolver struct{}

func (overResolver) Resolve(_ context.Context, code string, _ decimal.Decimal) (*promo.Resolution, error) {
	return &promo.Resolution{
		Code:           code,
		Kind:           promo.KindFixed,
		Value:          decimal.NewFromInt(1000),
		DiscountAmount: decimal.NewFromInt(1000),
	}, nil
}

func TestNumberFor(t *testing.T) {
	at := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "ORD-20260831-00042", NumberFor(42, at))
}
