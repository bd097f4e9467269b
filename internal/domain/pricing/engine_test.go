// internal/domain/pricing/engine_test.go
package pricing

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hoodie() LineInput {
	return LineInput{
		ProductID:  1,
		Name:       "Essential Heavyweight Hoodie",
		UnitPrice:  decimal.NewFromInt(50),
		ImageRef:   "/uploads/hoodie.jpg",
		Size:       "M",
		Color:      "Black",
		StockLimit: 3,
	}
}

func TestLineID(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, LineID(1, "M", "Black"), LineID(1, "M", "Black"))
	})

	t.Run("distinct variants get distinct ids", func(t *testing.T) {
		seen := map[string]bool{}
		for _, id := range []string{
			LineID(1, "M", "Black"),
			LineID(1, "L", "Black"),
			LineID(1, "M", "Cream"),
			LineID(2, "M", "Black"),
		} {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})

	t.Run("no delimiter collisions", func(t *testing.T) {
		// Concatenation-based keys would collide on these.
		assert.NotEqual(t, LineID(1, "M-Black", ""), LineID(1, "M", "Black"))
		assert.NotEqual(t, LineID(1, "", "M-Black"), LineID(1, "M", "Black"))
	})
}

func TestCart_Add(t *testing.T) {
	t.Run("single item totals", func(t *testing.T) {
		c := NewCart()
		res := c.Add(hoodie(), 1)
		require.NotNil(t, res.Line)
		assert.False(t, res.Clamped)

		got := c.Totals().Rounded()
		assert.Equal(t, 1, got.TotalItems)
		assert.True(t, got.Subtotal.Equal(decimal.NewFromInt(50)), "subtotal %s", got.Subtotal)
		assert.True(t, got.TaxAmount.Equal(decimal.NewFromInt(4)), "tax %s", got.TaxAmount)
		assert.True(t, got.ShippingCost.Equal(decimal.NewFromInt(15)), "shipping %s", got.ShippingCost)
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(69)), "total %s", got.TotalAmount)
	})

	t.Run("same variant merges into one line", func(t *testing.T) {
		c := NewCart()
		c.Add(hoodie(), 1)
		res := c.Add(hoodie(), 1)
		assert.Equal(t, 1, c.Len())
		assert.Equal(t, 2, res.Line.Quantity)
		assert.False(t, res.Clamped)
	})

	t.Run("different size creates a second line", func(t *testing.T) {
		c := NewCart()
		c.Add(hoodie(), 1)
		large := hoodie()
		large.Size = "L"
		c.Add(large, 1)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("merge clamps at stock limit and reports it", func(t *testing.T) {
		c := NewCart()
		c.Add(hoodie(), 2)
		res := c.Add(hoodie(), 5)
		assert.Equal(t, 3, res.Line.Quantity)
		assert.True(t, res.Clamped)
		assert.True(t, res.Line.AtStockLimit())
	})

	t.Run("initial add clamps at stock limit", func(t *testing.T) {
		c := NewCart()
		res := c.Add(hoodie(), 10)
		assert.Equal(t, 3, res.Line.Quantity)
		assert.True(t, res.Clamped)
	})

	t.Run("quantity below one is treated as one", func(t *testing.T) {
		c := NewCart()
		res := c.Add(hoodie(), 0)
		assert.Equal(t, 1, res.Line.Quantity)
	})
}

func TestCart_UpdateQuantity(t *testing.T) {
	t.Run("clamps to stock limit silently", func(t *testing.T) {
		c := NewCart()
		res := c.Add(hoodie(), 1)

		require.True(t, c.UpdateQuantity(res.Line.ID, 5))
		line := c.Find(res.Line.ID)
		require.NotNil(t, line)
		assert.Equal(t, 3, line.Quantity)

		got := c.Totals().Rounded()
		assert.True(t, got.Subtotal.Equal(decimal.NewFromInt(150)), "subtotal %s", got.Subtotal)
		assert.True(t, got.TaxAmount.Equal(decimal.NewFromInt(12)), "tax %s", got.TaxAmount)
		// 150 is still under the free-shipping threshold.
		assert.True(t, got.ShippingCost.Equal(decimal.NewFromInt(15)), "shipping %s", got.ShippingCost)
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(177)), "total %s", got.TotalAmount)
	})

	t.Run("zero removes the line", func(t *testing.T) {
		c := NewCart()
		res := c.Add(hoodie(), 2)
		require.True(t, c.UpdateQuantity(res.Line.ID, 0))
		assert.Equal(t, 0, c.Len())
	})

	t.Run("negative removes the line", func(t *testing.T) {
		c := NewCart()
		res := c.Add(hoodie(), 2)
		require.True(t, c.UpdateQuantity(res.Line.ID, -4))
		assert.Equal(t, 0, c.Len())
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		c := NewCart()
		c.Add(hoodie(), 1)
		assert.False(t, c.UpdateQuantity("deadbeefdeadbeef", 2))
		assert.Equal(t, 1, c.Len())
		assert.Equal(t, 1, c.Lines()[0].Quantity)
	})
}

func TestCart_Remove(t *testing.T) {
	c := NewCart()
	res := c.Add(hoodie(), 1)

	removed, ok := c.Remove(res.Line.ID)
	require.True(t, ok)
	assert.Equal(t, "Essential Heavyweight Hoodie", removed.Name)
	assert.Equal(t, 0, c.Len())

	_, ok = c.Remove(res.Line.ID)
	assert.False(t, ok)
}

func TestCart_Clear(t *testing.T) {
	c := NewCart()
	c.Add(hoodie(), 2)
	other := hoodie()
	other.Color = "Cream"
	c.Add(other, 1)

	c.Clear()
	got := c.Totals()
	assert.Equal(t, 0, got.TotalItems)
	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.ShippingCost.IsZero())
	assert.True(t, got.TotalAmount.IsZero())
}

func TestCart_ShippingBoundaries(t *testing.T) {
	tests := []struct {
		name         string
		subtotal     string
		wantShipping string
	}{
		{"empty cart pays no shipping", "0", "0"},
		{"just below threshold", "199.99", "15"},
		{"at threshold", "200", "0"},
		{"above threshold", "350", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCart()
			if tt.subtotal != "0" {
				c.Add(LineInput{
					ProductID:  7,
					Name:       "Velour Luxe Hoodie",
					UnitPrice:  decimal.RequireFromString(tt.subtotal),
					Size:       "S",
					Color:      "Emerald",
					StockLimit: 5,
				}, 1)
			}
			got := c.Totals()
			assert.True(t, got.ShippingCost.Equal(decimal.RequireFromString(tt.wantShipping)),
				"shipping %s", got.ShippingCost)
		})
	}
}

func TestFinalTotal(t *testing.T) {
	total := decimal.NewFromInt(69)

	got := FinalTotal(total, decimal.NewFromInt(20))
	assert.True(t, got.Equal(decimal.NewFromInt(49)))

	// A fixed discount bigger than the total clamps to zero.
	got = FinalTotal(total, decimal.NewFromInt(100))
	assert.True(t, got.IsZero())

	got = FinalTotal(total, decimal.Zero)
	assert.True(t, got.Equal(total))
}

// TestCart_Invariants drives the cart through random mutation sequences
// and checks the structural invariants after every step: quantities stay
// within [1, stockLimit], no two lines share an id, and the subtotal is
// exactly the sum over lines.
func TestCart_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	inputs := []LineInput{
		{ProductID: 1, Name: "A", UnitPrice: decimal.RequireFromString("89.00"), Size: "S", Color: "Black", StockLimit: 4},
		{ProductID: 1, Name: "A", UnitPrice: decimal.RequireFromString("89.00"), Size: "M", Color: "Black", StockLimit: 2},
		{ProductID: 2, Name: "B", UnitPrice: decimal.RequireFromString("12.50"), Size: "M", Color: "Olive", StockLimit: 9},
		{ProductID: 3, Name: "C", UnitPrice: decimal.RequireFromString("140.00"), Size: "L", Color: "Wine", StockLimit: 1},
	}

	c := NewCart()
	for step := 0; step < 2000; step++ {
		switch rng.Intn(4) {
		case 0:
			c.Add(inputs[rng.Intn(len(inputs))], rng.Intn(12)-1)
		case 1:
			in := inputs[rng.Intn(len(inputs))]
			c.UpdateQuantity(LineID(in.ProductID, in.Size, in.Color), rng.Intn(14)-2)
		case 2:
			in := inputs[rng.Intn(len(inputs))]
			c.Remove(LineID(in.ProductID, in.Size, in.Color))
		case 3:
			if rng.Intn(50) == 0 {
				c.Clear()
			}
		}

		seen := map[string]bool{}
		wantSubtotal := decimal.Zero
		for _, line := range c.Lines() {
			require.GreaterOrEqual(t, line.Quantity, 1, "step %d", step)
			require.LessOrEqual(t, line.Quantity, line.StockLimit, "step %d", step)
			require.False(t, seen[line.ID], "step %d: duplicate line %s", step, line.ID)
			seen[line.ID] = true
			wantSubtotal = wantSubtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		got := c.Totals()
		require.True(t, got.Subtotal.Equal(wantSubtotal), "step %d: subtotal %s != %s", step, got.Subtotal, wantSubtotal)
		require.False(t, got.TaxAmount.IsNegative(), "step %d", step)
		require.True(t, got.TotalAmount.Equal(got.Subtotal.Add(got.TaxAmount).Add(got.ShippingCost)), "step %d", step)
	}
}
