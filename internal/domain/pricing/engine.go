// internal/domain/pricing/engine.go
package pricing

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/shopspring/decimal"
)

// Pricing rules applied to every cart. These are business constants, not
// configuration: changing them changes what customers are charged.
var (
	// TaxRate is the flat sales tax applied to the subtotal (8%).
	TaxRate = decimal.RequireFromString("0.08")
	// ShippingThreshold is the subtotal at which shipping becomes free.
	ShippingThreshold = decimal.NewFromInt(200)
	// FlatShippingFee is charged on any non-empty cart below the threshold.
	FlatShippingFee = decimal.NewFromInt(15)
)

// Line is one purchasable configuration of a product in the cart.
// Everything except Quantity is fixed when the line is created; unit price
// and stock limit are snapshots taken from the catalog at add time and are
// never re-fetched.
type Line struct {
	ID         string          `json:"id"`
	ProductID  uint            `json:"product_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	ImageRef   string          `json:"image_ref"`
	Size       string          `json:"size"`
	Color      string          `json:"color"`
	Quantity   int             `json:"quantity"`
	StockLimit int             `json:"stock_limit"`
}

// AtStockLimit reports whether the line cannot grow any further. The UI
// uses this to show a "stock limit reached" affordance; mutations never
// return an error for exceeding stock.
func (l *Line) AtStockLimit() bool {
	return l.Quantity >= l.StockLimit
}

// LineTotal returns unit price times quantity.
func (l *Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineID derives the deterministic identity of a cart line from the
// product and its chosen variant. Fields are length-prefixed before
// hashing so values containing any particular delimiter cannot collide.
func LineID(productID uint, size, color string) string {
	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(productID))
	h.Write(buf[:])
	for _, s := range []string{size, color} {
		binary.BigEndian.PutUint64(buf[:], uint64(len(s)))
		h.Write(buf[:])
		h.Write([]byte(s))
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// LineInput carries the catalog snapshot needed to create a cart line.
type LineInput struct {
	ProductID  uint
	Name       string
	UnitPrice  decimal.Decimal
	ImageRef   string
	Size       string
	Color      string
	StockLimit int
}

// AddResult reports the outcome of an Add. Clamped is true when the
// requested quantity exceeded the stock limit and the excess was dropped.
type AddResult struct {
	Line    *Line
	Clamped bool
}

// Totals is the derived price breakdown of a cart. It is a pure function
// of the current line set and is recomputed after every mutation. The
// promo discount is intentionally not folded into TotalAmount; callers
// subtract it via FinalTotal.
type Totals struct {
	TotalItems   int             `json:"total_items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// Cart is an ordered collection of lines. Insertion order is preserved for
// display only; totals do not depend on it. A cart is owned by a single
// browsing session and must not be shared across goroutines.
type Cart struct {
	lines []Line
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// FromLines rebuilds a cart from previously persisted lines.
func FromLines(lines []Line) *Cart {
	c := &Cart{lines: make([]Line, len(lines))}
	copy(c.lines, lines)
	return c
}

// Lines returns a copy of the current line set in display order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Find returns the line with the given id, or nil.
func (c *Cart) Find(lineID string) *Line {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			return &c.lines[i]
		}
	}
	return nil
}

// Add merges the given item into the cart. If a line with the same
// (product, size, color) already exists its quantity is incremented,
// clamped to the line's stock limit; otherwise a new line is created with
// the quantity clamped the same way. Excess quantity is dropped silently;
// the returned AddResult reports whether clamping occurred.
//
// A quantity below 1 is treated as 1. A stock limit of zero or less
// degenerates to a line frozen at quantity 1; it is kept rather than
// rejected so the caller's rendering stays consistent.
func (c *Cart) Add(in LineInput, quantity int) AddResult {
	if quantity < 1 {
		quantity = 1
	}

	id := LineID(in.ProductID, in.Size, in.Color)
	if existing := c.Find(id); existing != nil {
		requested := existing.Quantity + quantity
		existing.Quantity = clampQuantity(requested, existing.StockLimit)
		return AddResult{Line: existing, Clamped: requested > existing.Quantity}
	}

	line := Line{
		ID:         id,
		ProductID:  in.ProductID,
		Name:       in.Name,
		UnitPrice:  in.UnitPrice,
		ImageRef:   in.ImageRef,
		Size:       in.Size,
		Color:      in.Color,
		Quantity:   clampQuantity(quantity, in.StockLimit),
		StockLimit: in.StockLimit,
	}
	c.lines = append(c.lines, line)
	return AddResult{Line: &c.lines[len(c.lines)-1], Clamped: quantity > line.Quantity}
}

// UpdateQuantity sets the quantity of the identified line. A quantity of
// zero or less removes the line entirely; anything above the stock limit
// is clamped silently. Unknown line ids are a no-op and return false.
func (c *Cart) UpdateQuantity(lineID string, quantity int) bool {
	for i := range c.lines {
		if c.lines[i].ID != lineID {
			continue
		}
		if quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
		c.lines[i].Quantity = clampQuantity(quantity, c.lines[i].StockLimit)
		return true
	}
	return false
}

// Remove deletes the identified line and returns it so the caller can
// emit a removal notification. Unknown ids are a no-op.
func (c *Cart) Remove(lineID string) (Line, bool) {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			removed := c.lines[i]
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return removed, true
		}
	}
	return Line{}, false
}

// Clear empties the cart unconditionally. Called after a successful order
// placement.
func (c *Cart) Clear() {
	c.lines = nil
}

// Totals computes the full price breakdown for the current line set.
func (c *Cart) Totals() Totals {
	var t Totals
	t.Subtotal = decimal.Zero
	for i := range c.lines {
		t.TotalItems += c.lines[i].Quantity
		t.Subtotal = t.Subtotal.Add(c.lines[i].LineTotal())
	}

	t.TaxAmount = t.Subtotal.Mul(TaxRate)
	t.ShippingCost = decimal.Zero
	if t.Subtotal.IsPositive() && t.Subtotal.LessThan(ShippingThreshold) {
		t.ShippingCost = FlatShippingFee
	}
	t.TotalAmount = t.Subtotal.Add(t.TaxAmount).Add(t.ShippingCost)
	return t
}

// Rounded returns the totals with every amount rounded to cents. Amounts
// shown to the customer or submitted to order creation use this form;
// intermediate math keeps full precision.
func (t Totals) Rounded() Totals {
	return Totals{
		TotalItems:   t.TotalItems,
		Subtotal:     t.Subtotal.Round(2),
		TaxAmount:    t.TaxAmount.Round(2),
		ShippingCost: t.ShippingCost.Round(2),
		TotalAmount:  t.TotalAmount.Round(2),
	}
}

// FinalTotal applies a promo discount to a computed total. The result is
// clamped at zero: a fixed discount larger than the total must never
// produce a negative payable amount.
func FinalTotal(total, discount decimal.Decimal) decimal.Decimal {
	final := total.Sub(discount)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

func clampQuantity(quantity, stockLimit int) int {
	if stockLimit < 1 {
		return 1
	}
	if quantity > stockLimit {
		return stockLimit
	}
	return quantity
}
