// internal/domain/promo/promo.go
package promo

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind enumerates the supported discount strategies.
type Kind string

const (
	// KindPercentage discounts a percentage of the cart subtotal.
	KindPercentage Kind = "percentage"
	// KindFixed discounts a fixed amount. The resolver does not cap it at
	// the subtotal; callers clamp the payable total via pricing.FinalTotal.
	KindFixed Kind = "fixed"
)

// ErrInvalidCode is returned when a promo code is not in the table.
var ErrInvalidCode = errors.New("invalid promo code")

// MinOrderError is returned when the cart subtotal does not reach the
// code's minimum order amount. The message carries the required minimum
// so it can be shown to the customer verbatim.
type MinOrderError struct {
	Minimum decimal.Decimal
}

func (e *MinOrderError) Error() string {
	return fmt.Sprintf("minimum order of $%s required for this code", e.Minimum.StringFixed(0))
}

// Code is a named discount rule. Codes are canonically uppercase.
type Code struct {
	Code           string
	Kind           Kind
	Value          decimal.Decimal
	MinOrderAmount *decimal.Decimal
}

// Lookup resolves a canonical (uppercase) code to its rule.
type Lookup interface {
	Find(code string) (*Code, bool)
}
