// internal/domain/promo/service.go
package promo

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Resolution is the outcome of applying a code to a subtotal. The discount
// is a derived, session-local value: it is bound to the subtotal it was
// computed from and must be re-resolved if the cart changes.
type Resolution struct {
	Code           string          `json:"code"`
	Kind           Kind            `json:"type"`
	Value          decimal.Decimal `json:"discount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Message        string          `json:"message"`
}

// Service turns user-entered promo codes into concrete discount amounts.
type Service struct {
	lookup Lookup
}

// NewService creates a promo service backed by the given lookup.
func NewService(lookup Lookup) *Service {
	return &Service{lookup: lookup}
}

// Resolve validates the code against the given subtotal and computes the
// discount amount, rounded to cents. It never mutates cart state.
// Returns ErrInvalidCode for unknown codes and *MinOrderError when the
// subtotal is below the code's minimum.
func (s *Service) Resolve(ctx context.Context, code string, subtotal decimal.Decimal) (*Resolution, error) {
	canonical := strings.ToUpper(strings.TrimSpace(code))
	if canonical == "" {
		return nil, ErrInvalidCode
	}

	rule, ok := s.lookup.Find(canonical)
	if !ok {
		return nil, ErrInvalidCode
	}

	if rule.MinOrderAmount != nil && subtotal.LessThan(*rule.MinOrderAmount) {
		return nil, &MinOrderError{Minimum: *rule.MinOrderAmount}
	}

	var amount decimal.Decimal
	var message string
	switch rule.Kind {
	case KindPercentage:
		amount = subtotal.Mul(rule.Value).Div(decimal.NewFromInt(100))
		message = fmt.Sprintf("%s%% discount applied!", rule.Value.StringFixed(0))
	case KindFixed:
		amount = rule.Value
		message = fmt.Sprintf("$%s discount applied!", rule.Value.StringFixed(0))
	default:
		return nil, ErrInvalidCode
	}

	return &Resolution{
		Code:           rule.Code,
		Kind:           rule.Kind,
		Value:          rule.Value,
		DiscountAmount: amount.Round(2),
		Message:        message,
	}, nil
}
