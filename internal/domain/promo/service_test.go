// internal/domain/promo/service_test.go
package promo

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Resolve(t *testing.T) {
	svc := NewService(NewStaticTable())
	ctx := context.Background()

	tests := []struct {
		name       string
		code       string
		subtotal   string
		wantAmount string
		wantErr    error
	}{
		{
			name:       "percentage discount against qualifying subtotal",
			code:       "ZODAK20",
			subtotal:   "150",
			wantAmount: "30.00",
		},
		{
			name:     "minimum order not met",
			code:     "ZODAK20",
			subtotal: "50",
			wantErr:  &MinOrderError{},
		},
		{
			name:       "lowercase code is canonicalized",
			code:       "zodak10",
			subtotal:   "80",
			wantAmount: "8.00",
		},
		{
			name:       "code with surrounding whitespace",
			code:       "  welcome15 ",
			subtotal:   "100",
			wantAmount: "15.00",
		},
		{
			name:       "fixed discount ignores subtotal size",
			code:       "FREESHIP",
			subtotal:   "10",
			wantAmount: "15.00",
		},
		{
			name:       "percentage result rounds to cents",
			code:       "ZODAK10",
			subtotal:   "33.33",
			wantAmount: "3.33",
		},
		{
			name:     "unknown code",
			code:     "BOGUS",
			subtotal: "500",
			wantErr:  ErrInvalidCode,
		},
		{
			name:     "empty code",
			code:     "",
			subtotal: "500",
			wantErr:  ErrInvalidCode,
		},
		{
			name:       "vip threshold met exactly",
			code:       "VIP25",
			subtotal:   "200",
			wantAmount: "50.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Resolve(ctx, tt.code, decimal.RequireFromString(tt.subtotal))

			if tt.wantErr != nil {
				require.Error(t, err)
				if _, wantMin := tt.wantErr.(*MinOrderError); wantMin {
					var minErr *MinOrderError
					require.ErrorAs(t, err, &minErr)
					assert.Contains(t, minErr.Error(), minErr.Minimum.StringFixed(0))
				} else {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, res.DiscountAmount.StringFixed(2))
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestMinOrderError_MessageIncludesMinimum(t *testing.T) {
	svc := NewService(NewStaticTable())

	_, err := svc.Resolve(context.Background(), "ZODAK20", decimal.NewFromInt(99))
	var minErr *MinOrderError
	require.ErrorAs(t, err, &minErr)
	assert.Contains(t, minErr.Error(), "100")
}

type fakeLookup struct{ code *Code }

func (f *fakeLookup) Find(string) (*Code, bool) {
	if f.code == nil {
		return nil, false
	}
	return f.code, true
}

func TestService_Resolve_UnknownKind(t *testing.T) {
	svc := NewService(&fakeLookup{code: &Code{Code: "ODD", Kind: Kind("bogus"), Value: decimal.NewFromInt(1)}})

	_, err := svc.Resolve(context.Background(), "ODD", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, ErrInvalidCode)
}
