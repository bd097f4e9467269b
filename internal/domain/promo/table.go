// internal/domain/promo/table.go
package promo

import "github.com/shopspring/decimal"

// StaticTable is the built-in promo table. Codes live here rather than in
// the database; marketing hands us a fixed set per season.
type StaticTable struct {
	codes map[string]Code
}

// NewStaticTable returns the current season's promo table.
func NewStaticTable() *StaticTable {
	min := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	codes := []Code{
		{Code: "ZODAK10", Kind: KindPercentage, Value: decimal.NewFromInt(10)},
		{Code: "ZODAK20", Kind: KindPercentage, Value: decimal.NewFromInt(20), MinOrderAmount: min(100)},
		// Fixed $15 off, equivalent to free shipping.
		{Code: "FREESHIP", Kind: KindFixed, Value: decimal.NewFromInt(15)},
		{Code: "WELCOME15", Kind: KindPercentage, Value: decimal.NewFromInt(15)},
		{Code: "VIP25", Kind: KindPercentage, Value: decimal.NewFromInt(25), MinOrderAmount: min(200)},
	}

	t := &StaticTable{codes: make(map[string]Code, len(codes))}
	for _, c := range codes {
		t.codes[c.Code] = c
	}
	return t
}

// Find implements Lookup.
func (t *StaticTable) Find(code string) (*Code, bool) {
	c, ok := t.codes[code]
	if !ok {
		return nil, false
	}
	return &c, true
}
