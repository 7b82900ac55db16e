package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID    int64               `json:"id"`
	Name  string              `json:"itemName"`
	Price decimal.NullDecimal `json:"price"`
}

// PriceOrZero returns the catalog price, or zero when no price is set.
func (i Item) PriceOrZero() decimal.Decimal {
	if !i.Price.Valid {
		return decimal.Zero
	}
	return i.Price.Decimal
}

// MatchesQuery reports whether the item name contains q, ignoring case.
// An empty (or blank) query matches every item.
func (i Item) MatchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(i.Name), q)
}

// NewItem is the outbound command that registers a catalog item.
type NewItem struct {
	Name  string              `json:"itemName"`
	Price decimal.NullDecimal `json:"price"`
}
