package domain

import "github.com/shopspring/decimal"

// CartLine is one row of a sale in progress. Name is a snapshot taken when
// the line was added; Stock is the balance seen at the last validation.
type CartLine struct {
	ItemID    int64           `json:"itemId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"qty"`
	Stock     int             `json:"stock"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
