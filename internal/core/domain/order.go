package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusConfirmed SaleStatus = "confirmed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

type SaleLine struct {
	ItemID int64           `json:"item"`
	Amount int             `json:"amount"`
	Price  decimal.Decimal `json:"price"`
}

// Sale is the outbound command committing a cart. RequestID makes the
// submission idempotent on the inventory service side.
type Sale struct {
	RequestID uuid.UUID  `json:"requestId"`
	Seller    string     `json:"seller"`
	Lines     []SaleLine `json:"items"`
	Status    SaleStatus `json:"-"`
	CreatedAt time.Time  `json:"-"`
}

func (s Sale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Amount))))
	}
	return total
}

func (s Sale) Units() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Amount
	}
	return n
}
