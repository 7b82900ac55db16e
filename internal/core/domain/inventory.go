package domain

import "time"

type Inventory struct {
	ItemID    int64
	Quantity  int
	Version   int // optimistic locking
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockMovement is a signed stock adjustment: restock, correction or loss.
type StockMovement struct {
	ItemID int64   `json:"item"`
	Qty    int     `json:"qty"`
	Note   *string `json:"note"`
}
