package domain

import "time"

const LowStockThreshold = 5

// Balances is an authoritative stock snapshot as returned by the inventory
// service. It is only trustworthy at the moment it was fetched.
type Balances map[int64]int

// Get returns the balance of itemID, zero when absent.
func (b Balances) Get(itemID int64) int {
	return b[itemID]
}

// StockBalance is the per-item balance reply of the inventory service.
type StockBalance struct {
	ItemID  int64 `json:"item"`
	Balance int   `json:"balance"`
}

// Projection is the client-local view of stock balances. It starts from a
// Balances snapshot and is adjusted optimistically after commands succeed.
// A missing entry reads as zero.
type Projection struct {
	balances  map[int64]int
	fetchedAt time.Time
}

func NewProjection(snapshot Balances, fetchedAt time.Time) *Projection {
	p := &Projection{
		balances:  make(map[int64]int, len(snapshot)),
		fetchedAt: fetchedAt,
	}
	for id, qty := range snapshot {
		p.balances[id] = qty
	}
	return p
}

func (p *Projection) Get(itemID int64) int {
	if p == nil {
		return 0
	}
	return p.balances[itemID]
}

// Apply adds delta to the projected balance of itemID.
func (p *Projection) Apply(itemID int64, delta int) int {
	p.balances[itemID] += delta
	return p.balances[itemID]
}

// Set overrides the projected balance of itemID.
func (p *Projection) Set(itemID int64, qty int) {
	p.balances[itemID] = qty
}

// FetchedAt is the time of the snapshot the projection was built from.
func (p *Projection) FetchedAt() time.Time {
	if p == nil {
		return time.Time{}
	}
	return p.fetchedAt
}

// Snapshot copies the current projected values.
func (p *Projection) Snapshot() Balances {
	out := make(Balances)
	if p == nil {
		return out
	}
	for id, qty := range p.balances {
		out[id] = qty
	}
	return out
}

type StockLevel string

const (
	StockLevelOut StockLevel = "out"
	StockLevelLow StockLevel = "low"
	StockLevelOK  StockLevel = "ok"
)

// ClassifyStock buckets a balance the way the catalog badges show it.
func ClassifyStock(balance int) StockLevel {
	switch {
	case balance <= 0:
		return StockLevelOut
	case balance <= LowStockThreshold:
		return StockLevelLow
	default:
		return StockLevelOK
	}
}
