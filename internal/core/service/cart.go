package service

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

// StockReader exposes the projected balance the cart validates against.
type StockReader interface {
	Balance(itemID int64) int
}

// Notices are the last error and success messages shown to the operator.
type Notices struct {
	Error   string `json:"error,omitempty"`
	Success string `json:"success,omitempty"`
}

// Cart is the sale in progress: at most one line per item, newest first.
// Every line has a positive quantity, and that quantity did not exceed the
// balance seen by the last operation that changed it.
type Cart struct {
	stock   StockReader
	lines   []domain.CartLine
	notices Notices
}

func NewCart(stock StockReader) *Cart {
	return &Cart{stock: stock}
}

// Add puts one unit of item in the cart, incrementing an existing line.
func (c *Cart) Add(item domain.Item) error {
	c.notices = Notices{}
	stock := c.stock.Balance(item.ID)

	if idx := c.indexOf(item.ID); idx >= 0 {
		line := &c.lines[idx]
		if line.Quantity+1 > stock {
			return c.fail(&InsufficientStockError{ItemID: item.ID, Name: line.Name, Available: stock})
		}
		line.Quantity++
		line.Stock = stock
		return nil
	}

	if stock <= 0 {
		return c.fail(&InsufficientStockError{ItemID: item.ID, Name: item.Name, Available: stock})
	}

	line := domain.CartLine{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.PriceOrZero(),
		Quantity:  1,
		Stock:     stock,
	}
	c.lines = append([]domain.CartLine{line}, c.lines...)
	return nil
}

// UpdateQuantity floors qty and clamps it to at least 1. A quantity above
// the current balance is clamped down to it and still reported as
// insufficient stock. When nothing is available the line is left as is.
func (c *Cart) UpdateQuantity(itemID int64, qty float64) error {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return ErrLineNotFound
	}
	if math.IsNaN(qty) {
		return c.fail(&ValidationError{Field: "qty", Message: "must be a number"})
	}

	want := 1
	if f := math.Floor(qty); f > 1 {
		want = math.MaxInt32
		if f < math.MaxInt32 {
			want = int(f)
		}
	}

	line := &c.lines[idx]
	stock := c.stock.Balance(itemID)

	if want > stock {
		err := &InsufficientStockError{ItemID: itemID, Name: line.Name, Available: stock}
		if stock >= 1 {
			line.Quantity = stock
			line.Stock = stock
		}
		return c.fail(err)
	}

	line.Quantity = want
	line.Stock = stock
	return nil
}

// UpdatePrice overrides the unit price of a line, clamped to zero. The
// catalog price is not touched.
func (c *Cart) UpdatePrice(itemID int64, price decimal.Decimal) error {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return ErrLineNotFound
	}
	if price.IsNegative() {
		price = decimal.Zero
	}
	c.lines[idx].UnitPrice = price
	return nil
}

func (c *Cart) Remove(itemID int64) {
	if idx := c.indexOf(itemID); idx >= 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	}
}

// Clear empties the cart and drops pending notices.
func (c *Cart) Clear() {
	c.lines = nil
	c.notices = Notices{}
}

func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) Notices() Notices {
	return c.notices
}

func (c *Cart) fail(err error) error {
	c.notices.Error = err.Error()
	c.notices.Success = ""
	return err
}

func (c *Cart) succeed(msg string) {
	c.notices = Notices{Success: msg}
}

func (c *Cart) indexOf(itemID int64) int {
	for i, l := range c.lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}
