package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

// BalanceReader reads a balance, zero when absent.
type BalanceReader interface {
	Get(itemID int64) int
}

type LowStockItem struct {
	domain.Item
	Stock int `json:"stock"`
}

type Metrics struct {
	TotalItems     int             `json:"totalItems"`
	TotalUnits     int             `json:"totalUnits"`
	LowStockItems  []LowStockItem  `json:"lowStockItems"`
	ZeroStockItems int             `json:"zeroStockItems"`
	InventoryValue decimal.Decimal `json:"inventoryValue"`
}

// Summarize derives the dashboard metrics from items and balances.
// Low-stock items are ordered by ascending balance, ties keeping item order.
func Summarize(items []domain.Item, balances BalanceReader) Metrics {
	m := Metrics{
		TotalItems:     len(items),
		LowStockItems:  []LowStockItem{},
		InventoryValue: decimal.Zero,
	}

	for _, it := range items {
		stock := balances.Get(it.ID)

		m.TotalUnits += stock
		if stock == 0 {
			m.ZeroStockItems++
		}
		if stock > 0 && stock <= domain.LowStockThreshold {
			m.LowStockItems = append(m.LowStockItems, LowStockItem{Item: it, Stock: stock})
		}
		m.InventoryValue = m.InventoryValue.Add(it.PriceOrZero().Mul(decimal.NewFromInt(int64(stock))))
	}

	sort.SliceStable(m.LowStockItems, func(i, j int) bool {
		return m.LowStockItems[i].Stock < m.LowStockItems[j].Stock
	})

	return m
}
