package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

type mockInventory struct {
	mock.Mock
}

func (m *mockInventory) ListItems(ctx context.Context) ([]domain.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}

func (m *mockInventory) GetBalance(ctx context.Context, itemID int64) (domain.StockBalance, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(domain.StockBalance), args.Error(1)
}

func (m *mockInventory) CreateSale(ctx context.Context, sale domain.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *mockInventory) ApplyStockMovement(ctx context.Context, movement domain.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *mockInventory) CreateItem(ctx context.Context, item domain.NewItem) (domain.Item, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(domain.Item), args.Error(1)
}

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) Me(ctx context.Context) (*domain.Caller, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Caller), args.Error(1)
}

func priced(id int64, name string, price int64) domain.Item {
	return domain.Item{ID: id, Name: name, Price: decimal.NewNullDecimal(decimal.NewFromInt(price))}
}

func unpriced(id int64, name string) domain.Item {
	return domain.Item{ID: id, Name: name}
}

// stubStock is a fixed balance table for cart tests.
type stubStock map[int64]int

func (s stubStock) Balance(itemID int64) int {
	return s[itemID]
}

var (
	operator = &domain.Caller{AuthUserID: "op-1", ProfileID: 1, Role: domain.RoleOperator}
	admin    = &domain.Caller{AuthUserID: "admin-1", ProfileID: 2, Role: domain.RoleAdmin}
)

// loadedCatalog returns a catalog loaded from a mock inventory serving items
// and balances.
func loadedCatalog(t interface {
	Helper()
	Fatalf(string, ...any)
}, inv *mockInventory, items []domain.Item, balances map[int64]int) *Catalog {
	t.Helper()
	inv.On("ListItems", mock.Anything).Return(items, nil).Once()
	for _, it := range items {
		inv.On("GetBalance", mock.Anything, it.ID).
			Return(domain.StockBalance{ItemID: it.ID, Balance: balances[it.ID]}, nil).Once()
	}
	c := NewCatalog(inv, 4)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}
