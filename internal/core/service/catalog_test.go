package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

func TestCatalogLoad_Success(t *testing.T) {
	inv := &mockInventory{}
	items := []domain.Item{priced(1, "A", 10), unpriced(2, "B")}

	c := loadedCatalog(t, inv, items, map[int64]int{1: 3, 2: 0})

	assert.True(t, c.Loaded())
	assert.Equal(t, items, c.Items())
	assert.Equal(t, 3, c.Balance(1))
	assert.Equal(t, 0, c.Balance(2))
	assert.Equal(t, 0, c.Balance(99), "unknown item reads as zero")
	inv.AssertExpectations(t)
}

func TestCatalogLoad_BalanceFailureDegradesToZero(t *testing.T) {
	inv := &mockInventory{}
	inv.On("ListItems", mock.Anything).Return([]domain.Item{priced(1, "A", 1), priced(2, "B", 1)}, nil)
	inv.On("GetBalance", mock.Anything, int64(1)).Return(domain.StockBalance{}, errors.New("boom"))
	inv.On("GetBalance", mock.Anything, int64(2)).Return(domain.StockBalance{ItemID: 2, Balance: 7}, nil)

	c := NewCatalog(inv, 2)
	require.NoError(t, c.Load(context.Background()))

	assert.Equal(t, 0, c.Balance(1))
	assert.Equal(t, 7, c.Balance(2))
	assert.Len(t, c.Items(), 2)
}

func TestCatalogLoad_ItemListFailureKeepsPreviousState(t *testing.T) {
	inv := &mockInventory{}
	c := loadedCatalog(t, inv, []domain.Item{priced(1, "A", 1)}, map[int64]int{1: 4})

	inv.On("ListItems", mock.Anything).Return(nil, errors.New("service down")).Once()

	err := c.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service down")
	assert.Equal(t, 4, c.Balance(1))
	assert.Len(t, c.Items(), 1)
}

func TestCatalogLoad_CancelledKeepsPreviousState(t *testing.T) {
	inv := &mockInventory{}
	items := []domain.Item{priced(1, "A", 1), priced(2, "B", 1)}
	c := loadedCatalog(t, inv, items, map[int64]int{1: 7, 2: 3})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	inv.On("ListItems", mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(items, nil).Once()
	inv.On("GetBalance", mock.Anything, mock.Anything).Return(domain.StockBalance{}, context.Canceled)

	err := c.Load(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 7, c.Balance(1))
	assert.Equal(t, 3, c.Balance(2))
	assert.Len(t, c.Items(), 2)
}

func TestCatalogLoad_ReplacesWholesale(t *testing.T) {
	inv := &mockInventory{}
	c := loadedCatalog(t, inv, []domain.Item{priced(1, "A", 1), priced(2, "B", 1)}, map[int64]int{1: 4, 2: 9})
	c.ApplyDelta(1, -2)

	inv.On("ListItems", mock.Anything).Return([]domain.Item{priced(2, "B", 1)}, nil).Once()
	inv.On("GetBalance", mock.Anything, int64(2)).Return(domain.StockBalance{ItemID: 2, Balance: 5}, nil).Once()

	require.NoError(t, c.Load(context.Background()))

	assert.Equal(t, domain.Balances{2: 5}, c.Balances())
	_, ok := c.Item(1)
	assert.False(t, ok)
}

func TestCatalogLoad_FetchesConcurrentlyWithinLimit(t *testing.T) {
	const n, limit = 20, 3

	items := make([]domain.Item, n)
	for i := range items {
		items[i] = priced(int64(i+1), "item", 1)
	}

	var (
		mu       sync.Mutex
		inFlight int
		peak     int
	)
	inv := &mockInventory{}
	inv.On("ListItems", mock.Anything).Return(items, nil)
	inv.On("GetBalance", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			inFlight--
			mu.Unlock()
		}).
		Return(domain.StockBalance{Balance: 1}, nil)

	c := NewCatalog(inv, limit)
	require.NoError(t, c.Load(context.Background()))

	assert.LessOrEqual(t, peak, limit)
	assert.Greater(t, peak, 1)
	inv.AssertNumberOfCalls(t, "GetBalance", n)
}

func TestCatalogLoad_StaleLoadDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	inv := &mockInventory{}
	inv.On("ListItems", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]domain.Item{priced(1, "old", 1)}, nil).Once()
	inv.On("ListItems", mock.Anything).Return([]domain.Item{priced(2, "new", 1)}, nil).Once()
	inv.On("GetBalance", mock.Anything, mock.Anything).Return(domain.StockBalance{Balance: 1}, nil)

	c := NewCatalog(inv, 2)

	errc := make(chan error, 1)
	go func() { errc <- c.Load(context.Background()) }()

	<-started
	require.NoError(t, c.Load(context.Background()))
	close(release)

	assert.ErrorIs(t, <-errc, ErrStaleLoad)
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].Name)
}

func TestCatalogSearch(t *testing.T) {
	inv := &mockInventory{}
	c := loadedCatalog(t, inv, []domain.Item{priced(1, "Coca Cola", 5), priced(2, "Pepsi", 5)}, nil)

	assert.Len(t, c.Search(""), 2)
	assert.Len(t, c.Search("   "), 2)

	found := c.Search("  COLA ")
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), found[0].ID)
	assert.Empty(t, c.Search("fanta"))
}

func TestCatalogPrepend(t *testing.T) {
	inv := &mockInventory{}
	c := loadedCatalog(t, inv, []domain.Item{priced(1, "A", 1)}, map[int64]int{1: 2})

	c.Prepend(unpriced(9, "Z"))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(9), items[0].ID)
	assert.Equal(t, 0, c.Balance(9))
	_, present := c.Balances()[9]
	assert.True(t, present)
}
