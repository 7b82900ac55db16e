package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

// In-memory CacheRepository
type fakeCache struct {
	mu             sync.Mutex
	stock          map[int64]int
	idempotencySet map[string]bool
}

func newFakeCache(stock map[int64]int) *fakeCache {
	if stock == nil {
		stock = map[int64]int{}
	}
	return &fakeCache{stock: stock, idempotencySet: map[string]bool{}}
}

func (c *fakeCache) ReserveStock(ctx context.Context, lines []domain.SaleLine) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, l := range lines {
		qty, ok := c.stock[l.ItemID]
		if !ok || qty < l.Amount {
			return i, nil
		}
	}
	for _, l := range lines {
		c.stock[l.ItemID] -= l.Amount
	}
	return -1, nil
}

func (c *fakeCache) ReleaseStock(ctx context.Context, lines []domain.SaleLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range lines {
		c.stock[l.ItemID] += l.Amount
	}
	return nil
}

func (c *fakeCache) AdjustStock(ctx context.Context, itemID int64, delta int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stock[itemID]+delta < 0 {
		return false, nil
	}
	c.stock[itemID] += delta
	return true, nil
}

func (c *fakeCache) GetStock(ctx context.Context, itemID int64) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	qty, ok := c.stock[itemID]
	return qty, ok, nil
}

func (c *fakeCache) SetStock(ctx context.Context, itemID int64, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stock[itemID] = quantity
	return nil
}

func (c *fakeCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idempotencySet[key] {
		return false, nil
	}
	c.idempotencySet[key] = true
	return true, nil
}

func (c *fakeCache) ClearIdempotency(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.idempotencySet, key)
	return nil
}

func (c *fakeCache) get(itemID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stock[itemID]
}

var errDBDown = errors.New("db down")

// In-memory DatabaseRepository
type fakeDB struct {
	mu        sync.Mutex
	items     []domain.Item
	inventory map[int64]int
	sales     []domain.Sale
	movements []domain.StockMovement
	fail      bool
}

func newFakeDB(inventory map[int64]int) *fakeDB {
	if inventory == nil {
		inventory = map[int64]int{}
	}
	return &fakeDB{inventory: inventory}
}

func (d *fakeDB) ListItems(ctx context.Context) ([]domain.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Item(nil), d.items...), nil
}

func (d *fakeDB) CreateItem(ctx context.Context, item domain.NewItem) (domain.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return domain.Item{}, errDBDown
	}
	created := domain.Item{ID: int64(len(d.items) + 100), Name: item.Name, Price: item.Price}
	d.items = append([]domain.Item{created}, d.items...)
	d.inventory[created.ID] = 0
	return created, nil
}

func (d *fakeDB) CreateSale(ctx context.Context, sale domain.Sale) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errDBDown
	}
	for _, l := range sale.Lines {
		d.inventory[l.ItemID] -= l.Amount
	}
	d.sales = append(d.sales, sale)
	return nil
}

func (d *fakeDB) ApplyMovement(ctx context.Context, mv domain.StockMovement, actor string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errDBDown
	}
	d.inventory[mv.ItemID] += mv.Qty
	d.movements = append(d.movements, mv)
	return nil
}

func (d *fakeDB) GetInventory(ctx context.Context, itemID int64) (*domain.Inventory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	qty, ok := d.inventory[itemID]
	if !ok {
		return nil, nil
	}
	return &domain.Inventory{ItemID: itemID, Quantity: qty}, nil
}

func (d *fakeDB) ListInventory(ctx context.Context) ([]domain.Inventory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Inventory, 0, len(d.inventory))
	for id, qty := range d.inventory {
		out = append(out, domain.Inventory{ItemID: id, Quantity: qty})
	}
	return out, nil
}

// slowDB never finishes a sale before its deadline.
type slowDB struct {
	*fakeDB
}

func (d slowDB) CreateSale(ctx context.Context, sale domain.Sale) error {
	<-ctx.Done()
	return ctx.Err()
}

// strictCache refuses work on a done context, like a network client.
type strictCache struct {
	*fakeCache
}

func (c strictCache) ReleaseStock(ctx context.Context, lines []domain.SaleLine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.fakeCache.ReleaseStock(ctx, lines)
}

func drain(svc *Service) {
	go func() {
		for range svc.GetSaleQueue() {
		}
	}()
}

var (
	seller = &domain.Caller{AuthUserID: "u-1", ProfileID: 1, Role: domain.RoleOperator}
	boss   = &domain.Caller{AuthUserID: "u-9", ProfileID: 9, Role: domain.RoleAdmin}
)
