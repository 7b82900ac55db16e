package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rl1809/stock-pos/internal/core/domain"
	"github.com/rl1809/stock-pos/internal/port"
)

const DefaultFetchConcurrency = 8

// Catalog holds the last fetched items and the projection of their
// balances. A successful Load replaces both wholesale.
type Catalog struct {
	inventory   port.InventoryService
	concurrency int

	mu         sync.RWMutex
	items      []domain.Item
	projection *domain.Projection
	generation uint64
}

func NewCatalog(inventory port.InventoryService, concurrency int) *Catalog {
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}
	return &Catalog{
		inventory:   inventory,
		concurrency: concurrency,
	}
}

// Load fetches the item list, then every balance with bounded fan-out.
// A failing balance degrades that item to zero; a failing item list or a
// cancelled ctx fails the load and keeps the previous state. If another Load
// started after this one, the result is discarded and ErrStaleLoad is
// returned.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	token := c.generation
	c.mu.Unlock()

	items, err := c.inventory.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	snapshot, err := c.fetchBalances(ctx, items)
	if err != nil {
		return fmt.Errorf("fetch balances: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.generation {
		log.Debug().Uint64("token", token).Msg("discarding stale catalog load")
		return ErrStaleLoad
	}

	c.items = items
	c.projection = domain.NewProjection(snapshot, time.Now())

	log.Debug().Int("items", len(items)).Msg("catalog loaded")
	return nil
}

func (c *Catalog) fetchBalances(ctx context.Context, items []domain.Item) (domain.Balances, error) {
	results := make([]int, len(items))

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, it := range items {
		g.Go(func() error {
			b, err := c.inventory.GetBalance(ctx, it.ID)
			if err != nil {
				log.Warn().Err(err).Int64("item_id", it.ID).Msg("balance fetch failed, using 0")
				return nil
			}
			results[i] = b.Balance
			return nil
		})
	}
	_ = g.Wait()

	// Zeros from a cancelled fan-out are not balances.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := make(domain.Balances, len(items))
	for i, it := range items {
		snapshot[it.ID] = results[i]
	}
	return snapshot, nil
}

func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projection != nil
}

func (c *Catalog) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projection.FetchedAt()
}

// Items returns a copy of the cached item list.
func (c *Catalog) Items() []domain.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Search filters the cached items by name.
func (c *Catalog) Search(query string) []domain.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Item, 0, len(c.items))
	for _, it := range c.items {
		if it.MatchesQuery(query) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Catalog) Item(itemID int64) (domain.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.ID == itemID {
			return it, true
		}
	}
	return domain.Item{}, false
}

// Balance returns the projected balance, zero when unknown.
func (c *Catalog) Balance(itemID int64) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projection.Get(itemID)
}

func (c *Catalog) Balances() domain.Balances {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projection.Snapshot()
}

// ApplyDelta adjusts the projected balance after a committed command and
// returns the new value.
func (c *Catalog) ApplyDelta(itemID int64, delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureProjection()
	return c.projection.Apply(itemID, delta)
}

// Prepend adds a freshly created item at the top of the list with a zero
// balance.
func (c *Catalog) Prepend(item domain.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureProjection()
	c.items = append([]domain.Item{item}, c.items...)
	c.projection.Set(item.ID, 0)
}

func (c *Catalog) ensureProjection() {
	if c.projection == nil {
		c.projection = domain.NewProjection(nil, time.Time{})
	}
}
