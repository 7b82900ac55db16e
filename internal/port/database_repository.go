package port

import (
	"context"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

type DatabaseRepository interface {
	// ListItems returns every catalog item, newest first
	ListItems(ctx context.Context) ([]domain.Item, error)

	// CreateItem inserts an item together with an empty inventory row
	CreateItem(ctx context.Context, item domain.NewItem) (domain.Item, error)

	// CreateSale persists a sale and decrements inventory with optimistic locking
	CreateSale(ctx context.Context, sale domain.Sale) error

	// ApplyMovement records a movement and adjusts inventory in one transaction
	ApplyMovement(ctx context.Context, movement domain.StockMovement, actor string) error

	// GetInventory retrieves inventory by item ID
	GetInventory(ctx context.Context, itemID int64) (*domain.Inventory, error)

	// ListInventory returns the stock of every item, used to warm the cache
	ListInventory(ctx context.Context) ([]domain.Inventory, error)
}
