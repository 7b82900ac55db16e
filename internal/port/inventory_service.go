package port

import (
	"context"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

// InventoryService is the remote catalog/inventory collaborator. It is the
// source of truth for items and balances.
type InventoryService interface {
	// ListItems returns the full catalog
	ListItems(ctx context.Context) ([]domain.Item, error)

	// GetBalance returns the quantity on hand for one item
	GetBalance(ctx context.Context, itemID int64) (domain.StockBalance, error)

	// CreateSale commits a sale atomically, all lines or none
	CreateSale(ctx context.Context, sale domain.Sale) error

	// ApplyStockMovement posts a signed stock adjustment
	ApplyStockMovement(ctx context.Context, movement domain.StockMovement) error

	// CreateItem registers a catalog item and returns it with its assigned ID
	CreateItem(ctx context.Context, item domain.NewItem) (domain.Item, error)
}
