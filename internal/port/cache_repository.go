package port

import (
	"context"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

type CacheRepository interface {
	// ReserveStock atomically decreases stock for every line, or for none.
	// It returns the index of the first line that could not be covered, or -1.
	ReserveStock(ctx context.Context, lines []domain.SaleLine) (int, error)

	// ReleaseStock restores reserved stock (for rollback on failure)
	ReleaseStock(ctx context.Context, lines []domain.SaleLine) error

	// AdjustStock applies a signed delta, refusing to go below zero
	AdjustStock(ctx context.Context, itemID int64, delta int) (bool, error)

	// GetStock returns the cached stock of an item and whether it is known
	GetStock(ctx context.Context, itemID int64) (int, bool, error)

	// SetStock overwrites the cached stock of an item
	SetStock(ctx context.Context, itemID int64, quantity int) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ClearIdempotency frees a key whose request was rejected
	ClearIdempotency(ctx context.Context, key string) error
}
