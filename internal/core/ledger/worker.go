package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rl1809/stock-pos/internal/core/domain"
	"github.com/rl1809/stock-pos/internal/port"
)

// WorkerLoop persists queued sales until the queue is closed. When a sale
// cannot be stored its reservation is released back to the cache.
func WorkerLoop(id int, queue <-chan domain.Sale, db port.DatabaseRepository, cache port.CacheRepository, timeout time.Duration) {
	for sale := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)

		err := db.CreateSale(ctx, sale)
		cancel()

		if err != nil {
			log.Error().Err(err).Int("worker", id).Str("request_id", sale.RequestID.String()).Msg("failed to save sale")
			rollback(id, sale, cache, timeout)
		} else {
			log.Debug().Int("worker", id).Str("request_id", sale.RequestID.String()).Msg("saved sale")
		}
	}
}

// rollback runs on its own deadline: the persist deadline may be the
// reason the sale failed.
func rollback(id int, sale domain.Sale, cache port.CacheRepository, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := cache.ReleaseStock(ctx, sale.Lines); err != nil {
		log.Error().Err(err).Int("worker", id).Str("request_id", sale.RequestID.String()).Msg("CRITICAL rollback failed")
		return
	}
	log.Warn().Int("worker", id).Str("request_id", sale.RequestID.String()).Msg("rolled back stock")
}
