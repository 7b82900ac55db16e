package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rl1809/stock-pos/internal/core/domain"
	"github.com/rl1809/stock-pos/internal/port"
)

var (
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrItemNotFound      = errors.New("item not found")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrClosed            = errors.New("ledger is shutting down")
)

type InsufficientStockError struct {
	ItemID    int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: requested %d, available %d", e.ItemID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// Service is the authoritative side of the stock ledger. Redis gates every
// stock change atomically; sales are then persisted to the database by
// workers reading SaleQueue, movements synchronously.
type Service struct {
	db        port.DatabaseRepository
	cache     port.CacheRepository
	saleQueue chan domain.Sale

	// closeMu keeps Close from closing saleQueue under an in-flight sale.
	closeMu sync.RWMutex
	closed  bool
}

func NewService(db port.DatabaseRepository, cache port.CacheRepository, queueSize int) *Service {
	return &Service{
		db:        db,
		cache:     cache,
		saleQueue: make(chan domain.Sale, queueSize),
	}
}

// WarmCache copies database stock into the cache.
func (s *Service) WarmCache(ctx context.Context) (int, error) {
	rows, err := s.db.ListInventory(ctx)
	if err != nil {
		return 0, fmt.Errorf("list inventory: %w", err)
	}
	for _, inv := range rows {
		if err := s.cache.SetStock(ctx, inv.ItemID, inv.Quantity); err != nil {
			return 0, fmt.Errorf("cache stock for item %d: %w", inv.ItemID, err)
		}
	}
	return len(rows), nil
}

func (s *Service) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.db.ListItems(ctx)
}

// Balance reads the cached stock, falling back to the database on a miss.
func (s *Service) Balance(ctx context.Context, itemID int64) (domain.StockBalance, error) {
	qty, ok, err := s.cache.GetStock(ctx, itemID)
	if err != nil {
		return domain.StockBalance{}, fmt.Errorf("read cached stock: %w", err)
	}
	if ok {
		return domain.StockBalance{ItemID: itemID, Balance: qty}, nil
	}

	inv, err := s.db.GetInventory(ctx, itemID)
	if err != nil {
		return domain.StockBalance{}, err
	}
	if inv == nil {
		return domain.StockBalance{}, ErrItemNotFound
	}
	if err := s.cache.SetStock(ctx, itemID, inv.Quantity); err != nil {
		log.Warn().Err(err).Int64("item_id", itemID).Msg("failed to cache stock")
	}
	return domain.StockBalance{ItemID: itemID, Balance: inv.Quantity}, nil
}

// RecordSale reserves stock for every line at once and queues the sale for
// persistence. Nothing is reserved when any line cannot be covered.
func (s *Service) RecordSale(ctx context.Context, caller *domain.Caller, sale domain.Sale) (domain.Sale, error) {
	if caller == nil {
		return domain.Sale{}, ErrUnauthorized
	}
	if sale.Seller == "" {
		sale.Seller = caller.AuthUserID
	}
	if sale.Seller != caller.AuthUserID {
		return domain.Sale{}, fmt.Errorf("%w: seller must be the caller", ErrForbidden)
	}
	if err := validateLines(sale.Lines); err != nil {
		return domain.Sale{}, err
	}

	if sale.RequestID == uuid.Nil {
		sale.RequestID = uuid.New()
	}

	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return domain.Sale{}, ErrClosed
	}

	idemKey := "sale:" + sale.RequestID.String()
	ok, err := s.cache.SetIdempotency(ctx, idemKey)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return domain.Sale{}, ErrDuplicateRequest
	}

	failed, err := s.cache.ReserveStock(ctx, sale.Lines)
	if err != nil {
		s.clearIdempotency(ctx, idemKey)
		return domain.Sale{}, fmt.Errorf("stock reservation failed: %w", err)
	}
	if failed >= 0 {
		s.clearIdempotency(ctx, idemKey)
		line := sale.Lines[failed]
		available, _, _ := s.cache.GetStock(ctx, line.ItemID)
		return domain.Sale{}, &InsufficientStockError{ItemID: line.ItemID, Requested: line.Amount, Available: available}
	}

	sale.Status = domain.SaleStatusPending
	sale.CreatedAt = time.Now()

	s.saleQueue <- sale

	log.Info().
		Str("request_id", sale.RequestID.String()).
		Str("seller", sale.Seller).
		Int("units", sale.Units()).
		Msg("sale accepted")
	return sale, nil
}

// clearIdempotency lets a rejected request be retried with the same ID.
func (s *Service) clearIdempotency(ctx context.Context, key string) {
	if err := s.cache.ClearIdempotency(context.WithoutCancel(ctx), key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to clear idempotency key")
	}
}

func validateLines(lines []domain.SaleLine) error {
	if len(lines) == 0 {
		return invalid("sale has no lines")
	}
	seen := make(map[int64]bool, len(lines))
	for _, l := range lines {
		if l.Amount <= 0 {
			return invalid("amount for item %d must be positive", l.ItemID)
		}
		if l.Price.IsNegative() {
			return invalid("price for item %d must not be negative", l.ItemID)
		}
		if seen[l.ItemID] {
			return invalid("item %d appears twice", l.ItemID)
		}
		seen[l.ItemID] = true
	}
	return nil
}

// ApplyMovement re-checks the sign gate, moves cached stock, and records the
// movement. Stock never goes below zero.
func (s *Service) ApplyMovement(ctx context.Context, caller *domain.Caller, mv domain.StockMovement) (domain.StockBalance, error) {
	if caller == nil {
		return domain.StockBalance{}, ErrUnauthorized
	}
	if mv.Qty == 0 {
		return domain.StockBalance{}, invalid("qty must be a nonzero integer")
	}
	if !domain.AllowsDelta(caller.Role, mv.Qty) {
		return domain.StockBalance{}, fmt.Errorf("%w: negative adjustment requires admin", ErrForbidden)
	}

	current, err := s.Balance(ctx, mv.ItemID)
	if err != nil {
		return domain.StockBalance{}, err
	}

	ok, err := s.cache.AdjustStock(ctx, mv.ItemID, mv.Qty)
	if err != nil {
		return domain.StockBalance{}, fmt.Errorf("stock adjustment failed: %w", err)
	}
	if !ok {
		return domain.StockBalance{}, &InsufficientStockError{ItemID: mv.ItemID, Requested: -mv.Qty, Available: current.Balance}
	}

	if err := s.db.ApplyMovement(ctx, mv, caller.AuthUserID); err != nil {
		if _, rbErr := s.cache.AdjustStock(ctx, mv.ItemID, -mv.Qty); rbErr != nil {
			log.Error().Err(rbErr).Int64("item_id", mv.ItemID).Msg("CRITICAL rollback failed for movement")
		}
		return domain.StockBalance{}, fmt.Errorf("record movement: %w", err)
	}

	log.Info().Int64("item_id", mv.ItemID).Int("delta", mv.Qty).Str("actor", caller.AuthUserID).Msg("movement recorded")
	return s.Balance(ctx, mv.ItemID)
}

func (s *Service) CreateItem(ctx context.Context, caller *domain.Caller, item domain.NewItem) (domain.Item, error) {
	if caller == nil {
		return domain.Item{}, ErrUnauthorized
	}
	if item.Name == "" {
		return domain.Item{}, invalid("itemName is required")
	}
	if item.Price.Valid && item.Price.Decimal.IsNegative() {
		return domain.Item{}, invalid("price must not be negative")
	}

	created, err := s.db.CreateItem(ctx, item)
	if err != nil {
		return domain.Item{}, fmt.Errorf("create item: %w", err)
	}
	if err := s.cache.SetStock(ctx, created.ID, 0); err != nil {
		log.Warn().Err(err).Int64("item_id", created.ID).Msg("failed to cache stock of new item")
	}
	return created, nil
}

func (s *Service) GetSaleQueue() <-chan domain.Sale {
	return s.saleQueue
}

// Close stops accepting sales and closes the queue once in-flight sales are
// queued. Workers drain what is left. Calling it twice is safe.
func (s *Service) Close() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.saleQueue)
}
