package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/rl1809/stock-pos/internal/core/domain"
	"github.com/rl1809/stock-pos/internal/port"
)

// Session is one operator's view: the resolved identity, the catalog
// projection and the cart. All operations run one at a time.
type Session struct {
	mu sync.Mutex

	identity port.IdentityProvider
	caller   *domain.Caller

	catalog   *Catalog
	cart      *Cart
	sales     *SaleService
	movements *MovementService
	items     *ItemService
}

func NewSession(inventory port.InventoryService, identity port.IdentityProvider, fetchConcurrency int) *Session {
	catalog := NewCatalog(inventory, fetchConcurrency)
	cart := NewCart(catalog)

	return &Session{
		identity:  identity,
		catalog:   catalog,
		cart:      cart,
		sales:     NewSaleService(inventory, catalog, cart),
		movements: NewMovementService(inventory, catalog),
		items:     NewItemService(inventory, catalog),
	}
}

// Activate resolves the caller and loads the catalog. An identity failure
// is not fatal: the session stays usable for browsing, and sales and
// movements are rejected until ResolveIdentity succeeds.
func (s *Session) Activate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolveIdentity(ctx)
	return s.catalog.Load(ctx)
}

func (s *Session) ResolveIdentity(ctx context.Context) *domain.Caller {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolveIdentity(ctx)
	return s.caller
}

func (s *Session) resolveIdentity(ctx context.Context) {
	caller, err := s.identity.Me(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("identity not resolved")
		s.caller = nil
		return
	}
	s.caller = caller
	log.Info().Str("user", caller.AuthUserID).Str("role", string(caller.Role)).Msg("identity resolved")
}

// Refresh replaces the projection with a fresh fetch from the inventory
// service. Local adjustments made since the last load are dropped.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Load(ctx)
}

func (s *Session) Caller() *domain.Caller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caller
}

type CatalogEntry struct {
	domain.Item
	Stock int               `json:"stock"`
	Level domain.StockLevel `json:"level"`
}

type CatalogView struct {
	Loaded    bool           `json:"loaded"`
	FetchedAt time.Time      `json:"fetchedAt"`
	Items     []CatalogEntry `json:"items"`
}

func (s *Session) Catalog(query string) CatalogView {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.catalog.Search(query)
	view := CatalogView{
		Loaded:    s.catalog.Loaded(),
		FetchedAt: s.catalog.FetchedAt(),
		Items:     make([]CatalogEntry, 0, len(items)),
	}
	for _, it := range items {
		stock := s.catalog.Balance(it.ID)
		view.Items = append(view.Items, CatalogEntry{Item: it, Stock: stock, Level: domain.ClassifyStock(stock)})
	}
	return view
}

func (s *Session) Dashboard() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.catalog.Items(), s.catalog.Balances())
}

type CartView struct {
	Lines   []domain.CartLine `json:"lines"`
	Total   decimal.Decimal   `json:"total"`
	Notices Notices           `json:"notices"`
}

func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartView()
}

func (s *Session) cartView() CartView {
	return CartView{
		Lines:   s.cart.Lines(),
		Total:   s.cart.Total(),
		Notices: s.cart.Notices(),
	}
}

func (s *Session) AddToCart(itemID int64) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.catalog.Item(itemID)
	if !ok {
		return s.cartView(), ErrItemNotFound
	}
	err := s.cart.Add(item)
	return s.cartView(), err
}

// UpdateLine changes quantity and/or price of a line; nil leaves a field as
// is. The price is applied even when the quantity hits a stock limit.
func (s *Session) UpdateLine(itemID int64, qty *float64, price *decimal.Decimal) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var qtyErr error
	if price != nil {
		if err := s.cart.UpdatePrice(itemID, *price); err != nil {
			return s.cartView(), err
		}
	}
	if qty != nil {
		qtyErr = s.cart.UpdateQuantity(itemID, *qty)
	}
	return s.cartView(), qtyErr
}

func (s *Session) RemoveLine(itemID int64) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(itemID)
	return s.cartView()
}

func (s *Session) ClearCart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	return s.cartView()
}

func (s *Session) Finalize(ctx context.Context) (domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sales.Finalize(ctx, s.caller)
}

func (s *Session) ApplyMovement(ctx context.Context, itemID int64, delta float64, note string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.movements.Apply(ctx, s.caller, itemID, delta, note)
}

func (s *Session) CreateItem(ctx context.Context, name, price string) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Create(ctx, name, price)
}
