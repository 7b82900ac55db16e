package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rl1809/stock-pos/internal/core/domain"
	"github.com/rl1809/stock-pos/internal/port"
)

const SaleRegisteredMessage = "sale registered"

type SaleService struct {
	inventory port.InventoryService
	catalog   *Catalog
	cart      *Cart
}

func NewSaleService(inventory port.InventoryService, catalog *Catalog, cart *Cart) *SaleService {
	return &SaleService{
		inventory: inventory,
		catalog:   catalog,
		cart:      cart,
	}
}

// Finalize re-checks the cart against the live projection, submits it as a
// single sale and, once the inventory service accepts it, decrements the
// projection and clears the cart. On any failure nothing changes locally.
func (s *SaleService) Finalize(ctx context.Context, caller *domain.Caller) (domain.Sale, error) {
	seller, ok := caller.SellerID()
	if !ok {
		return domain.Sale{}, s.cart.fail(ErrUnauthorized)
	}

	lines := s.cart.Lines()
	if len(lines) == 0 {
		return domain.Sale{}, s.cart.fail(ErrEmptyCart)
	}

	for _, l := range lines {
		if stock := s.catalog.Balance(l.ItemID); l.Quantity > stock {
			return domain.Sale{}, s.cart.fail(&InsufficientStockError{ItemID: l.ItemID, Name: l.Name, Available: stock})
		}
	}

	sale := domain.Sale{
		RequestID: uuid.New(),
		Seller:    seller,
		Lines:     make([]domain.SaleLine, 0, len(lines)),
		Status:    domain.SaleStatusPending,
		CreatedAt: time.Now(),
	}
	for _, l := range lines {
		sale.Lines = append(sale.Lines, domain.SaleLine{
			ItemID: l.ItemID,
			Amount: l.Quantity,
			Price:  l.UnitPrice,
		})
	}

	if err := s.inventory.CreateSale(ctx, sale); err != nil {
		log.Error().Err(err).
			Str("request_id", sale.RequestID.String()).
			Str("seller", seller).
			Msg("sale submission failed")
		s.cart.fail(remoteMessage(err))
		return domain.Sale{}, fmt.Errorf("create sale: %w", err)
	}

	for _, l := range sale.Lines {
		s.catalog.ApplyDelta(l.ItemID, -l.Amount)
	}
	sale.Status = domain.SaleStatusConfirmed

	s.cart.Clear()
	s.cart.succeed(SaleRegisteredMessage)

	log.Info().
		Str("request_id", sale.RequestID.String()).
		Str("seller", seller).
		Int("lines", len(sale.Lines)).
		Str("total", sale.Total().StringFixed(2)).
		Msg("sale registered")

	return sale, nil
}

// remoteMessage keeps the collaborator's text as the operator-facing error.
func remoteMessage(err error) error {
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		return remote
	}
	return err
}
