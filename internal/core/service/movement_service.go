package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rl1809/stock-pos/internal/core/domain"
	"github.com/rl1809/stock-pos/internal/port"
)

type MovementService struct {
	inventory port.InventoryService
	catalog   *Catalog
}

func NewMovementService(inventory port.InventoryService, catalog *Catalog) *MovementService {
	return &MovementService{
		inventory: inventory,
		catalog:   catalog,
	}
}

// Apply posts a stock movement of delta units and, once accepted, moves the
// projected balance by exactly delta. It returns the new projected balance.
// Failures leave the projection untouched so the same call can be retried.
func (s *MovementService) Apply(ctx context.Context, caller *domain.Caller, itemID int64, delta float64, note string) (int, error) {
	qty, ok := wholeNonZero(delta)
	if !ok {
		return s.catalog.Balance(itemID), ErrInvalidDelta
	}
	if caller == nil {
		return s.catalog.Balance(itemID), ErrUnauthorized
	}
	if !domain.AllowsDelta(caller.Role, qty) {
		return s.catalog.Balance(itemID), ErrForbidden
	}

	movement := domain.StockMovement{ItemID: itemID, Qty: qty}
	if note = strings.TrimSpace(note); note != "" {
		movement.Note = &note
	}

	if err := s.inventory.ApplyStockMovement(ctx, movement); err != nil {
		log.Error().Err(err).Int64("item_id", itemID).Int("delta", qty).Msg("stock movement failed")
		return s.catalog.Balance(itemID), fmt.Errorf("apply stock movement: %w", err)
	}

	balance := s.catalog.ApplyDelta(itemID, qty)
	log.Info().Int64("item_id", itemID).Int("delta", qty).Int("balance", balance).Msg("stock movement applied")
	return balance, nil
}

func wholeNonZero(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || v == 0 {
		return 0, false
	}
	if math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
