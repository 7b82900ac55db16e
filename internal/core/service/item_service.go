package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/rl1809/stock-pos/internal/core/domain"
	"github.com/rl1809/stock-pos/internal/port"
)

type ItemService struct {
	inventory port.InventoryService
	catalog   *Catalog
}

func NewItemService(inventory port.InventoryService, catalog *Catalog) *ItemService {
	return &ItemService{
		inventory: inventory,
		catalog:   catalog,
	}
}

// Create registers a new item. An empty price means no price; a comma is
// accepted as decimal separator. The item is shown first with balance 0.
func (s *ItemService) Create(ctx context.Context, name, price string) (domain.Item, error) {
	cmd, err := ParseNewItem(name, price)
	if err != nil {
		return domain.Item{}, err
	}

	created, err := s.inventory.CreateItem(ctx, cmd)
	if err != nil {
		log.Error().Err(err).Str("name", cmd.Name).Msg("item creation failed")
		return domain.Item{}, fmt.Errorf("create item: %w", err)
	}
	if created.Name == "" {
		created.Name = cmd.Name
	}
	if !created.Price.Valid {
		created.Price = cmd.Price
	}

	s.catalog.Prepend(created)
	log.Info().Int64("item_id", created.ID).Str("name", created.Name).Msg("item created")
	return created, nil
}

func ParseNewItem(name, price string) (domain.NewItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.NewItem{}, &ValidationError{Field: "itemName", Message: "name is required"}
	}

	cmd := domain.NewItem{Name: name}

	price = strings.TrimSpace(price)
	if price == "" {
		return cmd, nil
	}

	p, err := decimal.NewFromString(strings.Replace(price, ",", ".", 1))
	if err != nil || p.IsNegative() {
		return domain.NewItem{}, &ValidationError{Field: "price", Message: "invalid price"}
	}
	cmd.Price = decimal.NewNullDecimal(p)
	return cmd, nil
}
