package production

import (
	"context"
	"fmt"

	"github.com/warp/print-tracker/kv"
)

// =============================================================================
// ITEM REPOSITORY
// =============================================================================

// ListItems returns every item in insertion order.
func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	return loadItems(ctx, s.store)
}

// GetItem returns the item with sku.
func (s *Service) GetItem(ctx context.Context, sku string) (Item, error) {
	items, err := loadItems(ctx, s.store)
	if err != nil {
		return Item{}, err
	}
	for _, i := range items {
		if i.SKU == sku {
			return i, nil
		}
	}
	return Item{}, &NotFoundError{Kind: "item", Key: sku}
}

// LowStockItems returns items at or below their reorder level.
func (s *Service) LowStockItems(ctx context.Context) ([]Item, error) {
	items, err := loadItems(ctx, s.store)
	if err != nil {
		return nil, err
	}
	low := make([]Item, 0)
	for _, i := range items {
		if i.IsLowStock() {
			low = append(low, i)
		}
	}
	return low, nil
}

// AddItem stores a new item with zero stock. The SKU must be unused.
func (s *Service) AddItem(ctx context.Context, in NewItem) (Item, error) {
	created := Item{
		SKU:          in.SKU,
		Name:         in.Name,
		UOM:          in.UOM,
		StockQty:     0,
		ReorderLevel: in.ReorderLevel,
		Price:        in.Price,
	}
	err := s.update(ctx, func(st kv.Store) error {
		items, err := loadItems(ctx, st)
		if err != nil {
			return err
		}
		for _, i := range items {
			if i.SKU == in.SKU {
				return &DuplicateKeyError{Kind: "item", Key: in.SKU}
			}
		}
		return kv.Set(ctx, st, KeyItems, append(items, created))
	})
	if err != nil {
		return Item{}, err
	}
	return created, nil
}

// UpdateItem replaces the stored item with the same SKU. Stock is not
// range-checked here; callers adjusting stock use AdjustStock.
func (s *Service) UpdateItem(ctx context.Context, item Item) (Item, error) {
	err := s.update(ctx, func(st kv.Store) error {
		return replaceItem(ctx, st, item)
	})
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func replaceItem(ctx context.Context, st kv.Store, item Item) error {
	items, err := loadItems(ctx, st)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].SKU == item.SKU {
			items[i] = item
			return kv.Set(ctx, st, KeyItems, items)
		}
	}
	return &NotFoundError{Kind: "item", Key: item.SKU}
}

// AdjustStock applies a manual stock-in or stock-out of qty units.
// A stock-out that would take the item below zero is rejected.
func (s *Service) AdjustStock(ctx context.Context, sku string, dir StockDirection, qty int) (Item, error) {
	if qty <= 0 {
		return Item{}, &ValidationError{Field: "quantity", Message: "must be greater than zero"}
	}
	if dir != StockIn && dir != StockOut {
		return Item{}, &ValidationError{Field: "direction", Message: fmt.Sprintf("unknown direction %q", dir)}
	}

	var updated Item
	err := s.update(ctx, func(st kv.Store) error {
		items, err := loadItems(ctx, st)
		if err != nil {
			return err
		}
		for _, i := range items {
			if i.SKU != sku {
				continue
			}
			updated = i
			if dir == StockIn {
				updated.StockQty += qty
			} else {
				updated.StockQty -= qty
			}
			if updated.StockQty < 0 {
				return fmt.Errorf("%s: %d in stock, %d requested: %w", sku, i.StockQty, qty, ErrNegativeStock)
			}
			return replaceItem(ctx, st, updated)
		}
		return &NotFoundError{Kind: "item", Key: sku}
	})
	if err != nil {
		return Item{}, err
	}
	return updated, nil
}
