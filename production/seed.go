package production

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/print-tracker/kv"
)

// DefaultClients are created on first start.
var DefaultClients = []NewClient{
	{Name: "Prime Graphics", Phone: "123-456-7890", BillingName: "Prime Graphics Inc."},
	{Name: "Creative Solutions", Phone: "098-765-4321", BillingName: "Creative Solutions LLC"},
}

// DefaultItems are the starter materials with opening stock.
var DefaultItems = []Item{
	{SKU: "PAP-001", Name: "A4 Paper 80gsm", UOM: "sheets", StockQty: 5000, ReorderLevel: 1000, Price: decimal.Zero},
	{SKU: "BRD-001", Name: "Art Board 300gsm", UOM: "sheets", StockQty: 2000, ReorderLevel: 500, Price: decimal.Zero},
	{SKU: "STK-001", Name: "Glossy Sticker A4", UOM: "sheets", StockQty: 1500, ReorderLevel: 300, Price: decimal.Zero},
	{SKU: "PVC-001", Name: "PVC Sticker", UOM: "sheets", StockQty: 1000, ReorderLevel: 200, Price: decimal.Zero},
}

// Seed initializes any missing collection: default clients and items, and
// empty header and row lists. Existing collections are left alone.
func (s *Service) Seed(ctx context.Context) error {
	return s.update(ctx, func(st kv.Store) error {
		if _, ok, err := st.Get(ctx, KeyClients); err != nil {
			return err
		} else if !ok {
			clients := make([]Client, 0, len(DefaultClients))
			for _, c := range DefaultClients {
				id, err := kv.NextID(ctx, st, CounterClient)
				if err != nil {
					return err
				}
				clients = append(clients, Client{ID: id, Name: c.Name, Phone: c.Phone, BillingName: c.BillingName, IsActive: true})
			}
			if err := kv.Set(ctx, st, KeyClients, clients); err != nil {
				return err
			}
		}

		if _, ok, err := st.Get(ctx, KeyItems); err != nil {
			return err
		} else if !ok {
			if err := kv.Set(ctx, st, KeyItems, DefaultItems); err != nil {
				return err
			}
		}

		for _, key := range []string{KeyDailyHeaders, KeyDailyRows} {
			if _, ok, err := st.Get(ctx, key); err != nil {
				return err
			} else if !ok {
				if err := kv.Set(ctx, st, key, []struct{}{}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Reset deletes every collection, counter and draft.
func (s *Service) Reset(ctx context.Context) error {
	return s.update(ctx, func(st kv.Store) error {
		drafts, err := st.Keys(ctx, DraftKeyPrefix)
		if err != nil {
			return err
		}
		keys := append([]string{
			KeyClients, KeyItems, KeyDailyHeaders, KeyDailyRows,
			CounterClient, CounterDailyHeader, CounterDailyRow,
		}, drafts...)
		for _, k := range keys {
			if err := st.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}
