package production_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/print-tracker/production"
)

// =============================================================================
// CLIENTS
// =============================================================================

func TestAddClient_IDsAreMonotonic(t *testing.T) {
	storeBackends(t, func(t *testing.T, svc *production.Service) {
		ctx := context.Background()

		// Seed already used ids 1 and 2
		prev := 2
		for _, name := range []string{"Alpha Print", "Beta Media", "Gamma Signs"} {
			c, err := svc.AddClient(ctx, production.NewClient{Name: name})
			require.NoError(t, err)
			assert.Greater(t, c.ID, prev)
			assert.True(t, c.IsActive)
			prev = c.ID
		}

		clients, err := svc.ListClients(ctx)
		require.NoError(t, err)
		assert.Len(t, clients, 5)
	})
}

func TestUpdateClient_Deactivate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	c, err := svc.GetClient(ctx, 1)
	require.NoError(t, err)
	c.IsActive = false
	_, err = svc.UpdateClient(ctx, c)
	require.NoError(t, err)

	active, err := svc.ActiveClients(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Creative Solutions", active[0].Name)

	// Deactivated clients are still listed
	all, err := svc.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateClient_NotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.UpdateClient(context.Background(), production.Client{ID: 42, Name: "Ghost"})
	assert.ErrorIs(t, err, production.ErrNotFound)
	assert.True(t, production.IsNotFound(err))
}

// =============================================================================
// ITEMS
// =============================================================================

func TestAddItem_DuplicateSKULeavesCollectionUnchanged(t *testing.T) {
	storeBackends(t, func(t *testing.T, svc *production.Service) {
		ctx := context.Background()
		before, err := svc.ListItems(ctx)
		require.NoError(t, err)

		_, err = svc.AddItem(ctx, production.NewItem{SKU: "PAP-001", Name: "Copy", UOM: "sheets"})
		require.Error(t, err)
		assert.ErrorIs(t, err, production.ErrDuplicateKey)
		assert.Contains(t, err.Error(), "SKU PAP-001 already exists")

		after, err := svc.ListItems(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(before), len(after))
		for i := range before {
			assert.Equal(t, before[i].SKU, after[i].SKU)
			assert.Equal(t, before[i].Name, after[i].Name)
			assert.Equal(t, before[i].StockQty, after[i].StockQty)
		}
	})
}

func TestAddItem_StartsAtZeroStock(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	item, err := svc.AddItem(ctx, production.NewItem{
		SKU: "VIN-001", Name: "Vinyl Roll", UOM: "feet", ReorderLevel: 10,
		Price: decimal.RequireFromString("12.75"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, item.StockQty)

	got, err := svc.GetItem(ctx, "VIN-001")
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.75")))

	// Zero stock is at or below reorder level
	low, err := svc.LowStockItems(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "VIN-001", low[0].SKU)
}

func TestItem_IsLowStockAtThreshold(t *testing.T) {
	assert.True(t, production.Item{StockQty: 10, ReorderLevel: 10}.IsLowStock())
	assert.True(t, production.Item{StockQty: 9, ReorderLevel: 10}.IsLowStock())
	assert.False(t, production.Item{StockQty: 11, ReorderLevel: 10}.IsLowStock())
}

func TestUpdateItem_NotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.UpdateItem(context.Background(), production.Item{SKU: "NOPE"})
	assert.True(t, production.IsNotFound(err))
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("stock in adds", func(t *testing.T) {
		svc := newTestService(t)
		item, err := svc.AdjustStock(ctx, "PVC-001", production.StockIn, 250)
		require.NoError(t, err)
		assert.Equal(t, 1250, item.StockQty)
		assert.Equal(t, 1250, stockOf(t, svc, "PVC-001"))
	})

	t.Run("stock out subtracts", func(t *testing.T) {
		svc := newTestService(t)
		item, err := svc.AdjustStock(ctx, "PVC-001", production.StockOut, 1000)
		require.NoError(t, err)
		assert.Equal(t, 0, item.StockQty)
	})

	t.Run("stock out below zero is rejected", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.AdjustStock(ctx, "PVC-001", production.StockOut, 1001)
		assert.ErrorIs(t, err, production.ErrNegativeStock)
		assert.Equal(t, 1000, stockOf(t, svc, "PVC-001"))
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.AdjustStock(ctx, "PVC-001", production.StockIn, 0)
		assert.ErrorIs(t, err, production.ErrValidation)
	})

	t.Run("unknown direction", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.AdjustStock(ctx, "PVC-001", production.StockDirection("sideways"), 5)
		assert.ErrorIs(t, err, production.ErrValidation)
	})

	t.Run("unknown sku", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.AdjustStock(ctx, "NOPE", production.StockIn, 5)
		assert.True(t, production.IsNotFound(err))
	})
}

// =============================================================================
// SEED
// =============================================================================

func TestSeed_DoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.AdjustStock(ctx, "PAP-001", production.StockOut, 100)
	require.NoError(t, err)
	require.NoError(t, svc.Seed(ctx))

	assert.Equal(t, 4900, stockOf(t, svc, "PAP-001"))
	clients, err := svc.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 2)
}

func TestReset_ClearsEverything(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.SaveDailyEntry(ctx, header("2025-03-10"), []production.RowInput{row(1, "PAP-001", 1, 0, 0)})
	require.NoError(t, err)
	_, err = svc.SaveDraft(ctx, "2025-03-11", production.Draft{Rows: []production.RowInput{}})
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx))

	keys, err := svc.Store().Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)

	// Seeding again starts the counters over
	require.NoError(t, svc.Seed(ctx))
	c, err := svc.AddClient(ctx, production.NewClient{Name: "Fresh"})
	require.NoError(t, err)
	assert.Equal(t, 3, c.ID)
}
