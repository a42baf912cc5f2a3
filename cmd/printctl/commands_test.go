package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/print-tracker/kv"
	"github.com/warp/print-tracker/production"
)

// newShop returns a seeded service with one saved day on 2025-03-05.
func newShop(t *testing.T) *production.Service {
	t.Helper()
	ctx := context.Background()
	svc := production.NewService(kv.NewMemory())
	require.NoError(t, svc.Seed(ctx))

	saved, err := svc.SaveDailyEntry(ctx, production.HeaderInput{Date: "2025-03-05", DayName: "Wednesday"}, []production.RowInput{
		{ClientID: 1, JobReference: "Flyers", MaterialSKU: "PAP-001", SSQty: 10, DesigningCharges: decimal.NewFromInt(100), Finishing: decimal.Zero},
		{ClientID: 2, JobReference: "Cards", MaterialSKU: "BRD-001", FBQty: 5, DesigningCharges: decimal.Zero, Finishing: decimal.NewFromInt(20)},
	})
	require.NoError(t, err)

	billNo := "INV-1"
	ok, err := svc.UpdateBillingInfo(ctx, saved.Rows[1].ID, true, &billNo)
	require.NoError(t, err)
	require.True(t, ok)
	return svc
}

func TestReportCmd(t *testing.T) {
	svc := newShop(t)
	var out bytes.Buffer

	err := (&reportCmd{start: "2025-03-01", end: "2025-03-31"}).run(context.Background(), svc, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "5-Mar-01")
	assert.Contains(t, text, "Prime Graphics")
	assert.Contains(t, text, "Jobs:             2")
	assert.Contains(t, text, "Impressions:      20")
	assert.Contains(t, text, "Production value: 120.00")
	assert.Contains(t, text, "Top clients:")
}

func TestReportCmd_InvalidRange(t *testing.T) {
	err := (&reportCmd{start: "2025-03-31", end: "2025-03-01"}).run(context.Background(), newShop(t), &bytes.Buffer{})
	assert.ErrorIs(t, err, production.ErrValidation)
}

func TestStockCmd(t *testing.T) {
	svc := newShop(t)
	ctx := context.Background()
	_, err := svc.AdjustStock(ctx, "BRD-001", production.StockOut, 1600)
	require.NoError(t, err)

	var all bytes.Buffer
	require.NoError(t, (&stockCmd{}).run(ctx, svc, &all))
	assert.Contains(t, all.String(), "PAP-001")
	assert.Contains(t, all.String(), "4990")

	// WHEN: only low stock is requested
	var low bytes.Buffer
	require.NoError(t, (&stockCmd{low: true}).run(ctx, svc, &low))

	// THEN: only the board below its reorder level is listed
	assert.Contains(t, low.String(), "BRD-001")
	assert.Contains(t, low.String(), "LOW")
	assert.NotContains(t, low.String(), "PAP-001")
}

func TestJobsCmd(t *testing.T) {
	svc := newShop(t)
	ctx := context.Background()

	var billed bytes.Buffer
	require.NoError(t, (&jobsCmd{filter: "billed"}).run(ctx, svc, &billed))
	assert.Contains(t, billed.String(), "INV-1")
	assert.NotContains(t, billed.String(), "Flyers")

	var unbilled bytes.Buffer
	require.NoError(t, (&jobsCmd{filter: "unbilled"}).run(ctx, svc, &unbilled))
	assert.Contains(t, unbilled.String(), "Flyers")

	err := (&jobsCmd{filter: "paid"}).run(ctx, svc, &bytes.Buffer{})
	assert.ErrorIs(t, err, production.ErrValidation)
}

func TestExportCmd(t *testing.T) {
	svc := newShop(t)
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name   string
		cmd    exportCmd
		prefix string
	}{
		{"daily csv", exportCmd{screen: "daily", start: "2025-03-05", output: "day.csv"}, "Job No."},
		{"daily pdf", exportCmd{screen: "daily", start: "2025-03-05", output: "day.pdf"}, "%PDF-"},
		{"report", exportCmd{screen: "report", start: "2025-03-01", end: "2025-03-31", output: "report.csv"}, "Date"},
		{"accounts", exportCmd{screen: "accounts", output: "accounts.csv"}, "Date"},
		{"dashboard", exportCmd{screen: "dashboard", start: "2025-03-01", end: "2025-03-31", output: "dash.csv"}, "Date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.cmd
			c.output = filepath.Join(dir, c.output)

			var out bytes.Buffer
			require.NoError(t, c.run(ctx, svc, &out))
			assert.Contains(t, out.String(), "Wrote "+c.output)

			data, err := os.ReadFile(c.output)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), tt.prefix), "got %.40q", data)
		})
	}
}

func TestExportCmd_UnknownScreen(t *testing.T) {
	err := (&exportCmd{screen: "stock"}).run(context.Background(), newShop(t), &bytes.Buffer{})
	assert.ErrorIs(t, err, production.ErrValidation)
}
