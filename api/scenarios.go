/*
scenarios.go - Demo data sets for testing and demonstrations

PURPOSE:
  Provides pre-built data sets that populate the store with realistic
  production for demos. Every scenario starts from an empty store.

AVAILABLE SCENARIOS:

	default:   Starter clients and materials, no production
	demo-week: One working week of jobs with prices, readings, billing
	           and a pending draft

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "demo-week"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/print-tracker/production"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "default",
		Name:        "Fresh Shop",
		Description: "Starter clients and materials with opening stock",
	},
	{
		ID:          "demo-week",
		Name:        "Demo Week",
		Description: "Five days of jobs, priced materials, partial billing and an open draft",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := LoadScenario(r.Context(), h.Service, req.ScenarioID); err != nil {
		if production.IsNotFound(err) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "scenario": req.ScenarioID})
}

// LoadScenario resets svc and loads scenario id into it.
func LoadScenario(ctx context.Context, svc *production.Service, id string) error {
	var load func(context.Context, *production.Service) error
	switch id {
	case "default":
		load = loadDefaultScenario
	case "demo-week":
		load = loadDemoWeekScenario
	default:
		return &production.NotFoundError{Kind: "scenario", Key: id}
	}

	if err := svc.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := load(ctx, svc); err != nil {
		return fmt.Errorf("load %s: %w", id, err)
	}
	log.Printf("[Scenarios] Loaded %s", id)
	return nil
}

func loadDefaultScenario(ctx context.Context, svc *production.Service) error {
	return svc.Seed(ctx)
}

// =============================================================================
// DEMO WEEK
// =============================================================================

// demoPrices are the per-sheet material costs used by the cost dashboard.
var demoPrices = map[string]string{
	"PAP-001": "0.45",
	"BRD-001": "4.20",
	"STK-001": "6.50",
	"PVC-001": "18.00",
}

type demoJob struct {
	client    int
	ref       string
	sku       string
	ss, fb    int
	waste     int
	designing string
	finishing string
}

var demoWeek = []struct {
	date string
	jobs []demoJob
}{
	{"2025-03-03", []demoJob{
		{1, "Visiting cards - R. Mehta", "BRD-001", 0, 100, 4, "150", "50"},
		{2, "Menu cards", "PAP-001", 200, 0, 6, "0", "0"},
	}},
	{"2025-03-04", []demoJob{
		{3, "Product labels", "STK-001", 120, 0, 3, "300", "80"},
		{1, "Flyers A4", "PAP-001", 500, 0, 12, "250", "0"},
		{2, "Wedding invites", "BRD-001", 0, 60, 2, "500", "120"},
	}},
	{"2025-03-05", []demoJob{
		{1, "Letterheads", "PAP-001", 300, 0, 5, "0", "0"},
	}},
	{"2025-03-06", []demoJob{
		{3, "ID cards", "PVC-001", 0, 40, 1, "200", "60"},
		{2, "Brochures", "PAP-001", 0, 150, 4, "350", "90"},
	}},
	{"2025-03-07", []demoJob{
		{1, "Certificates", "BRD-001", 80, 0, 2, "100", "0"},
		{3, "Window stickers", "STK-001", 50, 0, 1, "0", "40"},
	}},
}

func loadDemoWeekScenario(ctx context.Context, svc *production.Service) error {
	if err := svc.Seed(ctx); err != nil {
		return err
	}
	if _, err := svc.AddClient(ctx, production.NewClient{
		Name: "Sunrise Events", Phone: "555-010-2030", BillingName: "Sunrise Events Pvt Ltd",
	}); err != nil {
		return err
	}

	for sku, price := range demoPrices {
		item, err := svc.GetItem(ctx, sku)
		if err != nil {
			return err
		}
		item.Price = decimal.RequireFromString(price)
		if _, err := svc.UpdateItem(ctx, item); err != nil {
			return err
		}
	}
	if _, err := svc.AdjustStock(ctx, "PAP-001", production.StockIn, 2000); err != nil {
		return err
	}

	reading := 100000
	var billable []int
	for _, day := range demoWeek {
		rows := make([]production.RowInput, len(day.jobs))
		for i, j := range day.jobs {
			rows[i] = production.RowInput{
				ClientID:         j.client,
				JobReference:     j.ref,
				DesigningCharges: decimal.RequireFromString(j.designing),
				MaterialSKU:      j.sku,
				SSQty:            j.ss,
				FBQty:            j.fb,
				Finishing:        decimal.RequireFromString(j.finishing),
				Waste:            j.waste,
			}
		}
		impressions := production.TotalImpressions(rows)
		dayName, err := production.DayName(day.date)
		if err != nil {
			return err
		}
		saved, err := svc.SaveDailyEntry(ctx, production.HeaderInput{
			Date:                day.date,
			DayName:             dayName,
			TotalImpressions:    impressions,
			MachineStartReading: reading,
			MachineEndReading:   reading + impressions,
		}, rows)
		if err != nil {
			return err
		}
		reading += impressions
		if day.date < "2025-03-05" {
			for _, r := range saved.Rows {
				billable = append(billable, r.ID)
			}
		}
	}

	for i, id := range billable {
		billNo := fmt.Sprintf("INV-2025-%03d", i+1)
		if _, err := svc.UpdateBillingInfo(ctx, id, true, &billNo); err != nil {
			return err
		}
	}

	_, err := svc.SaveDraft(ctx, "2025-03-08", production.Draft{
		Rows: []production.RowInput{{
			ClientID:         3,
			JobReference:     "Event passes",
			DesigningCharges: decimal.NewFromInt(200),
			MaterialSKU:      "PVC-001",
			FBQty:            25,
			Finishing:        decimal.Zero,
		}},
		StartReading: reading,
	})
	return err
}
