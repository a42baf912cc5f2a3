package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/print-tracker/auth"
	"github.com/warp/print-tracker/production"
)

func TestLoadScenario_DemoWeek(t *testing.T) {
	// GIVEN: a store with some unrelated activity
	ts := newTestServer(t)
	ctx := context.Background()
	_, err := ts.h.Service.AddClient(ctx, production.NewClient{Name: "Scratch"})
	require.NoError(t, err)

	// WHEN: an admin loads the demo week
	rec := ts.do(t, auth.RoleAdmin, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "demo-week"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: the store holds exactly the demo data
	svc := ts.h.Service
	clients, err := svc.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 3)

	report, err := svc.GetReportData(ctx, "2025-03-03", "2025-03-07")
	require.NoError(t, err)
	assert.Len(t, report.Rows, 10)

	billed, err := svc.ListJobs(ctx, production.JobQuery{Filter: production.FilterBilled})
	require.NoError(t, err)
	assert.Len(t, billed, 5)

	draft, err := svc.GetDraft(ctx, "2025-03-08")
	require.NoError(t, err)
	require.NotNil(t, draft)

	// Readings chain from one day to the next
	start, err := svc.StartingReading(ctx, "2025-03-04")
	require.NoError(t, err)
	monday, err := svc.GetDailyEntry(ctx, "2025-03-03")
	require.NoError(t, err)
	assert.Equal(t, monday.Header.MachineEndReading, start)

	d, err := svc.CostDashboard(ctx, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	assert.True(t, d.Summary.TotalMaterialCost.IsPositive())

	rec = ts.do(t, auth.RoleAdmin, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "demo-week", decode[ScenarioDTO](t, rec).ID)
}

func TestLoadScenario_DefaultResets(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)
	require.NoError(t, LoadScenario(ctx, ts.h.Service, "demo-week"))
	require.NoError(t, LoadScenario(ctx, ts.h.Service, "default"))

	report, err := ts.h.Service.GetReportData(ctx, "2000-01-01", "2100-01-01")
	require.NoError(t, err)
	assert.Empty(t, report.Rows)

	item, err := ts.h.Service.GetItem(ctx, "PAP-001")
	require.NoError(t, err)
	assert.Equal(t, 5000, item.StockQty)
}

func TestLoadScenario_Unknown(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, auth.RoleAdmin, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// DRAFT SWEEPER
// =============================================================================

func TestDraftSweeper_RunNow(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	svc := ts.h.Service

	_, err := svc.SaveDraft(ctx, "2025-03-10", production.Draft{Rows: []production.RowInput{}})
	require.NoError(t, err)
	_, err = svc.SaveDraft(ctx, "2025-03-11", production.Draft{Rows: []production.RowInput{}})
	require.NoError(t, err)
	_, err = svc.SaveDailyEntry(ctx, production.HeaderInput{Date: "2025-03-11"}, nil)
	require.NoError(t, err)

	sweeper := NewDraftSweeper(svc)
	assert.Equal(t, 0, sweeper.RunNow(), "saving the day already removed its draft")

	// A draft left behind for a saved day is swept
	require.NoError(t, svc.Store().Set(ctx, production.DraftKeyPrefix+"2025-03-11", []byte(`{"rows":[]}`)))
	assert.Equal(t, 1, sweeper.RunNow())

	drafts, err := svc.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "2025-03-10", drafts[0].Date)
}

func TestDraftSweeper_StartStop(t *testing.T) {
	ts := newTestServer(t)
	sweeper := NewDraftSweeper(ts.h.Service)
	sweeper.Interval = 10 * time.Millisecond

	sweeper.Start()
	time.Sleep(30 * time.Millisecond)
	sweeper.Stop()

	// Restart after stop
	sweeper.Start()
	sweeper.Stop()
}

func TestDraftSweeper_Disabled(t *testing.T) {
	ts := newTestServer(t)
	sweeper := NewDraftSweeper(ts.h.Service)
	sweeper.Enabled = false
	sweeper.Start()
	sweeper.Stop()
}
