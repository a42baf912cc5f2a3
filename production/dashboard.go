package production

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/print-tracker/kv"
)

// =============================================================================
// COST DASHBOARD
// =============================================================================

// CostedJob is a finalized job with its material and click costs.
type CostedJob struct {
	JobRow
	RowCost
}

// CostSummary totals a dashboard range.
type CostSummary struct {
	TotalMaterialCost decimal.Decimal `json:"total_material_cost"`
	TotalClickCost    decimal.Decimal `json:"total_click_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	TotalClicks       int             `json:"total_clicks"`
}

type Dashboard struct {
	Start   string      `json:"start"`
	End     string      `json:"end"`
	Jobs    []CostedJob `json:"jobs"`
	Summary CostSummary `json:"summary"`
}

// CostDashboard prices every finalized job dated in [start, end] at the
// current item prices, newest first.
func (s *Service) CostDashboard(ctx context.Context, start, end string) (Dashboard, error) {
	d := Dashboard{
		Start: start,
		End:   end,
		Jobs:  []CostedJob{},
		Summary: CostSummary{
			TotalMaterialCost: decimal.Zero,
			TotalClickCost:    decimal.Zero,
			TotalCost:         decimal.Zero,
		},
	}
	err := s.view(func(st kv.Store) error {
		jobs, err := finalizedJobs(ctx, st)
		if err != nil {
			return err
		}
		items, err := loadItems(ctx, st)
		if err != nil {
			return err
		}
		prices := make(map[string]decimal.Decimal, len(items))
		for _, i := range items {
			prices[i.SKU] = i.Price
		}

		for _, j := range jobs {
			if j.Date < start || j.Date > end {
				continue
			}
			cost := CostOf(j.RowInput, prices[j.MaterialSKU])
			d.Jobs = append(d.Jobs, CostedJob{JobRow: j, RowCost: cost})
			d.Summary.TotalMaterialCost = d.Summary.TotalMaterialCost.Add(cost.MaterialCost)
			d.Summary.TotalClickCost = d.Summary.TotalClickCost.Add(cost.ClickCost)
			d.Summary.TotalCost = d.Summary.TotalCost.Add(cost.TotalCost)
			d.Summary.TotalClicks += cost.PrintClicks
		}
		return nil
	})
	if err != nil {
		return Dashboard{}, err
	}

	sort.SliceStable(d.Jobs, func(a, b int) bool {
		if d.Jobs[a].Date != d.Jobs[b].Date {
			return d.Jobs[a].Date > d.Jobs[b].Date
		}
		return d.Jobs[a].ID > d.Jobs[b].ID
	})
	return d, nil
}
