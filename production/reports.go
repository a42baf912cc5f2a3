package production

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/print-tracker/kv"
)

// =============================================================================
// REPORTS
// =============================================================================

const topClientLimit = 5

// GetReportData aggregates every row whose header date is in [start, end].
// Dates compare lexicographically; the ISO layout makes that chronological.
func (s *Service) GetReportData(ctx context.Context, start, end string) (ReportData, error) {
	report := ReportData{
		Rows:                 []JobRow{},
		TotalProductionValue: decimal.Zero,
		TopClients:           []ClientJobCount{},
	}
	err := s.view(func(st kv.Store) error {
		lk, headers, rows, err := loadLookups(ctx, st)
		if err != nil {
			return err
		}

		inRange := make(map[int]bool)
		for _, h := range headers {
			if h.Date >= start && h.Date <= end {
				inRange[h.ID] = true
			}
		}

		counts := make(map[int]int)
		var order []int
		for _, r := range rows {
			if !inRange[r.HeaderID] {
				continue
			}
			report.Rows = append(report.Rows, lk.job(r))
			report.TotalWaste += r.Waste
			report.TotalImpressions += r.Impressions()
			report.TotalProductionValue = report.TotalProductionValue.Add(r.ProductionValue())
			if counts[r.ClientID] == 0 {
				order = append(order, r.ClientID)
			}
			counts[r.ClientID]++
		}

		sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
		if len(order) > topClientLimit {
			order = order[:topClientLimit]
		}
		for _, id := range order {
			report.TopClients = append(report.TopClients, ClientJobCount{
				ClientID:   id,
				ClientName: lk.clientName(id),
				JobCount:   counts[id],
			})
		}
		return nil
	})
	if err != nil {
		return ReportData{}, err
	}
	return report, nil
}

// =============================================================================
// JOBS & BILLING
// =============================================================================

// GetFinalizedJobs returns every saved row joined with its date and names.
// Rows whose header no longer resolves are left out.
func (s *Service) GetFinalizedJobs(ctx context.Context) ([]JobRow, error) {
	var jobs []JobRow
	err := s.view(func(st kv.Store) error {
		var err error
		jobs, err = finalizedJobs(ctx, st)
		return err
	})
	return jobs, err
}

func finalizedJobs(ctx context.Context, st kv.Store) ([]JobRow, error) {
	lk, _, rows, err := loadLookups(ctx, st)
	if err != nil {
		return nil, err
	}
	jobs := make([]JobRow, 0, len(rows))
	for _, r := range rows {
		j := lk.job(r)
		if j.Date == unknownDate {
			continue
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// ListJobs filters finalized jobs for the accounts view: unbilled first, then
// newest date, then serial number.
func (s *Service) ListJobs(ctx context.Context, q JobQuery) ([]JobRow, error) {
	all, err := s.GetFinalizedJobs(ctx)
	if err != nil {
		return nil, err
	}
	filter := q.Filter
	if filter == "" {
		filter = FilterUnbilled
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]JobRow, 0, len(all))
	for _, j := range all {
		if term != "" && !matchesJob(j, term) {
			continue
		}
		switch filter {
		case FilterBilled:
			if !j.IsBilled {
				continue
			}
		case FilterUnbilled:
			if j.IsBilled {
				continue
			}
		}
		out = append(out, j)
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].IsBilled != out[b].IsBilled {
			return !out[a].IsBilled
		}
		if out[a].Date != out[b].Date {
			return out[a].Date > out[b].Date
		}
		return out[a].SerialNo < out[b].SerialNo
	})
	return out, nil
}

func matchesJob(j JobRow, term string) bool {
	if strings.Contains(strings.ToLower(j.ClientName), term) ||
		strings.Contains(strings.ToLower(j.JobReference), term) {
		return true
	}
	return j.BillNo != nil && strings.Contains(strings.ToLower(*j.BillNo), term)
}

// FindRow returns the stored row with id.
func (s *Service) FindRow(ctx context.Context, rowID int) (*DailyRow, error) {
	var found *DailyRow
	err := s.view(func(st kv.Store) error {
		rows, err := loadRows(ctx, st)
		if err != nil {
			return err
		}
		for i := range rows {
			if rows[i].ID == rowID {
				r := rows[i]
				found = &r
				break
			}
		}
		return nil
	})
	return found, err
}

// UpdateBillingInfo sets the billing flag and bill number of a row. A blank
// bill number is stored as null. A missing row is logged and reported as
// updated=false, never as an error.
func (s *Service) UpdateBillingInfo(ctx context.Context, rowID int, isBilled bool, billNo *string) (bool, error) {
	var normalized *string
	if billNo != nil {
		if trimmed := strings.TrimSpace(*billNo); trimmed != "" {
			normalized = &trimmed
		}
	}

	updated := false
	err := s.update(ctx, func(st kv.Store) error {
		rows, err := loadRows(ctx, st)
		if err != nil {
			return err
		}
		for i := range rows {
			if rows[i].ID == rowID {
				rows[i].IsBilled = isBilled
				rows[i].BillNo = normalized
				updated = true
				return kv.Set(ctx, st, KeyDailyRows, rows)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if !updated {
		s.logger.Printf("[Billing] Row %d not found, billing update skipped", rowID)
	}
	return updated, nil
}
