/*
daily.go - Daily-entry reconciliation engine

PURPOSE:
  Saves a day's production sheet. The date is the business key: at most one
  header exists per date, and every save replaces the full row set owned by
  that header.

STOCK RECONCILIATION:
  Material usage of a row is ss_qty + fb_qty + waste sheets of material_sku.
  On re-save, usage of every previously saved row is added back to stock and
  usage of every incoming row is subtracted, both against one in-memory
  snapshot of the items collection. Reverse-then-reapply stays correct when a
  row's material changes between saves, and an unchanged re-save nets to zero.

  Create path:  header id assigned, incoming usage subtracted.
  Update path:  header id kept, old usage restored, incoming usage subtracted.

ROWS:
  Incoming rows get fresh row ids, serial_no 1..N in input order, and an
  unbilled state. Rows of other headers are untouched.

ATOMICITY:
  Items, headers, rows and the date's draft are written in one WithTx, so a
  reader never sees a header without its rows or rows from two saves.
*/
package production

import (
	"context"
	"sort"

	"github.com/warp/print-tracker/kv"
)

// SaveDailyEntry creates or replaces the entry for header.Date.
func (s *Service) SaveDailyEntry(ctx context.Context, header HeaderInput, rows []RowInput) (DailyEntry, error) {
	var saved DailyEntry
	err := s.update(ctx, func(st kv.Store) error {
		headers, err := loadHeaders(ctx, st)
		if err != nil {
			return err
		}
		allRows, err := loadRows(ctx, st)
		if err != nil {
			return err
		}
		items, err := loadItems(ctx, st)
		if err != nil {
			return err
		}

		// stock delta per sku, applied once to the items snapshot
		delta := make(map[string]int)

		idx := findHeaderByDate(headers, header.Date)
		var h DailyHeader
		if idx >= 0 {
			h = headers[idx]
			if header.ExpectedVersion != 0 && header.ExpectedVersion != h.Version {
				return &VersionConflictError{Date: h.Date, Expected: header.ExpectedVersion, Actual: h.Version}
			}
			h.DayName = header.DayName
			h.TotalImpressions = header.TotalImpressions
			h.MachineStartReading = header.MachineStartReading
			h.MachineEndReading = header.MachineEndReading
			h.Version++
			headers[idx] = h

			for _, old := range allRows {
				if old.HeaderID == h.ID {
					delta[old.MaterialSKU] += old.MaterialUsage()
				}
			}
		} else {
			id, err := kv.NextID(ctx, st, CounterDailyHeader)
			if err != nil {
				return err
			}
			h = DailyHeader{
				ID:                  id,
				Date:                header.Date,
				DayName:             header.DayName,
				TotalImpressions:    header.TotalImpressions,
				MachineStartReading: header.MachineStartReading,
				MachineEndReading:   header.MachineEndReading,
				Version:             1,
			}
			headers = append(headers, h)
		}

		kept := make([]DailyRow, 0, len(allRows)+len(rows))
		for _, r := range allRows {
			if r.HeaderID != h.ID {
				kept = append(kept, r)
			}
		}

		newRows := make([]DailyRow, 0, len(rows))
		for i, in := range rows {
			id, err := kv.NextID(ctx, st, CounterDailyRow)
			if err != nil {
				return err
			}
			newRows = append(newRows, DailyRow{
				ID:       id,
				HeaderID: h.ID,
				SerialNo: i + 1,
				RowInput: in,
				IsBilled: false,
				BillNo:   nil,
			})
			delta[in.MaterialSKU] -= in.MaterialUsage()
		}

		if applyStockDelta(items, delta) {
			if err := kv.Set(ctx, st, KeyItems, items); err != nil {
				return err
			}
		}
		for sku, d := range delta {
			if d != 0 && !hasItem(items, sku) {
				s.logger.Printf("[Daily] %s: material %q not in stock list, usage %d not recorded", h.Date, sku, -d)
			}
		}

		if err := kv.Set(ctx, st, KeyDailyHeaders, headers); err != nil {
			return err
		}
		if err := kv.Set(ctx, st, KeyDailyRows, append(kept, newRows...)); err != nil {
			return err
		}
		if err := st.Delete(ctx, draftKey(h.Date)); err != nil {
			return err
		}

		saved = DailyEntry{Header: &h, Rows: newRows}
		return nil
	})
	if err != nil {
		return DailyEntry{}, err
	}

	s.logger.Printf("[Daily] Saved %s: header %d v%d, %d rows", saved.Header.Date, saved.Header.ID, saved.Header.Version, len(saved.Rows))
	return saved, nil
}

// applyStockDelta adds delta[sku] to each item's stock and reports whether
// any item changed.
func applyStockDelta(items []Item, delta map[string]int) bool {
	changed := false
	for i := range items {
		if d := delta[items[i].SKU]; d != 0 {
			items[i].StockQty += d
			changed = true
		}
	}
	return changed
}

func hasItem(items []Item, sku string) bool {
	for _, i := range items {
		if i.SKU == sku {
			return true
		}
	}
	return false
}

func findHeaderByDate(headers []DailyHeader, date string) int {
	for i, h := range headers {
		if h.Date == date {
			return i
		}
	}
	return -1
}

// GetDailyEntry returns the header for date and the rows it owns.
// Header is nil and Rows empty when the date was never saved.
func (s *Service) GetDailyEntry(ctx context.Context, date string) (DailyEntry, error) {
	var entry DailyEntry
	err := s.view(func(st kv.Store) error {
		var err error
		entry, err = getDailyEntry(ctx, st, date)
		return err
	})
	return entry, err
}

func getDailyEntry(ctx context.Context, st kv.Store, date string) (DailyEntry, error) {
	headers, err := loadHeaders(ctx, st)
	if err != nil {
		return DailyEntry{}, err
	}
	idx := findHeaderByDate(headers, date)
	if idx < 0 {
		return DailyEntry{Header: nil, Rows: []DailyRow{}}, nil
	}
	h := headers[idx]

	all, err := loadRows(ctx, st)
	if err != nil {
		return DailyEntry{}, err
	}
	rows := make([]DailyRow, 0)
	for _, r := range all {
		if r.HeaderID == h.ID {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].SerialNo < rows[j].SerialNo })
	return DailyEntry{Header: &h, Rows: rows}, nil
}

// IsFinalized reports whether date already has a saved header.
func (s *Service) IsFinalized(ctx context.Context, date string) (bool, error) {
	headers, err := loadHeaders(ctx, s.store)
	if err != nil {
		return false, err
	}
	return findHeaderByDate(headers, date) >= 0, nil
}

// GetLatestHeaderBefore returns the header with the greatest date strictly
// before date, or nil.
func (s *Service) GetLatestHeaderBefore(ctx context.Context, date string) (*DailyHeader, error) {
	headers, err := loadHeaders(ctx, s.store)
	if err != nil {
		return nil, err
	}
	var latest *DailyHeader
	for i := range headers {
		h := headers[i]
		if h.Date < date && (latest == nil || h.Date > latest.Date) {
			latest = &h
		}
	}
	return latest, nil
}

// StartingReading is the machine reading a new day starts from: the previous
// day's end reading, or 0.
func (s *Service) StartingReading(ctx context.Context, date string) (int, error) {
	prev, err := s.GetLatestHeaderBefore(ctx, date)
	if err != nil || prev == nil {
		return 0, err
	}
	return prev.MachineEndReading, nil
}

// DailySheet returns the day's jobs with names resolved and column totals.
func (s *Service) DailySheet(ctx context.Context, date string) (DailySheet, error) {
	var sheet DailySheet
	err := s.view(func(st kv.Store) error {
		entry, err := getDailyEntry(ctx, st, date)
		if err != nil {
			return err
		}
		lk, _, _, err := loadLookups(ctx, st)
		if err != nil {
			return err
		}
		sheet = DailySheet{Header: entry.Header, Jobs: make([]JobRow, 0, len(entry.Rows))}
		for _, r := range entry.Rows {
			sheet.Jobs = append(sheet.Jobs, lk.job(r))
			sheet.Totals.Add(r.RowInput)
		}
		return nil
	})
	return sheet, err
}
