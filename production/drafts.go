package production

import (
	"context"
	"strings"
	"time"

	"github.com/warp/print-tracker/kv"
)

// =============================================================================
// DRAFTS - autosave of an unfinalized day
// =============================================================================
//
// A draft lives under daily_entry_draft_<date> until the day is saved.
// Saving the day deletes it; a finalized day never exposes a draft.

func draftKey(date string) string {
	return DraftKeyPrefix + date
}

// SaveDraft stores the in-progress rows and start reading for date.
func (s *Service) SaveDraft(ctx context.Context, date string, d Draft) (Draft, error) {
	if d.Rows == nil {
		d.Rows = []RowInput{}
	}
	d.UpdatedAt = s.now().UTC()
	err := s.update(ctx, func(st kv.Store) error {
		headers, err := loadHeaders(ctx, st)
		if err != nil {
			return err
		}
		if findHeaderByDate(headers, date) >= 0 {
			return ErrDayLocked
		}
		return kv.Set(ctx, st, draftKey(date), d)
	})
	if err != nil {
		return Draft{}, err
	}
	return d, nil
}

// GetDraft returns the draft for date, or nil when none is usable.
func (s *Service) GetDraft(ctx context.Context, date string) (*Draft, error) {
	var draft *Draft
	err := s.view(func(st kv.Store) error {
		headers, err := loadHeaders(ctx, st)
		if err != nil {
			return err
		}
		if findHeaderByDate(headers, date) >= 0 {
			return nil
		}
		d, err := kv.Get[*Draft](ctx, st, draftKey(date), nil)
		if err != nil {
			return err
		}
		if d != nil && d.Rows != nil {
			draft = d
		}
		return nil
	})
	return draft, err
}

// DeleteDraft removes the draft for date.
func (s *Service) DeleteDraft(ctx context.Context, date string) error {
	return s.update(ctx, func(st kv.Store) error {
		return st.Delete(ctx, draftKey(date))
	})
}

// ListDrafts summarizes every stored draft, oldest date first.
func (s *Service) ListDrafts(ctx context.Context) ([]DraftSummary, error) {
	var out []DraftSummary
	err := s.view(func(st kv.Store) error {
		keys, err := st.Keys(ctx, DraftKeyPrefix)
		if err != nil {
			return err
		}
		out = make([]DraftSummary, 0, len(keys))
		for _, k := range keys {
			d, err := kv.Get[*Draft](ctx, st, k, nil)
			if err != nil {
				return err
			}
			summary := DraftSummary{Date: strings.TrimPrefix(k, DraftKeyPrefix)}
			if d != nil {
				summary.RowCount = len(d.Rows)
				summary.UpdatedAt = d.UpdatedAt
			}
			out = append(out, summary)
		}
		return nil
	})
	return out, err
}

// SweepDrafts deletes drafts whose day has been saved, drafts that no longer
// parse, and, when ttl > 0, drafts not touched within ttl. It returns the
// number of drafts removed.
func (s *Service) SweepDrafts(ctx context.Context, ttl time.Duration) (int, error) {
	removed := 0
	cutoff := s.now().UTC().Add(-ttl)
	err := s.update(ctx, func(st kv.Store) error {
		headers, err := loadHeaders(ctx, st)
		if err != nil {
			return err
		}
		saved := make(map[string]bool, len(headers))
		for _, h := range headers {
			saved[h.Date] = true
		}

		keys, err := st.Keys(ctx, DraftKeyPrefix)
		if err != nil {
			return err
		}
		for _, k := range keys {
			d, err := kv.Get[*Draft](ctx, st, k, nil)
			if err != nil {
				return err
			}
			date := strings.TrimPrefix(k, DraftKeyPrefix)
			stale := d == nil || d.Rows == nil || saved[date]
			if !stale && ttl > 0 && !d.UpdatedAt.IsZero() && d.UpdatedAt.Before(cutoff) {
				stale = true
			}
			if !stale {
				continue
			}
			if err := st.Delete(ctx, k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}
