/*
service.go - Repository layer over a kv.Store

PURPOSE:
  Service owns every read-modify-write cycle on the tracker's collections.
  Each operation reads the full collection, mutates it in memory and writes
  it back; there are no partial updates.

CONCURRENCY:
  Write operations are serialized by a mutex and, when the store supports
  it, run inside kv.TxStore.WithTx so multi-key saves (items, headers,
  rows, drafts) commit together. Queries joining several collections hold
  the read side of the same mutex.

FILES:
  clients.go   - Client repository
  items.go     - Item repository and stock adjustments
  daily.go     - Daily-entry reconciliation engine
  drafts.go    - Autosaved drafts
  reports.go   - Report, job and billing queries
  dashboard.go - Cost dashboard
  seed.go      - Initial data
*/
package production

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/print-tracker/kv"
)

// Service exposes the tracker's repositories and queries.
type Service struct {
	store  kv.Store
	logger *log.Logger
	now    func() time.Time
	mu     sync.RWMutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger routes the service's logs to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source used for draft timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a service over store.
func NewService(store kv.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() kv.Store {
	return s.store
}

// update runs fn as one serialized, atomic unit of writes.
func (s *Service) update(ctx context.Context, fn func(kv.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return kv.Update(ctx, s.store, fn)
}

// view runs fn with writes excluded, for queries that join collections.
func (s *Service) view(fn func(kv.Store) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.store)
}

// =============================================================================
// COLLECTION ACCESS
// =============================================================================

func loadClients(ctx context.Context, st kv.Store) ([]Client, error) {
	return kv.Get(ctx, st, KeyClients, []Client{})
}

func loadItems(ctx context.Context, st kv.Store) ([]Item, error) {
	return kv.Get(ctx, st, KeyItems, []Item{})
}

func loadHeaders(ctx context.Context, st kv.Store) ([]DailyHeader, error) {
	return kv.Get(ctx, st, KeyDailyHeaders, []DailyHeader{})
}

func loadRows(ctx context.Context, st kv.Store) ([]DailyRow, error) {
	return kv.Get(ctx, st, KeyDailyRows, []DailyRow{})
}

// lookups resolves display names for joins.
type lookups struct {
	clients map[int]string
	items   map[string]Item
	headers map[int]DailyHeader
}

func loadLookups(ctx context.Context, st kv.Store) (lookups, []DailyHeader, []DailyRow, error) {
	var lk lookups
	clients, err := loadClients(ctx, st)
	if err != nil {
		return lk, nil, nil, err
	}
	items, err := loadItems(ctx, st)
	if err != nil {
		return lk, nil, nil, err
	}
	headers, err := loadHeaders(ctx, st)
	if err != nil {
		return lk, nil, nil, err
	}
	rows, err := loadRows(ctx, st)
	if err != nil {
		return lk, nil, nil, err
	}

	lk.clients = make(map[int]string, len(clients))
	for _, c := range clients {
		lk.clients[c.ID] = c.Name
	}
	lk.items = make(map[string]Item, len(items))
	for _, i := range items {
		lk.items[i.SKU] = i
	}
	lk.headers = make(map[int]DailyHeader, len(headers))
	for _, h := range headers {
		lk.headers[h.ID] = h
	}
	return lk, headers, rows, nil
}

const (
	unknownClient   = "Unknown Client"
	unknownMaterial = "Unknown Material"
	unknownDate     = "Unknown Date"
)

func (lk lookups) clientName(id int) string {
	if name, ok := lk.clients[id]; ok {
		return name
	}
	return unknownClient
}

func (lk lookups) job(r DailyRow) JobRow {
	j := JobRow{
		DailyRow:     r,
		Date:         unknownDate,
		ClientName:   lk.clientName(r.ClientID),
		MaterialName: unknownMaterial,
	}
	if item, ok := lk.items[r.MaterialSKU]; ok {
		j.MaterialName = item.Name
	}
	if h, ok := lk.headers[r.HeaderID]; ok {
		j.Date = h.Date
		j.JobNumber = JobNumber(h.Date, r.SerialNo)
	}
	return j
}
