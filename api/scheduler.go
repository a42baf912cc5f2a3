/*
scheduler.go - Background draft sweeper

PURPOSE:
  Periodically removes drafts that can no longer be used: drafts for days
  that have since been saved, drafts that fail to parse, and drafts not
  touched within the TTL.

CONFIGURATION:
  - Interval: How often to sweep (default: 1 hour)
  - TTL:      Age after which an untouched draft is dropped (0 keeps them)
  - Enabled:  Whether the sweeper runs (default: true)

USAGE:
  sweeper := NewDraftSweeper(svc)
  sweeper.Start()
  // ... later
  sweeper.Stop()
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/print-tracker/production"
)

// DraftSweeper clears stale drafts on a timer.
type DraftSweeper struct {
	Service  *production.Service
	Interval time.Duration
	TTL      time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewDraftSweeper creates a sweeper with a one-hour interval and a 30-day TTL.
func NewDraftSweeper(svc *production.Service) *DraftSweeper {
	return &DraftSweeper{
		Service:  svc,
		Interval: time.Hour,
		TTL:      30 * 24 * time.Hour,
		Enabled:  true,
		stop:     make(chan struct{}),
	}
}

// Start begins sweeping in the background.
func (ds *DraftSweeper) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Enabled {
		log.Println("[Sweeper] Disabled, not starting")
		return
	}
	if ds.ticker != nil {
		return
	}

	ds.ticker = time.NewTicker(ds.Interval)
	ds.stop = make(chan struct{})
	ds.wg.Add(1)

	go ds.run()

	log.Printf("[Sweeper] Started with interval %v, draft TTL %v", ds.Interval, ds.TTL)
}

// Stop stops the sweeper and waits for a running sweep to finish.
func (ds *DraftSweeper) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.ticker != nil {
		ds.ticker.Stop()
		close(ds.stop)
		ds.wg.Wait()
		ds.ticker = nil
		log.Println("[Sweeper] Stopped")
	}
}

func (ds *DraftSweeper) run() {
	defer ds.wg.Done()

	// Run immediately on start
	ds.RunNow()

	for {
		select {
		case <-ds.ticker.C:
			ds.RunNow()
		case <-ds.stop:
			return
		}
	}
}

// RunNow performs one sweep and returns the number of drafts removed.
func (ds *DraftSweeper) RunNow() int {
	removed, err := ds.Service.SweepDrafts(context.Background(), ds.TTL)
	if err != nil {
		log.Printf("[Sweeper] Error sweeping drafts: %v", err)
		return 0
	}
	if removed > 0 {
		log.Printf("[Sweeper] Removed %d stale drafts", removed)
	}
	return removed
}
