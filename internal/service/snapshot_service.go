package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pantera/orderprep/backend-go/internal/aggregate"
	"github.com/pantera/orderprep/backend-go/internal/domain"
	"github.com/pantera/orderprep/backend-go/internal/fetch"
	"github.com/pantera/orderprep/backend-go/internal/prefs"
	"github.com/pantera/orderprep/backend-go/internal/source"
	"github.com/pantera/orderprep/backend-go/pkg/logger"
)

// SnapshotService runs load cycles and publishes the resulting aggregate.
// Each cycle rebuilds the whole snapshot from scratch and swaps it in as one
// immutable value; consumers never observe a half-built pass. Triggering a
// new load does not cancel an in-flight one.
type SnapshotService struct {
	fetcher        fetch.Fetcher
	names          fetch.Names
	store          prefs.Store
	includeCurrent bool
	now            func() time.Time

	// editMu serializes order-qty edits; readers go through the atomic
	// pointer only.
	editMu  sync.Mutex
	current atomic.Pointer[domain.Snapshot]
}

func NewSnapshotService(fetcher fetch.Fetcher, names fetch.Names, store prefs.Store, includeCurrent bool) *SnapshotService {
	s := &SnapshotService{
		fetcher:        fetcher,
		names:          names,
		store:          store,
		includeCurrent: includeCurrent,
		now:            time.Now,
	}
	s.current.Store(&domain.Snapshot{Items: map[string]*domain.Item{}})
	return s
}

// Load runs one full cycle: read persisted order quantities, fetch all
// sources jointly, merge the invoice supplement into the sales stream,
// aggregate, reapply order quantities for keys that survived, publish.
func (s *SnapshotService) Load(ctx context.Context) *domain.Snapshot {
	started := s.now()

	// Read persisted order quantities up front; they are reapplied only
	// after aggregation completes so user edits survive the rebuild.
	qtys, err := s.store.OrderQuantities(ctx)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("order quantities unavailable, continuing without")
		qtys = nil
	}

	srcs := fetch.FetchAll(ctx, s.fetcher, s.names, started)

	window := aggregate.NewMonthWindow(started, s.includeCurrent)
	sales, merge := aggregate.MergeSupplement(srcs.Sales, srcs.InvoiceToDate, srcs.InvoiceFallback, srcs.Items, window)

	snap := aggregate.Run(aggregate.Input{
		Items: srcs.Items,
		Sales: sales,
		POs:   srcs.POs,
	}, window)
	snap.Stats.SupplementMerged = merge.Injected
	snap.Stats.SupplementDropped = merge.Dropped
	snap.Stats.SupplementDuplicates = merge.Duplicates
	snap.Stats.MissingSources = srcs.Missing

	// Stale keys (no longer present after reaggregation) are ignored;
	// non-numeric persisted values coerce to zero. The reapply and publish
	// happen under the edit lock so a concurrent SetOrderQty never lands
	// between them.
	s.editMu.Lock()
	for key, raw := range qtys {
		if it, ok := snap.Items[key]; ok {
			it.OrderQty = source.ParseNumber(raw)
		}
	}
	s.current.Store(snap)
	s.editMu.Unlock()
	logger.Log.Info().
		Int("items", snap.Stats.Items).
		Int("sales_rows", snap.Stats.SalesRows).
		Int("po_rows", snap.Stats.PORows).
		Int("supplement_merged", merge.Injected).
		Strs("missing_sources", srcs.Missing).
		Dur("elapsed", s.now().Sub(started)).
		Msg("snapshot loaded")
	return snap
}

// Snapshot returns the most recently published snapshot. Before the first
// load completes it is empty, not nil.
func (s *SnapshotService) Snapshot() *domain.Snapshot {
	return s.current.Load()
}

// SetOrderQty persists the entered order quantity for an item and publishes
// a fresh snapshot carrying it. Published snapshots are never mutated in
// place; concurrent readers keep whichever one they loaded. Quantities at or
// below zero remove the persisted entry.
func (s *SnapshotService) SetOrderQty(ctx context.Context, key string, qty float64) error {
	s.editMu.Lock()
	defer s.editMu.Unlock()

	snap := s.current.Load()
	it, ok := snap.Items[key]
	if !ok {
		return fmt.Errorf("unknown item key %q", key)
	}
	if err := s.store.SetOrderQty(ctx, key, qty); err != nil {
		return err
	}
	if qty < 0 {
		qty = 0
	}

	updated := *it
	updated.OrderQty = qty
	items := make(map[string]*domain.Item, len(snap.Items))
	for k, v := range snap.Items {
		items[k] = v
	}
	items[key] = &updated

	next := *snap
	next.Items = items
	s.current.Store(&next)
	return nil
}
