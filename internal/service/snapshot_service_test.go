package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantera/orderprep/backend-go/internal/fetch"
	"github.com/pantera/orderprep/backend-go/internal/prefs"
	"github.com/pantera/orderprep/backend-go/internal/source"
)

var testNow = time.Date(2025, 11, 15, 12, 0, 0, 0, time.UTC)

// stubFetcher serves canned row sets by file name. Names not present behave
// like missing files.
type stubFetcher map[string][]source.Row

func (s stubFetcher) Fetch(ctx context.Context, name string) ([]source.Row, error) {
	rows, ok := s[name]
	if !ok {
		return nil, fetch.ErrNotFound
	}
	return rows, nil
}

func newTestService(f stubFetcher, store prefs.Store) *SnapshotService {
	s := NewSnapshotService(f, fetch.DefaultNames(), store, true)
	s.now = func() time.Time { return testNow }
	return s
}

func fullFetcher() stubFetcher {
	return stubFetcher{
		"Items.csv": {
			{"Product ID": "1", "SKU": "A1", "Item Name": "Widget", "Available Stock": "12"},
			{"Product ID": "2", "SKU": "B2", "Item Name": "Gadget", "Available Stock": "3"},
		},
		"SalesHistory_Updated_Nov2025.csv": {
			{"Item_ID": "1", "Item_SKU": "A1", "Month_Year": "2025-10", "Total_Quantity": "5"},
		},
		"Purchase_Order.csv": {
			{"Item ID": "1", "SKU": "A1", "Status": "Open", "Quantity Ordered": "6", "Quantity Received": "1"},
		},
	}
}

func TestLoadPublishesSnapshot(t *testing.T) {
	svc := newTestService(fullFetcher(), prefs.NewMemoryStore())

	snap := svc.Load(context.Background())
	require.NotNil(t, snap)
	assert.Same(t, snap, svc.Snapshot())

	assert.Equal(t, 2, snap.Stats.Items)
	assert.Equal(t, "2025-11", snap.CurrentMonth)
	assert.Empty(t, snap.Stats.MissingSources)

	it, ok := snap.Items["A1__1"]
	require.True(t, ok)
	assert.Equal(t, 5.0, it.SalesByMonth["2025-10"])
	assert.Equal(t, 5.0, it.OutstandingQty)
}

func TestLoadUsesSalesFallbackName(t *testing.T) {
	f := fullFetcher()
	f["SalesHistory_Updated_Oct2025.csv"] = f["SalesHistory_Updated_Nov2025.csv"]
	delete(f, "SalesHistory_Updated_Nov2025.csv")

	svc := newTestService(f, prefs.NewMemoryStore())
	snap := svc.Load(context.Background())

	assert.Empty(t, snap.Stats.MissingSources)
	assert.Equal(t, 5.0, snap.Items["A1__1"].SalesByMonth["2025-10"])
}

func TestLoadRecordsMissingSources(t *testing.T) {
	svc := newTestService(stubFetcher{}, prefs.NewMemoryStore())
	snap := svc.Load(context.Background())

	assert.ElementsMatch(t,
		[]string{"Items.csv", "Purchase_Order.csv", "sales"},
		snap.Stats.MissingSources)
	assert.Zero(t, snap.Stats.Items)
}

func TestLoadReappliesPersistedOrderQuantities(t *testing.T) {
	store := prefs.NewMemoryStore()
	store.SeedOrderQty("A1__1", "25")
	store.SeedOrderQty("GONE__9", "4") // item no longer in any source

	svc := newTestService(fullFetcher(), store)
	snap := svc.Load(context.Background())

	assert.Equal(t, 25.0, snap.Items["A1__1"].OrderQty)
	_, ok := snap.Items["GONE__9"]
	assert.False(t, ok)
}

func TestLoadCoercesNonNumericOrderQty(t *testing.T) {
	store := prefs.NewMemoryStore()
	store.SeedOrderQty("A1__1", "lots")

	svc := newTestService(fullFetcher(), store)
	snap := svc.Load(context.Background())

	assert.Equal(t, 0.0, snap.Items["A1__1"].OrderQty)
}

func TestSetOrderQtyPersistsAcrossReload(t *testing.T) {
	store := prefs.NewMemoryStore()
	svc := newTestService(fullFetcher(), store)
	ctx := context.Background()
	svc.Load(ctx)

	require.NoError(t, svc.SetOrderQty(ctx, "A1__1", 9))
	assert.Equal(t, 9.0, svc.Snapshot().Items["A1__1"].OrderQty)

	snap := svc.Load(ctx)
	assert.Equal(t, 9.0, snap.Items["A1__1"].OrderQty)
}

func TestSetOrderQtyPublishesFreshSnapshot(t *testing.T) {
	svc := newTestService(fullFetcher(), prefs.NewMemoryStore())
	ctx := context.Background()
	before := svc.Load(ctx)

	require.NoError(t, svc.SetOrderQty(ctx, "A1__1", 9))

	// the previously published snapshot is untouched; readers holding it
	// never observe the edit
	assert.Equal(t, 0.0, before.Items["A1__1"].OrderQty)

	after := svc.Snapshot()
	assert.NotSame(t, before, after)
	assert.Equal(t, 9.0, after.Items["A1__1"].OrderQty)

	// untouched items are shared, not copied
	assert.Same(t, before.Items["B2__2"], after.Items["B2__2"])
}

func TestSetOrderQtyRemovesOnNonPositive(t *testing.T) {
	store := prefs.NewMemoryStore()
	svc := newTestService(fullFetcher(), store)
	ctx := context.Background()
	svc.Load(ctx)

	require.NoError(t, svc.SetOrderQty(ctx, "A1__1", 9))
	require.NoError(t, svc.SetOrderQty(ctx, "A1__1", 0))
	assert.Equal(t, 0.0, svc.Snapshot().Items["A1__1"].OrderQty)

	qtys, err := store.OrderQuantities(ctx)
	require.NoError(t, err)
	assert.NotContains(t, qtys, "A1__1")
}

func TestSetOrderQtyUnknownKey(t *testing.T) {
	svc := newTestService(fullFetcher(), prefs.NewMemoryStore())
	svc.Load(context.Background())

	err := svc.SetOrderQty(context.Background(), "nope", 3)
	assert.Error(t, err)
}

func TestSnapshotBeforeFirstLoadIsEmpty(t *testing.T) {
	svc := newTestService(stubFetcher{}, prefs.NewMemoryStore())
	snap := svc.Snapshot()
	require.NotNil(t, snap)
	assert.Empty(t, snap.Items)
}
