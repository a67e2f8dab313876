package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantera/orderprep/backend-go/internal/source"
)

var testNow = time.Date(2025, 11, 15, 12, 0, 0, 0, time.UTC)

type mapFetcher struct {
	files map[string][]source.Row
	errs  map[string]error
}

func (m mapFetcher) Fetch(ctx context.Context, name string) ([]source.Row, error) {
	if err, ok := m.errs[name]; ok {
		return nil, err
	}
	rows, ok := m.files[name]
	if !ok {
		return nil, ErrNotFound
	}
	return rows, nil
}

func TestSalesCandidatesCurrentMonthFirst(t *testing.T) {
	got := salesCandidates(testNow, "SalesHistory_Updated_Oct2025.csv")
	assert.Equal(t, []string{
		"SalesHistory_Updated_Nov2025.csv",
		"SalesHistory_Updated_Oct2025.csv",
	}, got)
}

func TestSalesCandidatesSkipsRedundantFallback(t *testing.T) {
	got := salesCandidates(testNow, "SalesHistory_Updated_Nov2025.csv")
	assert.Equal(t, []string{"SalesHistory_Updated_Nov2025.csv"}, got)
}

func TestFetchAllCollectsEverySource(t *testing.T) {
	f := mapFetcher{files: map[string][]source.Row{
		"Items.csv":                        {{"SKU": "A1"}},
		"Purchase_Order.csv":               {{"SKU": "A1", "Status": "Open"}},
		"SalesHistory_Updated_Nov2025.csv": {{"Item_SKU": "A1"}},
		"Invoice_ToDate.csv":               {{"Invoice ID": "INV-1"}},
		"Invoices.csv":                     {{"Invoice ID": "INV-2"}},
	}}

	srcs := FetchAll(context.Background(), f, DefaultNames(), testNow)

	assert.Empty(t, srcs.Missing)
	assert.Len(t, srcs.Items, 1)
	assert.Len(t, srcs.POs, 1)
	assert.Len(t, srcs.Sales, 1)
	assert.Len(t, srcs.InvoiceToDate, 1)
	assert.Len(t, srcs.InvoiceFallback, 1)
}

func TestFetchAllFallsBackToOlderSalesFile(t *testing.T) {
	f := mapFetcher{files: map[string][]source.Row{
		"Items.csv":                        {{"SKU": "A1"}},
		"Purchase_Order.csv":               {},
		"SalesHistory_Updated_Oct2025.csv": {{"Item_SKU": "A1"}},
	}}

	srcs := FetchAll(context.Background(), f, DefaultNames(), testNow)

	assert.Empty(t, srcs.Missing)
	require.Len(t, srcs.Sales, 1)
}

func TestFetchAllDegradesOnMissingSources(t *testing.T) {
	srcs := FetchAll(context.Background(), mapFetcher{}, DefaultNames(), testNow)

	assert.ElementsMatch(t, []string{"Items.csv", "Purchase_Order.csv", "sales"}, srcs.Missing)
	assert.Empty(t, srcs.Items)
	assert.Empty(t, srcs.POs)
	assert.Empty(t, srcs.Sales)
}

func TestFetchAllMissingInvoicesAreNotErrors(t *testing.T) {
	f := mapFetcher{files: map[string][]source.Row{
		"Items.csv":                        {},
		"Purchase_Order.csv":               {},
		"SalesHistory_Updated_Nov2025.csv": {},
	}}

	srcs := FetchAll(context.Background(), f, DefaultNames(), testNow)
	assert.Empty(t, srcs.Missing)
}

func TestFetchAllRecordsFailedOptionalSource(t *testing.T) {
	f := mapFetcher{
		files: map[string][]source.Row{
			"Items.csv":                        {},
			"Purchase_Order.csv":               {},
			"SalesHistory_Updated_Nov2025.csv": {},
		},
		errs: map[string]error{"Invoice_ToDate.csv": errors.New("bucket unreachable")},
	}

	srcs := FetchAll(context.Background(), f, DefaultNames(), testNow)
	assert.Equal(t, []string{"Invoice_ToDate.csv"}, srcs.Missing)
}
