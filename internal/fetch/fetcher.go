// Package fetch retrieves the raw tabular sources for one load cycle. A
// source that cannot be fetched degrades to an empty row set and a health
// counter; it is never fatal.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pantera/orderprep/backend-go/internal/source"
	"github.com/pantera/orderprep/backend-go/pkg/logger"
)

// ErrNotFound marks a source file that does not exist at the fetch location.
var ErrNotFound = errors.New("source not found")

// Fetcher retrieves one named source file and parses it into rows.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]source.Row, error)
}

// Names configures the file names of the enumerated sources.
type Names struct {
	Items           string
	PurchaseOrders  string
	SalesFallback   string
	InvoiceToDate   string
	InvoiceFallback string
}

// DefaultNames returns the file names the accounting exports are published
// under.
func DefaultNames() Names {
	return Names{
		Items:           "Items.csv",
		PurchaseOrders:  "Purchase_Order.csv",
		SalesFallback:   "SalesHistory_Updated_Oct2025.csv",
		InvoiceToDate:   "Invoice_ToDate.csv",
		InvoiceFallback: "Invoices.csv",
	}
}

// Sources holds the fetched row sets for one load cycle plus the names of
// sources that could not be retrieved.
type Sources struct {
	Items           []source.Row
	Sales           []source.Row
	POs             []source.Row
	InvoiceToDate   []source.Row
	InvoiceFallback []source.Row
	Missing         []string
}

// salesCandidates lists the sales file names to try, current-month naming
// first. The export job stamps the file with the month it ran in.
func salesCandidates(now time.Time, fallback string) []string {
	candidates := []string{fmt.Sprintf("SalesHistory_Updated_%s.csv", now.Format("Jan2006"))}
	if fallback != "" && fallback != candidates[0] {
		candidates = append(candidates, fallback)
	}
	return candidates
}

// FetchAll issues all source fetches concurrently and waits for the whole
// set before returning. The two invoice sources are optional by design; the
// three main tables are expected but still only degrade when absent.
func FetchAll(ctx context.Context, f Fetcher, names Names, now time.Time) Sources {
	var (
		srcs Sources
		mu   sync.Mutex
	)
	missing := func(name string) {
		mu.Lock()
		srcs.Missing = append(srcs.Missing, name)
		mu.Unlock()
	}

	fetchInto := func(name string, dst *[]source.Row, optional bool) func() error {
		return func() error {
			rows, err := f.Fetch(ctx, name)
			if err != nil {
				if !optional || !errors.Is(err, ErrNotFound) {
					logger.Log.Warn().Err(err).Str("source", name).Msg("source unavailable, continuing with empty rows")
					missing(name)
				}
				return nil
			}
			*dst = rows
			return nil
		}
	}

	// Fetch workers never return errors (missing sources degrade), so a bare
	// group is enough; joint await happens in Wait.
	var g errgroup.Group
	g.Go(fetchInto(names.Items, &srcs.Items, false))
	g.Go(fetchInto(names.PurchaseOrders, &srcs.POs, false))
	g.Go(fetchInto(names.InvoiceToDate, &srcs.InvoiceToDate, true))
	g.Go(fetchInto(names.InvoiceFallback, &srcs.InvoiceFallback, true))
	g.Go(func() error {
		for _, name := range salesCandidates(now, names.SalesFallback) {
			rows, err := f.Fetch(ctx, name)
			if err == nil {
				srcs.Sales = rows
				return nil
			}
			if !errors.Is(err, ErrNotFound) {
				logger.Log.Warn().Err(err).Str("source", name).Msg("sales fetch failed")
			}
		}
		missing("sales")
		return nil
	})
	_ = g.Wait()
	return srcs
}
