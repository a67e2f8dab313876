package aggregate

import (
	"strings"

	"github.com/pantera/orderprep/backend-go/internal/source"
)

// MergeResult reports what the supplement merge did, for the health counters.
type MergeResult struct {
	Injected   int
	Dropped    int
	Duplicates int
}

// MergeSupplement turns mid-month invoice rows into synthetic sales rows and
// appends them to the sales row set. The main sales export lags by up to a
// month; the invoice feed fills the current-month gap.
//
// When both the explicit to-date source and the generic fallback are present
// their rows are unioned with deduplication; with only one source it is used
// as-is. Each surviving row is bucketed by the first available of invoice
// date, created time or modified time; rows whose derived month is not the
// current month, or whose quantity is not positive, are dropped. Missing
// sku/name are backfilled from the item master before injection.
//
// The merger never mutates aggregates directly; it only extends the sales
// stream the aggregator will fold.
func MergeSupplement(sales []source.Row, toDate, fallback, itemMaster []source.Row, window MonthWindow) ([]source.Row, MergeResult) {
	var res MergeResult

	rows := toDate
	if len(toDate) > 0 && len(fallback) > 0 {
		rows, res.Duplicates = unionInvoices(toDate, fallback)
	} else if len(rows) == 0 {
		rows = fallback
	}
	if len(rows) == 0 {
		return sales, res
	}

	byID := itemIndex(itemMaster)
	current := window.Current()

	for _, r := range rows {
		month := invoiceMonth(r, current)
		qty := source.Number(r, source.FieldQuantity)
		if month != current || qty <= 0 {
			res.Dropped++
			continue
		}

		synth := source.Row{
			"Item_ID":        source.Resolve(r, source.FieldItemID),
			"Item_SKU":       source.Resolve(r, source.FieldSKU),
			"Item_Name":      source.Resolve(r, source.FieldItemName),
			"Month_Year":     month,
			"Total_Quantity": source.Resolve(r, source.FieldQuantity),
		}
		if master, ok := byID[synth["Item_ID"]]; ok {
			if synth["Item_SKU"] == "" {
				synth["Item_SKU"] = source.Resolve(master, source.FieldSKU)
			}
			if synth["Item_Name"] == "" {
				synth["Item_Name"] = source.Resolve(master, source.FieldItemName)
			}
		}
		sales = append(sales, synth)
		res.Injected++
	}
	return sales, res
}

// invoiceMonth derives the row's month bucket: invoice date, then creation
// time, then modification time, truncated to year-month. When none resolve
// the row is assumed to belong to the current month.
func invoiceMonth(r source.Row, current string) string {
	for _, f := range []source.Field{source.FieldInvoiceDate, source.FieldCreatedTime, source.FieldModifiedTime} {
		if d, ok := source.Date(r, f); ok {
			return MonthKey(d)
		}
	}
	return current
}

// unionInvoices merges the two invoice sources, dropping rows already seen.
// Two rows are duplicates only when invoice id, product id, sku and quantity
// all match after trimming.
func unionInvoices(toDate, fallback []source.Row) ([]source.Row, int) {
	seen := make(map[string]struct{}, len(toDate)+len(fallback))
	out := make([]source.Row, 0, len(toDate)+len(fallback))
	dups := 0
	for _, r := range append(append([]source.Row{}, toDate...), fallback...) {
		k := invoiceDedupKey(r)
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out, dups
}

func invoiceDedupKey(r source.Row) string {
	parts := []string{
		source.Resolve(r, source.FieldInvoiceID),
		source.Resolve(r, source.FieldItemID),
		source.Resolve(r, source.FieldSKU),
		source.Resolve(r, source.FieldQuantity),
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, "|")
}

// itemIndex keys the item master by item id for sku/name backfill.
func itemIndex(items []source.Row) map[string]source.Row {
	idx := make(map[string]source.Row, len(items))
	for _, r := range items {
		if id := source.Resolve(r, source.FieldItemID); id != "" {
			if _, ok := idx[id]; !ok {
				idx[id] = r
			}
		}
	}
	return idx
}
