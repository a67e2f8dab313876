// Package export renders a completed snapshot as the flat CSV the
// procurement side works from.
package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/pantera/orderprep/backend-go/internal/domain"
)

// staticHeader lists the fixed columns preceding the per-month columns.
var staticHeader = []string{
	"Item ID",
	"SKU",
	"Item Name",
	"Supplier Code",
	"Supplier Name",
	"Available Stock",
	"Inventory Cost",
	"Last Purchase Price",
	"Last Vendor",
	"Outstanding PO Qty",
	"Order Qty",
}

// Options control which rows are exported.
type Options struct {
	// SKUs restricts the export to these SKUs when non-empty.
	SKUs []string
}

// WriteCSV writes the snapshot as a flat table: identifiers and supplier
// info, stock/cost/price/outstanding/order-qty, then one column per horizon
// month, most recent first. The current month, when part of the window, is
// labeled "(to-date)" since its sales are still accumulating.
func WriteCSV(w io.Writer, snap *domain.Snapshot, opts Options) error {
	months := make([]string, len(snap.Months))
	copy(months, snap.Months)
	// window is oldest-first; export newest-first
	for i, j := 0, len(months)-1; i < j; i, j = i+1, j-1 {
		months[i], months[j] = months[j], months[i]
	}

	header := append([]string{}, staticHeader...)
	for _, m := range months {
		label := m
		if m == snap.CurrentMonth {
			label = m + " (to-date)"
		}
		header = append(header, label)
	}
	if err := writeRecord(w, header); err != nil {
		return err
	}

	var filter map[string]struct{}
	if len(opts.SKUs) > 0 {
		filter = make(map[string]struct{}, len(opts.SKUs))
		for _, s := range opts.SKUs {
			if s = strings.TrimSpace(s); s != "" {
				filter[s] = struct{}{}
			}
		}
	}

	for _, key := range snap.Keys() {
		it := snap.Items[key]
		if filter != nil {
			if _, ok := filter[strings.TrimSpace(it.SKU)]; !ok {
				continue
			}
		}
		record := []string{
			it.ItemID,
			it.SKU,
			it.Name,
			it.SupplierCode,
			it.SupplierName,
			formatNumber(it.AvailableStock),
			formatNumber(it.UnitCost),
			formatNumber(it.LastPurchasePrice),
			it.LastVendor,
			formatNumber(it.OutstandingQty),
			formatNumber(it.OrderQty),
		}
		for _, m := range months {
			record = append(record, formatNumber(it.SalesByMonth[m]))
		}
		if err := writeRecord(w, record); err != nil {
			return err
		}
	}
	return nil
}

func writeRecord(w io.Writer, fields []string) error {
	for i, f := range fields {
		fields[i] = escape(f)
	}
	_, err := io.WriteString(w, strings.Join(fields, ",")+"\n")
	return err
}

// escape quote-wraps values containing comma, quote or newline, doubling
// internal quotes.
func escape(v string) string {
	if strings.ContainsAny(v, "\",\n") {
		return "\"" + strings.ReplaceAll(v, "\"", "\"\"") + "\""
	}
	return v
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
