package aggregate

import (
	"strings"
	"time"

	"github.com/pantera/orderprep/backend-go/internal/domain"
	"github.com/pantera/orderprep/backend-go/internal/source"
)

// Input carries the row sets of one load cycle, already fetched and parsed.
// Supplement rows, if any, are expected to have been injected into Sales by
// the merger before Run is called.
type Input struct {
	Items []source.Row
	Sales []source.Row
	POs   []source.Row
}

// Run folds the three sources into a fresh per-item snapshot for the given
// window. No row ever raises an error: malformed or out-of-window data is
// dropped, not flagged. The returned snapshot is complete and immutable; the
// caller publishes it wholesale.
func Run(in Input, window MonthWindow) *domain.Snapshot {
	snap := &domain.Snapshot{
		Items:        make(map[string]*domain.Item),
		Months:       window.Keys(),
		CurrentMonth: window.Current(),
	}
	snap.Stats.ItemMasterRows = len(in.Items)
	snap.Stats.SalesRows = len(in.Sales)
	snap.Stats.PORows = len(in.POs)

	// Item master seeds identity plus stock/cost. Stock and cost are
	// last-non-empty-wins across rows sharing a key, never summed.
	for _, r := range in.Items {
		it := upsert(snap, window, r)
		if v := source.Resolve(r, source.FieldAvailable); v != "" {
			it.AvailableStock = source.ParseNumber(v)
		}
		if v := source.Resolve(r, source.FieldCost); v != "" {
			it.UnitCost = source.ParseNumber(v)
		}
	}

	// Sales accumulate per month bucket, window months only.
	for _, r := range in.Sales {
		it := upsert(snap, window, r)
		if m := source.Resolve(r, source.FieldMonth); window.Contains(m) {
			it.SalesByMonth[m] += source.Number(r, source.FieldQuantity)
		}
	}

	// Purchase orders contribute outstanding quantity and last-purchase info.
	for _, r := range in.POs {
		it := upsert(snap, window, r)
		applyPOLine(it, r)
	}

	snap.Stats.Items = len(snap.Items)
	snap.Stats.LoadedAt = time.Now().UTC()
	return snap
}

// upsert returns the aggregate for the row's key, creating it on first sight.
// Identity, name and supplier fields are first-non-empty-wins: once set they
// are never overwritten by later rows.
func upsert(snap *domain.Snapshot, window MonthWindow, r source.Row) *domain.Item {
	key := ItemKey(r)
	it, ok := snap.Items[key]
	if !ok {
		it = &domain.Item{SalesByMonth: make(map[string]float64, horizonMonths)}
		for _, m := range window.Keys() {
			it.SalesByMonth[m] = 0
		}
		snap.Items[key] = it
	}
	if it.ItemID == "" {
		it.ItemID = source.Resolve(r, source.FieldItemID)
	}
	if it.SKU == "" {
		it.SKU = source.Resolve(r, source.FieldSKU)
	}
	if it.Name == "" {
		it.Name = source.Resolve(r, source.FieldItemName)
	}
	if it.SupplierCode == "" {
		it.SupplierCode = source.Resolve(r, source.FieldSupplierCode)
	}
	if it.SupplierName == "" {
		it.SupplierName = source.Resolve(r, source.FieldSupplierName)
	}
	return it
}

// applyPOLine computes the line's outstanding quantity and feeds the
// last-purchase bookkeeping. Lines whose status contains "billed" or
// "closed" are excluded from the outstanding sum no matter what the
// quantity delta says; they still count for last-purchase info.
func applyPOLine(it *domain.Item, r source.Row) {
	status := strings.ToLower(source.Resolve(r, source.FieldPOStatus))
	excluded := strings.Contains(status, "billed") || strings.Contains(status, "closed")

	outstanding := source.Number(r, source.FieldPOOrdered) - source.Number(r, source.FieldPOReceived)
	if !excluded && outstanding > 0 {
		it.OutstandingQty += outstanding
	}

	if d, ok := source.Date(r, source.FieldPODate); ok {
		it.ObserveLastPurchase(d, source.Number(r, source.FieldPOPrice), source.Resolve(r, source.FieldVendor))
	}
}
