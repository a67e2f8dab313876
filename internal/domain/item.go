package domain

import (
	"sort"
	"time"
)

// Item is the per-key aggregate built from the item master, sales history and
// purchase order sources. One Item exists per resolved item key; the whole map
// is rebuilt from scratch on every load cycle.
type Item struct {
	ItemID            string             `json:"item_id"`
	SKU               string             `json:"sku"`
	Name              string             `json:"name"`
	SupplierCode      string             `json:"supplier_code"`
	SupplierName      string             `json:"supplier_name"`
	AvailableStock    float64            `json:"available_stock"`
	UnitCost          float64            `json:"unit_cost"`
	LastPurchasePrice float64            `json:"last_purchase_price"`
	LastVendor        string             `json:"last_vendor"`
	OutstandingQty    float64            `json:"outstanding_qty"`
	OrderQty          float64            `json:"order_qty"`
	SalesByMonth      map[string]float64 `json:"sales_by_month"`

	// lastPODate tracks the newest parsed purchase order date for this item.
	// Bookkeeping only, never serialized.
	lastPODate time.Time
}

// LastPODate returns the newest purchase order date seen for the item and
// whether any parseable date was seen at all.
func (it *Item) LastPODate() (time.Time, bool) {
	return it.lastPODate, !it.lastPODate.IsZero()
}

// ObserveLastPurchase records price/vendor from a purchase order line when its
// date is strictly newer than anything seen before. Ties and zero dates leave
// the previous values untouched.
func (it *Item) ObserveLastPurchase(date time.Time, price float64, vendor string) {
	if date.IsZero() || !date.After(it.lastPODate) {
		return
	}
	it.lastPODate = date
	it.LastPurchasePrice = price
	if vendor != "" {
		it.LastVendor = vendor
		it.SupplierName = vendor
	}
}

// Stats carries the plain health counters for one load cycle. The subsystem
// never raises errors for bad rows; these counts are the only signal.
type Stats struct {
	Items                int       `json:"items"`
	SalesRows            int       `json:"sales_rows"`
	PORows               int       `json:"po_rows"`
	ItemMasterRows       int       `json:"item_master_rows"`
	SupplementMerged     int       `json:"supplement_merged"`
	SupplementDropped    int       `json:"supplement_dropped"`
	SupplementDuplicates int       `json:"supplement_duplicates"`
	MissingSources       []string  `json:"missing_sources,omitempty"`
	LoadedAt             time.Time `json:"loaded_at"`
}

// Snapshot is one completed aggregation pass. It is immutable once published;
// a reload produces a fresh Snapshot rather than mutating this one.
type Snapshot struct {
	Items map[string]*Item `json:"items"`
	// Months is the aggregation horizon, oldest first.
	Months []string `json:"months"`
	// CurrentMonth is the wall-clock month the pass ran in, used to label the
	// still-accumulating "to-date" column.
	CurrentMonth string `json:"current_month"`
	Stats        Stats  `json:"stats"`
}

// Keys returns the item keys in deterministic (sorted by SKU, then key) order
// for stable rendering and export.
func (s *Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.Items))
	for k := range s.Items {
		keys = append(keys, k)
	}
	// SKU order first so exports group naturally; fall back to the raw key.
	sort.Slice(keys, func(i, j int) bool {
		ia, ib := s.Items[keys[i]], s.Items[keys[j]]
		if ia.SKU != ib.SKU {
			return ia.SKU < ib.SKU
		}
		return keys[i] < keys[j]
	})
	return keys
}
