package source

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Field names one logical column. Each field maps to an ordered list of known
// header variants; resolution walks the list and takes the first non-empty
// value. New header variants are data additions here, not code changes.
type Field string

const (
	FieldItemID       Field = "item_id"
	FieldSKU          Field = "sku"
	FieldItemName     Field = "item_name"
	FieldSupplierCode Field = "supplier_code"
	FieldSupplierName Field = "supplier_name"
	FieldMonth        Field = "month"
	FieldQuantity     Field = "quantity"
	FieldNetSales     Field = "net_sales"
	FieldPODate       Field = "po_date"
	FieldPOStatus     Field = "po_status"
	FieldPOPrice      Field = "po_price"
	FieldPOOrdered    Field = "po_ordered"
	FieldPOReceived   Field = "po_received"
	FieldVendor       Field = "vendor"
	FieldAvailable    Field = "available"
	FieldCost         Field = "cost"
	FieldInvoiceID    Field = "invoice_id"
	FieldInvoiceDate  Field = "invoice_date"
	FieldCreatedTime  Field = "created_time"
	FieldModifiedTime Field = "modified_time"
)

// aliases enumerates the accepted header variants per field, in priority
// order. The sources are bilingual (English and Indonesian) and versioned, so
// the same column shows up under several spellings depending on which export
// produced the file.
var aliases = map[Field][]string{
	FieldItemID:       {"Item_ID", "Product ID", "Product_ID", "Item Id", "ProductID", "Item ID"},
	FieldSKU:          {"Item_SKU", "SKU", "Item SKU"},
	FieldItemName:     {"Item_Name", "Item Name", "Item Desc", "Item Description", "Item Desc.", "Nama Produk", "Nama"},
	FieldSupplierCode: {"CF_Supplier_Code", "Item.CF.Supplier Code", "Supplier Code"},
	FieldSupplierName: {"Supplier Name", "Supplier", "Nama Supplier"},
	FieldMonth:        {"Month_Year", "Month-Year", "MonthYear", "Month Year"},
	FieldQuantity:     {"Total_Quantity", "Quantity", "Qty", "Total Qty"},
	FieldNetSales:     {"Net_Sales", "Net Sales", "Sales"},
	FieldPODate:       {"Purchase Order Date", "Date", "PO Date"},
	FieldPOStatus:     {"Purchase Order Status", "Status"},
	FieldPOPrice:      {"Item Price", "Rate", "Unit Price", "Harga"},
	FieldPOOrdered:    {"QuantityOrdered", "Qty Ordered", "Quantity Ordered", "Qty PO"},
	FieldPOReceived:   {"QuantityReceived", "Qty Received", "Quantity Received"},
	FieldVendor:       {"Vendor Name", "Vendor", "Supplier", "Nama Supplier"},
	FieldAvailable:    {"Available_Stock", "Available Stock", "AvailableQuantity", "Available Qty", "Stock Available", "Available"},
	FieldCost:         {"Cost", "Rate", "Average Cost", "Inventory Cost"},
	FieldInvoiceID:    {"Invoice ID", "Invoice_ID", "Invoice Number", "No Invoice"},
	FieldInvoiceDate:  {"Invoice Date", "Invoice_Date", "Date"},
	FieldCreatedTime:  {"Created Time", "Created_Time", "Created At"},
	FieldModifiedTime: {"Last Modified Time", "Last_Modified_Time", "Modified Time"},
}

// Resolve returns the first non-empty value among the field's header
// variants, or "" when none match.
func Resolve(r Row, f Field) string {
	for _, name := range aliases[f] {
		if v, ok := r[name]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// numCleaner drops everything that is not a digit, sign or decimal point, so
// values like "1,200 CRC" or "USD 4.50" still parse.
var numCleaner = regexp.MustCompile(`[^0-9+\-.]`)

// Number resolves a field and parses it as a float. Thousands separators and
// embedded currency codes are tolerated; anything unparseable is 0. Never an
// error: bad numbers degrade, they do not fail the row.
func Number(r Row, f Field) float64 {
	return ParseNumber(Resolve(r, f))
}

// ParseNumber applies the same forgiving numeric parsing to a raw string.
func ParseNumber(s string) float64 {
	s = numCleaner.ReplaceAllString(s, "")
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}

var ymPrefix = regexp.MustCompile(`^(\d{4})-(\d{2})(?:-(\d{2}))?`)

// dateLayouts are tried in order when the YYYY-MM[-DD] fast path misses.
// Mirrors the export formats the accounting system has been seen to emit.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/06 15:04",
	"2/1/2006 15:04",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// Date resolves a field and parses it as a calendar date.
func Date(r Row, f Field) (time.Time, bool) {
	return ParseDate(Resolve(r, f))
}

// ParseDate accepts a YYYY-MM[-DD] prefix (day defaults to 1) or one of the
// known general layouts. Unparseable input resolves to "no date" (zero time,
// false) rather than an error.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if m := ymPrefix.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day := 1
		if m[3] != "" {
			day, _ = strconv.Atoi(m[3])
		}
		if month >= 1 && month <= 12 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
		}
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
