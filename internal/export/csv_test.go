package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantera/orderprep/backend-go/internal/aggregate"
	"github.com/pantera/orderprep/backend-go/internal/domain"
	"github.com/pantera/orderprep/backend-go/internal/source"
)

func buildSnapshot(t *testing.T) *domain.Snapshot {
	t.Helper()
	now := time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)
	window := aggregate.NewMonthWindow(now, true)

	return aggregate.Run(aggregate.Input{
		Items: []source.Row{
			{"Product ID": "1", "SKU": "A1", "Item Name": "Widget, \"Deluxe\"", "Available Stock": "30", "Cost": "2.5"},
			{"Product ID": "2", "SKU": "B2", "Item Name": "Gadget", "Available Stock": "8"},
		},
		Sales: []source.Row{
			{"Item_ID": "1", "Item_SKU": "A1", "Month_Year": "2025-11", "Total_Quantity": "7"},
			{"Item_ID": "1", "Item_SKU": "A1", "Month_Year": "2025-10", "Total_Quantity": "4"},
		},
		POs: []source.Row{
			{"Item ID": "1", "SKU": "A1", "Status": "Open", "Quantity Ordered": "10", "Quantity Received": "4"},
		},
	}, window)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	snap := buildSnapshot(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, snap, Options{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + two items

	header := records[0]
	require.Len(t, header, 11+24)

	// months are newest first and the current month is labeled to-date
	assert.Equal(t, "2025-11 (to-date)", header[11])
	assert.Equal(t, "2025-10", header[12])
	assert.Equal(t, "2023-12", header[len(header)-1])

	// rows come out SKU-ordered; the quoted name survives the round trip
	row := records[1]
	assert.Equal(t, "1", row[0])
	assert.Equal(t, "A1", row[1])
	assert.Equal(t, "Widget, \"Deluxe\"", row[2])
	assert.Equal(t, "30", row[5])
	assert.Equal(t, "2.5", row[6])
	assert.Equal(t, "6", row[9]) // outstanding

	// month cells mirror the aggregate
	qtyNov, err := strconv.ParseFloat(row[11], 64)
	require.NoError(t, err)
	assert.Equal(t, 7.0, qtyNov)
	qtyOct, err := strconv.ParseFloat(row[12], 64)
	require.NoError(t, err)
	assert.Equal(t, 4.0, qtyOct)
}

func TestWriteCSVEscaping(t *testing.T) {
	assert.Equal(t, "plain", escape("plain"))
	assert.Equal(t, "\"a,b\"", escape("a,b"))
	assert.Equal(t, "\"he said \"\"hi\"\"\"", escape("he said \"hi\""))
	assert.Equal(t, "\"line\nbreak\"", escape("line\nbreak"))
}

func TestWriteCSVSKUFilter(t *testing.T) {
	snap := buildSnapshot(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, snap, Options{SKUs: []string{"B2"}}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "B2", records[1][1])
}

func TestWriteCSVExcludedCurrentMonthHasNoToDateLabel(t *testing.T) {
	now := time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)
	window := aggregate.NewMonthWindow(now, false)
	snap := aggregate.Run(aggregate.Input{
		Items: []source.Row{{"SKU": "A1", "Product ID": "1"}},
	}, window)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, snap, Options{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "2025-10", records[0][11])
}
