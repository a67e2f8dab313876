package source

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRowsFlattensHeaders(t *testing.T) {
	csv := "\uFEFFf.SKU,a6.Item Name , Quantity\nA1,Widget,5\n"
	rows, err := ReadRows(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "A1", rows[0]["SKU"])
	assert.Equal(t, "Widget", rows[0]["Item Name"])
	assert.Equal(t, "5", rows[0]["Quantity"])
}

func TestReadRowsToleratesShortRecords(t *testing.T) {
	csv := "SKU,Quantity,Extra\nA1,5\nB2,3,x\n"
	rows, err := ReadRows(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "5", rows[0]["Quantity"])
	_, hasExtra := rows[0]["Extra"]
	assert.False(t, hasExtra)
}

func TestReadRowsSkipsEmptyLines(t *testing.T) {
	csv := "SKU,Quantity\nA1,5\n,\n"
	rows, err := ReadRows(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReadRowsEmptyInput(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadRowsSkipsMalformedLines(t *testing.T) {
	csv := "SKU,Quantity\nB2,\"x\"y\nA1,5\n"
	rows, err := ReadRows(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A1", rows[0]["SKU"])
}

// brokenReader serves its buffered prefix, then fails every read with the
// same error, like a network stream dying mid-download.
type brokenReader struct {
	data string
	err  error
}

func (r *brokenReader) Read(p []byte) (int, error) {
	if len(r.data) > 0 {
		n := copy(p, r.data)
		r.data = r.data[n:]
		return n, nil
	}
	return 0, r.err
}

func TestReadRowsAbortsOnStreamError(t *testing.T) {
	streamErr := errors.New("connection reset")
	rows, err := ReadRows(&brokenReader{data: "SKU,Quantity\nA1,5\n", err: streamErr})

	require.ErrorIs(t, err, streamErr)
	assert.Nil(t, rows)
}
