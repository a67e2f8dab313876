package source

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// headerPrefixes are query-tool artifacts that leak into exported headers and
// are stripped during flattening (e.g. "f.SKU" -> "SKU").
var headerPrefixes = []string{"f.", "a6."}

// flattenHeader strips the BOM, surrounding whitespace and known export
// prefixes from one header cell. Safe to apply repeatedly.
func flattenHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	for _, p := range headerPrefixes {
		if strings.HasPrefix(h, p) {
			return h[len(p):]
		}
	}
	return h
}

// ReadRows parses a headered CSV stream into rows keyed by flattened header
// name. Short records are padded, long records truncated; a malformed line
// is skipped rather than failing the whole source. I/O errors from the
// underlying stream still abort the read, so a dying network source surfaces
// to the fetcher instead of spinning here.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	for i := range header {
		header[i] = flattenHeader(header[i])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, err
		}
		row := make(Row, len(header))
		empty := true
		for i, name := range header {
			if name == "" || i >= len(record) {
				continue
			}
			row[name] = record[i]
			if strings.TrimSpace(record[i]) != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
