// Package tabular turns uploaded CSV bytes into an ordered table for display.
// Nothing here touches storage; a Table lives for a single response.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed wraps every parse failure so callers can match on it.
var ErrMalformed = errors.New("malformed tabular content")

// Table is a parsed CSV file. Columns keep the header order and Rows keep
// the record order of the source.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// Cells returns the values of row i in column order, for templates that
// cannot range over a map in a fixed order.
func (t Table) Cells(i int) []string {
	if i < 0 || i >= len(t.Rows) {
		return nil
	}
	out := make([]string, len(t.Columns))
	for j, col := range t.Columns {
		out[j] = t.Rows[i][col]
	}
	return out
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a header line followed by data records. Every record must
// have as many fields as the header. Values are kept exactly as written,
// surrounding spaces included. Header names must be unique and not blank.
// A header-only input yields a table with no rows.
func ParseCSV(data []byte) (Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return Table{}, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	reader := csv.NewReader(bytes.NewReader(data))

	header, err := reader.Read()
	if err != nil {
		return Table{}, fmt.Errorf("%w: read header: %v", ErrMalformed, err)
	}
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			return Table{}, fmt.Errorf("%w: column %d has no name", ErrMalformed, i+1)
		}
		if seen[h] {
			return Table{}, fmt.Errorf("%w: duplicate column %q", ErrMalformed, h)
		}
		seen[h] = true
		columns[i] = h
	}

	rows := make([]map[string]string, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		row := make(map[string]string, len(columns))
		for j, col := range columns {
			row[col] = record[j]
		}
		rows = append(rows, row)
	}
	return Table{Columns: columns, Rows: rows}, nil
}
