// Package dataprovider feeds tabular test data into automations.
//
// A CSV file's header row names the keys; every selected row becomes a map
// that can be passed as run flags or decoded with domain.Flags.Decode.
package dataprovider

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// NilValue is the cell text read as a nil value.
const NilValue = "nil"

// ErrNotCSV is returned for files without a .csv extension.
var ErrNotCSV = errors.New("not a csv file")

// ErrRowOutOfRange is returned when a selected row does not exist.
var ErrRowOutOfRange = errors.New("row out of range")

// Row is one data row keyed by header.
type Row map[string]any

// Flags returns the row as a flag map.
func (r Row) Flags() map[string]any {
	return map[string]any(r)
}

// Table holds a parsed CSV: the header and the data rows, header excluded.
type Table struct {
	Header []string
	rows   [][]string
}

// ReadFile parses a .csv file.
func ReadFile(path string) (*Table, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil, fmt.Errorf("%w: %s", ErrNotCSV, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses CSV from r. The first record is the header.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("failed to parse csv: missing header row")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	return &Table{Header: header, rows: records[1:]}, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns data row n, counting from 1 like the file's line after the header.
func (t *Table) Row(n int) (Row, error) {
	if n < 1 || n > len(t.rows) {
		return nil, fmt.Errorf("%w: %d of %d", ErrRowOutOfRange, n, len(t.rows))
	}
	rec := t.rows[n-1]
	row := make(Row, len(t.Header))
	for i, key := range t.Header {
		if i >= len(rec) {
			row[key] = nil
			continue
		}
		v := strings.TrimSpace(rec[i])
		if v == NilValue {
			row[key] = nil
			continue
		}
		row[key] = v
	}
	return row, nil
}

// Rows returns the selected data rows in the order given. No selection returns all rows.
func (t *Table) Rows(selection ...int) ([]Row, error) {
	if len(selection) == 0 {
		selection = make([]int, len(t.rows))
		for i := range selection {
			selection[i] = i + 1
		}
	}
	out := make([]Row, 0, len(selection))
	for _, n := range selection {
		row, err := t.Row(n)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// Load reads path and returns the selected rows; see Table.Rows.
func Load(path string, selection ...int) ([]Row, error) {
	t, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return t.Rows(selection...)
}
