// Public domain.

package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadCSV reads a header line and rows of comma separated values.
//
// Lines beginning with # are ignored.  SkyServer results begin with such a
// line naming the result table.  Rows must have as many values as the
// header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("catalog: no header line")
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	names := make([]string, len(head))
	for i, h := range head {
		names[i] = strings.TrimSpace(h)
	}
	cols := make([][]string, len(names))
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv reports ragged rows as ErrFieldCount, with line number
			return nil, fmt.Errorf("catalog: %w", err)
		}
		for i, v := range rec {
			cols[i] = append(cols[i], v)
		}
	}
	return New(names, cols)
}

// WriteCSV writes the table with a header line.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.names); err != nil {
		return err
	}
	rec := make([]string, len(t.cols))
	for r := 0; r < t.n; r++ {
		for i, c := range t.cols {
			rec[i] = c[r]
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
