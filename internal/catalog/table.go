// Public domain.

// Package catalog reads tabular query results, such as the CSV returned
// by the SDSS SkyServer and CasJobs services, into named columns.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/soniakeys/sdssphot/internal/lupt"
	"github.com/soniakeys/sdssphot/internal/sky"
	"github.com/soniakeys/sdssphot/internal/specid"
)

// Table holds columns of string values in input order.  Column names
// are matched without regard to case.
type Table struct {
	names []string
	idx   map[string]int
	cols  [][]string
	n     int
}

// New builds a table from a header and columns of equal length.
func New(names []string, cols [][]string) (*Table, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("catalog: %d names for %d columns", len(names), len(cols))
	}
	t := &Table{names: names, idx: make(map[string]int, len(names)), cols: cols}
	for i, nm := range names {
		k := strings.ToLower(strings.TrimSpace(nm))
		if _, dup := t.idx[k]; dup {
			return nil, fmt.Errorf("catalog: duplicate column %q", nm)
		}
		t.idx[k] = i
		if i == 0 {
			t.n = len(cols[i])
		} else if len(cols[i]) != t.n {
			return nil, fmt.Errorf("catalog: column %q has %d rows, want %d",
				nm, len(cols[i]), t.n)
		}
	}
	return t, nil
}

// Len is the number of rows.
func (t *Table) Len() int { return t.n }

// Columns returns the column names as given in input.
func (t *Table) Columns() []string { return t.names }

// Has reports whether a column is present.
func (t *Table) Has(name string) bool {
	_, ok := t.idx[strings.ToLower(name)]
	return ok
}

// Strings returns the raw values of a column.
func (t *Table) Strings(name string) ([]string, error) {
	i, ok := t.idx[strings.ToLower(name)]
	if !ok {
		return nil, &lupt.MissingFieldError{Field: name}
	}
	return t.cols[i], nil
}

// Slice returns a table sharing rows lo through hi-1.
func (t *Table) Slice(lo, hi int) *Table {
	s := &Table{names: t.names, idx: t.idx, cols: make([][]string, len(t.cols)), n: hi - lo}
	for i, c := range t.cols {
		s.cols[i] = c[lo:hi]
	}
	return s
}

// Filter returns a new table of the rows listed in keep.
func (t *Table) Filter(keep []int) *Table {
	s := &Table{names: t.names, idx: t.idx, cols: make([][]string, len(t.cols)), n: len(keep)}
	for i, c := range t.cols {
		f := make([]string, len(keep))
		for j, k := range keep {
			f[j] = c[k]
		}
		s.cols[i] = f
	}
	return s
}

// Int64 parses a column as integers.
func (t *Table) Int64(name string) ([]int64, error) {
	raw, err := t.Strings(name)
	if err != nil {
		return nil, err
	}
	v := make([]int64, len(raw))
	for i, s := range raw {
		if v[i], err = strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
			return nil, fmt.Errorf("catalog: column %s row %d: %w", name, i, err)
		}
	}
	return v, nil
}

// Float64 parses a column as floating point.
func (t *Table) Float64(name string) ([]float64, error) {
	return Floats[float64](t, name)
}

// Floats parses a column as floating point of type F.
func Floats[F constraints.Float](t *Table, name string) ([]F, error) {
	raw, err := t.Strings(name)
	if err != nil {
		return nil, err
	}
	bits := 64
	var z F
	if _, ok := any(z).(float32); ok {
		bits = 32
	}
	v := make([]F, len(raw))
	for i, s := range raw {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), bits)
		if err != nil {
			return nil, fmt.Errorf("catalog: column %s row %d: %w", name, i, err)
		}
		v[i] = F(f)
	}
	return v, nil
}

// Flux collects the flux columns of one magnitude type, and extinction
// columns if deredden is true.  Nil or empty bands means all five.
func Flux[F constraints.Float](t *Table, mt lupt.MagType, bands []lupt.Band, deredden bool) (*lupt.Flux[F], error) {
	if len(bands) == 0 {
		bands = lupt.Bands
	}
	fm := &lupt.Flux[F]{MagType: mt, Flux: make(map[lupt.Band][]F, len(bands))}
	if deredden {
		fm.Extinction = make(map[lupt.Band][]F, len(bands))
	}
	for _, b := range bands {
		f, err := Floats[F](t, mt.FluxLabel(b))
		if err != nil {
			return nil, err
		}
		fm.Flux[b] = f
		if deredden {
			if fm.Extinction[b], err = Floats[F](t, lupt.ExtinctionLabel(b)); err != nil {
				return nil, err
			}
		}
	}
	return fm, nil
}

// ObjIDFields returns the rerun, run, camcol, field and object number
// columns.  The object number column may be named id or obj.
func ObjIDFields(t *Table) (rerun, run, camcol, field, id []int64, err error) {
	if rerun, err = t.Int64("rerun"); err != nil {
		return
	}
	if run, err = t.Int64("run"); err != nil {
		return
	}
	if camcol, err = t.Int64("camcol"); err != nil {
		return
	}
	if field, err = t.Int64("field"); err != nil {
		return
	}
	idCol := "id"
	if !t.Has(idCol) && t.Has("obj") {
		idCol = "obj"
	}
	id, err = t.Int64(idCol)
	return
}

// SpecFields returns the plate, mjd, fiber and run2d columns.  The fiber
// column may be named fiberid or fiber.  Run2d values are packed with
// specid.ParseRun2d.
func SpecFields(t *Table) (plate, mjd, fiber, run2d []int64, err error) {
	if plate, err = t.Int64("plate"); err != nil {
		return
	}
	if mjd, err = t.Int64("mjd"); err != nil {
		return
	}
	fiberCol := "fiberid"
	if !t.Has(fiberCol) && t.Has("fiber") {
		fiberCol = "fiber"
	}
	if fiber, err = t.Int64(fiberCol); err != nil {
		return
	}
	raw, err := t.Strings("run2d")
	if err != nil {
		return
	}
	run2d = make([]int64, len(raw))
	for i, s := range raw {
		if run2d[i], err = specid.ParseRun2d(s); err != nil {
			err = fmt.Errorf("catalog: column run2d row %d: %w", i, err)
			return
		}
	}
	return
}

// Positions returns positions from the ra and dec columns, in degrees.
func Positions(t *Table) ([]sky.Position, error) {
	ra, err := t.Float64("ra")
	if err != nil {
		return nil, err
	}
	dec, err := t.Float64("dec")
	if err != nil {
		return nil, err
	}
	ps := make([]sky.Position, len(ra))
	for i := range ps {
		ps[i] = sky.FromDeg(ra[i], dec[i])
	}
	return ps, nil
}
