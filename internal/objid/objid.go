// Public domain.

// Package objid packs SDSS imaging identifiers into the 64 bit CAS ObjID.
//
// Layout, most significant bit first:
//
//	63     unused, 0
//	59-62  sky version, always 2
//	48-58  rerun
//	32-47  run
//	29-31  camcol
//	28     first field flag, 0
//	16-27  field
//	0-15   id, object number within field
package objid

import (
	"errors"
	"fmt"
)

// SkyVersion is the constant stored in bits 59-62.
const SkyVersion = 2

// bit positions and widths
const (
	skyShift    = 59
	rerunShift  = 48
	runShift    = 32
	camcolShift = 29
	firstShift  = 28
	fieldShift  = 16

	rerunBits = 11
	runBits   = 16
	fieldBits = 12
	idBits    = 16
)

// Row holds the five catalog fields that determine an ObjID.
type Row struct {
	Rerun, Run, Camcol, Field, ID int64
}

// ErrLength is returned when parallel input slices differ in length.
var ErrLength = errors.New("objid: input lengths differ")

// RangeError reports a field with one or more values outside the range
// representable in the ObjID layout.
type RangeError struct {
	Field    string
	Min, Max int64 // inclusive
	Row      int   // first offending row
	Value    int64 // value at Row
	Count    int   // number of offending rows
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("objid: %s out of range [%d, %d]: %d at row %d (%d rows invalid)",
		e.Field, e.Min, e.Max, e.Value, e.Row, e.Count)
}

// limits, in the order fields are checked.
var limits = []struct {
	name     string
	min, max int64
}{
	{"rerun", 0, 1<<rerunBits - 1},
	{"run", 0, 1<<runBits - 1},
	{"camcol", 1, 6},
	{"field", 0, 1<<fieldBits - 1},
	{"id", 0, 1<<idBits - 1},
}

// Validate checks every element of every field.  It returns nil, ErrLength
// (wrapped), or a *RangeError for the first field found with a bad value.
func Validate(rerun, run, camcol, field, id []int64) error {
	cols := [5][]int64{rerun, run, camcol, field, id}
	n := len(rerun)
	for i, c := range cols {
		if len(c) != n {
			return fmt.Errorf("%w: %s has %d values, rerun has %d",
				ErrLength, limits[i].name, len(c), n)
		}
	}
	for i, c := range cols {
		if err := check(i, c); err != nil {
			return err
		}
	}
	return nil
}

func check(fx int, col []int64) error {
	lim := limits[fx]
	var re *RangeError
	for i, v := range col {
		if v >= lim.min && v <= lim.max {
			continue
		}
		if re == nil {
			re = &RangeError{Field: lim.name, Min: lim.min, Max: lim.max,
				Row: i, Value: v}
		}
		re.Count++
	}
	if re != nil {
		return re
	}
	return nil
}

// Encode packs parallel slices of catalog fields into ObjIDs.
//
// The whole batch is validated before anything is encoded.  On error the
// returned slice is nil.
func Encode(rerun, run, camcol, field, id []int64) ([]uint64, error) {
	if err := Validate(rerun, run, camcol, field, id); err != nil {
		return nil, err
	}
	ids := make([]uint64, len(rerun))
	for i := range ids {
		ids[i] = pack(rerun[i], run[i], camcol[i], field[i], id[i])
	}
	return ids, nil
}

// EncodeRow packs a single row.
func EncodeRow(r Row) (uint64, error) {
	ids, err := Encode([]int64{r.Rerun}, []int64{r.Run}, []int64{r.Camcol},
		[]int64{r.Field}, []int64{r.ID})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// pack requires validated values.  Operands are widened to uint64 before
// shifting.
func pack(rerun, run, camcol, field, id int64) uint64 {
	return uint64(SkyVersion)<<skyShift |
		uint64(rerun)<<rerunShift |
		uint64(run)<<runShift |
		uint64(camcol)<<camcolShift |
		uint64(field)<<fieldShift |
		uint64(id)
}

// Decode unpacks an ObjID.  It does not check the sky version or
// first field bits; see SkyVersionOf and FirstField.
func Decode(objID uint64) Row {
	return Row{
		Rerun:  int64(objID >> rerunShift & (1<<rerunBits - 1)),
		Run:    int64(objID >> runShift & (1<<runBits - 1)),
		Camcol: int64(objID >> camcolShift & 7),
		Field:  int64(objID >> fieldShift & (1<<fieldBits - 1)),
		ID:     int64(objID & (1<<idBits - 1)),
	}
}

// SkyVersionOf returns bits 59-62.
func SkyVersionOf(objID uint64) int {
	return int(objID >> skyShift & 15)
}

// FirstField reports bit 28.
func FirstField(objID uint64) bool {
	return objID>>firstShift&1 == 1
}
