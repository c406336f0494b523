// Public domain.

// Package specid packs SDSS spectroscopic identifiers into the 64 bit
// SpecObjID and names the spectrum files they refer to.
//
// Layout, most significant bit first:
//
//	50-63  plate
//	38-49  fiber id
//	24-37  MJD - 50000
//	10-23  run2d, see ParseRun2d
//	0-9    line or redshift index, 0 for spectra
package specid

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const (
	plateShift = 50
	fiberShift = 38
	mjdShift   = 24
	run2dShift = 10

	// MJDBase is subtracted from the MJD before packing.
	MJDBase = 50000
)

// Spec locates one spectrum.
type Spec struct {
	Plate, MJD, Fiber int64
	Run2d             int64 // packed form
}

// ErrLength is returned when parallel input slices differ in length.
var ErrLength = errors.New("specid: input lengths differ")

// RangeError reports a field with one or more values that do not fit
// the SpecObjID layout.
type RangeError struct {
	Field    string
	Min, Max int64
	Row      int
	Value    int64
	Count    int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("specid: %s out of range [%d, %d]: %d at row %d (%d rows invalid)",
		e.Field, e.Min, e.Max, e.Value, e.Row, e.Count)
}

var limits = []struct {
	name     string
	min, max int64
}{
	{"plate", 0, 1<<14 - 1},
	{"mjd", MJDBase, MJDBase + 1<<14 - 1},
	{"fiberid", 1, 1<<12 - 1},
	{"run2d", 0, 1<<14 - 1},
}

// Encode packs parallel slices of plate, mjd, fiber and packed run2d.
// All values are validated before any are encoded.
func Encode(plate, mjd, fiber, run2d []int64) ([]uint64, error) {
	cols := [4][]int64{plate, mjd, fiber, run2d}
	n := len(plate)
	for i, c := range cols {
		if len(c) != n {
			return nil, fmt.Errorf("%w: %s has %d values, plate has %d",
				ErrLength, limits[i].name, len(c), n)
		}
	}
	for i, c := range cols {
		lim := limits[i]
		var re *RangeError
		for row, v := range c {
			if v >= lim.min && v <= lim.max {
				continue
			}
			if re == nil {
				re = &RangeError{Field: lim.name, Min: lim.min, Max: lim.max,
					Row: row, Value: v}
			}
			re.Count++
		}
		if re != nil {
			return nil, re
		}
	}
	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = uint64(plate[i])<<plateShift |
			uint64(fiber[i])<<fiberShift |
			uint64(mjd[i]-MJDBase)<<mjdShift |
			uint64(run2d[i])<<run2dShift
	}
	return ids, nil
}

// EncodeSpec packs a single spectrum identifier.
func EncodeSpec(s Spec) (uint64, error) {
	ids, err := Encode([]int64{s.Plate}, []int64{s.MJD}, []int64{s.Fiber},
		[]int64{s.Run2d})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// Decode unpacks a SpecObjID.
func Decode(id uint64) Spec {
	return Spec{
		Plate: int64(id >> plateShift),
		Fiber: int64(id >> fiberShift & (1<<12 - 1)),
		MJD:   int64(id>>mjdShift&(1<<14-1)) + MJDBase,
		Run2d: int64(id >> run2dShift & (1<<14 - 1)),
	}
}

// ParseRun2d converts a spectroscopic reduction version to its packed
// form.  Integer versions such as "26" or "103" pack as themselves;
// versions "vN_M_P" pack as (N-5)*10000 + M*100 + P.
func ParseRun2d(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 || n >= 1<<14 {
			return 0, fmt.Errorf("specid: run2d %q out of range", s)
		}
		return n, nil
	}
	f := strings.Split(strings.TrimPrefix(s, "v"), "_")
	if len(f) != 3 || !strings.HasPrefix(s, "v") {
		return 0, fmt.Errorf("specid: invalid run2d %q", s)
	}
	var v [3]int64
	for i, p := range f {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 || n > 99 {
			return 0, fmt.Errorf("specid: invalid run2d %q", s)
		}
		v[i] = n
	}
	if v[0] < 5 {
		return 0, fmt.Errorf("specid: run2d %q predates v5", s)
	}
	n := (v[0]-5)*10000 + v[1]*100 + v[2]
	if n >= 1<<14 {
		return 0, fmt.Errorf("specid: run2d %q out of range", s)
	}
	return n, nil
}

// FileName is the name of the spectrum "lite" file.
func (s Spec) FileName() string {
	return fmt.Sprintf("spec-%04d-%05d-%04d.fits", s.Plate, s.MJD, s.Fiber)
}

// LitePath is the path of the lite file relative to a reduction
// directory, for example .../spectro/redux/<run2d>/.
func (s Spec) LitePath() string {
	return path.Join("spectra", "lite", fmt.Sprintf("%04d", s.Plate), s.FileName())
}

// Observed returns the UTC time at the start of the spectrum's MJD.
func (s Spec) Observed() time.Time {
	return julian.JDToTime(float64(s.MJD) + 2400000.5).UTC()
}
