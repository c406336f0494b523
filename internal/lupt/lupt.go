// Public domain.

// Package lupt computes asinh magnitudes, "luptitudes," from SDSS fluxes.
//
// Unlike logarithmic magnitudes, asinh magnitudes are finite at zero and
// negative flux.  Fluxes are in nanomaggies.
package lupt

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/constraints"
)

// Band is an SDSS imaging filter.
type Band string

const (
	U Band = "u"
	G Band = "g"
	R Band = "r"
	I Band = "i"
	Z Band = "z"
)

// Bands lists the five ugriz bands in wavelength order.
var Bands = []Band{U, G, R, I, Z}

// softening parameters b, per band.
var softening = map[Band]float64{
	U: 1.4e-10,
	G: 0.9e-10,
	R: 1.2e-10,
	I: 1.8e-10,
	Z: 7.4e-10,
}

// Softening returns the softening parameter b for a band.
func Softening(b Band) (float64, bool) {
	s, ok := softening[b]
	return s, ok
}

// ParseBands parses a string of band letters such as "gri".
func ParseBands(s string) ([]Band, error) {
	if s == "" {
		return nil, errors.New("lupt: no bands")
	}
	bands := make([]Band, 0, len(s))
	seen := map[Band]bool{}
	for _, c := range strings.ToLower(s) {
		b := Band(string(c))
		if _, ok := softening[b]; !ok {
			return nil, fmt.Errorf("lupt: unknown band %q", c)
		}
		if !seen[b] {
			seen[b] = true
			bands = append(bands, b)
		}
	}
	return bands, nil
}

// MagType identifies the photometric measurement a flux came from.
type MagType string

const (
	Model  MagType = "model"
	Dev    MagType = "dev"
	Exp    MagType = "exp"
	PSF    MagType = "psf"
	Fiber2 MagType = "fiber2"
	CModel MagType = "cmodel"
)

// MagTypes lists the recognized magnitude types.
var MagTypes = []MagType{Model, Dev, Exp, PSF, Fiber2, CModel}

// ParseMagType accepts a magnitude type name in any case.
func ParseMagType(s string) (MagType, bool) {
	s = strings.ToLower(s)
	for _, m := range MagTypes {
		if s == string(m) {
			return m, true
		}
	}
	return "", false
}

// Label is the output column name for a magnitude, "{magtype}mag_{band}".
func (m MagType) Label(b Band) string {
	return string(m) + "mag_" + string(b)
}

// FluxLabel is the catalog column name for a flux, "{magtype}flux_{band}".
// Catalogs capitalize these variously; match without regard to case.
func (m MagType) FluxLabel(b Band) string {
	return string(m) + "flux_" + string(b)
}

// ExtinctionLabel is the catalog column name for a band's extinction.
func ExtinctionLabel(b Band) string {
	return "extinction_" + string(b)
}

// MissingFieldError reports a band, magnitude type, or extinction column
// absent from input.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing field " + e.Field
}

// ErrLength is returned when per-band arrays differ in length.
var ErrLength = errors.New("lupt: array lengths differ")

// Flux is a set of per-band flux arrays of a single magnitude type,
// optionally with per-band extinction.  All arrays have one element
// per object.
type Flux[F constraints.Float] struct {
	MagType    MagType
	Flux       map[Band][]F
	Extinction map[Band][]F // nil if not available
}

// Mags holds magnitude columns keyed by label.
type Mags[F constraints.Float] map[string][]F

// Merge copies columns of o into m, replacing columns of the same label.
func (m Mags[F]) Merge(o Mags[F]) {
	for k, v := range o {
		m[k] = v
	}
}

// Luptitude converts one flux to an asinh magnitude.  For a band not in
// Bands the result is NaN; Magnitudes rejects such bands with an error.
func Luptitude[F constraints.Float](flux F, band Band) F {
	b, ok := softening[band]
	if !ok {
		return F(math.NaN())
	}
	return F(-2.5 / math.Ln10 * (math.Asinh(float64(flux)*1e-9/(2*b)) + math.Log(b)))
}

// Magnitudes converts the requested bands of fm to asinh magnitudes.
// Nil or empty bands means all five.  If deredden is true, extinction
// is subtracted.
//
// Inputs are checked before anything is computed; on error no
// magnitudes are returned.
func Magnitudes[F constraints.Float](fm *Flux[F], bands []Band, deredden bool) (Mags[F], error) {
	if len(bands) == 0 {
		bands = Bands
	}
	n := -1
	for _, b := range bands {
		if _, ok := softening[b]; !ok {
			return nil, fmt.Errorf("lupt: unknown band %q", b)
		}
		f, ok := fm.Flux[b]
		if !ok {
			return nil, &MissingFieldError{fm.MagType.FluxLabel(b)}
		}
		if n < 0 {
			n = len(f)
		} else if len(f) != n {
			return nil, fmt.Errorf("%w: %s", ErrLength, fm.MagType.FluxLabel(b))
		}
		if !deredden {
			continue
		}
		x, ok := fm.Extinction[b]
		if !ok {
			return nil, &MissingFieldError{ExtinctionLabel(b)}
		}
		if len(x) != n {
			return nil, fmt.Errorf("%w: %s", ErrLength, ExtinctionLabel(b))
		}
	}

	mags := make(Mags[F], len(bands))
	for _, b := range bands {
		flux := fm.Flux[b]
		m := make([]F, len(flux))
		for i, f := range flux {
			m[i] = Luptitude(f, b)
		}
		if deredden {
			for i, x := range fm.Extinction[b] {
				m[i] -= x
			}
		}
		mags[fm.MagType.Label(b)] = m
	}
	return mags, nil
}
