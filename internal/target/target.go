// Public domain.

// Package target implements BOSS galaxy target selection on SDSS
// photometry: the auxiliary colors c_par, c_perp, d_perp and the LOWZ and
// CMASS cuts.
package target

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/exp/constraints"

	"github.com/soniakeys/sdssphot/internal/lupt"
)

// Aux holds auxiliary color columns, one element per object.
type Aux[F constraints.Float] struct {
	CPar, CPerp, DPerp []F
}

// AuxColors computes the three auxiliary colors from model magnitudes.
func AuxColors[F constraints.Float](g, r, i F) (cPar, cPerp, dPerp F) {
	gr := g - r
	ri := r - i
	cPar = .7*gr + 1.2*(ri-.18)
	cPerp = ri - gr/4 - .18
	dPerp = ri - gr/8
	return
}

// Colors computes auxiliary colors for every object in m, which must
// contain model magnitudes in g, r, and i.
func Colors[F constraints.Float](m lupt.Mags[F]) (*Aux[F], error) {
	var gri [3][]F
	for x, b := range []lupt.Band{lupt.G, lupt.R, lupt.I} {
		c, ok := m[lupt.Model.Label(b)]
		if !ok {
			return nil, &lupt.MissingFieldError{Field: lupt.Model.Label(b)}
		}
		gri[x] = c
	}
	n := len(gri[0])
	if len(gri[1]) != n || len(gri[2]) != n {
		return nil, fmt.Errorf("%w: model magnitudes", lupt.ErrLength)
	}
	a := &Aux[F]{
		CPar:  make([]F, n),
		CPerp: make([]F, n),
		DPerp: make([]F, n),
	}
	for i := range n {
		a.CPar[i], a.CPerp[i], a.DPerp[i] =
			AuxColors(gri[0][i], gri[1][i], gri[2][i])
	}
	return a, nil
}

// Row holds the photometry a selection cut looks at for one object.
// Model and cmodel magnitudes are dereddened, psf and fiber2 are not.
type Row struct {
	CModelR, CModelI       float64
	ModelR, ModelI, ModelZ float64
	PSFR, PSFI, PSFZ       float64
	Fiber2I                float64
	CPar, CPerp, DPerp     float64
}

// Needs lists the magnitude columns Rows requires.
var Needs = []struct {
	MagType  lupt.MagType
	Bands    []lupt.Band
	Deredden bool
}{
	{lupt.Model, []lupt.Band{lupt.G, lupt.R, lupt.I, lupt.Z}, true},
	{lupt.CModel, []lupt.Band{lupt.R, lupt.I}, true},
	{lupt.PSF, []lupt.Band{lupt.R, lupt.I, lupt.Z}, false},
	{lupt.Fiber2, []lupt.Band{lupt.I}, false},
}

// DereddenBands returns the bands whose extinction Rows needs, the
// bands of the Needs entries with Deredden set.
func DereddenBands() []lupt.Band {
	var bands []lupt.Band
	seen := map[lupt.Band]bool{}
	for _, n := range Needs {
		if !n.Deredden {
			continue
		}
		for _, b := range n.Bands {
			if !seen[b] {
				seen[b] = true
				bands = append(bands, b)
			}
		}
	}
	return bands
}

// Rows assembles selection rows from magnitude columns.  m must hold the
// columns listed in Needs.
func Rows[F constraints.Float](m lupt.Mags[F]) ([]Row, error) {
	aux, err := Colors(m)
	if err != nil {
		return nil, err
	}
	col := func(mt lupt.MagType, b lupt.Band) ([]F, error) {
		c, ok := m[mt.Label(b)]
		if !ok {
			return nil, &lupt.MissingFieldError{Field: mt.Label(b)}
		}
		if len(c) != len(aux.CPar) {
			return nil, fmt.Errorf("%w: %s", lupt.ErrLength, mt.Label(b))
		}
		return c, nil
	}
	var cols [9][]F
	for x, c := range []struct {
		mt lupt.MagType
		b  lupt.Band
	}{
		{lupt.CModel, lupt.R}, {lupt.CModel, lupt.I},
		{lupt.Model, lupt.R}, {lupt.Model, lupt.I}, {lupt.Model, lupt.Z},
		{lupt.PSF, lupt.R}, {lupt.PSF, lupt.I}, {lupt.PSF, lupt.Z},
		{lupt.Fiber2, lupt.I},
	} {
		if cols[x], err = col(c.mt, c.b); err != nil {
			return nil, err
		}
	}
	rows := make([]Row, len(aux.CPar))
	for i := range rows {
		rows[i] = Row{
			CModelR: float64(cols[0][i]),
			CModelI: float64(cols[1][i]),
			ModelR:  float64(cols[2][i]),
			ModelI:  float64(cols[3][i]),
			ModelZ:  float64(cols[4][i]),
			PSFR:    float64(cols[5][i]),
			PSFI:    float64(cols[6][i]),
			PSFZ:    float64(cols[7][i]),
			Fiber2I: float64(cols[8][i]),
			CPar:    float64(aux.CPar[i]),
			CPerp:   float64(aux.CPerp[i]),
			DPerp:   float64(aux.DPerp[i]),
		}
	}
	return rows, nil
}

// CList represents the target classes.  Bit is the class's bit in the
// BOSS_TARGET1 flags.
var CList = []struct {
	Abbr, Heading string
	Bit           uint
	IsClass       func(*Row) bool
}{
	{"LOWZ", "BOSS LOWZ gal.", 0, isLowz},
	{"CMASS", "BOSS CMASS gal.", 1, isCmass},
}

// Class returns the CList index for an abbreviation or heading.
func Class(name string) (int, bool) {
	for cx, c := range CList {
		if name == c.Abbr || name == c.Heading {
			return cx, true
		}
	}
	return 0, false
}

// LOWZ, luminous red galaxies at z < 0.4
// r_cmod < 13.5 + c_par/0.3, |c_perp| < 0.2, 16 < r_cmod < 19.6,
// r_psf - r_cmod > 0.3
func isLowz(r *Row) bool {
	return r.CModelR < 13.5+r.CPar/.3 &&
		math.Abs(r.CPerp) < .2 &&
		r.CModelR > 16 && r.CModelR < 19.6 &&
		r.PSFR-r.CModelR > .3
}

// CMASS, constant stellar mass galaxies at 0.4 < z < 0.7
// 17.5 < i_cmod < 19.9, r_mod - i_mod < 2, d_perp > 0.55, i_fib2 < 21.5,
// i_cmod < 19.86 + 1.6(d_perp - 0.8), plus star-galaxy separation
// i_psf - i_mod > 0.2 + 0.2(20 - i_mod), z_psf - z_mod > 9.125 - 0.46 z_mod
func isCmass(r *Row) bool {
	return r.CModelI > 17.5 && r.CModelI < 19.9 &&
		r.ModelR-r.ModelI < 2 &&
		r.DPerp > .55 &&
		r.Fiber2I < 21.5 &&
		r.CModelI < 19.86+1.6*(r.DPerp-.8) &&
		r.PSFI-r.ModelI > .2+.2*(20-r.ModelI) &&
		r.PSFZ-r.ModelZ > 9.125-.46*r.ModelZ
}

// Select evaluates the listed classes, by CList index, over rows.  It
// returns one bitmap of row indexes per listed class.
func Select(rows []Row, classes []int) []*roaring.Bitmap {
	sel := make([]*roaring.Bitmap, len(classes))
	for x := range sel {
		sel[x] = roaring.New()
	}
	for i := range rows {
		for x, c := range classes {
			if CList[c].IsClass(&rows[i]) {
				sel[x].Add(uint32(i))
			}
		}
	}
	return sel
}
