// Public domain.

package lupt_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniakeys/sdssphot/internal/lupt"
)

func ExampleLuptitude() {
	fmt.Printf("%.4f\n", lupt.Luptitude(0., lupt.R))
	fmt.Printf("%.4f\n", lupt.Luptitude(100., lupt.R))
	// Output:
	// 24.8020
	// 17.5000
}

func TestZeroFlux(t *testing.T) {
	want := map[lupt.Band]float64{
		lupt.U: 24.6346799108044,
		lupt.G: 25.114393726401683,
		lupt.R: 24.802046884880934,
		lupt.I: 24.36181873724173,
		lupt.Z: 22.826920700672552,
	}
	for _, b := range lupt.Bands {
		s, ok := lupt.Softening(b)
		require.True(t, ok)
		m := lupt.Luptitude(0., b)
		assert.InDelta(t, -2.5/math.Ln10*math.Log(s), m, 1e-12, "band %s", b)
		assert.InDelta(t, want[b], m, 1e-9, "band %s", b)
	}
}

func TestMonotonic(t *testing.T) {
	for _, b := range lupt.Bands {
		prev := math.Inf(1)
		for f := -50.; f <= 1e5; f += 1 + math.Abs(f)*.5 {
			m := lupt.Luptitude(f, b)
			if !(m < prev) {
				t.Fatalf("band %s: mag %g at flux %g not below %g", b, m, f, prev)
			}
			prev = m
		}
	}
}

func TestNegativeFluxFinite(t *testing.T) {
	m := lupt.Luptitude(-3., lupt.G)
	assert.False(t, math.IsNaN(m) || math.IsInf(m, 0))
	assert.Greater(t, m, lupt.Luptitude(0., lupt.G))
}

func TestMagnitudes(t *testing.T) {
	fm := &lupt.Flux[float64]{
		MagType: lupt.Model,
		Flux: map[lupt.Band][]float64{
			lupt.G: {0, 100},
			lupt.R: {0, 100},
		},
		Extinction: map[lupt.Band][]float64{
			lupt.G: {.1, .2},
			lupt.R: {.05, .05},
		},
	}
	mags, err := lupt.Magnitudes(fm, []lupt.Band{lupt.G, lupt.R}, false)
	require.NoError(t, err)
	require.Len(t, mags, 2)
	assert.InDelta(t, 17.5, mags["modelmag_r"][1], 1e-5)

	dered, err := lupt.Magnitudes(fm, []lupt.Band{lupt.G, lupt.R}, true)
	require.NoError(t, err)
	assert.InDelta(t, mags["modelmag_g"][1]-.2, dered["modelmag_g"][1], 1e-12)
	assert.InDelta(t, mags["modelmag_r"][0]-.05, dered["modelmag_r"][0], 1e-12)
}

func TestMissingExtinction(t *testing.T) {
	fm := &lupt.Flux[float64]{
		MagType: lupt.CModel,
		Flux:    map[lupt.Band][]float64{lupt.I: {1, 2, 3}},
	}
	mags, err := lupt.Magnitudes(fm, []lupt.Band{lupt.I}, true)
	assert.Nil(t, mags)
	var mf *lupt.MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "extinction_i", mf.Field)
}

func TestMissingBand(t *testing.T) {
	fm := &lupt.Flux[float64]{
		MagType: lupt.PSF,
		Flux:    map[lupt.Band][]float64{lupt.I: {1}},
	}
	mags, err := lupt.Magnitudes(fm, nil, false)
	assert.Nil(t, mags)
	var mf *lupt.MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "psfflux_u", mf.Field)
}

func TestLengthMismatch(t *testing.T) {
	fm := &lupt.Flux[float64]{
		MagType: lupt.Model,
		Flux:    map[lupt.Band][]float64{lupt.G: {1}, lupt.R: {1, 2}},
	}
	_, err := lupt.Magnitudes(fm, []lupt.Band{lupt.G, lupt.R}, false)
	assert.ErrorIs(t, err, lupt.ErrLength)
}

func TestFloat32(t *testing.T) {
	fm := &lupt.Flux[float32]{
		MagType: lupt.Fiber2,
		Flux:    map[lupt.Band][]float32{lupt.I: {0, 10}},
	}
	mags, err := lupt.Magnitudes(fm, []lupt.Band{lupt.I}, false)
	require.NoError(t, err)
	var m []float32 = mags["fiber2mag_i"]
	require.Len(t, m, 2)
	assert.InDelta(t, 24.3618, float64(m[0]), 1e-4)
}

func TestParse(t *testing.T) {
	b, err := lupt.ParseBands("GRIi")
	require.NoError(t, err)
	assert.Equal(t, []lupt.Band{lupt.G, lupt.R, lupt.I}, b)
	_, err = lupt.ParseBands("grx")
	assert.Error(t, err)

	m, ok := lupt.ParseMagType("cModel")
	assert.True(t, ok)
	assert.Equal(t, lupt.CModel, m)
	_, ok = lupt.ParseMagType("petro")
	assert.False(t, ok)
	assert.Equal(t, "cmodelmag_z", m.Label(lupt.Z))
}

func TestUnknownBand(t *testing.T) {
	assert.True(t, math.IsNaN(lupt.Luptitude(100., lupt.Band("y"))))
	assert.True(t, math.IsNaN(float64(lupt.Luptitude(float32(0), lupt.Band("")))))

	fm := &lupt.Flux[float64]{MagType: lupt.Model,
		Flux: map[lupt.Band][]float64{"y": {100}}}
	m, err := lupt.Magnitudes(fm, []lupt.Band{"y"}, false)
	assert.Nil(t, m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown band")
}
