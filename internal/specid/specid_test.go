// Public domain.

package specid_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniakeys/sdssphot/internal/specid"
)

func ExampleSpec_LitePath() {
	s := specid.Spec{Plate: 266, MJD: 51630, Fiber: 3}
	fmt.Println(s.LitePath())
	// Output:
	// spectra/lite/0266/spec-0266-51630-0003.fits
}

func TestEncode(t *testing.T) {
	for _, c := range []struct {
		s    specid.Spec
		want uint64
	}{
		{specid.Spec{Plate: 1678, MJD: 53433, Fiber: 425, Run2d: 26}, 1889376924388583424},
		{specid.Spec{Plate: 266, MJD: 51630, Fiber: 3, Run2d: 26}, 299490227200747520},
		{specid.Spec{Plate: 16383, MJD: 66383, Fiber: 4095, Run2d: 16383}, 18446744073709550592},
	} {
		got, err := specid.EncodeSpec(c.s)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
		assert.Equal(t, c.s, specid.Decode(got))
	}
}

func TestRange(t *testing.T) {
	for _, c := range []struct {
		field string
		s     specid.Spec
	}{
		{"mjd", specid.Spec{Plate: 1, MJD: 49999, Fiber: 1}},
		{"mjd", specid.Spec{Plate: 1, MJD: 66384, Fiber: 1}},
		{"plate", specid.Spec{Plate: 1 << 14, MJD: 55000, Fiber: 1}},
		{"fiberid", specid.Spec{Plate: 1, MJD: 55000, Fiber: 0}},
		{"run2d", specid.Spec{Plate: 1, MJD: 55000, Fiber: 1, Run2d: -1}},
	} {
		_, err := specid.EncodeSpec(c.s)
		var re *specid.RangeError
		require.ErrorAs(t, err, &re, "%+v", c.s)
		assert.Equal(t, c.field, re.Field)
	}
	_, err := specid.Encode([]int64{1}, nil, nil, nil)
	assert.ErrorIs(t, err, specid.ErrLength)
}

func TestParseRun2d(t *testing.T) {
	for s, want := range map[string]int64{
		"26":      26,
		"103":     103,
		"v5_7_0":  700,
		"v5_13_2": 1302,
		"v6_0_4":  10004,
	} {
		got, err := specid.ParseRun2d(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	for _, s := range []string{"", "v5_7", "x5_7_0", "v4_1_1", "v5_a_0", "20000"} {
		_, err := specid.ParseRun2d(s)
		assert.Error(t, err, s)
	}
}

func TestObserved(t *testing.T) {
	d := specid.Spec{MJD: 53433}.Observed().Add(time.Minute)
	assert.Equal(t, 2005, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 4, d.Day())
}
