// Public domain.

package catalog_test

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniakeys/sdssphot/internal/catalog"
	"github.com/soniakeys/sdssphot/internal/lupt"
)

const skyServerCSV = `#Table1
objID,ra,dec,rerun,run,camcol,field,obj,modelFlux_g,modelFlux_r,extinction_g,extinction_r
1237671766924263425,150.1,2.2,301,6122,1,13,1,12.5,30.1,0.1,0.07
1237671766924263426,150.2,2.3,301,6122,1,13,2,-0.4,0.8,0.12,0.08
`

func TestReadCSV(t *testing.T) {
	tb, err := catalog.ReadCSV(strings.NewReader(skyServerCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, tb.Len())
	assert.Len(t, tb.Columns(), 12)
	assert.True(t, tb.Has("MODELFLUX_G"))
	assert.False(t, tb.Has("psfFlux_g"))

	run, err := tb.Int64("run")
	require.NoError(t, err)
	assert.Equal(t, []int64{6122, 6122}, run)

	rerun, runs, camcol, field, id, err := catalog.ObjIDFields(tb)
	require.NoError(t, err)
	assert.Equal(t, []int64{301, 301}, rerun)
	assert.Equal(t, run, runs)
	assert.Equal(t, []int64{1, 1}, camcol)
	assert.Equal(t, []int64{13, 13}, field)
	assert.Equal(t, []int64{1, 2}, id)

	ps, err := catalog.Positions(tb)
	require.NoError(t, err)
	assert.InDelta(t, 2.3, ps[1].Dec.Deg(), 1e-12)
}

func TestRagged(t *testing.T) {
	_, err := catalog.ReadCSV(strings.NewReader("a,b\n1,2\n3\n"))
	var pe *csv.ParseError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, csv.ErrFieldCount)

	_, err = catalog.ReadCSV(strings.NewReader("#Table1\n"))
	assert.Error(t, err)
}

func TestBadValue(t *testing.T) {
	tb, err := catalog.ReadCSV(strings.NewReader("rerun,x\n301,1\nv5,2\n"))
	require.NoError(t, err)
	_, err = tb.Int64("rerun")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestFlux(t *testing.T) {
	tb, err := catalog.ReadCSV(strings.NewReader(skyServerCSV))
	require.NoError(t, err)
	bands := []lupt.Band{lupt.G, lupt.R}

	fm, err := catalog.Flux[float64](tb, lupt.Model, bands, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{12.5, -.4}, fm.Flux[lupt.G])
	assert.Equal(t, []float64{.07, .08}, fm.Extinction[lupt.R])

	f32, err := catalog.Flux[float32](tb, lupt.Model, bands, false)
	require.NoError(t, err)
	assert.Equal(t, []float32{30.1, .8}, f32.Flux[lupt.R])
	assert.Nil(t, f32.Extinction)

	_, err = catalog.Flux[float64](tb, lupt.Model, nil, false)
	var mf *lupt.MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "modelflux_u", mf.Field)

	_, err = catalog.Flux[float64](tb, lupt.PSF, bands, false)
	require.ErrorAs(t, err, &mf)
}

func TestSliceFilter(t *testing.T) {
	tb, err := catalog.ReadCSV(strings.NewReader("a,b\n1,x\n2,y\n3,z\n"))
	require.NoError(t, err)
	s := tb.Slice(1, 3)
	assert.Equal(t, 2, s.Len())
	b, err := s.Strings("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "z"}, b)

	f := tb.Filter([]int{2, 0})
	a, err := f.Int64("a")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, a)

	var buf bytes.Buffer
	require.NoError(t, catalog.WriteCSV(&buf, f))
	assert.Equal(t, "a,b\n3,z\n1,x\n", buf.String())
}

func TestNew(t *testing.T) {
	_, err := catalog.New([]string{"a", "A"}, [][]string{{"1"}, {"2"}})
	assert.Error(t, err)
	_, err = catalog.New([]string{"a", "b"}, [][]string{{"1"}, {}})
	assert.Error(t, err)
}

func TestDecompress(t *testing.T) {
	for name, wrap := range map[string]func(io.Writer) io.WriteCloser{
		"plain": func(w io.Writer) io.WriteCloser { return nopWriteCloser{w} },
		"gzip":  func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) },
		"zstd": func(w io.Writer) io.WriteCloser {
			zw, err := zstd.NewWriter(w)
			require.NoError(t, err)
			return zw
		},
		"lz4": func(w io.Writer) io.WriteCloser { return lz4.NewWriter(w) },
	} {
		t.Run(name, func(t *testing.T) {
			fn := filepath.Join(t.TempDir(), "photo.csv")
			f, err := os.Create(fn)
			require.NoError(t, err)
			w := wrap(f)
			_, err = io.WriteString(w, skyServerCSV)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			require.NoError(t, f.Close())

			tb, err := catalog.ReadFile(fn)
			require.NoError(t, err)
			assert.Equal(t, 2, tb.Len())
			id, err := tb.Strings("objid")
			require.NoError(t, err)
			assert.Equal(t, "1237671766924263426", id[1])
		})
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func TestSpecFields(t *testing.T) {
	tb, err := catalog.ReadCSV(strings.NewReader(`plate,mjd,fiber,run2d
1678,53433,425,26
266,51630,3,v5_7_0
`))
	require.NoError(t, err)
	plate, mjd, fiber, run2d, err := catalog.SpecFields(tb)
	require.NoError(t, err)
	assert.Equal(t, []int64{1678, 266}, plate)
	assert.Equal(t, []int64{53433, 51630}, mjd)
	assert.Equal(t, []int64{425, 3}, fiber)
	assert.Equal(t, []int64{26, 700}, run2d)

	tb, err = catalog.ReadCSV(strings.NewReader("plate,mjd,fiberid,run2d\n266,51630,3,v4_1_0\n"))
	require.NoError(t, err)
	_, _, _, _, err = catalog.SpecFields(tb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run2d row 0")

	tb, err = catalog.ReadCSV(strings.NewReader("plate,mjd,run2d\n266,51630,26\n"))
	require.NoError(t, err)
	_, _, _, _, err = catalog.SpecFields(tb)
	var mf *lupt.MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "fiberid", mf.Field)
}
