// Public domain.

package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniakeys/sdssphot/internal/store"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := store.New(filepath.Join(t.TempDir(), "out", "phot.db"))
	require.NoError(t, err)
	defer db.Close()

	run, err := db.BeginRun(ctx, "photo.csv")
	require.NoError(t, err)
	require.NotEmpty(t, run)

	objs := []store.Object{
		{Row: 0, ObjID: 1237671766924263425,
			Mags:    map[string]float64{"modelmag_g": 20, "modelmag_r": 19},
			Colors:  &[3]float64{1.084, .07, .375},
			Targets: 2},
		{Row: 1, ObjID: 1729382256104964095, Targets: 1,
			SpecObjID: 18446744073709550592},
		{Row: 2},
	}
	require.NoError(t, db.InsertObjects(ctx, run, objs))

	n, err := db.CountObjects(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = db.TargetCount(ctx, run, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	mags, err := db.Lookup(ctx, run, 1237671766924263425)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"modelmag_g": 20, "modelmag_r": 19}, mags)

	row, err := db.LookupSpec(ctx, run, 18446744073709550592)
	require.NoError(t, err)
	assert.Equal(t, 1, row)

	// a second run does not collide
	run2, err := db.BeginRun(ctx, "photo.csv")
	require.NoError(t, err)
	assert.NotEqual(t, run, run2)
	require.NoError(t, db.InsertObjects(ctx, run2, objs[:1]))
	n, err = db.CountObjects(ctx, run2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	runs, err := db.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, run, runs[0].ID)
	assert.Equal(t, run2, runs[1].ID)
	assert.Equal(t, "photo.csv", runs[1].Source)
	assert.False(t, runs[0].Created.IsZero())
}

func TestDuplicateRowRollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := store.New(filepath.Join(t.TempDir(), "phot.db"))
	require.NoError(t, err)
	defer db.Close()

	run, err := db.BeginRun(ctx, "-")
	require.NoError(t, err)
	err = db.InsertObjects(ctx, run, []store.Object{{Row: 4}, {Row: 4}})
	require.Error(t, err)
	n, err := db.CountObjects(ctx, run)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWriteRun(t *testing.T) {
	ctx := context.Background()
	db, err := store.New(filepath.Join(t.TempDir(), "phot.db"))
	require.NoError(t, err)
	defer db.Close()

	run, err := db.WriteRun(ctx, "photo.csv", []store.Object{
		{Row: 0, ObjID: 1237671766924263425, Targets: 1,
			Mags: map[string]float64{"modelmag_r": 19}},
		{Row: 1},
	})
	require.NoError(t, err)
	n, err := db.CountObjects(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	mags, err := db.Lookup(ctx, run, 1237671766924263425)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"modelmag_r": 19}, mags)
	runs, err := db.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run, runs[0].ID)
}

func TestWriteRunLeavesNothingOnError(t *testing.T) {
	ctx := context.Background()
	db, err := store.New(filepath.Join(t.TempDir(), "phot.db"))
	require.NoError(t, err)
	defer db.Close()

	// failure after the run row is inserted
	run, err := db.WriteRun(ctx, "dup.csv", []store.Object{{Row: 0}, {Row: 1}, {Row: 1}})
	require.Error(t, err)
	assert.Empty(t, run)

	// canceled, as by an interrupt
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = db.WriteRun(cctx, "canceled.csv", []store.Object{{Row: 0}})
	require.ErrorIs(t, err, context.Canceled)

	runs, err := db.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
