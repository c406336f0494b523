// Public domain.

package photprog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/soniakeys/sdssphot/internal/catalog"
	"github.com/soniakeys/sdssphot/internal/lupt"
	"github.com/soniakeys/sdssphot/internal/objid"
	"github.com/soniakeys/sdssphot/internal/photlog"
	"github.com/soniakeys/sdssphot/internal/specid"
	"github.com/soniakeys/sdssphot/internal/store"
	"github.com/soniakeys/sdssphot/internal/target"
)

// rows per unit of work
const chunkSize = 4096

// chunk holds results for rows lo through hi-1 of the working table.
type chunk struct {
	lo, hi int
	mags   lupt.Mags[float64]
	aux    *target.Aux[float64]
	sel    []*roaring.Bitmap // chunk-relative row indexes
}

type runner struct {
	cfg     *config
	log     *photlog.Logger
	workers int

	labels  []string // output magnitude labels, in order
	classes []int
	objIDs  []uint64 // nil if not computed
	specIDs []uint64 // nil if not computed

	// dereddening, per consumer of magnitudes
	drMags, drColors, drSelect bool
}

// run processes table t and writes results as CSV to w, in input order.
// If db is not nil results are also stored there.
func run(ctx context.Context, cfg *config, t *catalog.Table, w io.Writer,
	db *store.DB, source string, workers int, log *photlog.Logger) error {
	r := &runner{cfg: cfg, log: log, workers: max(workers, 1)}

	// row numbers in the input table, kept through filtering
	rowNum := make([]int, t.Len())
	for i := range rowNum {
		rowNum[i] = i
	}
	if cfg.cone != nil {
		ps, err := catalog.Positions(t)
		if err != nil {
			return fmt.Errorf("cone: %w", err)
		}
		rowNum = cfg.cone.Within(ps)
		t = t.Filter(rowNum)
		log.InfoContext(ctx, "cone applied",
			"center", cfg.cone.Center.String(),
			"radius", fmt.Sprintf("%.2f'", cfg.cone.Radius.Deg()*60),
			"rows", t.Len())
	}

	// identifiers are validated over the whole table before anything is
	// written.
	if cfg.objid.on {
		var err error
		if r.objIDs, err = objIDs(t); err != nil {
			if serr := skip(cfg.objid, err); serr != nil {
				return serr
			}
			log.WarnContext(ctx, "objid skipped", "error", err)
		}
	}
	if cfg.specID.on {
		var err error
		if r.specIDs, err = specIDs(t); err != nil {
			if serr := skip(cfg.specID, err); serr != nil {
				return serr
			}
			log.WarnContext(ctx, "specobjid skipped", "error", err)
		}
	}
	if err := r.probe(ctx, t); err != nil {
		return err
	}

	chunks, err := r.process(ctx, t)
	if err != nil {
		return err
	}

	sel := make([]*roaring.Bitmap, len(r.classes))
	for x := range sel {
		sel[x] = roaring.New()
		for _, c := range chunks {
			for _, i := range c.sel[x].ToArray() {
				sel[x].Add(i + uint32(c.lo))
			}
		}
		log.LogSelection(ctx, target.CList[r.classes[x]].Abbr,
			int(sel[x].GetCardinality()), t.Len())
	}
	if cfg.check {
		if err := r.checkTargets(ctx, t, sel); err != nil {
			return err
		}
	}

	// output is written only once results are stored
	if db != nil {
		if err := r.store(ctx, db, source, chunks, rowNum); err != nil {
			return err
		}
	}
	return r.write(w, chunks, rowNum)
}

// skip returns nil if err is a missing column of a feature left at its
// default, err otherwise.
func skip(f feature, err error) error {
	var mf *lupt.MissingFieldError
	if f.required || !errors.As(err, &mf) {
		return err
	}
	return nil
}

func objIDs(t *catalog.Table) ([]uint64, error) {
	rerun, run, camcol, field, id, err := catalog.ObjIDFields(t)
	if err != nil {
		return nil, err
	}
	return objid.Encode(rerun, run, camcol, field, id)
}

func specIDs(t *catalog.Table) ([]uint64, error) {
	plate, mjd, fiber, run2d, err := catalog.SpecFields(t)
	if err != nil {
		return nil, err
	}
	return specid.Encode(plate, mjd, fiber, run2d)
}

// probe settles which optional outputs can be computed from t.
func (r *runner) probe(ctx context.Context, t *catalog.Table) error {
	cfg := r.cfg
	for _, mt := range cfg.magTypes {
		for _, b := range cfg.bands {
			r.labels = append(r.labels, mt.Label(b))
		}
	}
	r.drMags = cfg.deredden.on
	r.drColors = cfg.deredden.on
	r.drSelect = cfg.deredden.on
	if cfg.deredden.on && !cfg.deredden.required {
		r.drMags = r.extinction(ctx, t, "magnitudes", cfg.bands)
		if cfg.colors.on {
			r.drColors = r.extinction(ctx, t, "colors", gri)
		}
		if cfg.classes.on && len(cfg.classColumn) > 0 {
			r.drSelect = r.extinction(ctx, t, "selection", target.DereddenBands())
		}
	}
	head := t.Slice(0, 0)
	for _, mt := range cfg.magTypes {
		if _, err := catalog.Flux[float64](head, mt, cfg.bands, r.drMags); err != nil {
			return err
		}
	}
	if cfg.colors.on {
		if _, err := r.colors(head); err != nil {
			if serr := skip(cfg.colors, err); serr != nil {
				return serr
			}
			r.log.WarnContext(ctx, "colors skipped", "error", err)
			cfg.colors.on = false
		}
	}
	if cfg.classes.on && len(cfg.classColumn) > 0 {
		if _, err := r.selectionRows(head); err != nil {
			if serr := skip(cfg.classes, err); serr != nil {
				return serr
			}
			r.log.WarnContext(ctx, "target selection skipped", "error", err)
			cfg.classes.on = false
		}
	}
	if cfg.classes.on {
		r.classes = cfg.classColumn
	}
	return nil
}

// process computes all chunks with a bounded group of workers.
func (r *runner) process(ctx context.Context, t *catalog.Table) ([]*chunk, error) {
	n := t.Len()
	chunks := make([]*chunk, 0, (n+chunkSize-1)/chunkSize)
	for lo := 0; lo < n; lo += chunkSize {
		chunks = append(chunks, &chunk{lo: lo, hi: min(lo+chunkSize, n)})
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, c := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.solve(t.Slice(c.lo, c.hi), c); err != nil {
				return fmt.Errorf("rows %d-%d: %w", c.lo, c.hi-1, err)
			}
			r.log.LogChunk(ctx, c.lo, c.hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *runner) solve(t *catalog.Table, c *chunk) error {
	c.mags = lupt.Mags[float64]{}
	for _, mt := range r.cfg.magTypes {
		fm, err := catalog.Flux[float64](t, mt, r.cfg.bands, r.drMags)
		if err != nil {
			return err
		}
		m, err := lupt.Magnitudes(fm, r.cfg.bands, r.drMags)
		if err != nil {
			return err
		}
		c.mags.Merge(m)
	}
	if r.cfg.colors.on {
		aux, err := r.colors(t)
		if err != nil {
			return err
		}
		c.aux = aux
	}
	if len(r.classes) > 0 {
		rows, err := r.selectionRows(t)
		if err != nil {
			return err
		}
		c.sel = target.Select(rows, r.classes)
	}
	return nil
}

var gri = []lupt.Band{lupt.G, lupt.R, lupt.I}

// extinction reports whether t has extinction columns for all of bands.
// If not, a warning names the first missing column.
func (r *runner) extinction(ctx context.Context, t *catalog.Table, what string, bands []lupt.Band) bool {
	for _, b := range bands {
		if x := lupt.ExtinctionLabel(b); !t.Has(x) {
			r.log.WarnContext(ctx, "dereddening skipped", "for", what, "missing", x)
			return false
		}
	}
	return true
}

func (r *runner) colors(t *catalog.Table) (*target.Aux[float64], error) {
	fm, err := catalog.Flux[float64](t, lupt.Model, gri, r.drColors)
	if err != nil {
		return nil, err
	}
	m, err := lupt.Magnitudes(fm, gri, r.drColors)
	if err != nil {
		return nil, err
	}
	return target.Colors(m)
}

func (r *runner) selectionRows(t *catalog.Table) ([]target.Row, error) {
	m := lupt.Mags[float64]{}
	for _, n := range target.Needs {
		dr := n.Deredden && r.drSelect
		fm, err := catalog.Flux[float64](t, n.MagType, n.Bands, dr)
		if err != nil {
			return nil, err
		}
		nm, err := lupt.Magnitudes(fm, n.Bands, dr)
		if err != nil {
			return nil, err
		}
		m.Merge(nm)
	}
	return target.Rows(m)
}

func (r *runner) checkTargets(ctx context.Context, t *catalog.Table, sel []*roaring.Bitmap) error {
	flags, err := t.Int64("boss_target1")
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	for x, cx := range r.classes {
		c := target.Compare(sel[x], flags, cx)
		r.log.LogCheck(ctx, target.CList[cx].Abbr, c.TP, c.FN, c.FP, c.TN, c.MCC())
	}
	return nil
}

func formatMag(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func (r *runner) write(w io.Writer, chunks []*chunk, rowNum []int) error {
	cw := csv.NewWriter(w)
	litePath := r.cfg.litePath && r.specIDs != nil
	if r.cfg.headings {
		head := []string{"row"}
		if r.objIDs != nil {
			head = append(head, "objid")
		}
		if r.specIDs != nil {
			head = append(head, "specobjid")
		}
		if litePath {
			head = append(head, "litepath")
		}
		head = append(head, r.labels...)
		if r.cfg.colors.on {
			head = append(head, "c_par", "c_perp", "d_perp")
		}
		for _, cx := range r.classes {
			head = append(head, target.CList[cx].Abbr)
		}
		if err := cw.Write(head); err != nil {
			return err
		}
	}
	var rec []string
	for _, c := range chunks {
		for i := c.lo; i < c.hi; i++ {
			j := i - c.lo
			rec = append(rec[:0], strconv.Itoa(rowNum[i]))
			if r.objIDs != nil {
				rec = append(rec, strconv.FormatUint(r.objIDs[i], 10))
			}
			if r.specIDs != nil {
				rec = append(rec, strconv.FormatUint(r.specIDs[i], 10))
			}
			if litePath {
				rec = append(rec, specid.Decode(r.specIDs[i]).LitePath())
			}
			for _, l := range r.labels {
				rec = append(rec, formatMag(c.mags[l][j]))
			}
			if c.aux != nil {
				rec = append(rec, formatMag(c.aux.CPar[j]),
					formatMag(c.aux.CPerp[j]), formatMag(c.aux.DPerp[j]))
			}
			for x := range r.classes {
				if c.sel[x].Contains(uint32(j)) {
					rec = append(rec, "1")
				} else {
					rec = append(rec, "0")
				}
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func (r *runner) store(ctx context.Context, db *store.DB, source string,
	chunks []*chunk, rowNum []int) error {
	objs := make([]store.Object, len(rowNum))
	for _, c := range chunks {
		for i := c.lo; i < c.hi; i++ {
			j := i - c.lo
			o := &objs[i]
			o.Row = rowNum[i]
			if r.objIDs != nil {
				o.ObjID = r.objIDs[i]
			}
			if r.specIDs != nil {
				o.SpecObjID = r.specIDs[i]
			}
			o.Mags = make(map[string]float64, len(r.labels))
			for _, l := range r.labels {
				o.Mags[l] = c.mags[l][j]
			}
			if c.aux != nil {
				o.Colors = &[3]float64{c.aux.CPar[j], c.aux.CPerp[j], c.aux.DPerp[j]}
			}
			for x, cx := range r.classes {
				if c.sel[x].Contains(uint32(j)) {
					o.Targets |= 1 << target.CList[cx].Bit
				}
			}
		}
	}
	runID, err := db.WriteRun(ctx, source, objs)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	r.log.WithRun(runID).InfoContext(ctx, "results stored", "rows", len(objs))
	return nil
}
