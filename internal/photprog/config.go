// Public domain.

package photprog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"

	"github.com/soniakeys/sdssphot/internal/lupt"
	"github.com/soniakeys/sdssphot/internal/photlog"
	"github.com/soniakeys/sdssphot/internal/sky"
	"github.com/soniakeys/sdssphot/internal/target"
)

// feature is a default-on computation.  Left at default it is skipped
// quietly when its input columns are absent; once named in the config
// file its inputs are required.
type feature struct {
	on, required bool
}

func (f *feature) set(on bool) {
	f.on = on
	f.required = on
}

type config struct {
	headings bool
	objid    feature
	specID   feature
	litePath bool
	colors   feature
	classes  feature
	deredden feature
	check    bool
	json     bool
	level    slog.Level

	bands       []lupt.Band
	magTypes    []lupt.MagType
	classColumn []int // CList indexes
	cone        *sky.Cone
}

func defaultConfig() *config {
	c := &config{
		headings: true,
		objid:    feature{on: true},
		specID:   feature{on: true},
		colors:   feature{on: true},
		classes:  feature{on: true},
		deredden: feature{on: true},
		level:    slog.LevelInfo,
		bands:    lupt.Bands,
		magTypes: []lupt.MagType{lupt.Model},
	}
	for cx := range target.CList {
		c.classColumn = append(c.classColumn, cx)
	}
	return c
}

var rxKeyValue = regexp.MustCompile(`^[ \t]*([a-z]+)[ \t]*=[ \t]*(.+?)[ \t]*$`)

// readConfig parses a config file.  Blank lines and lines starting with #
// are ignored.  Other lines hold a keyword, a magnitude type, or a class.
func readConfig(r io.Reader) (*config, error) {
	c := defaultConfig()
	var magSpec, classSpec bool
	sc := bufio.NewScanner(r)
	for ln := 1; sc.Scan(); ln++ {
		ls := strings.TrimSpace(sc.Text())
		if ls == "" || ls[0] == '#' {
			continue
		}
		if err := c.line(ls, &magSpec, &classSpec); err != nil {
			return nil, fmt.Errorf("%w\nConfig file line %d: %s", err, ln, ls)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *config) line(ls string, magSpec, classSpec *bool) error {
	switch ls {
	case "headings":
		c.headings = true
		return nil
	case "noheadings":
		c.headings = false
		return nil
	case "objid":
		c.objid.set(true)
		return nil
	case "noobjid":
		c.objid.set(false)
		return nil
	case "specobjid":
		c.specID.set(true)
		return nil
	case "nospecobjid":
		c.specID.set(false)
		c.litePath = false
		return nil
	case "litepath":
		c.specID.set(true)
		c.litePath = true
		return nil
	case "colors":
		c.colors.set(true)
		return nil
	case "nocolors":
		c.colors.set(false)
		return nil
	case "deredden":
		c.deredden.set(true)
		return nil
	case "noderedden":
		c.deredden.set(false)
		return nil
	case "noselect":
		c.classes.set(false)
		c.classColumn = nil
		return nil
	case "check":
		c.check = true
		return nil
	case "json":
		c.json = true
		return nil
	}
	if m := rxKeyValue.FindStringSubmatch(ls); m != nil {
		return c.keyValue(m[1], m[2])
	}
	if mt, ok := lupt.ParseMagType(ls); ok {
		if !*magSpec {
			*magSpec = true
			c.magTypes = nil
		}
		for _, m := range c.magTypes {
			if m == mt {
				return nil
			}
		}
		c.magTypes = append(c.magTypes, mt)
		return nil
	}
	if cx, ok := target.Class(ls); ok {
		if !*classSpec {
			*classSpec = true
			c.classColumn = nil
		}
		c.classes.set(true)
		c.classColumn = append(c.classColumn, cx)
		return nil
	}
	return errors.New("Unrecognized line in config file.")
}

func (c *config) keyValue(k, v string) (err error) {
	switch k {
	case "bands":
		c.bands, err = lupt.ParseBands(v)
	case "loglevel":
		c.level, err = photlog.ParseLevel(v)
	case "cone":
		c.cone, err = parseCone(v)
	default:
		err = fmt.Errorf("Unknown keyword %q.", k)
	}
	return
}

// parseCone parses "ra dec radius", ra and dec in degrees, radius in
// arc minutes.
func parseCone(s string) (*sky.Cone, error) {
	f := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(f) != 3 {
		return nil, errors.New("Cone requires ra, dec, and radius.")
	}
	var v [3]float64
	for i, fs := range f {
		var err error
		if v[i], err = strconv.ParseFloat(fs, 64); err != nil {
			return nil, err
		}
	}
	switch {
	case v[0] < 0 || v[0] >= 360:
		return nil, errors.New("Cone ra must be in [0, 360).")
	case v[1] < -90 || v[1] > 90:
		return nil, errors.New("Cone dec must be in [-90, 90].")
	case v[2] <= 0:
		return nil, errors.New("Cone radius must be positive.")
	}
	return sky.NewCone(sky.FromDeg(v[0], v[1]), unit.AngleFromMin(v[2])), nil
}
