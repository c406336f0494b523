// Public domain.

package photprog

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/soniakeys/exit"

	"github.com/soniakeys/sdssphot/internal/catalog"
	"github.com/soniakeys/sdssphot/internal/lupt"
	"github.com/soniakeys/sdssphot/internal/photlog"
	"github.com/soniakeys/sdssphot/internal/store"
	"github.com/soniakeys/sdssphot/internal/target"
)

const versionString = "sdssphot version 0.3 Go source."
const copyrightString = "Public domain."

const defaultConfigFile = "sdssphot.config"

func Main() {
	defer exit.Handler()

	// these functions terminate on error
	cl := parseCommandLine()
	cfg := loadConfig(cl)

	log := photlog.New(os.Stderr, cfg.level, cfg.json)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src := cl.fnIn
	if src == "-" {
		src = "input stream"
	}
	log = log.WithSource(src)
	t, err := readTable(cl.fnIn)
	if err != nil {
		log.LogRead(ctx, 0, 0, err)
		exit.Log(err)
	}
	log.LogRead(ctx, t.Len(), len(t.Columns()), nil)

	var db *store.DB
	if cl.out != "" {
		if db, err = store.New(cl.out); err != nil {
			exit.Log(err)
		}
		defer db.Close()
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	if err := run(ctx, cfg, t, w, db, src, cl.workers, log); err != nil {
		exit.Log(err)
	}
}

func readTable(fn string) (*catalog.Table, error) {
	if fn == "-" {
		return catalog.Read(os.Stdin)
	}
	return catalog.ReadFile(fn)
}

type commandLine struct {
	dc      string // config file
	out     string // sqlite file
	workers int
	fnIn    string // photometry table
}

func parseCommandLine() *commandLine {
	var cl commandLine
	dh := flag.Bool("h", false, "")
	dv := flag.Bool("v", false, "")
	flag.StringVar(&cl.dc, "c", "", "")
	flag.StringVar(&cl.out, "o", "", "")
	flag.IntVar(&cl.workers, "j", runtime.GOMAXPROCS(0), "")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: sdssphot [options] <table>    process photometry table in file
       sdssphot [options] -          process photometry table from stdin
       sdssphot -h                   display help and quick reference
       sdssphot -v                   display version and copyright

Options:
       -c <config-file>
       -o <sqlite-file>
       -j <workers>
`)
	}
	flag.Parse()
	switch {
	case *dh:
		printHelp()
		os.Exit(0)
	case *dv:
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	case flag.NArg() != 1:
		flag.Usage()
		os.Exit(1)
	}
	cl.fnIn = flag.Arg(0)
	return &cl
}

// loadConfig reads the config file named with -c, or sdssphot.config in
// the current directory if present.  Without either, defaults are used.
func loadConfig(cl *commandLine) *config {
	fn := cl.dc
	if fn == "" {
		fn = defaultConfigFile
	}
	f, err := os.Open(fn)
	if err != nil {
		if cl.dc == "" {
			return defaultConfig()
		}
		exit.Log(err)
	}
	defer f.Close()
	cfg, err := readConfig(f)
	if err != nil {
		exit.Log(err)
	}
	return cfg
}

func printHelp() {
	fmt.Println(`
Sdssphot derives features from SDSS photometric catalog rows.  Input is a
CSV table of fluxes as exported from SkyServer, optionally compressed.
Output is a CSV table of photometric object identifiers, asinh magnitudes,
auxiliary colors, and BOSS target selection flags, one line per input row.

Config file keywords:
   headings
   noheadings
   objid
   noobjid
   specobjid
   nospecobjid
   litepath
   colors
   nocolors
   deredden
   noderedden
   noselect
   check
   json
   bands=<bands>
   loglevel=<level>
   cone=<ra> <dec> <radius>

Magnitude types:`)
	for _, mt := range lupt.MagTypes {
		fmt.Printf("   %s\n", mt)
	}
	fmt.Println(`
Target classes:`)
	for _, c := range target.CList {
		fmt.Printf("   %-5s  %s\n", c.Abbr, c.Heading)
	}
	fmt.Println(`
For full documentation:
   go doc github.com/soniakeys/sdssphot`)
}
