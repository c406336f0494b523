/*
Command sdssphot derives features from SDSS photometric catalog rows:
photometric object identifiers, asinh magnitudes, auxiliary colors, and
BOSS galaxy target selection.

Contents

  Program overview
  Command line usage
  File formats
  Algorithm outline


Program overview

Input is a CSV table of photometry as returned by the SDSS SkyServer or
CasJobs, one object per line.  Output is a CSV table with one line per
input line, in input order.

Sample run:

Here are three objects with identification fields and model fluxes in
nanomaggies.

  #Table1
  rerun,run,camcol,field,id,modelflux_g,modelflux_r,modelflux_i
  301,6122,1,13,1,10.512,25.119,39.811
  301,756,3,200,77,36.308,131.83,190.55
  301,94,6,30,12,1.5849,1.5849,1.5849

You put them in a file, say phot.csv, and a config file sdssphot.config
containing the line "bands=gri".  Then type "sdssphot phot.csv" and get the
following output:

  row,objid,modelmag_g,modelmag_r,modelmag_i,c_par,c_perp,d_perp
  0,1237671766924263425,19.9457,19.0000,18.5000,1.0460,0.0836,0.3818
  1,1237648721215750221,18.6000,17.2000,16.8000,1.2440,-0.1300,0.2250
  2,1237645879546871820,21.9965,21.9938,21.9863,-0.2050,-0.1731,0.0072

Column objid is the 64 bit SDSS object identifier packed from rerun, run,
camcol, field, and id.  Magnitude columns are asinh magnitudes, or
"luptitudes," which are well behaved at zero and negative flux.  The last
three columns are the auxiliary colors used by BOSS target selection.  When
the input also has cmodel, psf, and fiber2 fluxes, columns LOWZ and CMASS
show 1 for objects passing the BOSS LOWZ and CMASS galaxy cuts.


Command line usage

Invoking the program without command line arguments (or with invalid
arguments) shows this usage prompt.

  Usage: sdssphot [options] <table>    process photometry table in file
         sdssphot [options] -          process photometry table from stdin
         sdssphot -h                   display help and quick reference
         sdssphot -v                   display version and copyright

  Options:
         -c <config-file>
         -o <sqlite-file>
         -j <workers>

The help information lists a quick reference to keywords, magnitude types,
and target classes allowed in the configuration file.

Without -c, sdssphot reads sdssphot.config from the current directory if it
exists.  A configuration file is required to be present if -c is used.

With -o, results are also stored in a SQLite database, created if needed.
Each invocation is recorded as a run with a unique id.

Option -j limits the number of rows processed concurrently, in chunks.  The
default is the number of CPUs.  Output order does not depend on it.

Log messages go to stderr.


File formats

The input table is CSV with a header line.  Lines starting with # are
ignored, as are blank lines.  Column names are matched without regard to
case.  The input may be compressed with gzip, zstd, or lz4; compression is
recognized from the content, not the file name.

Flux columns are named <type>flux_<band>, for example psfflux_r, with flux
in nanomaggies.  Extinction columns are named extinction_<band>.  Object
identification uses columns rerun, run, camcol, field, and id (or obj).
Cones use columns ra and dec in degrees.  The check keyword uses column
boss_target1.

The configuration file is a text file with a simple format.  Empty lines
and lines beginning with # are ignored.  Other lines must contain a
keyword, a magnitude type, or a target class.

Allowable keywords:

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

Objid, specobjid, colors, dereddening, and target selection are on by
default but are skipped with a warning if the input lacks the columns they
need.  Naming one in the configuration file makes its columns required.

Specobjid packs the 64 bit SDSS spectroscopic object identifier from
columns plate, mjd, fiberid, and run2d.  Run2d may be an integer such as 26
or a version such as v5_7_0.  Litepath adds the path of each spectrum's lite
file relative to its reduction directory, for example
spectra/lite/0266/spec-0266-51630-0003.fits.

Magnitude types select the magnitude columns output.  They are model, dev,
exp, psf, fiber2, and cmodel.  The default is model.  Bands=, for example
bands=gri, selects bands.  The default is all five, ugriz.

Target classes, LOWZ and CMASS, select selection columns.  The default is
both.  Noselect turns selection off.

Check compares the selection to the boss_target1 column of the input and
logs a confusion matrix and Matthews correlation coefficient for each class.

Cone=, for example cone=180 0 30, keeps only rows within radius arc minutes
of the position ra, dec in degrees.  Row numbers in output are still input
row numbers.

Json writes log messages as JSON.  Loglevel= is one of debug, info, warn,
or error.


Algorithm outline

1.  Object identifiers are validated over the whole table before any output.
One value out of range, for example camcol 7, is an error for the run.

2.  Asinh magnitudes use the SDSS softening parameters b per band,

   m = -2.5/ln(10) * (asinh(f/2b) + ln(b))

with f the flux in maggies.  When dereddening, the band's extinction is
subtracted from the magnitude.

3.  Auxiliary colors are computed from model magnitudes,

   c_par  = 0.7(g-r) + 1.2(r-i-0.18)
   c_perp = (r-i) - (g-r)/4 - 0.18
   d_perp = (r-i) - (g-r)/8

4.  The LOWZ and CMASS cuts of BOSS are applied with dereddened model and
cmodel magnitudes, and psf and fiber2 magnitudes as observed.

-------------
Public domain.
*/
package main
