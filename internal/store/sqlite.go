// Public domain.

// Package store persists derived photometry to a local SQLite file.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// Object is one derived catalog row.
type Object struct {
	Row       int    // index in the input table
	ObjID     uint64 // 0 if not computed
	SpecObjID uint64 // 0 if not computed
	Mags      map[string]float64
	Colors    *[3]float64 // c_par, c_perp, d_perp; nil if not computed
	Targets   uint64      // selection bits, as BOSS_TARGET1
}

// New opens or creates the SQLite file at path.
func New(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS objects (
			run_id TEXT NOT NULL REFERENCES runs(id),
			row_idx INTEGER NOT NULL,
			objid INTEGER,
			specobjid INTEGER,
			c_par REAL,
			c_perp REAL,
			d_perp REAL,
			targets INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, row_idx)
		)`,
		`CREATE TABLE IF NOT EXISTS magnitudes (
			run_id TEXT NOT NULL,
			row_idx INTEGER NOT NULL,
			label TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (run_id, row_idx, label)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_objects_objid ON objects(objid)`,
	}
	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Run is one recorded processing run.
type Run struct {
	ID, Source string
	Created    time.Time
}

// Runs lists recorded runs, oldest first.
func (db *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, source, created_at FROM runs ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.Created); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// BeginRun records a new run and returns its id.
func (db *DB) BeginRun(ctx context.Context, source string) (string, error) {
	id := uuid.NewString()
	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO runs (id, source) VALUES (?, ?)`, id, source); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// WriteRun records a new run and all its objects in a single transaction
// and returns the run id.  On error nothing of the run is kept.
func (db *DB) WriteRun(ctx context.Context, source string, objs []Object) (id string, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	id = uuid.NewString()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source) VALUES (?, ?)`, id, source); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	if err = insertObjects(ctx, tx, id, objs); err != nil {
		return "", err
	}
	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// InsertObjects adds objects to an existing run in a single transaction.
func (db *DB) InsertObjects(ctx context.Context, runID string, objs []Object) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if err = insertObjects(ctx, tx, runID, objs); err != nil {
		return err
	}
	return tx.Commit()
}

// insertObjects stores ObjIDs as signed integers; bit 63 of an ObjID is
// always 0.  SpecObjIDs are stored with the same bits and read back
// negative for plates of 8192 and up.
func insertObjects(ctx context.Context, tx *sql.Tx, runID string, objs []Object) error {
	objStmt, err := tx.PrepareContext(ctx, `INSERT INTO objects
		(run_id, row_idx, objid, specobjid, c_par, c_perp, d_perp, targets)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer objStmt.Close()
	magStmt, err := tx.PrepareContext(ctx, `INSERT INTO magnitudes
		(run_id, row_idx, label, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer magStmt.Close()

	for _, o := range objs {
		var objID, specObjID, cPar, cPerp, dPerp any
		if o.ObjID != 0 {
			objID = int64(o.ObjID)
		}
		if o.SpecObjID != 0 {
			specObjID = int64(o.SpecObjID)
		}
		if o.Colors != nil {
			cPar, cPerp, dPerp = o.Colors[0], o.Colors[1], o.Colors[2]
		}
		if _, err := objStmt.ExecContext(ctx, runID, o.Row, objID, specObjID,
			cPar, cPerp, dPerp, int64(o.Targets)); err != nil {
			return fmt.Errorf("insert object row %d: %w", o.Row, err)
		}
		for label, v := range o.Mags {
			if _, err := magStmt.ExecContext(ctx, runID, o.Row, label, v); err != nil {
				return fmt.Errorf("insert magnitude row %d: %w", o.Row, err)
			}
		}
	}
	return nil
}

// CountObjects returns the number of objects stored for a run.
func (db *DB) CountObjects(ctx context.Context, runID string) (n int, err error) {
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM objects WHERE run_id = ?`, runID).Scan(&n)
	return
}

// TargetCount returns the number of objects of a run with bit set in
// their target flags.
func (db *DB) TargetCount(ctx context.Context, runID string, bit uint) (n int, err error) {
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM objects WHERE run_id = ? AND targets & ? != 0`,
		runID, int64(1)<<bit).Scan(&n)
	return
}

// LookupSpec returns the input row of the object with specObjID in a run.
func (db *DB) LookupSpec(ctx context.Context, runID string, specObjID uint64) (row int, err error) {
	err = db.conn.QueryRowContext(ctx,
		`SELECT row_idx FROM objects WHERE run_id = ? AND specobjid = ?`,
		runID, int64(specObjID)).Scan(&row)
	return
}

// Lookup returns the stored magnitudes of the object with objID in a run.
func (db *DB) Lookup(ctx context.Context, runID string, objID uint64) (map[string]float64, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT m.label, m.value
		FROM objects o JOIN magnitudes m ON m.run_id = o.run_id AND m.row_idx = o.row_idx
		WHERE o.run_id = ? AND o.objid = ?`, runID, int64(objID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	mags := map[string]float64{}
	for rows.Next() {
		var label string
		var v float64
		if err := rows.Scan(&label, &v); err != nil {
			return nil, err
		}
		mags[label] = v
	}
	return mags, rows.Err()
}
