// Package history keeps a log of interpreted jobs in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/mastercactapus/gcinterp/coord"
	"github.com/mastercactapus/gcinterp/gcode"
	"github.com/mastercactapus/gcinterp/job"
	"github.com/mastercactapus/gcinterp/vm"
)

// Entry is one logged run.
type Entry struct {
	ID       int64
	Job      string
	Started  time.Time
	Finished time.Time

	Lines       int
	Resolved    int
	Ignored     int
	Unsupported int
	FieldLimit  int
	Conversion  int

	// Final modal state; relative mode is not logged.
	Final coord.Point
	Feed  gcode.Fixed

	Err string
}

// NewEntry builds an entry for a run of the named job.
func NewEntry(name string, s *job.Summary, runErr error) Entry {
	e := Entry{
		Job:         name,
		Started:     s.Started,
		Finished:    s.Finished,
		Lines:       s.Lines,
		Resolved:    s.Count(vm.Resolved),
		Ignored:     s.Count(vm.Ignored),
		Unsupported: s.Count(vm.Unsupported),
		FieldLimit:  s.Count(vm.FieldLimitExceeded),
		Conversion:  s.Count(vm.ConversionFailed),
		Final:       s.Final.Pos,
		Feed:        s.Final.Feed,
	}
	if runErr != nil {
		e.Err = runErr.Error()
	}
	return e
}

// DB wraps the run log database.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("history.Open: %w", err)
	}
	d := &DB{db: sqldb}
	err = d.createSchema()
	if err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("history.Open createSchema: %w", err)
	}
	return d, nil
}

func (d *DB) Close() error { return d.db.Close() }

func (d *DB) createSchema() error {
	_, err := d.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		job         TEXT NOT NULL,
		started     INTEGER NOT NULL,
		finished    INTEGER NOT NULL,
		lines       INTEGER NOT NULL,
		resolved    INTEGER NOT NULL,
		ignored     INTEGER NOT NULL,
		unsupported INTEGER NOT NULL,
		field_limit INTEGER NOT NULL,
		conversion  INTEGER NOT NULL,
		final_x     INTEGER NOT NULL,
		final_y     INTEGER NOT NULL,
		final_z     INTEGER NOT NULL,
		final_e     INTEGER NOT NULL,
		final_f     INTEGER NOT NULL,
		error       TEXT NOT NULL DEFAULT ''
	)`)
	return err
}

// Add stores e and returns its ID.
func (d *DB) Add(ctx context.Context, e Entry) (int64, error) {
	res, err := d.db.ExecContext(ctx, `INSERT INTO runs (
		job, started, finished, lines, resolved, ignored, unsupported, field_limit, conversion,
		final_x, final_y, final_z, final_e, final_f, error
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Job, e.Started.UnixNano(), e.Finished.UnixNano(),
		e.Lines, e.Resolved, e.Ignored, e.Unsupported, e.FieldLimit, e.Conversion,
		int64(e.Final.X), int64(e.Final.Y), int64(e.Final.Z), int64(e.Final.E), int64(e.Feed),
		e.Err,
	)
	if err != nil {
		return 0, fmt.Errorf("history.Add: %w", err)
	}
	return res.LastInsertId()
}

// List returns up to limit entries, newest first. A limit <= 0 returns all.
func (d *DB) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.QueryContext(ctx, `SELECT
		id, job, started, finished, lines, resolved, ignored, unsupported, field_limit, conversion,
		final_x, final_y, final_z, final_e, final_f, error
	FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history.List: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, finished int64
		var x, y, z, ex, f int64
		err = rows.Scan(
			&e.ID, &e.Job, &started, &finished,
			&e.Lines, &e.Resolved, &e.Ignored, &e.Unsupported, &e.FieldLimit, &e.Conversion,
			&x, &y, &z, &ex, &f, &e.Err,
		)
		if err != nil {
			return nil, fmt.Errorf("history.List scan: %w", err)
		}
		e.Started = time.Unix(0, started)
		e.Finished = time.Unix(0, finished)
		e.Final = coord.Point{X: gcode.Fixed(x), Y: gcode.Fixed(y), Z: gcode.Fixed(z), E: gcode.Fixed(ex)}
		e.Feed = gcode.Fixed(f)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
