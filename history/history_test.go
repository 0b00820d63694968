package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/mastercactapus/gcinterp/coord"
	"github.com/mastercactapus/gcinterp/gcode"
	"github.com/mastercactapus/gcinterp/history"
	"github.com/mastercactapus/gcinterp/job"
	"github.com/mastercactapus/gcinterp/vm"
)

// openTestDB opens a fresh database in a temp directory.
func openTestDB(t *testing.T) *history.DB {
	t.Helper()
	d, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("openTestDB: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func runJob(c *qt.C, lines ...string) *job.Summary {
	s, err := job.Run(context.Background(), &gcode.LinesReader{Lines: lines}, vm.NewMachine(vm.Options{}), nil)
	c.Assert(err, qt.IsNil)
	return s
}

func TestNewEntry(t *testing.T) {
	c := qt.New(t)
	s := runJob(c, "G28", "G1 X1 Y2 F300", "G1 Z0.5", "X1", "G1 Xz")

	e := history.NewEntry("cube.gcode", s, errors.New("cut short"))
	c.Assert(e.Job, qt.Equals, "cube.gcode")
	c.Assert(e.Lines, qt.Equals, 5)
	c.Assert(e.Resolved, qt.Equals, 2)
	c.Assert(e.Ignored, qt.Equals, 1)
	c.Assert(e.Unsupported, qt.Equals, 1)
	c.Assert(e.Conversion, qt.Equals, 1)
	c.Assert(e.FieldLimit, qt.Equals, 0)
	c.Assert(e.Final, qt.Equals, coord.Point{X: 1000, Y: 2000, Z: 500})
	c.Assert(e.Feed, qt.Equals, gcode.Fixed(300000))
	c.Assert(e.Err, qt.Equals, "cut short")
}

func TestDB_AddList(t *testing.T) {
	c := qt.New(t)
	d := openTestDB(t)
	ctx := context.Background()

	entries, err := d.List(ctx, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 0)

	start := time.Unix(1700000000, 123)
	first := history.Entry{
		Job:      "a.gcode",
		Started:  start,
		Finished: start.Add(time.Second),
		Lines:    3,
		Resolved: 2,
		Final:    coord.Point{X: -1, Y: 2, Z: 3, E: 4},
		Feed:     1500000,
	}
	id, err := d.Add(ctx, first)
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Equals, int64(1))

	second := history.Entry{Job: "b.gcode", Started: start, Finished: start, Err: "boom"}
	_, err = d.Add(ctx, second)
	c.Assert(err, qt.IsNil)

	entries, err = d.List(ctx, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 2)
	c.Assert(entries[0].Job, qt.Equals, "b.gcode")
	c.Assert(entries[0].Err, qt.Equals, "boom")

	got := entries[1]
	c.Assert(got.ID, qt.Equals, int64(1))
	c.Assert(got.Started.Equal(first.Started), qt.IsTrue)
	c.Assert(got.Finished.Equal(first.Finished), qt.IsTrue)
	c.Assert(got.Final, qt.Equals, first.Final)
	c.Assert(got.Feed, qt.Equals, first.Feed)
	c.Assert(got.Resolved, qt.Equals, 2)

	entries, err = d.List(ctx, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 1)
	c.Assert(entries[0].Job, qt.Equals, "b.gcode")
}

func TestOpen_Reopen(t *testing.T) {
	c := qt.New(t)
	p := filepath.Join(t.TempDir(), "history.db")

	d, err := history.Open(p)
	c.Assert(err, qt.IsNil)
	_, err = d.Add(context.Background(), history.Entry{Job: "x"})
	c.Assert(err, qt.IsNil)
	c.Assert(d.Close(), qt.IsNil)

	d, err = history.Open(p)
	c.Assert(err, qt.IsNil)
	defer d.Close()
	entries, err := d.List(context.Background(), 10)
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 1)
}
