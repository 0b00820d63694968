package job

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mastercactapus/gcinterp/gcode"
	"github.com/mastercactapus/gcinterp/report"
	"github.com/mastercactapus/gcinterp/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJob = `; test job
G28
G1 X10.5 Y3 F1500
G1 Z0.2 E1 ; first layer
X5 Y5
G1 X1 X1 X1 X1 X1 X1 X1 X1 X1 X1 X1
G1 Yabc
G2 X1 Y1 I1
M84
`

func TestRun(t *testing.T) {
	m := vm.NewMachine(vm.Options{})
	var buf bytes.Buffer

	s, err := Run(context.Background(), gcode.NewParser(strings.NewReader(testJob)), m, report.NewConsole(&buf))
	require.NoError(t, err)

	assert.Equal(t, 8, s.Lines)
	assert.Equal(t, 2, s.Count(vm.Resolved))
	assert.Equal(t, 2, s.Count(vm.Ignored))
	assert.Equal(t, 2, s.Count(vm.Unsupported))
	assert.Equal(t, 1, s.Count(vm.FieldLimitExceeded))
	assert.Equal(t, 1, s.Count(vm.ConversionFailed))

	assert.Equal(t, gcode.Fixed(10500), s.Final.Pos.X)
	assert.Equal(t, gcode.Fixed(3000), s.Final.Pos.Y)
	assert.Equal(t, gcode.Fixed(200), s.Final.Pos.Z)
	assert.Equal(t, gcode.Fixed(1000), s.Final.Pos.E)
	assert.Equal(t, gcode.Fixed(1500000), s.Final.Feed)
	assert.False(t, s.Finished.Before(s.Started))
	assert.True(t, s.Duration() >= 0)

	out := buf.String()
	assert.Contains(t, out, "4: MOVE READY: G1 X[10500] Y[3000] Z[200] E[1000] F[1500000]\n")
	assert.Contains(t, out, "5: UNSUPPORTED cmd: X5 Y5\n")
	assert.Contains(t, out, "6: MAX ARGS reached")
}

func TestRun_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := vm.NewMachine(vm.Options{})

	var n int
	rep := report.ReporterFunc(func(vm.Result) error {
		n++
		if n == 2 {
			cancel()
		}
		return nil
	})

	r := &gcode.LinesReader{Lines: []string{"G1 X1", "G1 X2", "G1 X3"}}
	s, err := Run(ctx, r, m, rep)
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 2, s.Lines)
	assert.Equal(t, gcode.Fixed(2000), s.Final.Pos.X)
}

type errReader struct{ err error }

func (r errReader) Read() (gcode.Line, error) { return gcode.Line{}, r.err }

func TestRun_ReadError(t *testing.T) {
	errDisk := errors.New("disk on fire")
	_, err := Run(context.Background(), errReader{err: errDisk}, vm.NewMachine(vm.Options{}), nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errDisk))
}

// lineThenFail yields its lines, then fails.
type lineThenFail struct {
	lines []gcode.Line
	err   error
}

func (r *lineThenFail) Read() (gcode.Line, error) {
	if len(r.lines) == 0 {
		return gcode.Line{}, r.err
	}
	ln := r.lines[0]
	r.lines = r.lines[1:]
	return ln, nil
}

func TestRun_ReadError_LineNumber(t *testing.T) {
	errDisk := errors.New("disk on fire")
	// physical numbering skips the blank and comment lines in between
	r := &lineThenFail{lines: []gcode.Line{{N: 3, Text: "G28"}, {N: 7, Text: "G1 X1"}}, err: errDisk}

	s, err := Run(context.Background(), r, vm.NewMachine(vm.Options{}), nil)
	assert.True(t, errors.Is(err, errDisk))
	assert.Equal(t, "read after line 7: disk on fire", err.Error())
	assert.Equal(t, 2, s.Lines)
}

func TestRun_ReportError(t *testing.T) {
	errSink := errors.New("sink closed")
	rep := report.ReporterFunc(func(vm.Result) error { return errSink })
	r := &gcode.LinesReader{Lines: []string{"G1 X1", "G1 X2"}}

	s, err := Run(context.Background(), r, vm.NewMachine(vm.Options{}), rep)
	assert.True(t, errors.Is(err, errSink))
	assert.Equal(t, 1, s.Lines)
}
