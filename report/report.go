// Package report formats interpreter results for consoles and clients.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mastercactapus/gcinterp/vm"
)

// A Reporter receives one Result per processed line.
type Reporter interface {
	Report(vm.Result) error
}

// ReporterFunc adapts a function to a Reporter.
type ReporterFunc func(vm.Result) error

func (fn ReporterFunc) Report(r vm.Result) error { return fn(r) }

type multiReporter []Reporter

// Multi reports to every reporter in order, stopping at the first error.
func Multi(rs ...Reporter) Reporter {
	return multiReporter(rs)
}

func (m multiReporter) Report(r vm.Result) error {
	for _, rep := range m {
		if rep == nil {
			continue
		}
		err := rep.Report(r)
		if err != nil {
			return err
		}
	}
	return nil
}

// Console writes a human readable description of each result.
type Console struct {
	w io.Writer

	// EOL terminates every written line. Serial terminals want "\r\n".
	EOL string

	// Blank lines are only reported when Verbose is set.
	Verbose bool
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w, EOL: "\n"}
}

func (c *Console) printf(format string, args ...interface{}) error {
	_, err := fmt.Fprintf(c.w, format+c.EOL, args...)
	return err
}

func (c *Console) Report(r vm.Result) error {
	prefix := ""
	if r.Line > 0 {
		prefix = fmt.Sprintf("%d: ", r.Line)
	}

	switch r.Outcome {
	case vm.Resolved:
		rec := r.Record
		err := c.printf("%sMOVE READY: %s X[%d] Y[%d] Z[%d] E[%d] F[%d]", prefix, r.Command, rec.X, rec.Y, rec.Z, rec.E, rec.F)
		if err != nil || rec.TargetTemp == nil {
			return err
		}
		return c.printf("%s  TEMP[%d]", prefix, *rec.TargetTemp)
	case vm.Ignored:
		return c.printf("%sIGNORED %s (%s)", prefix, r.Command, r.Command.Name())
	case vm.Unsupported:
		return c.printf("%sUNSUPPORTED cmd: %s", prefix, r.Text)
	case vm.FieldLimitExceeded:
		return c.printf("%sMAX ARGS reached, dropping cmd: %s", prefix, r.Text)
	case vm.ConversionFailed:
		return c.printf("%sBAD NUMBER, dropping cmd: %s: %v", prefix, r.Text, r.Err)
	case vm.Blank:
		if c.Verbose {
			return c.printf("%sBLANK", prefix)
		}
	}
	return nil
}

// Entry is the JSON form of a Result.
type Entry struct {
	Line    int        `json:"line,omitempty"`
	Text    string     `json:"text"`
	Command string     `json:"command,omitempty"`
	Outcome vm.Outcome `json:"outcome"`
	Record  *vm.Record `json:"record,omitempty"`
	Error   string     `json:"error,omitempty"`
}

func NewEntry(r vm.Result) Entry {
	e := Entry{
		Line:    r.Line,
		Text:    r.Text,
		Command: r.Command.String(),
		Outcome: r.Outcome,
		Record:  r.Record,
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}
	return e
}

// JSON writes one JSON object per result.
type JSON struct {
	enc *json.Encoder
}

func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

func (j *JSON) Report(r vm.Result) error {
	return j.enc.Encode(NewEntry(r))
}

// Collector keeps every entry in memory.
type Collector struct {
	Entries []Entry
}

func (c *Collector) Report(r vm.Result) error {
	c.Entries = append(c.Entries, NewEntry(r))
	return nil
}

// Tally counts results by outcome.
type Tally struct {
	Lines  int
	counts [vm.NumOutcomes]int
}

func (t *Tally) Report(r vm.Result) error {
	t.Lines++
	if int(r.Outcome) < len(t.counts) {
		t.counts[r.Outcome]++
	}
	return nil
}

func (t Tally) Count(o vm.Outcome) int {
	if int(o) < len(t.counts) {
		return t.counts[o]
	}
	return 0
}

// Counts returns the non-zero counts keyed by outcome name.
func (t Tally) Counts() map[string]int {
	m := make(map[string]int)
	for _, o := range vm.Outcomes {
		if n := t.Count(o); n > 0 {
			m[o.String()] = n
		}
	}
	return m
}
