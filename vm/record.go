package vm

import (
	"errors"
	"fmt"

	"github.com/mastercactapus/gcinterp/coord"
	"github.com/mastercactapus/gcinterp/gcode"
)

// ErrUnsupported is set on results for lines that are not understood.
var ErrUnsupported = errors.New("unsupported command")

// Record is a fully resolved move.
//
// X, Y, Z and E hold the value given on the line (the summed offset in
// relative mode) or, when absent, the last known position. F is the
// supplied or last known feed rate.
type Record struct {
	X, Y, Z, E, F gcode.Fixed

	// Supplied lists the fields that were present on the line.
	Supplied Axis
	Relative bool

	TargetTemp *gcode.Fixed `json:",omitempty"`

	// Target is the absolute position after the move.
	Target coord.Point
}

// Outcome classifies the handling of a line.
type Outcome byte

const (
	Resolved Outcome = iota
	Ignored
	Unsupported
	FieldLimitExceeded
	ConversionFailed
	Blank
)

var outcomeNames = [...]string{
	Resolved:           "resolved",
	Ignored:            "ignored",
	Unsupported:        "unsupported",
	FieldLimitExceeded: "field limit exceeded",
	ConversionFailed:   "conversion failed",
	Blank:              "blank",
}

// NumOutcomes is the number of distinct Outcome values.
const NumOutcomes = int(Blank) + 1

// Outcomes lists every Outcome value.
var Outcomes = []Outcome{Resolved, Ignored, Unsupported, FieldLimitExceeded, ConversionFailed, Blank}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "invalid"
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(text []byte) error {
	for i, name := range outcomeNames {
		if name == string(text) {
			*o = Outcome(i)
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Result is the outcome of processing one line.
type Result struct {
	Line int
	Text string

	Command gcode.Identity
	Outcome Outcome

	// Record is only set for Resolved results.
	Record *Record

	Err error
}

// OK is false for outcomes that dropped the line.
func (r Result) OK() bool {
	switch r.Outcome {
	case Resolved, Ignored, Blank:
		return true
	}
	return false
}
