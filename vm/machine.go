package vm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mastercactapus/gcinterp/coord"
	"github.com/mastercactapus/gcinterp/gcode"
)

// Options configure a Machine.
type Options struct {
	// Scale is the fixed-point scale for distances and feed rates.
	// Zero means gcode.Scale.
	Scale gcode.Fixed

	// Lenient parses malformed numbers as their numeric prefix (or 0)
	// instead of rejecting the line.
	Lenient bool

	// Relative is the initial positioning mode.
	Relative bool
}

// Machine interprets lines one at a time, tracking modal state.
//
// A Machine is not safe for concurrent use; each stream needs its own.
type Machine struct {
	opt   Options
	tok   gcode.Tokenizer
	state State
}

// NewMachine constructs a new Machine with zeroed modal state.
func NewMachine(opt Options) *Machine {
	if opt.Scale == 0 {
		opt.Scale = gcode.Scale
	}
	m := &Machine{opt: opt}
	m.Reset()
	return m
}

func (m *Machine) Options() Options { return m.opt }
func (m *Machine) State() State     { return m.state }

func (m *Machine) SetRelative(rel bool) { m.state.Relative = rel }

// Reset returns the modal state to its initial values.
func (m *Machine) Reset() {
	m.state = State{Relative: m.opt.Relative}
}

// Exec tokenizes and runs a single line of text.
func (m *Machine) Exec(text string) Result {
	b, err := m.tok.Tokenize(text)
	if err != nil {
		return Result{Text: text, Outcome: FieldLimitExceeded, Err: err}
	}
	if len(b) == 0 {
		if strings.TrimSpace(text) == "" {
			return Result{Text: text, Outcome: Blank}
		}
		return Result{Text: text, Outcome: Unsupported, Err: ErrUnsupported}
	}

	res := m.Run(b)
	res.Text = text
	return res
}

type handler func(m *Machine, b gcode.Block) (*Record, Outcome, error)

var handlers = map[gcode.Kind]handler{
	gcode.KindMotion: (*Machine).move,
	gcode.KindInert:  (*Machine).inert,
}

func (m *Machine) identity(b gcode.Block) (gcode.Identity, error) {
	if m.opt.Lenient {
		return gcode.Identity{Letter: b[0].W, Number: b[0].IntLenient()}, nil
	}
	return b.Identity()
}

// Run resolves an already tokenized block. Modal state is only changed
// when the result is Resolved.
func (m *Machine) Run(b gcode.Block) Result {
	res := Result{Text: b.String()}
	if len(b) == 0 {
		res.Outcome = Blank
		return res
	}
	if len(b.Params()) > gcode.MaxFields {
		res.Outcome = FieldLimitExceeded
		res.Err = gcode.ErrFieldLimit
		return res
	}

	id, err := m.identity(b)
	if err != nil {
		res.Outcome = ConversionFailed
		res.Err = err
		return res
	}
	res.Command = id

	h, ok := handlers[id.Kind()]
	if !ok {
		res.Outcome = Unsupported
		res.Err = fmt.Errorf("%w: %s", ErrUnsupported, id)
		return res
	}

	res.Record, res.Outcome, res.Err = h(m, b)
	return res
}

func (m *Machine) inert(gcode.Block) (*Record, Outcome, error) {
	return nil, Ignored, nil
}

// field is a record value that may not have been supplied.
type field struct {
	v   gcode.Fixed
	set bool
}

// resolve returns the supplied value, or modal when the field is unset.
// A supplied value is stored to modal when write is set.
func (f field) resolve(modal *gcode.Fixed, write bool) gcode.Fixed {
	if !f.set {
		return *modal
	}
	if write {
		*modal = f.v
	}
	return f.v
}

func (m *Machine) convert(t gcode.Token, scale gcode.Fixed) (gcode.Fixed, error) {
	if m.opt.Lenient {
		return t.FixedLenient(scale), nil
	}
	return t.Fixed(scale)
}

func (m *Machine) move(b gcode.Block) (*Record, Outcome, error) {
	rel := m.state.Relative

	// X Y Z E, in axisNames order
	var axes [4]field
	var last [4]gcode.Token
	var f, s field
	for _, t := range b.Params() {
		var dst *field
		scale, accumulate := m.opt.Scale, rel
		switch {
		case t.IsAxis():
			i := strings.IndexByte(axisNames, t.W)
			dst, last[i] = &axes[i], t
		case t.W == 'F':
			dst, accumulate = &f, false
		case t.W == 'S':
			dst, scale, accumulate = &s, gcode.TempScale, false
		default:
			continue
		}

		v, err := m.convert(t, scale)
		if err != nil {
			return nil, ConversionFailed, err
		}
		if accumulate {
			var ok bool
			v, ok = dst.v.Add(v)
			if !ok {
				return nil, ConversionFailed, &gcode.NumberError{Token: t, Err: gcode.ErrRange}
			}
		}
		dst.v, dst.set = v, true
	}

	pos, feed := m.state.Pos, m.state.Feed
	if rel {
		next, err := pos.Add(coord.Point{X: axes[0].v, Y: axes[1].v, Z: axes[2].v, E: axes[3].v})
		var rerr *coord.RangeError
		if errors.As(err, &rerr) {
			t := last[strings.IndexByte(axisNames, rerr.Axis)]
			return nil, ConversionFailed, &gcode.NumberError{Token: t, Err: gcode.ErrRange}
		}
		pos = next
	}

	// nothing below can fail, so the line is applied as a whole
	rec := &Record{Relative: rel}
	rec.X = axes[0].resolve(&pos.X, !rel)
	rec.Y = axes[1].resolve(&pos.Y, !rel)
	rec.Z = axes[2].resolve(&pos.Z, !rel)
	rec.E = axes[3].resolve(&pos.E, !rel)
	rec.F = f.resolve(&feed, true)

	for i, fl := range [...]field{axes[0], axes[1], axes[2], axes[3], f} {
		if fl.set {
			rec.Supplied |= 1 << uint(i)
		}
	}
	if s.set {
		temp := s.v
		rec.TargetTemp = &temp
	}

	m.state.Pos, m.state.Feed = pos, feed
	rec.Target = pos

	return rec, Resolved, nil
}
