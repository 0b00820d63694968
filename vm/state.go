package vm

import (
	"fmt"
	"strings"

	"github.com/mastercactapus/gcinterp/coord"
	"github.com/mastercactapus/gcinterp/gcode"
)

// State is the modal state carried from one line to the next.
type State struct {
	Pos  coord.Point
	Feed gcode.Fixed

	// Relative makes supplied axis values offsets from Pos.
	Relative bool
}

// Axis is a set of record fields.
type Axis uint8

const (
	AxisX Axis = 1 << iota
	AxisY
	AxisZ
	AxisE
	AxisF

	AxisAll = AxisX | AxisY | AxisZ | AxisE | AxisF
)

const axisNames = "XYZEF"

func (a Axis) Has(b Axis) bool { return a&b == b }

func (a Axis) String() string {
	var s []byte
	for i := 0; i < len(axisNames); i++ {
		if a&(1<<uint(i)) != 0 {
			s = append(s, axisNames[i])
		}
	}
	return string(s)
}

func (a Axis) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Axis) UnmarshalText(text []byte) error {
	var v Axis
	for _, c := range text {
		i := strings.IndexByte(axisNames, c)
		if i < 0 {
			return fmt.Errorf("unknown axis %q", c)
		}
		v |= 1 << uint(i)
	}
	*a = v
	return nil
}
