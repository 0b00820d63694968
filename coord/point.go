package coord

import (
	"fmt"

	"github.com/mastercactapus/gcinterp/gcode"
)

// Point is a fixed-point position including the extruder axis.
type Point struct{ X, Y, Z, E gcode.Fixed }

// RangeError reports the axis whose sum left the range of gcode.Fixed.
type RangeError struct {
	Axis byte
}

func (e *RangeError) Error() string {
	return "axis " + string(e.Axis) + ": " + gcode.ErrRange.Error()
}
func (e *RangeError) Unwrap() error { return gcode.ErrRange }

// Add will add the target values to p.
//
// If any axis overflows, the zero Point and a *RangeError are returned.
func (p Point) Add(target Point) (Point, error) {
	var ok bool
	if p.X, ok = p.X.Add(target.X); !ok {
		return Point{}, &RangeError{Axis: 'X'}
	}
	if p.Y, ok = p.Y.Add(target.Y); !ok {
		return Point{}, &RangeError{Axis: 'Y'}
	}
	if p.Z, ok = p.Z.Add(target.Z); !ok {
		return Point{}, &RangeError{Axis: 'Z'}
	}
	if p.E, ok = p.E.Add(target.E); !ok {
		return Point{}, &RangeError{Axis: 'E'}
	}
	return p, nil
}

// Format renders p in input units at the given scale.
func (p Point) Format(scale gcode.Fixed) string {
	return fmt.Sprintf("X%s Y%s Z%s E%s", p.X.Format(scale), p.Y.Format(scale), p.Z.Format(scale), p.E.Format(scale))
}

func (p Point) String() string {
	return fmt.Sprintf("X[%d] Y[%d] Z[%d] E[%d]", p.X, p.Y, p.Z, p.E)
}
