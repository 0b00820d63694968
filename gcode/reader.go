package gcode

import "io"

// Line is one line of source text and its 1-based line number.
type Line struct {
	N    int
	Text string
}

// Reader supplies lines until io.EOF.
type Reader interface {
	Read() (Line, error)
}

// LinesReader reads from a fixed set of lines.
type LinesReader struct {
	Lines []string
	n     int
}

func (r *LinesReader) Read() (Line, error) {
	if r.n == len(r.Lines) {
		return Line{}, io.EOF
	}

	r.n++
	return Line{N: r.n, Text: r.Lines[r.n-1]}, nil
}
