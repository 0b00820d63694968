package gcode

import "strings"

// Token is a single field of a line: a letter code followed by
// a numeric literal.
type Token struct {
	W   byte
	Raw string

	// Frac is set when Raw contains a decimal point.
	Frac bool
}

func newToken(field string) Token {
	t := Token{W: field[0], Raw: field[1:]}
	t.Frac = strings.IndexByte(t.Raw, '.') >= 0
	return t
}

// IsAxis returns true for position carrying letters.
func (t Token) IsAxis() bool {
	switch t.W {
	case 'X', 'Y', 'Z', 'E':
		return true
	}
	return false
}

func (t Token) String() string {
	return string(t.W) + t.Raw
}
