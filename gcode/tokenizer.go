package gcode

import "errors"

// MaxFields is the maximum number of parameter fields (not counting the
// command itself) accepted on one line.
const MaxFields = 10

// ErrFieldLimit is returned when a line has more than MaxFields parameters.
var ErrFieldLimit = errors.New("too many fields")

// Tokenizer splits lines into tokens using a fixed scratch buffer.
//
// The Block returned by Tokenize shares that buffer and is only valid
// until the next call.
type Tokenizer struct {
	buf [MaxFields + 1]Token
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// IsCommandLetter reports whether c can start a line.
func IsCommandLetter(c byte) bool { return c == 'G' || c == 'M' }

// Tokenize splits line on spaces and tabs.
//
// A blank line, or one that does not start with a command letter, yields
// an empty Block. A line with too many fields yields ErrFieldLimit and no
// tokens at all.
func (tk *Tokenizer) Tokenize(line string) (Block, error) {
	var n int
	for {
		for len(line) > 0 && isSpace(line[0]) {
			line = line[1:]
		}
		if line == "" {
			break
		}
		i := 1
		for i < len(line) && !isSpace(line[i]) {
			i++
		}
		field := line[:i]
		line = line[i:]

		if n == 0 && !IsCommandLetter(field[0]) {
			return nil, nil
		}
		if n == len(tk.buf) {
			return nil, ErrFieldLimit
		}
		tk.buf[n] = newToken(field)
		n++
	}
	if n == 0 {
		return nil, nil
	}

	return Block(tk.buf[:n:n]), nil
}

// Tokenize is like Tokenizer.Tokenize but the result is not shared.
func Tokenize(line string) (Block, error) {
	var tk Tokenizer
	return tk.Tokenize(line)
}
