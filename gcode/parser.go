package gcode

import (
	"bufio"
	"io"
	"strings"
)

// Parser reads lines from an io.Reader, dropping comments
// and blank lines.
type Parser struct {
	br *bufio.Reader
	n  int
}

func NewParser(r io.Reader) *Parser {
	if br, ok := r.(*bufio.Reader); ok {
		return &Parser{br: br}
	}

	return &Parser{br: bufio.NewReader(r)}
}

// StripComment removes a trailing `;` comment and the line terminator.
func StripComment(s string) string {
	s = strings.SplitN(s, ";", 2)[0]
	return strings.TrimRight(s, "\r\n")
}

func (p *Parser) Read() (Line, error) {
	for {
		s, err := p.br.ReadString('\n')
		if err == io.EOF && s != "" {
			err = nil
		}
		if err != nil {
			return Line{}, err
		}
		p.n++

		s = StripComment(s)
		if strings.TrimSpace(s) == "" {
			continue
		}

		return Line{N: p.n, Text: s}, nil
	}
}
