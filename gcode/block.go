package gcode

import (
	"errors"
	"strings"
)

var errEmptyBlock = errors.New("empty block")

// Block is the tokenized form of one line. The first token is the command.
type Block []Token

// Identity returns the command identity of the block.
func (b Block) Identity() (Identity, error) {
	if len(b) == 0 {
		return Identity{}, errEmptyBlock
	}
	n, err := b[0].Int()
	if err != nil {
		return Identity{}, err
	}
	return Identity{Letter: b[0].W, Number: n}, nil
}

// Params returns every token after the command.
func (b Block) Params() Block {
	if len(b) == 0 {
		return nil
	}
	return b[1:]
}

func (b Block) String() string {
	parts := make([]string, len(b))
	for i, t := range b {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
