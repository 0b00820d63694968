package gcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizer_Tokenize(t *testing.T) {
	var tk Tokenizer

	b, err := tk.Tokenize("G1 X10.5\tY3  F1500")
	require.NoError(t, err)
	assert.Equal(t, Block{
		{W: 'G', Raw: "1"},
		{W: 'X', Raw: "10.5", Frac: true},
		{W: 'Y', Raw: "3"},
		{W: 'F', Raw: "1500"},
	}, b)

	b, err = tk.Tokenize("M104 S200\r\n")
	require.NoError(t, err)
	assert.Equal(t, "M104 S200", b.String())
}

func TestTokenizer_Tokenize_Empty(t *testing.T) {
	var tk Tokenizer
	for _, line := range []string{"", "   ", "\t\r\n", "X1 Y2", ";comment", "g1 x1"} {
		b, err := tk.Tokenize(line)
		assert.NoError(t, err, line)
		assert.Empty(t, b, line)
	}
}

func TestTokenizer_Tokenize_FieldLimit(t *testing.T) {
	var tk Tokenizer

	params := strings.Repeat(" X1", MaxFields)
	b, err := tk.Tokenize("G1" + params)
	assert.NoError(t, err)
	assert.Len(t, b, MaxFields+1)

	b, err = tk.Tokenize("G1" + params + " Y2")
	assert.Equal(t, ErrFieldLimit, err)
	assert.Nil(t, b)
}

func TestTokenizer_Reuse(t *testing.T) {
	var tk Tokenizer
	first, err := tk.Tokenize("G1 X1")
	require.NoError(t, err)
	kept := append(Block(nil), first...)

	_, err = tk.Tokenize("G0 Y2")
	require.NoError(t, err)

	assert.Equal(t, "G1 X1", kept.String())
	assert.Equal(t, "G0 Y2", first.String())
}

func TestBlock_Identity(t *testing.T) {
	b, err := Tokenize("G28 X0")
	require.NoError(t, err)
	id, err := b.Identity()
	assert.NoError(t, err)
	assert.Equal(t, Identity{Letter: 'G', Number: 28}, id)

	b, err = Tokenize("G1.5 X0")
	require.NoError(t, err)
	_, err = b.Identity()
	assert.Error(t, err)

	_, err = Block(nil).Identity()
	assert.Error(t, err)
}
