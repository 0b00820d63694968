package gcode

import "strconv"

// Kind groups commands by how they are handled.
type Kind byte

const (
	KindUnknown Kind = iota
	KindMotion
	KindInert
)

func (k Kind) String() string {
	switch k {
	case KindMotion:
		return "motion"
	case KindInert:
		return "inert"
	}
	return "unknown"
}

// Identity is the (letter, number) pair selecting an operation.
type Identity struct {
	Letter byte
	Number int
}

type command struct {
	kind Kind
	name string
}

var commands = map[Identity]command{
	{'G', 0}:  {KindMotion, "rapid move"},
	{'G', 1}:  {KindMotion, "linear move"},
	{'G', 28}: {KindInert, "home axes"},
	{'G', 29}: {KindInert, "level build platform"},
	{'G', 90}: {KindInert, "absolute positioning"},
	{'G', 91}: {KindInert, "relative positioning"},
	{'G', 92}: {KindInert, "set position"},
}

func (id Identity) command() command {
	if c, ok := commands[id]; ok {
		return c
	}
	// every M code is accepted
	if id.Letter == 'M' {
		return command{kind: KindInert, name: "machine command"}
	}
	return command{kind: KindUnknown}
}

func (id Identity) Kind() Kind { return id.command().kind }

// Name is a short description of the command, empty if unknown.
func (id Identity) Name() string { return id.command().name }

func (id Identity) String() string {
	if id.Letter == 0 {
		return ""
	}
	return string(id.Letter) + strconv.Itoa(id.Number)
}
