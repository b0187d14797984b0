// Package tcond implements the TCond DSL: straight-line tree-walking
// programs that emit a sequence of integer features. Grounded directly on
// code.go's {opcode, code} shape (repo root, package gojq) for the
// opcode enum and Op struct, and on
// original_source/phog/dsl/tcond_language.h/.cpp for the opcode set and
// the exact text serialization.
package tcond

// Opcode is one of the fixed TCond operations.
type Opcode int

const (
	WriteType Opcode = iota
	WriteValue
	WritePos
	Up
	Left
	Right
	DownFirst
	DownLast
	PrevDFS
	PrevLeaf
	NextLeaf
	PrevNodeValue
	PrevNodeType
	PrevNodeContext
)

var opcodeNames = [...]string{
	WriteType:       "WRITE_TYPE",
	WriteValue:      "WRITE_VALUE",
	WritePos:        "WRITE_POS",
	Up:              "UP",
	Left:            "LEFT",
	Right:           "RIGHT",
	DownFirst:       "DOWN_FIRST",
	DownLast:        "DOWN_LAST",
	PrevDFS:         "PREV_DFS",
	PrevLeaf:        "PREV_LEAF",
	NextLeaf:        "NEXT_LEAF",
	PrevNodeValue:   "PREV_NODE_VALUE",
	PrevNodeType:    "PREV_NODE_TYPE",
	PrevNodeContext: "PREV_NODE_CONTEXT",
}

// String returns the opcode's canonical text token.
func (op Opcode) String() string {
	if int(op) < 0 || int(op) >= len(opcodeNames) {
		panic(op)
	}
	return opcodeNames[op]
}

// ParseOpcode returns the Opcode named by s, or ok == false if s names no
// opcode.
func ParseOpcode(s string) (Opcode, bool) {
	for i, name := range opcodeNames {
		if name == s {
			return Opcode(i), true
		}
	}
	return 0, false
}

// NoExtra is the sentinel for Op.ExtraData meaning "no extra int".
const NoExtra = -1

// Op is a single TCond instruction: an opcode plus an optional extra
// integer (currently unused by any opcode's *execution*, but round-tripped
// through the text format exactly as the reference does).
type Op struct {
	Cmd       Opcode
	ExtraData int
}

// GetCmd returns the opcode.
func (o Op) GetCmd() Opcode { return o.Cmd }

// GetExtraData returns the extra int, or NoExtra.
func (o Op) GetExtraData() int { return o.ExtraData }

// Program is an ordered sequence of Ops.
type Program []Op
