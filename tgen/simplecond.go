package tgen

import (
	"strings"

	"github.com/tgenlab/tgen/tcond"
)

// SimpleCondProgram is a straight-line (non-branching) table entry: a
// context program used to extract conditioning features, and an optional
// equality program used to extract the label being predicted. Grounded
// on SimpleCondProgram in simple_cond.h/.cpp.
type SimpleCondProgram struct {
	EqProgram      tcond.Program
	ContextProgram tcond.Program
}

// ParseSimpleCondProgram parses a §6.2 straight-line entry: "empty",
// "CTX_PROG", or "EQ_PROG =eq= CTX_PROG".
func ParseSimpleCondProgram(str string) (SimpleCondProgram, error) {
	if str == "empty" {
		return SimpleCondProgram{}, nil
	}
	if idx := strings.Index(str, "=eq="); idx >= 0 {
		eq, err := tcond.Parse(strings.TrimSpace(str[:idx]))
		if err != nil {
			return SimpleCondProgram{}, err
		}
		ctx, err := tcond.Parse(strings.TrimSpace(str[idx+len("=eq="):]))
		if err != nil {
			return SimpleCondProgram{}, err
		}
		return SimpleCondProgram{EqProgram: eq, ContextProgram: ctx}, nil
	}
	ctx, err := tcond.Parse(str)
	if err != nil {
		return SimpleCondProgram{}, err
	}
	return SimpleCondProgram{ContextProgram: ctx}, nil
}

// String serializes p back to its §6.2 text form.
func (p SimpleCondProgram) String() string {
	if len(p.EqProgram) == 0 {
		if len(p.ContextProgram) == 0 {
			return "empty"
		}
		return p.ContextProgram.String()
	}
	return p.EqProgram.String() + " =eq= " + p.ContextProgram.String()
}

// Size returns the combined op count of both programs.
func (p SimpleCondProgram) Size() int { return len(p.EqProgram) + len(p.ContextProgram) }
