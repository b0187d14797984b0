package tcond

import (
	"strconv"
	"strings"

	"github.com/tgenlab/tgen/modelerr"
)

// String serializes p as whitespace-separated tokens, each OPCODE or
// OPCODE@INT when ExtraData != NoExtra. Round-trips losslessly with
// Parse (invariant 1, §8).
func (p Program) String() string {
	toks := make([]string, len(p))
	for i, op := range p {
		if op.ExtraData != NoExtra {
			toks[i] = op.Cmd.String() + "@" + strconv.Itoa(op.ExtraData)
		} else {
			toks[i] = op.Cmd.String()
		}
	}
	return strings.Join(toks, " ")
}

// Parse parses whitespace-separated opcode tokens into a Program. Each
// token is OPCODE or OPCODE@INT. Unknown opcodes return a *modelerr.ParseError.
func Parse(text string) (Program, error) {
	fields := strings.Fields(text)
	prog := make(Program, 0, len(fields))
	for _, tok := range fields {
		name, extraStr, hasExtra := strings.Cut(tok, "@")
		opcode, ok := ParseOpcode(name)
		if !ok {
			return nil, &modelerr.ParseError{Token: tok, Msg: "unknown TCond opcode"}
		}
		op := Op{Cmd: opcode, ExtraData: NoExtra}
		if hasExtra {
			n, err := strconv.Atoi(extraStr)
			if err != nil {
				return nil, &modelerr.ParseError{Token: tok, Msg: "invalid extra int"}
			}
			op.ExtraData = n
		}
		prog = append(prog, op)
	}
	return prog, nil
}
