// Package tgen implements the branched-switch condition (§4.F) and the
// indexed program table (§4.G) that compose TCond programs into a
// decision tree of context extractors.
//
// Grounded on original_source/phog/dsl/branched_cond.h/.cpp,
// simple_cond.h/.cpp, and tgen_program.h/.cpp.
package tgen

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tgenlab/tgen/intern"
	"github.com/tgenlab/tgen/modelerr"
	"github.com/tgenlab/tgen/tcond"
)

// BranchCond wraps a TCond program used as a switch's condition. The
// three predefined shorthand names (§6.2) desugar at parse time only;
// String always serializes the expanded program.
type BranchCond struct {
	Program tcond.Program
}

// Shorthand programs named by §6.2.
var (
	typeCondProgram           = tcond.Program{{Cmd: tcond.WriteType, ExtraData: tcond.NoExtra}}
	parentTypeCondProgram     = tcond.Program{{Cmd: tcond.Up, ExtraData: tcond.NoExtra}, {Cmd: tcond.WriteType, ExtraData: tcond.NoExtra}}
	typeAndParentTypeCondProgram = tcond.Program{
		{Cmd: tcond.WriteType, ExtraData: tcond.NoExtra},
		{Cmd: tcond.Up, ExtraData: tcond.NoExtra},
		{Cmd: tcond.WriteType, ExtraData: tcond.NoExtra},
	}
)

// ParseBranchCond parses str as a BranchCond: one of the shorthand names,
// or raw TCond program text.
func ParseBranchCond(str string) (BranchCond, error) {
	switch str {
	case "type":
		return BranchCond{Program: typeCondProgram}, nil
	case "parent_type":
		return BranchCond{Program: parentTypeCondProgram}, nil
	case "type_parent_type":
		return BranchCond{Program: typeAndParentTypeCondProgram}, nil
	default:
		prog, err := tcond.Parse(str)
		if err != nil {
			return BranchCond{}, err
		}
		return BranchCond{Program: prog}, nil
	}
}

// String serializes the condition's expanded program text.
func (c BranchCond) String() string { return c.Program.String() }

// CaseKey encodes a sequence of emitted ints into a comparable map key.
type CaseKey string

func encodeCaseKey(ints []int) CaseKey {
	parts := make([]string, len(ints))
	for i, v := range ints {
		parts[i] = strconv.Itoa(v)
	}
	return CaseKey(strings.Join(parts, "\x1f"))
}

type caseEntry struct {
	key    CaseKey
	ints   []int
	target int
}

// BranchCondProgram is a switch: run Cond, look the emitted sequence up in
// per-case targets, else fall through to PDefault.
type BranchCondProgram struct {
	Cond     BranchCond
	cases    []caseEntry
	byKey    map[CaseKey]int
	PDefault int
}

// NewBranchCondProgram returns an empty switch over cond, defaulting to
// defaultProgram.
func NewBranchCondProgram(cond BranchCond, defaultProgram int) *BranchCondProgram {
	return &BranchCondProgram{Cond: cond, byKey: make(map[CaseKey]int), PDefault: defaultProgram}
}

// AddCase maps the emission sequence ints to target program id.
func (b *BranchCondProgram) AddCase(ints []int, target int) {
	key := encodeCaseKey(ints)
	b.cases = append(b.cases, caseEntry{key: key, ints: append([]int(nil), ints...), target: target})
	b.byKey[key] = target
}

// GetReferencedPrograms returns every program id this switch can reach
// (all case targets plus the default), ascending.
func (b *BranchCondProgram) GetReferencedPrograms() []int {
	set := map[int]bool{b.PDefault: true}
	for _, c := range b.cases {
		set[c.target] = true
	}
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// ParseWarning is a non-fatal diagnostic surfaced by Load/ParseProgramLine
// for constructs the model reproduces exactly for compatibility but that
// users should be aware of (Open Question #1, DESIGN.md).
type ParseWarning struct {
	Msg string
}

// CaseToString renders a case's emission sequence back to its §6.2 text
// form: negative ints print raw, non-negative ints are looked up via ss
// and escaped.
func CaseToString(ints []int, ss *intern.Interner) string {
	if len(ints) == 0 {
		return ""
	}
	parts := make([]string, len(ints))
	for i, v := range ints {
		if v < 0 {
			parts[i] = strconv.Itoa(v)
		} else {
			parts[i] = escapeSpace(ss.String(v))
		}
	}
	return strings.Join(parts, " ")
}

func escapeSpace(s string) string   { return strings.ReplaceAll(s, " ", "\\s") }
func unescapeSpace(s string) string { return strings.ReplaceAll(s, "\\s", " ") }

// ParseProgramLine parses a §6.2 branched entry ("switch <COND>: on
// "..." goto N; ...; else goto ND") into a BranchCondProgram.
//
// Reproduces the reference's empty-token quirk: within a `|`-separated
// case alternative, once any space-separated token is empty, the whole
// case key collapses to the empty sequence regardless of what tokens
// follow (Open Question #1, DESIGN.md) — so "A  B" and "" key the same
// case. A non-nil *ParseWarning is returned whenever this quirk fires.
func ParseProgramLine(str string, ss *intern.Interner) (*BranchCondProgram, *ParseWarning, error) {
	const prefix = "switch "
	if !strings.HasPrefix(str, prefix) {
		return nil, nil, &modelerr.ParseError{Token: str, Msg: "not a switch entry"}
	}
	colon := strings.Index(str, ":")
	if colon < 0 {
		return nil, nil, &modelerr.ParseError{Token: str, Msg: "no ':' in switch entry"}
	}
	cond, err := ParseBranchCond(strings.TrimSpace(str[len(prefix):colon]))
	if err != nil {
		return nil, nil, err
	}
	b := NewBranchCondProgram(cond, 0)
	var warn *ParseWarning

	cases := strings.Split(str[colon+1:], ";")
	for _, rawCase := range cases {
		curr := strings.TrimSpace(rawCase)
		if curr == "" {
			continue
		}
		if strings.HasPrefix(curr, "else goto ") {
			n, err := strconv.Atoi(strings.TrimSpace(curr[len("else goto "):]))
			if err != nil {
				return nil, nil, &modelerr.ParseError{Token: curr, Msg: "invalid else target"}
			}
			b.PDefault = n
			continue
		}
		if !strings.HasPrefix(curr, "on ") {
			return nil, nil, &modelerr.ParseError{Token: curr, Msg: "expected 'on' case"}
		}
		q1 := strings.Index(curr, "\"")
		if q1 < 0 {
			return nil, nil, &modelerr.ParseError{Token: curr, Msg: "no opening quote"}
		}
		q2 := strings.Index(curr[q1+1:], "\"")
		if q2 < 0 {
			return nil, nil, &modelerr.ParseError{Token: curr, Msg: "no closing quote"}
		}
		q2 += q1 + 1
		rest := strings.TrimSpace(curr[q2+1:])
		if !strings.HasPrefix(rest, "goto ") {
			return nil, nil, &modelerr.ParseError{Token: curr, Msg: "no goto after case"}
		}
		target, err := strconv.Atoi(strings.TrimSpace(rest[len("goto "):]))
		if err != nil {
			return nil, nil, &modelerr.ParseError{Token: curr, Msg: "invalid goto target"}
		}

		values := strings.Split(curr[q1+1:q2], "|")
		for _, value := range values {
			var cmds []string
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				cmds = strings.Split(trimmed, " ")
			}
			var ids []int
			cleared := false
			for _, cmd := range cmds {
				if cmd == "" {
					cleared = true
					ids = nil
					continue
				}
				if cleared {
					continue
				}
				if cmd[0] == '-' {
					n, err := strconv.Atoi(cmd)
					if err != nil {
						return nil, nil, &modelerr.ParseError{Token: cmd, Msg: "invalid number in case"}
					}
					ids = append(ids, n)
				} else {
					ids = append(ids, ss.Intern(unescapeSpace(cmd)))
				}
			}
			if cleared {
				warn = &ParseWarning{Msg: "case contained an empty token; key collapsed to the empty sequence"}
			}
			b.AddCase(ids, target)
		}
	}
	return b, warn, nil
}

// ToStringAsProgramLine renders b back to its §6.2 text form, grouping
// every case mapping to the same target into one "on ..." clause
// (pipe-joined), in ascending target-id order, with the default clause
// emitted last.
func (b *BranchCondProgram) ToStringAsProgramLine(ss *intern.Interner) string {
	var sb strings.Builder
	sb.WriteString("switch ")
	sb.WriteString(b.Cond.String())
	sb.WriteString(":")

	targets := b.GetReferencedPrograms()
	for _, p := range targets {
		if p == b.PDefault {
			continue
		}
		sb.WriteString(" on \"")
		first := true
		for _, c := range b.cases {
			if c.target != p {
				continue
			}
			if !first {
				sb.WriteString("|")
			}
			first = false
			sb.WriteString(CaseToString(c.ints, ss))
		}
		sb.WriteString("\" goto ")
		sb.WriteString(strconv.Itoa(p))
		sb.WriteString(";")
	}
	sb.WriteString(" else goto ")
	sb.WriteString(strconv.Itoa(b.PDefault))
	return sb.String()
}

// Size returns the number of ops in the condition program (§4.G
// recursive_size's own-size contribution for a branched entry).
func (b *BranchCondProgram) Size() int { return len(b.Cond.Program) }
