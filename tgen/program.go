package tgen

import (
	"github.com/tgenlab/tgen/intern"
	"github.com/tgenlab/tgen/modelerr"
	"github.com/tgenlab/tgen/tcond"
	"github.com/tgenlab/tgen/tree"
)

// Kind tags which union member a Table entry holds (§9's
// explicit-tag-over-dynamic-dispatch convention, also used by
// tree.Traversal.Kind and actorindex.Strategy).
type Kind int

const (
	KindTCond Kind = iota
	KindBranch
)

// Entry is one indexed program: either a straight-line SimpleCondProgram,
// or a branched switch over one.
type Entry struct {
	Kind   Kind
	Simple SimpleCondProgram
	Branch *BranchCondProgram
}

// Size returns the entry's own op/condition count, excluding anything it
// refers to (§4.G recursive_size's base case).
func (e Entry) Size() int {
	if e.Kind == KindBranch {
		return e.Branch.Size()
	}
	return e.Simple.Size()
}

// Table is an indexed, append-only collection of program Entries;
// program ids are positions into it. Grounded on TGenProgram/TGenTable
// in tgen_program.h/.cpp.
type Table struct {
	entries []Entry
}

// NewTable returns an empty Table.
func NewTable() *Table { return &Table{} }

// AddProgram appends e and returns its new id.
func (t *Table) AddProgram(e Entry) int {
	t.entries = append(t.entries, e)
	return len(t.entries) - 1
}

// AddProgramNoDuplicates appends e unless an identical entry (by
// serialized text) already exists, in which case it returns the existing
// id.
func (t *Table) AddProgramNoDuplicates(e Entry, ss *intern.Interner) int {
	text := entryText(e, ss)
	for id, existing := range t.entries {
		if entryText(existing, ss) == text {
			return id
		}
	}
	return t.AddProgram(e)
}

func entryText(e Entry, ss *intern.Interner) string {
	if e.Kind == KindBranch {
		return e.Branch.ToStringAsProgramLine(ss)
	}
	return e.Simple.String()
}

// FindProgram returns the id of the first straight-line entry whose text
// equals text, or ok == false. Branched entries are not compared.
func (t *Table) FindProgram(text string) (int, bool) {
	for id, e := range t.entries {
		if e.Kind == KindTCond && e.Simple.String() == text {
			return id, true
		}
	}
	return 0, false
}

// Get returns the entry at id.
func (t *Table) Get(id int) (Entry, bool) {
	if id < 0 || id >= len(t.entries) {
		return Entry{}, false
	}
	return t.entries[id], true
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Clear empties the table.
func (t *Table) Clear() { t.entries = nil }

// GetProgramRecursiveSize returns id's own size plus the recursive size
// of every program a branched entry can reach, counting each id exactly
// once even across cycles.
func (t *Table) GetProgramRecursiveSize(id int) int {
	visited := make(map[int]bool)
	return t.recursiveSize(id, visited)
}

func (t *Table) recursiveSize(id int, visited map[int]bool) int {
	if visited[id] {
		return 0
	}
	visited[id] = true
	e, ok := t.Get(id)
	if !ok {
		return 0
	}
	size := e.Size()
	if e.Kind == KindBranch {
		for _, ref := range e.Branch.GetReferencedPrograms() {
			size += t.recursiveSize(ref, visited)
		}
	}
	return size
}

// ExecuteContext runs the context program reached by following entry id
// (resolving through any chain of branched entries), emitting the
// conditioning features for t's position. Grounded on
// ExecuteContextProgramByIdInAll in model.h; the branch decision for each
// branched hop runs against a positional snapshot of t so the real
// traversal t only ever advances along the final context program.
func (t *Table) ExecuteContext(id int, tr *tree.Traversal, ctx *tcond.ExecutionContext, emit func(int32)) error {
	return t.executeChain(id, tr, ctx, emit, false, 0)
}

// ExecuteEq runs the equality (label) program reached by following entry
// id, emitting the label-extraction features for t's position.
func (t *Table) ExecuteEq(id int, tr *tree.Traversal, ctx *tcond.ExecutionContext, emit func(int32)) error {
	return t.executeChain(id, tr, ctx, emit, true, 0)
}

func (t *Table) executeChain(id int, tr *tree.Traversal, ctx *tcond.ExecutionContext, emit func(int32), eq bool, depth int) error {
	straightID, err := t.resolveChain(id, tr, ctx, depth)
	if err != nil {
		return err
	}
	e, _ := t.Get(straightID)
	prog := e.Simple.ContextProgram
	if eq {
		prog = e.Simple.EqProgram
	}
	return tcond.Execute(prog, tr, ctx, emit)
}

// ResolveProgram follows the chain of branched entries starting at id
// (each branch decision run against a positional snapshot of t, per
// ExecuteContextProgramByIdInAll in model.h) until it reaches a
// straight-line entry, capping the number of hops at the table size
// (§4.I "Resolving a program id").
func (t *Table) ResolveProgram(id int, tr *tree.Traversal, ctx *tcond.ExecutionContext) (int, error) {
	return t.resolveChain(id, tr, ctx, 0)
}

func (t *Table) resolveChain(id int, tr *tree.Traversal, ctx *tcond.ExecutionContext, depth int) (int, error) {
	if depth > t.Len() {
		return 0, &modelerr.ConsistencyError{Msg: "program call chain exceeds table size"}
	}
	e, ok := t.Get(id)
	if !ok {
		return 0, &modelerr.OutOfRange{Kind: "program id", Value: id, Min: 0, Max: t.Len() - 1}
	}
	if e.Kind == KindTCond {
		return id, nil
	}
	branchPos := tree.NewTraversal(tr.Store(), tr.Position(), tr.Kind(), tr.Slice())
	target := e.Branch.PDefault
	var branchContext []int
	if err := tcond.Execute(e.Branch.Cond.Program, branchPos, ctx, func(v int32) {
		branchContext = append(branchContext, int(v))
	}); err != nil {
		return 0, err
	}
	if v, ok := e.Branch.byKey[encodeCaseKey(branchContext)]; ok {
		target = v
	}
	return t.resolveChain(target, tr, ctx, depth+1)
}
