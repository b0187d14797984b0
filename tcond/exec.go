package tcond

import (
	"strconv"

	"github.com/tgenlab/tgen/actorindex"
	"github.com/tgenlab/tgen/modelerr"
	"github.com/tgenlab/tgen/tree"
)

// ExecutionContext bundles the three actor indices (by type, by value, by
// context) a tree needs before TCond programs referencing
// PREV_NODE_TYPE/PREV_NODE_VALUE/PREV_NODE_CONTEXT can run against it.
// Grounded on ExecutionForTree in tcond_language.h, which builds all three
// eagerly in its constructor.
type ExecutionContext struct {
	ByType    *actorindex.Index
	ByValue   *actorindex.Index
	ByContext *actorindex.Index
}

// NewExecutionContext builds and returns the three actor indices for
// store.
func NewExecutionContext(store *tree.Store) *ExecutionContext {
	byType := actorindex.New(actorindex.ByNodeType, store)
	byType.Build()
	byValue := actorindex.New(actorindex.ByNodeValue, store)
	byValue.Build()
	byContext := actorindex.New(actorindex.ByNodeContext, store)
	byContext.Build()
	return &ExecutionContext{ByType: byType, ByValue: byValue, ByContext: byContext}
}

// Execute runs program against traversal t, calling emit once per WRITE_*
// opcode in emission order. Movement opcodes silently no-op when the move
// is impossible. PREV_NODE_* opcodes consult ctx's actor indices and move
// t if a predecessor is found, else no-op.
//
// Grounded on ExecutionForTree::GetConditionedFeaturesForPosition in
// tcond_language.h. The reference's always-true return is dropped (Open
// Question #3, DESIGN.md): this returns only an error, for malformed
// programs (an opcode value outside the known set).
func Execute(program Program, t *tree.Traversal, ctx *ExecutionContext, emit func(int32)) error {
	for _, op := range program {
		switch op.Cmd {
		case WriteType:
			emit(t.Node().TypeID)
		case WriteValue:
			emit(t.Node().ValueID)
		case WritePos:
			emit(int32(-1000 - t.Node().ChildIndex))
		case Up:
			t.Up()
		case Left:
			t.Left()
		case Right:
			t.Right()
		case DownFirst:
			t.DownFirstChild()
		case DownLast:
			t.DownLastChild()
		case PrevDFS:
			prevDFSStep(t)
		case PrevLeaf:
			prevLeaf(t)
		case NextLeaf:
			nextLeaf(t)
		case PrevNodeType:
			prevNodeBySymbol(ctx.ByType, actorindex.ByNodeType, t)
		case PrevNodeValue:
			prevNodeBySymbol(ctx.ByValue, actorindex.ByNodeValue, t)
		case PrevNodeContext:
			prevNodeBySymbol(ctx.ByContext, actorindex.ByNodeContext, t)
		default:
			return &modelerr.ParseError{Token: strconv.Itoa(int(op.Cmd)), Msg: "unknown TCond opcode value"}
		}
	}
	return nil
}

func prevDFSStep(t *tree.Traversal) bool {
	if t.Left() {
		for t.DownLastChild() {
		}
		return true
	}
	return t.Up()
}

func prevLeaf(t *tree.Traversal) {
	for {
		if t.Left() {
			for t.DownLastChild() {
			}
			return
		}
		if !t.Up() {
			return
		}
	}
}

func nextLeaf(t *tree.Traversal) {
	for {
		if t.Right() {
			for t.DownFirstChild() {
			}
			return
		}
		if !t.Up() {
			return
		}
	}
}

func prevNodeBySymbol(idx *actorindex.Index, strategy actorindex.Strategy, t *tree.Traversal) {
	symbol := actorindex.Symbol(strategy, t)
	if symbol < 0 {
		return
	}
	idx.MoveLeft(symbol, t)
}
