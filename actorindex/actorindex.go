// Package actorindex builds, per tree store, a mapping from "actor
// symbol" (an integer derived from a node) to the ordered list of node
// ids producing that symbol, plus a predecessor array answering "the
// immediately previous node with the same symbol" in O(1) amortized —
// letting the TCond opcodes PREV_NODE_TYPE/PREV_NODE_VALUE/PREV_NODE_CONTEXT
// execute without a linear scan.
//
// Grounded on original_source/phog/tree/tree_index.h and tree_index.cpp.
package actorindex

import (
	"github.com/tgenlab/tgen/tree"
)

// Strategy is the closed set of pluggable actor-symbol derivations (§4.D):
// by node type, by node value, or by a hash of the node's value/type plus
// up to two ancestors'. Reimplemented as an explicit tag rather than
// virtual dispatch, per SPEC_FULL.md §9's guidance for this exact case.
type Strategy int

const (
	ByNodeType Strategy = iota
	ByNodeValue
	ByNodeContext
)

// Symbol returns the actor symbol for the node at traversal t's current
// position under the given strategy, or a negative number if the node has
// no symbol under that strategy.
func Symbol(strategy Strategy, t *tree.Traversal) int {
	switch strategy {
	case ByNodeType:
		return int(t.Node().TypeID)
	case ByNodeValue:
		return int(t.Node().ValueID)
	case ByNodeContext:
		return int(contextHash(t))
	default:
		return -1
	}
}

// contextHash rolls a SequenceHashFeature-style hash over (value, type) of
// the node itself and up to two ancestors (3 levels total), matching
// ActorFinderByNodeContext's loop bound of 3 iterations including the
// starting node. Climbs a scratch copy of t so the caller's cursor
// position is never disturbed.
func contextHash(t *tree.Traversal) int32 {
	scratch := tree.NewTraversal(t.Store(), t.Position(), tree.Full, nil)
	var h int32 = -1
	push := func(v int32) {
		h = fingerprintCat(h, v)
		if h < 0 {
			h = -h
		}
	}
	for level := 0; level < 3; level++ {
		n := scratch.Node()
		push(n.ValueID)
		push(n.TypeID)
		if level < 2 && !scratch.Up() {
			break
		}
	}
	return h
}

// fingerprintCat is an order-preserving 32-bit rolling combiner suitable
// for use as a hash-map key. The reference's FingerprintCat is defined in
// an external base library not present in this retrieval; this is a
// standard FNV-style polynomial combiner satisfying the only documented
// contract ("order-preserving... designed for use as a hash-map key"),
// see DESIGN.md.
func fingerprintCat(h, v int32) int32 {
	const prime = 2654435761
	return int32(uint32(h)*prime + uint32(v))
}

// Sequence holds, for one actor symbol, the ordered list of node ids
// producing it.
type Sequence struct {
	Nodes []int
}

// Predecessor records, for a node id, the actor symbol it produces (if
// any, -1 otherwise) and the id of the previous node with that symbol
// (NoPredecessor if none).
type Predecessor struct {
	Symbol       int
	PredPosition int
}

// NoPredecessor marks the absence of a previous node with the same
// symbol.
const NoPredecessor = -1

// Index is the per-tree actor index for one Strategy.
type Index struct {
	strategy     Strategy
	tree         *tree.Store
	sequences    map[int]*Sequence
	predecessors []Predecessor
}

// New returns an index for store under strategy. Call Build before
// querying.
func New(strategy Strategy, store *tree.Store) *Index {
	return &Index{strategy: strategy, tree: store, sequences: make(map[int]*Sequence)}
}

// Build performs a single canonical DFS walk over store, populating the
// symbol sequences and predecessor array. Grounded verbatim on
// ActorIndex::Build in tree_index.cpp.
func (idx *Index) Build() {
	idx.predecessors = make([]Predecessor, idx.tree.NumAllocatedNodes())
	for i := range idx.predecessors {
		idx.predecessors[i] = Predecessor{Symbol: -1, PredPosition: NoPredecessor}
	}
	idx.tree.ForEachSubnodeOfNode(0, func(nodeID int) {
		tr := tree.NewTraversal(idx.tree, nodeID, tree.Full, nil)
		symbol := Symbol(idx.strategy, tr)
		if symbol < 0 {
			return
		}
		seq, ok := idx.sequences[symbol]
		if !ok {
			seq = &Sequence{}
			idx.sequences[symbol] = seq
		}
		idx.predecessors[nodeID].Symbol = symbol
		if len(seq.Nodes) > 0 {
			idx.predecessors[nodeID].PredPosition = seq.Nodes[len(seq.Nodes)-1]
		}
		seq.Nodes = append(seq.Nodes, nodeID)
	})
}

// FindSequence returns the Sequence for symbol, or nil if none.
func (idx *Index) FindSequence(symbol int) *Sequence { return idx.sequences[symbol] }

// GetSymbolPredecessor returns the predecessor position for nodeID in t
// (O(1)), only valid when t == idx.tree.
func (idx *Index) GetSymbolPredecessor(t *tree.Store, nodeID int) (symbol, predPosition int, ok bool) {
	if t != idx.tree || nodeID < 0 || nodeID >= len(idx.predecessors) {
		return 0, 0, false
	}
	p := idx.predecessors[nodeID]
	if p.Symbol < 0 {
		return 0, 0, false
	}
	return p.Symbol, p.PredPosition, true
}

// MoveLeft finds, starting at position (a traversal whose current store
// may be a non-indexed overlay on idx.tree), the previous node with the
// given symbol, moving the cursor there. Returns false if none exists.
//
// Grounded on ActorSymbolIterator::MoveLeft in tree_index.h: an O(1)
// lookup when already in the indexed store; a local backward DFS scan
// when in a non-indexed overlay, falling through to the indexed lookup
// once the scan crosses into the parent store.
func (idx *Index) MoveLeft(symbol int, t *tree.Traversal) bool {
	if t.Store() == idx.tree {
		_, predPos, ok := idx.GetSymbolPredecessor(t.Store(), t.Position())
		if !ok || predPos == NoPredecessor {
			return false
		}
		t.MoveTo(predPos)
		return true
	}
	// Local backward scan within the non-indexed overlay: PREV_DFS-style
	// stepping (left then drill down_last_child repeatedly, else up),
	// checking each visited node's symbol until we exhaust the overlay.
	startStore := t.Store()
	scan := tree.NewTraversal(t.Store(), t.Position(), tree.Full, nil)
	for prevDFS(scan) {
		if scan.Store() != startStore {
			break
		}
		if Symbol(idx.strategy, scan) == symbol {
			t.SetStore(scan.Store(), scan.Position())
			return true
		}
	}
	if scan.Store() == idx.tree {
		t.SetStore(scan.Store(), scan.Position())
		return idx.MoveLeft(symbol, t)
	}
	return false
}

// prevDFS steps one position backward in pre-order DFS: left-then-drill
// to the rightmost leaf, else up. The PREV_DFS TCond opcode steps the same
// way through its own copy in package tcond.
func prevDFS(t *tree.Traversal) bool {
	if t.Left() {
		for t.DownLastChild() {
		}
		return true
	}
	return t.Up()
}

