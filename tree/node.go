// Package tree implements the node arena, navigation primitives, overlay
// subtrees, and the tree-slice abstraction that the feature extractors walk.
//
// Grounded on original_source/phog/tree/tree.h and tree.cpp: nodes refer to
// each other by integer id into a single dense slice rather than by
// pointer, so a Store is trivially clonable and safe to share read-only
// across threads; freed slots form an intrusive free list threaded through
// the TypeID field.
package tree

// Sentinel values for Node.TypeID.
const (
	EmptyNodeLabel = -1
	UnknownLabel   = -2
)

// Sentinel values for Node's structural pointer fields (Parent, LeftSib,
// RightSib, FirstChild, LastChild).
const (
	NoPointer         = -1
	ValueInParent     = -2
	PointerDeallocated = -3
)

// Node is a fixed 32-byte record: eight int32 fields. Structural fields
// carry either a live node id (>= 0), NoPointer, ValueInParent (the real
// value lives at the same structural name in the parent store, at
// PositionInParent), or PointerDeallocated (the slot is on the free list,
// with the next free slot's id threaded through TypeID).
type Node struct {
	TypeID     int32
	ValueID    int32
	Parent     int32
	LeftSib    int32
	RightSib   int32
	FirstChild int32
	LastChild  int32
	ChildIndex int32
}

// EmptyNode is the value read for a sliced or eps node position.
var EmptyNode = Node{
	TypeID:     EmptyNodeLabel,
	ValueID:    NoPointer,
	Parent:     NoPointer,
	LeftSib:    NoPointer,
	RightSib:   NoPointer,
	FirstChild: NoPointer,
	LastChild:  NoPointer,
	ChildIndex: 0,
}

// HasNonTerminal reports whether the node's type or value is the UNKNOWN
// sentinel, i.e. it is an in-progress "eps" node rather than a fully
// materialized one.
func (n Node) HasNonTerminal() bool {
	return n.TypeID == UnknownLabel || n.ValueID == UnknownLabel
}

// IsUnknownType reports whether the node's type is the UNKNOWN sentinel.
func (n Node) IsUnknownType() bool { return n.TypeID == UnknownLabel }

// IsUnknownValue reports whether the node's value is the UNKNOWN sentinel.
func (n Node) IsUnknownValue() bool { return n.ValueID == UnknownLabel }

// IsDeallocated reports whether this slot is on the free list.
func (n Node) IsDeallocated() bool { return n.Parent == PointerDeallocated }
