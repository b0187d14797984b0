package tree

import (
	"fmt"
	"strings"

	"github.com/tgenlab/tgen/intern"
	"github.com/tgenlab/tgen/modelerr"
)

// Store owns a dense arena of Node records. Node id 0 is always the root
// of this store. A Store may overlay a Parent store at PositionInParent;
// structural fields set to ValueInParent mean "resolve in Parent at
// PositionInParent instead".
type Store struct {
	nodes            []Node
	freeHead         int
	Parent           *Store
	PositionInParent int // NoPointer if this store has no parent
	overlays         map[int]*Store
}

// New returns a Store containing a single EMPTY root node.
func New() *Store {
	s := &Store{freeHead: NoPointer, PositionInParent: NoPointer}
	s.nodes = append(s.nodes, EmptyNode)
	return s
}

// NewOverlay returns a Store overlaid on parent at the given position,
// containing a single root node whose structural fields point into the
// parent via ValueInParent.
func NewOverlay(parent *Store, positionInParent int) *Store {
	s := &Store{freeHead: NoPointer, Parent: parent, PositionInParent: positionInParent}
	root := Node{
		TypeID: EmptyNodeLabel, ValueID: NoPointer,
		Parent: ValueInParent, LeftSib: ValueInParent, RightSib: ValueInParent,
		FirstChild: NoPointer, LastChild: NoPointer, ChildIndex: 0,
	}
	s.nodes = append(s.nodes, root)
	return s
}

// NumAllocatedNodes returns the arena size, including deallocated slots
// still threaded on the free list (matches ActorIndex.Build's sizing of
// its parallel predecessor array).
func (s *Store) NumAllocatedNodes() int { return len(s.nodes) }

// RawNode returns the node record at id without regard to slicing; callers
// that must respect a Slice should go through a Traversal instead.
func (s *Store) RawNode(id int) Node { return s.nodes[id] }

func (s *Store) setRawNode(id int, n Node) { s.nodes[id] = n }

func (s *Store) allocNode() int {
	if s.freeHead != NoPointer {
		id := s.freeHead
		s.freeHead = int(s.nodes[id].TypeID)
		s.nodes[id] = EmptyNode
		return id
	}
	s.nodes = append(s.nodes, EmptyNode)
	return len(s.nodes) - 1
}

func (s *Store) freeNode(id int) {
	s.nodes[id] = Node{TypeID: int32(s.freeHead), Parent: PointerDeallocated}
	s.freeHead = id
}

// ParsedNode is the normalized shape astio decodes §6.1 AST JSON elements
// into before handing them to Parse: Value has already been reduced to its
// interned-string form (numbers stringified) and Children are forward
// references by array index.
type ParsedNode struct {
	Type     string
	Value    *string
	Children []int
}

// Parse builds a Store from a flat, pre-order-ish list of ParsedNode
// records where each child index must be strictly greater than its
// parent's index and less than len(nodes) — the DAG-as-tree constraint
// from §4.B/§6.1.
func Parse(nodes []ParsedNode, ss *intern.Interner) (*Store, error) {
	if len(nodes) == 0 {
		return New(), nil
	}
	s := &Store{freeHead: NoPointer, PositionInParent: NoPointer}
	s.nodes = make([]Node, len(nodes))
	for i, pn := range nodes {
		n := Node{
			TypeID:     int32(ss.Intern(pn.Type)),
			ValueID:    NoPointer,
			Parent:     NoPointer,
			LeftSib:    NoPointer,
			RightSib:   NoPointer,
			FirstChild: NoPointer,
			LastChild:  NoPointer,
			ChildIndex: 0,
		}
		if pn.Value != nil {
			n.ValueID = int32(ss.Intern(*pn.Value))
		}
		s.nodes[i] = n
	}
	for i, pn := range nodes {
		var prevChild = NoPointer
		for ci, child := range pn.Children {
			if child <= i || child >= len(nodes) {
				return nil, &modelerr.ConsistencyError{Msg: fmt.Sprintf(
					"child id %d of node %d must be > parent id and < %d", child, i, len(nodes))}
			}
			s.nodes[child].Parent = int32(i)
			s.nodes[child].ChildIndex = int32(ci)
			s.nodes[child].LeftSib = int32(prevChild)
			if prevChild != NoPointer {
				s.nodes[prevChild].RightSib = int32(child)
			} else {
				s.nodes[i].FirstChild = int32(child)
			}
			prevChild = child
		}
		s.nodes[i].LastChild = int32(prevChild)
	}
	return s, nil
}

// CheckConsistency verifies sibling/parent/child back-pointers agree and
// that the free list is acyclic and disjoint from live nodes (invariant 3
// in §8).
func (s *Store) CheckConsistency() error {
	seen := make([]bool, len(s.nodes))
	for id, n := range s.nodes {
		if n.IsDeallocated() {
			continue
		}
		if n.FirstChild >= 0 {
			c := s.nodes[n.FirstChild]
			if int(c.Parent) != id || c.LeftSib != NoPointer {
				return &modelerr.ConsistencyError{Msg: fmt.Sprintf("node %d: first_child back-pointer mismatch", id)}
			}
		}
		if n.LastChild >= 0 {
			c := s.nodes[n.LastChild]
			if int(c.Parent) != id || c.RightSib != NoPointer {
				return &modelerr.ConsistencyError{Msg: fmt.Sprintf("node %d: last_child back-pointer mismatch", id)}
			}
		}
		if n.RightSib >= 0 {
			rs := s.nodes[n.RightSib]
			if int(rs.LeftSib) != id {
				return &modelerr.ConsistencyError{Msg: fmt.Sprintf("node %d: right_sib mutual-inverse violated", id)}
			}
		}
		if n.LeftSib >= 0 {
			ls := s.nodes[n.LeftSib]
			if int(ls.RightSib) != id {
				return &modelerr.ConsistencyError{Msg: fmt.Sprintf("node %d: left_sib mutual-inverse violated", id)}
			}
		}
	}
	// Walk the free list; it must be acyclic and touch only deallocated slots.
	visited := make(map[int]bool)
	for f := s.freeHead; f != NoPointer; {
		if visited[f] {
			return &modelerr.ConsistencyError{Msg: "free list is cyclic"}
		}
		visited[f] = true
		if !s.nodes[f].IsDeallocated() {
			return &modelerr.ConsistencyError{Msg: fmt.Sprintf("free list touches live node %d", f)}
		}
		f = int(s.nodes[f].TypeID)
	}
	for id := range seen {
		_ = id
	}
	return nil
}

// ForEachSubnodeOfNode walks the subtree rooted at node in pre-order DFS,
// calling fn with each visited node id (including node itself). Grounded
// on tree_index.cpp's ActorIndex::Build, the sole caller of this traversal
// in the reference implementation.
func (s *Store) ForEachSubnodeOfNode(node int, fn func(id int)) {
	var walk func(id int)
	walk = func(id int) {
		fn(id)
		for c := int(s.nodes[id].FirstChild); c != NoPointer; c = int(s.nodes[c].RightSib) {
			walk(c)
		}
	}
	walk(node)
}

// PreOrder returns the node ids of the subtree rooted at node in pre-order.
func (s *Store) PreOrder(node int) []int {
	var out []int
	s.ForEachSubnodeOfNode(node, func(id int) { out = append(out, id) })
	return out
}

// NumNodeChildren returns the number of children of position.
func (s *Store) NumNodeChildren(position int) int {
	n := 0
	for c := int(s.nodes[position].FirstChild); c != NoPointer; c = int(s.nodes[c].RightSib) {
		n++
	}
	return n
}

// Canonicalize reorders allocation so node ids are in pre-order DFS,
// without changing the observable pre-order label sequence (invariant 4).
func (s *Store) Canonicalize() {
	order := s.PreOrder(0)
	remap := make([]int, len(s.nodes))
	for i := range remap {
		remap[i] = NoPointer
	}
	for newID, oldID := range order {
		remap[oldID] = newID
	}
	newNodes := make([]Node, len(order))
	for newID, oldID := range order {
		n := s.nodes[oldID]
		remapField := func(v int32) int32 {
			if v < 0 {
				return v
			}
			return int32(remap[v])
		}
		n.Parent = remapField(n.Parent)
		n.LeftSib = remapField(n.LeftSib)
		n.RightSib = remapField(n.RightSib)
		n.FirstChild = remapField(n.FirstChild)
		n.LastChild = remapField(n.LastChild)
		newNodes[newID] = n
	}
	s.nodes = newNodes
	s.freeHead = NoPointer
}

// RemoveNodeChildren removes every descendant of startNodeID in
// depth-first post-order, returning freed slots to the free list.
func (s *Store) RemoveNodeChildren(startNodeID int) {
	var children []int
	for c := int(s.nodes[startNodeID].FirstChild); c != NoPointer; c = int(s.nodes[c].RightSib) {
		children = append(children, c)
	}
	for _, c := range children {
		s.removeSubtreePostOrder(c)
	}
	s.nodes[startNodeID].FirstChild = NoPointer
	s.nodes[startNodeID].LastChild = NoPointer
}

func (s *Store) removeSubtreePostOrder(id int) {
	var children []int
	for c := int(s.nodes[id].FirstChild); c != NoPointer; c = int(s.nodes[c].RightSib) {
		children = append(children, c)
	}
	for _, c := range children {
		s.removeSubtreePostOrder(c)
	}
	s.freeNode(id)
}

// RemoveNode detaches position from its parent/siblings (fixing up their
// back-pointers) and frees its whole subtree in post-order.
func (s *Store) RemoveNode(position int) {
	n := s.nodes[position]
	if n.LeftSib != NoPointer {
		s.nodes[n.LeftSib].RightSib = n.RightSib
	} else if n.Parent >= 0 {
		s.nodes[n.Parent].FirstChild = n.RightSib
	}
	if n.RightSib != NoPointer {
		s.nodes[n.RightSib].LeftSib = n.LeftSib
		// fix up child_index of remaining right siblings
		idx := n.ChildIndex
		for c := int(n.RightSib); c != NoPointer; c = int(s.nodes[c].RightSib) {
			s.nodes[c].ChildIndex = idx
			idx++
		}
	} else if n.Parent >= 0 {
		s.nodes[n.Parent].LastChild = n.LeftSib
	}
	s.removeSubtreePostOrder(position)
}

// CanSubstituteNode reports whether position is eligible for
// SubstituteNode: it must be live and not the deallocated sentinel.
func (s *Store) CanSubstituteNode(position int) bool {
	return position >= 0 && position < len(s.nodes) && !s.nodes[position].IsDeallocated()
}

// Substitution describes a node (and, recursively, its subtree) to graft
// at a position via SubstituteNode. An empty Type writes an UNKNOWN-labeled
// eps node (a future write target). Children are materialized only when
// HasChildren is set; without it, or with no Children listed, the node
// gets no children, and no eps children are added on its behalf.
type Substitution struct {
	Type     string // "" means UnknownLabel (an eps node)
	Value    *string
	Children []Substitution // nil: no declared children (leaf or eps, see HasChildren)
	HasChildren bool
}

// SubstituteNode removes the subtree below position and writes subst in
// its place, recursively materializing subst.Children. Matches §4.B: "A
// substitution removes the subtree below pos, writes the new node(s), and
// may spawn UNKNOWN-labeled children/right-siblings (eps nodes)."
func (s *Store) SubstituteNode(position int, subst Substitution, ss *intern.Interner) error {
	if !s.CanSubstituteNode(position) {
		return &modelerr.ConsistencyError{Msg: fmt.Sprintf("cannot substitute at deallocated/out-of-range position %d", position)}
	}
	s.RemoveNodeChildren(position)
	s.writeSubstitution(position, subst, ss)
	return nil
}

func (s *Store) writeSubstitution(position int, subst Substitution, ss *intern.Interner) {
	n := &s.nodes[position]
	if subst.Type == "" {
		n.TypeID = UnknownLabel
	} else {
		n.TypeID = int32(ss.Intern(subst.Type))
	}
	if subst.Value == nil {
		n.ValueID = NoPointer
	} else {
		n.ValueID = int32(ss.Intern(*subst.Value))
	}
	if !subst.HasChildren {
		return
	}
	var prev = NoPointer
	for ci, child := range subst.Children {
		id := s.allocNode()
		s.nodes[id].Parent = int32(position)
		s.nodes[id].ChildIndex = int32(ci)
		s.nodes[id].LeftSib = int32(prev)
		if prev != NoPointer {
			s.nodes[prev].RightSib = int32(id)
		} else {
			s.nodes[position].FirstChild = int32(id)
		}
		prev = id
		s.writeSubstitution(id, child, ss)
	}
	s.nodes[position].LastChild = int32(prev)
}

// SubstituteSingleNode writes a single node's type/value at position
// without touching its children, spawning no subtree.
func (s *Store) SubstituteSingleNode(position int, typ string, value *string, ss *intern.Interner) error {
	if !s.CanSubstituteNode(position) {
		return &modelerr.ConsistencyError{Msg: fmt.Sprintf("cannot substitute at position %d", position)}
	}
	n := &s.nodes[position]
	if typ == "" {
		n.TypeID = UnknownLabel
	} else {
		n.TypeID = int32(ss.Intern(typ))
	}
	if value == nil {
		n.ValueID = NoPointer
	} else {
		n.ValueID = int32(ss.Intern(*value))
	}
	return nil
}

// SubstituteNodeType rewrites only the type of position, leaving value and
// children untouched.
func (s *Store) SubstituteNodeType(position int, typ string, ss *intern.Interner) error {
	if !s.CanSubstituteNode(position) {
		return &modelerr.ConsistencyError{Msg: fmt.Sprintf("cannot substitute type at position %d", position)}
	}
	if typ == "" {
		s.nodes[position].TypeID = UnknownLabel
	} else {
		s.nodes[position].TypeID = int32(ss.Intern(typ))
	}
	return nil
}

// SubstituteNodeWithTree grafts other's tree (rooted at its node 0) onto
// node_id, reusing other's node records by appending them into this
// store's arena and remapping their internal ids.
func (s *Store) SubstituteNodeWithTree(nodeID int, other *Store) {
	s.RemoveNodeChildren(nodeID)
	base := len(s.nodes)
	remap := func(v int32) int32 {
		if v < 0 {
			return v
		}
		return v + int32(base)
	}
	for _, n := range other.nodes {
		nn := n
		if !n.IsDeallocated() {
			nn.Parent = remap(n.Parent)
			nn.LeftSib = remap(n.LeftSib)
			nn.RightSib = remap(n.RightSib)
			nn.FirstChild = remap(n.FirstChild)
			nn.LastChild = remap(n.LastChild)
		}
		s.nodes = append(s.nodes, nn)
	}
	root := &s.nodes[base]
	root.Parent = int32(s.nodes[nodeID].Parent)
	root.LeftSib = int32(s.nodes[nodeID].LeftSib)
	root.RightSib = int32(s.nodes[nodeID].RightSib)
	root.ChildIndex = s.nodes[nodeID].ChildIndex
	parent := s.nodes[nodeID].Parent
	if parent >= 0 {
		if s.nodes[parent].FirstChild == int32(nodeID) {
			s.nodes[parent].FirstChild = int32(base)
		}
		if s.nodes[parent].LastChild == int32(nodeID) {
			s.nodes[parent].LastChild = int32(base)
		}
	}
	if ls := s.nodes[nodeID].LeftSib; ls >= 0 {
		s.nodes[ls].RightSib = int32(base)
	}
	if rs := s.nodes[nodeID].RightSib; rs >= 0 {
		s.nodes[rs].LeftSib = int32(base)
	}
	s.freeNode(nodeID)
}

// SubtreeFromNodeAsTree returns a standalone deep copy of the subtree
// rooted at node, preserving canonical pre-order.
func (s *Store) SubtreeFromNodeAsTree(node int) *Store {
	order := s.PreOrder(node)
	out := &Store{freeHead: NoPointer, PositionInParent: NoPointer}
	out.nodes = make([]Node, len(order))
	remap := make(map[int]int, len(order))
	for newID, oldID := range order {
		remap[oldID] = newID
	}
	remapField := func(v int32) int32 {
		if v < 0 {
			return v
		}
		if nv, found := remap[int(v)]; found {
			return int32(nv)
		}
		return NoPointer
	}
	for newID, oldID := range order {
		n := s.nodes[oldID]
		n.Parent = remapField(n.Parent)
		n.LeftSib = remapField(n.LeftSib)
		n.RightSib = remapField(n.RightSib)
		n.FirstChild = remapField(n.FirstChild)
		n.LastChild = remapField(n.LastChild)
		if newID == 0 {
			n.Parent, n.LeftSib, n.RightSib = NoPointer, NoPointer, NoPointer
			n.ChildIndex = 0
		}
		out.nodes[newID] = n
	}
	return out
}

// SubtreeForCompletion returns the subtree rooted at parent(pos) (or at
// pos if pos is the root), with pos's value replaced by UNKNOWN (and its
// type too when isForNodeType is true), and every node that follows pos in
// pre-order DFS dropped. Matches §4.B.
func (s *Store) SubtreeForCompletion(pos int, isForNodeType bool) *Store {
	root := pos
	if p := s.nodes[pos].Parent; p >= 0 {
		root = int(p)
	}
	order := s.PreOrder(root)
	cut := len(order)
	for i, id := range order {
		if id == pos {
			cut = i
			break
		}
	}
	kept := make(map[int]bool, cut+1)
	var keptOrder []int
	for i, id := range order {
		if i > cut {
			break
		}
		kept[id] = true
		keptOrder = append(keptOrder, id)
	}
	out := &Store{freeHead: NoPointer, PositionInParent: NoPointer}
	remap := make(map[int]int, len(keptOrder))
	for newID, oldID := range keptOrder {
		remap[oldID] = newID
	}
	remapField := func(v int32) int32 {
		if v < 0 {
			return v
		}
		if nv, ok := remap[int(v)]; ok {
			return int32(nv)
		}
		return NoPointer
	}
	out.nodes = make([]Node, len(keptOrder))
	for newID, oldID := range keptOrder {
		n := s.nodes[oldID]
		n.Parent = remapField(n.Parent)
		n.LeftSib = remapField(n.LeftSib)
		n.RightSib = remapField(n.RightSib)
		n.FirstChild = remapField(n.FirstChild)
		n.LastChild = remapField(n.LastChild)
		if oldID == pos {
			n.ValueID = UnknownLabel
			if isForNodeType {
				n.TypeID = UnknownLabel
			}
		}
		out.nodes[newID] = n
	}
	if newRoot, ok := remap[root]; ok && newRoot != 0 {
		out.nodes[0].Parent, out.nodes[0].LeftSib, out.nodes[0].RightSib = NoPointer, NoPointer, NoPointer
	}
	return out
}

// InlineIntoParent projects this overlay store's content onto parent at
// PositionInParent; after the call the overlay can be discarded.
func (s *Store) InlineIntoParent(parent *Store) {
	if s.PositionInParent < 0 || s.Parent == nil {
		return
	}
	clean := &Store{freeHead: NoPointer, PositionInParent: NoPointer}
	clean.nodes = make([]Node, len(s.nodes))
	copy(clean.nodes, s.nodes)
	root := &clean.nodes[0]
	if root.Parent == ValueInParent {
		root.Parent = NoPointer
	}
	if root.LeftSib == ValueInParent {
		root.LeftSib = NoPointer
	}
	if root.RightSib == ValueInParent {
		root.RightSib = NoPointer
	}
	parent.SubstituteNodeWithTree(s.PositionInParent, clean)
}

// GetLabel returns the raw value id (forNodeType == false) or the encoded
// type label (forNodeType == true) of position.
func (s *Store) GetLabel(position int, forNodeType bool) int32 {
	n := s.nodes[position]
	if !forNodeType {
		return n.ValueID
	}
	return EncodeTypeLabel(int64(n.TypeID), n.FirstChild != NoPointer, n.RightSib != NoPointer)
}

// DebugString renders the whole store, from root node 0, as indented
// text: node id, type name, value, in pre-order. Not the out-of-scope source-language
// pretty-printer — purely structural, language-agnostic (SPEC_FULL §4.B
// supplement).
func (s *Store) DebugString(ss *intern.Interner) string {
	var b strings.Builder
	var walk func(id, depth int)
	walk = func(id, depth int) {
		n := s.nodes[id]
		b.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(&b, "#%d %s", id, typeName(n.TypeID, ss))
		if n.ValueID >= 0 {
			fmt.Fprintf(&b, " = %q", ss.String(int(n.ValueID)))
		}
		b.WriteByte('\n')
		for c := int(n.FirstChild); c != NoPointer; c = int(s.nodes[c].RightSib) {
			walk(c, depth+1)
		}
	}
	walk(0, 0)
	return b.String()
}

func typeName(t int32, ss *intern.Interner) string {
	switch t {
	case EmptyNodeLabel:
		return "<empty>"
	case UnknownLabel:
		return "<unknown>"
	default:
		return ss.String(int(t))
	}
}
