package tree

// Kind selects one of the five navigator variants sharing a common
// operation set (Up, Left, Right, DownFirstChild, DownLastChild, Node,
// Position). The reference implements each variant as a separate C++
// class; Go's idiom for a small closed set of behavioral variants is one
// type carrying an explicit tag rather than five near-duplicate types
// (see DESIGN.md, echoing the "explicit tag over dynamic dispatch" choice
// SPEC_FULL.md §9 already calls for on the actor-symbol strategy).
type Kind int

const (
	// Full traverses read-only, crosses overlay boundaries, never
	// materializes eps nodes.
	Full Kind = iota
	// Local traverses writably but never crosses overlay boundaries or
	// materializes eps nodes (moves into a missing child/right-sibling
	// simply fail).
	Local
	// ConstLocal is Local's read-only counterpart.
	ConstLocal
	// LocalEps is Local but materializes an EMPTY-labeled node on
	// navigation into a missing child or right-sibling position.
	LocalEps
	// Sliced is read-only, crosses overlay boundaries, and additionally
	// hides any node in [Slice.Begin, Slice.End) other than optionally
	// the begin node.
	Sliced
)

func (k Kind) writable() bool { return k == Local || k == LocalEps }
func (k Kind) crossesOverlays() bool { return k == Full || k == Sliced }
func (k Kind) materializesEps() bool { return k == LocalEps }

// Traversal is the shared cursor type for all five navigator variants.
// Movement methods return false and leave the cursor unchanged when the
// movement is impossible.
type Traversal struct {
	store    *Store
	position int
	kind     Kind
	slice    *Slice
}

// NewTraversal returns a Traversal of the given kind positioned at
// position in store. slice is consulted only when kind == Sliced.
func NewTraversal(store *Store, position int, kind Kind, slice *Slice) *Traversal {
	return &Traversal{store: store, position: position, kind: kind, slice: slice}
}

// Store returns the store the cursor currently lives in (may differ from
// the store the Traversal was constructed with, after crossing an overlay
// boundary).
func (t *Traversal) Store() *Store { return t.store }

// Position returns the cursor's current node id within Store().
func (t *Traversal) Position() int { return t.position }

// Kind returns the traversal variant.
func (t *Traversal) Kind() Kind { return t.kind }

// Slice returns the slice consulted when Kind() == Sliced, or nil.
func (t *Traversal) Slice() *Slice { return t.slice }

// MoveTo teleports the cursor directly to position within its current
// store, bypassing step-wise validity checks. Used by actorindex.MoveLeft,
// which has already established via the index that position is a valid
// predecessor.
func (t *Traversal) MoveTo(position int) { t.position = position }

// SetStore switches the cursor's store (used when a backward scan crosses
// from a non-indexed overlay into its parent store) and repositions it.
func (t *Traversal) SetStore(store *Store, position int) {
	t.store, t.position = store, position
}

// Node returns the node record at the cursor's position, honoring slicing
// for the Sliced variant.
func (t *Traversal) Node() Node {
	if t.kind == Sliced && t.slice != nil && t.slice.IsNodeSliced(t.store, t.position) {
		if t.slice.IsBeginNode(t.store, t.position) {
			real := t.store.RawNode(t.position)
			n := EmptyNode
			n.ChildIndex = real.ChildIndex
			n.LeftSib = real.LeftSib
			n.Parent = real.Parent
			if t.slice.AllowReadTypeForBegin {
				n.TypeID = real.TypeID
			}
			return n
		}
		return EmptyNode
	}
	return t.store.RawNode(t.position)
}

// blockedBySlice reports whether nodeID in store is sliced and is not
// the slice's begin node — the condition that blocks movement in the
// Sliced variant.
func (t *Traversal) blockedBySlice(store *Store, nodeID int) bool {
	if t.kind != Sliced || t.slice == nil {
		return false
	}
	return t.slice.IsNodeSliced(store, nodeID) && !t.slice.IsBeginNode(store, nodeID)
}

// crossUpIfAtOverlayRoot re-roots the cursor into the parent store at
// PositionInParent if the cursor sits at an overlay's node 0 and the
// variant is allowed to cross overlays. Returns whether a crossing
// happened.
func (t *Traversal) crossUpIfAtOverlayRoot() bool {
	if !t.kind.crossesOverlays() {
		return false
	}
	if t.position != 0 || t.store.Parent == nil {
		return false
	}
	if t.blockedBySlice(t.store.Parent, t.store.PositionInParent) {
		return false
	}
	t.store, t.position = t.store.Parent, t.store.PositionInParent
	return true
}

// Up moves to the parent of the current node.
func (t *Traversal) Up() bool {
	if t.crossUpIfAtOverlayRoot() {
		return t.Up()
	}
	p := int(t.store.RawNode(t.position).Parent)
	if p < 0 {
		return false
	}
	if t.blockedBySlice(t.store, p) {
		return false
	}
	t.position = p
	return true
}

// Left moves to the left sibling of the current node.
func (t *Traversal) Left() bool {
	if t.crossUpIfAtOverlayRoot() {
		return t.Left()
	}
	ls := int(t.store.RawNode(t.position).LeftSib)
	if ls < 0 {
		return false
	}
	if t.blockedBySlice(t.store, ls) {
		return false
	}
	t.position = ls
	return true
}

// Right moves to the right sibling of the current node.
func (t *Traversal) Right() bool {
	if t.crossUpIfAtOverlayRoot() {
		return t.Right()
	}
	rs := int(t.store.RawNode(t.position).RightSib)
	if rs < 0 {
		if t.kind.materializesEps() && rs == NoPointer {
			return t.materializeEps(false)
		}
		return false
	}
	if t.blockedBySlice(t.store, rs) {
		return false
	}
	t.position = rs
	return true
}

// overlayAt returns the cached overlay store rooted at position in store,
// if any.
func (s *Store) overlayAt(position int) *Store {
	if s.overlays == nil {
		return nil
	}
	return s.overlays[position]
}

// AttachOverlay records that overlay is the in-progress subtree-in-
// construction for position in s, so an overlay-crossing traversal (Full
// or Sliced) that descends from position lands on overlay's root instead
// of s's own child records. Local, ConstLocal and LocalEps traversals do
// not consult attached overlays.
func (s *Store) AttachOverlay(position int, overlay *Store) {
	if s.overlays == nil {
		s.overlays = make(map[int]*Store)
	}
	s.overlays[position] = overlay
}

// DownFirstChild moves to the first child of the current node.
func (t *Traversal) DownFirstChild() bool {
	if t.kind.crossesOverlays() {
		if ov := t.store.overlayAt(t.position); ov != nil {
			t.store, t.position = ov, 0
			return true
		}
	}
	fc := int(t.store.RawNode(t.position).FirstChild)
	if fc < 0 {
		if t.kind.materializesEps() && fc == NoPointer {
			return t.materializeEps(true)
		}
		return false
	}
	if t.kind == Sliced && t.slice != nil && t.slice.IsNodeSliced(t.store, fc) {
		// Unlike Left/Right/Up, descending into a child blocks entry
		// even when the child is the slice's begin node: the predictor
		// must not be able to tell, by the mere existence of a visitable
		// first child, that the node being predicted has children.
		return false
	}
	t.position = fc
	return true
}

// DownLastChild moves to the last child of the current node. The Sliced
// variant additionally refuses to move into a last child that
// HasNonTerminal (an in-progress node), so the model cannot learn from
// the existence of its own yet-unpredicted output.
func (t *Traversal) DownLastChild() bool {
	if t.kind.crossesOverlays() {
		if ov := t.store.overlayAt(t.position); ov != nil {
			// descend to the rightmost live node of the overlay's root
			// siblings chain, per "last child" semantics.
			t.store, t.position = ov, 0
			return true
		}
	}
	lc := int(t.store.RawNode(t.position).LastChild)
	if lc < 0 {
		if t.kind.materializesEps() && lc == NoPointer {
			return t.materializeEps(true)
		}
		return false
	}
	if t.kind == Sliced {
		if (t.slice != nil && t.slice.IsNodeSliced(t.store, lc)) || t.store.RawNode(lc).HasNonTerminal() {
			// Blocks entry even into the begin node itself (see S5 in
			// DESIGN.md): the predictor must not be able to tell, from
			// a successful descent, whether the node being predicted
			// has right siblings.
			return false
		}
	} else if t.blockedBySlice(t.store, lc) {
		return false
	}
	t.position = lc
	return true
}

// materializeEps allocates a new EMPTY-labeled node as the missing first
// child / last child (down=true) or right sibling (down=false) of the
// current position, moving the cursor onto it. It becomes a real node on
// the first write to it.
func (t *Traversal) materializeEps(down bool) bool {
	id := t.store.allocNode()
	if down {
		t.store.nodes[id].Parent = int32(t.position)
		t.store.nodes[id].ChildIndex = 0
		t.store.nodes[t.position].FirstChild = int32(id)
		t.store.nodes[t.position].LastChild = int32(id)
	} else {
		n := t.store.RawNode(t.position)
		t.store.nodes[id].Parent = n.Parent
		t.store.nodes[id].ChildIndex = n.ChildIndex + 1
		t.store.nodes[id].LeftSib = int32(t.position)
		t.store.nodes[t.position].RightSib = int32(id)
		if n.Parent >= 0 {
			t.store.nodes[n.Parent].LastChild = int32(id)
		}
	}
	t.position = id
	return true
}

// PreOrderIter walks the subtree rooted at the traversal's starting
// position in pre-order DFS, using the traversal's own movement
// primitives (so it respects the variant's slicing/overlay-crossing
// rules). It is restartable: Reset moves it back to the start.
type PreOrderIter struct {
	t          *Traversal
	startStore *Store
	start      int
	started    bool
	done       bool
}

// NewPreOrderIter returns a pre-order DFS iterator starting at t's current
// position (inclusive).
func NewPreOrderIter(t *Traversal) *PreOrderIter {
	return &PreOrderIter{t: t, startStore: t.store, start: t.position}
}

// Reset restarts iteration from the original start position.
func (it *PreOrderIter) Reset() {
	it.t.store, it.t.position = it.startStore, it.start
	it.started = false
	it.done = false
}

// Next advances to the next node in pre-order DFS and reports whether one
// was found. The first call returns the start position itself.
func (it *PreOrderIter) Next() (int, bool) {
	if it.done {
		return 0, false
	}
	if !it.started {
		it.started = true
		return it.t.Position(), true
	}
	if it.t.DownFirstChild() {
		return it.t.Position(), true
	}
	for {
		if it.t.Position() == it.start {
			it.done = true
			return 0, false
		}
		if it.t.Right() {
			return it.t.Position(), true
		}
		if !it.t.Up() {
			it.done = true
			return 0, false
		}
	}
}

// PostOrderIter walks the subtree rooted at a position in post-order DFS.
// Unlike PreOrderIter, it precomputes the order directly from the store,
// bypassing slicing and overlays. The store's own removal code
// (RemoveNodeChildren/RemoveNode) walks post-order on its own and does not
// use this iterator.
type PostOrderIter struct {
	order []int
	i     int
}

// NewPostOrderIter returns a post-order iterator over the subtree rooted
// at node in store.
func NewPostOrderIter(store *Store, node int) *PostOrderIter {
	return &PostOrderIter{order: PostOrderNodes(store, node)}
}

// Next returns the next node id in post-order, or (0, false) when done.
func (it *PostOrderIter) Next() (int, bool) {
	if it.i >= len(it.order) {
		return 0, false
	}
	v := it.order[it.i]
	it.i++
	return v, true
}

// Reset restarts iteration from the beginning.
func (it *PostOrderIter) Reset() { it.i = 0 }

// PostOrderNodes returns the node ids of the subtree rooted at node in
// post-order, using store directly (bypasses slicing).
func PostOrderNodes(store *Store, node int) []int {
	var out []int
	var walk func(id int)
	walk = func(id int) {
		for c := int(store.RawNode(id).FirstChild); c != NoPointer; c = int(store.RawNode(c).RightSib) {
			walk(c)
		}
		out = append(out, id)
	}
	walk(node)
	return out
}
