package actorindex

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tgenlab/tgen/intern"
	"github.com/tgenlab/tgen/tree"
)

func strp(s string) *string { return &s }

func buildTree(t *testing.T) (*tree.Store, *intern.Interner) {
	ss := intern.New()
	nodes := []tree.ParsedNode{
		{Type: "Root", Children: []int{1, 2, 3}},
		{Type: "Var", Value: strp("v1")},
		{Type: "Var", Value: strp("v2")},
		{Type: "Var", Value: strp("v1")},
	}
	store, err := tree.Parse(nodes, ss)
	if err != nil {
		t.Fatal(err)
	}
	return store, ss
}

// Invariant 7: iterating MoveLeft from the last occurrence of a symbol
// must yield the same sequence (reversed) as a linear DFS scan.
func TestActorIndexEquivalence(t *testing.T) {
	store, _ := buildTree(t)
	idx := New(ByNodeType, store)
	idx.Build()

	// all three "Var" nodes (1,2,3) share a type symbol.
	varType := int(store.RawNode(1).TypeID)
	seq := idx.FindSequence(varType)
	if seq == nil || len(seq.Nodes) != 3 {
		t.Fatalf("FindSequence(Var) = %v, want 3 nodes", seq)
	}

	last := seq.Nodes[len(seq.Nodes)-1]
	tr := tree.NewTraversal(store, last, tree.Full, nil)
	var got []int
	got = append(got, tr.Position())
	for idx.MoveLeft(varType, tr) {
		got = append(got, tr.Position())
	}
	want := []int{3, 2, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("MoveLeft chain mismatch (-want +got):\n%s", diff)
	}
}

func TestActorIndexByValue(t *testing.T) {
	store, _ := buildTree(t)
	idx := New(ByNodeValue, store)
	idx.Build()

	v1 := int(store.RawNode(1).ValueID)
	seq := idx.FindSequence(v1)
	if seq == nil || len(seq.Nodes) != 2 {
		t.Fatalf("FindSequence(v1) = %v, want 2 nodes (1 and 3)", seq)
	}
	if seq.Nodes[0] != 1 || seq.Nodes[1] != 3 {
		t.Fatalf("FindSequence(v1).Nodes = %v, want [1 3]", seq.Nodes)
	}
}
