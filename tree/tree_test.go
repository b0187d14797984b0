package tree

import (
	"testing"

	"github.com/tgenlab/tgen/intern"
)

func strp(s string) *string { return &s }

func TestParseAndPreOrder(t *testing.T) {
	ss := intern.New()
	nodes := []ParsedNode{
		{Type: "Root", Children: []int{1}},
		{Type: "VarDecls", Children: []int{2, 3}},
		{Type: "Var", Value: strp("v1")},
		{Type: "PlusExpr", Children: []int{4, 5}},
		{Type: "Var", Value: strp("v1")},
		{Type: "Var", Value: strp("v2")},
	}
	store, err := Parse(nodes, ss)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
	order := store.PreOrder(0)
	want := []int{0, 1, 2, 3, 4, 5}
	if len(order) != len(want) {
		t.Fatalf("PreOrder = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("PreOrder = %v, want %v", order, want)
		}
	}
}

func TestParseRejectsBackReference(t *testing.T) {
	ss := intern.New()
	nodes := []ParsedNode{
		{Type: "A", Children: []int{0}},
	}
	if _, err := Parse(nodes, ss); err == nil {
		t.Fatal("expected error for child id <= parent id")
	}
}

func TestCanonicalizeIdempotentAndPreservesLabels(t *testing.T) {
	ss := intern.New()
	store := New()
	// Build via substitution: 0(1(2,3))
	err := store.SubstituteNode(0, Substitution{
		Type: "Root", HasChildren: true,
		Children: []Substitution{
			{Type: "A", HasChildren: true, Children: []Substitution{
				{Type: "B"}, {Type: "C"},
			}},
		},
	}, ss)
	if err != nil {
		t.Fatal(err)
	}
	before := labelsOf(store, ss)
	store.Canonicalize()
	after := labelsOf(store, ss)
	if !equalStrings(before, after) {
		t.Fatalf("canonicalize changed label sequence: %v -> %v", before, after)
	}
	store.Canonicalize()
	after2 := labelsOf(store, ss)
	if !equalStrings(after, after2) {
		t.Fatalf("canonicalize not idempotent: %v -> %v", after, after2)
	}
	if err := store.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
}

func labelsOf(s *Store, ss *intern.Interner) []string {
	var out []string
	for _, id := range s.PreOrder(0) {
		out = append(out, typeName(s.RawNode(id).TypeID, ss))
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTreeConstructionSequence(t *testing.T) {
	// Scenario S4: sequentially substitute to produce pre-order label
	// sequence 0,1,2,21,22,221,3 with 7 live nodes.
	ss := intern.New()
	store := New()
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	// 0 gets two children: "1" and "3".
	must(store.SubstituteNode(0, Substitution{Type: "0", HasChildren: true, Children: []Substitution{
		{Type: "1"}, {Type: "3"},
	}}, ss))
	firstChild := int(store.RawNode(0).FirstChild)
	// "1" gets two children: "2" and "21".
	must(store.SubstituteNode(firstChild, Substitution{Type: "1", HasChildren: true, Children: []Substitution{
		{Type: "2"}, {Type: "21"},
	}}, ss))
	secondGrandchild := int(store.RawNode(firstChild).LastChild)
	// "21" gets one child: "22".
	must(store.SubstituteNode(secondGrandchild, Substitution{Type: "21", HasChildren: true, Children: []Substitution{
		{Type: "22"},
	}}, ss))
	greatGrandchild := int(store.RawNode(secondGrandchild).FirstChild)
	// "22" gets one child: "221".
	must(store.SubstituteNode(greatGrandchild, Substitution{Type: "22", HasChildren: true, Children: []Substitution{
		{Type: "221"},
	}}, ss))

	var got []string
	for _, id := range store.PreOrder(0) {
		got = append(got, typeName(store.RawNode(id).TypeID, ss))
	}
	want := []string{"0", "1", "2", "21", "22", "221", "3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if len(got) != 7 {
		t.Fatalf("live nodes = %d, want 7", len(got))
	}
}

func TestTypeLabelEncodeDecodeInverse(t *testing.T) {
	cases := []struct {
		typeID                     int64
		hasFirstChild, hasRightSib bool
	}{
		{0, false, false},
		{1, true, false},
		{-1, false, true},
		{(1 << 28), true, true},
		{-(1 << 28), true, false},
	}
	for _, c := range cases {
		enc := EncodeTypeLabel(c.typeID, c.hasFirstChild, c.hasRightSib)
		dt, dfc, drs := DecodeTypeLabel(enc)
		if int64(dt) != c.typeID || dfc != c.hasFirstChild || drs != c.hasRightSib {
			t.Fatalf("roundtrip(%v) = (%d,%v,%v)", c, dt, dfc, drs)
		}
	}
}

func TestSliceBlocksRightMove(t *testing.T) {
	// Scenario S5.
	ss := intern.New()
	nodes := []ParsedNode{
		{Type: "Root", Children: []int{1}},
		{Type: "VarDecls", Children: []int{2, 3}},
		{Type: "Var", Value: strp("v1")},
		{Type: "PlusExpr", Children: []int{4, 5}},
		{Type: "Var", Value: strp("v1")},
		{Type: "Var", Value: strp("v2")},
	}
	store, err := Parse(nodes, ss)
	if err != nil {
		t.Fatal(err)
	}
	slice := NewSlice(store, 5)
	tr := NewTraversal(store, 5, Sliced, slice)
	var emitted []int32
	if !tr.Up() {
		t.Fatal("UP failed")
	}
	if tr.Position() != 3 {
		t.Fatalf("after UP position = %d, want 3", tr.Position())
	}
	if tr.DownLastChild() {
		t.Fatal("DOWN_LAST should fail: last child is sliced")
	}
	emitted = append(emitted, tr.Node().TypeID)
	plusType := store.RawNode(3).TypeID
	if emitted[0] != plusType {
		t.Fatalf("WRITE_TYPE emitted %d, want PlusExpr type %d", emitted[0], plusType)
	}
}
