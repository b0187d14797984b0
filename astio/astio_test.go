package astio

import (
	"strings"
	"testing"

	"github.com/tgenlab/tgen/intern"
)

func TestLoadSimpleTree(t *testing.T) {
	ss := intern.New()
	input := `[{"type":"MemberExpression","children":[1]},{"type":"Property","value":"foo"}]`
	result, err := Load(strings.NewReader(input), ss, 0)
	if err != nil {
		t.Fatal(err)
	}
	if result.Dropped {
		t.Fatal("expected tree not to be dropped")
	}
	if result.Store.NumAllocatedNodes() != 2 {
		t.Fatalf("NumAllocatedNodes() = %d, want 2", result.Store.NumAllocatedNodes())
	}
}

func TestLoadToleratesTrailingZeroSentinel(t *testing.T) {
	ss := intern.New()
	input := `[{"type":"Literal","value":1},0]`
	result, err := Load(strings.NewReader(input), ss, 0)
	if err != nil {
		t.Fatal(err)
	}
	if result.Store.NumAllocatedNodes() != 1 {
		t.Fatalf("NumAllocatedNodes() = %d, want 1", result.Store.NumAllocatedNodes())
	}
}

func TestLoadRejectsChildIdNotGreaterThanParent(t *testing.T) {
	ss := intern.New()
	input := `[{"type":"A","children":[0]}]`
	if _, err := Load(strings.NewReader(input), ss, 0); err == nil {
		t.Fatal("expected error for self-referencing child")
	}
}

func TestLoadRejectsMismatchedID(t *testing.T) {
	ss := intern.New()
	input := `[{"type":"A","id":3}]`
	if _, err := Load(strings.NewReader(input), ss, 0); err == nil {
		t.Fatal("expected error for id not matching index")
	}
}

func TestLoadDropsOversizedTree(t *testing.T) {
	ss := intern.New()
	input := `[{"type":"A"},{"type":"B"}]`
	result, err := Load(strings.NewReader(input), ss, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Dropped {
		t.Fatal("expected tree exceeding max_tree_size to be dropped")
	}
}

func TestLoadAllIteratesLines(t *testing.T) {
	ss := intern.New()
	input := `[{"type":"A"}]` + "\n" + `[{"type":"B"},{"type":"C"}]` + "\n"
	var counts []int
	err := LoadAll(strings.NewReader(input), ss, 0, func(r LoadResult) error {
		counts = append(counts, r.Store.NumAllocatedNodes())
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 || counts[0] != 1 || counts[1] != 2 {
		t.Fatalf("counts = %v, want [1 2]", counts)
	}
}

func TestLoadNormalizesValueToNFC(t *testing.T) {
	ss := intern.New()
	// "e" + combining acute accent (NFD) should normalize to the precomposed "é" (NFC).
	decomposed := `[{"type":"Literal","value":"é"}]`
	precomposed := `[{"type":"Literal","value":"é"}]`

	r1, err := Load(strings.NewReader(decomposed), ss, 0)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Load(strings.NewReader(precomposed), ss, 0)
	if err != nil {
		t.Fatal(err)
	}
	if r1.Store.RawNode(0).ValueID != r2.Store.RawNode(0).ValueID {
		t.Fatal("NFD and NFC spellings of the same identifier interned to different ids")
	}
}
