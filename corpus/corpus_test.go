package corpus

import (
	"strings"
	"testing"

	"github.com/tgenlab/tgen/intern"
)

func TestLoadParsesAllLines(t *testing.T) {
	ss := intern.New()
	input := strings.Join([]string{
		`[{"type":"A"}]`,
		`[{"type":"B"},{"type":"C"}]`,
		`[{"type":"D"},{"type":"E"},{"type":"F"}]`,
	}, "\n")

	l := &Loader{Workers: 2}
	samples, err := l.Load(strings.NewReader(input), ss, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 3 {
		t.Fatalf("len(samples) = %d, want 3", len(samples))
	}

	byIndex := make(map[int]int)
	for _, s := range samples {
		byIndex[s.Index] = s.Store.NumAllocatedNodes()
	}
	want := map[int]int{0: 1, 1: 2, 2: 3}
	for idx, n := range want {
		if byIndex[idx] != n {
			t.Errorf("sample %d: NumAllocatedNodes() = %d, want %d", idx, byIndex[idx], n)
		}
	}
}

func TestLoadRespectsMaxCount(t *testing.T) {
	ss := intern.New()
	input := strings.Join([]string{
		`[{"type":"A"}]`,
		`[{"type":"B"}]`,
		`[{"type":"C"}]`,
	}, "\n")

	l := &Loader{}
	samples, err := l.Load(strings.NewReader(input), ss, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 {
		t.Fatalf("len(samples) = %d, want 2", len(samples))
	}
}

func TestLoadDropsOversizedTrees(t *testing.T) {
	ss := intern.New()
	input := strings.Join([]string{
		`[{"type":"A"}]`,
		`[{"type":"B"},{"type":"C"},{"type":"D"}]`,
	}, "\n")

	l := &Loader{MaxTreeSize: 1}
	samples, err := l.Load(strings.NewReader(input), ss, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 {
		t.Fatalf("len(samples) = %d, want 1 (the 3-node tree should be dropped)", len(samples))
	}
}
