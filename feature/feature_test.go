package feature

import (
	"math"
	"testing"
)

func f(ints ...int32) Feature {
	out := Empty
	for _, v := range ints {
		out = out.Push(v)
	}
	return out
}

// S6 — Kneser-Ney continuation counts.
func TestKneserNeyContinuationCounts(t *testing.T) {
	c := NewCounter(KneserNey, nil)
	c.AddValue(f(1, 2), 10, 3)
	c.AddValue(f(1, 3), 10, 2)
	c.AddValue(f(1, 2), 11, 1)
	c.AddValue(f(1, 3), 11, 1)
	c.AddValue(f(1, 4), 11, 1)
	c.AddValue(Empty, 11, 1)
	c.AddValue(Empty, 10, 2)
	c.EndAdding()

	ls, ok := c.LengthStats(2)
	if !ok {
		t.Fatal("no length stats for length 2")
	}
	if got := ls.TotalContinuation(); got != 5 {
		t.Fatalf("total_prefix_count(len 2) = %d, want 5", got)
	}
	if got := ls.ContinuationCounts[10]; got != 2 {
		t.Fatalf("value_prefix_count(len 2, 10) = %d, want 2", got)
	}
	if got := ls.ContinuationCounts[11]; got != 3 {
		t.Fatalf("value_prefix_count(len 2, 11) = %d, want 3", got)
	}
}

// Invariant 8 — the empty feature's sorted-by-probability list is a
// permutation of the unique labels in decreasing log-prob.
func TestCounterMonotonicity(t *testing.T) {
	c := NewCounter(WittenBell, nil)
	c.AddValue(Empty, 1, 5)
	c.AddValue(Empty, 2, 3)
	c.AddValue(Empty, 3, 1)
	c.EndAdding()

	stats, ok := c.Stats(Empty)
	if !ok {
		t.Fatal("no stats for empty feature")
	}
	if len(stats.SortedByProb) != 3 {
		t.Fatalf("len(SortedByProb) = %d, want 3", len(stats.SortedByProb))
	}
	seen := map[int32]bool{}
	for i, lp := range stats.SortedByProb {
		seen[lp.Label] = true
		if i > 0 && stats.SortedByProb[i-1].Prob < lp.Prob {
			t.Fatalf("SortedByProb not descending at index %d", i)
		}
	}
	for _, label := range []int32{1, 2, 3} {
		if !seen[label] {
			t.Fatalf("label %d missing from SortedByProb", label)
		}
	}
}

// Invariant 9 — every estimated Kneser-Ney delta lies in [0,1].
func TestKneserNeyDeltaBounded(t *testing.T) {
	c := NewCounter(KneserNey, nil)
	for i := int32(0); i < 20; i++ {
		c.AddValue(f(1, i%5), i, 1)
	}
	c.EndAdding()
	ls, ok := c.LengthStats(2)
	if !ok {
		t.Fatal("no length stats")
	}
	for i, d := range ls.Delta {
		if d < 0 || d > 1 {
			t.Fatalf("Delta[%d] = %v, out of [0,1]", i, d)
		}
	}
}

func TestSmoothingLaplaceMatchesFormula(t *testing.T) {
	c := NewCounter(Laplace, nil)
	c.AddValue(Empty, 1, 4)
	c.AddValue(Empty, 2, 1)
	c.AddValue(f(7), 1, 2)
	c.AddValue(f(7), 2, 1)
	c.EndAdding()

	s := NewSmoothing(c)
	s.SetUnconditioned(1)
	s.Push(7)

	stats, _ := c.Stats(f(7))
	want := float64(stats.Counts[1]+1) / float64(stats.TotalCount+stats.UniqueLabelCount+1)
	got := math.Pow(2, s.LogProb())
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("LogProb implies p=%v, want %v", got, want)
	}
}
