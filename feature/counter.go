package feature

import "sort"

// LabelProb pairs a label with its unconditioned ("Laplace-style")
// probability estimate under a given feature, used for sorted-by-
// probability reporting and for beam-search label ranking.
type LabelProb struct {
	Label int32
	Prob  float64
}

// Stats holds the counter's finalized per-feature summary, computed once
// by EndAdding.
type Stats struct {
	Counts           map[int32]int
	TotalCount       int
	UniqueLabelCount int
	BucketCounts     [4]int
	SortedByProb     []LabelProb
}

// LengthStats holds per-feature-length continuation counts and the
// derived Kneser-Ney delta, computed only when the counter's mode is
// KneserNey.
type LengthStats struct {
	ContinuationCounts map[int32]int
	Delta              [4]float64
}

// TotalContinuation returns the sum of continuation counts across all
// labels at this length (S6's total_prefix_count).
func (ls *LengthStats) TotalContinuation() int {
	total := 0
	for _, c := range ls.ContinuationCounts {
		total += c
	}
	return total
}

func deltaFor(delta [4]float64, count int) float64 {
	if count > 3 {
		count = 3
	}
	return delta[count]
}

// Counter accumulates (feature, label) -> count entries until EndAdding
// finalizes it, at which point it becomes read-only.
type Counter struct {
	raw       map[Feature]map[int32]int
	finalized bool
	stats     map[Feature]*Stats
	lengths   map[int]*LengthStats
	mode      Mode
	fixedKNDelta *float64
}

// Mode selects the smoothing family (§6.3).
type Mode int

const (
	WittenBell Mode = iota
	KneserNey
	Laplace
)

// NewCounter returns an empty Counter using mode. fixedKNDelta, if
// non-nil, overrides the per-length estimated Kneser-Ney delta with a
// single fixed value for every bucket (§6.3).
func NewCounter(mode Mode, fixedKNDelta *float64) *Counter {
	return &Counter{
		raw:          make(map[Feature]map[int32]int),
		stats:        make(map[Feature]*Stats),
		lengths:      make(map[int]*LengthStats),
		mode:         mode,
		fixedKNDelta: fixedKNDelta,
	}
}

// AddValue grows the count for (feature, label) by k. Panics if called
// after EndAdding, matching the reference's "forbids further mutation"
// contract — callers must not race training against scoring.
func (c *Counter) AddValue(f Feature, label int32, k int) {
	if c.finalized {
		panic("feature: AddValue after EndAdding")
	}
	byLabel := c.raw[f]
	if byLabel == nil {
		byLabel = make(map[int32]int)
		c.raw[f] = byLabel
	}
	byLabel[label] += k
}

// Mode returns the counter's smoothing mode.
func (c *Counter) Mode() Mode { return c.mode }

// Stats returns the finalized stats for f, or ok == false if f was never
// observed.
func (c *Counter) Stats(f Feature) (*Stats, bool) {
	s, ok := c.stats[f]
	return s, ok
}

// LengthStats returns the finalized continuation stats for features of
// length l, or ok == false (always false before EndAdding, or when mode
// != KneserNey).
func (c *Counter) LengthStats(l int) (*LengthStats, bool) {
	ls, ok := c.lengths[l]
	return ls, ok
}

// EndAdding finalizes the counter: computes per-feature Stats and, for
// KneserNey, per-length continuation counts and deltas. No further
// AddValue calls are allowed afterward.
func (c *Counter) EndAdding() {
	if c.finalized {
		return
	}
	c.finalized = true

	for f, byLabel := range c.raw {
		s := &Stats{Counts: byLabel}
		for label, count := range byLabel {
			s.TotalCount += count
			s.UniqueLabelCount++
			bucket := count
			if bucket > 3 {
				bucket = 3
			}
			s.BucketCounts[bucket]++
			s.SortedByProb = append(s.SortedByProb, LabelProb{Label: label})
		}
		c.stats[f] = s
	}

	// Probabilities depend on the feature's final TotalCount/UniqueLabelCount,
	// which are only known once every label has been folded in above.
	for _, s := range c.stats {
		for i := range s.SortedByProb {
			label := s.SortedByProb[i].Label
			count := s.Counts[label]
			s.SortedByProb[i].Prob = float64(count+1) / float64(s.TotalCount+s.UniqueLabelCount+1)
		}
		sort.Slice(s.SortedByProb, func(i, j int) bool {
			return s.SortedByProb[i].Prob > s.SortedByProb[j].Prob
		})
	}

	if c.mode == KneserNey {
		c.computeLengthStats()
	}
}

func (c *Counter) computeLengthStats() {
	byLengthLabel := make(map[int]map[int32]int) // length -> label -> distinct feature count
	for f, byLabel := range c.raw {
		m := byLengthLabel[f.Length]
		if m == nil {
			m = make(map[int32]int)
			byLengthLabel[f.Length] = m
		}
		for label, count := range byLabel {
			if count > 0 {
				m[label]++
			}
		}
	}
	for length, continuation := range byLengthLabel {
		ls := &LengthStats{ContinuationCounts: continuation}
		ls.Delta = estimateKneserNeyDelta(continuation)
		if c.fixedKNDelta != nil {
			d := *c.fixedKNDelta
			ls.Delta = [4]float64{0, d, d, d}
		}
		c.lengths[length] = ls
	}
}

// estimateKneserNeyDelta computes delta1..delta3 from the continuation
// histogram n1..n4 (number of labels whose continuation count is exactly
// i), per §4.H. n_i denominators of zero produce a delta of 0 for that
// bucket rather than dividing by zero.
func estimateKneserNeyDelta(continuation map[int32]int) [4]float64 {
	var n [5]int // n[1..4]
	for _, c := range continuation {
		if c >= 1 && c <= 4 {
			n[c]++
		}
	}
	var delta [4]float64
	if n[1]+2*n[2] == 0 {
		return delta
	}
	y := float64(n[1]) / float64(n[1]+2*n[2])
	if n[1] > 0 {
		delta[1] = clamp01(1 - 2*y*float64(n[2])/float64(n[1]))
	}
	if n[2] > 0 {
		delta[2] = clamp01(2 - 3*y*float64(n[3])/float64(n[2]))
	}
	if n[3] > 0 {
		delta[3] = clamp01(3 - 4*y*float64(n[4])/float64(n[3]))
	}
	return delta
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
