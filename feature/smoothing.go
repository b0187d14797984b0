package feature

import "math"

// Smoothing walks a growing feature, maintaining a running probability
// estimate for one label as longer and longer conditioning context is
// folded in. Grounded on the smoothing state machine in §4.H / model.cpp.
type Smoothing struct {
	counter *Counter
	label   int32
	feature Feature
	p       float64
	pTmp    float64
	known   bool
}

// NewSmoothing returns a Smoothing in "no feature yet" state against
// counter.
func NewSmoothing(counter *Counter) *Smoothing {
	return &Smoothing{counter: counter}
}

// SetUnconditioned initializes the base (empty-feature) probability
// estimate for label. If the empty feature was never observed by the
// counter, the smoothing stays in its zero state and LogProb reports
// -Inf.
//
// The reference's "prefix" quantities for this base case have no lower
// order model to draw from; this resolves that by reusing the empty
// feature's own count/total as its own prefix (documented design
// decision, DESIGN.md).
func (s *Smoothing) SetUnconditioned(label int32) {
	s.label = label
	s.feature = Empty
	stats, ok := s.counter.Stats(Empty)
	if !ok {
		return
	}
	count := stats.Counts[label]
	s.p = float64(count+1) / float64(stats.TotalCount+stats.UniqueLabelCount+1)
	if s.counter.mode == KneserNey {
		s.pTmp = float64(count+1) / float64(count+stats.TotalCount+1)
	}
	s.known = true
}

// Push folds v into the running feature and, if the counter has ever
// observed the resulting feature, updates p (and p_tmp, for KneserNey)
// per §4.H's per-mode update rule. Exactly AddForwardBackoff in the
// reference.
func (s *Smoothing) Push(v int32) {
	s.feature = s.feature.Push(v)
	stats, ok := s.counter.Stats(s.feature)
	if !ok {
		return
	}
	count := stats.Counts[s.label]
	total := stats.TotalCount
	unique := stats.UniqueLabelCount

	switch s.counter.mode {
	case WittenBell:
		pml := float64(count) / float64(total)
		lambda := 1 - float64(unique)/float64(unique+total)
		s.p = lambda*pml + (1-lambda)*s.p

	case Laplace:
		s.p = float64(count+1) / float64(total+unique+1)

	case KneserNey:
		lengthStats, haveLen := s.counter.LengthStats(s.feature.Length)
		var n1, n2, n3 int
		var delta [4]float64
		if haveLen {
			delta = lengthStats.Delta
			for _, c := range lengthStats.ContinuationCounts {
				switch c {
				case 1:
					n1++
				case 2:
					n2++
				case 3:
					n3++
				}
			}
		}
		lambda := (delta[1]*float64(n1) + delta[2]*float64(n2) + delta[3]*float64(n3)) / float64(total)
		high := math.Max(float64(count)-deltaFor(delta, count), 0) / float64(total)
		newP := high + lambda*s.pTmp
		if newP == 0 {
			newP = float64(1+count) / float64(1+unique+total)
		}

		prefixCount := 0
		prefixTotal := 1
		if haveLen {
			prefixCount = lengthStats.ContinuationCounts[s.label]
			prefixTotal = lengthStats.TotalContinuation()
			if prefixTotal == 0 {
				prefixTotal = 1
			}
		}
		s.pTmp = math.Max(float64(prefixCount)-deltaFor(delta, prefixCount), 0)/float64(prefixTotal) + lambda*s.pTmp
		s.p = newP
	}
	s.known = true
}

// LogProb returns log2 of the current probability estimate.
func (s *Smoothing) LogProb() float64 {
	if !s.known || s.p <= 0 {
		return math.Inf(-1)
	}
	return math.Log2(s.p)
}
