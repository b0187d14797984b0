package model

import (
	"github.com/tgenlab/tgen/tcond"
	"github.com/tgenlab/tgen/tree"
)

// SampleResult is one sample's evaluation outcome: the trained model's
// log-probability for the sample's actual label, and whether best-label
// prediction matched that label (§4.I "Correctness check").
type SampleResult struct {
	LogProb float64
	Correct bool
}

// EvaluateSample extracts the actual label (with TEq enabled), scores it,
// predicts the best label, and reports whether they agree.
func (m *TGenModel) EvaluateSample(store *tree.Store, ctx *tcond.ExecutionContext, position, startID int) (SampleResult, error) {
	tr := m.slicedTraversal(store, position)
	straightID, err := m.Table.ResolveProgram(startID, tr, ctx)
	if err != nil {
		return SampleResult{}, err
	}
	label, err := m.extractLabel(store, ctx, tr, straightID, position, true)
	if err != nil {
		return SampleResult{}, err
	}

	logProb, err := m.ScoreLabel(store, ctx, position, startID, label)
	if err != nil {
		return SampleResult{}, err
	}
	_, bestLabel, err := m.PredictBestLabel(store, ctx, position, startID)
	if err != nil {
		return SampleResult{}, err
	}
	return SampleResult{LogProb: logProb, Correct: bestLabel == label}, nil
}

// EvaluateMetric aggregates results into one of the three §4.I metrics.
// Returns 0 for an empty sample set.
func EvaluateMetric(results []SampleResult, metric Metric) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		switch metric {
		case Entropy:
			sum += -r.LogProb
		case ErrorRate:
			if !r.Correct {
				sum++
			}
		case Confidence50:
			if r.LogProb <= -1 {
				sum++
			}
		}
	}
	return sum / float64(len(results))
}
