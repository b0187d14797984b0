package model

import (
	"testing"

	"github.com/tgenlab/tgen/intern"
	"github.com/tgenlab/tgen/tcond"
	"github.com/tgenlab/tgen/tgen"
	"github.com/tgenlab/tgen/tree"
)

func strp(s string) *string { return &s }

// S7 — end-to-end error rate: training and evaluating on the same single
// sample must yield ERROR_RATE == 0.
func TestEndToEndErrorRateZero(t *testing.T) {
	ss := intern.New()
	nodes := []tree.ParsedNode{
		{Type: "MemberExpression", Value: strp("someValue"), Children: []int{1}},
		{Type: "Property", Value: strp("Property")},
	}
	store, err := tree.Parse(nodes, ss)
	if err != nil {
		t.Fatal(err)
	}

	table := tgen.NewTable()
	id0 := table.AddProgram(tgen.Entry{Kind: tgen.KindTCond, Simple: tgen.SimpleCondProgram{}})
	id1 := table.AddProgram(tgen.Entry{Kind: tgen.KindTCond, Simple: tgen.SimpleCondProgram{}})
	cond, err := tgen.ParseBranchCond("type")
	if err != nil {
		t.Fatal(err)
	}
	branch := tgen.NewBranchCondProgram(cond, id0)
	branch.AddCase([]int{ss.Intern("MemberExpression")}, id1)
	startID := table.AddProgram(tgen.Entry{Kind: tgen.KindBranch, Branch: branch})

	ctx := tcond.NewExecutionContext(store)
	m := NewTGenModel(table, false, DefaultConfig())

	const position = 0
	if err := m.TrainSample(store, ctx, position, startID); err != nil {
		t.Fatal(err)
	}
	m.EndAdding()

	result, err := m.EvaluateSample(store, ctx, position, startID)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Correct {
		t.Fatalf("EvaluateSample: predicted label did not match trained label")
	}
	if rate := EvaluateMetric([]SampleResult{result}, ErrorRate); rate != 0 {
		t.Fatalf("ERROR_RATE = %v, want 0", rate)
	}
}

func TestParseMetric(t *testing.T) {
	cases := map[string]Metric{"entropy": Entropy, "errorrate": ErrorRate, "confidence50": Confidence50}
	for s, want := range cases {
		got, ok := ParseMetric(s)
		if !ok || got != want {
			t.Fatalf("ParseMetric(%q) = (%v, %v), want (%v, true)", s, got, ok, want)
		}
	}
	if _, ok := ParseMetric("bogus"); ok {
		t.Fatal("expected ParseMetric to reject unknown metric")
	}
}

// Invariant 10 — ENTROPY >= 0 and equals the mean of -log_prob.
func TestEntropyNonNegativeAndMatchesFormula(t *testing.T) {
	results := []SampleResult{{LogProb: -1}, {LogProb: -2}, {LogProb: -0.5}}
	got := EvaluateMetric(results, Entropy)
	if got < 0 {
		t.Fatalf("ENTROPY = %v, want >= 0", got)
	}
	want := (1.0 + 2.0 + 0.5) / 3.0
	if got != want {
		t.Fatalf("ENTROPY = %v, want %v", got, want)
	}
}
