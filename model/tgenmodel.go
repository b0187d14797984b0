package model

import (
	"math"

	"github.com/tgenlab/tgen/feature"
	"github.com/tgenlab/tgen/tcond"
	"github.com/tgenlab/tgen/tgen"
	"github.com/tgenlab/tgen/tree"
)

// TGenModel holds an immutable TGen program table, whether it predicts
// node types (as opposed to values), and one feature counter per table
// entry. Grounded on TGenModel in model.h/.cpp.
type TGenModel struct {
	Table         *tgen.Table
	IsForNodeType bool
	Config        Config
	Counters      []*feature.Counter
}

// NewTGenModel returns a model over table with one fresh counter per
// entry.
func NewTGenModel(table *tgen.Table, isForNodeType bool, cfg Config) *TGenModel {
	counters := make([]*feature.Counter, table.Len())
	for i := range counters {
		counters[i] = feature.NewCounter(cfg.Smoothing, cfg.KneserNeyDelta)
	}
	return &TGenModel{Table: table, IsForNodeType: isForNodeType, Config: cfg, Counters: counters}
}

// EndAdding finalizes every counter, forbidding further training.
func (m *TGenModel) EndAdding() {
	for _, c := range m.Counters {
		c.EndAdding()
	}
}

func (m *TGenModel) slicedTraversal(store *tree.Store, position int) *tree.Traversal {
	slice := tree.NewSinglePositionSlice(store, position, !m.IsForNodeType)
	return tree.NewTraversal(store, position, tree.Sliced, slice)
}

// extractLabel implements §4.I "Label extraction". useTEq enables the
// first-ten-equalities remap via the straight-line entry's eq_program;
// training always calls this with useTEq == false.
func (m *TGenModel) extractLabel(store *tree.Store, ctx *tcond.ExecutionContext, tr *tree.Traversal, straightID int, position int, useTEq bool) (int32, error) {
	node := store.RawNode(position)
	raw := node.ValueID
	if m.IsForNodeType {
		raw = node.TypeID
	}

	if useTEq && m.Config.EnableTEq {
		e, _ := m.Table.Get(straightID)
		opIndex := 0
		remapped := false
		err := tcond.Execute(e.Simple.EqProgram, tr, ctx, func(v int32) {
			if !remapped && raw >= 0 && v == raw && opIndex < 10 {
				raw = int32(-10 - opIndex)
				remapped = true
			}
			opIndex++
		})
		if err != nil {
			return 0, err
		}
	}

	if m.IsForNodeType {
		hasFirstChild := node.FirstChild != tree.NoPointer
		hasRightSib := node.RightSib != tree.NoPointer
		return tree.EncodeTypeLabel(int64(raw), hasFirstChild, hasRightSib), nil
	}
	return raw, nil
}

// TrainSample implements §4.I "Training one sample".
func (m *TGenModel) TrainSample(store *tree.Store, ctx *tcond.ExecutionContext, position, startID int) error {
	tr := m.slicedTraversal(store, position)
	straightID, err := m.Table.ResolveProgram(startID, tr, ctx)
	if err != nil {
		return err
	}
	label, err := m.extractLabel(store, ctx, tr, straightID, position, false)
	if err != nil {
		return err
	}

	counter := m.Counters[straightID]
	counter.AddValue(feature.Empty, label, 1)

	running := feature.Empty
	e, _ := m.Table.Get(straightID)
	return tcond.Execute(e.Simple.ContextProgram, tr, ctx, func(v int32) {
		running = running.Push(v)
		counter.AddValue(running, label, 1)
	})
}

// ScoreLabel implements §4.I "Scoring a label", returning log2 p(label).
func (m *TGenModel) ScoreLabel(store *tree.Store, ctx *tcond.ExecutionContext, position, startID int, label int32) (float64, error) {
	tr := m.slicedTraversal(store, position)
	straightID, err := m.Table.ResolveProgram(startID, tr, ctx)
	if err != nil {
		return math.Inf(-1), err
	}
	counter := m.Counters[straightID]
	sm := feature.NewSmoothing(counter)
	sm.SetUnconditioned(label)

	e, _ := m.Table.Get(straightID)
	err = tcond.Execute(e.Simple.ContextProgram, tr, ctx, func(v int32) { sm.Push(v) })
	return sm.LogProb(), err
}

// PredictBestLabel implements §4.I "Best label prediction": a beam search
// over the unconditioned label ranking, widened and re-scored as the
// conditioning context grows.
func (m *TGenModel) PredictBestLabel(store *tree.Store, ctx *tcond.ExecutionContext, position, startID int) (bestLogProb float64, bestLabel int32, err error) {
	tr := m.slicedTraversal(store, position)
	straightID, err := m.Table.ResolveProgram(startID, tr, ctx)
	if err != nil {
		return math.Inf(-1), int32(tree.UnknownLabel), err
	}
	counter := m.Counters[straightID]
	e, _ := m.Table.Get(straightID)

	tracked := make(map[int32]*feature.Smoothing)
	var history []int32
	curFeature := feature.Empty
	bestLogProb = math.Inf(-1)
	bestLabel = int32(tree.UnknownLabel)

	considerTopBeam := func(f feature.Feature) {
		stats, ok := counter.Stats(f)
		if !ok {
			return
		}
		beam := m.Config.BeamSize
		if beam <= 0 {
			beam = 4
		}
		for i, lp := range stats.SortedByProb {
			if i >= beam {
				break
			}
			if _, already := tracked[lp.Label]; already {
				continue
			}
			sm := feature.NewSmoothing(counter)
			sm.SetUnconditioned(lp.Label)
			for _, v := range history {
				sm.Push(v)
			}
			tracked[lp.Label] = sm
			if sm.LogProb() > bestLogProb {
				bestLogProb = sm.LogProb()
				bestLabel = lp.Label
			}
		}
	}

	considerTopBeam(feature.Empty)

	execErr := tcond.Execute(e.Simple.ContextProgram, tr, ctx, func(v int32) {
		history = append(history, v)
		curFeature = curFeature.Push(v)
		for label, sm := range tracked {
			sm.Push(v)
			if sm.LogProb() > bestLogProb {
				bestLogProb = sm.LogProb()
				bestLabel = label
			}
		}
		considerTopBeam(curFeature)
	})
	if execErr != nil {
		return bestLogProb, bestLabel, execErr
	}
	return bestLogProb, bestLabel, nil
}
