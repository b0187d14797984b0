package tree

// CompareInfo accumulates the result of comparing two co-rooted
// traversals (§4.B), and can aggregate many such comparisons (SPEC_FULL.md
// §3 supplement, grounded on original_source/phog/tree/tree.h's
// TreeCompareInfo).
type CompareInfo struct {
	TypeEqualities, TypeDiffs         int
	ValueEqualities, ValueDiffs       int
	SizeGreaterDiffs, SizeSmallerDiffs int
	NumAggregatedTrees                int
}

// Differences returns the total count of structural/label disagreements.
func (c CompareInfo) Differences() int {
	return c.TypeDiffs + c.ValueDiffs + c.SizeGreaterDiffs + c.SizeSmallerDiffs
}

// Equalities returns the total count of structural/label agreements.
func (c CompareInfo) Equalities() int {
	return c.TypeEqualities + c.ValueEqualities
}

// AvgNodeDifference returns Differences() divided by NumAggregatedTrees,
// or 0 if none were aggregated.
func (c CompareInfo) AvgNodeDifference() float64 {
	if c.NumAggregatedTrees == 0 {
		return 0
	}
	return float64(c.Differences()) / float64(c.NumAggregatedTrees)
}

// Add accumulates other into c, incrementing NumAggregatedTrees by 1.
func (c *CompareInfo) Add(other CompareInfo) {
	c.TypeEqualities += other.TypeEqualities
	c.TypeDiffs += other.TypeDiffs
	c.ValueEqualities += other.ValueEqualities
	c.ValueDiffs += other.ValueDiffs
	c.SizeGreaterDiffs += other.SizeGreaterDiffs
	c.SizeSmallerDiffs += other.SizeSmallerDiffs
	c.NumAggregatedTrees++
}

// Compare walks two co-rooted traversals in lockstep pre-order DFS and
// computes their CompareInfo (§4.B "Tree comparison"). At a node where one
// tree has a child/right-sibling the other lacks, the missing side
// contributes 2*size_of_excess_subtree to the appropriate size-diff
// counter.
func Compare(a, b *Traversal) CompareInfo {
	var info CompareInfo
	compareNode(a, b, &info)
	return info
}

func compareNode(a, b *Traversal, info *CompareInfo) {
	na, nb := a.Node(), b.Node()
	if na.TypeID == nb.TypeID {
		info.TypeEqualities++
	} else {
		info.TypeDiffs++
	}
	if na.ValueID == nb.ValueID {
		info.ValueEqualities++
	} else {
		info.ValueDiffs++
	}

	aHasChild := a.DownFirstChild()
	bHasChild := b.DownFirstChild()
	switch {
	case aHasChild && bHasChild:
		compareNode(a, b, info)
		a.Up()
		b.Up()
	case aHasChild && !bHasChild:
		info.SizeGreaterDiffs += 2 * subtreeSize(a)
		a.Up()
	case !aHasChild && bHasChild:
		info.SizeSmallerDiffs += 2 * subtreeSize(b)
		b.Up()
	}

	aHasRight := a.Right()
	bHasRight := b.Right()
	switch {
	case aHasRight && bHasRight:
		compareNode(a, b, info)
		a.Left()
		b.Left()
	case aHasRight && !bHasRight:
		info.SizeGreaterDiffs += 2 * subtreeSize(a)
		a.Left()
	case !aHasRight && bHasRight:
		info.SizeSmallerDiffs += 2 * subtreeSize(b)
		b.Left()
	}
}

func subtreeSize(t *Traversal) int {
	n := 1
	if t.DownFirstChild() {
		n += subtreeSize(t)
		t.Up()
	}
	if t.Right() {
		n += subtreeSize(t)
		t.Left()
	}
	return n
}
