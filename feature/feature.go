// Package feature implements the rolling-hash feature key (§4.H) and the
// counter/smoothing machinery a trained TGenModel scores labels with.
//
// Grounded on original_source/phog/model/model.h/.cpp for the exact
// smoothing formulas.
package feature

// Feature is a rolling hash over a sequence of emitted ints, plus the
// sequence's length. The empty feature (no emissions pushed yet) is the
// zero value.
type Feature struct {
	Hash   int32
	Length int
}

// combine folds v into hash. Same FNV-style polynomial combiner as
// actorindex.fingerprintCat (documented substitute for the reference's
// FingerprintCat, whose exact bit-level definition lives outside the
// retrieval pack — see DESIGN.md). Duplicated here rather than exported
// from actorindex to keep feature hashing independent of tree-traversal
// internals.
func combine(hash, v int32) int32 {
	return int32(uint32(hash)*2654435761 + uint32(v))
}

// Push returns the feature grown by appending v.
func (f Feature) Push(v int32) Feature {
	return Feature{Hash: combine(f.Hash, v), Length: f.Length + 1}
}

// Empty is the unconditioned, zero-length feature every running feature
// starts from.
var Empty = Feature{}
