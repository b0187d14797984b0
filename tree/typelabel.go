package tree

// EncodeTypeLabel packs (typeID, hasFirstChild, hasRightSib) into a 32-bit
// type label: the low 30 bits carry typeID sign-extended from 30 bits, bit
// 30 is hasFirstChild, bit 31 is hasRightSib.
//
// typeID is widened to int64 for the computation (Open Question #2,
// DESIGN.md): a TEq remap can produce a raw label outside the documented
// 30-bit range, and this keeps the intermediate arithmetic from silently
// wrapping before the final truncation to int32. The packed result is
// documented as "low 30 bits of the truncated value, undefined beyond
// that range" rather than guaranteed.
func EncodeTypeLabel(typeID int64, hasFirstChild, hasRightSib bool) int32 {
	packed := typeID & 0x3FFFFFFF
	if hasFirstChild {
		packed |= 1 << 30
	}
	if hasRightSib {
		packed |= 1 << 31
	}
	return int32(packed)
}

// DecodeTypeLabel is EncodeTypeLabel's inverse on the admissible range
// (|typeID| < 2^29, invariant 5 in §8).
func DecodeTypeLabel(label int32) (typeID int32, hasFirstChild, hasRightSib bool) {
	u := uint32(label)
	hasFirstChild = u&(1<<30) != 0
	hasRightSib = u&(1<<31) != 0
	low30 := u & 0x3FFFFFFF
	// sign-extend from 30 bits
	if low30&(1<<29) != 0 {
		typeID = int32(low30 | 0xC0000000)
	} else {
		typeID = int32(low30)
	}
	return typeID, hasFirstChild, hasRightSib
}
