package fqsim

/*
ZeroIndex maps the i-th basis state with bit target cleared back to its
absolute index. Bits of i below target pass through, the rest move up one
position to open a zero slot at target.
*/
func ZeroIndex(i uint64, target uint) uint64 {
	low := uint64(1)<<target - 1
	return i&low | (i&^low)<<1
}

// OneIndex is ZeroIndex with bit target set.
func OneIndex(i uint64, target uint) uint64 {
	return ZeroIndex(i, target) | uint64(1)<<target
}
