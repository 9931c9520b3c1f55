package fqsim

import "context"

/*
Apply multiplies every amplitude pair of qubit target by m. Pair i is
(ZeroIndex(i, target), OneIndex(i, target)) for i in [0, 2^(n-1)); pairs
are disjoint, so the pool updates them in parallel chunks and Apply
returns only after all of them are written. An out-of-range target is
rejected before the vector is touched.
*/
func (s *StateVector[T]) Apply(ctx context.Context, pool *Pool, target int, m Matrix) error {
	if err := s.checkTarget(target); err != nil {
		return err
	}

	a, b, c, d := T(m[0][0]), T(m[0][1]), T(m[1][0]), T(m[1][1])
	bit := uint(target)
	amps := s.amplitudes

	return pool.ParallelFor(ctx, len(amps)/2, func(lo, hi int) {
		for i := uint64(lo); i < uint64(hi); i++ {
			zero := ZeroIndex(i, bit)
			one := zero | uint64(1)<<bit

			zeroAmp, oneAmp := amps[zero], amps[one]
			amps[zero] = a*zeroAmp + b*oneAmp
			amps[one] = c*zeroAmp + d*oneAmp
		}
	})
}
