package fqsim

import "context"

/*
Probabilities returns |amplitude|² for every basis state in a new buffer.
The state is only read. No normalization is applied, so the sum of the
result equals Norm when added up in index order.
*/
func (s *StateVector[T]) Probabilities(ctx context.Context, pool *Pool) ([]float64, error) {
	amps := s.amplitudes
	probs := make([]float64, len(amps))

	err := pool.ParallelFor(ctx, len(amps), func(lo, hi int) {
		for k := lo; k < hi; k++ {
			probs[k] = magnitudeSquared(amps[k])
		}
	})
	if err != nil {
		return nil, err
	}

	return probs, nil
}
