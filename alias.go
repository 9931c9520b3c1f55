package fqsim

import (
	"fmt"
	"math"
	"math/rand/v2"
)

/*
AliasTable draws from a discrete distribution in constant time using
Vose's alias method. Weights need not sum to one; they are scaled by
their total while the table is built.
*/
type AliasTable struct {
	prob  []float64
	alias []int
	total float64
}

/*
NewAliasTable builds the table in O(n). Weights must be finite and
non-negative with a positive total; anything else is ErrInvalidArgument.
Outcomes with zero weight are never drawn.
*/
func NewAliasTable(weights []float64) (*AliasTable, error) {
	n := len(weights)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty distribution", ErrInvalidArgument)
	}

	var total float64
	heaviest := 0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %d is %v", ErrInvalidArgument, i, w)
		}
		total += w
		if w > weights[heaviest] {
			heaviest = i
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: distribution has no mass", ErrInvalidArgument)
	}

	table := &AliasTable{
		prob:  make([]float64, n),
		alias: make([]int, n),
		total: total,
	}

	scaled := make([]float64, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)

	for i, w := range weights {
		scaled[i] = w * float64(n) / total
		if scaled[i] < 1 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		l := small[len(small)-1]
		small = small[:len(small)-1]
		g := large[len(large)-1]
		large = large[:len(large)-1]

		table.prob[l] = scaled[l]
		table.alias[l] = g

		scaled[g] = (scaled[g] + scaled[l]) - 1
		if scaled[g] < 1 {
			small = append(small, g)
		} else {
			large = append(large, g)
		}
	}

	for _, g := range large {
		table.prob[g] = 1
		table.alias[g] = g
	}

	// Leftovers here are rounding residue. Zero weights must stay unreachable.
	for _, l := range small {
		if weights[l] == 0 {
			table.prob[l] = 0
			table.alias[l] = heaviest
			continue
		}
		table.prob[l] = 1
		table.alias[l] = l
	}

	return table, nil
}

// Len is the number of outcomes.
func (t *AliasTable) Len() int {
	return len(t.prob)
}

// Total is the sum of the weights the table was built from.
func (t *AliasTable) Total() float64 {
	return t.total
}

// Draw returns one outcome index.
func (t *AliasTable) Draw(r *rand.Rand) int {
	i := r.IntN(len(t.prob))
	if r.Float64() < t.prob[i] {
		return i
	}
	return t.alias[i]
}
