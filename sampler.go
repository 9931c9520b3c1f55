package fqsim

import (
	"context"
	"fmt"
	"math"
	"math/bits"
	"math/rand/v2"
	"sync"

	"github.com/theapemachine/errnie"
	"golang.org/x/sync/errgroup"
)

// minDrawsPerWorker keeps small experiments on a single goroutine.
const minDrawsPerWorker = 4096

// DriftHandler is told the total probability mass whenever it drifts.
type DriftHandler func(total float64)

/*
Sampler emulates repeated measurement of a register. Each Sample call is an
independent experiment: it gets its own random streams, derived from the
seed and the call number, so a fixed seed and worker count reproduce the
same histograms in the same order.
*/
type Sampler struct {
	mu        sync.Mutex
	seed      uint64
	calls     uint64
	workers   int
	tolerance float64
	onDrift   DriftHandler
	metrics   *Metrics
}

// NewSampler uses a random seed when seed is zero.
func NewSampler(seed uint64, workers int, tolerance float64) *Sampler {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Sampler{
		seed:      seed,
		workers:   max(workers, 1),
		tolerance: tolerance,
	}
}

// OnDrift registers the handler called when the mass drifts from one.
func (s *Sampler) OnDrift(handler DriftHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDrift = handler
}

/*
Sample draws samples outcomes from probs, which must have 2^n entries.
Drawing is split over up to workers goroutines with private partial
histograms that are summed once every goroutine has returned.
*/
func (s *Sampler) Sample(ctx context.Context, probs []float64, samples int) (*Histogram, error) {
	if samples < 0 {
		return nil, fmt.Errorf("%w: samples must not be negative, got %d", ErrInvalidArgument, samples)
	}

	numQubits, err := registerSize(len(probs))
	if err != nil {
		return nil, err
	}

	table, err := NewAliasTable(probs)
	if err != nil {
		return nil, err
	}

	hist := newHistogram(numQubits, samples)
	hist.TotalProbability = table.Total()

	s.mu.Lock()
	s.calls++
	call := s.calls
	onDrift := s.onDrift
	s.mu.Unlock()

	if math.Abs(hist.TotalProbability-1) > s.tolerance {
		hist.Renormalized = true
		errnie.Warn("probability mass %.12f drifted from 1, renormalizing", hist.TotalProbability)
		if onDrift != nil {
			onDrift(hist.TotalProbability)
		}
	}

	if s.metrics != nil {
		s.metrics.recordMeasurement(hist.Renormalized)
	}

	if samples == 0 {
		return hist, nil
	}

	workers := min(s.workers, (samples+minDrawsPerWorker-1)/minDrawsPerWorker)
	partials := make([][]uint64, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		draws := samples / workers
		if w < samples%workers {
			draws++
		}

		g.Go(func() error {
			rng := rand.New(rand.NewPCG(s.seed, call<<16|uint64(w)))
			counts := make([]uint64, len(probs))

			for d := 0; d < draws; d++ {
				if d&(minDrawsPerWorker-1) == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				counts[table.Draw(rng)]++
			}

			partials[w] = counts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, counts := range partials {
		for k, c := range counts {
			hist.Counts[k] += c
		}
	}

	return hist, nil
}

// registerSize recovers n from a buffer of 2^n states.
func registerSize(states int) (int, error) {
	if states < 2 || states&(states-1) != 0 {
		return 0, fmt.Errorf("%w: %d states is not a power of two register", ErrInvalidArgument, states)
	}
	return bits.TrailingZeros(uint(states)), nil
}
