package fqsim

import (
	"context"
	"fmt"
	"sync"

	"github.com/theapemachine/errnie"
)

/*
Simulator is one simulation session: a register created in |0...0⟩, the
worker pool that runs its passes, and the sampler used to measure it.
Gate applications and measurements are serialized by the session, so a
measurement never sees a half-applied gate.
*/
type Simulator[T Amplitude] struct {
	mu       sync.RWMutex
	ctx      context.Context
	state    *StateVector[T]
	pool     *Pool
	ownsPool bool
	sampler  *Sampler
}

// Option configures a Simulator.
type Option func(*settings)

type settings struct {
	workers int
	seed    uint64
	onDrift DriftHandler
	pool    *Pool
}

// WithSeed fixes the sampler seed, overriding the configuration.
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

// WithWorkers sets the pool size, overriding the configuration.
func WithWorkers(workers int) Option {
	return func(s *settings) {
		s.workers = workers
	}
}

// WithDriftHandler observes probability mass drift during measurement.
func WithDriftHandler(handler DriftHandler) Option {
	return func(s *settings) {
		s.onDrift = handler
	}
}

// WithPool shares an existing pool. The simulator will not close it.
func WithPool(pool *Pool) Option {
	return func(s *settings) {
		s.pool = pool
	}
}

/*
New starts a session of numQubits qubits in |0...0⟩ with amplitudes of
type T. A nil config uses NewConfig. The session owns a new pool unless
WithPool shares one, and must be closed with Close.
*/
func New[T Amplitude](ctx context.Context, numQubits int, config *Config, opts ...Option) (*Simulator[T], error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	state, err := NewStateVector[T](numQubits, config)
	if err != nil {
		return nil, err
	}

	set := &settings{
		workers: config.Workers,
		seed:    config.Seed,
	}
	for _, opt := range opts {
		opt(set)
	}

	sim := &Simulator[T]{
		ctx:   ctx,
		state: state,
		pool:  set.pool,
	}

	if sim.pool == nil {
		sim.pool = NewPool(ctx, set.workers, config)
		sim.ownsPool = true
	}

	sim.sampler = NewSampler(set.seed, sim.pool.Size(), config.DriftTolerance)
	sim.sampler.metrics = sim.pool.Metrics()
	sim.sampler.OnDrift(set.onDrift)

	errnie.Info("simulator ready - qubits %d, states %d, workers %d", numQubits, state.Len(), sim.pool.Size())
	return sim, nil
}

// NumQubits is the register size.
func (s *Simulator[T]) NumQubits() int {
	return s.state.NumQubits()
}

// Apply runs gate m on qubit target.
func (s *Simulator[T]) Apply(target int, m Matrix) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.Apply(s.ctx, s.pool, target, m); err != nil {
		return fmt.Errorf("apply to qubit %d: %w", target, err)
	}
	return nil
}

// ApplyGate runs a named gate on qubit target.
func (s *Simulator[T]) ApplyGate(gate Gate, target int) error {
	if err := s.Apply(target, gate.Matrix); err != nil {
		return fmt.Errorf("%s: %w", gate.Name, err)
	}
	return nil
}

// H applies a Hadamard to qubit target.
func (s *Simulator[T]) H(target int) error {
	return s.ApplyGate(Gate{Name: "H", Matrix: Hadamard}, target)
}

// Z applies a Pauli-Z to qubit target.
func (s *Simulator[T]) Z(target int) error {
	return s.ApplyGate(Gate{Name: "Z", Matrix: PauliZ}, target)
}

// X applies a Pauli-X to qubit target.
func (s *Simulator[T]) X(target int) error {
	return s.ApplyGate(Gate{Name: "X", Matrix: PauliX}, target)
}

// Y applies a Pauli-Y to qubit target.
func (s *Simulator[T]) Y(target int) error {
	return s.ApplyGate(Gate{Name: "Y", Matrix: PauliY}, target)
}

// Probabilities returns |amplitude|² per basis state.
func (s *Simulator[T]) Probabilities() ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Probabilities(s.ctx, s.pool)
}

/*
Measure samples the current state samples times. The state is not
collapsed or otherwise changed, so every call is a fresh experiment on
the same register.
*/
func (s *Simulator[T]) Measure(samples int) (*Histogram, error) {
	if samples < 0 {
		return nil, fmt.Errorf("%w: samples must not be negative, got %d", ErrInvalidArgument, samples)
	}

	probs, err := s.Probabilities()
	if err != nil {
		return nil, err
	}

	return s.sampler.Sample(s.ctx, probs, samples)
}

// State returns a copy of the register.
func (s *Simulator[T]) State() *StateVector[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Clone()
}

// Reset puts the register back into |0...0⟩.
func (s *Simulator[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Reset()
}

// Metrics returns the live metrics of the session pool.
func (s *Simulator[T]) Metrics() *Metrics {
	return s.pool.Metrics()
}

// Close stops the pool unless it was shared through WithPool.
func (s *Simulator[T]) Close() {
	if s.ownsPool {
		s.pool.Close()
	}
}
