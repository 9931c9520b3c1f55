package fqsim

import (
	"fmt"
	"math"
	"unsafe"
)

// Amplitude is the element type of a state vector.
type Amplitude interface {
	complex64 | complex128
}

/*
StateVector holds the 2^n complex amplitudes of an n-qubit register. Basis
state k encodes qubit q in bit q of k, so qubit 0 is the least significant.
*/
type StateVector[T Amplitude] struct {
	amplitudes []T
	numQubits  int
}

/*
NewStateVector allocates a register of numQubits qubits in |0...0⟩.
The request is refused with ErrResourceExhausted when it exceeds
cfg.MaxQubits or the memory currently available on the host.
*/
func NewStateVector[T Amplitude](numQubits int, cfg *Config) (*StateVector[T], error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	if numQubits <= 0 {
		return nil, fmt.Errorf("%w: qubit count must be positive, got %d", ErrInvalidArgument, numQubits)
	}

	if numQubits > cfg.MaxQubits {
		return nil, fmt.Errorf("%w: %d qubits exceeds the configured maximum of %d", ErrResourceExhausted, numQubits, cfg.MaxQubits)
	}

	need, ok := bufferSize[T](numQubits)
	if !ok {
		return nil, fmt.Errorf("%w: %d qubits need more than %d bytes", ErrResourceExhausted, numQubits, uint64(maxBufferBytes))
	}

	governor := NewResourceGovernor(cfg.MaxMemoryFraction, 0)
	if err := governor.Admit(need); err != nil {
		return nil, fmt.Errorf("%d qubits: %w", numQubits, err)
	}

	amps := make([]T, 1<<numQubits)
	amps[0] = 1

	return &StateVector[T]{amplitudes: amps, numQubits: numQubits}, nil
}

// maxBufferBytes is the largest heap the Go runtime addresses on 64-bit hosts.
const maxBufferBytes = 1 << 48

/*
bufferSize is the number of bytes a register of numQubits qubits occupies.
It reports false when that size overflows or could never be allocated.
*/
func bufferSize[T Amplitude](numQubits int) (uint64, bool) {
	var zero T
	size := uint64(unsafe.Sizeof(zero))

	if numQubits < 0 || numQubits >= 64 || size > uint64(math.MaxUint64)>>uint(numQubits) {
		return 0, false
	}

	need := size << numQubits
	if need > maxBufferBytes {
		return 0, false
	}
	return need, true
}

// NumQubits is n, the number of qubits in the register.
func (s *StateVector[T]) NumQubits() int {
	return s.numQubits
}

// Len is the number of basis states, 2^NumQubits.
func (s *StateVector[T]) Len() int {
	return len(s.amplitudes)
}

// Amplitude returns the amplitude of basis state k.
func (s *StateVector[T]) Amplitude(k int) (T, error) {
	if k < 0 || k >= len(s.amplitudes) {
		var zero T
		return zero, fmt.Errorf("%w: basis state %d outside [0, %d)", ErrInvalidArgument, k, len(s.amplitudes))
	}
	return s.amplitudes[k], nil
}

// Amplitudes returns a copy of the amplitude buffer.
func (s *StateVector[T]) Amplitudes() []T {
	amps := make([]T, len(s.amplitudes))
	copy(amps, s.amplitudes)
	return amps
}

// Clone returns an independent copy of the register.
func (s *StateVector[T]) Clone() *StateVector[T] {
	return &StateVector[T]{amplitudes: s.Amplitudes(), numQubits: s.numQubits}
}

// Reset returns the register to |0...0⟩ without reallocating.
func (s *StateVector[T]) Reset() {
	clear(s.amplitudes)
	s.amplitudes[0] = 1
}

// Norm is the sum of squared magnitudes, summed in index order.
func (s *StateVector[T]) Norm() float64 {
	var total float64
	for _, amp := range s.amplitudes {
		total += magnitudeSquared(amp)
	}
	return total
}

func (s *StateVector[T]) checkTarget(target int) error {
	if target < 0 || target >= s.numQubits {
		return fmt.Errorf("%w: target qubit %d outside [0, %d)", ErrInvalidArgument, target, s.numQubits)
	}
	return nil
}

// magnitudeSquared is re² + im², widened to float64.
func magnitudeSquared[T Amplitude](amp T) float64 {
	c := complex128(amp)
	re, im := real(c), imag(c)
	return re*re + im*im
}
