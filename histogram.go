package fqsim

import (
	"fmt"
	"io"
	"strings"
)

// Histogram tallies measured basis states, indexed by state.
type Histogram struct {
	NumQubits int
	Samples   int
	Counts    []uint64

	// TotalProbability is the mass of the distribution before sampling.
	// Renormalized is set when it drifted outside the configured tolerance.
	TotalProbability float64
	Renormalized     bool
}

// Entry is one row of a histogram.
type Entry struct {
	State int
	Label string
	Count uint64
}

func newHistogram(numQubits, samples int) *Histogram {
	return &Histogram{
		NumQubits: numQubits,
		Samples:   samples,
		Counts:    make([]uint64, 1<<numQubits),
	}
}

// Count returns how often basis state k was observed.
func (h *Histogram) Count(k int) uint64 {
	if k < 0 || k >= len(h.Counts) {
		return 0
	}
	return h.Counts[k]
}

// Label is the n-bit binary form of k, most significant qubit first.
func (h *Histogram) Label(k int) string {
	return BasisLabel(k, h.NumQubits)
}

// BasisLabel renders state k of an n-qubit register as zero-padded binary.
func BasisLabel(k, numQubits int) string {
	return fmt.Sprintf("%0*b", numQubits, k)
}

// Entries lists every basis state in increasing order, zero counts included.
func (h *Histogram) Entries() []Entry {
	entries := make([]Entry, len(h.Counts))
	for k, count := range h.Counts {
		entries[k] = Entry{State: k, Label: h.Label(k), Count: count}
	}
	return entries
}

// Total is the sum of all counts.
func (h *Histogram) Total() uint64 {
	var total uint64
	for _, count := range h.Counts {
		total += count
	}
	return total
}

// WriteTo prints one "State <bits>: <count>" line per basis state.
func (h *Histogram) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	b.WriteString("Quantum State Probabilities:\n")
	for k, count := range h.Counts {
		fmt.Fprintf(&b, "State %s: %d\n", h.Label(k), count)
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func (h *Histogram) String() string {
	var b strings.Builder
	h.WriteTo(&b)
	return b.String()
}

/*
ChiSquare is Pearson's goodness-of-fit statistic of the counts against the
expected probabilities. States with zero expectation are skipped.
*/
func (h *Histogram) ChiSquare(expected []float64) (float64, error) {
	if len(expected) != len(h.Counts) {
		return 0, fmt.Errorf("%w: %d expectations for %d states", ErrInvalidArgument, len(expected), len(h.Counts))
	}

	n := float64(h.Total())
	var stat float64
	for k, p := range expected {
		e := p * n
		if e == 0 {
			continue
		}
		d := float64(h.Counts[k]) - e
		stat += d * d / e
	}
	return stat, nil
}
