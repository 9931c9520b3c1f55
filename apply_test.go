package fqsim

import (
	"context"
	"errors"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/davecgh/go-spew/spew"
	. "github.com/smartystreets/goconvey/convey"
)

func TestApplyHadamard(t *testing.T) {
	Convey("Given |00⟩ and a chunked pool", t, func() {
		pool := newTestPool(4, 1)
		sv, err := NewStateVector[complex128](2, nil)
		So(err, ShouldBeNil)

		Reset(func() {
			pool.Close()
		})

		Convey("When Hadamard is applied to qubit 0", func() {
			So(sv.Apply(context.Background(), pool, 0, Hadamard), ShouldBeNil)

			Convey("It should split the amplitude over |00⟩ and |01⟩", func() {
				So(real(sv.amplitudes[0]), ShouldAlmostEqual, 1/math.Sqrt2, 1e-15)
				So(real(sv.amplitudes[1]), ShouldAlmostEqual, 1/math.Sqrt2, 1e-15)
				So(sv.amplitudes[2], ShouldEqual, complex128(0))
				So(sv.amplitudes[3], ShouldEqual, complex128(0))
			})

			Convey("And applied again it should restore (1, 0, 0, 0)", func() {
				So(sv.Apply(context.Background(), pool, 0, Hadamard), ShouldBeNil)

				want := []complex128{1, 0, 0, 0}
				for k, amp := range sv.Amplitudes() {
					if cmplx.Abs(amp-want[k]) > 1e-12 {
						t.Log(spew.Sdump(sv.Amplitudes()))
					}
					So(cmplx.Abs(amp-want[k]), ShouldBeLessThan, 1e-12)
				}
			})
		})

		Convey("When Hadamard is applied to qubit 1", func() {
			So(sv.Apply(context.Background(), pool, 1, Hadamard), ShouldBeNil)

			Convey("It should pair |00⟩ with |10⟩", func() {
				So(real(sv.amplitudes[0]), ShouldAlmostEqual, 1/math.Sqrt2, 1e-15)
				So(real(sv.amplitudes[2]), ShouldAlmostEqual, 1/math.Sqrt2, 1e-15)
				So(sv.amplitudes[1], ShouldEqual, complex128(0))
			})
		})
	})
}

func TestApplyPauliZ(t *testing.T) {
	Convey("Given the all-zero state of 4 qubits", t, func() {
		pool := newTestPool(2, 1)
		sv, err := NewStateVector[complex128](4, nil)
		So(err, ShouldBeNil)

		Reset(func() {
			pool.Close()
		})

		Convey("Pauli-Z on any qubit should leave it unchanged", func() {
			for target := 0; target < 4; target++ {
				So(sv.Apply(context.Background(), pool, target, PauliZ), ShouldBeNil)
				So(sv.amplitudes[0], ShouldEqual, complex128(1))
				So(sv.Norm(), ShouldEqual, 1.0)
			}
		})

		Convey("Pauli-Z after Hadamard should flip the sign of the one state", func() {
			So(sv.Apply(context.Background(), pool, 2, Hadamard), ShouldBeNil)
			So(sv.Apply(context.Background(), pool, 2, PauliZ), ShouldBeNil)

			So(real(sv.amplitudes[0]), ShouldAlmostEqual, 1/math.Sqrt2, 1e-15)
			So(real(sv.amplitudes[4]), ShouldAlmostEqual, -1/math.Sqrt2, 1e-15)
		})
	})
}

func TestApplyRejectsTarget(t *testing.T) {
	Convey("Given a register in superposition", t, func() {
		pool := newTestPool(2, 1)
		sv, err := NewStateVector[complex128](3, nil)
		So(err, ShouldBeNil)
		So(sv.Apply(context.Background(), pool, 1, Hadamard), ShouldBeNil)

		Reset(func() {
			pool.Close()
		})

		Convey("It should reject targets outside the register without touching it", func() {
			before := sv.Amplitudes()
			passes := pool.Metrics().Snapshot().PassCount

			for _, target := range []int{-1, 3, 64} {
				err := sv.Apply(context.Background(), pool, target, PauliX)
				So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
			}

			So(sv.Amplitudes(), ShouldResemble, before)
			So(pool.Metrics().Snapshot().PassCount, ShouldEqual, passes)
		})
	})
}

func TestApplyPreservesNorm(t *testing.T) {
	Convey("Given a random sequence of single-qubit gates", t, func() {
		pool := newTestPool(4, 1)
		rng := rand.New(rand.NewPCG(7, 11))

		Reset(func() {
			pool.Close()
		})

		const numQubits = 6
		ops := make([]struct {
			target int
			m      Matrix
		}, 200)
		for i := range ops {
			theta := rng.Float64() * 2 * math.Pi
			ops[i].target = rng.IntN(numQubits)
			switch rng.IntN(6) {
			case 0:
				ops[i].m = Hadamard
			case 1:
				ops[i].m = PauliZ
			case 2:
				ops[i].m = RX(theta)
			case 3:
				ops[i].m = RY(theta)
			case 4:
				ops[i].m = RZ(theta)
			default:
				ops[i].m = TGate
			}
		}

		Convey("It should keep the norm of a double precision register at one", func() {
			sv, err := NewStateVector[complex128](numQubits, nil)
			So(err, ShouldBeNil)

			for _, op := range ops {
				So(sv.Apply(context.Background(), pool, op.target, op.m), ShouldBeNil)
			}
			So(sv.Norm(), ShouldAlmostEqual, 1.0, 1e-10)
		})

		Convey("It should keep the norm of a single precision register at one", func() {
			sv, err := NewStateVector[complex64](numQubits, nil)
			So(err, ShouldBeNil)

			for _, op := range ops {
				So(sv.Apply(context.Background(), pool, op.target, op.m), ShouldBeNil)
			}
			So(sv.Norm(), ShouldAlmostEqual, 1.0, 1e-4)
		})

		Convey("It should produce the same vector on one worker as on many", func() {
			serial := newTestPool(1, 1<<20)
			defer serial.Close()

			a, err := NewStateVector[complex128](numQubits, nil)
			So(err, ShouldBeNil)
			b := a.Clone()

			for _, op := range ops {
				So(a.Apply(context.Background(), pool, op.target, op.m), ShouldBeNil)
				So(b.Apply(context.Background(), serial, op.target, op.m), ShouldBeNil)
			}
			So(a.Amplitudes(), ShouldResemble, b.Amplitudes())
		})
	})
}
