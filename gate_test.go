package fqsim

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGateLibrary(t *testing.T) {
	Convey("Given the fixed gates", t, func() {
		fixed := map[string]Matrix{
			"I": Identity,
			"H": Hadamard,
			"X": PauliX,
			"Y": PauliY,
			"Z": PauliZ,
			"S": SGate,
			"T": TGate,
		}

		Convey("They should all be unitary", func() {
			for _, m := range fixed {
				So(m.IsUnitary(1e-12), ShouldBeTrue)
			}
		})

		Convey("Hadamard should carry the real 1/√2 coefficients", func() {
			a, b, c, d := Hadamard.Coefficients()
			So(real(a), ShouldAlmostEqual, 1/math.Sqrt2, 1e-15)
			So(real(b), ShouldAlmostEqual, 1/math.Sqrt2, 1e-15)
			So(real(c), ShouldAlmostEqual, 1/math.Sqrt2, 1e-15)
			So(real(d), ShouldAlmostEqual, -1/math.Sqrt2, 1e-15)
			So(imag(a)+imag(b)+imag(c)+imag(d), ShouldEqual, 0.0)
		})

		Convey("Pauli-Z should be diag(1, -1)", func() {
			So(PauliZ, ShouldResemble, NewMatrix(1, 0, 0, -1))
		})

		Convey("Hadamard and Pauli-Z should be their own inverse", func() {
			So(Hadamard.Mul(Hadamard).IsUnitary(1e-12), ShouldBeTrue)
			hh := Hadamard.Mul(Hadamard)
			So(cmplx.Abs(hh[0][0]-1), ShouldBeLessThan, 1e-12)
			So(cmplx.Abs(hh[0][1]), ShouldBeLessThan, 1e-12)
			So(PauliZ.Mul(PauliZ), ShouldResemble, Identity)
		})
	})

	Convey("Given parameterized rotations", t, func() {
		Convey("They should be unitary for any angle", func() {
			for _, theta := range []float64{0, 0.3, math.Pi / 2, math.Pi, 4.2} {
				So(RX(theta).IsUnitary(1e-12), ShouldBeTrue)
				So(RY(theta).IsUnitary(1e-12), ShouldBeTrue)
				So(RZ(theta).IsUnitary(1e-12), ShouldBeTrue)
				So(Phase(theta).IsUnitary(1e-12), ShouldBeTrue)
			}
		})

		Convey("RX(π) should flip like X up to a global phase", func() {
			m := RX(math.Pi)
			So(cmplx.Abs(m[0][0]), ShouldBeLessThan, 1e-12)
			So(cmplx.Abs(m[0][1]), ShouldAlmostEqual, 1.0, 1e-12)
		})
	})

	Convey("Given a non-unitary matrix", t, func() {
		Convey("It should be reported as such", func() {
			So(NewMatrix(1, 1, 0, 1).IsUnitary(1e-9), ShouldBeFalse)
		})
	})
}

func TestLookupGate(t *testing.T) {
	Convey("Given gate names", t, func() {
		Convey("It should resolve names case-insensitively", func() {
			gate, err := LookupGate(" h ")
			So(err, ShouldBeNil)
			So(gate.Name, ShouldEqual, "H")
			So(gate.Matrix, ShouldResemble, Hadamard)
		})

		Convey("It should reject unknown gates", func() {
			_, err := LookupGate("cnot")
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
		})
	})
}
