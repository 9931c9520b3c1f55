package fqsim

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

/*
Matrix is a single-qubit gate. It acts on the amplitude pair of a target
qubit as

	[zero']   [A B] [zero]
	[one' ] = [C D] [one ]

with A=m[0][0], B=m[0][1], C=m[1][0] and D=m[1][1].
*/
type Matrix [2][2]complex128

// NewMatrix builds a gate from its four coefficients.
func NewMatrix(a, b, c, d complex128) Matrix {
	return Matrix{{a, b}, {c, d}}
}

// Coefficients returns A, B, C and D in row order.
func (m Matrix) Coefficients() (a, b, c, d complex128) {
	return m[0][0], m[0][1], m[1][0], m[1][1]
}

// Dagger is the conjugate transpose.
func (m Matrix) Dagger() Matrix {
	return NewMatrix(
		cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0]),
		cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1]),
	)
}

// Mul is the matrix product m·o, so o acts first.
func (m Matrix) Mul(o Matrix) Matrix {
	var out Matrix
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j]
		}
	}
	return out
}

// IsUnitary reports whether m·m† is the identity within tol.
func (m Matrix) IsUnitary(tol float64) bool {
	p := m.Mul(m.Dagger())
	return cmplx.Abs(p[0][0]-1) <= tol &&
		cmplx.Abs(p[0][1]) <= tol &&
		cmplx.Abs(p[1][0]) <= tol &&
		cmplx.Abs(p[1][1]-1) <= tol
}

var (
	Identity = NewMatrix(1, 0, 0, 1)

	Hadamard = NewMatrix(
		complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0),
		complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0),
	)

	PauliX = NewMatrix(0, 1, 1, 0)
	PauliY = NewMatrix(0, -1i, 1i, 0)
	PauliZ = NewMatrix(1, 0, 0, -1)

	SGate = NewMatrix(1, 0, 0, 1i)
	TGate = NewMatrix(1, 0, 0, cmplx.Exp(complex(0, math.Pi/4)))
)

// Phase applies e^{iθ} to the one state.
func Phase(theta float64) Matrix {
	return NewMatrix(1, 0, 0, cmplx.Exp(complex(0, theta)))
}

/*
RX rotates by theta about the X axis:

	[cos(θ/2)     -i·sin(θ/2)]
	[-i·sin(θ/2)  cos(θ/2)   ]
*/
func RX(theta float64) Matrix {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	return NewMatrix(c, js, js, c)
}

// RY rotates by theta about the Y axis with real coefficients.
func RY(theta float64) Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return NewMatrix(c, -s, s, c)
}

// RZ rotates by theta about the Z axis: diag(e^{-iθ/2}, e^{iθ/2}).
func RZ(theta float64) Matrix {
	phase := cmplx.Exp(complex(0, theta/2))
	return NewMatrix(cmplx.Conj(phase), 0, 0, phase)
}

// Gate names a fixed matrix.
type Gate struct {
	Name   string
	Matrix Matrix
}

var gates = map[string]Gate{
	"i": {Name: "I", Matrix: Identity},
	"h": {Name: "H", Matrix: Hadamard},
	"x": {Name: "X", Matrix: PauliX},
	"y": {Name: "Y", Matrix: PauliY},
	"z": {Name: "Z", Matrix: PauliZ},
	"s": {Name: "S", Matrix: SGate},
	"t": {Name: "T", Matrix: TGate},
}

// LookupGate resolves a fixed gate by its case-insensitive name.
func LookupGate(name string) (Gate, error) {
	gate, ok := gates[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Gate{}, fmt.Errorf("%w: unknown gate %q", ErrInvalidArgument, name)
	}
	return gate, nil
}
