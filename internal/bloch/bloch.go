// Package bloch maps single-qubit density matrices onto the Bloch ball.
package bloch

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"blochview/internal/density"
)

// Pauli matrices.
var (
	PauliX = density.Matrix{{0, 1}, {1, 0}}
	PauliY = density.Matrix{{0, -1i}, {1i, 0}}
	PauliZ = density.Matrix{{1, 0}, {0, -1}}
)

// Vector is a point in or on the unit Bloch ball. Its length is 1 for a pure
// qubit state and 0 for the maximally mixed state.
type Vector struct {
	X, Y, Z float64
}

// FromDensity returns the Bloch vector of ρ using the closed forms
//
//	x = 2·Re(ρ01)   y = 2·Im(ρ10)   z = Re(ρ00 − ρ11)
//
// which equal Re(Tr(ρσ)) for each Pauli σ when ρ is Hermitian.
func FromDensity(m density.Matrix) Vector {
	return Vector{
		X: 2 * real(m[0][1]),
		Y: 2 * imag(m[1][0]),
		Z: real(m[0][0] - m[1][1]),
	}
}

// Expectation returns Re(Tr(ρσ)) for an arbitrary observable σ.
func Expectation(m, sigma density.Matrix) float64 {
	return real(m.Mul(sigma).Trace())
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	return floats.Norm([]float64{v.X, v.Y, v.Z}, 2)
}

// Angles returns the polar angle θ ∈ [0, π] and azimuth φ ∈ (−π, π] of v. A
// zero-length vector reports (0, 0); φ is also 0 on the poles.
func (v Vector) Angles() (theta, phi float64) {
	r := v.Norm()
	if r == 0 {
		return 0, 0
	}
	theta = math.Acos(math.Max(-1, math.Min(1, v.Z/r)))
	if v.X != 0 || v.Y != 0 {
		phi = math.Atan2(v.Y, v.X)
	}
	return theta, phi
}

// Slice returns v as [x, y, z].
func (v Vector) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}
