// Package density extracts single-qubit reduced density matrices directly
// from a statevector.
package density

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a 2x2 density matrix in row-major order.
type Matrix [2][2]complex128

// Reduce traces out every qubit except q. Basis indices are grouped by the
// values of all other bits; each group is the pair (i, i|1<<q) and
// contributes the outer product of (a0, a1) with its conjugate. The cost is
// one pass over amps and no allocation.
func Reduce(amps []complex128, q int) Matrix {
	var m Matrix
	bit := 1 << q
	for i := range amps {
		if i&bit != 0 {
			continue
		}
		a0, a1 := amps[i], amps[i|bit]
		m[0][0] += a0 * cmplx.Conj(a0)
		m[0][1] += a0 * cmplx.Conj(a1)
		m[1][0] += a1 * cmplx.Conj(a0)
		m[1][1] += a1 * cmplx.Conj(a1)
	}
	return m
}

// ReduceAll returns the reduced matrix of every qubit, indexed by qubit.
func ReduceAll(amps []complex128, numQubits int) []Matrix {
	out := make([]Matrix, numQubits)
	for q := range numQubits {
		out[q] = Reduce(amps, q)
	}
	return out
}

// Trace returns Tr(m).
func (m Matrix) Trace() complex128 {
	return m[0][0] + m[1][1]
}

// Scale returns f·m.
func (m Matrix) Scale(f float64) Matrix {
	c := complex(f, 0)
	return Matrix{
		{m[0][0] * c, m[0][1] * c},
		{m[1][0] * c, m[1][1] * c},
	}
}

// Mul returns the matrix product m·o.
func (m Matrix) Mul(o Matrix) Matrix {
	var out Matrix
	for r := range 2 {
		for c := range 2 {
			out[r][c] = m[r][0]*o[0][c] + m[r][1]*o[1][c]
		}
	}
	return out
}

// IsHermitian reports whether m equals its conjugate transpose within tol.
func (m Matrix) IsHermitian(tol float64) bool {
	return math.Abs(imag(m[0][0])) <= tol &&
		math.Abs(imag(m[1][1])) <= tol &&
		cmplx.Abs(m[0][1]-cmplx.Conj(m[1][0])) <= tol
}

// Purity returns Tr(m²): 1 for a pure state, 1/2 for the maximally mixed one.
func (m Matrix) Purity() float64 {
	return real(m.Mul(m).Trace())
}

// Eigenvalues returns the eigenvalues of the Hermitian part of m in
// ascending order.
//
// A Hermitian A+iB is represented by the real symmetric [[A, -B], [B, A]],
// whose spectrum is that of A+iB with every eigenvalue doubled, so the
// symmetric solver is enough.
func (m Matrix) Eigenvalues() [2]float64 {
	a00, a11 := real(m[0][0]), real(m[1][1])
	// Symmetrize the off-diagonal so small Hermiticity drift cannot break
	// the embedding.
	off := (m[0][1] + cmplx.Conj(m[1][0])) / 2
	re, im := real(off), imag(off)

	emb := mat.NewSymDense(4, []float64{
		a00, re, 0, -im,
		re, a11, im, 0,
		0, im, a00, re,
		-im, 0, re, a11,
	})
	var eig mat.EigenSym
	if !eig.Factorize(emb, false) {
		nan := math.NaN()
		return [2]float64{nan, nan}
	}
	vals := eig.Values(nil)
	// vals is ascending and holds each eigenvalue twice.
	return [2]float64{vals[0], vals[3]}
}

// Pairs encodes m for JSON as [row][col][re, im].
func (m Matrix) Pairs() [2][2][2]float64 {
	var out [2][2][2]float64
	for r := range 2 {
		for c := range 2 {
			out[r][c] = [2]float64{real(m[r][c]), imag(m[r][c])}
		}
	}
	return out
}
