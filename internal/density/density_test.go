package density

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"blochview/internal/circuit"
	"blochview/internal/circuit/circuittest"
	"blochview/internal/statevector"
)

const tol = 1e-9

// referenceReduce materializes the full density matrix and traces out every
// qubit but q. It is the O(4^n) route the direct reduction replaces.
func referenceReduce(amps []complex128, n, q int) Matrix {
	dim := 1 << n
	full := make([][]complex128, dim)
	for i := range dim {
		full[i] = make([]complex128, dim)
		for j := range dim {
			full[i][j] = amps[i] * cmplx.Conj(amps[j])
		}
	}

	var m Matrix
	bit := 1 << q
	for i := range dim {
		for j := range dim {
			if i&^bit != j&^bit {
				continue
			}
			r, c := (i>>q)&1, (j>>q)&1
			m[r][c] += full[i][j]
		}
	}
	return m
}

func closeTo(a, b Matrix, eps float64) bool {
	for r := range 2 {
		for c := range 2 {
			if cmplx.Abs(a[r][c]-b[r][c]) > eps {
				return false
			}
		}
	}
	return true
}

func TestReduceGroundState(t *testing.T) {
	amps := statevector.New(3).Raw()
	want := Matrix{{1, 0}, {0, 0}}
	for q := range 3 {
		if got := Reduce(amps, q); got != want {
			t.Errorf("qubit %d: got %v, want %v", q, got, want)
		}
	}
}

func TestReduceBellIsMaximallyMixed(t *testing.T) {
	s := statevector.Run(circuit.MustNew(2,
		circuit.Single(circuit.H, 0),
		circuit.Controlled(circuit.CX, 0, 1),
	))
	want := Matrix{{0.5, 0}, {0, 0.5}}
	for q, m := range ReduceAll(s.Raw(), 2) {
		if !closeTo(m, want, 1e-12) {
			t.Errorf("qubit %d: got %v, want %v", q, m, want)
		}
		if p := m.Purity(); math.Abs(p-0.5) > 1e-12 {
			t.Errorf("qubit %d: purity %v, want 0.5", q, p)
		}
	}
}

func TestReduceMatchesFullPartialTrace(t *testing.T) {
	rng := circuittest.Seeded(3)
	for range 60 {
		c := circuittest.Random(rng, 4, 20)
		amps := statevector.Run(c).Raw()
		for q := range c.NumQubits() {
			got := Reduce(amps, q)
			want := referenceReduce(amps, c.NumQubits(), q)
			if !closeTo(got, want, 1e-12) {
				t.Fatalf("%s\nqubit %d: got %s want %s", circuit.ToQASM(c), q, spew.Sdump(got), spew.Sdump(want))
			}
		}
	}
}

func TestReducedMatrixInvariants(t *testing.T) {
	rng := circuittest.Seeded(11)
	for range 250 {
		c := circuittest.Random(rng, 6, 30)
		amps := statevector.Run(c).Raw()
		for q, m := range ReduceAll(amps, c.NumQubits()) {
			if !m.IsHermitian(tol) {
				t.Fatalf("qubit %d not Hermitian: %v\n%s", q, m, circuit.ToQASM(c))
			}
			if tr := m.Trace(); math.Abs(real(tr)-1) > tol || math.Abs(imag(tr)) > tol {
				t.Fatalf("qubit %d trace %v\n%s", q, tr, circuit.ToQASM(c))
			}
			for _, ev := range m.Eigenvalues() {
				if math.IsNaN(ev) || ev < -tol {
					t.Fatalf("qubit %d eigenvalue %v\n%s", q, ev, circuit.ToQASM(c))
				}
			}
		}
	}
}

func TestEigenvaluesClosedForm(t *testing.T) {
	tests := []Matrix{
		{{1, 0}, {0, 0}},
		{{0.5, 0}, {0, 0.5}},
		{{0.5, 0.5}, {0.5, 0.5}},
		{{0.5, -0.5i}, {0.5i, 0.5}},
		{{0.7, complex(0.1, 0.2)}, {complex(0.1, -0.2), 0.3}},
	}
	for _, m := range tests {
		a, d := real(m[0][0]), real(m[1][1])
		disc := math.Sqrt((a-d)*(a-d) + 4*cmplx.Abs(m[0][1])*cmplx.Abs(m[0][1]))
		want := [2]float64{(a + d - disc) / 2, (a + d + disc) / 2}
		got := m.Eigenvalues()
		for i := range 2 {
			if math.Abs(got[i]-want[i]) > 1e-12 {
				t.Errorf("%v: eigenvalues %v, want %v", m, got, want)
				break
			}
		}
	}
}

func TestIsHermitian(t *testing.T) {
	if !(Matrix{{0.5, 0.5i}, {-0.5i, 0.5}}).IsHermitian(1e-12) {
		t.Errorf("expected Hermitian")
	}
	if (Matrix{{0.5, 0.5i}, {0.5i, 0.5}}).IsHermitian(1e-12) {
		t.Errorf("expected non-Hermitian off-diagonal to be rejected")
	}
	if (Matrix{{complex(0.5, 0.1), 0}, {0, 0.5}}).IsHermitian(1e-12) {
		t.Errorf("expected complex diagonal to be rejected")
	}
}

func TestScaleAndPairs(t *testing.T) {
	m := Matrix{{2, complex(0, 1)}, {complex(0, -1), 0}}.Scale(0.5)
	want := [2][2][2]float64{
		{{1, 0}, {0, 0.5}},
		{{0, -0.5}, {0, 0}},
	}
	if got := m.Pairs(); got != want {
		t.Errorf("Pairs() = %v, want %v", got, want)
	}
}
