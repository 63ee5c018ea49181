// Package statevector evolves a pure n-qubit state through a validated
// circuit.
//
// Amplitudes are indexed by an n-bit integer whose bit k holds the value of
// qubit k, so qubit 0 is the least-significant bit. A single-qubit gate on
// qubit q therefore mixes the amplitude pairs (i, i|1<<q) for every i with bit
// q clear. All updates happen in place; no 2^n x 2^n operator is ever formed.
package statevector

import (
	"fmt"
	"math"
	"math/cmplx"

	"blochview/internal/circuit"
)

// Complex is the amplitude type.
type Complex = complex128

// Matrix2 is a single-qubit operator in row-major order.
type Matrix2 [2][2]Complex

// State is a statevector owned by a single simulation.
type State struct {
	amps      []Complex
	numQubits int
}

// New returns |0...0> on numQubits qubits.
func New(numQubits int) *State {
	amps := make([]Complex, 1<<numQubits)
	amps[0] = 1
	return &State{amps: amps, numQubits: numQubits}
}

// Run simulates c from |0...0>, applying gates strictly in sequence order.
func Run(c *circuit.Circuit) *State {
	s := New(c.NumQubits())
	for i := range c.Len() {
		s.Apply(c.Gate(i))
	}
	return s
}

// NumQubits returns the register width.
func (s *State) NumQubits() int { return s.numQubits }

// Amplitudes returns a copy of the amplitude vector.
func (s *State) Amplitudes() []Complex {
	out := make([]Complex, len(s.amps))
	copy(out, s.amps)
	return out
}

// Raw exposes the amplitude slice without copying. Callers must not modify it.
func (s *State) Raw() []Complex { return s.amps }

// Clone returns an independent copy of the state.
func (s *State) Clone() *State {
	return &State{amps: s.Amplitudes(), numQubits: s.numQubits}
}

// Norm returns the sum of squared amplitude magnitudes.
func (s *State) Norm() float64 {
	sum := 0.0
	for _, a := range s.amps {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return sum
}

// Apply applies one gate in place. The gate must come from a circuit whose
// width matches the state.
func (s *State) Apply(g circuit.Gate) {
	switch g.Kind {
	case circuit.H, circuit.Y, circuit.RX, circuit.RY:
		s.applyMatrix(g.Target, Matrix(g))
	case circuit.X:
		s.applyX(g.Target)
	case circuit.Z:
		s.applyPhase(g.Target, 1, -1)
	case circuit.RZ:
		s.applyPhase(g.Target, cmplx.Exp(complex(0, -g.Angle/2)), cmplx.Exp(complex(0, g.Angle/2)))
	case circuit.CX:
		s.applyCX(g.Control, g.Target)
	case circuit.CZ:
		s.applyCZ(g.Control, g.Target)
	default:
		panic(fmt.Sprintf("statevector: unhandled gate kind %v", g.Kind))
	}
}

// Matrix returns the 2x2 operator of a single-qubit gate. It panics for
// controlled gates.
func Matrix(g circuit.Gate) Matrix2 {
	switch g.Kind {
	case circuit.H:
		h := complex(1/math.Sqrt2, 0)
		return Matrix2{{h, h}, {h, -h}}
	case circuit.X:
		return Matrix2{{0, 1}, {1, 0}}
	case circuit.Y:
		return Matrix2{{0, -1i}, {1i, 0}}
	case circuit.Z:
		return Matrix2{{1, 0}, {0, -1}}
	case circuit.RX:
		c, js := complex(math.Cos(g.Angle/2), 0), complex(0, -math.Sin(g.Angle/2))
		return Matrix2{{c, js}, {js, c}}
	case circuit.RY:
		c, sn := complex(math.Cos(g.Angle/2), 0), complex(math.Sin(g.Angle/2), 0)
		return Matrix2{{c, -sn}, {sn, c}}
	case circuit.RZ:
		return Matrix2{
			{cmplx.Exp(complex(0, -g.Angle/2)), 0},
			{0, cmplx.Exp(complex(0, g.Angle/2))},
		}
	default:
		panic(fmt.Sprintf("statevector: %v has no single-qubit matrix", g.Kind))
	}
}

// applyMatrix replaces every (a0, a1) pair on qubit q with U·(a0, a1).
func (s *State) applyMatrix(q int, u Matrix2) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := s.amps[i], s.amps[j]
		s.amps[i] = u[0][0]*a0 + u[0][1]*a1
		s.amps[j] = u[1][0]*a0 + u[1][1]*a1
	}
}

func (s *State) applyX(q int) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// applyPhase multiplies amplitudes by p0 where qubit q is 0 and p1 where it is 1.
func (s *State) applyPhase(q int, p0, p1 Complex) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= p1
		} else {
			s.amps[i] *= p0
		}
	}
}

func (s *State) applyCX(control, target int) {
	cBit := 1 << control
	tBit := 1 << target
	for i := range s.amps {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *State) applyCZ(control, target int) {
	both := 1<<control | 1<<target
	for i := range s.amps {
		if i&both == both {
			s.amps[i] = -s.amps[i]
		}
	}
}

// QubitProbability is the computational-basis marginal of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// Probabilities returns the per-qubit measurement marginals.
func (s *State) Probabilities() []QubitProbability {
	probs := make([]QubitProbability, s.numQubits)
	for i, a := range s.amps {
		p := real(a)*real(a) + imag(a)*imag(a)
		for q := range s.numQubits {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}
