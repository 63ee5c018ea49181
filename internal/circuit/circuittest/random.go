// Package circuittest provides helpers for tests that need circuits.
package circuittest

import (
	"math"
	"math/rand/v2"

	"blochview/internal/circuit"
)

var kinds = []circuit.Kind{
	circuit.H, circuit.X, circuit.Y, circuit.Z,
	circuit.RX, circuit.RY, circuit.RZ,
	circuit.CX, circuit.CZ,
}

// Random returns a valid circuit with 1..maxQubits qubits and 0..maxGates
// gates drawn uniformly from the gate catalog. The same rng seed always
// yields the same circuit.
func Random(rng *rand.Rand, maxQubits, maxGates int) *circuit.Circuit {
	n := 1 + rng.IntN(maxQubits)
	count := rng.IntN(maxGates + 1)
	gates := make([]circuit.Gate, 0, count)
	for len(gates) < count {
		k := kinds[rng.IntN(len(kinds))]
		switch {
		case k.IsControlled():
			if n < 2 {
				continue
			}
			c := rng.IntN(n)
			t := rng.IntN(n - 1)
			if t >= c {
				t++
			}
			gates = append(gates, circuit.Controlled(k, c, t))
		case k.IsRotation():
			gates = append(gates, circuit.Rotation(k, rng.IntN(n), (rng.Float64()*2-1)*2*math.Pi))
		default:
			gates = append(gates, circuit.Single(k, rng.IntN(n)))
		}
	}
	return circuit.MustNew(n, gates...)
}

// Seeded returns a deterministic generator for reproducible property tests.
func Seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
