// Package catalog holds the static example circuits and the metadata for
// every supported gate. Both are built once and never modified.
package catalog

import (
	"fmt"

	"blochview/internal/circuit"
)

// Example is a named demonstration circuit.
type Example struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Circuit     circuit.Spec `json:"circuit"`
}

// Build validates the example's circuit.
func (e Example) Build() (*circuit.Circuit, error) {
	return circuit.Build(e.Circuit)
}

// GateInfo describes one supported gate for clients.
type GateInfo struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`

	Kind   circuit.Kind `json:"-"`
	Symbol string       `json:"-"`
	Hint   string       `json:"-"`
}

// Gates groups the gate metadata by arity.
type Gates struct {
	SingleQubit []GateInfo `json:"single_qubit"`
	TwoQubit    []GateInfo `json:"two_qubit"`
}

// Category is a display grouping of gates.
type Category struct {
	Name  string
	Items []GateInfo
}

func n(v int) *int { return &v }

func one(tag string, q int) circuit.GateSpec {
	return circuit.GateSpec{Type: tag, Qubit: n(q)}
}

func two(tag string, c, t int) circuit.GateSpec {
	return circuit.GateSpec{Type: tag, Control: n(c), Target: n(t)}
}

// exampleOrder is the display order of the examples.
var exampleOrder = []string{"bell_state", "ghz_state", "superposition", "mixed_state"}

var examples = map[string]Example{
	"bell_state": {
		Name:        "Bell State (Entangled Qubits)",
		Description: "Creates maximum entanglement between two qubits",
		Circuit: circuit.Spec{
			NumQubits: n(2),
			Gates:     []circuit.GateSpec{one("h", 0), two("cx", 0, 1)},
		},
	},
	"ghz_state": {
		Name:        "GHZ State (3 Qubits)",
		Description: "Three-qubit entangled state",
		Circuit: circuit.Spec{
			NumQubits: n(3),
			Gates:     []circuit.GateSpec{one("h", 0), two("cx", 0, 1), two("cx", 1, 2)},
		},
	},
	"superposition": {
		Name:        "Single Qubit Superposition",
		Description: "Single qubit in equal superposition",
		Circuit: circuit.Spec{
			NumQubits: n(1),
			Gates:     []circuit.GateSpec{one("h", 0)},
		},
	},
	"mixed_state": {
		Name:        "Mixed State Example",
		Description: "Creates mixed states through partial measurement",
		Circuit: circuit.Spec{
			NumQubits: n(2),
			Gates:     []circuit.GateSpec{one("h", 0), one("h", 1), two("cx", 0, 1)},
		},
	},
}

var gates = Gates{
	SingleQubit: []GateInfo{
		{Type: "h", Name: "Hadamard", Description: "Creates superposition", Parameters: []string{"qubit"}, Kind: circuit.H, Symbol: "H"},
		{Type: "x", Name: "Pauli-X", Description: "Bit flip gate", Parameters: []string{"qubit"}, Kind: circuit.X, Symbol: "X"},
		{Type: "y", Name: "Pauli-Y", Description: "Bit and phase flip gate", Parameters: []string{"qubit"}, Kind: circuit.Y, Symbol: "Y"},
		{Type: "z", Name: "Pauli-Z", Description: "Phase flip gate", Parameters: []string{"qubit"}, Kind: circuit.Z, Symbol: "Z"},
		{Type: "rx", Name: "Rotation-X", Description: "Rotation around X-axis", Parameters: []string{"qubit", "angle"}, Kind: circuit.RX, Symbol: "RX", Hint: "pi/2"},
		{Type: "ry", Name: "Rotation-Y", Description: "Rotation around Y-axis", Parameters: []string{"qubit", "angle"}, Kind: circuit.RY, Symbol: "RY", Hint: "pi/2"},
		{Type: "rz", Name: "Rotation-Z", Description: "Rotation around Z-axis", Parameters: []string{"qubit", "angle"}, Kind: circuit.RZ, Symbol: "RZ", Hint: "pi/2"},
	},
	TwoQubit: []GateInfo{
		{Type: "cx", Name: "CNOT", Description: "Controlled-X gate", Parameters: []string{"control", "target"}, Kind: circuit.CX, Symbol: "●─⊕"},
		{Type: "cz", Name: "Controlled-Z", Description: "Controlled-Z gate", Parameters: []string{"control", "target"}, Kind: circuit.CZ, Symbol: "●─●"},
	},
}

// Examples returns a copy of the example catalog keyed by identifier.
func Examples() map[string]Example {
	out := make(map[string]Example, len(examples))
	for k, v := range examples {
		out[k] = v
	}
	return out
}

// ExampleNames returns the example identifiers in display order.
func ExampleNames() []string {
	return append([]string(nil), exampleOrder...)
}

// Lookup returns the named example.
func Lookup(name string) (Example, error) {
	e, ok := examples[name]
	if !ok {
		return Example{}, fmt.Errorf("unknown example %q", name)
	}
	return e, nil
}

// SupportedGates returns the gate metadata grouped by arity.
func SupportedGates() Gates {
	return Gates{
		SingleQubit: append([]GateInfo(nil), gates.SingleQubit...),
		TwoQubit:    append([]GateInfo(nil), gates.TwoQubit...),
	}
}

// Categories groups the gates the way the terminal viewer lists them.
func Categories() []Category {
	var fixed, rot []GateInfo
	for _, g := range gates.SingleQubit {
		if g.Kind.IsRotation() {
			rot = append(rot, g)
		} else {
			fixed = append(fixed, g)
		}
	}
	return []Category{
		{Name: "Single Qubit", Items: fixed},
		{Name: "Rotation", Items: rot},
		{Name: "Two Qubit", Items: append([]GateInfo(nil), gates.TwoQubit...)},
	}
}

// Info returns the metadata for k.
func Info(k circuit.Kind) (GateInfo, bool) {
	for _, group := range [][]GateInfo{gates.SingleQubit, gates.TwoQubit} {
		for _, g := range group {
			if g.Kind == k {
				return g, true
			}
		}
	}
	return GateInfo{}, false
}
