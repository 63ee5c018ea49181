package circuit

import "math"

// GateSpec is the loosely-typed description of one gate as it arrives from a
// client. Pointer fields distinguish "absent" from zero.
type GateSpec struct {
	Type    string   `json:"type"`
	Qubit   *int     `json:"qubit,omitempty"`
	Control *int     `json:"control,omitempty"`
	Target  *int     `json:"target,omitempty"`
	Angle   *float64 `json:"angle,omitempty"`
}

// Spec is an unvalidated circuit description.
type Spec struct {
	NumQubits *int       `json:"num_qubits"`
	Gates     []GateSpec `json:"gates"`
}

// Circuit is a validated, immutable circuit: a qubit count and an ordered
// gate sequence. The only ways to obtain one are Build and New.
type Circuit struct {
	numQubits int
	gates     []Gate
}

// NumQubits returns the register width.
func (c *Circuit) NumQubits() int { return c.numQubits }

// Len returns the number of gates.
func (c *Circuit) Len() int { return len(c.gates) }

// Gate returns the i-th gate.
func (c *Circuit) Gate(i int) Gate { return c.gates[i] }

// Gates returns a copy of the gate sequence.
func (c *Circuit) Gates() []Gate {
	out := make([]Gate, len(c.gates))
	copy(out, c.gates)
	return out
}

// Spec converts the circuit back into its wire description.
func (c *Circuit) Spec() Spec {
	n := c.numQubits
	specs := make([]GateSpec, 0, len(c.gates))
	for _, g := range c.gates {
		gs := GateSpec{Type: g.Kind.String()}
		if g.Kind.IsControlled() {
			gs.Control, gs.Target = intPtr(g.Control), intPtr(g.Target)
		} else {
			gs.Qubit = intPtr(g.Target)
		}
		if g.Kind.IsRotation() {
			gs.Angle = floatPtr(g.Angle)
		}
		specs = append(specs, gs)
	}
	return Spec{NumQubits: &n, Gates: specs}
}

// Build validates a circuit description. Gates are checked in order and the
// first problem is reported; nothing is allocated for simulation until the
// whole description is accepted.
func Build(spec Spec) (*Circuit, error) {
	if spec.NumQubits == nil {
		return nil, gateErr(ErrMissingParameter, -1, "num_qubits", "num_qubits field is required")
	}
	n := *spec.NumQubits
	if n <= 0 {
		return nil, gateErr(ErrInvalidParameter, -1, "num_qubits", "num_qubits must be positive, got %d", n)
	}

	gates := make([]Gate, 0, len(spec.Gates))
	for i, gs := range spec.Gates {
		g, err := buildGate(i, n, gs)
		if err != nil {
			return nil, err
		}
		gates = append(gates, g)
	}
	return &Circuit{numQubits: n, gates: gates}, nil
}

// New builds a circuit from typed gates, applying the same validation as Build.
func New(numQubits int, gates ...Gate) (*Circuit, error) {
	if numQubits <= 0 {
		return nil, gateErr(ErrInvalidParameter, -1, "num_qubits", "num_qubits must be positive, got %d", numQubits)
	}
	for i, g := range gates {
		if _, ok := kindNames[g.Kind]; !ok {
			return nil, gateErr(ErrInvalidGateType, i, "type", "unknown gate kind %d", uint8(g.Kind))
		}
		if err := checkGate(i, numQubits, g); err != nil {
			return nil, err
		}
	}
	out := make([]Gate, len(gates))
	copy(out, gates)
	for i := range out {
		if !out[i].Kind.IsControlled() {
			out[i].Control = -1
		}
	}
	return &Circuit{numQubits: numQubits, gates: out}, nil
}

// MustNew is New for fixtures known to be valid.
func MustNew(numQubits int, gates ...Gate) *Circuit {
	c, err := New(numQubits, gates...)
	if err != nil {
		panic(err)
	}
	return c
}

func buildGate(i, n int, gs GateSpec) (Gate, error) {
	kind, ok := ParseKind(gs.Type)
	if !ok {
		return Gate{}, gateErr(ErrInvalidGateType, i, "type", "unsupported gate type %q", gs.Type)
	}

	g := Gate{Kind: kind, Control: -1}
	if kind.IsControlled() {
		if gs.Control == nil {
			return Gate{}, gateErr(ErrMissingParameter, i, "control", "%s gate requires control", kind)
		}
		if gs.Target == nil {
			return Gate{}, gateErr(ErrMissingParameter, i, "target", "%s gate requires target", kind)
		}
		g.Control, g.Target = *gs.Control, *gs.Target
	} else {
		if gs.Qubit == nil {
			return Gate{}, gateErr(ErrMissingParameter, i, "qubit", "%s gate requires qubit", kind)
		}
		g.Target = *gs.Qubit
	}
	if kind.IsRotation() {
		if gs.Angle == nil {
			return Gate{}, gateErr(ErrMissingParameter, i, "angle", "%s gate requires angle", kind)
		}
		g.Angle = *gs.Angle
	}

	if err := checkGate(i, n, g); err != nil {
		return Gate{}, err
	}
	return g, nil
}

func checkGate(i, n int, g Gate) error {
	if g.Kind.IsControlled() {
		if g.Control < 0 || g.Control >= n {
			return gateErr(ErrQubitOutOfRange, i, "control", "control %d not in [0, %d)", g.Control, n)
		}
		if g.Target < 0 || g.Target >= n {
			return gateErr(ErrQubitOutOfRange, i, "target", "target %d not in [0, %d)", g.Target, n)
		}
		if g.Control == g.Target {
			return gateErr(ErrInvalidParameter, i, "target", "control and target must differ, both are %d", g.Target)
		}
		return nil
	}
	if g.Target < 0 || g.Target >= n {
		return gateErr(ErrQubitOutOfRange, i, "qubit", "qubit %d not in [0, %d)", g.Target, n)
	}
	if g.Kind.IsRotation() && (math.IsNaN(g.Angle) || math.IsInf(g.Angle, 0)) {
		return gateErr(ErrInvalidParameter, i, "angle", "angle must be finite, got %v", g.Angle)
	}
	return nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
