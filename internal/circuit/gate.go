package circuit

import (
	"fmt"
	"strings"
)

// Kind identifies one entry of the fixed gate catalog.
type Kind uint8

const (
	H Kind = iota + 1
	X
	Y
	Z
	RX
	RY
	RZ
	CX
	CZ
)

var kindNames = map[Kind]string{
	H: "h", X: "x", Y: "y", Z: "z",
	RX: "rx", RY: "ry", RZ: "rz",
	CX: "cx", CZ: "cz",
}

// kindAliases maps every accepted type tag to its kind. "cnot" is kept for
// clients written against the first version of the API.
var kindAliases = map[string]Kind{
	"h": H, "x": X, "y": Y, "z": Z,
	"rx": RX, "ry": RY, "rz": RZ,
	"cx": CX, "cnot": CX, "cz": CZ,
}

// ParseKind resolves a gate type tag. Matching is case-insensitive.
func ParseKind(tag string) (Kind, bool) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(tag))]
	return k, ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsRotation reports whether the gate takes an angle.
func (k Kind) IsRotation() bool {
	return k == RX || k == RY || k == RZ
}

// IsControlled reports whether the gate acts on a control/target pair.
func (k Kind) IsControlled() bool {
	return k == CX || k == CZ
}

// Gate is a validated gate instance. Target is the qubit acted on; Control is
// -1 for single-qubit gates. Angle is only meaningful for rotations.
type Gate struct {
	Kind    Kind
	Target  int
	Control int
	Angle   float64
}

// Single returns an unparameterized single-qubit gate.
func Single(k Kind, qubit int) Gate {
	return Gate{Kind: k, Target: qubit, Control: -1}
}

// Rotation returns a rotation gate with the angle in radians.
func Rotation(k Kind, qubit int, angle float64) Gate {
	return Gate{Kind: k, Target: qubit, Control: -1, Angle: angle}
}

// Controlled returns a two-qubit controlled gate.
func Controlled(k Kind, control, target int) Gate {
	return Gate{Kind: k, Target: target, Control: control}
}

// Qubits lists the qubits the gate references, control first.
func (g Gate) Qubits() []int {
	if g.Kind.IsControlled() {
		return []int{g.Control, g.Target}
	}
	return []int{g.Target}
}

func (g Gate) String() string {
	switch {
	case g.Kind.IsControlled():
		return fmt.Sprintf("%s(%d,%d)", g.Kind, g.Control, g.Target)
	case g.Kind.IsRotation():
		return fmt.Sprintf("%s(%d,%s)", g.Kind, g.Target, FormatAngle(g.Angle))
	default:
		return fmt.Sprintf("%s(%d)", g.Kind, g.Target)
	}
}
