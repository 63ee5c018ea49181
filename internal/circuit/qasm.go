package circuit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regexps for the OpenQASM 2.0 subset the gate catalog covers.
var (
	singleGateRegex = regexp.MustCompile(`^(\w+)\s+\w+\[(\d+)\]\s*;?$`)
	paramGateRegex  = regexp.MustCompile(`(?i)^(\w+)\s*\(\s*(` + anglePattern + `)\s*\)\s+\w+\[(\d+)\]\s*;?$`)
	twoQubitRegex   = regexp.MustCompile(`^(\w+)\s+\w+\[(\d+)\]\s*,\s*\w+\[(\d+)\]\s*;?$`)
	qregRegex       = regexp.MustCompile(`(?i)^qreg\s+(\w+)\s*\[(\d+)\]\s*;?$`)
)

// ToQASM renders the circuit as OpenQASM 2.0.
func ToQASM(c *Circuit) string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", c.numQubits)
	if len(c.gates) > 0 {
		sb.WriteString("\n")
	}

	for _, g := range c.gates {
		switch {
		case g.Kind.IsControlled():
			fmt.Fprintf(&sb, "%s q[%d], q[%d];\n", g.Kind, g.Control, g.Target)
		case g.Kind.IsRotation():
			fmt.Fprintf(&sb, "%s(%s) q[%d];\n", g.Kind, FormatAngle(g.Angle), g.Target)
		default:
			fmt.Fprintf(&sb, "%s q[%d];\n", g.Kind, g.Target)
		}
	}
	return sb.String()
}

// ParseQASM reads the OpenQASM 2.0 subset produced by ToQASM into an
// unvalidated Spec; pass the result to Build. Declarations, barriers and
// comments are skipped. When no qreg is declared the register is sized to the
// highest referenced qubit. Statements outside the gate catalog (measure,
// reset, custom gates) are rejected with ErrInvalidGateType.
func ParseQASM(src string) (Spec, error) {
	var (
		spec     Spec
		maxQubit = -1
	)
	note := func(idx ...int) {
		for _, q := range idx {
			maxQubit = max(maxQubit, q)
		}
	}

	for lineNo, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		if i := strings.Index(line, "//"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "openqasm") ||
			strings.HasPrefix(lower, "include") ||
			strings.HasPrefix(lower, "creg") ||
			strings.HasPrefix(lower, "barrier") {
			continue
		}
		gateIdx := len(spec.Gates)

		if strings.HasPrefix(lower, "qreg") {
			m := qregRegex.FindStringSubmatch(line)
			if m == nil {
				return Spec{}, &Error{Kind: ErrInvalidParameter, Gate: -1, Field: "num_qubits",
					Msg: fmt.Sprintf("line %d: malformed qreg declaration %q", lineNo+1, line)}
			}
			if spec.NumQubits != nil {
				return Spec{}, &Error{Kind: ErrInvalidParameter, Gate: -1, Field: "num_qubits",
					Msg: fmt.Sprintf("line %d: only one quantum register is supported", lineNo+1)}
			}
			n, _ := strconv.Atoi(m[2])
			spec.NumQubits = &n
			continue
		}

		if m := paramGateRegex.FindStringSubmatch(line); m != nil {
			angle, err := ParseAngle(m[2])
			if err != nil {
				return Spec{}, &Error{Kind: ErrInvalidParameter, Gate: gateIdx, Field: "angle",
					Msg: fmt.Sprintf("line %d: %v", lineNo+1, err)}
			}
			q, _ := strconv.Atoi(m[3])
			note(q)
			spec.Gates = append(spec.Gates, GateSpec{Type: m[1], Qubit: intPtr(q), Angle: floatPtr(angle)})
			continue
		}

		if m := twoQubitRegex.FindStringSubmatch(line); m != nil {
			c, _ := strconv.Atoi(m[2])
			t, _ := strconv.Atoi(m[3])
			note(c, t)
			spec.Gates = append(spec.Gates, GateSpec{Type: m[1], Control: intPtr(c), Target: intPtr(t)})
			continue
		}

		if m := singleGateRegex.FindStringSubmatch(line); m != nil {
			q, _ := strconv.Atoi(m[2])
			note(q)
			spec.Gates = append(spec.Gates, GateSpec{Type: m[1], Qubit: intPtr(q)})
			continue
		}

		return Spec{}, &Error{Kind: ErrInvalidGateType, Gate: gateIdx, Field: "type",
			Msg: fmt.Sprintf("line %d: unsupported statement %q", lineNo+1, line)}
	}

	if spec.NumQubits == nil {
		n := max(maxQubit+1, 1)
		spec.NumQubits = &n
	}
	return spec, nil
}
