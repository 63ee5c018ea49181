package tui

import (
	"fmt"
	"strings"

	"blochview/internal/circuit"
)

// layers packs gates into display columns. Each gate lands in the first
// column after every earlier gate sharing a wire with it; a controlled gate
// claims every wire between control and target so its connector never
// crosses another gate. Gate order within a wire is preserved.
func layers(c *circuit.Circuit) [][]circuit.Gate {
	if c == nil {
		return nil
	}
	free := make([]int, c.NumQubits())
	var out [][]circuit.Gate
	for _, g := range c.Gates() {
		lo, hi := span(g)
		col := 0
		for q := lo; q <= hi; q++ {
			col = max(col, free[q])
		}
		for q := lo; q <= hi; q++ {
			free[q] = col + 1
		}
		for len(out) <= col {
			out = append(out, nil)
		}
		out[col] = append(out[col], g)
	}
	return out
}

func span(g circuit.Gate) (lo, hi int) {
	if g.Kind.IsControlled() {
		return min(g.Control, g.Target), max(g.Control, g.Target)
	}
	return g.Target, g.Target
}

// cellInfo describes what occupies a single cell in the diagram grid.
type cellInfo struct {
	gate        *circuit.Gate
	isControl   bool
	isTarget    bool
	vertAbove   bool
	vertBelow   bool
	passThrough bool
}

// cellAt returns rendering information for one wire in one column.
func cellAt(layer []circuit.Gate, qubit int) cellInfo {
	var info cellInfo
	for i := range layer {
		g := &layer[i]
		lo, hi := span(*g)
		if qubit < lo || qubit > hi {
			continue
		}
		switch {
		case g.Kind.IsControlled() && g.Control == qubit:
			info.gate, info.isControl = g, true
		case g.Kind.IsControlled() && g.Target == qubit:
			info.gate, info.isTarget = g, true
		case g.Target == qubit:
			info.gate = g
		default:
			info.passThrough = true
		}
		info.vertAbove = qubit > lo
		info.vertBelow = qubit < hi
	}
	return info
}

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", total-left)
}

// targetSymbol returns the wire symbol for the target of a controlled gate.
func targetSymbol(k circuit.Kind) string {
	if k == circuit.CZ {
		return "●"
	}
	return "⊕"
}

// renderCell returns 3 lines (top, mid, bot) for a single cell, each cellW
// visual characters wide.
func renderCell(info cellInfo) (top, mid, bot string) {
	empty := strings.Repeat(" ", cellW)
	half := cellW / 2
	vert := strings.Repeat(" ", half) + "│" + strings.Repeat(" ", cellW-half-1)
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	top, bot = empty, empty
	if info.vertAbove {
		top = vert
	}
	if info.vertBelow {
		bot = vert
	}

	switch {
	case info.isControl:
		mid = strings.Repeat("─", dashL) + gateStyle.Render("●") + strings.Repeat("─", dashR)
	case info.isTarget:
		mid = strings.Repeat("─", dashL) + gateStyle.Render(targetSymbol(info.gate.Kind)) + strings.Repeat("─", dashR)
	case info.gate != nil:
		margin := (cellW - gateBoxW) / 2
		right := cellW - margin - gateBoxW
		name := padCenter(strings.ToUpper(info.gate.Kind.String()), gateNameW)
		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", right)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", right)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", right)
	case info.passThrough:
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
	default:
		mid = strings.Repeat("─", cellW)
	}
	return
}

// renderDiagram draws the circuit as wires and gate boxes. When the circuit
// is wider than width, the trailing columns are shown.
func renderDiagram(c *circuit.Circuit, width, selected int) string {
	if c == nil {
		return dimStyle.Render("no circuit")
	}
	cols := layers(c)
	fit := max((width-labelW)/cellW, 1)
	start := 0
	if len(cols) > fit {
		start = len(cols) - fit
	}

	var sb strings.Builder
	if start > 0 {
		fmt.Fprintf(&sb, "  ◀ showing layers %d–%d of %d\n", start, len(cols)-1, len(cols))
	}
	for q := range c.NumQubits() {
		topLine := strings.Repeat(" ", labelW)
		label := fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", q))
		if q == selected {
			label = selectedQubitStyle.Render(label)
		} else {
			label = qubitLabelStyle.Render(label)
		}
		midLine := label + "──"
		botLine := strings.Repeat(" ", labelW)

		for _, layer := range cols[start:] {
			top, mid, bot := renderCell(cellAt(layer, q))
			topLine += top
			midLine += mid
			botLine += bot
		}
		midLine += "─"

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
