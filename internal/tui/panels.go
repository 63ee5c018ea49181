package tui

import (
	"fmt"
	"math"
	"strings"

	"blochview/internal/catalog"
	"blochview/internal/processor"
)

// mixedThreshold is the purity below which a qubit is flagged as entangled
// with the rest of the register. The global state is always pure, so a mixed
// reduced state means entanglement.
const mixedThreshold = 1 - 1e-6

// probBar draws p as a horizontal bar of the given width.
func probBar(p float64, width int) string {
	p = math.Max(0, math.Min(1, p))
	filled := int(math.Round(p * float64(width)))
	return barFillStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

// qubitLine summarises one qubit on a single line.
func qubitLine(q processor.QubitState, selected bool) string {
	v := q.Vector()
	theta, phi := v.Angles()

	label := fmt.Sprintf("q[%d]", q.Index)
	marker := "  "
	if selected {
		label = selectedQubitStyle.Render(fmt.Sprintf("%-5s", label))
		marker = selectedQubitStyle.Render("▸ ")
	} else {
		label = qubitLabelStyle.Render(fmt.Sprintf("%-5s", label))
	}

	var sb strings.Builder
	sb.WriteString(marker + label)
	fmt.Fprintf(&sb, " x=%+.3f y=%+.3f z=%+.3f", v.X, v.Y, v.Z)
	fmt.Fprintf(&sb, "  θ=%.3f φ=%.3f", theta, phi)
	fmt.Fprintf(&sb, "  P0=%.3f P1=%.3f", q.Prob0, q.Prob1)
	fmt.Fprintf(&sb, "  purity=%.3f ", q.Purity)
	sb.WriteString(dimStyle.Render("|1⟩ ") + probBar(q.Prob1, barW))
	if q.Purity < mixedThreshold {
		sb.WriteString(entangledStyle.Render("  entangled"))
	}
	return sb.String()
}

// qubitDetail prints the reduced density matrix of the selected qubit.
func qubitDetail(q processor.QubitState) string {
	m := q.Matrix()
	cell := func(c complex128) string {
		return fmt.Sprintf("%+.3f%+.3fi", real(c), imag(c))
	}
	return dimStyle.Render(fmt.Sprintf("ρ[%d] = [[%s, %s], [%s, %s]]",
		q.Index, cell(m[0][0]), cell(m[0][1]), cell(m[1][0]), cell(m[1][1])))
}

// renderBlochPanel lists every qubit's Bloch vector, keeping the selected
// qubit in view when the register is taller than rows.
func (m Model) renderBlochPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Qubit States"))
	sb.WriteString("\n")

	switch {
	case m.err != nil:
		sb.WriteString(errorStyle.Render(truncate("✗ "+m.err.Error(), width-4)))
	case m.result != nil:
		sb.WriteString(dimStyle.Render(fmt.Sprintf("%d qubits, %d gates", m.result.NumQubits, m.circ.Len())))
	}
	sb.WriteString("\n")

	if m.result != nil && len(m.result.Qubits) > 0 {
		rows := max(height-4, 1)
		start := 0
		if m.selected >= rows {
			start = m.selected - rows + 1
		}
		end := min(start+rows, len(m.result.Qubits))
		for _, q := range m.result.Qubits[start:end] {
			sb.WriteString(qubitLine(q, q.Index == m.selected))
			sb.WriteString("\n")
		}
		if m.selected < len(m.result.Qubits) {
			sb.WriteString(qubitDetail(m.result.Qubits[m.selected]))
		}
	}

	return blochStyle.Width(width).Height(height).Render(sb.String())
}

// renderCircuitPanel renders the diagram of the last valid circuit.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Quantum Circuit"))
	sb.WriteString("\n\n")
	sb.WriteString(renderDiagram(m.circ, width-4, m.selected))
	if m.status != "" {
		sb.WriteString("\n\n  " + activeStyle.Render(m.status))
	}
	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderQASMPanel renders the QASM editor panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder
	title := "QASM Editor"
	if m.focus == focusEditor {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.editor.View())
	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(activeStyle.Render("Qubits: "))
	sb.WriteString("↑↓/jk Select  e Examples  g Gates  Tab Editor")
	sb.WriteString("\n")
	sb.WriteString(activeStyle.Render("Always: "))
	sb.WriteString("^S Save  q/^C Quit")
	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// renderExamples renders the floating example picker.
func (m Model) renderExamples() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Load Example"))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 44)))
	sb.WriteString("\n")

	examples := catalog.Examples()
	for i, name := range catalog.ExampleNames() {
		ex := examples[name]
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf(" ▸ %-30s", ex.Name)))
		} else {
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("   %-30s", ex.Name)))
		}
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render("     " + ex.Description))
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ⏎ Load  Esc ✕"))
	return menuBorderStyle.Render(sb.String())
}

// renderGates renders the gate reference with tabs per category.
func (m Model) renderGates() string {
	cats := catalog.Categories()
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Insert Gate"))
	sb.WriteString("\n")

	for i, cat := range cats {
		name := " " + cat.Name + " "
		if i == m.menuCat {
			sb.WriteString(activeStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(cats)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 44)))
	sb.WriteString("\n")

	for i, g := range cats[m.menuCat].Items {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-14s", g.Name)))
			sb.WriteString(gateStyle.Render(fmt.Sprintf("%-6s", g.Symbol)))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-14s", g.Name)))
			sb.WriteString(dimStyle.Render(fmt.Sprintf("%-6s", g.Symbol)))
		}
		sb.WriteString(dimStyle.Render(g.Description))
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(fmt.Sprintf(" ↑↓ Select  ←→ Cat  ⏎ Insert on q[%d]  Esc ✕", m.selected)))
	return menuBorderStyle.Render(sb.String())
}

// truncate shortens s to width runes.
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
