// Package tui is the terminal viewer: a QASM editor whose circuit is
// re-simulated on every edit, with per-qubit Bloch vectors and a diagram.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"blochview/internal/catalog"
	"blochview/internal/circuit"
	"blochview/internal/processor"
)

// DefaultSavePath is where ctrl+s writes the circuit.
const DefaultSavePath = "circuit.qasm"

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusQubits focus = iota
	focusEditor
	focusExamples
	focusGates
)

// Options configures the viewer.
type Options struct {
	Processor *processor.Processor
	// Source is the initial editor content. Empty starts with the Bell state.
	Source   string
	SavePath string
}

// resultMsg carries one evaluation of the editor content. seq identifies the
// edit it belongs to so stale results are dropped.
type resultMsg struct {
	seq    int
	circ   *circuit.Circuit
	result *processor.Result
	err    error
}

// Model represents the TUI application state.
type Model struct {
	proc     *processor.Processor
	savePath string

	editor textarea.Model
	focus  focus
	width  int
	height int

	seq    int
	circ   *circuit.Circuit // last circuit that simulated cleanly
	result *processor.Result
	err    error // error for the current editor content
	status string

	selected int

	// Overlay state
	menuCat  int
	menuItem int
}

// New builds the initial model. The first simulation runs from Init.
func New(opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.SetWidth(40)
	ta.SetHeight(20)

	src := opts.Source
	if strings.TrimSpace(src) == "" {
		if c, err := catalog.Examples()["bell_state"].Build(); err == nil {
			src = circuit.ToQASM(c)
		}
	}
	ta.SetValue(src)

	proc := opts.Processor
	if proc == nil {
		proc = processor.New()
	}
	savePath := opts.SavePath
	if savePath == "" {
		savePath = DefaultSavePath
	}

	return Model{
		proc:     proc,
		savePath: savePath,
		editor:   ta,
		focus:    focusQubits,
		seq:      1,
	}
}

// Run starts the viewer and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options, progOpts ...tea.ProgramOption) error {
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, progOpts...)
	_, err := tea.NewProgram(New(opts), progOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// evaluate parses, validates and simulates src off the update loop.
func evaluate(proc *processor.Processor, seq int, src string) tea.Cmd {
	return func() tea.Msg {
		return simulate(proc, seq, src)
	}
}

func simulate(proc *processor.Processor, seq int, src string) resultMsg {
	msg := resultMsg{seq: seq}
	spec, err := circuit.ParseQASM(src)
	if err != nil {
		msg.err = err
		return msg
	}
	c, err := circuit.Build(spec)
	if err != nil {
		msg.err = err
		return msg
	}
	res, err := proc.Process(context.Background(), c)
	if err != nil {
		msg.err = err
		return msg
	}
	msg.circ, msg.result = c, res
	return msg
}

// reevaluate bumps the edit sequence and schedules a simulation of the
// current editor content.
func (m *Model) reevaluate() tea.Cmd {
	m.seq++
	return evaluate(m.proc, m.seq, m.editor.Value())
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return evaluate(m.proc, m.seq, m.editor.Value())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(max(msg.Width/3-6, 20))
		m.editor.SetHeight(max(m.topHeight()-5, 4))
		return m, nil

	case resultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.err = msg.err
		if msg.err == nil {
			m.circ, m.result = msg.circ, msg.result
			m.selected = max(min(m.selected, m.circ.NumQubits()-1), 0)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusEditor {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.status = ""

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+s":
		m.save()
		return m, nil
	}

	switch m.focus {
	case focusQubits:
		switch key {
		case "q":
			return m, tea.Quit
		case "tab":
			m.focus = focusEditor
			cmd := m.editor.Focus()
			return m, cmd
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.circ != nil && m.selected < m.circ.NumQubits()-1 {
				m.selected++
			}
		case "e":
			m.focus = focusExamples
			m.menuItem = 0
		case "g":
			m.focus = focusGates
			m.menuCat, m.menuItem = 0, 0
		}

	case focusEditor:
		if key == "tab" || key == "esc" {
			m.focus = focusQubits
			m.editor.Blur()
			return m, nil
		}
		before := m.editor.Value()
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		if m.editor.Value() != before {
			eval := m.reevaluate()
			return m, tea.Batch(cmd, eval)
		}
		return m, cmd

	case focusExamples:
		names := catalog.ExampleNames()
		switch key {
		case "esc", "e", "q":
			m.focus = focusQubits
		case "up", "k":
			if m.menuItem > 0 {
				m.menuItem--
			}
		case "down", "j":
			if m.menuItem < len(names)-1 {
				m.menuItem++
			}
		case "enter":
			m.focus = focusQubits
			cmd := m.loadExample(names[m.menuItem])
			return m, cmd
		}

	case focusGates:
		cats := catalog.Categories()
		switch key {
		case "esc", "g", "q":
			m.focus = focusQubits
		case "up", "k":
			if m.menuItem > 0 {
				m.menuItem--
			}
		case "down", "j":
			if m.menuItem < len(cats[m.menuCat].Items)-1 {
				m.menuItem++
			}
		case "left", "h":
			if m.menuCat > 0 {
				m.menuCat--
				m.menuItem = 0
			}
		case "right", "l":
			if m.menuCat < len(cats)-1 {
				m.menuCat++
				m.menuItem = 0
			}
		case "enter":
			m.focus = focusQubits
			cmd := m.insertGate(cats[m.menuCat].Items[m.menuItem])
			return m, cmd
		}
	}
	return m, nil
}

// loadExample replaces the editor content with a catalog circuit.
func (m *Model) loadExample(name string) tea.Cmd {
	ex, err := catalog.Lookup(name)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	c, err := ex.Build()
	if err != nil {
		m.status = err.Error()
		return nil
	}
	m.editor.SetValue(circuit.ToQASM(c))
	m.selected = 0
	m.status = "Loaded " + ex.Name
	return m.reevaluate()
}

// insertGate appends one statement for g acting on the selected qubit.
// Controlled gates use the selected qubit as control and its neighbour as
// target.
func (m *Model) insertGate(g catalog.GateInfo) tea.Cmd {
	line, err := gateStatement(g, m.selected, m.numQubits())
	if err != nil {
		m.status = err.Error()
		return nil
	}
	src := strings.TrimRight(m.editor.Value(), "\n")
	if src != "" {
		src += "\n"
	}
	m.editor.SetValue(src + line + "\n")
	m.status = "Inserted " + line
	return m.reevaluate()
}

func (m Model) numQubits() int {
	if m.circ == nil {
		return 1
	}
	return m.circ.NumQubits()
}

// gateStatement renders the QASM statement for g on qubit q of an n-qubit
// register.
func gateStatement(g catalog.GateInfo, q, n int) (string, error) {
	switch {
	case g.Kind.IsControlled():
		if n < 2 {
			return "", fmt.Errorf("%s needs at least two qubits", g.Name)
		}
		t := q + 1
		if t >= n {
			t = q - 1
		}
		return fmt.Sprintf("%s q[%d], q[%d];", g.Type, q, t), nil
	case g.Kind.IsRotation():
		angle := g.Hint
		if angle == "" {
			angle = "pi/2"
		}
		return fmt.Sprintf("%s(%s) q[%d];", g.Type, angle, q), nil
	default:
		return fmt.Sprintf("%s q[%d];", g.Type, q), nil
	}
}

// save writes the editor content to the save path. A circuit that simulated
// cleanly is written in canonical form.
func (m *Model) save() {
	src := m.editor.Value()
	if m.err == nil && m.circ != nil {
		src = circuit.ToQASM(m.circ)
	}
	if err := os.WriteFile(m.savePath, []byte(src), 0o644); err != nil {
		m.status = fmt.Sprintf("Save error: %v", err)
		return
	}
	m.status = "Saved " + m.savePath
}

// ──────────────────────────── View ────────────────────────────

const controlsHeight = 4

func (m Model) topHeight() int {
	return max((m.height-controlsHeight)/2, 8)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	qasmWidth := m.width / 3
	circuitWidth := m.width - qasmWidth - 4
	topHeight := m.topHeight()
	blochHeight := max(m.height-topHeight-controlsHeight-4, 6)

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderCircuitPanel(circuitWidth, topHeight),
		m.renderQASMPanel(qasmWidth, topHeight),
	)
	frame := lipgloss.JoinVertical(lipgloss.Left,
		top,
		m.renderBlochPanel(m.width-2, blochHeight),
		m.renderControlsPanel(m.width-2, controlsHeight-2),
	)

	switch m.focus {
	case focusExamples:
		frame = overlayAt(frame, m.renderExamples(), 2, 2)
	case focusGates:
		frame = overlayAt(frame, m.renderGates(), 2, 2)
	}
	return frame
}
