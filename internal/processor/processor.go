// Package processor runs a circuit through the simulation pipeline and
// assembles the per-qubit result served to clients.
//
// The pipeline is: statevector evolution, one reduced density matrix per
// qubit, an invariant check on each matrix, and the Bloch mapping. Every call
// owns its own state, so a single Processor is safe for concurrent use.
package processor

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"time"

	"github.com/charmbracelet/log"

	"blochview/internal/bloch"
	"blochview/internal/circuit"
	"blochview/internal/density"
	"blochview/internal/statevector"
)

// Default tolerances for the trace policy.
const (
	DefaultRenormalize = 1e-12
	DefaultFail        = 1e-9
)

// Tolerance controls how reduced matrices are checked. Trace drift up to
// Renormalize is accepted as is, drift up to Fail is corrected by dividing
// by the trace, and anything beyond Fail is an internal computation error.
// Fail also bounds Hermiticity and negative eigenvalues.
type Tolerance struct {
	Renormalize float64
	Fail        float64
}

// Coordinates is the wire form of a Bloch vector.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// QubitState is the result for one qubit.
type QubitState struct {
	Index            int              `json:"index"`
	BlochCoordinates Coordinates      `json:"bloch_coordinates"`
	DensityMatrix    [2][2][2]float64 `json:"density_matrix"`

	// Display-only extras, not part of the wire format.
	Purity float64 `json:"-"`
	Prob0  float64 `json:"-"`
	Prob1  float64 `json:"-"`

	matrix density.Matrix
}

// Matrix returns the checked reduced density matrix.
func (q QubitState) Matrix() density.Matrix { return q.matrix }

// Vector returns the Bloch vector.
func (q QubitState) Vector() bloch.Vector {
	return bloch.Vector{X: q.BlochCoordinates.X, Y: q.BlochCoordinates.Y, Z: q.BlochCoordinates.Z}
}

// Result is the response for a processed circuit, qubits in ascending index
// order.
type Result struct {
	NumQubits int          `json:"num_qubits"`
	Qubits    []QubitState `json:"qubits"`
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTolerance overrides the trace policy thresholds.
func WithTolerance(t Tolerance) Option {
	return func(p *Processor) {
		p.tol = t
	}
}

// WithMaxQubits rejects circuits wider than n before any state is
// allocated. Zero disables the limit.
func WithMaxQubits(n int) Option {
	return func(p *Processor) {
		p.maxQubits = n
	}
}

// WithMemoryCheck makes Process refuse circuits whose statevector would take
// more than half of the memory reported by available. Errors from available
// skip the check.
func WithMemoryCheck(available func() (uint64, error)) Option {
	return func(p *Processor) {
		p.available = available
	}
}

// Processor turns circuits into per-qubit results.
type Processor struct {
	logger    *log.Logger
	tol       Tolerance
	maxQubits int
	available func() (uint64, error)
}

// New returns a Processor with default tolerances and no qubit limit.
func New(opts ...Option) *Processor {
	p := &Processor{
		logger: log.New(io.Discard),
		tol:    Tolerance{Renormalize: DefaultRenormalize, Fail: DefaultFail},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxQubits returns the configured width limit, 0 when unlimited.
func (p *Processor) MaxQubits() int { return p.maxQubits }

// Simulate validates spec and processes the resulting circuit. Validation
// errors are returned unchanged.
func (p *Processor) Simulate(ctx context.Context, spec circuit.Spec) (*Result, error) {
	if spec.NumQubits != nil {
		if err := p.checkWidth(*spec.NumQubits); err != nil {
			return nil, err
		}
	}
	c, err := circuit.Build(spec)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, c)
}

// Process simulates c from |0...0> and reduces every qubit. ctx is only
// consulted between gates so that an abandoned request stops early.
func (p *Processor) Process(ctx context.Context, c *circuit.Circuit) (*Result, error) {
	if err := p.checkWidth(c.NumQubits()); err != nil {
		return nil, err
	}
	if err := p.checkMemory(c.NumQubits()); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	state := statevector.New(c.NumQubits())
	for _, g := range c.Gates() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		state.Apply(g)
	}

	amps := state.Raw()
	probs := state.Probabilities()
	res := &Result{
		NumQubits: c.NumQubits(),
		Qubits:    make([]QubitState, c.NumQubits()),
	}
	for q := range c.NumQubits() {
		m, cerr := p.verify(q, density.Reduce(amps, q))
		if cerr != nil {
			p.logger.Error("reduced density matrix failed invariant check",
				"qubit", q,
				"trace", fmt.Sprint(cerr.Trace),
				"reason", cerr.Reason,
				"circuit", circuit.ToQASM(c),
			)
			return nil, cerr
		}
		v := bloch.FromDensity(m)
		res.Qubits[q] = QubitState{
			Index:            q,
			BlochCoordinates: Coordinates{X: v.X, Y: v.Y, Z: v.Z},
			DensityMatrix:    m.Pairs(),
			Purity:           m.Purity(),
			Prob0:            probs[q].Prob0,
			Prob1:            probs[q].Prob1,
			matrix:           m,
		}
	}

	p.logger.Debug("processed circuit",
		"qubits", c.NumQubits(),
		"gates", c.Len(),
		"elapsed", time.Since(start),
	)
	return res, nil
}

func (p *Processor) checkWidth(n int) error {
	if p.maxQubits > 0 && n > p.maxQubits {
		return fmt.Errorf("%w: circuit has %d qubits, limit is %d", ErrTooManyQubits, n, p.maxQubits)
	}
	return nil
}

// StateBytes is the size of an n-qubit statevector.
func StateBytes(n int) uint64 {
	return uint64(16) << n
}

func (p *Processor) checkMemory(n int) error {
	if p.available == nil {
		return nil
	}
	avail, err := p.available()
	if err != nil {
		p.logger.Debug("memory check skipped", "err", err)
		return nil
	}
	if need := StateBytes(n); need > avail/2 {
		return fmt.Errorf("%w: statevector needs %d bytes, %d available", ErrTooManyQubits, need, avail)
	}
	return nil
}

// verify applies the trace policy to m and checks Hermiticity and positive
// semidefiniteness. It returns the matrix to report, which differs from m
// only when it was renormalized.
func (p *Processor) verify(q int, m density.Matrix) (density.Matrix, *ComputationError) {
	tr := m.Trace()
	fail := func(reason string) (density.Matrix, *ComputationError) {
		return m, &ComputationError{Qubit: q, Trace: tr, Reason: reason}
	}

	if cmplx.IsNaN(tr) || cmplx.IsInf(tr) {
		return fail("trace is not finite")
	}
	if math.Abs(imag(tr)) > p.tol.Fail {
		return fail("trace has an imaginary part")
	}
	switch drift := math.Abs(real(tr) - 1); {
	case drift > p.tol.Fail:
		return fail("trace deviates from 1")
	case drift > p.tol.Renormalize:
		m = m.Scale(1 / real(tr))
	}

	if !m.IsHermitian(p.tol.Fail) {
		return fail("matrix is not Hermitian")
	}
	for _, ev := range m.Eigenvalues() {
		if math.IsNaN(ev) || ev < -p.tol.Fail {
			return fail("matrix has a negative eigenvalue")
		}
	}
	return m, nil
}
