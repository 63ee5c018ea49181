package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	. "github.com/smartystreets/goconvey/convey"

	"blochview/internal/bloch"
	"blochview/internal/circuit"
	"blochview/internal/circuit/circuittest"
	"blochview/internal/density"
)

const eps = 1e-9

func ip(v int) *int { return &v }

func simulate(p *Processor, n int, gates ...circuit.GateSpec) (*Result, error) {
	return p.Simulate(context.Background(), circuit.Spec{NumQubits: ip(n), Gates: gates})
}

func single(tag string, q int) circuit.GateSpec {
	return circuit.GateSpec{Type: tag, Qubit: ip(q)}
}

func pair(tag string, c, t int) circuit.GateSpec {
	return circuit.GateSpec{Type: tag, Control: ip(c), Target: ip(t)}
}

func shouldBeNear(actual any, expected ...any) string {
	got, want := actual.(bloch.Vector), expected[0].(bloch.Vector)
	if math.Abs(got.X-want.X) > eps || math.Abs(got.Y-want.Y) > eps || math.Abs(got.Z-want.Z) > eps {
		return fmt.Sprintf("expected %+v but got %+v", want, got)
	}
	return ""
}

func TestProcessScenarios(t *testing.T) {
	Convey("Given a default processor", t, func() {
		p := New()

		Convey("A single qubit with no gates stays on the north pole", func() {
			res, err := simulate(p, 1)
			So(err, ShouldBeNil)
			So(res.NumQubits, ShouldEqual, 1)
			So(res.Qubits, ShouldHaveLength, 1)
			So(res.Qubits[0].Vector(), shouldBeNear, bloch.Vector{Z: 1})
			So(res.Qubits[0].DensityMatrix, ShouldResemble, [2][2][2]float64{
				{{1, 0}, {0, 0}},
				{{0, 0}, {0, 0}},
			})
		})

		Convey("A Hadamard points the qubit along +x", func() {
			res, err := simulate(p, 1, single("h", 0))
			So(err, ShouldBeNil)
			So(res.Qubits[0].Vector(), shouldBeNear, bloch.Vector{X: 1})
		})

		Convey("An X gate flips the qubit to the south pole", func() {
			res, err := simulate(p, 1, single("x", 0))
			So(err, ShouldBeNil)
			So(res.Qubits[0].Vector(), shouldBeNear, bloch.Vector{Z: -1})
		})

		Convey("A Bell pair leaves both qubits maximally mixed", func() {
			res, err := simulate(p, 2, single("h", 0), pair("cx", 0, 1))
			So(err, ShouldBeNil)
			So(res.Qubits, ShouldHaveLength, 2)
			for _, qs := range res.Qubits {
				So(qs.Vector(), shouldBeNear, bloch.Vector{})
				So(qs.DensityMatrix[0][0][0], ShouldAlmostEqual, 0.5, eps)
				So(qs.DensityMatrix[1][1][0], ShouldAlmostEqual, 0.5, eps)
				So(qs.DensityMatrix[0][1][0], ShouldAlmostEqual, 0, eps)
				So(qs.DensityMatrix[0][1][1], ShouldAlmostEqual, 0, eps)
				So(qs.Purity, ShouldAlmostEqual, 0.5, eps)
			}
		})

		Convey("A GHZ state leaves all three qubits maximally mixed", func() {
			res, err := simulate(p, 3, single("h", 0), pair("cx", 0, 1), pair("cx", 1, 2))
			So(err, ShouldBeNil)
			So(res.Qubits, ShouldHaveLength, 3)
			for i, qs := range res.Qubits {
				So(qs.Index, ShouldEqual, i)
				So(qs.Vector(), shouldBeNear, bloch.Vector{})
			}
		})

		Convey("A controlled gate whose control equals its target is rejected", func() {
			res, err := simulate(p, 2, pair("cx", 0, 0))
			So(res, ShouldBeNil)
			So(errors.Is(err, circuit.ErrInvalidParameter), ShouldBeTrue)
			So(errors.Is(err, ErrInternalComputation), ShouldBeFalse)
		})
	})
}

func TestProcessLimitsAndCancellation(t *testing.T) {
	Convey("Given a processor limited to two qubits", t, func() {
		p := New(WithMaxQubits(2))
		So(p.MaxQubits(), ShouldEqual, 2)

		Convey("A wider circuit is rejected before validation", func() {
			_, err := simulate(p, 3, single("bogus", 0))
			So(errors.Is(err, ErrTooManyQubits), ShouldBeTrue)
		})

		Convey("A typed circuit is held to the same limit", func() {
			_, err := p.Process(context.Background(), circuit.MustNew(4))
			So(errors.Is(err, ErrTooManyQubits), ShouldBeTrue)
		})

		Convey("A circuit at the limit is processed", func() {
			res, err := simulate(p, 2)
			So(err, ShouldBeNil)
			So(res.Qubits, ShouldHaveLength, 2)
		})
	})

	Convey("Given a processor with a memory check", t, func() {
		Convey("A statevector larger than half the available memory is refused", func() {
			p := New(WithMemoryCheck(func() (uint64, error) { return StateBytes(10), nil }))
			_, err := simulate(p, 10)
			So(errors.Is(err, ErrTooManyQubits), ShouldBeTrue)

			res, err := simulate(p, 9)
			So(err, ShouldBeNil)
			So(res.Qubits, ShouldHaveLength, 9)
		})

		Convey("A failing memory probe does not block processing", func() {
			p := New(WithMemoryCheck(func() (uint64, error) { return 0, errors.New("no /proc") }))
			_, err := simulate(p, 3)
			So(err, ShouldBeNil)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Processing stops with the context error", func() {
			res, err := New().Process(ctx, circuit.MustNew(1, circuit.Single(circuit.H, 0)))
			So(res, ShouldBeNil)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestVerifyTracePolicy(t *testing.T) {
	Convey("Given the default tolerances", t, func() {
		p := New()

		Convey("An exact density matrix passes through unchanged", func() {
			m := density.Matrix{{0.5, 0.5}, {0.5, 0.5}}
			got, err := p.verify(0, m)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, m)
		})

		Convey("Drift below the renormalization threshold is left alone", func() {
			m := density.Matrix{{1 + 5e-13, 0}, {0, 0}}
			got, err := p.verify(0, m)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, m)
		})

		Convey("Small drift is renormalized to unit trace", func() {
			m := density.Matrix{{0.5 + 2e-10, 0}, {0, 0.5 + 2e-10}}
			got, err := p.verify(0, m)
			So(err, ShouldBeNil)
			So(real(got.Trace()), ShouldAlmostEqual, 1, 1e-15)
		})

		Convey("Large drift is an internal computation error", func() {
			_, err := p.verify(3, density.Matrix{{0.9, 0}, {0, 0}})
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrInternalComputation), ShouldBeTrue)
			So(err.Qubit, ShouldEqual, 3)
			So(real(err.Trace), ShouldAlmostEqual, 0.9, eps)
		})

		Convey("A non-Hermitian matrix is rejected", func() {
			_, err := p.verify(0, density.Matrix{{0.5, 0.5}, {-0.5, 0.5}})
			So(err, ShouldNotBeNil)
			So(err.Reason, ShouldContainSubstring, "Hermitian")
		})

		Convey("A negative eigenvalue is rejected", func() {
			_, err := p.verify(0, density.Matrix{{1.5, 0}, {0, -0.5}})
			So(err, ShouldNotBeNil)
			So(err.Reason, ShouldContainSubstring, "eigenvalue")
		})

		Convey("A NaN entry is rejected", func() {
			_, err := p.verify(0, density.Matrix{{complex(math.NaN(), 0), 0}, {0, 0}})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestInternalErrorIsLogged(t *testing.T) {
	Convey("Given a processor whose tolerances reject everything", t, func() {
		var buf bytes.Buffer
		p := New(
			WithLogger(log.New(&buf)),
			WithTolerance(Tolerance{Renormalize: -1, Fail: -1}),
		)

		Convey("The failure is returned and logged with the qubit", func() {
			_, err := p.Process(context.Background(), circuit.MustNew(1, circuit.Single(circuit.H, 0)))
			var cerr *ComputationError
			So(errors.As(err, &cerr), ShouldBeTrue)
			So(cerr.Qubit, ShouldEqual, 0)
			So(buf.String(), ShouldContainSubstring, "failed invariant check")
			So(buf.String(), ShouldContainSubstring, "qubit=0")
		})
	})
}

func TestRandomCircuitProperties(t *testing.T) {
	Convey("Given 200 seeded random circuits", t, func() {
		p := New()
		rng := circuittest.Seeded(2024)

		Convey("Every result satisfies the physical invariants and is reproducible", func() {
			for range 200 {
				c := circuittest.Random(rng, 6, 30)
				res, err := p.Process(context.Background(), c)
				So(err, ShouldBeNil)
				So(res.Qubits, ShouldHaveLength, c.NumQubits())

				for _, qs := range res.Qubits {
					m := qs.Matrix()
					So(m.IsHermitian(eps), ShouldBeTrue)
					So(real(m.Trace()), ShouldAlmostEqual, 1, eps)
					for _, ev := range m.Eigenvalues() {
						So(ev, ShouldBeGreaterThanOrEqualTo, -eps)
					}
					So(qs.Vector().Norm(), ShouldBeLessThanOrEqualTo, 1+eps)
					So(qs.Prob0+qs.Prob1, ShouldAlmostEqual, 1, eps)
				}

				again, err := p.Process(context.Background(), c)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, res)
			}
		})
	})
}

func TestResultJSONShape(t *testing.T) {
	Convey("Given the result of a one-qubit circuit", t, func() {
		res, err := simulate(New(), 1, single("h", 0))
		So(err, ShouldBeNil)

		Convey("It serializes to the documented wire format", func() {
			raw, err := json.Marshal(res)
			So(err, ShouldBeNil)

			var decoded map[string]any
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)
			So(decoded, ShouldContainKey, "num_qubits")
			So(decoded, ShouldContainKey, "qubits")

			qubit := decoded["qubits"].([]any)[0].(map[string]any)
			So(qubit, ShouldContainKey, "index")
			So(qubit, ShouldContainKey, "bloch_coordinates")
			So(qubit, ShouldContainKey, "density_matrix")
			So(qubit, ShouldNotContainKey, "Purity")
			So(qubit["bloch_coordinates"], ShouldContainKey, "x")
		})
	})
}
