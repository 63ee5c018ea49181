package catalog

import (
	"encoding/json"
	"testing"

	"blochview/internal/circuit"
)

func TestExamplesBuild(t *testing.T) {
	names := ExampleNames()
	if len(names) != len(Examples()) {
		t.Fatalf("ExampleNames() has %d entries, catalog has %d", len(names), len(Examples()))
	}
	for _, name := range names {
		e, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		c, err := e.Build()
		if err != nil {
			t.Errorf("%s does not build: %v", name, err)
			continue
		}
		if c.NumQubits() != *e.Circuit.NumQubits {
			t.Errorf("%s: built %d qubits, spec says %d", name, c.NumQubits(), *e.Circuit.NumQubits)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("teleportation"); err == nil {
		t.Fatal("expected an error for an unknown example")
	}
}

func TestEveryKindHasMetadata(t *testing.T) {
	kinds := []circuit.Kind{
		circuit.H, circuit.X, circuit.Y, circuit.Z,
		circuit.RX, circuit.RY, circuit.RZ,
		circuit.CX, circuit.CZ,
	}
	for _, k := range kinds {
		info, ok := Info(k)
		if !ok {
			t.Errorf("no metadata for %v", k)
			continue
		}
		parsed, ok := circuit.ParseKind(info.Type)
		if !ok || parsed != k {
			t.Errorf("%v: type tag %q parses to %v", k, info.Type, parsed)
		}
		if k.IsControlled() != (len(info.Parameters) == 2 && info.Parameters[0] == "control") {
			t.Errorf("%v: parameters %v do not match arity", k, info.Parameters)
		}
	}
}

func TestSupportedGatesJSON(t *testing.T) {
	raw, err := json.Marshal(SupportedGates())
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string][]map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded["single_qubit"]) != 7 || len(decoded["two_qubit"]) != 2 {
		t.Fatalf("unexpected grouping: %s", raw)
	}
	for _, g := range decoded["single_qubit"] {
		for _, key := range []string{"type", "name", "description", "parameters"} {
			if _, ok := g[key]; !ok {
				t.Errorf("gate %v missing %q", g["type"], key)
			}
		}
		if _, ok := g["Symbol"]; ok {
			t.Errorf("display-only field leaked into JSON: %v", g)
		}
	}
}

func TestSupportedGatesIsACopy(t *testing.T) {
	g := SupportedGates()
	g.SingleQubit[0].Name = "changed"
	if SupportedGates().SingleQubit[0].Name != "Hadamard" {
		t.Fatal("SupportedGates exposed the shared catalog")
	}
}

func TestCategoriesCoverEveryGate(t *testing.T) {
	total := 0
	for _, cat := range Categories() {
		if len(cat.Items) == 0 {
			t.Errorf("category %q is empty", cat.Name)
		}
		total += len(cat.Items)
	}
	all := SupportedGates()
	if want := len(all.SingleQubit) + len(all.TwoQubit); total != want {
		t.Errorf("categories list %d gates, want %d", total, want)
	}
}
