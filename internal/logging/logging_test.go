package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("processed circuit", "qubits", 2)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %q: %v", buf.String(), err)
	}
	if entry["msg"] != "processed circuit" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["qubits"] != float64(2) {
		t.Errorf("qubits = %v", entry["qubits"])
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "logfmt", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "qubit", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line passed a warn filter: %q", out)
	}
	if !strings.Contains(out, "qubit=1") {
		t.Errorf("missing key/value in %q", out)
	}
}

func TestInvalidOptions(t *testing.T) {
	if _, err := New(Options{Level: "chatty"}); err == nil {
		t.Error("expected an error for an unknown level")
	}
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
