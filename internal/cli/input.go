package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"blochview/internal/catalog"
	"blochview/internal/circuit"
)

// readInput returns the raw circuit text and its resolved format.
func readInput(in Input, stdin io.Reader) ([]byte, string, error) {
	var (
		data []byte
		err  error
	)
	if in.Path == "" || in.Path == "-" {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(in.Path)
		if err != nil {
			return nil, "", fmt.Errorf("read input: %w", err)
		}
	}
	return data, detectFormat(in, data), nil
}

// detectFormat resolves FormatAuto from the file extension, then from the
// first non-blank byte.
func detectFormat(in Input, data []byte) string {
	if in.Format != "" && in.Format != FormatAuto {
		return in.Format
	}
	switch strings.ToLower(filepath.Ext(in.Path)) {
	case ".json":
		return FormatJSON
	case ".qasm":
		return FormatQASM
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatQASM
}

// loadSpec reads an unvalidated circuit description.
func loadSpec(in Input, stdin io.Reader) (circuit.Spec, error) {
	if in.Example != "" {
		ex, err := catalog.Lookup(in.Example)
		if err != nil {
			return circuit.Spec{}, err
		}
		return ex.Circuit, nil
	}

	data, format, err := readInput(in, stdin)
	if err != nil {
		return circuit.Spec{}, err
	}
	if format == FormatQASM {
		return circuit.ParseQASM(string(data))
	}
	var spec circuit.Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return circuit.Spec{}, fmt.Errorf("decode circuit: %w", err)
	}
	return spec, nil
}

// editorSource is the initial QASM for the viewer. QASM files are shown as
// written so comments survive; JSON circuits and examples are converted.
func editorSource(in Input) (string, error) {
	if in.Example == "" && in.Path == "" {
		return "", nil
	}
	if in.Example == "" {
		data, format, err := readInput(in, nil)
		if err != nil {
			return "", err
		}
		if format == FormatQASM {
			return string(data), nil
		}
	}
	spec, err := loadSpec(in, nil)
	if err != nil {
		return "", err
	}
	c, err := circuit.Build(spec)
	if err != nil {
		return "", err
	}
	return circuit.ToQASM(c), nil
}
