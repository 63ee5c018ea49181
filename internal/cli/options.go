// Package cli implements the blochview command line: the HTTP server, one-shot
// simulation, the terminal viewer and a remote client.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"blochview/internal/config"
	"blochview/internal/tui"
)

// Input formats accepted by run, submit and tui.
const (
	FormatAuto = "auto"
	FormatJSON = "json"
	FormatQASM = "qasm"
)

// What run prints.
const (
	EmitResult = "result"
	EmitQASM   = "qasm"
)

// Input selects where a circuit comes from. Example wins over Path; an empty
// Path or "-" reads stdin.
type Input struct {
	Path    string
	Format  string
	Example string
}

// ServeOptions holds flags for "serve". Zero values leave the config file
// and environment settings untouched.
type ServeOptions struct {
	ConfigPath string
	Addr       string
	MaxQubits  int
	LogLevel   string
	LogFormat  string
}

// Apply copies the flags that were set over cfg.
func (o ServeOptions) Apply(cfg *config.Config) {
	if o.Addr != "" {
		cfg.Addr = o.Addr
	}
	if o.MaxQubits != 0 {
		cfg.MaxQubits = o.MaxQubits
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.LogFormat = o.LogFormat
	}
}

// RunOptions holds flags for "run".
type RunOptions struct {
	Input
	MaxQubits int
	Emit      string
	Pretty    bool
}

// SubmitOptions holds flags for "submit".
type SubmitOptions struct {
	Input
	Server string
	Retry  time.Duration
	Pretty bool
}

// TUIOptions holds flags for "tui".
type TUIOptions struct {
	Input
	MaxQubits int
	SavePath  string
	LogFile   string
}

// NewFlagSet returns a flag set for the named subcommand with usage text.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		out := fs.Output()
		_, _ = fmt.Fprintln(out, "Usage:")
		switch name {
		case "serve":
			_, _ = fmt.Fprintln(out, "  blochview serve [options]")
		case "tui":
			_, _ = fmt.Fprintln(out, "  blochview tui [options] [circuit.qasm|circuit.json]")
		default:
			_, _ = fmt.Fprintf(out, "  blochview %s [options] [circuit.qasm|circuit.json|-]\n", name)
		}
		_, _ = fmt.Fprintln(out, "\nOptions:")
		fs.PrintDefaults()
	}
	return fs
}

func registerInput(fs *flag.FlagSet, in *Input) {
	fs.StringVar(&in.Format, "format", FormatAuto, "input format: auto, json or qasm")
	fs.StringVar(&in.Example, "example", "", "use a built-in example instead of an input file")
}

// finishInput takes the optional input path from the positionals and checks
// the format.
func finishInput(in *Input, pos []string) error {
	switch len(pos) {
	case 0:
	case 1:
		in.Path = pos[0]
	default:
		return fmt.Errorf("expected at most one input, got %d", len(pos))
	}
	switch in.Format {
	case FormatAuto, FormatJSON, FormatQASM:
	default:
		return fmt.Errorf("--format must be auto, json or qasm, got %q", in.Format)
	}
	return nil
}

func checkQubits(n int) error {
	if n < 1 || n > config.HardMaxQubits {
		return fmt.Errorf("--max-qubits must be between 1 and %d, got %d", config.HardMaxQubits, n)
	}
	return nil
}

// ParseServe parses "serve" arguments.
func ParseServe(fs *flag.FlagSet, argv []string) (ServeOptions, error) {
	var o ServeOptions
	fs.StringVar(&o.ConfigPath, "config", "", "YAML configuration file")
	fs.StringVar(&o.Addr, "addr", "", "listen address (overrides config)")
	fs.IntVar(&o.MaxQubits, "max-qubits", 0, "largest accepted register (overrides config)")
	fs.StringVar(&o.LogLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	fs.StringVar(&o.LogFormat, "log-format", "", "text, json or logfmt (overrides config)")

	flagArgs, pos := splitArgs(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return o, err
	}
	if len(pos) > 0 {
		return o, fmt.Errorf("unexpected argument %q", pos[0])
	}
	return o, nil
}

// ParseRun parses "run" arguments.
func ParseRun(fs *flag.FlagSet, argv []string) (RunOptions, error) {
	var o RunOptions
	registerInput(fs, &o.Input)
	fs.IntVar(&o.MaxQubits, "max-qubits", config.Default().MaxQubits, "largest accepted register")
	fs.StringVar(&o.Emit, "emit", EmitResult, "output: result (JSON Bloch data) or qasm (canonical circuit)")
	fs.BoolVar(&o.Pretty, "pretty", false, "indent JSON output")

	flagArgs, pos := splitArgs(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return o, err
	}
	if err := finishInput(&o.Input, pos); err != nil {
		return o, err
	}
	if err := checkQubits(o.MaxQubits); err != nil {
		return o, err
	}
	switch o.Emit {
	case EmitResult, EmitQASM:
	default:
		return o, fmt.Errorf("--emit must be result or qasm, got %q", o.Emit)
	}
	return o, nil
}

// ParseSubmit parses "submit" arguments.
func ParseSubmit(fs *flag.FlagSet, argv []string) (SubmitOptions, error) {
	var o SubmitOptions
	registerInput(fs, &o.Input)
	fs.StringVar(&o.Server, "server", "http://localhost:5000", "blochview server URL")
	fs.DurationVar(&o.Retry, "retry", 30*time.Second, "how long to retry rate-limited or unavailable answers (0 disables)")
	fs.BoolVar(&o.Pretty, "pretty", false, "indent JSON output")

	flagArgs, pos := splitArgs(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return o, err
	}
	if err := finishInput(&o.Input, pos); err != nil {
		return o, err
	}
	if o.Server == "" {
		return o, errors.New("--server must not be empty")
	}
	if o.Retry < 0 {
		return o, errors.New("--retry must not be negative")
	}
	return o, nil
}

// ParseTUI parses "tui" arguments. Without an input the viewer opens on the
// Bell state.
func ParseTUI(fs *flag.FlagSet, argv []string) (TUIOptions, error) {
	var o TUIOptions
	registerInput(fs, &o.Input)
	fs.IntVar(&o.MaxQubits, "max-qubits", config.Default().MaxQubits, "largest accepted register")
	fs.StringVar(&o.SavePath, "save", tui.DefaultSavePath, "file written by ctrl+s")
	fs.StringVar(&o.LogFile, "log-file", "", "append debug logs to this file")

	flagArgs, pos := splitArgs(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return o, err
	}
	if err := finishInput(&o.Input, pos); err != nil {
		return o, err
	}
	if o.Path == "-" {
		return o, errors.New("tui cannot read the circuit from stdin")
	}
	if err := checkQubits(o.MaxQubits); err != nil {
		return o, err
	}
	return o, nil
}

// printUsage lists the subcommands.
func printUsage(out io.Writer) {
	_, _ = fmt.Fprintln(out, "Usage:")
	_, _ = fmt.Fprintln(out, "  blochview <command> [options]")
	_, _ = fmt.Fprintln(out, "\nCommands:")
	_, _ = fmt.Fprintln(out, "  serve     run the HTTP API")
	_, _ = fmt.Fprintln(out, "  run       simulate a circuit and print per-qubit Bloch data")
	_, _ = fmt.Fprintln(out, "  tui       open the terminal viewer")
	_, _ = fmt.Fprintln(out, "  submit    send a circuit to a running server")
	_, _ = fmt.Fprintln(out, "  version   print the version")
	_, _ = fmt.Fprintln(out, "\nRun 'blochview <command> -h' for command options.")
}
