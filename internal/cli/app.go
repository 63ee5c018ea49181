package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"blochview/internal/circuit"
	"blochview/internal/client"
	"blochview/internal/config"
	"blochview/internal/logging"
	"blochview/internal/processor"
	"blochview/internal/server"
	"blochview/internal/sysmem"
	"blochview/internal/tui"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Run is RunContext with a background context.
func Run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdin, stdout, stderr)
}

// RunContext dispatches argv to a subcommand and returns the exit code.
func RunContext(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(argv) == 0 {
		printUsage(stdout)
		return ExitOK
	}

	name, args := argv[0], argv[1:]
	switch name {
	case "-h", "-help", "--help", "help":
		printUsage(stdout)
		return ExitOK
	case "version", "-version", "--version":
		_, _ = fmt.Fprintf(stdout, "blochview %s\n", server.Version)
		return ExitOK
	}

	fs := NewFlagSet(name)
	fs.SetOutput(io.Discard)

	var (
		run func() error
		err error
	)
	switch name {
	case "serve":
		var o ServeOptions
		o, err = ParseServe(fs, args)
		run = func() error { return serve(ctx, o, stderr) }
	case "run":
		var o RunOptions
		o, err = ParseRun(fs, args)
		run = func() error { return simulate(ctx, o, stdin, stdout) }
	case "submit":
		var o SubmitOptions
		o, err = ParseSubmit(fs, args)
		run = func() error { return submit(ctx, o, stdin, stdout, stderr) }
	case "tui":
		var o TUIOptions
		o, err = ParseTUI(fs, args)
		run = func() error { return viewer(ctx, o) }
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		printUsage(stderr)
		return ExitUsage
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(stdout)
			fs.Usage()
			return ExitOK
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.SetOutput(stderr)
		fs.Usage()
		return ExitUsage
	}

	if err := run(); err != nil {
		_, _ = fmt.Fprintf(stderr, "blochview %s: %v\n", name, err)
		return ExitFailure
	}
	return ExitOK
}

func serve(ctx context.Context, o ServeOptions, stderr io.Writer) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	o.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: stderr})
	if err != nil {
		return err
	}
	proc := processor.New(
		processor.WithLogger(logger),
		processor.WithMaxQubits(cfg.MaxQubits),
		processor.WithMemoryCheck(sysmem.Available),
	)
	logger.Debug("configuration loaded", "max_qubits", cfg.MaxQubits, "cache", cfg.Cache.Enabled, "rate", cfg.RateLimit.Rate)
	return server.New(cfg, logger, proc).Run(ctx)
}

func simulate(ctx context.Context, o RunOptions, stdin io.Reader, stdout io.Writer) error {
	spec, err := loadSpec(o.Input, stdin)
	if err != nil {
		return err
	}

	if o.Emit == EmitQASM {
		c, err := circuit.Build(spec)
		if err != nil {
			return err
		}
		_, err = io.WriteString(stdout, circuit.ToQASM(c))
		return err
	}

	proc := processor.New(
		processor.WithMaxQubits(o.MaxQubits),
		processor.WithMemoryCheck(sysmem.Available),
	)
	res, err := proc.Simulate(ctx, spec)
	if err != nil {
		return err
	}
	return writeResult(stdout, res, o.Pretty)
}

func submit(ctx context.Context, o SubmitOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	spec, err := loadSpec(o.Input, stdin)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: "warn", Output: stderr})
	if err != nil {
		return err
	}
	res, err := client.New(o.Server, client.WithMaxElapsed(o.Retry), client.WithLogger(logger)).Process(ctx, spec)
	if err != nil {
		return err
	}
	return writeResult(stdout, res, o.Pretty)
}

func viewer(ctx context.Context, o TUIOptions) error {
	src, err := editorSource(o.Input)
	if err != nil {
		return err
	}

	logger := logging.Discard()
	if o.LogFile != "" {
		f, err := os.OpenFile(o.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger, err = logging.New(logging.Options{Level: "debug", Format: "logfmt", Output: f})
		if err != nil {
			return err
		}
	}

	return tui.Run(ctx, tui.Options{
		Processor: newViewerProcessor(logger, o.MaxQubits),
		Source:    src,
		SavePath:  o.SavePath,
	})
}

func newViewerProcessor(logger *log.Logger, maxQubits int) *processor.Processor {
	return processor.New(
		processor.WithLogger(logger),
		processor.WithMaxQubits(maxQubits),
		processor.WithMemoryCheck(sysmem.Available),
	)
}

func writeResult(w io.Writer, res *processor.Result, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}
