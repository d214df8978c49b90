// =============================================================================
// uvm-tbgen - Main Entry Point
// =============================================================================
//
// uvm-tbgen turns a Verilog/SystemVerilog DUT into a ready-to-edit UVM
// testbench: sequence item, driver, monitor, agent, scoreboard, coverage,
// checker, assertions, interface and top module.
//
// THE PIPELINE (internal/generator):
//   1. Copy the DUT into the output directory
//   2. Extractor recovers the module name and ports (heuristic, never fatal)
//   3. Classifier tags clock, reset, handshake and control signals
//   4. CUE validates the render context, OPA lints the interface (advisory)
//   5. Every artifact template renders independently into memory, then to disk
//
// WHEN A GENERATED FILE LOOKS WRONG:
//   Check `uvm-tbgen facts --dut <file>` first. Most surprises are extraction
//   or classification, not templates.
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/config"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/simulator"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/validator"
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, err error) error {
	return &exitError{code: code, err: err}
}

// app is the state shared by all commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
	logFormat  string

	cfg      *config.Config
	logger   *zap.Logger
	lookPath simulator.LookPathFunc
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return newApp(stdout, stderr).execute(ctx, args)
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	fmt.Fprintln(a.stderr, "Error:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "uvm-tbgen",
		Short: "Generate UVM testbench scaffolding from a Verilog module",
		Long: `uvm-tbgen reads a Verilog/SystemVerilog module and writes a complete UVM
testbench skeleton next to a copy of it.

Configuration is read from, in order:
  1. ./uvm_tbgen.yaml
  2. ./.uvm_tbgen.yaml
  3. <DUT directory>/uvm_tbgen.yaml
  4. <DUT directory>/.uvm_tbgen.yaml
  5. ~/.config/uvm_tbgen/config.yaml

Run 'uvm-tbgen init' to create a default configuration file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: search order above)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log encoding: json or console")

	root.AddCommand(
		a.generateCmd(),
		a.initCmd(),
		a.simulateCmd(),
		a.simulatorsCmd(),
		a.factsCmd(),
	)
	return root
}

// setup loads and validates the config, then builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load(dutFlag(cmd))
	}
	if err != nil {
		return exitWith(2, err)
	}

	v, err := validator.New()
	if err != nil {
		return fmt.Errorf("loading contracts: %w", err)
	}
	if err := v.ValidateConfig(a.cfg); err != nil {
		return exitWith(2, fmt.Errorf("invalid config %s: %w", a.cfg.Path, err))
	}

	a.logger, err = newLogger(a.stderr, a.cfg.Logging, a.logFormat, a.verbose)
	if err != nil {
		return exitWith(2, err)
	}
	if a.cfg.Path != "" {
		a.logger.Debug("config loaded", zap.String("path", a.cfg.Path))
	}
	return nil
}

// dutFlag returns the --dut value when the command has a single-valued one.
func dutFlag(cmd *cobra.Command) string {
	f := cmd.Flags().Lookup("dut")
	if f == nil || f.Value.Type() != "string" {
		return ""
	}
	return f.Value.String()
}

func newLogger(w io.Writer, lc config.LoggingConfig, formatFlag string, verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	format := lc.Format
	if formatFlag != "" {
		format = formatFlag
	}
	var enc zapcore.Encoder
	switch format {
	case "console":
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	case "json", "":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)), nil
}
