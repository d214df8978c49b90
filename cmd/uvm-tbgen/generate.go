package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/config"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/facts"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/generator"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/lint"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/render"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/validator"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/watch"
)

type generateOptions struct {
	dut        string
	outDir     string
	topName    string
	workers    int
	templates  string
	jsonOut    bool
	watch      bool
	runScript  bool
	strict     bool
	timingPath string
}

func (a *app) generateCmd() *cobra.Command {
	var o generateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a UVM testbench for a DUT",
		Example: `  uvm-tbgen generate --dut rtl/fifo.v
  uvm-tbgen generate --dut rtl/fifo.v --outdir tb --topname fifo_tb --json
  uvm-tbgen generate --dut rtl/fifo.v --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.applyConfig(cmd, a.cfg)
			return a.runGenerate(cmd.Context(), o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.dut, "dut", "", "path to the DUT Verilog file (required)")
	f.StringVar(&o.outDir, "outdir", config.DefaultOutDir, "output directory")
	f.StringVar(&o.topName, "topname", config.DefaultTopName, "testbench top module name")
	f.IntVar(&o.workers, "workers", 0, "parallel renderers (0 = one per CPU, 1 = sequential)")
	f.StringVar(&o.templates, "templates", "", "directory of *.sv.tmpl files overriding the built-in templates")
	f.BoolVar(&o.jsonOut, "json", false, "print the run report as JSON")
	f.BoolVar(&o.watch, "watch", false, "regenerate whenever the DUT changes")
	f.BoolVar(&o.runScript, "run-script", false, "also write an executable run.sh")
	f.BoolVar(&o.strict, "strict", false, "fail when the render context violates its contract")
	f.StringVar(&o.timingPath, "timing", "", "append per-phase timings to this JSONL file")
	_ = cmd.MarkFlagRequired("dut")
	return cmd
}

// applyConfig fills every option the user did not set on the command line.
func (o *generateOptions) applyConfig(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if !f.Changed("outdir") {
		o.outDir = cfg.Generate.OutDir
	}
	if !f.Changed("topname") {
		o.topName = cfg.Generate.TopName
	}
	if !f.Changed("workers") {
		o.workers = cfg.Generate.Workers
	}
	if !f.Changed("templates") {
		o.templates = cfg.Templates.Dir
	}
	if !f.Changed("run-script") {
		o.runScript = cfg.Generate.RunScript
	}
	if !f.Changed("strict") {
		o.strict = cfg.Generate.Strict
	}
	if !f.Changed("timing") {
		o.timingPath = cfg.Generate.TimingPath
	}
}

func (a *app) newGenerator(ctx context.Context, o generateOptions) (*generator.Generator, error) {
	set, err := render.Default()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	if o.templates != "" {
		ids, err := set.LoadDir(o.templates)
		if err != nil {
			return nil, exitWith(2, fmt.Errorf("loading template overrides: %w", err))
		}
		a.logger.Info("template overrides loaded", zap.String("dir", o.templates), zap.Strings("templates", ids))
		for _, id := range set.IDs() {
			a.logger.Debug("template", zap.String("id", id), zap.String("origin", set.Origin(id)))
		}
	}

	v, err := validator.New()
	if err != nil {
		return nil, fmt.Errorf("loading contracts: %w", err)
	}

	opts := []generator.Option{
		generator.WithLogger(a.logger),
		generator.WithTemplates(set),
		generator.WithWorkers(o.workers),
		generator.WithValidator(v),
		generator.WithStrict(o.strict),
		generator.WithRunScript(o.runScript),
		generator.WithTimingPath(o.timingPath),
	}
	if a.cfg.LintEnabled() {
		lintOpts := []lint.Option{
			lint.WithRules(a.cfg.Lint.Rules),
			lint.WithMaxWidth(a.cfg.Lint.MaxWidth),
		}
		if dir := a.policyDir(); dir != "" {
			lintOpts = append(lintOpts, lint.WithPolicyDir(dir))
		}
		engine, err := lint.New(ctx, lintOpts...)
		if err != nil {
			a.logger.Warn("interface lint disabled", zap.Error(err))
		} else {
			opts = append(opts, generator.WithLinter(engine))
		}
	}
	return generator.New(opts...), nil
}

// policyDir resolves lint.policy_dir against the directory of the config file.
func (a *app) policyDir() string {
	dir := a.cfg.Lint.PolicyDir
	if dir == "" || filepath.IsAbs(dir) || a.cfg.Path == "" {
		return dir
	}
	return filepath.Join(filepath.Dir(a.cfg.Path), dir)
}

func (a *app) runGenerate(ctx context.Context, o generateOptions) error {
	gen, err := a.newGenerator(ctx, o)
	if err != nil {
		return err
	}

	report, err := a.generateOnce(ctx, gen, o)
	if err != nil {
		return err
	}
	if !o.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(o.dut, watch.WithLogger(a.logger))
	if err != nil {
		return err
	}
	prev := reportFacts(report)
	return w.Run(ctx, func(ctx context.Context, _ []byte) error {
		report, err := a.generateOnce(ctx, gen, o)
		if err != nil {
			return err
		}
		next := reportFacts(report)
		if d := facts.ComputeDelta(prev, next); d.Empty() {
			a.logger.Info("interface unchanged", zap.String("module", report.Module))
		} else {
			a.logger.Info("interface changed", zap.String("module", report.Module), zap.Strings("changes", d.Changes()))
		}
		prev = next
		return nil
	})
}

func (a *app) generateOnce(ctx context.Context, gen *generator.Generator, o generateOptions) (*generator.Report, error) {
	report, err := gen.Run(ctx, o.dut, o.outDir, o.topName)
	switch {
	case errors.Is(err, generator.ErrDutNotFound):
		return nil, exitWith(1, err)
	case errors.Is(err, generator.ErrNameConflict):
		return nil, exitWith(2, err)
	case errors.Is(err, generator.ErrContractViolation):
		return nil, exitWith(3, err)
	case err != nil:
		return nil, err
	}

	if o.jsonOut {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return nil, fmt.Errorf("encoding report: %w", err)
		}
		return report, nil
	}
	fmt.Fprint(a.stdout, renderSummary(report))
	return report, nil
}

func reportFacts(r *generator.Report) facts.Tables {
	return facts.Build(r.Dut, r.Interface, r.Roles, r.Degraded)
}
