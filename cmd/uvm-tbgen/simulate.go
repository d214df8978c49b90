package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/simulator"
)

type simulateOptions struct {
	dut       string
	testbench string
	simulator string
	auto      bool
	top       string
	seed      int
	gui       bool
	dryRun    bool
}

func (a *app) simulateCmd() *cobra.Command {
	var o simulateOptions
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Compile and run a generated testbench with an installed simulator",
		Example: `  uvm-tbgen simulate --dut dut.v --testbench generated_tb --simulator vcs
  uvm-tbgen simulate --dut dut.v --testbench generated_tb --simulator modelsim --gui
  uvm-tbgen simulate --dut dut.v --testbench generated_tb --auto --seed 12345`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if !f.Changed("simulator") && !o.auto {
				o.simulator = a.cfg.Simulation.Simulator
			}
			if o.auto {
				o.simulator = "auto"
			}
			if !f.Changed("top") {
				o.top = a.cfg.Generate.TopName
			}
			if !f.Changed("seed") {
				o.seed = a.cfg.Simulation.Seed
			}
			if !f.Changed("gui") {
				o.gui = a.cfg.Simulation.GUI
			}
			return a.runSimulate(cmd.Context(), o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.dut, "dut", "", "path to the DUT file (required)")
	f.StringVar(&o.testbench, "testbench", "", "generated testbench directory (required)")
	f.StringVar(&o.simulator, "simulator", "", "vcs, modelsim, xcelium, vivado, icarus or auto")
	f.BoolVar(&o.auto, "auto", false, "use the first installed simulator")
	f.StringVar(&o.top, "top", "", "testbench top module (default: generate.topname)")
	f.IntVar(&o.seed, "seed", 0, "random seed (0 = simulator default)")
	f.BoolVar(&o.gui, "gui", false, "launch the simulator GUI")
	f.BoolVar(&o.dryRun, "dry-run", false, "print the commands instead of running them")
	_ = cmd.MarkFlagRequired("dut")
	_ = cmd.MarkFlagRequired("testbench")
	return cmd
}

func (a *app) runSimulate(ctx context.Context, o simulateOptions) error {
	if _, err := os.Stat(o.dut); err != nil {
		return exitWith(1, fmt.Errorf("DUT file not found: %s", o.dut))
	}
	if info, err := os.Stat(o.testbench); err != nil || !info.IsDir() {
		return exitWith(1, fmt.Errorf("testbench directory not found: %s", o.testbench))
	}

	sim, err := simulator.Resolve(o.simulator, a.lookPath)
	if err != nil {
		return exitWith(1, err)
	}
	sources, err := a.cfg.ResolveSources(o.dut, o.testbench)
	if err != nil {
		return exitWith(1, err)
	}
	plan, err := simulator.NewPlan(sim, simulator.Options{
		TestbenchDir: o.testbench,
		Sources:      sources,
		Top:          o.top,
		Seed:         o.seed,
		GUI:          o.gui,
	})
	if err != nil {
		return exitWith(1, err)
	}

	a.logger.Info("simulation planned",
		zap.String("simulator", sim.Name),
		zap.Int("sources", len(plan.Sources)),
		zap.String("work_dir", plan.WorkDir),
		zap.String("log_file", plan.LogFile))

	if o.dryRun {
		fmt.Fprintln(a.stdout, titleStyle.Render("Simulation plan: "+sim.Name))
		for _, step := range plan.Steps {
			fmt.Fprintf(a.stdout, "%s %s\n", mutedStyle.Render(fmt.Sprintf("%-10s", step.Name)), step.String())
		}
		return nil
	}

	timeout, err := a.cfg.SimulationTimeout()
	if err != nil {
		return exitWith(2, err)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	runner := &simulator.Runner{Logger: a.logger, Stdout: a.stdout, Stderr: a.stderr}
	if err := runner.Run(ctx, plan); err != nil {
		var serr *simulator.StepError
		if errors.As(err, &serr) && serr.ExitCode > 0 {
			return exitWith(serr.ExitCode, err)
		}
		return exitWith(1, err)
	}
	fmt.Fprintln(a.stdout, okStyle.Render("Simulation finished")+" "+mutedStyle.Render(plan.LogFile))
	return nil
}

func (a *app) simulatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulators",
		Short: "List installed simulators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found := simulator.Detect(a.lookPath)
			fmt.Fprintln(a.stdout, titleStyle.Render("Available simulators:"))
			if len(found) == 0 {
				fmt.Fprintln(a.stdout, "  No simulators found. Please install one of:")
				for _, s := range simulator.All() {
					fmt.Fprintf(a.stdout, "    - %s\n", s.Name)
				}
				return nil
			}
			for _, s := range found {
				fmt.Fprintf(a.stdout, "  %s %s %s\n", okStyle.Render("✓"), s.Name, mutedStyle.Render("("+s.ID+")"))
			}
			return nil
		},
	}
}
