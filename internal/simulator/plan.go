package simulator

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Options describe one simulation.
type Options struct {
	// TestbenchDir is where the tools run; the work library and log live there.
	TestbenchDir string
	// Sources are compiled in order, DUT first.
	Sources []string
	Top     string
	// Seed is passed to the simulator when non-zero.
	Seed int
	GUI  bool
}

// Step is one command of a plan.
type Step struct {
	Name string
	Args []string
	// SkipIfExists skips the step when this path already exists.
	SkipIfExists string
}

func (s Step) String() string {
	return strings.Join(s.Args, " ")
}

// Plan is the ordered command list for one simulator run.
type Plan struct {
	Simulator Simulator
	Dir       string
	WorkDir   string
	LogFile   string
	Top       string
	Seed      int
	GUI       bool
	Sources   []string
	Steps     []Step
}

// NewPlan builds the commands for sim. Paths are made absolute so the
// commands do not depend on the caller's working directory.
func NewPlan(sim Simulator, opts Options) (*Plan, error) {
	if opts.TestbenchDir == "" {
		return nil, errors.New("testbench directory is required")
	}
	if len(opts.Sources) == 0 {
		return nil, errors.New("no sources to compile")
	}
	if sim.steps == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSimulator, sim.ID)
	}
	dir, err := filepath.Abs(opts.TestbenchDir)
	if err != nil {
		return nil, fmt.Errorf("resolving testbench dir: %w", err)
	}
	sources := make([]string, 0, len(opts.Sources))
	for _, src := range opts.Sources {
		abs, err := filepath.Abs(src)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", src, err)
		}
		sources = append(sources, abs)
	}
	top := opts.Top
	if top == "" {
		top = "tb"
	}

	p := &Plan{
		Simulator: sim,
		Dir:       dir,
		WorkDir:   filepath.Join(dir, "work"),
		LogFile:   filepath.Join(dir, sim.ID+"_simulation.log"),
		Top:       top,
		Seed:      opts.Seed,
		GUI:       opts.GUI,
		Sources:   sources,
	}
	p.Steps = sim.steps(p)
	return p, nil
}

func (p *Plan) seed() string { return strconv.Itoa(p.Seed) }

func vcsSteps(p *Plan) []Step {
	compile := []string{"vcs", "-full64", "-sverilog", "-assert", "svaext",
		"-timescale=1ns/1ps", "+v2k", "-top", p.Top}
	if p.GUI {
		compile = append(compile, "-gui")
	}
	if p.Seed != 0 {
		compile = append(compile, "+ntb_random_seed", p.seed())
	}
	compile = append(compile, p.Sources...)

	run := []string{"./simv", "-l", p.LogFile}
	if p.GUI {
		run = append(run, "-gui")
	}
	return []Step{
		{Name: "compile", Args: compile},
		{Name: "run", Args: run},
	}
}

func modelsimSteps(p *Plan) []Step {
	compile := append([]string{"vlog", "-sv", "-work", p.WorkDir}, p.Sources...)
	run := []string{"vsim", "-work", p.WorkDir, p.Top}
	if p.GUI {
		run = append(run, "-gui")
	}
	if p.Seed != 0 {
		run = append(run, "-sv_seed", p.seed())
	}
	run = append(run, "-l", p.LogFile)
	return []Step{
		{Name: "library", Args: []string{"vlib", p.WorkDir}, SkipIfExists: filepath.Join(p.WorkDir, "modelsim.ini")},
		{Name: "compile", Args: compile},
		{Name: "run", Args: run},
	}
}

func xceliumSteps(p *Plan) []Step {
	args := []string{"xrun", "-elaborate", "-64bit", "-sv", "-top", p.Top, "-timescale", "1ns/1ps"}
	if p.GUI {
		args = append(args, "-gui")
	}
	if p.Seed != 0 {
		args = append(args, "-random_seed", p.seed())
	}
	args = append(args, "-l", p.LogFile)
	args = append(args, p.Sources...)
	return []Step{{Name: "compile", Args: args}}
}

func vivadoSteps(p *Plan) []Step {
	compile := append([]string{"xvlog", "-sv", "--work", p.WorkDir}, p.Sources...)
	run := []string{"xsim", p.WorkDir + "/" + p.Top}
	if p.GUI {
		run = append(run, "-gui")
	}
	run = append(run, "-l", p.LogFile)
	return []Step{
		{Name: "compile", Args: compile},
		{Name: "elaborate", Args: []string{"xelab", "--work", p.WorkDir, p.Top}},
		{Name: "run", Args: run},
	}
}

// icarusSteps has no GUI; the seed is handed to the testbench as a plusarg.
func icarusSteps(p *Plan) []Step {
	compile := append([]string{"iverilog", "-g2012", "-o", "simv", "-s", p.Top}, p.Sources...)
	run := []string{"vvp", "-l", p.LogFile, "simv"}
	if p.Seed != 0 {
		run = append(run, "+seed="+p.seed())
	}
	return []Step{
		{Name: "compile", Args: compile},
		{Name: "run", Args: run},
	}
}
