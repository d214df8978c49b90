// Package simulator knows how to compile and run a generated testbench with
// the common SystemVerilog simulators.
package simulator

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrUnknownSimulator is returned for a simulator id not in the table.
	ErrUnknownSimulator = errors.New("unknown simulator")
	// ErrNoSimulator is returned by auto-detection when nothing is installed.
	ErrNoSimulator = errors.New("no simulator found on PATH")
)

// Simulator describes one supported tool.
type Simulator struct {
	ID   string
	Name string
	// Commands are probed on PATH, in order; any hit means installed.
	Commands []string

	steps func(p *Plan) []Step
}

// simulators is ordered by detection preference.
var simulators = []Simulator{
	{ID: "vcs", Name: "VCS (Synopsys)", Commands: []string{"vcs", "vlogan"}, steps: vcsSteps},
	{ID: "modelsim", Name: "Modelsim (Mentor)", Commands: []string{"vlog", "vsim", "vcom"}, steps: modelsimSteps},
	{ID: "xcelium", Name: "Xcelium (Cadence)", Commands: []string{"xrun", "xvlog"}, steps: xceliumSteps},
	{ID: "vivado", Name: "Vivado Simulator (Xilinx)", Commands: []string{"xvlog", "xsim", "vivado"}, steps: vivadoSteps},
	{ID: "icarus", Name: "Icarus Verilog", Commands: []string{"iverilog", "vvp"}, steps: icarusSteps},
}

// All returns every supported simulator in detection order.
func All() []Simulator {
	out := make([]Simulator, len(simulators))
	copy(out, simulators)
	return out
}

// Lookup finds a simulator by id, case-insensitively.
func Lookup(id string) (Simulator, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, s := range simulators {
		if s.ID == id {
			return s, nil
		}
	}
	return Simulator{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownSimulator, id, strings.Join(IDs(), ", "))
}

// IDs returns the simulator ids in detection order.
func IDs() []string {
	ids := make([]string, 0, len(simulators))
	for _, s := range simulators {
		ids = append(ids, s.ID)
	}
	return ids
}

// LookPathFunc matches exec.LookPath.
type LookPathFunc func(file string) (string, error)

// Detect returns the installed simulators in detection order.
// A nil lookPath uses exec.LookPath.
func Detect(lookPath LookPathFunc) []Simulator {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var found []Simulator
	for _, s := range simulators {
		for _, cmd := range s.Commands {
			if _, err := lookPath(cmd); err == nil {
				found = append(found, s)
				break
			}
		}
	}
	return found
}

// Resolve picks a simulator: "" or "auto" selects the first installed one.
func Resolve(id string, lookPath LookPathFunc) (Simulator, error) {
	if id == "" || strings.EqualFold(id, "auto") {
		found := Detect(lookPath)
		if len(found) == 0 {
			return Simulator{}, ErrNoSimulator
		}
		return found[0], nil
	}
	return Lookup(id)
}
