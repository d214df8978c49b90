// Package catalog lists the artifacts a testbench run produces.
package catalog

// Role names a logical testbench component.
type Role string

const (
	SeqItem    Role = "seq_item"
	Driver     Role = "driver"
	Monitor    Role = "monitor"
	Sequencer  Role = "sequencer"
	Agent      Role = "agent"
	Scoreboard Role = "scoreboard"
	Env        Role = "env"
	Test       Role = "test"
	Coverage   Role = "coverage"
	Checker    Role = "checker"
	Assertions Role = "assertions"
	Interface  Role = "interface"
	Top        Role = "top"
)

// Artifact ties a role to its template and output file name.
type Artifact struct {
	Role     Role
	Template string
	// Suffix forms "<module>_<suffix>.sv". Unused when Top is set.
	Suffix string
	// Top artifacts are named after the testbench top instead of the module.
	Top bool
	// PortView artifacts receive the name/dir/width port view in their context.
	PortView bool
}

// FileName returns the output file name for the artifact.
func (a Artifact) FileName(module, topName string) string {
	if a.Top {
		return topName + ".sv"
	}
	return module + "_" + a.Suffix + ".sv"
}

var artifacts = []Artifact{
	{Role: SeqItem, Template: "seq_item.sv.tmpl", Suffix: "seq_item"},
	{Role: Driver, Template: "driver.sv.tmpl", Suffix: "driver"},
	{Role: Monitor, Template: "monitor.sv.tmpl", Suffix: "monitor"},
	{Role: Sequencer, Template: "sequencer.sv.tmpl", Suffix: "sequencer"},
	{Role: Agent, Template: "agent.sv.tmpl", Suffix: "agent"},
	{Role: Scoreboard, Template: "scoreboard.sv.tmpl", Suffix: "scoreboard"},
	{Role: Env, Template: "env.sv.tmpl", Suffix: "env"},
	{Role: Test, Template: "test.sv.tmpl", Suffix: "test"},
	{Role: Coverage, Template: "coverage.sv.tmpl", Suffix: "coverage"},
	{Role: Checker, Template: "checker.sv.tmpl", Suffix: "checker"},
	{Role: Assertions, Template: "assertions.sv.tmpl", Suffix: "assertions"},
	{Role: Interface, Template: "interface.sv.tmpl", Suffix: "if", PortView: true},
	{Role: Top, Template: "top.sv.tmpl", Top: true, PortView: true},
}

// All returns the catalog in generation order. The slice is a copy.
func All() []Artifact {
	out := make([]Artifact, len(artifacts))
	copy(out, artifacts)
	return out
}

// FileNames returns every output file name for a module, in catalog order.
func FileNames(module, topName string) []string {
	names := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		names = append(names, a.FileName(module, topName))
	}
	return names
}
