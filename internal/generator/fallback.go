package generator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/extractor"
)

// RunScriptName is the optional simulation script written next to the testbench.
const RunScriptName = "run.sh"

// FallbackTop renders the built-in testbench top used when the top template
// fails. It needs nothing but the module name and its ports.
func FallbackTop(module, topName string, ports []extractor.Port) string {
	var b strings.Builder
	b.WriteString("// Auto-generated UVM testbench top (fallback)\n")
	b.WriteString("`timescale 1ns/1ps\n")
	b.WriteString("`include \"uvm_macros.svh\"\n")
	b.WriteString("import uvm_pkg::*;\n\n")
	fmt.Fprintf(&b, "module %s;\n\n", topName)
	b.WriteString("  // DUT interface\n")
	fmt.Fprintf(&b, "  %s_if dut_if();\n\n", module)
	b.WriteString("  // DUT instance\n")
	fmt.Fprintf(&b, "  %s dut_inst (\n", module)
	for i, p := range ports {
		comma := ","
		if i == len(ports)-1 {
			comma = ""
		}
		fmt.Fprintf(&b, "    %s%s\n", p.Connection("dut_if."), comma)
	}
	b.WriteString("  );\n\n")
	b.WriteString("  initial begin\n")
	b.WriteString("    run_test();\n")
	b.WriteString("  end\n")
	b.WriteString("endmodule\n")
	return b.String()
}

// RunScript returns an Icarus Verilog compile-and-run script for the testbench.
func RunScript(dutPath string) string {
	return "#!/bin/bash\n" +
		"# Simple run script for Xcelium or other simulator\n" +
		"# Adjust compile and run commands as needed\n" +
		"iverilog -g2012 -o simv " + filepath.Base(dutPath) + " *.sv\n" +
		"vvp simv\n"
}
