package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractHeaderPorts(t *testing.T) {
	mod := mustExtract(t, `module m(input clk, input [3:0] inbus, output [7:0] outbus);`)

	if mod.Name != "m" {
		t.Fatalf("expected module m, got %q", mod.Name)
	}
	want := []Port{
		{Name: "clk", Direction: Input, Width: 1},
		{Name: "inbus", Direction: Input, Width: 4},
		{Name: "outbus", Direction: Output, Width: 8},
	}
	if diff := cmp.Diff(want, mod.Ports); diff != "" {
		t.Fatalf("ports mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractMultiLineHeader(t *testing.T) {
	mod := mustExtract(t, `
module multi_dir(
  input clk,
  input [7:0] data_in,
  output reg [7:0] data_out,
  inout [3:0] bus
);
endmodule
`)
	want := []Port{
		{Name: "clk", Direction: Input, Width: 1},
		{Name: "data_in", Direction: Input, Width: 8},
		{Name: "data_out", Direction: Output, Width: 8},
		{Name: "bus", Direction: Inout, Width: 4},
	}
	if diff := cmp.Diff(want, mod.Ports); diff != "" {
		t.Fatalf("ports mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractZeroPortModule(t *testing.T) {
	mod := mustExtract(t, "module m; endmodule")
	if mod.Name != "m" {
		t.Fatalf("expected module m, got %q", mod.Name)
	}
	if len(mod.Ports) != 0 {
		t.Fatalf("expected no ports, got %+v", mod.Ports)
	}
}

func TestExtractEmptyParenList(t *testing.T) {
	mod := mustExtract(t, "module empty();\nendmodule\n")
	if mod.Name != "empty" || len(mod.Ports) != 0 {
		t.Fatalf("expected empty port list for module empty, got %+v", mod)
	}
	if mod.Ports == nil {
		t.Fatalf("expected non-nil empty port slice")
	}
}

func TestExtractNoModule(t *testing.T) {
	inputs := []string{
		"",
		"// just a comment\nwire x;",
		"endmodule",
		"module (input a);",
		"module broken(input a, input b\n",
	}
	for _, src := range inputs {
		_, err := Extract([]byte(src))
		if !errors.Is(err, ErrNoModuleFound) {
			t.Fatalf("Extract(%q): expected ErrNoModuleFound, got %v", src, err)
		}
	}
}

func TestExtractRangeOrderIndependent(t *testing.T) {
	mod := mustExtract(t, "module r(input [7:0] a, input [0:7] b);")
	for _, name := range []string{"a", "b"} {
		p := mustFindPort(t, mod.Ports, name)
		if p.Width != 8 {
			t.Fatalf("expected %s width 8, got %d", name, p.Width)
		}
	}
}

func TestExtractMissingDirectionDefaultsToInput(t *testing.T) {
	mod := mustExtract(t, `
module legacy(clk, q);
  output [3:0] q;
  input clk;
endmodule
`)
	// Header entries win over the body declarations.
	want := []Port{
		{Name: "clk", Direction: Input, Width: 1},
		{Name: "q", Direction: Input, Width: 1},
	}
	if diff := cmp.Diff(want, mod.Ports); diff != "" {
		t.Fatalf("ports mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractBodyDeclarationsAppended(t *testing.T) {
	mod := mustExtract(t, `
module complex(
  input clk,
  input [7:0] data
);
  wire [15:0] internal;
  output [31:0] result;
  input [7:0] data;
  inout wire [1:0] pads;
endmodule
`)
	want := []Port{
		{Name: "clk", Direction: Input, Width: 1},
		{Name: "data", Direction: Input, Width: 8},
		{Name: "result", Direction: Output, Width: 32},
		{Name: "pads", Direction: Inout, Width: 2},
	}
	if diff := cmp.Diff(want, mod.Ports); diff != "" {
		t.Fatalf("ports mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractDuplicateHeaderEntries(t *testing.T) {
	mod := mustExtract(t, "module d(input a, output [3:0] a, output b);")
	want := []Port{
		{Name: "a", Direction: Input, Width: 1},
		{Name: "b", Direction: Output, Width: 1},
	}
	if diff := cmp.Diff(want, mod.Ports); diff != "" {
		t.Fatalf("ports mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractIgnoresComments(t *testing.T) {
	mod := mustExtract(t, `
// module decoy(input nope);
/* module other(output x); */
module real_one(
  input clk, // output fake
  /* input hidden, */
  output done
);
  // input commented_out;
endmodule
`)
	if mod.Name != "real_one" {
		t.Fatalf("expected module real_one, got %q", mod.Name)
	}
	if got := portNames(mod.Ports); !cmp.Equal(got, []string{"clk", "done"}) {
		t.Fatalf("expected ports [clk done], got %v", got)
	}
}

func TestExtractBalancedCommaSplit(t *testing.T) {
	mod := mustExtract(t, `module p(input logic a = f(1, 2), output [3:0] b, input c,);`)
	want := []Port{
		{Name: "a", Direction: Input, Width: 1},
		{Name: "b", Direction: Output, Width: 4},
		{Name: "c", Direction: Input, Width: 1},
	}
	if diff := cmp.Diff(want, mod.Ports); diff != "" {
		t.Fatalf("ports mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractParameterList(t *testing.T) {
	mod := mustExtract(t, `
module fifo #(parameter DEPTH = 16, parameter W = 8) (
  input clk,
  input [7:0] din,
  output full
);
endmodule
`)
	if mod.Name != "fifo" {
		t.Fatalf("expected module fifo, got %q", mod.Name)
	}
	if got := portNames(mod.Ports); !cmp.Equal(got, []string{"clk", "din", "full"}) {
		t.Fatalf("unexpected ports %v", got)
	}
}

func TestExtractSkipsUnrecognizedEntries(t *testing.T) {
	mod := mustExtract(t, `module s(input [WIDTH-1:0] data, input [3:0][7:0] packed, input ok);`)
	if got := portNames(mod.Ports); !cmp.Equal(got, []string{"ok"}) {
		t.Fatalf("expected only ok to survive, got %v", got)
	}
}

func TestExtractLeadingNonDirectionWord(t *testing.T) {
	mod := mustExtract(t, `module w(wire [3:0] a, my_type b, input wire signed [1:0] c);`)
	want := []Port{
		{Name: "a", Direction: Input, Width: 4},
		{Name: "b", Direction: Input, Width: 1},
		{Name: "c", Direction: Input, Width: 2},
	}
	if diff := cmp.Diff(want, mod.Ports); diff != "" {
		t.Fatalf("ports mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractFirstModuleOnly(t *testing.T) {
	mod := mustExtract(t, `
module first(input a);
endmodule
module second(input b);
  output [1:0] c;
endmodule
`)
	if mod.Name != "first" {
		t.Fatalf("expected first module, got %q", mod.Name)
	}
	// The body scan covers everything after the first header.
	if got := portNames(mod.Ports); !cmp.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected ports %v", got)
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "widths.v")
	src := `
module widths(
  input [15:0] wide_in,
  output [3:0] narrow_out,
  input single
);
endmodule
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write dut: %v", err)
	}

	mod, err := ExtractFile(path)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if p := mustFindPort(t, mod.Ports, "wide_in"); p.Width != 16 {
		t.Fatalf("expected wide_in width 16, got %d", p.Width)
	}
	if p := mustFindPort(t, mod.Ports, "narrow_out"); p.Width != 4 {
		t.Fatalf("expected narrow_out width 4, got %d", p.Width)
	}
	if p := mustFindPort(t, mod.Ports, "single"); p.Width != 1 {
		t.Fatalf("expected single width 1, got %d", p.Width)
	}

	if _, err := ExtractFile(filepath.Join(dir, "missing.v")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestModuleFilter(t *testing.T) {
	mod := mustExtract(t, "module f(input a, output b, inout c, input d);")
	if got := portNames(mod.Filter(Input)); !cmp.Equal(got, []string{"a", "d"}) {
		t.Fatalf("inputs = %v", got)
	}
	if got := portNames(mod.Filter(Output)); !cmp.Equal(got, []string{"b"}) {
		t.Fatalf("outputs = %v", got)
	}
	if got := portNames(mod.Filter(Inout)); !cmp.Equal(got, []string{"c"}) {
		t.Fatalf("inouts = %v", got)
	}
	if got := mod.Filter(Direction("buffer")); len(got) != 0 {
		t.Fatalf("expected no ports for unknown direction, got %v", got)
	}
}

func mustExtract(t *testing.T, src string) Module {
	t.Helper()
	mod, err := Extract([]byte(src))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	return mod
}

func mustFindPort(t *testing.T, ports []Port, name string) Port {
	t.Helper()
	for _, p := range ports {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("port %s not found in %+v", name, ports)
	return Port{}
}

func portNames(ports []Port) []string {
	names := []string{}
	for _, p := range ports {
		names = append(names, p.Name)
	}
	return names
}
