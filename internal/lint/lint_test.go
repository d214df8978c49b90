package lint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/extractor"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/roles"
)

func evaluate(t *testing.T, src string, opts ...Option) []Finding {
	t.Helper()
	ctx := context.Background()
	engine, err := New(ctx, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mod, err := extractor.Extract([]byte(src))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	findings, err := engine.Evaluate(ctx, mod, roles.Classify(mod.Ports))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	return findings
}

func rules(findings []Finding) []string {
	out := []string{}
	for _, f := range findings {
		out = append(out, f.Rule)
	}
	return out
}

func TestInterfaceRules(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "clean handshake",
			src:  "module m(input clk, input rst_n, input ready, output valid);",
			want: []string{},
		},
		{
			name: "no ports",
			src:  "module m; endmodule",
			want: []string{"no_ports"},
		},
		{
			name: "combinational",
			src:  "module m(input [3:0] a, output [3:0] y);",
			want: []string{"no_clock", "no_reset"},
		},
		{
			name: "valid without ready",
			src:  "module m(input clk, input rst, output out_valid);",
			want: []string{"valid_without_ready"},
		},
		{
			name: "wide ports",
			src:  "module m(input clk, input rst, input [127:0] key, output [64:0] tag, output [63:0] ok);",
			want: []string{"wide_port", "wide_port"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules(evaluate(t, tt.src))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("rules mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWidePortFindingNamesPort(t *testing.T) {
	findings := evaluate(t, "module m(input clk, input rst, input [127:0] key, output [64:0] tag);")
	want := []Finding{
		{Rule: "wide_port", Severity: "info", Message: "port key is 128 bits wide; coverage uses auto bins", Port: "key"},
		{Rule: "wide_port", Severity: "info", Message: "port tag is 65 bits wide; coverage uses auto bins", Port: "tag"},
	}
	if diff := cmp.Diff(want, findings); diff != "" {
		t.Fatalf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestRuleOverrides(t *testing.T) {
	findings := evaluate(t, "module m(input [3:0] a, output [3:0] y);",
		WithRules(map[string]string{"no_clock": SeverityOff, "no_reset": SeverityError}))
	if diff := cmp.Diff([]string{"no_reset"}, rules(findings)); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
	if findings[0].Severity != SeverityError {
		t.Fatalf("expected severity override, got %q", findings[0].Severity)
	}
}

func TestMaxWidthOption(t *testing.T) {
	findings := evaluate(t, "module m(input clk, input rst, input [15:0] d);", WithMaxWidth(8))
	if diff := cmp.Diff([]string{"wide_port"}, rules(findings)); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestPolicyDir(t *testing.T) {
	dir := t.TempDir()
	extra := `package uvmtbgen.lint

findings contains f if {
	some p in input.ports
	p.direction == "inout"
	f := {"rule": "no_inout", "severity": "warning", "message": "inout port", "port": p.name}
}
`
	if err := os.WriteFile(filepath.Join(dir, "extra.rego"), []byte(extra), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	findings := evaluate(t, "module m(input clk, input rst, inout [1:0] pad);", WithPolicyDir(dir))
	if diff := cmp.Diff([]string{"no_inout"}, rules(findings)); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestPolicyDirCompileError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.rego"), []byte("package uvmtbgen.lint\nfindings contains"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(context.Background(), WithPolicyDir(dir)); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Finding{
		{Rule: "a", Severity: SeverityError},
		{Rule: "b", Severity: SeverityWarning},
		{Rule: "c", Severity: SeverityWarning},
		{Rule: "d", Severity: SeverityInfo},
	})
	if diff := cmp.Diff(Summary{Total: 4, Errors: 1, Warnings: 2, Info: 1}, s); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}
