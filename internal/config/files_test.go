package config

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveSources(t *testing.T) {
	tb := t.TempDir()
	for _, name := range []string{
		"dut.v", "dut_if.sv", "dut_driver.sv", "my_tb.sv", "notes.txt", "scratch_old.sv",
		filepath.Join("extra", "helpers.sv"),
	} {
		writeFile(t, filepath.Join(tb, name), "//")
	}

	cfg := DefaultConfig()
	cfg.Simulation.Sources = []string{"*.sv", "*.txt", "**/*.sv"}
	cfg.Simulation.Exclude = []string{"scratch_*.sv"}

	dut := filepath.Join(tb, "dut.v")
	got, err := cfg.ResolveSources(dut, tb)
	if err != nil {
		t.Fatalf("ResolveSources: %v", err)
	}
	want := []string{
		dut,
		filepath.Join(tb, "dut_driver.sv"),
		filepath.Join(tb, "dut_if.sv"),
		filepath.Join(tb, "extra", "helpers.sv"),
		filepath.Join(tb, "my_tb.sv"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveSourcesSkipsDutDuplicate(t *testing.T) {
	tb := t.TempDir()
	writeFile(t, filepath.Join(tb, "core.sv"), "//")
	writeFile(t, filepath.Join(tb, "core_tb.sv"), "//")

	cfg := DefaultConfig()
	got, err := cfg.ResolveSources(filepath.Join(tb, "core.sv"), tb)
	if err != nil {
		t.Fatalf("ResolveSources: %v", err)
	}
	want := []string{filepath.Join(tb, "core.sv"), filepath.Join(tb, "core_tb.sv")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchSuffix(t *testing.T) {
	tests := []struct {
		path, pattern string
		want          bool
	}{
		{"a/b/c.sv", "*.sv", true},
		{"a/b/c.v", "*.sv", false},
		{"a/b/c.sv", "b/*.sv", true},
		{"a/x/c.sv", "b/*.sv", false},
	}
	for _, tt := range tests {
		path := filepath.FromSlash(tt.path)
		pattern := filepath.FromSlash(tt.pattern)
		if got := matchSuffix(path, pattern); got != tt.want {
			t.Fatalf("matchSuffix(%q, %q) = %v, want %v", tt.path, tt.pattern, got, tt.want)
		}
	}
}
