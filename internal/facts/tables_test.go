package facts

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/extractor"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/roles"
)

func build(t *testing.T, file, src string) Tables {
	t.Helper()
	mod, err := extractor.Extract([]byte(src))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	return Build(file, mod, roles.Classify(mod.Ports), false)
}

func TestBuild(t *testing.T) {
	tables := build(t, "hs.v", "module hs(input clk, input rst_n, input s_ready, input [7:0] d, output m_valid);")

	wantModules := []ModuleRow{{Module: "hs", File: "hs.v", PortCount: 5}}
	if diff := cmp.Diff(wantModules, tables.Modules); diff != "" {
		t.Fatalf("modules mismatch (-want +got):\n%s", diff)
	}
	if got := tables.Ports[3]; got != (PortRow{Module: "hs", Name: "d", Direction: "input", Width: 8, Index: 3}) {
		t.Fatalf("unexpected port row %+v", got)
	}
	wantRoles := []RoleRow{
		{Module: "hs", Role: RoleClock, Port: "clk"},
		{Module: "hs", Role: RoleReset, Port: "rst_n"},
		{Module: "hs", Role: RoleReady, Port: "s_ready"},
		{Module: "hs", Role: RoleValid, Port: "m_valid"},
		{Module: "hs", Role: RoleControl, Port: "s_ready"},
	}
	if diff := cmp.Diff(wantRoles, tables.Roles); diff != "" {
		t.Fatalf("roles mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildEmptyModule(t *testing.T) {
	tables := Build("x.v", extractor.Module{Name: "x"}, roles.SignalRoles{}, true)
	if len(tables.Ports) != 0 || len(tables.Roles) != 0 || tables.Ports == nil || tables.Roles == nil {
		t.Fatalf("expected empty non-nil relations, got %+v", tables)
	}
	if !tables.Modules[0].Degraded {
		t.Fatalf("expected degraded module row")
	}
}

func TestMergeSorts(t *testing.T) {
	b := build(t, "b.v", "module b(input clk, output q);")
	a := build(t, "a.v", "module a(input x, input clk);")
	merged := Merge(b, a)

	var modules []string
	for _, m := range merged.Modules {
		modules = append(modules, m.Module)
	}
	if diff := cmp.Diff([]string{"a", "b"}, modules); diff != "" {
		t.Fatalf("module order mismatch (-want +got):\n%s", diff)
	}
	var ports []string
	for _, p := range merged.Ports {
		ports = append(ports, p.Module+"."+p.Name)
	}
	if diff := cmp.Diff([]string{"a.x", "a.clk", "b.clk", "b.q"}, ports); diff != "" {
		t.Fatalf("port order mismatch (-want +got):\n%s", diff)
	}
}
