package facts

import (
	"sort"
	"strings"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/extractor"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/roles"
)

// Tables is the relational view of one or more extracted modules.
// Each slice is a relation with flat rows.
type Tables struct {
	Modules []ModuleRow `json:"modules"`
	Ports   []PortRow   `json:"ports"`
	Roles   []RoleRow   `json:"roles"`
}

type ModuleRow struct {
	Module    string `json:"module"`
	File      string `json:"file"`
	PortCount int    `json:"port_count"`
	Degraded  bool   `json:"degraded"`
}

type PortRow struct {
	Module    string `json:"module"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Width     int    `json:"width"`
	Index     int    `json:"index"`
}

// RoleRow links a port to a role: clock, reset, valid, ready or control.
type RoleRow struct {
	Module string `json:"module"`
	Role   string `json:"role"`
	Port   string `json:"port"`
}

// Role names used in RoleRow.
const (
	RoleClock   = "clock"
	RoleReset   = "reset"
	RoleValid   = "valid"
	RoleReady   = "ready"
	RoleControl = "control"
)

// Build converts one module and its roles into tables.
// degraded marks a module whose name came from the file name fallback.
func Build(file string, mod extractor.Module, r roles.SignalRoles, degraded bool) Tables {
	t := emptyTables()
	t.Modules = append(t.Modules, ModuleRow{
		Module:    mod.Name,
		File:      file,
		PortCount: len(mod.Ports),
		Degraded:  degraded,
	})
	for i, p := range mod.Ports {
		t.Ports = append(t.Ports, PortRow{
			Module:    mod.Name,
			Name:      p.Name,
			Direction: string(p.Direction),
			Width:     p.Width,
			Index:     i,
		})
	}

	addRole := func(role, port string) {
		t.Roles = append(t.Roles, RoleRow{Module: mod.Name, Role: role, Port: port})
	}
	if r.ClockPort != "" {
		addRole(RoleClock, r.ClockPort)
	}
	if r.ResetPort != "" {
		addRole(RoleReset, r.ResetPort)
	}
	// The classifier only reports booleans for handshakes; recover the names
	// with the same substring rules.
	for _, p := range mod.Ports {
		lower := strings.ToLower(p.Name)
		if r.HasValidSignal && p.Direction == extractor.Output && strings.Contains(lower, "valid") {
			addRole(RoleValid, p.Name)
		}
		if r.HasReadySignal && p.Direction == extractor.Input && strings.Contains(lower, "ready") {
			addRole(RoleReady, p.Name)
		}
	}
	for _, name := range r.ControlSignals {
		addRole(RoleControl, name)
	}
	return t
}

// Merge concatenates tables and sorts the result.
func Merge(all ...Tables) Tables {
	out := emptyTables()
	for _, t := range all {
		out.Modules = append(out.Modules, t.Modules...)
		out.Ports = append(out.Ports, t.Ports...)
		out.Roles = append(out.Roles, t.Roles...)
	}
	out.Sort()
	return out
}

// Sort orders rows deterministically: modules by name, ports by module and
// index, roles by module, role and port.
func (t *Tables) Sort() {
	sort.SliceStable(t.Modules, func(i, j int) bool {
		if t.Modules[i].Module != t.Modules[j].Module {
			return t.Modules[i].Module < t.Modules[j].Module
		}
		return t.Modules[i].File < t.Modules[j].File
	})
	sort.SliceStable(t.Ports, func(i, j int) bool {
		if t.Ports[i].Module != t.Ports[j].Module {
			return t.Ports[i].Module < t.Ports[j].Module
		}
		return t.Ports[i].Index < t.Ports[j].Index
	})
	sort.SliceStable(t.Roles, func(i, j int) bool {
		a, b := t.Roles[i], t.Roles[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		return a.Port < b.Port
	})
}

func emptyTables() Tables {
	return Tables{
		Modules: []ModuleRow{},
		Ports:   []PortRow{},
		Roles:   []RoleRow{},
	}
}
