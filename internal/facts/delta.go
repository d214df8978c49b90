package facts

import (
	"fmt"
	"strconv"
)

// Delta captures added and removed fact rows between two snapshots.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta computes row-level additions and removals between two snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

// Empty reports whether the snapshots were identical.
func (d Delta) Empty() bool {
	return d.Added.rowCount() == 0 && d.Removed.rowCount() == 0
}

// Changes describes each changed port and role in a short human form,
// e.g. "+port data_in input[8]" or "-role reset rst".
func (d Delta) Changes() []string {
	var out []string
	for _, r := range d.Removed.Ports {
		out = append(out, fmt.Sprintf("-port %s %s[%d]", r.Name, r.Direction, r.Width))
	}
	for _, r := range d.Added.Ports {
		out = append(out, fmt.Sprintf("+port %s %s[%d]", r.Name, r.Direction, r.Width))
	}
	for _, r := range d.Removed.Roles {
		out = append(out, fmt.Sprintf("-role %s %s", r.Role, r.Port))
	}
	for _, r := range d.Added.Roles {
		out = append(out, fmt.Sprintf("+role %s %s", r.Role, r.Port))
	}
	return out
}

func (t Tables) rowCount() int {
	return len(t.Modules) + len(t.Ports) + len(t.Roles)
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Modules = diffModuleRows(from.Modules, to.Modules)
	out.Ports = diffPortRows(from.Ports, to.Ports)
	out.Roles = diffRoleRows(from.Roles, to.Roles)

	return out
}

func diffModuleRows(from, to []ModuleRow) []ModuleRow {
	return diffRows(from, to, func(r ModuleRow) string {
		return r.Module + "|" + r.File + "|" + strconv.Itoa(r.PortCount) + "|" + strconv.FormatBool(r.Degraded)
	})
}

// Port position is left out of the key so inserting one port does not
// report every later port as changed.
func diffPortRows(from, to []PortRow) []PortRow {
	return diffRows(from, to, func(r PortRow) string {
		return r.Module + "|" + r.Name + "|" + r.Direction + "|" + strconv.Itoa(r.Width)
	})
}

func diffRoleRows(from, to []RoleRow) []RoleRow {
	return diffRows(from, to, func(r RoleRow) string {
		return r.Module + "|" + r.Role + "|" + r.Port
	})
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]struct{}, len(from))
	for _, row := range from {
		fromSet[key(row)] = struct{}{}
	}
	diff := []T{}
	for _, row := range to {
		if _, ok := fromSet[key(row)]; !ok {
			diff = append(diff, row)
		}
	}
	return diff
}
