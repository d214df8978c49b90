package facts

// FilterByModules returns only the rows that belong to the given modules.
func FilterByModules(tables Tables, modules map[string]bool) Tables {
	out := emptyTables()
	if len(modules) == 0 {
		return out
	}

	for _, row := range tables.Modules {
		if modules[row.Module] {
			out.Modules = append(out.Modules, row)
		}
	}
	for _, row := range tables.Ports {
		if modules[row.Module] {
			out.Ports = append(out.Ports, row)
		}
	}
	for _, row := range tables.Roles {
		if modules[row.Module] {
			out.Roles = append(out.Roles, row)
		}
	}
	return out
}

// FilterByDirection keeps module and role rows and only ports with dir.
func FilterByDirection(tables Tables, dir string) Tables {
	out := emptyTables()
	out.Modules = append(out.Modules, tables.Modules...)
	out.Roles = append(out.Roles, tables.Roles...)
	for _, row := range tables.Ports {
		if row.Direction == dir {
			out.Ports = append(out.Ports, row)
		}
	}
	return out
}
