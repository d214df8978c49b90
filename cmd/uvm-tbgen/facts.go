package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/extractor"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/facts"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/generator"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/roles"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/validator"
)

type factsOptions struct {
	duts      []string
	deltaFrom string
	modules   []string
	direction string
}

func (a *app) factsCmd() *cobra.Command {
	var o factsOptions
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Print the extracted interface of one or more DUTs as relational JSON",
		Long: `facts prints what uvm-tbgen sees in each DUT as three tables: modules,
ports and signal roles. With --delta-from it prints only the rows added and
removed since a previous facts file.`,
		Example: `  uvm-tbgen facts --dut rtl/fifo.v > before.json
  uvm-tbgen facts --dut rtl/fifo.v --delta-from before.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFacts(o)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&o.duts, "dut", nil, "DUT file(s), repeatable (required)")
	f.StringVar(&o.deltaFrom, "delta-from", "", "previous facts JSON to diff against")
	f.StringSliceVar(&o.modules, "module", nil, "only these modules")
	f.StringVar(&o.direction, "direction", "", "only ports with this direction")
	_ = cmd.MarkFlagRequired("dut")
	return cmd
}

func (a *app) runFacts(o factsOptions) error {
	all := make([]facts.Tables, 0, len(o.duts))
	for _, path := range o.duts {
		t, err := a.factsFor(path)
		if err != nil {
			return err
		}
		all = append(all, t)
	}
	tables := facts.Merge(all...)

	if len(o.modules) > 0 {
		keep := make(map[string]bool, len(o.modules))
		for _, m := range o.modules {
			keep[m] = true
		}
		tables = facts.FilterByModules(tables, keep)
	}
	if o.direction != "" {
		tables = facts.FilterByDirection(tables, o.direction)
	}

	v, err := validator.New()
	if err != nil {
		return fmt.Errorf("loading contracts: %w", err)
	}
	if err := v.ValidateFacts(tables); err != nil {
		a.logger.Warn("fact tables violate contract", zap.Error(err))
	}

	var out any = tables
	if o.deltaFrom != "" {
		prev, err := loadTables(o.deltaFrom)
		if err != nil {
			return exitWith(1, err)
		}
		d := facts.ComputeDelta(prev, tables)
		for _, change := range d.Changes() {
			a.logger.Info("interface change", zap.String("change", change))
		}
		out = d
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// factsFor extracts one DUT the same way generate does, including the
// file-name fallback.
func (a *app) factsFor(path string) (facts.Tables, error) {
	mod, err := extractor.ExtractFile(path)
	degraded := false
	switch {
	case errors.Is(err, extractor.ErrNoModuleFound):
		mod = generator.FallbackModule(path)
		degraded = true
		a.logger.Warn("no module header found, using file name", zap.String("dut", path), zap.String("module", mod.Name))
	case err != nil:
		return facts.Tables{}, exitWith(1, fmt.Errorf("%w: %s", generator.ErrDutNotFound, path))
	}
	return facts.Build(path, mod, roles.Classify(mod.Ports), degraded), nil
}

func loadTables(path string) (facts.Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return facts.Tables{}, fmt.Errorf("reading previous facts: %w", err)
	}
	var t facts.Tables
	if err := json.Unmarshal(raw, &t); err != nil {
		return facts.Tables{}, fmt.Errorf("parsing previous facts %s: %w", path, err)
	}
	return t, nil
}
