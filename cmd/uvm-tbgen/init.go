package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/config"
)

func (a *app) initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create a " + config.FileName + " configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return exitWith(1, fmt.Errorf("%s already exists (use --force to overwrite)", path))
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Created %s\n", path)
			fmt.Fprintln(a.stdout, "\nEdit this file to configure:")
			fmt.Fprintln(a.stdout, "  - Output directory and testbench top name")
			fmt.Fprintln(a.stdout, "  - Interface lint rule severities")
			fmt.Fprintln(a.stdout, "  - Simulator selection and source globs")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
