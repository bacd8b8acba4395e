package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rcgen/internal/mir"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] UNIT.mp",
	Short: "Print a unit in human-readable form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withLayouts, err := cmd.Flags().GetBool("layouts")
		if err != nil {
			return err
		}
		validate, err := cmd.Flags().GetBool("validate")
		if err != nil {
			return err
		}
		u, err := readUnitFile(args[0])
		if err != nil {
			return err
		}
		if err := mir.DumpUnit(cmd.OutOrStdout(), u, mir.DumpOptions{Color: !color.NoColor, Layouts: withLayouts}); err != nil {
			return err
		}
		if validate {
			return mir.Validate(u, mir.ValidateOptions{})
		}
		return nil
	},
}

func init() {
	dumpCmd.Flags().Bool("layouts", false, "include the layout table")
	dumpCmd.Flags().Bool("validate", false, "validate the unit after printing it")
}
