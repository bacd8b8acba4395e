package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rcgen/internal/testkit"
)

var sampleCmd = &cobra.Command{
	Use:   "sample [flags] OUT.mp",
	Short: "Write a sample string unit for trying out expand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sample := testkit.StringSample()
		if err := writeUnitFile(args[0], sample.Unit); err != nil {
			return err
		}
		quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote unit %q (%d procs) to %s\n", sample.Unit.Name, len(sample.Unit.Procs), args[0])
		}
		return nil
	},
}
