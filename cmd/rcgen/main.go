package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rcgen/internal/trace"
	"rcgen/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "rcgen",
	Short: "Reference-count synthesis for layout-annotated IR units",
	Long: `rcgen expands the abstract refcount instructions of IR units into concrete
calls and synthesizes one helper procedure per (layout, operation) pair.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyColorMode(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
}

var traceCleanup func()

// activeTracer and activeTraceFormat describe the tracer setupTracing
// installed, so main can dump a ring-only trace after a failed command.
var (
	activeTracer      trace.Tracer = trace.Nop
	activeTraceFormat              = trace.FormatText
)

// main registers subcommands and persistent flags, then executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	rootCmd.Version = version.Plain()

	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to rcgen.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")

	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "", "trace level (off|error|phase|unit|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "", "trace storage (stream|ring|both|zap)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept in ring mode")

	err := rootCmd.Execute()
	if err != nil {
		dumpTraceRing(os.Stderr)
	}
	if traceCleanup != nil {
		traceCleanup()
	}
	if err != nil {
		os.Exit(1)
	}
}

// dumpTraceRing writes the events of a ring-mode trace to w. Ring mode
// keeps events in memory only, so a failed run is the one time they are
// worth printing.
func dumpTraceRing(w io.Writer) {
	if _, err := trace.DumpRing(activeTracer, w, activeTraceFormat); err != nil {
		fmt.Fprintf(w, "trace: ring dump error: %v\n", err)
	}
}

func applyColorMode(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return errInvalidColorMode(mode)
	}
	return nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
