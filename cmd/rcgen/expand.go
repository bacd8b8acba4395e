package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rcgen/internal/driver"
	"rcgen/internal/mir"
	"rcgen/internal/observ"
	"rcgen/internal/prof"
)

var expandCmd = &cobra.Command{
	Use:   "expand [flags] UNIT.mp...",
	Short: "Expand refcount instructions and synthesize helper procedures",
	Long: `Expand every Inc/Dec/DecRef instruction of the given units into concrete
calls, then synthesize one helper procedure per (layout, operation) pair.
Expanded units are written to --out as <name>.rc.mp.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExpand,
}

func init() {
	expandCmd.Flags().StringP("out", "o", "", "directory for expanded units (default: next to each input)")
	expandCmd.Flags().Bool("dump", false, "print each expanded unit")
	expandCmd.Flags().Bool("layouts", false, "include the layout table in --dump output")
	expandCmd.Flags().Int("jobs", 0, "max units expanded in parallel (0 = rcgen.toml or GOMAXPROCS)")
	expandCmd.Flags().String("target", "", "target triple (overrides rcgen.toml)")
	expandCmd.Flags().Bool("no-cache", false, "bypass the expansion cache")
	expandCmd.Flags().Bool("no-validate", false, "skip IR validation of expanded units")
	expandCmd.Flags().String("cpu-profile", "", "write a CPU profile to file")
	expandCmd.Flags().String("mem-profile", "", "write a heap profile to file on exit")
	expandCmd.Flags().String("runtime-trace", "", "write a Go runtime trace to file")
}

func runExpand(cmd *cobra.Command, args []string) (err error) {
	session, err := startProfiling(cmd)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, session.Stop())
	}()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	dump, err := cmd.Flags().GetBool("dump")
	if err != nil {
		return err
	}
	withLayouts, err := cmd.Flags().GetBool("layouts")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	triple, err := cmd.Flags().GetString("target")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	noValidate, err := cmd.Flags().GetBool("no-validate")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	if triple != "" {
		cfg.Target.Triple = triple
		cfg.Target.PtrSize = 0
	}
	if jobs == 0 {
		jobs = cfg.Pass.Jobs
	}
	target, err := cfg.target()
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	opts := driver.Options{
		Target:   target,
		Validate: cfg.Pass.Validate && !noValidate,
		Jobs:     jobs,
		Timer:    timer,
	}
	if cfg.Cache.Enabled && !noCache {
		cache, err := driver.OpenDiskCache(cfg.Cache.Dir, "rcgen")
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		opts.Cache = cache
	}

	decodeIdx := timer.Begin("decode")
	units := make([]*mir.Unit, 0, len(args))
	for _, path := range args {
		u, err := readUnitFile(path)
		if err != nil {
			timer.End(decodeIdx, "failed")
			return err
		}
		units = append(units, u)
	}
	timer.End(decodeIdx, fmt.Sprintf("%d units", len(units)))

	results, expandErr := driver.ExpandUnits(cmd.Context(), units, opts)

	out := cmd.OutOrStdout()
	writeIdx := timer.Begin("write")
	var writeErrs []error
	for i, res := range results {
		if res == nil {
			continue
		}
		dst := outputPath(args[i], outDir, res.Unit.Name)
		if err := writeUnitFile(dst, res.Unit); err != nil {
			writeErrs = append(writeErrs, fmt.Errorf("%s: %w", dst, err))
			continue
		}
		if dump {
			if err := mir.DumpUnit(out, res.Unit, mir.DumpOptions{Color: !color.NoColor, Layouts: withLayouts}); err != nil {
				return err
			}
		}
		if !quiet {
			note := ""
			if res.Cached {
				note = " (cached)"
			}
			fmt.Fprintf(out, "%s: %d instructions expanded, %d helpers -> %s%s\n",
				res.Unit.Name, res.Expanded, res.Helpers, dst, note)
		}
	}
	timer.End(writeIdx, "")

	if timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return errors.Join(expandErr, errors.Join(writeErrs...))
}

func startProfiling(cmd *cobra.Command) (*prof.Session, error) {
	var paths prof.Paths
	var err error
	if paths.CPU, err = cmd.Flags().GetString("cpu-profile"); err != nil {
		return nil, err
	}
	if paths.Mem, err = cmd.Flags().GetString("mem-profile"); err != nil {
		return nil, err
	}
	if paths.Trace, err = cmd.Flags().GetString("runtime-trace"); err != nil {
		return nil, err
	}
	return prof.Start(paths)
}

// outputPath places <name>.rc.mp in outDir, or next to the input file when
// outDir is empty.
func outputPath(input, outDir, unitName string) string {
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	name := unitName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	return filepath.Join(outDir, name+".rc.mp")
}
