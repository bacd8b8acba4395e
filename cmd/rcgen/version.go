package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"rcgen/internal/driver"
	"rcgen/internal/layout"
	"rcgen/internal/mir"
	"rcgen/internal/version"
)

// buildReport holds the build stamp together with the formats this binary
// reads and writes, so a cache or unit file can be matched to a binary.
type buildReport struct {
	Version     string
	GitCommit   string
	BuildDate   string
	UnitSchema  uint16
	CacheSchema uint16
	Target      layout.Target
	Manifest    string
	Targets     []layout.Target
}

type targetPayload struct {
	Triple  string `json:"triple"`
	PtrSize int    `json:"ptr_size"`
}

type reportPayload struct {
	Version     string          `json:"version"`
	UnitSchema  uint16          `json:"unit_schema"`
	CacheSchema uint16          `json:"cache_schema"`
	Target      targetPayload   `json:"target"`
	Manifest    string          `json:"manifest,omitempty"`
	GitCommit   string          `json:"git_commit,omitempty"`
	BuildDate   string          `json:"build_date,omitempty"`
	Targets     []targetPayload `json:"targets,omitempty"`
}

var (
	versionFormat  string
	versionBuild   bool
	versionTargets bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionBuild, "build", false, "include git commit and build date")
	versionCmd.Flags().BoolVar(&versionTargets, "targets", false, "list the targets known by triple")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show rcgen version, format schemas and target",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(versionFormat)
		if format != "pretty" && format != "json" {
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		report, err := collectBuildReport(cfg)
		if err != nil {
			return err
		}
		if format == "json" {
			return writeReportJSON(cmd.OutOrStdout(), report, versionBuild, versionTargets)
		}
		writeReportPretty(cmd.OutOrStdout(), report, versionBuild, versionTargets)
		return nil
	},
}

func collectBuildReport(cfg projectConfig) (buildReport, error) {
	target, err := cfg.target()
	if err != nil {
		return buildReport{}, fmt.Errorf("target: %w", err)
	}
	return buildReport{
		Version:     version.Plain(),
		GitCommit:   strings.TrimSpace(version.GitCommit),
		BuildDate:   strings.TrimSpace(version.BuildDate),
		UnitSchema:  mir.UnitSchemaVersion,
		CacheSchema: driver.CacheSchemaVersion(),
		Target:      target,
		Manifest:    cfg.path,
		Targets:     layout.KnownTargets(),
	}, nil
}

func writeReportPretty(out io.Writer, r buildReport, build, targets bool) {
	fmt.Fprintf(out, "rcgen %s\n", version.Colored())
	fmt.Fprintf(out, "schemas: unit v%d, cache v%d\n", r.UnitSchema, r.CacheSchema)
	fmt.Fprintf(out, "target:  %s (ptr %d)", r.Target.Triple, r.Target.PtrSize)
	if r.Manifest != "" {
		fmt.Fprintf(out, " from %s", r.Manifest)
	}
	fmt.Fprintln(out)
	if build {
		fmt.Fprintf(out, "commit:  %s\n", valueOrUnknown(r.GitCommit))
		fmt.Fprintf(out, "built:   %s\n", valueOrUnknown(r.BuildDate))
	}
	if targets {
		width := 0
		for _, t := range r.Targets {
			width = max(width, runewidth.StringWidth(t.Triple))
		}
		fmt.Fprintln(out, "known targets:")
		for _, t := range r.Targets {
			fmt.Fprintf(out, "  %s  ptr %d\n", runewidth.FillRight(t.Triple, width), t.PtrSize)
		}
	}
}

func writeReportJSON(out io.Writer, r buildReport, build, targets bool) error {
	payload := reportPayload{
		Version:     r.Version,
		UnitSchema:  r.UnitSchema,
		CacheSchema: r.CacheSchema,
		Target:      targetPayload{Triple: r.Target.Triple, PtrSize: r.Target.PtrSize},
		Manifest:    r.Manifest,
	}
	if build {
		payload.GitCommit = valueOrUnknown(r.GitCommit)
		payload.BuildDate = valueOrUnknown(r.BuildDate)
	}
	if targets {
		for _, t := range r.Targets {
			payload.Targets = append(payload.Targets, targetPayload{Triple: t.Triple, PtrSize: t.PtrSize})
		}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
