package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"rcgen/internal/layout"
)

const manifestName = "rcgen.toml"

type projectConfig struct {
	Target targetConfig `toml:"target"`
	Pass   passConfig   `toml:"pass"`
	Cache  cacheConfig  `toml:"cache"`
	Trace  traceConfig  `toml:"trace"`

	path string
}

type targetConfig struct {
	Triple  string `toml:"triple"`
	PtrSize int    `toml:"ptr_size"`
}

type passConfig struct {
	Jobs     int  `toml:"jobs"`
	Validate bool `toml:"validate"`
}

type cacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type traceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

func defaultConfig() projectConfig {
	return projectConfig{
		Target: targetConfig{Triple: "x86_64-linux-gnu", PtrSize: 8},
		Pass:   passConfig{Validate: true},
		Cache:  cacheConfig{Enabled: false},
		Trace:  traceConfig{Level: "off", Mode: "stream"},
	}
}

func (c projectConfig) target() (layout.Target, error) {
	return layout.TargetFor(c.Target.Triple, c.Target.PtrSize)
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfig reads the manifest named by --config, or the nearest rcgen.toml,
// over the defaults. A missing manifest is not an error.
func loadConfig(cmd *cobra.Command) (projectConfig, error) {
	cfg := defaultConfig()
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return cfg, err
	}
	if path == "" {
		found, ok, err := findManifest(".")
		if err != nil || !ok {
			return cfg, err
		}
		path = found
	}
	if err := decodeConfigFile(path, &cfg); err != nil {
		return cfg, err
	}
	cfg.path = path
	return cfg, nil
}

func decodeConfigFile(path string, cfg *projectConfig) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.Pass.Jobs < 0 {
		return fmt.Errorf("%s: pass.jobs must not be negative", path)
	}
	return nil
}

func errInvalidColorMode(mode string) error {
	return fmt.Errorf("invalid color mode %q (expected auto|on|off)", mode)
}
