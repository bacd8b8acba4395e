package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rcgen/internal/testkit"
)

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := filepath.Join(root, manifestName)
	if err := os.WriteFile(manifest, []byte("[pass]\njobs = 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, ok, err := findManifest(nested)
	if err != nil {
		t.Fatalf("findManifest: %v", err)
	}
	if !ok || got != manifest {
		t.Fatalf("findManifest = %q, %v; want %q", got, ok, manifest)
	}
}

func TestDecodeConfigFile(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
		check   func(t *testing.T, cfg projectConfig)
	}{
		{
			name: "overrides defaults",
			body: "[target]\ntriple = \"wasm32-unknown-unknown\"\nptr_size = 4\n[pass]\njobs = 3\nvalidate = false\n",
			check: func(t *testing.T, cfg projectConfig) {
				if cfg.Target.PtrSize != 4 || cfg.Pass.Jobs != 3 || cfg.Pass.Validate {
					t.Fatalf("unexpected config: %+v", cfg)
				}
				if cfg.Trace.Level != "off" {
					t.Fatalf("trace level default lost: %q", cfg.Trace.Level)
				}
			},
		},
		{name: "unknown key", body: "[pass]\nworkers = 1\n", wantErr: "unknown key"},
		{name: "negative jobs", body: "[pass]\njobs = -1\n", wantErr: "must not be negative"},
		{name: "syntax", body: "[pass\n", wantErr: "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), manifestName)
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatal(err)
			}
			cfg := defaultConfig()
			err := decodeConfigFile(path, &cfg)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath(filepath.Join("in", "x.mp"), "", "strings"); got != filepath.Join("in", "strings.rc.mp") {
		t.Fatalf("outputPath = %q", got)
	}
	if got := outputPath("x.mp", "out", ""); got != filepath.Join("out", "x.rc.mp") {
		t.Fatalf("outputPath = %q", got)
	}
}

func TestWriteAndReadUnitFile(t *testing.T) {
	sample := testkit.StringSample()
	path := filepath.Join(t.TempDir(), "out", "strings.mp")
	if err := writeUnitFile(path, sample.Unit); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := readUnitFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Name != sample.Unit.Name || len(got.Procs) != len(sample.Unit.Procs) {
		t.Fatalf("round trip lost data: %q with %d procs", got.Name, len(got.Procs))
	}
}

func TestDefaultConfigTarget(t *testing.T) {
	target, err := defaultConfig().target()
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	if target.PtrSize != 8 {
		t.Fatalf("default target ptr size = %d", target.PtrSize)
	}
}
