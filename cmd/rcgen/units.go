package main

import (
	"fmt"
	"os"
	"path/filepath"

	"rcgen/internal/mir"
)

func readUnitFile(path string) (*mir.Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	u, err := mir.DecodeUnit(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return u, nil
}

// writeUnitFile encodes u to path through a temp file, so a failed write never
// leaves a truncated unit behind.
func writeUnitFile(path string, u *mir.Unit) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rcgen-*")
	if err != nil {
		return err
	}
	if err := mir.EncodeUnit(tmp, u); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
