package driver

import (
	"rcgen/internal/layout"
	"rcgen/internal/mir"
	"rcgen/internal/observ"
)

// Options configures expansion.
type Options struct {
	Target   layout.Target
	Validate bool // run mir.Validate on every expanded unit
	Jobs     int  // max units in flight; <= 0 means GOMAXPROCS
	Cache    *DiskCache
	Timer    *observ.Timer
}

// Result describes one expanded unit.
type Result struct {
	Unit     *mir.Unit
	Expanded int  // Refcounting statements rewritten
	Helpers  int  // helper procedures generated
	Cached   bool // served from the disk cache
}
