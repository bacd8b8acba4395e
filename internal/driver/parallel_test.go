package driver_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rcgen/internal/driver"
	"rcgen/internal/layout"
	"rcgen/internal/mir"
	"rcgen/internal/observ"
	"rcgen/internal/refcount"
	"rcgen/internal/testkit"
)

func TestExpandUnitsIsolatesFailures(t *testing.T) {
	good := testkit.StringSample().Unit
	bad := testkit.LayoutSample(func(in *layout.Interner) layout.LayoutID {
		return in.Intern(layout.Set(in.Common().Str))
	}, mir.ModifyDec).Unit
	other := testkit.StringSample().Unit

	opts := x86Options()
	opts.Jobs = 2
	opts.Timer = observ.NewTimer()
	results, err := driver.ExpandUnits(context.Background(), []*mir.Unit{good, bad, other}, opts)

	var uerr *refcount.UnimplementedLayoutError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected the set unit to fail, got %v", err)
	}
	if !strings.Contains(err.Error(), "unit layouts") {
		t.Fatalf("error does not name the failing unit: %v", err)
	}
	if len(results) != 3 || results[0] == nil || results[1] != nil || results[2] == nil {
		t.Fatalf("unexpected results %+v", results)
	}
	for _, i := range []int{0, 2} {
		if results[i].Helpers != 2 {
			t.Fatalf("result %d generated %d helpers, want 2", i, results[i].Helpers)
		}
	}
	if got := len(opts.Timer.Report().Phases); got != 3 {
		t.Fatalf("timer recorded %d phases, want one per unit", got)
	}
}

func TestExpandUnitsUsesCache(t *testing.T) {
	cache, err := driver.OpenDiskCache(t.TempDir(), "rcgen")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	opts := x86Options()
	opts.Cache = cache

	first, err := driver.ExpandUnits(context.Background(), []*mir.Unit{testkit.StringSample().Unit}, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first[0].Cached {
		t.Fatalf("first run cannot be a cache hit")
	}

	second, err := driver.ExpandUnits(context.Background(), []*mir.Unit{testkit.StringSample().Unit}, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	res := second[0]
	if !res.Cached || res.Helpers != 2 || res.Expanded != first[0].Expanded {
		t.Fatalf("expected a cache hit with 2 helpers and %d expansions, got %+v", first[0].Expanded, res)
	}
	if err := testkit.CheckExpanded(res.Unit); err != nil {
		t.Fatalf("cached unit: %v", err)
	}

	wasm := opts
	wasm.Target = layout.Wasm32()
	third, err := driver.ExpandUnits(context.Background(), []*mir.Unit{testkit.StringSample().Unit}, wasm)
	if err != nil {
		t.Fatalf("wasm run: %v", err)
	}
	if third[0].Cached {
		t.Fatalf("a different pointer size must miss the cache")
	}
}

func TestDiskCache(t *testing.T) {
	cache, err := driver.OpenDiskCache(t.TempDir(), "rcgen")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	u := testkit.StringSample().Unit
	key, err := driver.UnitDigest(u, layout.X86_64LinuxGNU())
	if err != nil {
		t.Fatalf("UnitDigest: %v", err)
	}

	if _, ok, err := cache.Get(key); ok || err != nil {
		t.Fatalf("empty cache returned ok=%v err=%v", ok, err)
	}
	if err := cache.Put(key, &driver.Result{Unit: u, Expanded: 5, Helpers: 2}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := cache.Get(key)
	if err != nil || !ok || got.Unit.Name != u.Name {
		t.Fatalf("Get = %v, %v, %v", got, ok, err)
	}
	if !got.Cached || got.Expanded != 5 || got.Helpers != 2 {
		t.Fatalf("cached counts lost: %+v", got)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, _ := cache.Get(key); ok {
		t.Fatalf("entry survived DropAll")
	}

	var nilCache *driver.DiskCache
	if err := nilCache.Put(key, &driver.Result{Unit: u}); err != nil {
		t.Fatalf("nil cache Put: %v", err)
	}
}

// danglingRetUnit expands cleanly but fails validation: main returns a symbol
// that is never bound.
func danglingRetUnit() *mir.Unit {
	u := mir.NewUnit("dangling", 1)
	str := u.Layouts.Common().Str
	main := u.NewSymbol("main")
	s := u.NewSymbol("s")
	ghost := u.NewSymbol("ghost")
	u.Procs = []*mir.Proc{{
		Name:      main,
		Args:      []mir.Param{{Layout: str, Sym: s}},
		Body:      mir.NewRefcounting(mir.Inc(s, 1), mir.NewRet(ghost)),
		RetLayout: u.Layouts.Common().Unit,
	}}
	return u
}

func TestCacheHitIsValidated(t *testing.T) {
	cache, err := driver.OpenDiskCache(t.TempDir(), "rcgen")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	lax := x86Options()
	lax.Validate = false
	lax.Cache = cache
	if _, err := driver.ExpandUnits(context.Background(), []*mir.Unit{danglingRetUnit()}, lax); err != nil {
		t.Fatalf("non-validating run: %v", err)
	}

	strict := x86Options()
	strict.Cache = cache
	results, err := driver.ExpandUnits(context.Background(), []*mir.Unit{danglingRetUnit()}, strict)
	if err == nil || !strings.Contains(err.Error(), "use of unbound symbol ghost") {
		t.Fatalf("cached unit accepted by a validating run: results=%+v err=%v", results, err)
	}
	if results[0] != nil {
		t.Fatalf("an invalid cached unit must not produce a result")
	}

	uncached := x86Options()
	if _, err := driver.ExpandUnits(context.Background(), []*mir.Unit{danglingRetUnit()}, uncached); err == nil {
		t.Fatalf("fresh expansion must reject the unit too")
	}
}
