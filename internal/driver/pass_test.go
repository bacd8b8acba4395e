package driver_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"rcgen/internal/driver"
	"rcgen/internal/layout"
	"rcgen/internal/mir"
	"rcgen/internal/refcount"
	"rcgen/internal/testkit"
	"rcgen/internal/trace"
)

func x86Options() driver.Options {
	return driver.Options{Target: layout.X86_64LinuxGNU(), Validate: true}
}

func TestExpandUnitStringSample(t *testing.T) {
	sample := testkit.StringSample()
	u := sample.Unit
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)

	res, err := driver.ExpandUnit(ctx, u, x86Options())
	if err != nil {
		t.Fatalf("ExpandUnit: %v", err)
	}
	if res.Expanded != 5 || res.Helpers != 2 || res.Cached {
		t.Fatalf("unexpected result %+v", res)
	}
	if err := testkit.CheckExpanded(u); err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, h := range u.Helpers {
		names = append(names, u.SymbolName(h.Name))
	}
	if want := []string{"#rcInc_str_0", "#rcDec_str_1"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("helpers = %v, want %v", names, want)
	}
	if len(u.Procs) != 4 {
		t.Fatalf("unit has %d procs, want 2 user procs and 2 helpers", len(u.Procs))
	}

	main, _ := u.ProcByName(sample.Main)
	calls := testkit.ByNameCalls(main.Body)
	if len(calls) != 2 || calls[0].Name != u.Helpers[0].Name || calls[1].Name != u.Helpers[1].Name {
		t.Fatalf("main calls helpers out of order: %+v", calls)
	}
	if got := testkit.LowLevelOps(main.Body); !reflect.DeepEqual(got, []mir.LowLevel{mir.RefCountGetPtr, mir.RefCountDecRef}) {
		t.Fatalf("main inlines %v, want the decref sequence only", got)
	}

	var points int
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindPoint && ev.Name == "helper" {
			points++
		}
	}
	if points != 2 {
		t.Fatalf("traced %d helper declarations, want 2", points)
	}
}

func TestExpandedSampleRuns(t *testing.T) {
	sample := testkit.StringSample()
	if _, err := driver.ExpandUnit(context.Background(), sample.Unit, x86Options()); err != nil {
		t.Fatalf("ExpandUnit: %v", err)
	}
	m := testkit.NewMachine(sample.Unit)
	if _, err := m.Call(sample.Main, testkit.Str(0x2000, 4)); err != nil {
		t.Fatalf("main: %v", err)
	}
	ptr := testkit.Ptr(0x2000 - 8)
	want := []testkit.PrimCall{
		{Op: mir.RefCountInc, Args: []testkit.Value{ptr, testkit.Int(3)}},
		{Op: mir.RefCountDec, Args: []testkit.Value{ptr, testkit.Int(8)}},
	}
	if !reflect.DeepEqual(m.Calls, want) {
		t.Fatalf("primitive calls = %+v, want %+v", m.Calls, want)
	}
}

func TestExpandUnitErrors(t *testing.T) {
	tests := []struct {
		name  string
		unit  func() *mir.Unit
		check func(t *testing.T, err error)
	}{
		{
			name: "not refcounted",
			unit: func() *mir.Unit {
				return testkit.LayoutSample(func(in *layout.Interner) layout.LayoutID {
					return in.Intern(layout.Int(layout.Width64))
				}, mir.ModifyInc).Unit
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, driver.ErrNotRefcounted) {
					t.Fatalf("expected ErrNotRefcounted, got %v", err)
				}
			},
		},
		{
			name: "unknown layout",
			unit: func() *mir.Unit {
				u := mir.NewUnit("ghost", 1)
				ghost := u.NewSymbol("ghost")
				main := u.NewSymbol("main")
				u.Procs = []*mir.Proc{{Name: main, Body: mir.NewRefcounting(mir.Dec(ghost), mir.NewRet(ghost))}}
				return u
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, driver.ErrUnknownLayout) {
					t.Fatalf("expected ErrUnknownLayout, got %v", err)
				}
			},
		},
		{
			name: "increment out of range",
			unit: func() *mir.Unit {
				u := testkit.LayoutSample(func(in *layout.Interner) layout.LayoutID {
					return in.Common().Str
				}, mir.ModifyInc).Unit
				u.Procs[0].Body.Refcounting.Modify.Amount = math.MaxUint64
				return u
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, driver.ErrAmountRange) {
					t.Fatalf("expected ErrAmountRange, got %v", err)
				}
			},
		},
		{
			name: "unimplemented layout",
			unit: func() *mir.Unit {
				return testkit.LayoutSample(func(in *layout.Interner) layout.LayoutID {
					return in.Intern(layout.List(in.Common().Str))
				}, mir.ModifyInc, mir.ModifyDec).Unit
			},
			check: func(t *testing.T, err error) {
				var uerr *refcount.UnimplementedLayoutError
				if !errors.As(err, &uerr) || uerr.Name != "List(Str)" {
					t.Fatalf("expected unimplemented List(Str), got %v", err)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := driver.ExpandUnit(context.Background(), tt.unit(), x86Options())
			if res != nil {
				t.Fatalf("a failed unit must not produce a result")
			}
			tt.check(t, err)
		})
	}
}

func TestIncAmountFollowsPointerWidth(t *testing.T) {
	sample := func(amount uint64) *mir.Unit {
		u := testkit.LayoutSample(func(in *layout.Interner) layout.LayoutID {
			return in.Common().Str
		}, mir.ModifyInc).Unit
		u.Procs[0].Body.Refcounting.Modify.Amount = amount
		return u
	}
	wasm := driver.Options{Target: layout.Wasm32(), Validate: true}

	if _, err := driver.ExpandUnit(context.Background(), sample(math.MaxInt32), wasm); err != nil {
		t.Fatalf("MaxInt32 on wasm32: %v", err)
	}
	if _, err := driver.ExpandUnit(context.Background(), sample(math.MaxInt32+1), wasm); !errors.Is(err, driver.ErrAmountRange) {
		t.Fatalf("expected ErrAmountRange on wasm32, got %v", err)
	}
	if _, err := driver.ExpandUnit(context.Background(), sample(math.MaxInt32+1), x86Options()); err != nil {
		t.Fatalf("MaxInt32+1 on x86_64: %v", err)
	}
	if _, err := driver.ExpandUnit(context.Background(), sample(math.MaxInt64), x86Options()); err != nil {
		t.Fatalf("MaxInt64 on x86_64: %v", err)
	}
}

func TestExpandUnitDecRefOnly(t *testing.T) {
	sample := testkit.LayoutSample(func(in *layout.Interner) layout.LayoutID {
		return in.Intern(layout.List(in.Common().Str))
	}, mir.ModifyDecRef)
	res, err := driver.ExpandUnit(context.Background(), sample.Unit, x86Options())
	if err != nil {
		t.Fatalf("decref needs no helper and must succeed for any layout: %v", err)
	}
	if res.Helpers != 0 || len(sample.Unit.Helpers) != 0 {
		t.Fatalf("decref declared helpers: %+v", res)
	}
}
