package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"rcgen/internal/layout"
	"rcgen/internal/mir"
	"rcgen/internal/refcount"
	"rcgen/internal/symbols"
	"rcgen/internal/trace"
)

// ErrUnknownLayout reports a refcount instruction on a symbol with no known layout.
var ErrUnknownLayout = errors.New("refcount instruction on symbol with unknown layout")

// ErrAmountRange reports an increment amount that does not fit the
// pointer-sized integer the helpers take.
var ErrAmountRange = errors.New("refcount increment amount out of range")

// ErrNotRefcounted reports a refcount instruction on a value that owns no allocation.
var ErrNotRefcounted = errors.New("refcount instruction on non-refcounted layout")

// ExpandUnit rewrites every Refcounting statement of u in place, in program
// order, then appends the generated helpers to u.Procs. The unit is owned by
// the caller and must not be shared while this runs.
func ExpandUnit(ctx context.Context, u *mir.Unit, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, "unit:"+u.Name, trace.CurrentSpan(ctx))
	defer span.End("")

	gen := refcount.ForUnit(u, opts.Target)
	ex := &expander{
		gen:     gen,
		tracer:  tracer,
		span:    span.ID(),
		unit:    u,
		ptrSize: opts.Target.PtrSize,
		env:     make(map[symbols.Symbol]layout.LayoutID, 64),
	}

	userProcs := len(u.Procs)
	for _, p := range u.Procs[:userProcs] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := ex.proc(p); err != nil {
			return nil, fmt.Errorf("unit %s: proc %s: %w", u.Name, u.SymbolName(p.Name), err)
		}
	}

	helpers, err := gen.GenerateProcs()
	if err != nil {
		trace.Point(tracer, trace.ScopeError, "synthesize", err.Error(), span.ID())
		return nil, fmt.Errorf("unit %s: %w", u.Name, err)
	}
	u.Procs = append(u.Procs, helpers...)
	u.Helpers = append(u.Helpers, ex.helpers...)

	if opts.Validate {
		if err := mir.Validate(u, mir.ValidateOptions{RequireExpanded: true}); err != nil {
			trace.Point(tracer, trace.ScopeError, "validate", err.Error(), span.ID())
			return nil, fmt.Errorf("unit %s: invalid after expansion: %w", u.Name, err)
		}
	}

	span.WithExtra("expanded", strconv.Itoa(ex.expanded)).
		WithExtra("helpers", strconv.Itoa(len(helpers)))
	return &Result{Unit: u, Expanded: ex.expanded, Helpers: len(helpers)}, nil
}

type expander struct {
	gen    *refcount.Generator
	tracer trace.Tracer
	span   uint64
	unit   *mir.Unit

	ptrSize  int
	env      map[symbols.Symbol]layout.LayoutID
	helpers  []mir.Helper
	expanded int
}

func (ex *expander) proc(p *mir.Proc) error {
	for _, a := range p.Args {
		ex.env[a.Sym] = a.Layout
	}
	return ex.walk(p.Body)
}

// walk visits the chain in program order: switch branches before the
// default, join bodies before their remainder. A Refcounting node is
// overwritten by the head of its expansion, and the walk carries on through
// the expansion into the statement that followed the instruction.
func (ex *expander) walk(s *mir.Stmt) error {
	for s != nil {
		switch s.Kind {
		case mir.StmtLet:
			ex.env[s.Let.Sym] = s.Let.Layout
			s = s.Let.Next
		case mir.StmtRefcounting:
			m := s.Refcounting.Modify
			l, ok := ex.env[m.Sym]
			if !ok {
				return fmt.Errorf("%w: %s %s", ErrUnknownLayout, m.Kind, ex.unit.SymbolName(m.Sym))
			}
			if !ex.unit.Layouts.IsRefcounted(l) {
				return fmt.Errorf("%w: %s %s: %s", ErrNotRefcounted, m.Kind, ex.unit.SymbolName(m.Sym), ex.unit.Layouts.Name(l))
			}
			if m.Kind == mir.ModifyInc {
				if err := amountFits(m.Amount, ex.ptrSize); err != nil {
					return fmt.Errorf("%w: inc %s %d", ErrAmountRange, ex.unit.SymbolName(m.Sym), m.Amount)
				}
			}
			out, helper := ex.gen.ExpandRefcountStmt(l, m, s.Refcounting.Next)
			*s = *out
			ex.expanded++
			if helper != nil {
				ex.helpers = append(ex.helpers, *helper)
				trace.Point(ex.tracer, trace.ScopeProc, "helper", ex.unit.SymbolName(helper.Name), ex.span)
			}
		case mir.StmtSwitch:
			for _, b := range s.Switch.Branches {
				if err := ex.walk(b.Body); err != nil {
					return err
				}
			}
			return ex.walk(s.Switch.Default)
		case mir.StmtJoin:
			for _, p := range s.Join.Params {
				ex.env[p.Sym] = p.Layout
			}
			if err := ex.walk(s.Join.Body); err != nil {
				return err
			}
			return ex.walk(s.Join.Remainder)
		default:
			return nil
		}
	}
	return nil
}

// amountFits reports whether an increment amount is representable as the
// target's isize.
func amountFits(amount uint64, ptrSize int) error {
	if ptrSize == 4 {
		_, err := safecast.Conv[int32](amount)
		return err
	}
	_, err := safecast.Conv[int64](amount)
	return err
}
