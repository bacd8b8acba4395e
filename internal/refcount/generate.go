package refcount

import (
	"errors"
	"fmt"

	"rcgen/internal/layout"
	"rcgen/internal/mir"
	"rcgen/internal/symbols"
)

// GenerateProcs drains the registry and synthesizes one helper procedure per
// entry, in registration order. It may be called once per generator.
//
// Every entry is attempted; the returned error joins every
// *UnimplementedLayoutError encountered, and any error means the unit must
// not be emitted.
func (g *Generator) GenerateProcs() ([]*mir.Proc, error) {
	entries := g.registry.Drain()
	procs := make([]*mir.Proc, 0, len(entries))
	var errs []error
	for _, e := range entries {
		proc, err := g.synthesize(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		procs = append(procs, proc)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return procs, nil
}

// synthesize dispatches on every layout variant. Only strings have a rule;
// each other variant is listed explicitly so a new rule slots in beside it.
func (g *Generator) synthesize(e Entry) (*mir.Proc, error) {
	l := g.layouts.MustLookup(e.Layout)
	switch l.Kind {
	case layout.KindBuiltin:
		switch l.Builtin {
		case layout.BuiltinStr:
			return g.genModifyStr(e), nil
		case layout.BuiltinList:
			return nil, g.unimplemented(e)
		case layout.BuiltinDict:
			return nil, g.unimplemented(e)
		case layout.BuiltinSet:
			return nil, g.unimplemented(e)
		case layout.BuiltinBool, layout.BuiltinInt, layout.BuiltinFloat:
			panic(fmt.Sprintf("refcount: helper registered for non-refcounted builtin %s", l.Builtin))
		}
	case layout.KindStruct:
		return nil, g.unimplemented(e)
	case layout.KindUnion:
		return nil, g.unimplemented(e)
	case layout.KindLambdaSet:
		return nil, g.unimplemented(e)
	case layout.KindRecursivePointer:
		return nil, g.unimplemented(e)
	}
	panic(fmt.Sprintf("refcount: invalid layout#%d", e.Layout))
}

func (g *Generator) unimplemented(e Entry) error {
	return &UnimplementedLayoutError{
		Layout: e.Layout,
		Name:   g.layouts.Name(e.Layout),
		Op:     e.Op,
	}
}

// genArgs returns the helper parameters: the value, plus the amount for Inc.
func (g *Generator) genArgs(op Op, l layout.LayoutID) []mir.Param {
	value := mir.Param{Layout: l, Sym: symbols.Arg1}
	if op == OpInc {
		return []mir.Param{value, {Layout: g.isize, Sym: symbols.Arg2}}
	}
	return []mir.Param{value}
}

// newProc wraps a helper body with the metadata shared by every helper.
func (g *Generator) newProc(e Entry, body *mir.Stmt) *mir.Proc {
	rec := mir.NotSelfRecursive
	if g.layouts.IsRecursive(e.Layout) {
		rec = mir.IsSelfRecursive
	}
	return &mir.Proc{
		Name:              e.Proc,
		Args:              g.genArgs(e.Op, e.Layout),
		Body:              body,
		ClosureDataLayout: layout.NoLayoutID,
		RetLayout:         g.common.Unit,
		SelfRecursive:     rec,
	}
}
