// Package refcount expands abstract refcount instructions into concrete IR
// and synthesizes the layout-specialized helper procedures they call.
//
// One Generator serves one compilation unit. Call ExpandRefcountStmt for every
// Refcounting statement in program order, then GenerateProcs once to obtain
// the helper bodies.
package refcount

import (
	"fmt"

	"fortio.org/safecast"

	"rcgen/internal/layout"
	"rcgen/internal/mir"
	"rcgen/internal/symbols"
)

// Generator owns the specialization registry and temporary counter of one unit.
type Generator struct {
	layouts *layout.Interner
	idents  *symbols.IdentIDs
	home    symbols.ModuleID
	target  layout.Target

	nextTemp uint32
	ptrSize  int64
	isize    layout.LayoutID
	common   layout.Common

	registry *Registry
}

// New creates a generator minting symbols in home.
func New(layouts *layout.Interner, idents *symbols.IdentIDs, home symbols.ModuleID, target layout.Target) *Generator {
	g := &Generator{
		layouts: layouts,
		idents:  idents,
		home:    home,
		target:  target,
		ptrSize: int64(target.PtrSize),
		isize:   layouts.Intern(target.Isize()),
		common:  layouts.Common(),
	}
	g.registry = NewRegistry(g.procSymbol)
	return g
}

// ForUnit creates a generator sharing u's layout table and ident table.
func ForUnit(u *mir.Unit, target layout.Target) *Generator {
	return New(u.Layouts, u.Idents, u.Home, target)
}

// Registry exposes the pending specializations.
func (g *Generator) Registry() *Registry {
	return g.registry
}

// Isize returns the layout used for amounts and string lengths.
func (g *Generator) Isize() layout.LayoutID {
	return g.isize
}

// procSymbol names a new helper, e.g. "#rcInc_str_0".
func (g *Generator) procSymbol(l layout.LayoutID, op Op, idx int) symbols.Symbol {
	name := fmt.Sprintf("#rc%s_%s_%d", op, layoutDebugName(g.layouts.MustLookup(l)), idx)
	return g.createSymbol(name)
}

// fresh returns a temporary never handed out before by this generator.
func (g *Generator) fresh() symbols.Symbol {
	id := g.nextTemp
	next, err := safecast.Conv[uint32](uint64(id) + 1)
	if err != nil {
		panic(fmt.Errorf("refcount: temporary counter overflow: %w", err))
	}
	g.nextTemp = next
	return symbols.TempSymbol(g.home, id)
}

// createSymbol adds a named symbol to the unit's ident table.
func (g *Generator) createSymbol(name string) symbols.Symbol {
	return symbols.New(g.home, g.idents.Add(name))
}

// returnUnit finishes b with `let u = {}; ret u`.
func (g *Generator) returnUnit(b *mir.Builder) *mir.Stmt {
	unit := b.Let(g.fresh(), mir.UnitExpr(), g.common.Unit)
	return b.Finish(mir.NewRet(unit))
}
