package refcount

import (
	"fmt"

	"fortio.org/safecast"

	"rcgen/internal/layout"
	"rcgen/internal/mir"
	"rcgen/internal/symbols"
)

// ExpandRefcountStmt rewrites one Refcounting statement on a value of layout
// l into concrete IR that continues with following. When the expansion is the
// first use of a helper procedure, the helper's declaration is returned so a
// backend can emit its linker symbol once.
func (g *Generator) ExpandRefcountStmt(l layout.LayoutID, modify mir.ModifyRc, following *mir.Stmt) (*mir.Stmt, *mir.Helper) {
	var b mir.Builder
	switch modify.Kind {
	case mir.ModifyInc:
		existed, procName := g.registry.Register(l, OpInc)

		amount, err := safecast.Conv[int64](modify.Amount)
		if err != nil {
			panic(fmt.Errorf("refcount: increment amount %d: %w", modify.Amount, err))
		}
		amountSym := b.Let(g.createSymbol("amount"), mir.IntLiteral(amount), g.isize)

		argLayouts := []layout.LayoutID{l, g.isize}
		b.Let(g.fresh(), mir.CallByNameExpr(procName, g.common.Unit, argLayouts, modify.Sym, amountSym), g.common.Unit)

		return b.Finish(following), g.newHelper(existed, procName, argLayouts)

	case mir.ModifyDec:
		existed, procName := g.registry.Register(l, OpDec)

		argLayouts := []layout.LayoutID{l}
		b.Let(g.fresh(), mir.CallByNameExpr(procName, g.common.Unit, argLayouts, modify.Sym), g.common.Unit)

		return b.Finish(following), g.newHelper(existed, procName, argLayouts)

	case mir.ModifyDecRef:
		// No helper: locate the count word and decrement it in place.
		rcPtr := b.Let(g.fresh(), mir.LowLevelExpr(mir.RefCountGetPtr, modify.Sym), g.common.RecPtr)
		b.Let(g.fresh(), mir.LowLevelExpr(mir.RefCountDecRef, rcPtr), g.common.Unit)
		return b.Finish(following), nil

	default:
		panic(fmt.Sprintf("refcount: unknown modification kind %d", modify.Kind))
	}
}

func (g *Generator) newHelper(existed bool, name symbols.Symbol, args []layout.LayoutID) *mir.Helper {
	if existed {
		return nil
	}
	return &mir.Helper{
		Name:   name,
		Layout: mir.ProcLayout{Arguments: args, Result: g.common.Unit},
	}
}
