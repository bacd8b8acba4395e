package refcount

import (
	"rcgen/internal/layout"
	"rcgen/internal/mir"
	"rcgen/internal/symbols"
)

// genModifyStr builds the helper for a string:
//
//	len = str.1 as isize
//	if len >= 0 {           // big string, heap allocated
//	    rc = RefCountGetPtr(str)
//	    RefCountInc(rc, amount) | RefCountDec(rc, ptrSize)
//	}
//	ret {}
//
// A negative length has the top bit set, which marks a small string stored
// inline. It owns no allocation, so there is nothing to count.
func (g *Generator) genModifyStr(e Entry) *mir.Proc {
	str := symbols.Arg1
	fieldLayouts := []layout.LayoutID{g.common.RecPtr, g.isize}

	var body mir.Builder
	length := body.Let(g.fresh(), mir.FieldExpr(str, 1, fieldLayouts), g.isize)
	zero := body.Let(g.fresh(), mir.IntLiteral(0), g.isize)
	isBig := body.Let(g.fresh(), mir.LowLevelExpr(mir.NumGte, length, zero), g.common.Bool)

	var big mir.Builder
	big.Let(g.fresh(), mir.FieldExpr(str, 0, fieldLayouts), g.common.RecPtr)
	rcPtr := big.Let(g.fresh(), mir.LowLevelExpr(mir.RefCountGetPtr, str), g.common.RecPtr)
	alignment := big.Let(g.fresh(), mir.IntLiteral(g.ptrSize), g.common.U32)

	var modify mir.Expr
	switch e.Op {
	case OpInc:
		modify = mir.LowLevelExpr(mir.RefCountInc, rcPtr, symbols.Arg2)
	default:
		modify = mir.LowLevelExpr(mir.RefCountDec, rcPtr, alignment)
	}
	result := big.Let(g.fresh(), modify, g.common.Unit)
	thenBranch := big.Finish(mir.NewRet(result))

	var small mir.Builder
	ifStmt := &mir.Stmt{Kind: mir.StmtSwitch, Switch: mir.SwitchStmt{
		Cond:       isBig,
		CondLayout: g.common.Bool,
		Branches:   []mir.Branch{{Value: 1, Body: thenBranch}},
		Default:    g.returnUnit(&small),
		RetLayout:  g.common.Unit,
	}}

	return g.newProc(e, body.Finish(ifStmt))
}
