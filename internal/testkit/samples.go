// Package testkit builds sample units and checks expansion invariants. It is
// shared by the package tests and by `rcgen sample`.
package testkit

import (
	"rcgen/internal/layout"
	"rcgen/internal/mir"
	"rcgen/internal/symbols"
)

// Sample is a unit plus the symbols tests refer to.
type Sample struct {
	Unit  *mir.Unit
	Main  symbols.Symbol
	Value symbols.Symbol
}

// StringSample builds a unit with two procedures over a string:
//
//	main(s: Str):
//	    inc s 3
//	    let flag = true
//	    switch flag { 1 => dec s; ret {} ; default => decref s; ret {} }
//
//	forward(t: Str):
//	    join jp0(x: Str): dec x; ret {}
//	    inc t 1
//	    jump jp0(t)
func StringSample() *Sample {
	u := mir.NewUnit("strings", 1)
	str := u.Layouts.Common().Str
	unitL := u.Layouts.Common().Unit
	boolL := u.Layouts.Common().Bool

	mainSym := u.NewSymbol("main")
	s := u.NewSymbol("s")
	flag := u.NewSymbol("flag")

	retUnit := func(name string) *mir.Stmt {
		sym := u.NewSymbol(name)
		return mir.NewLet(sym, mir.UnitExpr(), unitL, mir.NewRet(sym))
	}

	mainBody := mir.NewRefcounting(mir.Inc(s, 3),
		mir.NewLet(flag, mir.Expr{Kind: mir.ExprLiteral, Literal: mir.Literal{Kind: mir.LiteralBool, Bool: true}}, boolL,
			&mir.Stmt{Kind: mir.StmtSwitch, Switch: mir.SwitchStmt{
				Cond:       flag,
				CondLayout: boolL,
				Branches: []mir.Branch{
					{Value: 1, Body: mir.NewRefcounting(mir.Dec(s), retUnit("u1"))},
				},
				Default:   mir.NewRefcounting(mir.DecRef(s), retUnit("u2")),
				RetLayout: unitL,
			}}))

	fwdSym := u.NewSymbol("forward")
	t := u.NewSymbol("t")
	x := u.NewSymbol("x")
	fwdBody := &mir.Stmt{Kind: mir.StmtJoin, Join: mir.JoinStmt{
		ID:        0,
		Params:    []mir.Param{{Layout: str, Sym: x}},
		Body:      mir.NewRefcounting(mir.Dec(x), retUnit("u3")),
		Remainder: mir.NewRefcounting(mir.Inc(t, 1), mir.NewJump(0, t)),
	}}

	u.Procs = []*mir.Proc{
		{Name: mainSym, Args: []mir.Param{{Layout: str, Sym: s}}, Body: mainBody, RetLayout: unitL},
		{Name: fwdSym, Args: []mir.Param{{Layout: str, Sym: t}}, Body: fwdBody, RetLayout: unitL},
	}
	return &Sample{Unit: u, Main: mainSym, Value: s}
}

// LayoutSample builds `main(v: L): <mods on v>; ret {}` where L is produced by
// build against the unit's interner. Inc modifications add 1.
func LayoutSample(build func(in *layout.Interner) layout.LayoutID, mods ...mir.ModifyKind) *Sample {
	u := mir.NewUnit("layouts", 1)
	l := build(u.Layouts)
	unitL := u.Layouts.Common().Unit

	mainSym := u.NewSymbol("main")
	v := u.NewSymbol("v")
	done := u.NewSymbol("done")

	body := mir.NewLet(done, mir.UnitExpr(), unitL, mir.NewRet(done))
	for i := len(mods) - 1; i >= 0; i-- {
		m := mir.ModifyRc{Kind: mods[i], Sym: v}
		if m.Kind == mir.ModifyInc {
			m.Amount = 1
		}
		body = mir.NewRefcounting(m, body)
	}
	u.Procs = []*mir.Proc{
		{Name: mainSym, Args: []mir.Param{{Layout: l, Sym: v}}, Body: body, RetLayout: unitL},
	}
	return &Sample{Unit: u, Main: mainSym, Value: v}
}
