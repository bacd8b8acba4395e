package refcount_test

import (
	"testing"

	"rcgen/internal/layout"
	"rcgen/internal/mir"
	"rcgen/internal/refcount"
	"rcgen/internal/symbols"
)

func newStrUnit(t *testing.T) (*mir.Unit, *refcount.Generator, symbols.Symbol) {
	t.Helper()
	u := mir.NewUnit("t", 1)
	return u, refcount.ForUnit(u, layout.X86_64LinuxGNU()), u.NewSymbol("s")
}

func TestExpandIncBindsAmountAndCallsHelper(t *testing.T) {
	u, g, s := newStrUnit(t)
	str := u.Layouts.Common().Str
	tail := mir.NewRet(s)

	head, helper := g.ExpandRefcountStmt(str, mir.Inc(s, 3), tail)

	if head.Kind != mir.StmtLet || head.Let.Expr.Kind != mir.ExprLiteral || head.Let.Expr.Literal.Int != 3 {
		t.Fatalf("expected `let amount = 3`, got %s", mir.FormatStmt(u, head))
	}
	if head.Let.Layout != g.Isize() {
		t.Fatalf("amount has layout %s, want isize", u.Layouts.Name(head.Let.Layout))
	}
	amount := head.Let.Sym

	call := head.Let.Next
	if call.Kind != mir.StmtLet || call.Let.Expr.Kind != mir.ExprCall || call.Let.Expr.Call.Kind != mir.CallByName {
		t.Fatalf("expected a by-name call, got %s", mir.FormatStmt(u, call))
	}
	c := call.Let.Expr.Call
	if len(c.Args) != 2 || c.Args[0] != s || c.Args[1] != amount {
		t.Fatalf("call args = %v, want [s amount]", c.Args)
	}
	if len(c.ArgLayouts) != 2 || c.ArgLayouts[0] != str || c.ArgLayouts[1] != g.Isize() {
		t.Fatalf("call arg layouts = %v", c.ArgLayouts)
	}
	if c.RetLayout != u.Layouts.Common().Unit || call.Let.Layout != u.Layouts.Common().Unit {
		t.Fatalf("helper call must return unit")
	}
	if call.Let.Next != tail {
		t.Fatalf("expansion does not continue with the following statements")
	}

	if helper == nil {
		t.Fatalf("first use must report a helper declaration")
	}
	if helper.Name != c.Name || u.SymbolName(helper.Name) != "#rcInc_str_0" {
		t.Fatalf("helper %s, call target %s", u.SymbolName(helper.Name), u.SymbolName(c.Name))
	}
	if args := helper.Layout.Arguments; len(args) != 2 || args[0] != str || args[1] != g.Isize() {
		t.Fatalf("helper arguments = %v", args)
	}
}

func TestExpandReusesHelper(t *testing.T) {
	u, g, s := newStrUnit(t)
	str := u.Layouts.Common().Str

	first, h1 := g.ExpandRefcountStmt(str, mir.Dec(s), mir.NewRet(s))
	second, h2 := g.ExpandRefcountStmt(str, mir.Dec(s), mir.NewRet(s))
	if h1 == nil || h2 != nil {
		t.Fatalf("helper reported %v then %v, want once", h1, h2)
	}
	if first.Let.Expr.Call.Name != second.Let.Expr.Call.Name {
		t.Fatalf("repeat expansion targets a different procedure")
	}
	if g.Registry().Len() != 1 {
		t.Fatalf("registry holds %d entries, want 1", g.Registry().Len())
	}
}

func TestExpandDecPassesOnlyTheValue(t *testing.T) {
	u, g, s := newStrUnit(t)
	str := u.Layouts.Common().Str
	tail := mir.NewRet(s)

	head, helper := g.ExpandRefcountStmt(str, mir.Dec(s), tail)
	c := head.Let.Expr.Call
	if c.Kind != mir.CallByName || len(c.Args) != 1 || c.Args[0] != s {
		t.Fatalf("expected call(s), got %s", mir.FormatStmt(u, head))
	}
	if head.Let.Next != tail {
		t.Fatalf("dec expansion must be a single statement")
	}
	if helper == nil || u.SymbolName(helper.Name) != "#rcDec_str_0" || len(helper.Layout.Arguments) != 1 {
		t.Fatalf("unexpected helper %+v", helper)
	}
}

func TestExpandDecRefInlines(t *testing.T) {
	u, g, s := newStrUnit(t)
	str := u.Layouts.Common().Str
	tail := mir.NewRet(s)

	head, helper := g.ExpandRefcountStmt(str, mir.DecRef(s), tail)
	if helper != nil {
		t.Fatalf("decref must not declare a helper")
	}
	if g.Registry().Len() != 0 {
		t.Fatalf("decref must not register a specialization")
	}
	getPtr := head.Let.Expr.Call
	if head.Kind != mir.StmtLet || getPtr.Kind != mir.CallLowLevel || getPtr.Op != mir.RefCountGetPtr || getPtr.Args[0] != s {
		t.Fatalf("expected RefCountGetPtr(s), got %s", mir.FormatStmt(u, head))
	}
	dec := head.Let.Next
	if dec.Let.Expr.Call.Op != mir.RefCountDecRef || dec.Let.Expr.Call.Args[0] != head.Let.Sym {
		t.Fatalf("expected RefCountDecRef(ptr), got %s", mir.FormatStmt(u, dec))
	}
	if dec.Let.Next != tail {
		t.Fatalf("decref expansion does not continue with the following statements")
	}
}

func TestExpandTemporariesAreFresh(t *testing.T) {
	u, g, s := newStrUnit(t)
	str := u.Layouts.Common().Str
	seen := make(map[symbols.Symbol]bool)
	for i := 0; i < 4; i++ {
		head, _ := g.ExpandRefcountStmt(str, mir.DecRef(s), mir.NewRet(s))
		for st := head; st.Kind == mir.StmtLet; st = st.Let.Next {
			if seen[st.Let.Sym] {
				t.Fatalf("temporary %v handed out twice", st.Let.Sym)
			}
			if st.Let.Sym == s {
				t.Fatalf("temporary collides with a user symbol")
			}
			seen[st.Let.Sym] = true
		}
	}
}
