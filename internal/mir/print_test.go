package mir

import (
	"bytes"
	"strings"
	"testing"

	"rcgen/internal/layout"
)

func TestDumpUnit(t *testing.T) {
	u := NewUnit("dump", 1)
	c := u.Layouts.Common()
	main := u.NewSymbol("main")
	s := u.NewSymbol("s")
	flag := u.NewSymbol("flag")
	r := u.NewSymbol("r")
	helper := u.NewSymbol("#rcDec_str_0")

	body := NewRefcounting(Inc(s, 3),
		NewLet(flag, Expr{Kind: ExprLiteral, Literal: Literal{Kind: LiteralBool, Bool: true}}, c.Bool,
			&Stmt{Kind: StmtSwitch, Switch: SwitchStmt{
				Cond:       flag,
				CondLayout: c.Bool,
				Branches:   []Branch{{Value: 1, Body: NewRefcounting(Dec(s), NewLet(r, UnitExpr(), c.Unit, NewRet(r)))}},
				Default:    NewRet(s),
				RetLayout:  c.Unit,
			}}))
	u.Procs = []*Proc{{Name: main, Args: []Param{{Layout: c.Str, Sym: s}}, Body: body, RetLayout: c.Unit, HostExposed: true}}
	u.Helpers = []Helper{{Name: helper, Layout: ProcLayout{Arguments: []layout.LayoutID{c.Str}, Result: c.Unit}}}

	var buf bytes.Buffer
	if err := DumpUnit(&buf, u, DumpOptions{Layouts: true}); err != nil {
		t.Fatalf("dump: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"unit dump home=m1",
		"L4: Str",
		"proc main(s: Str) -> {} [exposed]:",
		"  inc s 3",
		"  let flag: Bool = true",
		"  switch flag: Bool -> {}",
		"    1 =>",
		"      dec s",
		"    default =>",
		"helpers=1",
		"#rcDec_str_0(Str) -> {}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump is missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("colorless dump contains escape codes")
	}
}

func TestFormatStmt(t *testing.T) {
	u := NewUnit("fmt", 1)
	c := u.Layouts.Common()
	s := u.NewSymbol("s")
	p := u.NewSymbol("p")
	stmt := NewLet(p, LowLevelExpr(RefCountGetPtr, s), c.RecPtr, NewRet(p))
	got := FormatStmt(u, stmt)
	want := "let p: *self = lowlevel RefCountGetPtr(s)\nret p\n"
	if got != want {
		t.Fatalf("FormatStmt = %q, want %q", got, want)
	}
}
