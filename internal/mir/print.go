package mir

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"rcgen/internal/layout"
	"rcgen/internal/symbols"
)

// DumpOptions configures unit dumping.
type DumpOptions struct {
	Color   bool
	Layouts bool // include the layout table
}

type dumper struct {
	w    io.Writer
	u    *Unit
	head *color.Color
	kw   *color.Color
}

// DumpUnit writes a human-readable representation of a unit.
func DumpUnit(w io.Writer, u *Unit, opts DumpOptions) error {
	if w == nil || u == nil {
		return nil
	}
	d := &dumper{
		w:    w,
		u:    u,
		head: color.New(color.FgCyan, color.Bold),
		kw:   color.New(color.FgMagenta),
	}
	if opts.Color {
		d.head.EnableColor()
		d.kw.EnableColor()
	} else {
		d.head.DisableColor()
		d.kw.DisableColor()
	}

	fmt.Fprintf(w, "%s %s home=m%d\n", d.head.Sprint("unit"), u.Name, u.Home)
	if opts.Layouts && u.Layouts != nil {
		all := u.Layouts.All()
		fmt.Fprintf(w, "layouts=%d\n", len(all))
		for i := range all {
			fmt.Fprintf(w, "  L%d: %s\n", i+1, u.Layouts.Name(layout.LayoutID(i+1)))
		}
	}
	fmt.Fprintf(w, "procs=%d\n", len(u.Procs))
	for _, p := range u.Procs {
		if p == nil {
			continue
		}
		d.proc(p)
	}
	if len(u.Helpers) > 0 {
		fmt.Fprintf(w, "\nhelpers=%d\n", len(u.Helpers))
		for _, h := range u.Helpers {
			fmt.Fprintf(w, "  %s(%s) -> %s\n", u.SymbolName(h.Name), d.layoutList(h.Layout.Arguments), d.layoutName(h.Layout.Result))
		}
	}
	return nil
}

// FormatStmt renders a statement chain without the surrounding proc.
func FormatStmt(u *Unit, s *Stmt) string {
	var sb strings.Builder
	d := &dumper{w: &sb, u: u, head: color.New(), kw: color.New()}
	d.head.DisableColor()
	d.kw.DisableColor()
	d.stmt(s, 0)
	return sb.String()
}

func (d *dumper) proc(p *Proc) {
	params := make([]string, 0, len(p.Args))
	for _, a := range p.Args {
		params = append(params, d.u.SymbolName(a.Sym)+": "+d.layoutName(a.Layout))
	}
	var flags []string
	if p.SelfRecursive == IsSelfRecursive {
		flags = append(flags, "rec")
	}
	if p.MustOwnArguments {
		flags = append(flags, "own")
	}
	if p.HostExposed {
		flags = append(flags, "exposed")
	}
	suffix := ""
	if len(flags) > 0 {
		suffix = " [" + strings.Join(flags, ",") + "]"
	}
	fmt.Fprintf(d.w, "\n%s %s(%s) -> %s%s:\n", d.head.Sprint("proc"), d.u.SymbolName(p.Name),
		strings.Join(params, ", "), d.layoutName(p.RetLayout), suffix)
	d.stmt(p.Body, 1)
}

func (d *dumper) stmt(s *Stmt, depth int) {
	pad := strings.Repeat("  ", depth)
	for s != nil {
		switch s.Kind {
		case StmtLet:
			fmt.Fprintf(d.w, "%s%s %s: %s = %s\n", pad, d.kw.Sprint("let"), d.u.SymbolName(s.Let.Sym),
				d.layoutName(s.Let.Layout), d.expr(&s.Let.Expr))
			s = s.Let.Next
		case StmtRefcounting:
			m := s.Refcounting.Modify
			if m.Kind == ModifyInc {
				fmt.Fprintf(d.w, "%s%s %s %d\n", pad, d.kw.Sprint(m.Kind.String()), d.u.SymbolName(m.Sym), m.Amount)
			} else {
				fmt.Fprintf(d.w, "%s%s %s\n", pad, d.kw.Sprint(m.Kind.String()), d.u.SymbolName(m.Sym))
			}
			s = s.Refcounting.Next
		case StmtRet:
			fmt.Fprintf(d.w, "%s%s %s\n", pad, d.kw.Sprint("ret"), d.u.SymbolName(s.Ret.Sym))
			return
		case StmtSwitch:
			sw := &s.Switch
			fmt.Fprintf(d.w, "%s%s %s: %s -> %s\n", pad, d.kw.Sprint("switch"), d.u.SymbolName(sw.Cond),
				d.layoutName(sw.CondLayout), d.layoutName(sw.RetLayout))
			for _, b := range sw.Branches {
				fmt.Fprintf(d.w, "%s  %d =>\n", pad, b.Value)
				d.stmt(b.Body, depth+2)
			}
			fmt.Fprintf(d.w, "%s  default =>\n", pad)
			d.stmt(sw.Default, depth+2)
			return
		case StmtJoin:
			j := &s.Join
			params := make([]string, 0, len(j.Params))
			for _, p := range j.Params {
				params = append(params, d.u.SymbolName(p.Sym)+": "+d.layoutName(p.Layout))
			}
			fmt.Fprintf(d.w, "%s%s jp%d(%s):\n", pad, d.kw.Sprint("join"), j.ID, strings.Join(params, ", "))
			d.stmt(j.Body, depth+1)
			s = j.Remainder
		case StmtJump:
			fmt.Fprintf(d.w, "%s%s jp%d(%s)\n", pad, d.kw.Sprint("jump"), s.Jump.ID, d.symList(s.Jump.Args))
			return
		default:
			fmt.Fprintf(d.w, "%s<%s>\n", pad, s.Kind)
			return
		}
	}
}

func (d *dumper) expr(e *Expr) string {
	switch e.Kind {
	case ExprLiteral:
		switch e.Literal.Kind {
		case LiteralBool:
			return fmt.Sprintf("%t", e.Literal.Bool)
		case LiteralStr:
			return fmt.Sprintf("%q", e.Literal.Str)
		default:
			return fmt.Sprintf("%d", e.Literal.Int)
		}
	case ExprCall:
		c := &e.Call
		if c.Kind == CallLowLevel {
			return fmt.Sprintf("lowlevel %s(%s)", c.Op, d.symList(c.Args))
		}
		return fmt.Sprintf("call %s(%s)", d.u.SymbolName(c.Name), d.symList(c.Args))
	case ExprStruct:
		return "{" + d.symList(e.Struct) + "}"
	case ExprStructAtIndex:
		return fmt.Sprintf("%s.%d", d.u.SymbolName(e.StructAtIndex.Structure), e.StructAtIndex.Index)
	}
	return "<expr?>"
}

func (d *dumper) symList(syms []symbols.Symbol) string {
	parts := make([]string, 0, len(syms))
	for _, s := range syms {
		parts = append(parts, d.u.SymbolName(s))
	}
	return strings.Join(parts, ", ")
}

func (d *dumper) layoutList(ids []layout.LayoutID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, d.layoutName(id))
	}
	return strings.Join(parts, ", ")
}

func (d *dumper) layoutName(id layout.LayoutID) string {
	if d.u == nil || d.u.Layouts == nil {
		return fmt.Sprintf("L%d", id)
	}
	return d.u.Layouts.Name(id)
}
