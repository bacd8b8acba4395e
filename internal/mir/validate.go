package mir

import (
	"errors"
	"fmt"

	"rcgen/internal/symbols"
)

// ValidateOptions selects optional checks.
type ValidateOptions struct {
	// RequireExpanded rejects any remaining Refcounting statement.
	RequireExpanded bool
}

// Validate checks unit invariants.
// Returns error if any invariant is violated.
func Validate(u *Unit, opts ValidateOptions) error {
	if u == nil {
		return nil
	}
	var errs []error
	if u.Home == symbols.BuiltinModule {
		errs = append(errs, fmt.Errorf("unit %s: home module m%d is reserved", u.Name, u.Home))
	}
	seen := make(map[symbols.Symbol]bool, len(u.Procs))
	for _, p := range u.Procs {
		if p == nil {
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("proc %s: defined more than once", u.SymbolName(p.Name)))
		}
		seen[p.Name] = true
	}
	for _, p := range u.Procs {
		if p == nil {
			continue
		}
		if err := validateProc(u, p, opts); err != nil {
			errs = append(errs, fmt.Errorf("proc %s: %w", u.SymbolName(p.Name), err))
		}
	}
	for _, h := range u.Helpers {
		if _, ok := u.ProcByName(h.Name); !ok {
			errs = append(errs, fmt.Errorf("helper %s: declared but never defined", u.SymbolName(h.Name)))
		}
	}
	return errors.Join(errs...)
}

type validator struct {
	u    *Unit
	opts ValidateOptions
	errs []error

	bound map[symbols.Symbol]int
	stack []symbols.Symbol
	joins map[JoinPointID]int // id -> param count
}

func validateProc(u *Unit, p *Proc, opts ValidateOptions) error {
	v := &validator{
		u:     u,
		opts:  opts,
		bound: make(map[symbols.Symbol]int, 16),
		joins: make(map[JoinPointID]int),
	}
	for _, a := range p.Args {
		v.bind(a.Sym)
	}
	if p.Body == nil {
		return errors.New("missing body")
	}
	v.walk(p.Body)
	return errors.Join(v.errs...)
}

func (v *validator) bind(s symbols.Symbol) {
	v.bound[s]++
	v.stack = append(v.stack, s)
}

func (v *validator) restore(mark int) {
	for i := len(v.stack) - 1; i >= mark; i-- {
		s := v.stack[i]
		if v.bound[s]--; v.bound[s] == 0 {
			delete(v.bound, s)
		}
	}
	v.stack = v.stack[:mark]
}

func (v *validator) use(s symbols.Symbol, where string) {
	if v.bound[s] == 0 {
		v.errs = append(v.errs, fmt.Errorf("%s: use of unbound symbol %s", where, v.u.SymbolName(s)))
	}
}

func (v *validator) walk(s *Stmt) {
	for {
		if s == nil {
			v.errs = append(v.errs, errors.New("statement chain ends without ret, switch or jump"))
			return
		}
		switch s.Kind {
		case StmtLet:
			v.expr(&s.Let.Expr, v.u.SymbolName(s.Let.Sym))
			if v.bound[s.Let.Sym] > 0 {
				v.errs = append(v.errs, fmt.Errorf("let %s: symbol already bound", v.u.SymbolName(s.Let.Sym)))
			}
			v.bind(s.Let.Sym)
			s = s.Let.Next
		case StmtRefcounting:
			m := s.Refcounting.Modify
			if v.opts.RequireExpanded {
				v.errs = append(v.errs, fmt.Errorf("unexpanded %s %s", m.Kind, v.u.SymbolName(m.Sym)))
			}
			v.use(m.Sym, m.Kind.String())
			s = s.Refcounting.Next
		case StmtRet:
			v.use(s.Ret.Sym, "ret")
			return
		case StmtSwitch:
			v.use(s.Switch.Cond, "switch")
			seen := make(map[uint64]bool, len(s.Switch.Branches))
			for _, b := range s.Switch.Branches {
				if seen[b.Value] {
					v.errs = append(v.errs, fmt.Errorf("switch %s: duplicate branch %d", v.u.SymbolName(s.Switch.Cond), b.Value))
				}
				seen[b.Value] = true
				mark := len(v.stack)
				v.walk(b.Body)
				v.restore(mark)
			}
			mark := len(v.stack)
			v.walk(s.Switch.Default)
			v.restore(mark)
			return
		case StmtJoin:
			j := &s.Join
			mark := len(v.stack)
			for _, p := range j.Params {
				v.bind(p.Sym)
			}
			prev, shadowed := v.joins[j.ID]
			v.joins[j.ID] = len(j.Params)
			v.walk(j.Body)
			v.restore(mark)
			v.walk(j.Remainder)
			if shadowed {
				v.joins[j.ID] = prev
			} else {
				delete(v.joins, j.ID)
			}
			return
		case StmtJump:
			n, ok := v.joins[s.Jump.ID]
			if !ok {
				v.errs = append(v.errs, fmt.Errorf("jump to undeclared jp%d", s.Jump.ID))
			} else if n != len(s.Jump.Args) {
				v.errs = append(v.errs, fmt.Errorf("jump jp%d: %d args, want %d", s.Jump.ID, len(s.Jump.Args), n))
			}
			for _, a := range s.Jump.Args {
				v.use(a, "jump")
			}
			return
		default:
			v.errs = append(v.errs, fmt.Errorf("unknown statement kind %d", s.Kind))
			return
		}
	}
}

func (v *validator) expr(e *Expr, where string) {
	for _, a := range e.Uses() {
		v.use(a, where)
	}
	if e.Kind != ExprCall {
		return
	}
	c := &e.Call
	switch c.Kind {
	case CallByName:
		if len(c.ArgLayouts) != len(c.Args) {
			v.errs = append(v.errs, fmt.Errorf("%s: call %s passes %d args with %d layouts",
				where, v.u.SymbolName(c.Name), len(c.Args), len(c.ArgLayouts)))
		}
		callee, ok := v.u.ProcByName(c.Name)
		if !ok {
			v.errs = append(v.errs, fmt.Errorf("%s: call to undefined proc %s", where, v.u.SymbolName(c.Name)))
			return
		}
		if len(callee.Args) != len(c.Args) {
			v.errs = append(v.errs, fmt.Errorf("%s: call %s passes %d args, want %d",
				where, v.u.SymbolName(c.Name), len(c.Args), len(callee.Args)))
		}
	case CallLowLevel:
		if want := c.Op.Arity(); want != len(c.Args) {
			v.errs = append(v.errs, fmt.Errorf("%s: lowlevel %s takes %d args, got %d", where, c.Op, want, len(c.Args)))
		}
	}
}
