package testkit

import (
	"fmt"

	"rcgen/internal/mir"
)

// CheckExpanded verifies that no Refcounting statement survives in u and that
// every helper declaration has a body.
func CheckExpanded(u *mir.Unit) error {
	for _, p := range u.Procs {
		var err error
		Walk(p.Body, func(s *mir.Stmt) {
			if err == nil && s.Kind == mir.StmtRefcounting {
				err = fmt.Errorf("proc %s: unexpanded %s %s", u.SymbolName(p.Name),
					s.Refcounting.Modify.Kind, u.SymbolName(s.Refcounting.Modify.Sym))
			}
		})
		if err != nil {
			return err
		}
	}
	for _, h := range u.Helpers {
		if _, ok := u.ProcByName(h.Name); !ok {
			return fmt.Errorf("helper %s has no body", u.SymbolName(h.Name))
		}
	}
	return nil
}

// Walk visits every statement reachable from s in program order.
func Walk(s *mir.Stmt, visit func(*mir.Stmt)) {
	for s != nil {
		visit(s)
		succ := s.Successors()
		switch len(succ) {
		case 0:
			return
		case 1:
			s = succ[0]
		default:
			for _, next := range succ[:len(succ)-1] {
				Walk(next, visit)
			}
			s = succ[len(succ)-1]
		}
	}
}

// LowLevelOps lists the low-level calls reachable from s in program order.
func LowLevelOps(s *mir.Stmt) []mir.LowLevel {
	var ops []mir.LowLevel
	Walk(s, func(st *mir.Stmt) {
		if st.Kind == mir.StmtLet && st.Let.Expr.Kind == mir.ExprCall && st.Let.Expr.Call.Kind == mir.CallLowLevel {
			ops = append(ops, st.Let.Expr.Call.Op)
		}
	})
	return ops
}

// ByNameCalls lists the by-name calls reachable from s in program order.
func ByNameCalls(s *mir.Stmt) []mir.Call {
	var calls []mir.Call
	Walk(s, func(st *mir.Stmt) {
		if st.Kind == mir.StmtLet && st.Let.Expr.Kind == mir.ExprCall && st.Let.Expr.Call.Kind == mir.CallByName {
			calls = append(calls, st.Let.Expr.Call)
		}
	})
	return calls
}
