package mir

import (
	"rcgen/internal/layout"
	"rcgen/internal/symbols"
)

// Builder accumulates a straight-line run of Let statements and links them
// onto a single continuation when finished.
type Builder struct {
	lets []LetStmt
}

// Let appends `let sym: l = expr` and returns sym.
func (b *Builder) Let(sym symbols.Symbol, expr Expr, l layout.LayoutID) symbols.Symbol {
	b.lets = append(b.lets, LetStmt{Sym: sym, Expr: expr, Layout: l})
	return sym
}

// Len reports the number of pending statements.
func (b *Builder) Len() int {
	return len(b.lets)
}

// Finish links the pending statements in append order, ending in tail, and
// resets the builder. With nothing pending it returns tail.
func (b *Builder) Finish(tail *Stmt) *Stmt {
	next := tail
	for i := len(b.lets) - 1; i >= 0; i-- {
		let := b.lets[i]
		let.Next = next
		next = &Stmt{Kind: StmtLet, Let: let}
	}
	b.lets = b.lets[:0]
	return next
}
