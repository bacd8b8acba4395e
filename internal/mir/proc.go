package mir

import (
	"rcgen/internal/layout"
	"rcgen/internal/symbols"
)

// SelfRecursive marks whether a procedure calls itself.
type SelfRecursive uint8

const (
	NotSelfRecursive SelfRecursive = iota
	IsSelfRecursive
)

// Proc is a fully bodied procedure.
type Proc struct {
	Name symbols.Symbol
	Args []Param
	Body *Stmt

	ClosureDataLayout layout.LayoutID // NoLayoutID when the proc is not a closure
	RetLayout         layout.LayoutID

	SelfRecursive    SelfRecursive
	MustOwnArguments bool
	HostExposed      bool
}

// ProcLayout is the (argument layouts, result layout) signature of a proc, as
// needed to declare a linker-visible symbol.
type ProcLayout struct {
	Arguments []layout.LayoutID
	Result    layout.LayoutID
}

// Layout returns the signature of p.
func (p *Proc) Layout() ProcLayout {
	args := make([]layout.LayoutID, len(p.Args))
	for i, a := range p.Args {
		args[i] = a.Layout
	}
	return ProcLayout{Arguments: args, Result: p.RetLayout}
}

// Helper is a generated procedure's linker declaration.
type Helper struct {
	Name   symbols.Symbol
	Layout ProcLayout
}
