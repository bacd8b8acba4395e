package mir

import (
	"rcgen/internal/layout"
	"rcgen/internal/symbols"
)

// Unit is one compilation unit: its naming scope, layout table and procedures.
type Unit struct {
	Name    string
	Home    symbols.ModuleID
	Idents  *symbols.IdentIDs
	Layouts *layout.Interner
	Procs   []*Proc

	// Helpers lists the generated procedures in first-use order.
	Helpers []Helper
}

// NewUnit creates an empty unit for module home.
func NewUnit(name string, home symbols.ModuleID) *Unit {
	return &Unit{
		Name:    name,
		Home:    home,
		Idents:  symbols.NewIdentIDs(),
		Layouts: layout.NewInterner(),
	}
}

// NewSymbol adds name to the unit's ident table and returns its symbol.
func (u *Unit) NewSymbol(name string) symbols.Symbol {
	return symbols.New(u.Home, u.Idents.Add(name))
}

// SymbolName returns a printable name for s.
func (u *Unit) SymbolName(s symbols.Symbol) string {
	if u != nil && s.Module == u.Home && !s.IsTemp() {
		if name, ok := u.Idents.Name(s.Ident); ok && name != "" {
			return name
		}
	}
	return s.String()
}

// ProcByName returns the procedure named s.
func (u *Unit) ProcByName(s symbols.Symbol) (*Proc, bool) {
	for _, p := range u.Procs {
		if p != nil && p.Name == s {
			return p, true
		}
	}
	return nil, false
}
