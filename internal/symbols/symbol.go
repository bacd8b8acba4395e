package symbols

import "fmt"

// ModuleID identifies one compilation unit's naming scope.
type ModuleID uint32

// IdentID indexes a name within a module's IdentIDs table.
type IdentID uint32

// BuiltinModule owns the reserved symbols shared by every unit.
const BuiltinModule ModuleID = 0

// tempBit reserves the upper half of the IdentID space for pass-local
// temporaries, which never enter the IdentIDs table.
const tempBit IdentID = 1 << 31

// Symbol names a value or procedure within a module.
type Symbol struct {
	Module ModuleID
	Ident  IdentID
}

var (
	// Arg1 and Arg2 name the parameters of generated helper procedures.
	Arg1 = Symbol{Module: BuiltinModule, Ident: 1}
	Arg2 = Symbol{Module: BuiltinModule, Ident: 2}
)

// NoSymbol is the zero Symbol.
var NoSymbol = Symbol{}

// New returns the symbol for ident in module.
func New(module ModuleID, ident IdentID) Symbol {
	return Symbol{Module: module, Ident: ident}
}

// TempSymbol returns the n-th temporary of module.
func TempSymbol(module ModuleID, n uint32) Symbol {
	return Symbol{Module: module, Ident: tempBit | IdentID(n)&^tempBit}
}

// IsTemp reports whether s was produced by TempSymbol.
func (s Symbol) IsTemp() bool {
	return s.Ident&tempBit != 0
}

// IsValid reports whether s is not the zero symbol.
func (s Symbol) IsValid() bool {
	return s != NoSymbol
}

func (s Symbol) String() string {
	switch {
	case s == NoSymbol:
		return "_"
	case s == Arg1:
		return "#arg1"
	case s == Arg2:
		return "#arg2"
	case s.IsTemp():
		return fmt.Sprintf("%%%d", uint32(s.Ident&^tempBit))
	default:
		return fmt.Sprintf("m%d.%d", s.Module, s.Ident)
	}
}
