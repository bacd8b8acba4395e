package mir

import (
	"rcgen/internal/layout"
	"rcgen/internal/symbols"
)

// ExprKind distinguishes expression types.
type ExprKind uint8

const (
	// ExprLiteral is a constant.
	ExprLiteral ExprKind = iota
	// ExprCall is a by-name or low-level call.
	ExprCall
	// ExprStruct builds a struct from symbols; no fields is unit.
	ExprStruct
	// ExprStructAtIndex reads one field of a struct value.
	ExprStructAtIndex
)

// Expr is the right-hand side of a Let.
type Expr struct {
	Kind ExprKind

	Literal       Literal
	Call          Call
	Struct        []symbols.Symbol
	StructAtIndex StructAtIndex
}

// LiteralKind distinguishes literal types.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralBool
	LiteralStr
)

// Literal is a constant value.
type Literal struct {
	Kind LiteralKind
	Int  int64
	Bool bool
	Str  string
}

// CallKind distinguishes call targets.
type CallKind uint8

const (
	// CallByName calls a procedure of the unit.
	CallByName CallKind = iota
	// CallLowLevel calls a runtime primitive.
	CallLowLevel
)

// Call is a call expression.
type Call struct {
	Kind CallKind

	// CallByName
	Name       symbols.Symbol
	RetLayout  layout.LayoutID
	ArgLayouts []layout.LayoutID
	SpecID     CallSpecID

	// CallLowLevel
	Op         LowLevel
	UpdateMode UpdateModeID

	Args []symbols.Symbol
}

// StructAtIndex reads field Index of Structure, whose fields have FieldLayouts.
type StructAtIndex struct {
	Index        uint64
	FieldLayouts []layout.LayoutID
	Structure    symbols.Symbol
}

// IntLiteral returns an integer literal expression.
func IntLiteral(v int64) Expr {
	return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LiteralInt, Int: v}}
}

// UnitExpr returns the empty struct expression.
func UnitExpr() Expr {
	return Expr{Kind: ExprStruct}
}

// CallByNameExpr returns a by-name call expression.
func CallByNameExpr(name symbols.Symbol, ret layout.LayoutID, argLayouts []layout.LayoutID, args ...symbols.Symbol) Expr {
	return Expr{Kind: ExprCall, Call: Call{
		Kind:       CallByName,
		Name:       name,
		RetLayout:  ret,
		ArgLayouts: argLayouts,
		SpecID:     BackendDummySpec,
		Args:       args,
	}}
}

// LowLevelExpr returns a low-level call expression.
func LowLevelExpr(op LowLevel, args ...symbols.Symbol) Expr {
	return Expr{Kind: ExprCall, Call: Call{
		Kind:       CallLowLevel,
		Op:         op,
		UpdateMode: BackendDummyUpdate,
		Args:       args,
	}}
}

// FieldExpr returns a StructAtIndex expression.
func FieldExpr(structure symbols.Symbol, index uint64, fieldLayouts []layout.LayoutID) Expr {
	return Expr{Kind: ExprStructAtIndex, StructAtIndex: StructAtIndex{
		Index:        index,
		FieldLayouts: fieldLayouts,
		Structure:    structure,
	}}
}

// Uses returns the symbols the expression reads.
func (e *Expr) Uses() []symbols.Symbol {
	switch e.Kind {
	case ExprCall:
		return e.Call.Args
	case ExprStruct:
		return e.Struct
	case ExprStructAtIndex:
		return []symbols.Symbol{e.StructAtIndex.Structure}
	default:
		return nil
	}
}
