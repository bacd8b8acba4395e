package layout

// LayoutID is a stable handle for an interned layout. Equal IDs mean equal shapes.
type LayoutID uint32

// NoLayoutID marks an absent layout.
const NoLayoutID LayoutID = 0

// Kind enumerates the layout variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBuiltin
	KindStruct
	KindUnion
	KindLambdaSet
	KindRecursivePointer
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindLambdaSet:
		return "lambdaset"
	case KindRecursivePointer:
		return "recursive_pointer"
	default:
		return "invalid"
	}
}

// Builtin enumerates the builtin layouts.
type Builtin uint8

const (
	BuiltinNone Builtin = iota
	BuiltinBool
	BuiltinInt
	BuiltinFloat
	// BuiltinStr is a heap-boxed string with an inline small-string encoding.
	BuiltinStr
	// BuiltinList is a heap-boxed homogeneous sequence.
	BuiltinList
	// BuiltinDict and BuiltinSet are heap-boxed associative structures.
	BuiltinDict
	BuiltinSet
)

func (b Builtin) String() string {
	switch b {
	case BuiltinBool:
		return "Bool"
	case BuiltinInt:
		return "Int"
	case BuiltinFloat:
		return "Float"
	case BuiltinStr:
		return "Str"
	case BuiltinList:
		return "List"
	case BuiltinDict:
		return "Dict"
	case BuiltinSet:
		return "Set"
	default:
		return "?"
	}
}

// Width is the bit width of a numeric builtin.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
	Width128 Width = 128
)

// Bytes returns the in-memory size of a value of this width.
func (w Width) Bytes() int {
	return int(w) / 8
}

// Layout is the physical representation of a value.
//
// Children are referenced by LayoutID. A layout that refers to itself does so
// through a RecursivePointer child, which the consuming walk resolves against
// the nearest enclosing union.
type Layout struct {
	Kind    Kind
	Builtin Builtin

	Width  Width // Int, Float
	Signed bool  // Int

	Elem  LayoutID // List, Set elements; Dict keys
	Value LayoutID // Dict values

	Fields []LayoutID   // Struct fields, LambdaSet captures
	Tags   [][]LayoutID // Union tag payloads
}

// Bool returns the boolean layout.
func Bool() Layout { return Layout{Kind: KindBuiltin, Builtin: BuiltinBool} }

// Int returns a signed integer layout of the given width.
func Int(w Width) Layout {
	return Layout{Kind: KindBuiltin, Builtin: BuiltinInt, Width: w, Signed: true}
}

// Uint returns an unsigned integer layout of the given width.
func Uint(w Width) Layout {
	return Layout{Kind: KindBuiltin, Builtin: BuiltinInt, Width: w}
}

// Float returns a floating point layout of the given width.
func Float(w Width) Layout {
	return Layout{Kind: KindBuiltin, Builtin: BuiltinFloat, Width: w}
}

// Str returns the string layout.
func Str() Layout { return Layout{Kind: KindBuiltin, Builtin: BuiltinStr} }

// List returns a list layout over elem.
func List(elem LayoutID) Layout {
	return Layout{Kind: KindBuiltin, Builtin: BuiltinList, Elem: elem}
}

// Set returns a set layout over elem.
func Set(elem LayoutID) Layout {
	return Layout{Kind: KindBuiltin, Builtin: BuiltinSet, Elem: elem}
}

// Dict returns a dictionary layout.
func Dict(key, value LayoutID) Layout {
	return Layout{Kind: KindBuiltin, Builtin: BuiltinDict, Elem: key, Value: value}
}

// Struct returns a struct layout with the given fields. An empty struct is unit.
func Struct(fields ...LayoutID) Layout {
	return Layout{Kind: KindStruct, Fields: fields}
}

// Union returns a tagged union layout.
func Union(tags ...[]LayoutID) Layout {
	return Layout{Kind: KindUnion, Tags: tags}
}

// LambdaSet returns a closure-capture record layout.
func LambdaSet(captures ...LayoutID) Layout {
	return Layout{Kind: KindLambdaSet, Fields: captures}
}

// RecursivePointer returns the recursion placeholder layout.
func RecursivePointer() Layout { return Layout{Kind: KindRecursivePointer} }

// IsHeapBuiltin reports whether the layout is a builtin that owns a heap allocation.
func (l Layout) IsHeapBuiltin() bool {
	if l.Kind != KindBuiltin {
		return false
	}
	switch l.Builtin {
	case BuiltinStr, BuiltinList, BuiltinDict, BuiltinSet:
		return true
	default:
		return false
	}
}

// IsUnit reports whether the layout is the empty struct.
func (l Layout) IsUnit() bool {
	return l.Kind == KindStruct && len(l.Fields) == 0
}
