package layout

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Interner provides stable LayoutIDs by hashing structural descriptors.
// Children must be interned before their parents, so a child's ID is always
// smaller than its parent's and the table never contains a literal cycle.
type Interner struct {
	layouts []Layout
	index   map[layoutKey]LayoutID
	common  Common
}

// Common stores LayoutIDs the refcount pass refers to constantly.
type Common struct {
	Unit   LayoutID
	Bool   LayoutID
	U32    LayoutID
	Str    LayoutID
	RecPtr LayoutID
}

// NewInterner constructs an interner seeded with the common layouts.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[layoutKey]LayoutID, 64),
	}
	in.layouts = append(in.layouts, Layout{}) // reserve 0 as NoLayoutID
	in.common.Unit = in.Intern(Struct())
	in.common.Bool = in.Intern(Bool())
	in.common.U32 = in.Intern(Uint(Width32))
	in.common.Str = in.Intern(Str())
	in.common.RecPtr = in.Intern(RecursivePointer())
	return in
}

// Common returns the seeded layout IDs.
func (in *Interner) Common() Common {
	return in.common
}

// Len reports the number of interned layouts, excluding the reserved slot.
func (in *Interner) Len() int {
	return len(in.layouts) - 1
}

// Intern returns the ID of l, adding it when the shape is new.
// It panics when l references a child that has not been interned.
func (in *Interner) Intern(l Layout) LayoutID {
	if l.Kind == KindInvalid {
		return NoLayoutID
	}
	key := in.keyOf(l)
	if id, ok := in.index[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.layouts))
	if err != nil {
		panic(fmt.Errorf("len(layouts) overflow: %w", err))
	}
	id := LayoutID(n)
	in.layouts = append(in.layouts, cloneLayout(l))
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for id.
func (in *Interner) Lookup(id LayoutID) (Layout, error) {
	if in == nil || id == NoLayoutID || int(id) >= len(in.layouts) {
		return Layout{}, &LayoutError{Kind: LayoutErrUnknownID, ID: id}
	}
	return in.layouts[id], nil
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id LayoutID) Layout {
	l, err := in.Lookup(id)
	if err != nil {
		panic(err)
	}
	return l
}

// All returns every interned layout in ID order.
func (in *Interner) All() []Layout {
	out := make([]Layout, len(in.layouts)-1)
	copy(out, in.layouts[1:])
	return out
}

// IsRefcounted reports whether values of this layout own a heap allocation,
// directly or through any child.
func (in *Interner) IsRefcounted(id LayoutID) bool {
	l, err := in.Lookup(id)
	if err != nil {
		return false
	}
	switch l.Kind {
	case KindBuiltin:
		return l.IsHeapBuiltin()
	case KindStruct, KindLambdaSet:
		for _, f := range l.Fields {
			if in.IsRefcounted(f) {
				return true
			}
		}
		return false
	case KindUnion:
		for _, tag := range l.Tags {
			for _, f := range tag {
				if in.IsRefcounted(f) {
					return true
				}
			}
		}
		return false
	case KindRecursivePointer:
		return true
	default:
		return false
	}
}

// IsRecursive reports whether the layout reaches a RecursivePointer.
func (in *Interner) IsRecursive(id LayoutID) bool {
	l, err := in.Lookup(id)
	if err != nil {
		return false
	}
	switch l.Kind {
	case KindRecursivePointer:
		return true
	case KindBuiltin:
		return (l.Elem != NoLayoutID && in.IsRecursive(l.Elem)) ||
			(l.Value != NoLayoutID && in.IsRecursive(l.Value))
	case KindStruct, KindLambdaSet:
		for _, f := range l.Fields {
			if in.IsRecursive(f) {
				return true
			}
		}
	case KindUnion:
		for _, tag := range l.Tags {
			for _, f := range tag {
				if in.IsRecursive(f) {
					return true
				}
			}
		}
	}
	return false
}

// Name renders a layout for dumps and diagnostics.
func (in *Interner) Name(id LayoutID) string {
	l, err := in.Lookup(id)
	if err != nil {
		return fmt.Sprintf("layout#%d", id)
	}
	switch l.Kind {
	case KindBuiltin:
		switch l.Builtin {
		case BuiltinInt:
			if l.Signed {
				return "I" + strconv.Itoa(int(l.Width))
			}
			return "U" + strconv.Itoa(int(l.Width))
		case BuiltinFloat:
			return "F" + strconv.Itoa(int(l.Width))
		case BuiltinList, BuiltinSet:
			return l.Builtin.String() + "(" + in.Name(l.Elem) + ")"
		case BuiltinDict:
			return "Dict(" + in.Name(l.Elem) + ", " + in.Name(l.Value) + ")"
		default:
			return l.Builtin.String()
		}
	case KindStruct:
		return "{" + in.names(l.Fields) + "}"
	case KindLambdaSet:
		return "LambdaSet{" + in.names(l.Fields) + "}"
	case KindUnion:
		parts := make([]string, 0, len(l.Tags))
		for _, tag := range l.Tags {
			parts = append(parts, "["+in.names(tag)+"]")
		}
		return "Union[" + strings.Join(parts, " ") + "]"
	case KindRecursivePointer:
		return "*self"
	}
	return "?"
}

func (in *Interner) names(ids []LayoutID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, in.Name(id))
	}
	return strings.Join(parts, ", ")
}

type layoutKey struct {
	Kind    Kind
	Builtin Builtin
	Width   Width
	Signed  bool
	Elem    LayoutID
	Value   LayoutID
	Payload string
}

func (in *Interner) keyOf(l Layout) layoutKey {
	in.checkChild(l.Elem)
	in.checkChild(l.Value)
	var sb strings.Builder
	writeIDs := func(ids []LayoutID) {
		for i, id := range ids {
			in.checkChild(id)
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatUint(uint64(id), 10))
		}
	}
	switch l.Kind {
	case KindStruct, KindLambdaSet:
		writeIDs(l.Fields)
	case KindUnion:
		sb.WriteString(strconv.Itoa(len(l.Tags)))
		sb.WriteByte(':')
		for i, tag := range l.Tags {
			if i > 0 {
				sb.WriteByte('|')
			}
			writeIDs(tag)
		}
	}
	return layoutKey{
		Kind:    l.Kind,
		Builtin: l.Builtin,
		Width:   l.Width,
		Signed:  l.Signed,
		Elem:    l.Elem,
		Value:   l.Value,
		Payload: sb.String(),
	}
}

func (in *Interner) checkChild(id LayoutID) {
	if id == NoLayoutID {
		return
	}
	if int(id) >= len(in.layouts) {
		panic(&LayoutError{Kind: LayoutErrDanglingChild, ID: id})
	}
}

func cloneLayout(l Layout) Layout {
	if l.Fields != nil {
		l.Fields = append([]LayoutID(nil), l.Fields...)
	}
	if l.Tags != nil {
		tags := make([][]LayoutID, len(l.Tags))
		for i, tag := range l.Tags {
			tags[i] = append([]LayoutID(nil), tag...)
		}
		l.Tags = tags
	}
	return l
}
