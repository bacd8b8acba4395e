package layout

import (
	"errors"
	"testing"
)

func TestInternerCommon(t *testing.T) {
	in := NewInterner()
	c := in.Common()
	for name, id := range map[string]LayoutID{
		"unit": c.Unit, "bool": c.Bool, "u32": c.U32, "str": c.Str, "recptr": c.RecPtr,
	} {
		if id == NoLayoutID {
			t.Fatalf("common layout %s not initialized", name)
		}
	}
	if !in.MustLookup(c.Unit).IsUnit() {
		t.Fatalf("unit layout is not the empty struct")
	}
	if in.Len() != 5 {
		t.Fatalf("expected 5 seeded layouts, got %d", in.Len())
	}
}

func TestInternerStructuralEquality(t *testing.T) {
	in := NewInterner()
	str := in.Common().Str
	i64 := in.Intern(Int(Width64))

	if a, b := in.Intern(Str()), in.Intern(Str()); a != b || a != str {
		t.Fatalf("Str interned to %d and %d, common is %d", a, b, str)
	}
	if in.Intern(List(str)) != in.Intern(List(str)) {
		t.Fatalf("list layouts should be deduplicated")
	}
	if in.Intern(List(str)) == in.Intern(Set(str)) {
		t.Fatalf("list and set must differ")
	}
	if in.Intern(Int(Width64)) == in.Intern(Uint(Width64)) {
		t.Fatalf("signedness must affect identity")
	}
	if in.Intern(Struct(str, i64)) == in.Intern(Struct(i64, str)) {
		t.Fatalf("field order must affect identity")
	}
	if in.Intern(Struct(str)) == in.Intern(LambdaSet(str)) {
		t.Fatalf("struct and lambda set must differ")
	}
	if in.Intern(Union()) == in.Intern(Union([]LayoutID{})) {
		t.Fatalf("a union with one empty tag must differ from an empty union")
	}
	if in.Intern(Union([]LayoutID{str}, []LayoutID{i64})) == in.Intern(Union([]LayoutID{str, i64})) {
		t.Fatalf("tag boundaries must affect identity")
	}
}

func TestInternerCopiesChildren(t *testing.T) {
	in := NewInterner()
	fields := []LayoutID{in.Common().Str}
	id := in.Intern(Struct(fields...))
	fields[0] = in.Common().Bool
	if got := in.MustLookup(id).Fields[0]; got != in.Common().Str {
		t.Fatalf("interned layout aliased the caller's slice: field is %d", got)
	}
}

func TestInternerDanglingChildPanics(t *testing.T) {
	in := NewInterner()
	defer func() {
		r := recover()
		var lerr *LayoutError
		err, ok := r.(error)
		if !ok || !errors.As(err, &lerr) || lerr.Kind != LayoutErrDanglingChild {
			t.Fatalf("expected dangling child panic, got %v", r)
		}
	}()
	in.Intern(List(LayoutID(999)))
}

func TestLookupUnknown(t *testing.T) {
	in := NewInterner()
	for _, id := range []LayoutID{NoLayoutID, 999} {
		_, err := in.Lookup(id)
		var lerr *LayoutError
		if !errors.As(err, &lerr) || lerr.Kind != LayoutErrUnknownID {
			t.Fatalf("Lookup(%d): expected unknown id error, got %v", id, err)
		}
	}
}

func TestIsRefcounted(t *testing.T) {
	in := NewInterner()
	c := in.Common()
	i64 := in.Intern(Int(Width64))
	f64 := in.Intern(Float(Width64))

	tests := []struct {
		name string
		id   LayoutID
		want bool
	}{
		{"bool", c.Bool, false},
		{"int", i64, false},
		{"float", f64, false},
		{"unit", c.Unit, false},
		{"str", c.Str, true},
		{"list", in.Intern(List(i64)), true},
		{"dict", in.Intern(Dict(i64, i64)), true},
		{"set", in.Intern(Set(i64)), true},
		{"plain struct", in.Intern(Struct(i64, c.Bool)), false},
		{"struct with str", in.Intern(Struct(i64, c.Str)), true},
		{"plain union", in.Intern(Union([]LayoutID{i64}, nil)), false},
		{"union with str", in.Intern(Union([]LayoutID{i64}, []LayoutID{c.Str})), true},
		{"lambda set capturing str", in.Intern(LambdaSet(c.Str)), true},
		{"empty lambda set", in.Intern(LambdaSet()), false},
		{"recursive pointer", c.RecPtr, true},
		{"unknown", LayoutID(999), false},
	}
	for _, tt := range tests {
		if got := in.IsRefcounted(tt.id); got != tt.want {
			t.Errorf("%s: IsRefcounted = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsRecursive(t *testing.T) {
	in := NewInterner()
	c := in.Common()
	i64 := in.Intern(Int(Width64))
	cons := in.Intern(Union(nil, []LayoutID{i64, c.RecPtr}))
	if !in.IsRecursive(cons) {
		t.Fatalf("cons list must be recursive")
	}
	if !in.IsRecursive(in.Intern(List(cons))) {
		t.Fatalf("a list of a recursive union must be recursive")
	}
	if in.IsRecursive(c.Str) || in.IsRecursive(in.Intern(Struct(c.Str, i64))) {
		t.Fatalf("flat layouts must not be recursive")
	}
}

func TestName(t *testing.T) {
	in := NewInterner()
	c := in.Common()
	i64 := in.Intern(Int(Width64))
	tests := []struct {
		id   LayoutID
		want string
	}{
		{c.Str, "Str"},
		{c.U32, "U32"},
		{i64, "I64"},
		{in.Intern(Float(Width32)), "F32"},
		{in.Intern(List(c.Str)), "List(Str)"},
		{in.Intern(Dict(c.Str, i64)), "Dict(Str, I64)"},
		{in.Intern(Struct(c.Str, c.Bool)), "{Str, Bool}"},
		{c.Unit, "{}"},
		{in.Intern(Union(nil, []LayoutID{c.RecPtr})), "Union[[] [*self]]"},
		{in.Intern(LambdaSet(i64)), "LambdaSet{I64}"},
		{LayoutID(999), "layout#999"},
	}
	for _, tt := range tests {
		if got := in.Name(tt.id); got != tt.want {
			t.Errorf("Name(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
