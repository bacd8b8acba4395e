package symbols

import "testing"

func TestIdentIDs(t *testing.T) {
	ids := NewIdentIDs()
	a := ids.Add("len")
	b := ids.Add("len")
	if a == 0 || a == b {
		t.Fatalf("Add must return fresh non-zero IDs, got %d and %d", a, b)
	}
	if name, ok := ids.Name(b); !ok || name != "len" {
		t.Fatalf("Name(%d) = %q, %v", b, name, ok)
	}
	if _, ok := ids.Name(0); ok {
		t.Fatalf("ID 0 is reserved")
	}
	if ids.Len() != 2 {
		t.Fatalf("Len = %d, want 2", ids.Len())
	}

	restored := FromNames(ids.Names())
	if name, ok := restored.Name(a); !ok || name != "len" || restored.Len() != 2 {
		t.Fatalf("FromNames lost entries")
	}
	if FromNames(nil).Len() != 0 {
		t.Fatalf("FromNames(nil) must be empty")
	}
}

func TestTempSymbols(t *testing.T) {
	ids := NewIdentIDs()
	named := New(3, ids.Add("x"))
	tmp := TempSymbol(3, uint32(named.Ident))
	if !tmp.IsTemp() || named.IsTemp() {
		t.Fatalf("temp bit misreported")
	}
	if tmp == named {
		t.Fatalf("temporary %v collides with named %v", tmp, named)
	}
	if TempSymbol(3, 0) == TempSymbol(3, 1) {
		t.Fatalf("distinct counters must give distinct temporaries")
	}
}

func TestSymbolString(t *testing.T) {
	tests := []struct {
		sym  Symbol
		want string
	}{
		{NoSymbol, "_"},
		{Arg1, "#arg1"},
		{Arg2, "#arg2"},
		{TempSymbol(1, 7), "%7"},
		{New(2, 5), "m2.5"},
	}
	for _, tt := range tests {
		if got := tt.sym.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if NoSymbol.IsValid() || !Arg1.IsValid() {
		t.Fatalf("IsValid misreported")
	}
}
