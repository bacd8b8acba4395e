package symbols

import (
	"fmt"

	"fortio.org/safecast"
)

// IdentIDs is a module's name table. It is shared by every pass that mints
// named symbols for the module so that generated names never collide with
// user-defined ones.
type IdentIDs struct {
	names []string
}

// NewIdentIDs creates an empty table. ID 0 is reserved.
func NewIdentIDs() *IdentIDs {
	return &IdentIDs{names: []string{""}}
}

// Add appends name and returns its fresh ID. Names may repeat; IDs never do.
func (t *IdentIDs) Add(name string) IdentID {
	n, err := safecast.Conv[uint32](len(t.names))
	if err != nil || IdentID(n)&tempBit != 0 {
		panic(fmt.Errorf("symbols: ident table overflow: %w", err))
	}
	t.names = append(t.names, name)
	return IdentID(n)
}

// Name returns the text of id.
func (t *IdentIDs) Name(id IdentID) (string, bool) {
	if t == nil || id == 0 || int(id) >= len(t.names) {
		return "", false
	}
	return t.names[id], true
}

// Len reports the number of names in the table.
func (t *IdentIDs) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names) - 1
}

// Names returns a copy of the table in ID order, index 0 included.
func (t *IdentIDs) Names() []string {
	return append([]string(nil), t.names...)
}

// FromNames rebuilds a table saved with Names.
func FromNames(names []string) *IdentIDs {
	if len(names) == 0 {
		return NewIdentIDs()
	}
	return &IdentIDs{names: append([]string(nil), names...)}
}
