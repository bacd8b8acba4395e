package mir

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"rcgen/internal/layout"
	"rcgen/internal/symbols"
)

// UnitSchemaVersion increments whenever the encoded unit format changes.
const UnitSchemaVersion uint16 = 1

type unitWire struct {
	Schema  uint16
	Name    string
	Home    symbols.ModuleID
	Idents  []string
	Layouts []layout.Layout
	Procs   []*Proc
	Helpers []Helper
}

// EncodeUnit writes u in msgpack form.
func EncodeUnit(w io.Writer, u *Unit) error {
	wire := unitWire{
		Schema:  UnitSchemaVersion,
		Name:    u.Name,
		Home:    u.Home,
		Idents:  u.Idents.Names(),
		Layouts: u.Layouts.All(),
		Procs:   u.Procs,
		Helpers: u.Helpers,
	}
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	return enc.Encode(&wire)
}

// DecodeUnit reads a unit written by EncodeUnit.
func DecodeUnit(r io.Reader) (*Unit, error) {
	var wire unitWire
	if err := msgpack.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode unit: %w", err)
	}
	if wire.Schema != UnitSchemaVersion {
		return nil, fmt.Errorf("decode unit %s: schema %d, want %d", wire.Name, wire.Schema, UnitSchemaVersion)
	}
	u := &Unit{
		Name:    wire.Name,
		Home:    wire.Home,
		Idents:  symbols.FromNames(wire.Idents),
		Layouts: layout.NewInterner(),
		Procs:   wire.Procs,
		Helpers: wire.Helpers,
	}
	if err := restoreLayouts(u.Layouts, wire.Layouts); err != nil {
		return nil, fmt.Errorf("decode unit %s: %w", wire.Name, err)
	}
	return u, nil
}

// restoreLayouts replays the saved table so every saved ID maps to itself.
// The seeded layouts come first in every table, so they intern to the same IDs.
func restoreLayouts(in *layout.Interner, saved []layout.Layout) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if lerr, ok := r.(*layout.LayoutError); ok {
				err = lerr
				return
			}
			panic(r)
		}
	}()
	for i, l := range saved {
		want := layout.LayoutID(i + 1)
		if got := in.Intern(l); got != want {
			return fmt.Errorf("layout table out of order: entry %d interned as layout#%d", want, got)
		}
	}
	return nil
}
