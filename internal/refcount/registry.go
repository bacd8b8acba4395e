package refcount

import (
	"rcgen/internal/layout"
	"rcgen/internal/symbols"
)

// Entry is one specialization: the procedure responsible for (Layout, Op).
type Entry struct {
	Layout layout.LayoutID
	Op     Op
	Proc   symbols.Symbol
}

type entryKey struct {
	Layout layout.LayoutID
	Op     Op
}

// Registry maps (layout, op) pairs to helper procedures, at most one each,
// in first-request order. Some backends emit procedures in this order, so it
// must stay stable.
type Registry struct {
	entries []Entry
	index   map[entryKey]int
	drained bool

	// mint names the procedure for a new pair; idx is the entry's position.
	mint func(l layout.LayoutID, op Op, idx int) symbols.Symbol
}

// NewRegistry returns an empty registry naming new procedures with mint.
func NewRegistry(mint func(l layout.LayoutID, op Op, idx int) symbols.Symbol) *Registry {
	return &Registry{
		entries: make([]Entry, 0, 16),
		index:   make(map[entryKey]int, 16),
		mint:    mint,
	}
}

// Register returns the procedure for (l, op), creating it on first request.
// existed reports whether the pair had been registered before.
func (r *Registry) Register(l layout.LayoutID, op Op) (existed bool, proc symbols.Symbol) {
	if r.drained {
		panic("refcount: registry used after drain")
	}
	key := entryKey{Layout: l, Op: op}
	if i, ok := r.index[key]; ok {
		return true, r.entries[i].Proc
	}
	idx := len(r.entries)
	proc = r.mint(l, op, idx)
	r.entries = append(r.entries, Entry{Layout: l, Op: op, Proc: proc})
	r.index[key] = idx
	return false, proc
}

// Lookup returns the procedure registered for (l, op), if any.
func (r *Registry) Lookup(l layout.LayoutID, op Op) (symbols.Symbol, bool) {
	i, ok := r.index[entryKey{Layout: l, Op: op}]
	if !ok {
		return symbols.NoSymbol, false
	}
	return r.entries[i].Proc, true
}

// Len reports the number of pending entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Drain hands over every entry in registration order and empties the
// registry. It may be called once.
func (r *Registry) Drain() []Entry {
	if r.drained {
		panic("refcount: registry drained twice")
	}
	r.drained = true
	out := r.entries
	r.entries = nil
	r.index = nil
	return out
}

// Drained reports whether Drain has been called.
func (r *Registry) Drained() bool {
	return r.drained
}
