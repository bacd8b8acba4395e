package mir

import (
	"rcgen/internal/layout"
	"rcgen/internal/symbols"
)

// JoinPointID names a join point within a procedure.
type JoinPointID uint32

// CallSpecID is an opaque specialization hint carried by by-name calls.
type CallSpecID uint32

// UpdateModeID is an opaque in-place update hint carried by low-level calls.
type UpdateModeID uint32

const (
	// BackendDummySpec is used by calls the code generators synthesize themselves.
	BackendDummySpec CallSpecID = 0
	// BackendDummyUpdate is the update mode of synthesized low-level calls.
	BackendDummyUpdate UpdateModeID = 0
)

// Param is a (layout, symbol) pair bound by a procedure or join point.
type Param struct {
	Layout layout.LayoutID
	Sym    symbols.Symbol
}
