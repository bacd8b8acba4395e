package refcount

import (
	"fmt"

	"rcgen/internal/layout"
)

// UnimplementedLayoutError reports a helper request for a layout that has no
// synthesis rule yet. It aborts the unit: emitting the call without the body
// would leave a reference to an undefined procedure.
type UnimplementedLayoutError struct {
	Layout layout.LayoutID
	Name   string // rendered layout
	Op     Op
}

func (e *UnimplementedLayoutError) Error() string {
	return fmt.Sprintf("refcounting is not yet implemented for layout %s (op %s)", e.Name, e.Op)
}
