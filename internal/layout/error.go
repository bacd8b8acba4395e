package layout

import "fmt"

// LayoutErrorKind enumerates layout table errors.
type LayoutErrorKind uint8

const (
	// LayoutErrUnknownID indicates a lookup of an ID the interner never produced.
	LayoutErrUnknownID LayoutErrorKind = iota + 1
	// LayoutErrDanglingChild indicates a layout referring to an uninterned child.
	LayoutErrDanglingChild
	LayoutErrPtrSize
)

// LayoutError represents an error while reading the layout table.
type LayoutError struct {
	Kind    LayoutErrorKind
	ID      LayoutID
	PtrSize int // for LayoutErrPtrSize
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrUnknownID:
		return fmt.Sprintf("unknown layout#%d", e.ID)
	case LayoutErrDanglingChild:
		return fmt.Sprintf("layout refers to uninterned child layout#%d", e.ID)
	case LayoutErrPtrSize:
		return fmt.Sprintf("unsupported pointer size %d (expected 4 or 8)", e.PtrSize)
	default:
		return fmt.Sprintf("layout error kind=%d layout#%d", e.Kind, e.ID)
	}
}
