package refcount

import "rcgen/internal/mir"

// Op is the refcount operation a helper procedure performs.
type Op uint8

const (
	// OpInc adds N references.
	OpInc Op = iota
	// OpDec drops one reference, releasing children and freeing at zero.
	OpDec
	// OpDecRef drops one reference and never releases.
	OpDecRef
)

func (op Op) String() string {
	switch op {
	case OpInc:
		return "Inc"
	case OpDec:
		return "Dec"
	case OpDecRef:
		return "DecRef"
	default:
		return "Op?"
	}
}

// OpOf maps an abstract modification to its operation.
func OpOf(k mir.ModifyKind) Op {
	switch k {
	case mir.ModifyInc:
		return OpInc
	case mir.ModifyDec:
		return OpDec
	default:
		return OpDecRef
	}
}
