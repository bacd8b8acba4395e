package mir

// LowLevel enumerates the runtime primitives this IR may call by name.
// Their calling convention is a backend concern.
type LowLevel uint8

const (
	LowLevelNone LowLevel = iota
	// RefCountGetPtr(structure) -> pointer to the count word of its allocation.
	RefCountGetPtr
	// RefCountInc(ptr, amount)
	RefCountInc
	// RefCountDec(ptr, alignment) releases children and frees at zero.
	RefCountDec
	// RefCountDecRef(ptr) decrements without ever releasing.
	RefCountDecRef
	// NumGte(a, b) -> Bool
	NumGte
)

func (op LowLevel) String() string {
	switch op {
	case RefCountGetPtr:
		return "RefCountGetPtr"
	case RefCountInc:
		return "RefCountInc"
	case RefCountDec:
		return "RefCountDec"
	case RefCountDecRef:
		return "RefCountDecRef"
	case NumGte:
		return "NumGte"
	default:
		return "LowLevel?"
	}
}

// Arity returns the number of arguments op expects.
func (op LowLevel) Arity() int {
	switch op {
	case RefCountGetPtr, RefCountDecRef:
		return 1
	case RefCountInc, RefCountDec, NumGte:
		return 2
	default:
		return 0
	}
}
