package refcount

import (
	"fmt"

	"rcgen/internal/layout"
)

// layoutDebugName classifies a refcounted layout for helper procedure names.
func layoutDebugName(l layout.Layout) string {
	switch l.Kind {
	case layout.KindBuiltin:
		switch l.Builtin {
		case layout.BuiltinList:
			return "list"
		case layout.BuiltinSet:
			return "set"
		case layout.BuiltinDict:
			return "dict"
		case layout.BuiltinStr:
			return "str"
		default:
			panic(fmt.Sprintf("refcount: builtin %s is not refcounted", l.Builtin))
		}
	case layout.KindStruct:
		return "struct"
	case layout.KindUnion:
		return "union"
	case layout.KindLambdaSet:
		return "lambdaset"
	case layout.KindRecursivePointer:
		return "recursive_pointer"
	default:
		panic(fmt.Sprintf("refcount: invalid layout kind %d", l.Kind))
	}
}
