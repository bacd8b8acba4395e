package layout

// Target describes the ABI target triple and its pointer properties.
type Target struct {
	Triple   string // e.g. "x86_64-linux-gnu"
	PtrSize  int    // bytes
	PtrAlign int    // bytes
}

func X86_64LinuxGNU() Target {
	return Target{
		Triple:   "x86_64-linux-gnu",
		PtrSize:  8,
		PtrAlign: 8,
	}
}

func Wasm32() Target {
	return Target{
		Triple:   "wasm32-unknown-unknown",
		PtrSize:  4,
		PtrAlign: 4,
	}
}

// KnownTargets lists the targets recognised by triple alone.
func KnownTargets() []Target {
	return []Target{X86_64LinuxGNU(), Wasm32()}
}

// TargetFor returns the known target for triple, or a generic target with the
// given pointer size when the triple is not recognised.
func TargetFor(triple string, ptrSize int) (Target, error) {
	switch triple {
	case "x86_64-linux-gnu", "":
		if ptrSize == 0 || ptrSize == 8 {
			return X86_64LinuxGNU(), nil
		}
	case "wasm32-unknown-unknown":
		if ptrSize == 0 || ptrSize == 4 {
			return Wasm32(), nil
		}
	}
	if ptrSize != 4 && ptrSize != 8 {
		return Target{}, &LayoutError{Kind: LayoutErrPtrSize, PtrSize: ptrSize}
	}
	return Target{Triple: triple, PtrSize: ptrSize, PtrAlign: ptrSize}, nil
}

// IsizeWidth is the width of the pointer-sized signed integer.
func (t Target) IsizeWidth() Width {
	if t.PtrSize == 4 {
		return Width32
	}
	return Width64
}

// Isize returns the pointer-sized signed integer layout.
func (t Target) Isize() Layout {
	return Int(t.IsizeWidth())
}
