package layout

import (
	"errors"
	"testing"
)

func TestTargetFor(t *testing.T) {
	tests := []struct {
		triple  string
		ptrSize int
		want    int
		width   Width
		wantErr bool
	}{
		{"", 0, 8, Width64, false},
		{"x86_64-linux-gnu", 8, 8, Width64, false},
		{"wasm32-unknown-unknown", 0, 4, Width32, false},
		{"riscv32-unknown-elf", 4, 4, Width32, false},
		{"x86_64-linux-gnu", 4, 4, Width32, false},
		{"mystery", 0, 0, 0, true},
		{"mystery", 2, 0, 0, true},
	}
	for _, tt := range tests {
		got, err := TargetFor(tt.triple, tt.ptrSize)
		if tt.wantErr {
			var lerr *LayoutError
			if !errors.As(err, &lerr) || lerr.Kind != LayoutErrPtrSize {
				t.Errorf("TargetFor(%q, %d): expected ptr size error, got %v", tt.triple, tt.ptrSize, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("TargetFor(%q, %d): %v", tt.triple, tt.ptrSize, err)
			continue
		}
		if got.PtrSize != tt.want || got.IsizeWidth() != tt.width {
			t.Errorf("TargetFor(%q, %d) = %+v", tt.triple, tt.ptrSize, got)
		}
		if isize := got.Isize(); !isize.Signed || isize.Width != tt.width {
			t.Errorf("Isize() = %+v", isize)
		}
	}
}

func TestKnownTargetsResolveByTriple(t *testing.T) {
	for _, want := range KnownTargets() {
		got, err := TargetFor(want.Triple, 0)
		if err != nil {
			t.Fatalf("TargetFor(%q): %v", want.Triple, err)
		}
		if got != want {
			t.Errorf("TargetFor(%q) = %+v, want %+v", want.Triple, got, want)
		}
	}
}
