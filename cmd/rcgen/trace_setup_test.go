package main

import (
	"bytes"
	"strings"
	"testing"

	"rcgen/internal/trace"
)

func TestDumpTraceRingAfterFailure(t *testing.T) {
	prev := activeTracer
	t.Cleanup(func() { activeTracer = prev })

	ring := trace.NewRingTracer(16, trace.LevelUnit)
	trace.Point(ring, trace.ScopeError, "validate", "use of unbound symbol ghost", 0)
	activeTracer = ring

	var buf bytes.Buffer
	dumpTraceRing(&buf)
	if !strings.Contains(buf.String(), "use of unbound symbol ghost") {
		t.Fatalf("ring events not dumped:\n%s", buf.String())
	}

	activeTracer = trace.NewStreamTracer(&bytes.Buffer{}, trace.LevelUnit, trace.FormatText)
	buf.Reset()
	dumpTraceRing(&buf)
	if buf.Len() != 0 {
		t.Fatalf("stream tracer must not be dumped again:\n%s", buf.String())
	}
}
