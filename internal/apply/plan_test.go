package apply

import (
	"path/filepath"
	"testing"
)

func TestPlanClassifiesRows(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "frame_01.jpg")
	runner := &fakeRunner{}

	entries, err := newApplier(dir, runner, false).Plan(csvSource(
		"frame_number,iso",
		"1,400",
		"2,400",
		"end,",
	))
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("plan must not invoke exiftool, got %d calls", len(runner.calls))
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	ready := entries[0]
	if ready.Status != PlanReady || ready.Frame != "1" || ready.Path != filepath.Join(dir, "frame_01.jpg") {
		t.Fatalf("unexpected ready entry %+v", ready)
	}
	if ready.Args[len(ready.Args)-1] != ready.Path {
		t.Fatalf("expected target path last in %#v", ready.Args)
	}
	if entries[1].Status != PlanMissing || entries[1].Args != nil {
		t.Fatalf("unexpected missing entry %+v", entries[1])
	}
	if entries[2].Status != PlanSkipped || entries[2].Path != "" {
		t.Fatalf("unexpected skipped entry %+v", entries[2])
	}
}
