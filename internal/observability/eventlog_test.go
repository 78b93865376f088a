package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLog(t *testing.T) (TransitionLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewTransitionLog(path)
	if err != nil {
		t.Fatalf("failed to open log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log, path
}

func TestRecordTransition_AppendsReadableEvents(t *testing.T) {
	log, _ := newTestLog(t)

	log.RecordTransition("work_item", 1, "", "planned", "Add caching layer")
	log.RecordTransition("work_item", 1, "planned", "in_progress", "")
	log.RecordTransition("group", 1, "planned", "in_progress", "")

	events, err := log.ReadSince(time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Entity != "work_item" || events[0].To != "planned" {
		t.Errorf("unexpected first event %+v", events[0])
	}
	if events[2].Entity != "group" {
		t.Errorf("unexpected third event %+v", events[2])
	}
}

func TestReadSince_FiltersByTime(t *testing.T) {
	log, _ := newTestLog(t)
	jl := log.(*jsonlTransitionLog)

	base := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	jl.now = func() time.Time { return base }
	log.RecordTransition("work_item", 1, "", "planned", "")
	jl.now = func() time.Time { return base.Add(time.Hour) }
	log.RecordTransition("work_item", 1, "planned", "in_progress", "")

	events, err := log.ReadSince(base.Add(30 * time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event after the cutoff, got %d", len(events))
	}
	if events[0].To != "in_progress" {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestReadSince_SkipsTornLines(t *testing.T) {
	log, path := newTestLog(t)
	log.RecordTransition("work_item", 1, "", "planned", "")

	// Simulate a crash mid-append.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("failed to open log file: %v", err)
	}
	if _, err := f.WriteString(`{"time":"2026-03-09T0`); err != nil {
		t.Fatalf("failed to append torn line: %v", err)
	}
	f.Close()

	events, err := log.ReadSince(time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected the torn line skipped, got %d events", len(events))
	}
}

func TestReadSince_MissingFileYieldsNoEvents(t *testing.T) {
	log := &jsonlTransitionLog{path: filepath.Join(t.TempDir(), "absent.jsonl")}
	events, err := log.ReadSince(time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}
