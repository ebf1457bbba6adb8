package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLog(t *testing.T) EventLog {
	t.Helper()
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("NewJSONLEventLog: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestEventLog_WriteAndReadBack(t *testing.T) {
	log := newTestLog(t)

	want := Event{
		Time:    time.Date(2025, 6, 13, 10, 0, 0, 0, time.UTC),
		Level:   "INFO",
		Type:    "entry.saved",
		Message: "entry saved",
		Data:    map[string]any{"date": "2025-06-13"},
	}
	if err := log.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	got := events[0]
	if got.Type != want.Type || got.Level != want.Level || got.Message != want.Message {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
	if !got.Time.Equal(want.Time) {
		t.Errorf("time = %v, want %v", got.Time, want.Time)
	}
	if got.Data["date"] != "2025-06-13" {
		t.Errorf("data = %v", got.Data)
	}
}

func TestEventLog_Filters(t *testing.T) {
	log := newTestLog(t)

	base := time.Date(2025, 6, 13, 10, 0, 0, 0, time.UTC)
	seed := []Event{
		{Time: base, Level: "INFO", Type: "entry.saved", Message: "entry saved"},
		{Time: base.Add(time.Hour), Level: "WARN", Type: "summary.skipped", Message: "summary skipped"},
		{Time: base.Add(2 * time.Hour), Level: "ERROR", Type: "entry.save_failed", Message: "entry save failed"},
	}
	for _, e := range seed {
		if err := log.Write(e); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("by type", func(t *testing.T) {
		events, err := log.Read(EventFilter{Type: "summary.skipped"})
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 1 || events[0].Type != "summary.skipped" {
			t.Errorf("events = %+v", events)
		}
	})

	t.Run("by level", func(t *testing.T) {
		events, err := log.Read(EventFilter{Level: "ERROR"})
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 1 || events[0].Type != "entry.save_failed" {
			t.Errorf("events = %+v", events)
		}
	})

	t.Run("by time window", func(t *testing.T) {
		since := base.Add(30 * time.Minute)
		until := base.Add(90 * time.Minute)
		events, err := log.Read(EventFilter{Since: &since, Until: &until})
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 1 || events[0].Type != "summary.skipped" {
			t.Errorf("events = %+v", events)
		}
	})
}

func TestEventLog_ReadSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	content := `{"time":"2025-06-13T10:00:00Z","level":"INFO","type":"entry.saved","msg":"entry saved"}
this is not json
{"time":"2025-06-13T11:00:00Z","level":"INFO","type":"session.started","msg":"session started"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = log.Close() }()

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2 with the bad line skipped", len(events))
	}
}

func TestEventLog_ReadMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := log.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	log2, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = log2.Close() }()
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	events, err := log2.Read(EventFilter{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events from a missing file, want 0", len(events))
	}
}

func TestRecorder_DerivesLevels(t *testing.T) {
	log := newTestLog(t)
	rec := NewRecorder(log)

	rec.LogEvent("entry.saved", map[string]any{"date": "2025-06-13"})
	rec.LogEvent("summary.skipped", nil)
	rec.LogEvent("entry.save_failed", nil)

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	wantLevels := map[string]string{
		"entry.saved":       "INFO",
		"summary.skipped":   "WARN",
		"entry.save_failed": "ERROR",
	}
	for _, e := range events {
		if want := wantLevels[e.Type]; e.Level != want {
			t.Errorf("level for %s = %s, want %s", e.Type, e.Level, want)
		}
	}

	// Messages replace dots with spaces.
	if events[0].Message != "entry saved" {
		t.Errorf("message = %q, want %q", events[0].Message, "entry saved")
	}
}

func TestRecorder_NilSafe(t *testing.T) {
	var rec *Recorder
	rec.LogEvent("entry.saved", nil) // must not panic

	NewRecorder(nil).LogEvent("entry.saved", nil) // likewise
}
