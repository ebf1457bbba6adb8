package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig_DefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	mgr := NewConfigurationManager(dir)

	cfg, err := mgr.Load()
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	if cfg.Journaling.WordCountThreshold != 150 {
		t.Errorf("word_count_threshold = %d, want 150", cfg.Journaling.WordCountThreshold)
	}
	if cfg.Journaling.SummaryRatio != 0.2 {
		t.Errorf("summary_ratio = %g, want 0.2", cfg.Journaling.SummaryRatio)
	}
	if !cfg.Journaling.SummarizationEnabled {
		t.Error("summarization should default to enabled")
	}
	if cfg.Journaling.MaxSummaryAttempts != 3 {
		t.Errorf("max_summary_attempts = %d, want 3", cfg.Journaling.MaxSummaryAttempts)
	}
	if cfg.JournalDir != filepath.Join(dir, "journal") {
		t.Errorf("journal_dir = %q", cfg.JournalDir)
	}
}

func TestConfig_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	content := "journaling:\n  word_count_threshold: 300\n  summary_ratio: 0.5\n"
	if err := os.WriteFile(filepath.Join(dir, ".lunaconfig"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfigurationManager(dir).Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Journaling.WordCountThreshold != 300 {
		t.Errorf("word_count_threshold = %d, want 300", cfg.Journaling.WordCountThreshold)
	}
	if cfg.Journaling.SummaryRatio != 0.5 {
		t.Errorf("summary_ratio = %g, want 0.5", cfg.Journaling.SummaryRatio)
	}
	// Untouched keys keep their defaults.
	if cfg.Journaling.SummaryMinWords != 20 {
		t.Errorf("summary_min_words = %d, want default 20", cfg.Journaling.SummaryMinWords)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LUNA_JOURNALING_WORD_COUNT_THRESHOLD", "42")

	cfg, err := NewConfigurationManager(dir).Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Journaling.WordCountThreshold != 42 {
		t.Errorf("word_count_threshold = %d, want 42 from env", cfg.Journaling.WordCountThreshold)
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	mgr := NewConfigurationManager(t.TempDir())
	cfg := DefaultConfig(t.TempDir())
	cfg.Journaling.WordCountThreshold = 5   // below 10
	cfg.Journaling.SummaryRatio = 1.5       // above 1.0
	cfg.Journaling.MaxSummaryAttempts = 0   // below 1
	cfg.Journaling.SummaryMinWords = 200    // above 100

	err := mgr.Validate(cfg)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	msg := err.Error()
	for _, key := range []string{
		"journaling.word_count_threshold",
		"journaling.summary_ratio",
		"journaling.max_summary_attempts",
		"journaling.summary_min_words",
	} {
		if !strings.Contains(msg, key) {
			t.Errorf("validation error missing key %s: %s", key, msg)
		}
	}
}

func TestConfig_ValidateBoundaries(t *testing.T) {
	mgr := NewConfigurationManager(t.TempDir())

	tests := []struct {
		name   string
		mutate func(cfg *configMut)
		valid  bool
	}{
		{"threshold at lower bound", func(c *configMut) { c.threshold = 10 }, true},
		{"threshold at upper bound", func(c *configMut) { c.threshold = 1000 }, true},
		{"threshold below range", func(c *configMut) { c.threshold = 9 }, false},
		{"threshold above range", func(c *configMut) { c.threshold = 1001 }, false},
		{"ratio at upper bound", func(c *configMut) { c.ratio = 1.0 }, true},
		{"ratio zero", func(c *configMut) { c.ratio = 0 }, false},
		{"attempts at bounds", func(c *configMut) { c.attempts = 10 }, true},
		{"attempts above range", func(c *configMut) { c.attempts = 11 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := configMut{threshold: 150, ratio: 0.2, attempts: 3}
			tt.mutate(&m)

			cfg := DefaultConfig(t.TempDir())
			cfg.Journaling.WordCountThreshold = m.threshold
			cfg.Journaling.SummaryRatio = m.ratio
			cfg.Journaling.MaxSummaryAttempts = m.attempts

			err := mgr.Validate(cfg)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation failure")
			}
		})
	}
}

type configMut struct {
	threshold int
	ratio     float64
	attempts  int
}
