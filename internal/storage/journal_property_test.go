package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// =============================================================================
// Property 3: Append Only Ever Adds
// =============================================================================

// Feature: journal persistence, Property 3: Append Only Ever Adds
// *For any* sequence of N appended entries on the same day, the daily file
// SHALL contain exactly one title line and exactly N entry headings, in the
// order the entries were appended.
//
// **Validates: append-only file layout under arbitrary entry sequences**
func TestProperty3_AppendOnlyEverAdds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dir := t.TempDir()
		store := NewJournalStore(dir)
		date := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)

		n := rapid.IntRange(1, 12).Draw(rt, "entries")
		var texts []string
		for i := 0; i < n; i++ {
			text := rapid.StringMatching(`[a-z]{1,8}( [a-z]{1,8}){0,6}`).Draw(rt, "text")
			texts = append(texts, text)
			ts := date.Add(time.Duration(i) * time.Minute)
			if err := store.AppendEntry(date, ts, text); err != nil {
				rt.Fatalf("AppendEntry %d: %v", i, err)
			}
		}

		data, err := os.ReadFile(filepath.Join(dir, "2025-06-13.md"))
		if err != nil {
			rt.Fatalf("reading daily file: %v", err)
		}
		content := string(data)

		if got := strings.Count(content, "# Friday, 13th of June 2025"); got != 1 {
			rt.Fatalf("title appears %d times, want 1", got)
		}

		lastIdx := -1
		for i := 0; i < n; i++ {
			heading := fmt.Sprintf("## %s", date.Add(time.Duration(i)*time.Minute).Format("15:04:05"))
			idx := strings.Index(content, heading)
			if idx < 0 {
				rt.Fatalf("heading %q missing from file", heading)
			}
			if idx <= lastIdx {
				rt.Fatalf("heading %q out of order", heading)
			}
			lastIdx = idx
		}
	})
}

// =============================================================================
// Property 4: Ordinal Suffixes
// =============================================================================

// Feature: journal persistence, Property 4: Ordinal Suffixes
// *For any* day of the month, the file title SHALL use st/nd/rd only for days
// ending in 1, 2, 3 outside the 11-13 range, and th everywhere else.
//
// **Validates: title formatting across all days of a month**
func TestProperty4_OrdinalSuffixes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		day := rapid.IntRange(1, 31).Draw(rt, "day")
		date := time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC)

		title := FormatFileTitle(date)

		want := "th"
		if day < 11 || day > 13 {
			switch day % 10 {
			case 1:
				want = "st"
			case 2:
				want = "nd"
			case 3:
				want = "rd"
			}
		}

		marker := fmt.Sprintf(", %d%s of January 2025", day, want)
		if !strings.Contains(title, marker) {
			rt.Fatalf("title %q missing ordinal %q", title, marker)
		}
	})
}
