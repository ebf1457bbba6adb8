// Package storage provides the file-backed journal store, the frontmatter
// metadata layer, journal search, and the SQLite stores for weekly reviews
// and OAuth tokens.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ebetancourt/luna/pkg/models"
)

// ErrStorageUnavailable means the journal directory or file could not be
// created, read, or written. Callers surface it as an explicit failed-save
// message and must not retry blindly.
var ErrStorageUnavailable = errors.New("journal storage unavailable")

// JournalStore defines the interface for the one-file-per-day markdown
// journal. Entries are append-only: the store never edits or deletes prior
// content.
type JournalStore interface {
	EnsureReady() error
	AppendEntry(date time.Time, ts time.Time, text string) error
	AppendSummary(date time.Time, ts time.Time, summary string) error
	Metadata(date time.Time) (*models.EntryMetadata, error)
	UpdateMetadata(date time.Time, meta models.EntryMetadata) error
	SearchByDateRange(start, end *time.Time) ([]models.EntryMetadata, error)
	SearchByKeywords(keywords []string, caseSensitive bool) ([]models.EntryMetadata, error)
	SearchByMood(mood string, exactMatch bool) ([]models.EntryMetadata, error)
	SearchByTopics(topics []string, matchAll bool) ([]models.EntryMetadata, error)
}

// fileJournalStore implements JournalStore over a directory of
// YYYY-MM-DD.md files.
type fileJournalStore struct {
	dir string

	// mu guards dateLocks; each per-date mutex serializes appends to one
	// daily file so concurrent dispatch cannot interleave sections.
	mu        sync.Mutex
	dateLocks map[string]*sync.Mutex
}

// NewJournalStore creates a JournalStore rooted at dir.
func NewJournalStore(dir string) JournalStore {
	return &fileJournalStore{
		dir:       dir,
		dateLocks: make(map[string]*sync.Mutex),
	}
}

// EnsureReady verifies the journal directory exists and is writable,
// creating it if needed. Failures are reported as ErrStorageUnavailable so
// the caller fails fast instead of crashing on first write.
func (s *fileJournalStore) EnsureReady() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating journal directory %s: %v", ErrStorageUnavailable, s.dir, err)
	}

	// Probe writability: creating files later must not be the first time we
	// find out the directory is read-only.
	probe, err := os.CreateTemp(s.dir, ".luna-probe-*")
	if err != nil {
		return fmt.Errorf("%w: journal directory %s is not writable: %v", ErrStorageUnavailable, s.dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// lockDate returns the mutex serializing appends for one calendar date.
func (s *fileJournalStore) lockDate(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.dateLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.dateLocks[key] = l
	}
	return l
}

// filePath returns the daily file path for a date.
func (s *fileJournalStore) filePath(date time.Time) string {
	return filepath.Join(s.dir, date.Format("2006-01-02")+".md")
}

// AppendEntry appends a timestamped entry section to date's daily file,
// creating the file with its title line on first use. The section is built
// in memory and written with a single append so a failure leaves no
// half-written heading behind.
func (s *fileJournalStore) AppendEntry(date time.Time, ts time.Time, text string) error {
	section := fmt.Sprintf("## %s\n\n%s\n", ts.Format("15:04:05"), text)
	return s.appendSection(date, section)
}

// AppendSummary appends a level-3 Summary section directly after the entry
// it summarizes.
func (s *fileJournalStore) AppendSummary(date time.Time, ts time.Time, summary string) error {
	section := fmt.Sprintf("### Summary\n\n%s\n", summary)
	return s.appendSection(date, section)
}

// appendSection writes one markdown section to the daily file. The title
// line is prepended when the file is new or empty. All content goes out in
// one write on an O_APPEND handle; partial-write detection on a crashed
// process is out of scope, but no two sections from this process can
// interleave thanks to the per-date lock.
func (s *fileJournalStore) appendSection(date time.Time, section string) error {
	key := date.Format("2006-01-02")
	lock := s.lockDate(key)
	lock.Lock()
	defer lock.Unlock()

	path := s.filePath(date)

	var isNew bool
	info, err := os.Stat(path)
	switch {
	case err == nil:
		isNew = info.Size() == 0
	case os.IsNotExist(err):
		isNew = true
	default:
		return fmt.Errorf("%w: checking %s: %v", ErrStorageUnavailable, path, err)
	}

	var content string
	if isNew {
		content = FormatFileTitle(date) + "\n\n" + section
	} else {
		content = "\n" + section
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrStorageUnavailable, path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write([]byte(content)); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrStorageUnavailable, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", ErrStorageUnavailable, path, err)
	}
	return nil
}

// FormatFileTitle renders a date as the daily file's level-1 title, e.g.
// "# Friday, 13th of June 2025".
func FormatFileTitle(date time.Time) string {
	return fmt.Sprintf("# %s, %d%s of %s %d",
		date.Weekday(), date.Day(), ordinalSuffix(date.Day()),
		date.Month(), date.Year())
}

// ordinalSuffix returns st/nd/rd/th for a day of month. 11th-13th take "th"
// despite ending in 1, 2, 3.
func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
