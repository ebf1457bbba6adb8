package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ebetancourt/luna/pkg/models"
	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---\n"

// splitFrontmatter separates a daily file's YAML frontmatter block from its
// markdown body. Files without a frontmatter block return an empty header.
func splitFrontmatter(content string) (header, body string) {
	if !strings.HasPrefix(content, frontmatterDelimiter) {
		return "", content
	}
	rest := content[len(frontmatterDelimiter):]
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		// No closing delimiter; treat the whole file as body.
		return "", content
	}
	return rest[:idx], rest[idx+len("\n---\n"):]
}

// Metadata reads the frontmatter of date's daily file and returns it along
// with derived fields (date string, file path, body word count).
func (s *fileJournalStore) Metadata(date time.Time) (*models.EntryMetadata, error) {
	return s.metadataForFile(s.filePath(date))
}

func (s *fileJournalStore) metadataForFile(path string) (*models.EntryMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStorageUnavailable, path, err)
	}

	header, body := splitFrontmatter(string(data))

	meta := models.EntryMetadata{}
	if header != "" {
		if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
			return nil, fmt.Errorf("parsing frontmatter in %s: %w", path, err)
		}
	}

	meta.FilePath = path
	meta.Date = strings.TrimSuffix(filepath.Base(path), ".md")
	meta.WordCount = len(strings.Fields(body))
	return &meta, nil
}

// UpdateMetadata merges the given metadata into date's frontmatter,
// preserving the markdown body. The rewrite goes through a temp file and
// rename so a crash cannot leave a truncated journal file.
func (s *fileJournalStore) UpdateMetadata(date time.Time, meta models.EntryMetadata) error {
	key := date.Format("2006-01-02")
	lock := s.lockDate(key)
	lock.Lock()
	defer lock.Unlock()

	path := s.filePath(date)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrStorageUnavailable, path, err)
	}

	header, body := splitFrontmatter(string(data))

	existing := models.EntryMetadata{}
	if header != "" {
		if err := yaml.Unmarshal([]byte(header), &existing); err != nil {
			return fmt.Errorf("parsing frontmatter in %s: %w", path, err)
		}
	}
	mergeMetadata(&existing, meta)

	headerBytes, err := yaml.Marshal(&existing)
	if err != nil {
		return fmt.Errorf("encoding frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString(frontmatterDelimiter)
	b.Write(headerBytes)
	b.WriteString("---\n")
	b.WriteString(body)

	tmp, err := os.CreateTemp(s.dir, ".luna-meta-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(b.String()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: writing temp file: %v", ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file: %v", ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: replacing %s: %v", ErrStorageUnavailable, path, err)
	}
	return nil
}

// mergeMetadata overlays non-empty fields of update onto base.
func mergeMetadata(base *models.EntryMetadata, update models.EntryMetadata) {
	if update.Mood != "" {
		base.Mood = update.Mood
	}
	if len(update.Keywords) > 0 {
		base.Keywords = update.Keywords
	}
	if len(update.Topics) > 0 {
		base.Topics = update.Topics
	}
	if len(update.Tags) > 0 {
		base.Tags = update.Tags
	}
}
