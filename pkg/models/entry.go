package models

import "time"

// Entry is one persisted journaling turn tied to a timestamp.
type Entry struct {
	Date      time.Time
	Timestamp time.Time
	Text      string
	Summary   string // empty when no summary was generated
}

// EntryMetadata holds the frontmatter metadata of a daily journal file plus
// derived fields used by search.
type EntryMetadata struct {
	Date      string   `yaml:"-"`
	FilePath  string   `yaml:"-"`
	WordCount int      `yaml:"-"`
	Mood      string   `yaml:"mood,omitempty"`
	Keywords  []string `yaml:"keywords,omitempty"`
	Topics    []string `yaml:"topics,omitempty"`
	Tags      []string `yaml:"tags,omitempty"`

	// Scores set by search, zero otherwise.
	MatchScore      int `yaml:"-"`
	TopicMatchScore int `yaml:"-"`
}
