package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ebetancourt/luna/pkg/models"
)

// listJournalFiles returns the metadata of every daily file in the journal
// directory. Files that cannot be parsed are skipped; a missing directory
// means no entries.
func (s *fileJournalStore) listJournalFiles() ([]models.EntryMetadata, error) {
	names, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: listing %s: %v", ErrStorageUnavailable, s.dir, err)
	}

	var results []models.EntryMetadata
	for _, entry := range names {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		if _, err := time.Parse("2006-01-02", strings.TrimSuffix(entry.Name(), ".md")); err != nil {
			continue // not a daily file
		}
		meta, err := s.metadataForFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		results = append(results, *meta)
	}
	return results, nil
}

// SearchByDateRange returns entries whose date falls in [start, end]; nil
// bounds are open. Results come back newest first.
func (s *fileJournalStore) SearchByDateRange(start, end *time.Time) ([]models.EntryMetadata, error) {
	if start != nil && end != nil && start.After(*end) {
		return nil, fmt.Errorf("start date %s is after end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	all, err := s.listJournalFiles()
	if err != nil {
		return nil, err
	}

	var results []models.EntryMetadata
	for _, meta := range all {
		date, err := time.Parse("2006-01-02", meta.Date)
		if err != nil {
			continue
		}
		if start != nil && date.Before(startOfDay(*start)) {
			continue
		}
		if end != nil && date.After(startOfDay(*end)) {
			continue
		}
		results = append(results, meta)
	}

	sortByDateDesc(results)
	return results, nil
}

// SearchByKeywords returns entries whose body or frontmatter contains any of
// the keywords, ranked by match score: each body occurrence scores 1, each
// frontmatter occurrence 2.
func (s *fileJournalStore) SearchByKeywords(keywords []string, caseSensitive bool) ([]models.EntryMetadata, error) {
	var clean []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			clean = append(clean, k)
		}
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("at least one keyword must be provided")
	}

	all, err := s.listJournalFiles()
	if err != nil {
		return nil, err
	}

	var results []models.EntryMetadata
	for _, meta := range all {
		data, err := os.ReadFile(meta.FilePath)
		if err != nil {
			continue
		}
		_, body := splitFrontmatter(string(data))
		fmText := frontmatterSearchText(meta)

		if !caseSensitive {
			body = strings.ToLower(body)
			fmText = strings.ToLower(fmText)
		}

		score := 0
		for _, kw := range clean {
			if !caseSensitive {
				kw = strings.ToLower(kw)
			}
			score += strings.Count(body, kw)
			score += strings.Count(fmText, kw) * 2
		}
		if score > 0 {
			meta.MatchScore = score
			results = append(results, meta)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchScore != results[j].MatchScore {
			return results[i].MatchScore > results[j].MatchScore
		}
		return results[i].Date > results[j].Date
	})
	return results, nil
}

// SearchByMood returns entries whose frontmatter mood matches, exactly or as
// a case-insensitive substring. Results come back newest first.
func (s *fileJournalStore) SearchByMood(mood string, exactMatch bool) ([]models.EntryMetadata, error) {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return nil, fmt.Errorf("mood must not be empty")
	}

	all, err := s.listJournalFiles()
	if err != nil {
		return nil, err
	}

	var results []models.EntryMetadata
	for _, meta := range all {
		if meta.Mood == "" {
			continue
		}
		if exactMatch {
			if strings.EqualFold(meta.Mood, mood) {
				results = append(results, meta)
			}
		} else if strings.Contains(strings.ToLower(meta.Mood), strings.ToLower(mood)) {
			results = append(results, meta)
		}
	}

	sortByDateDesc(results)
	return results, nil
}

// SearchByTopics returns entries matching the topics (all of them when
// matchAll, any otherwise), ranked by topic score: 3 per exact topic match,
// 1 per partial.
func (s *fileJournalStore) SearchByTopics(topics []string, matchAll bool) ([]models.EntryMetadata, error) {
	var clean []string
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, strings.ToLower(t))
		}
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("at least one topic must be provided")
	}

	all, err := s.listJournalFiles()
	if err != nil {
		return nil, err
	}

	var results []models.EntryMetadata
	for _, meta := range all {
		if len(meta.Topics) == 0 {
			continue
		}
		fileTopics := make([]string, len(meta.Topics))
		for i, t := range meta.Topics {
			fileTopics[i] = strings.ToLower(t)
		}

		if matchAll && !containsAll(fileTopics, clean) {
			continue
		}
		if !matchAll && !containsAny(fileTopics, clean) {
			continue
		}

		meta.TopicMatchScore = topicScore(fileTopics, clean)
		results = append(results, meta)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].TopicMatchScore != results[j].TopicMatchScore {
			return results[i].TopicMatchScore > results[j].TopicMatchScore
		}
		return results[i].Date > results[j].Date
	})
	return results, nil
}

// frontmatterSearchText flattens the searchable frontmatter fields into one
// string for keyword matching.
func frontmatterSearchText(meta models.EntryMetadata) string {
	parts := []string{meta.Mood}
	parts = append(parts, meta.Keywords...)
	parts = append(parts, meta.Topics...)
	parts = append(parts, meta.Tags...)
	return strings.Join(parts, " ")
}

func containsAll(haystack, needles []string) bool {
	for _, n := range needles {
		if !contains(haystack, n) {
			return false
		}
	}
	return true
}

func containsAny(haystack, needles []string) bool {
	for _, n := range needles {
		if contains(haystack, n) {
			return true
		}
	}
	return false
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}

// topicScore awards 3 points per exact topic match and 1 per partial
// (substring either way), counted once per search topic.
func topicScore(fileTopics, searchTopics []string) int {
	score := 0
	for _, st := range searchTopics {
		if contains(fileTopics, st) {
			score += 3
			continue
		}
		for _, ft := range fileTopics {
			if strings.Contains(ft, st) || strings.Contains(st, ft) {
				score++
				break
			}
		}
	}
	return score
}

func sortByDateDesc(results []models.EntryMetadata) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Date > results[j].Date
	})
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
