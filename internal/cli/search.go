package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ebetancourt/luna/pkg/models"
)

var (
	searchKeywords      []string
	searchMood          string
	searchTopics        []string
	searchFrom          string
	searchTo            string
	searchCaseSensitive bool
	searchExact         bool
	searchMatchAll      bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search journal entries",
	Long: `Search journal entries by keywords, mood, topics, or date range.

Keyword matches are scored: occurrences in frontmatter (mood, keywords,
topics, tags) count double those in the entry text. Topic matches score 3
for exact and 1 for partial matches. Provide exactly one filter kind.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Journal == nil {
			return fmt.Errorf("journal store not initialized")
		}

		results, err := runSearch()
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No matching entries.")
			return nil
		}

		fmt.Printf("%d matching entries:\n\n", len(results))
		for _, r := range results {
			line := fmt.Sprintf("  %s  (%d words)", r.Date, r.WordCount)
			if r.Mood != "" {
				line += "  mood: " + r.Mood
			}
			if score := r.MatchScore + r.TopicMatchScore; score > 0 {
				line += fmt.Sprintf("  score: %d", score)
			}
			fmt.Println(line)
			if len(r.Topics) > 0 {
				fmt.Printf("      topics: %s\n", strings.Join(r.Topics, ", "))
			}
		}
		return nil
	},
}

func runSearch() ([]models.EntryMetadata, error) {
	filters := 0
	if len(searchKeywords) > 0 {
		filters++
	}
	if searchMood != "" {
		filters++
	}
	if len(searchTopics) > 0 {
		filters++
	}
	if searchFrom != "" || searchTo != "" {
		filters++
	}
	if filters == 0 {
		return nil, fmt.Errorf("provide --keywords, --mood, --topics, or a date range (--from/--to)")
	}
	if filters > 1 {
		return nil, fmt.Errorf("provide only one of --keywords, --mood, --topics, or a date range")
	}

	switch {
	case len(searchKeywords) > 0:
		return Journal.SearchByKeywords(searchKeywords, searchCaseSensitive)
	case searchMood != "":
		return Journal.SearchByMood(searchMood, searchExact)
	case len(searchTopics) > 0:
		return Journal.SearchByTopics(searchTopics, searchMatchAll)
	default:
		start, err := parseDateFlag(searchFrom)
		if err != nil {
			return nil, fmt.Errorf("parsing --from: %w", err)
		}
		end, err := parseDateFlag(searchTo)
		if err != nil {
			return nil, fmt.Errorf("parsing --to: %w", err)
		}
		return Journal.SearchByDateRange(start, end)
	}
}

// parseDateFlag parses an optional YYYY-MM-DD flag; empty means no bound.
func parseDateFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return &t, nil
}

func init() {
	searchCmd.Flags().StringSliceVarP(&searchKeywords, "keywords", "k", nil, "keywords to search for")
	searchCmd.Flags().StringVarP(&searchMood, "mood", "m", "", "mood to match")
	searchCmd.Flags().StringSliceVarP(&searchTopics, "topics", "t", nil, "topics to match")
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "inclusive start date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchTo, "to", "", "inclusive end date (YYYY-MM-DD)")
	searchCmd.Flags().BoolVar(&searchCaseSensitive, "case-sensitive", false, "match keywords case-sensitively")
	searchCmd.Flags().BoolVar(&searchExact, "exact", false, "require an exact mood match")
	searchCmd.Flags().BoolVar(&searchMatchAll, "all", false, "require all topics to match")
	rootCmd.AddCommand(searchCmd)
}
