package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ebetancourt/luna/internal/core"
	"github.com/ebetancourt/luna/pkg/models"
)

var (
	saveFile string
	saveTag  bool
)

var saveCmd = &cobra.Command{
	Use:   "save [text...]",
	Short: "Save a one-shot journal entry",
	Long: `Save a journal entry directly, without the guided session.

The entry text comes from the arguments, or from a file via --file, or from
stdin when neither is given. The same summarization policy applies as in
guided sessions. With --tag, Luna also extracts mood, keywords, and topics
into the daily file's frontmatter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Orch == nil {
			return fmt.Errorf("journaling service not initialized")
		}

		text, err := readEntryText(args)
		if err != nil {
			return err
		}
		if core.WordCount(text) == 0 {
			return fmt.Errorf("nothing to save: entry text is empty")
		}

		ctx := cmd.Context()
		ts := time.Now()
		summarized, err := Orch.SaveEntry(ctx, ts, text)
		if err != nil {
			return fmt.Errorf("saving entry: %w", err)
		}

		fmt.Printf("Saved %d words to %s.\n", core.WordCount(text), ts.Format("2006-01-02"))
		if summarized {
			fmt.Println("Summary appended.")
		}

		if saveTag {
			if err := tagEntry(ctx, ts, text); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not tag entry: %v\n", err)
			}
		}
		return nil
	},
}

// readEntryText assembles the entry from args, --file, or stdin.
func readEntryText(args []string) (string, error) {
	if saveFile != "" {
		data, err := os.ReadFile(saveFile)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", saveFile, err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

// tagEntry extracts metadata from the entry and merges it into the daily
// file's frontmatter.
func tagEntry(ctx context.Context, date time.Time, text string) error {
	if Extractor == nil {
		return fmt.Errorf("no completion backend configured")
	}
	tags, err := Extractor.ExtractMetadata(ctx, text)
	if err != nil {
		return err
	}
	return Journal.UpdateMetadata(date, models.EntryMetadata{
		Mood:     tags.Mood,
		Keywords: tags.Keywords,
		Topics:   tags.Topics,
		Tags:     tags.Tags,
	})
}

func init() {
	saveCmd.Flags().StringVarP(&saveFile, "file", "f", "", "read the entry text from a file")
	saveCmd.Flags().BoolVar(&saveTag, "tag", false, "extract mood/keywords/topics into frontmatter")
	rootCmd.AddCommand(saveCmd)
}
