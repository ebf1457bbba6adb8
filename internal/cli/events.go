package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ebetancourt/luna/internal/observability"
)

var (
	eventsSince string
	eventsType  string
	eventsLevel string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recorded events",
	Long: `Read the JSONL event log and print matching events, one JSON object per
line. Filter by time window, event type, or level.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized")
		}

		filter := observability.EventFilter{
			Type:  eventsType,
			Level: eventsLevel,
		}
		if eventsSince != "" {
			since, err := parseSinceDuration(eventsSince)
			if err != nil {
				return fmt.Errorf("parsing --since: %w", err)
			}
			filter.Since = &since
		}

		events, err := EventLog.Read(filter)
		if err != nil {
			return fmt.Errorf("reading event log: %w", err)
		}

		for _, event := range events {
			line, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Println(string(line))
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsSince, "since", "", "Time window (e.g. 7d, 24h); default all")
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "Filter by event type (e.g. entry.saved)")
	eventsCmd.Flags().StringVar(&eventsLevel, "level", "", "Filter by level (INFO, WARN, ERROR)")
	rootCmd.AddCommand(eventsCmd)
}
