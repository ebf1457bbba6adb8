package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Start a guided journaling session",
	Long: `Start an interactive journaling session in the terminal.

Luna asks up to two reflective questions while you write. An empty message
or "I'm done" ends the session and saves everything you wrote to today's
daily file. Entries over the configured word threshold get an automatic
summary appended.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Orch == nil {
			return fmt.Errorf("journaling service not initialized")
		}
		Events.LogEvent("session.started", map[string]any{"transport": "tui"})
		return runChat(Orch)
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
}
