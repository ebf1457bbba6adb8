package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "luna",
	Short: "Luna - conversational journaling agent",
	Long: `Luna is a journaling companion that turns short conversations into
well-formed daily Markdown files.

It guides you with a couple of reflective questions, saves your words under
a timestamped heading in today's file, and summarizes long entries
automatically. Entries can be searched by keyword, mood, topic, or date,
and a GTD-style weekly review keeps the bigger picture in view.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("luna %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
