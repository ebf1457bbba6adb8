package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ebetancourt/luna/pkg/models"
)

var (
	reviewType  string
	reviewFocus []string
	reviewNotes string
	reviewSave  bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run a GTD-style weekly review",
	Long: `Commands for the weekly review: a six-step walkthrough (get clear, get
current, get creative, projects, next actions, calendar) with progress
persisted between sittings. Connected task and calendar providers feed
context into the relevant steps.`,
}

var reviewStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new weekly review session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReviewFlow == nil {
			return fmt.Errorf("review flow not initialized")
		}

		session, err := ReviewFlow.StartSession("default", models.ReviewSessionType(reviewType), reviewFocus)
		if err != nil {
			return err
		}

		fmt.Printf("Started weekly review %s (week of %s).\n\n", session.ID, session.WeekStart.Format("2006-01-02"))
		fmt.Print(ReviewFlow.ProgressReport(session))
		return nil
	},
}

var reviewStatusCmd = &cobra.Command{
	Use:   "status <session-id>",
	Short: "Show a review session's progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReviewFlow == nil {
			return fmt.Errorf("review flow not initialized")
		}

		session, err := ReviewFlow.GetSession(args[0])
		if err != nil {
			return err
		}
		fmt.Print(ReviewFlow.ProgressReport(session))
		return nil
	},
}

var reviewStepCmd = &cobra.Command{
	Use:   "step <session-id> <step>",
	Short: "Mark a review step complete",
	Long: `Mark a review step complete, with optional notes.

Steps: clear, current, creative, projects, actions, calendar.
The "current" and "calendar" steps print context pulled from connected
task and calendar providers before completing.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReviewFlow == nil {
			return fmt.Errorf("review flow not initialized")
		}

		sessionID := args[0]
		step := models.ReviewStep(args[1])

		session, err := ReviewFlow.GetSession(sessionID)
		if err != nil {
			return err
		}

		if step == models.StepCurrent || step == models.StepCalendar {
			context, err := ReviewFlow.CurrentWeekContext(cmd.Context(), session)
			if err != nil {
				fmt.Printf("(provider context unavailable: %v)\n\n", err)
			} else {
				fmt.Println(context)
			}
		}

		session, err = ReviewFlow.CompleteStep(sessionID, step, reviewNotes)
		if err != nil {
			return err
		}

		fmt.Print(ReviewFlow.ProgressReport(session))

		if session.CompletedAt != nil {
			Events.LogEvent("review.completed", map[string]any{"id": session.ID})
			if reviewSave && Orch != nil {
				if _, err := Orch.SaveEntry(cmd.Context(), time.Now(), ReviewFlow.Summary(session)); err != nil {
					return fmt.Errorf("saving review to journal: %w", err)
				}
				fmt.Println("Review saved to today's journal.")
			}
		}
		return nil
	},
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past review sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReviewFlow == nil {
			return fmt.Errorf("review flow not initialized")
		}

		sessions, err := ReviewFlow.ListSessions("default")
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No review sessions yet.")
			return nil
		}

		for _, s := range sessions {
			status := fmt.Sprintf("%d/%d steps", len(s.CompletedSteps), len(models.ReviewStepOrder))
			if s.CompletedAt != nil {
				status = "completed " + s.CompletedAt.Format("2006-01-02")
			}
			fmt.Printf("  %s  week of %s  [%s]  %s\n", s.ID, s.WeekStart.Format("2006-01-02"), s.Type, status)
		}
		return nil
	},
}

func init() {
	reviewStartCmd.Flags().StringVar(&reviewType, "type", "full", "review type: full, quick, or focused")
	reviewStartCmd.Flags().StringSliceVar(&reviewFocus, "focus", nil, "focus areas for a focused review")
	reviewStepCmd.Flags().StringVar(&reviewNotes, "notes", "", "notes to record with the step")
	reviewStepCmd.Flags().BoolVar(&reviewSave, "save", true, "save the finished review to today's journal")

	reviewCmd.AddCommand(reviewStartCmd)
	reviewCmd.AddCommand(reviewStatusCmd)
	reviewCmd.AddCommand(reviewStepCmd)
	reviewCmd.AddCommand(reviewListCmd)
	rootCmd.AddCommand(reviewCmd)
}
