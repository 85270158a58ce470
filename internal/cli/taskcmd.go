package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/solomonsojay/TaskDefender-sub000/internal/scheduler"
)

func init() {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Task-scoped reminder operations",
	}

	set := &cobra.Command{
		Use:   "set [task-id] [title]",
		Short: "Create a reminder linked to a task",
		Args:  cobra.MinimumNArgs(2),
		Run:   runTaskSet,
	}
	set.Flags().String("at", "", "When to fire, RFC3339 (required)")
	set.Flags().StringP("message", "m", "", "Body text")
	set.Flags().Int("interval", 0, "Re-fire spacing in minutes while unacknowledged")
	set.MarkFlagRequired("at")

	clear := &cobra.Command{
		Use:   "clear [task-id]",
		Short: "Delete every reminder linked to a task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sched, _, err := openCore()
			if err != nil {
				exitErr("task clear", err)
			}
			if err := sched.ClearTaskReminders(args[0]); err != nil {
				exitErr("task clear", err)
			}
			fmt.Println("cleared")
		},
	}

	taskCmd.AddCommand(set, clear)
	RootCmd.AddCommand(taskCmd)
}

func runTaskSet(cmd *cobra.Command, args []string) {
	at, _ := cmd.Flags().GetString("at")
	message, _ := cmd.Flags().GetString("message")
	interval, _ := cmd.Flags().GetInt("interval")

	scheduledFor, err := time.Parse(time.RFC3339, at)
	if err != nil {
		exitErr("task set", fmt.Errorf("invalid --at: %w", err))
	}

	title := ""
	for i, a := range args[1:] {
		if i > 0 {
			title += " "
		}
		title += a
	}

	sched, _, err := openCore()
	if err != nil {
		exitErr("task set", err)
	}
	id, err := sched.SetTaskReminder(args[0], scheduler.Spec{
		Title:           title,
		Message:         message,
		ScheduledFor:    scheduledFor,
		IntervalMinutes: interval,
	})
	if err != nil {
		exitErr("task set", err)
	}
	fmt.Println(id)
}
