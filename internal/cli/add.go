package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/solomonsojay/TaskDefender-sub000/internal/reminder"
	"github.com/solomonsojay/TaskDefender-sub000/internal/scheduler"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a reminder",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAdd,
	}

	cmd.Flags().String("at", "", "When to fire, RFC3339 (required)")
	cmd.Flags().StringP("message", "m", "", "Body text")
	cmd.Flags().String("kind", "reminder", "Kind: reminder, nudge, deadline, celebration, emergency")
	cmd.Flags().String("recurring", "none", "Recurrence: none, daily, weekly, workdays")
	cmd.Flags().Int("interval", 0, "Re-fire spacing in minutes while unacknowledged")
	cmd.Flags().String("snooze", "", "Comma-separated snooze options in minutes")
	cmd.Flags().String("task", "", "Task ID to link to")
	cmd.MarkFlagRequired("at")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	at, _ := cmd.Flags().GetString("at")
	message, _ := cmd.Flags().GetString("message")
	kind, _ := cmd.Flags().GetString("kind")
	recurring, _ := cmd.Flags().GetString("recurring")
	interval, _ := cmd.Flags().GetInt("interval")
	snooze, _ := cmd.Flags().GetString("snooze")
	taskID, _ := cmd.Flags().GetString("task")

	scheduledFor, err := time.Parse(time.RFC3339, at)
	if err != nil {
		exitErr("add", fmt.Errorf("invalid --at: %w", err))
	}

	spec := scheduler.Spec{
		TaskID:          taskID,
		Title:           strings.Join(args, " "),
		Message:         message,
		Kind:            reminder.Kind(kind),
		ScheduledFor:    scheduledFor,
		Recurring:       reminder.Recurrence(recurring),
		IntervalMinutes: interval,
	}
	if snooze != "" {
		for _, part := range strings.Split(snooze, ",") {
			var m int
			if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &m); err != nil {
				exitErr("add", fmt.Errorf("invalid snooze option %q", part))
			}
			spec.SnoozeOptions = append(spec.SnoozeOptions, m)
		}
	}

	sched, _, err := openCore()
	if err != nil {
		exitErr("add", err)
	}
	id, err := sched.CreateReminder(spec)
	if err != nil {
		exitErr("add", err)
	}
	fmt.Println(id)
}
