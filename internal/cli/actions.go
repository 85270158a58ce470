package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	ack := &cobra.Command{
		Use:   "ack [id]",
		Short: "Acknowledge a fired reminder",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sched, _, err := openCore()
			if err != nil {
				exitErr("ack", err)
			}
			if err := sched.Acknowledge(args[0]); err != nil {
				exitErr("ack", err)
			}
			fmt.Println("acknowledged")
		},
	}

	snooze := &cobra.Command{
		Use:   "snooze [id] [minutes]",
		Short: "Snooze a fired reminder",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			minutes, err := strconv.Atoi(args[1])
			if err != nil {
				exitErr("snooze", fmt.Errorf("invalid minutes %q", args[1]))
			}
			sched, _, err := openCore()
			if err != nil {
				exitErr("snooze", err)
			}
			if err := sched.Snooze(args[0], minutes); err != nil {
				exitErr("snooze", err)
			}
			fmt.Println("snoozed")
		},
	}

	dismiss := &cobra.Command{
		Use:   "dismiss [id]",
		Short: "Dismiss a fired reminder",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sched, _, err := openCore()
			if err != nil {
				exitErr("dismiss", err)
			}
			if err := sched.Dismiss(args[0]); err != nil {
				exitErr("dismiss", err)
			}
			fmt.Println("dismissed")
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle [id]",
		Short: "Flip a reminder's active flag",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sched, _, err := openCore()
			if err != nil {
				exitErr("toggle", err)
			}
			active, err := sched.ToggleActive(args[0])
			if err != nil {
				exitErr("toggle", err)
			}
			if active {
				fmt.Println("active")
			} else {
				fmt.Println("inactive")
			}
		},
	}

	rm := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a reminder permanently",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sched, _, err := openCore()
			if err != nil {
				exitErr("rm", err)
			}
			if err := sched.DeleteReminder(args[0]); err != nil {
				exitErr("rm", err)
			}
			fmt.Println("deleted")
		},
	}

	RootCmd.AddCommand(ack, snooze, dismiss, toggle, rm)
}
