// Package cli implements the defenderctl commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solomonsojay/TaskDefender-sub000/internal/history"
	"github.com/solomonsojay/TaskDefender-sub000/internal/reminder"
	"github.com/solomonsojay/TaskDefender-sub000/internal/scheduler"
)

var statePath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "defenderctl",
	Short: "Inspect and mutate TaskDefender reminder state",
	Long: "Command-line access to the defender state directory. Transitions made here\n" +
		"are picked up by a running daemon on its next tick.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&statePath, "state", "s", "", "State directory (default: $DEFENDER_STATE or ./state)")
}

func getStatePath() string {
	if statePath != "" {
		return statePath
	}
	if env := os.Getenv("DEFENDER_STATE"); env != "" {
		return env
	}
	return "state"
}

// openCore loads the stores and wraps them in a scheduler with no delivery
// channels; the CLI only applies state transitions.
func openCore() (*scheduler.Scheduler, *history.Log, error) {
	dir := getStatePath()

	store := reminder.NewStore(dir)
	if err := store.Load(); err != nil {
		return nil, nil, fmt.Errorf("load reminders: %w", err)
	}
	interventionLog := history.NewLog(dir)
	if err := interventionLog.Load(); err != nil {
		return nil, nil, fmt.Errorf("load intervention log: %w", err)
	}

	sched := scheduler.New(store, interventionLog, noopSink{}, scheduler.Config{})
	return sched, interventionLog, nil
}

type noopSink struct{}

func (noopSink) Dispatch(r *reminder.Reminder, full bool) {}
func (noopSink) ClearPush(reminderID string)              {}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitErr("encode", err)
	}
	fmt.Println(string(data))
}
