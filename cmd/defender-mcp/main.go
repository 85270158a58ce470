// Command defender-mcp provides an MCP server for reminder management.
//
// It operates directly on the defender state directory. Transitions made
// here are picked up by a running daemon on its next tick; concurrent
// writers race last-writer-wins, which the store accepts by design.
//
// Usage:
//
//	./defender-mcp          # Start MCP server (stdio)
//	./defender-mcp --help   # Show help
//
// Environment:
//
//	DEFENDER_STATE  Path to the state directory (default: state)
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/solomonsojay/TaskDefender-sub000/internal/history"
	"github.com/solomonsojay/TaskDefender-sub000/internal/mcpserver"
	"github.com/solomonsojay/TaskDefender-sub000/internal/reminder"
	"github.com/solomonsojay/TaskDefender-sub000/internal/scheduler"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	statePath := os.Getenv("DEFENDER_STATE")
	if statePath == "" {
		statePath = "state"
	}
	if err := os.MkdirAll(statePath, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create state directory: %v\n", err)
		os.Exit(1)
	}

	store := reminder.NewStore(statePath)
	if err := store.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load reminders: %v\n", err)
		os.Exit(1)
	}
	interventionLog := history.NewLog(statePath)
	if err := interventionLog.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load intervention log: %v\n", err)
		os.Exit(1)
	}

	// No channels here: the server only applies state transitions; the
	// daemon owns delivery.
	sched := scheduler.New(store, interventionLog, noopSink{}, scheduler.Config{})

	s := mcpserver.NewServer(sched)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

type noopSink struct{}

func (noopSink) Dispatch(r *reminder.Reminder, full bool) {}
func (noopSink) ClearPush(reminderID string)              {}

func printHelp() {
	fmt.Println(`TaskDefender MCP Server - reminder management via MCP protocol

USAGE:
    defender-mcp          Start MCP server (communicates via stdio)
    defender-mcp --help   Show this help

ENVIRONMENT:
    DEFENDER_STATE  Path to the defender state directory
                    Default: state

TOOLS:
    create_reminder       Create a reminder (title, scheduled_for, ...)
    list_reminders        List reminders
    delete_reminder       Delete a reminder permanently
    toggle_reminder       Flip a reminder's active flag
    acknowledge_reminder  Acknowledge a fired reminder
    snooze_reminder       Snooze a fired reminder
    dismiss_reminder      Dismiss a fired reminder
    set_task_reminder     Create a reminder linked to a task
    clear_task_reminders  Delete every reminder linked to a task
    get_stats             Intervention statistics`)
}
