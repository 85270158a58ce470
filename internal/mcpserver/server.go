// Package mcpserver exposes the escalation scheduler's operations as MCP
// tools over stdio, so agents and editor integrations can manage
// reminders alongside the running daemon.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/solomonsojay/TaskDefender-sub000/internal/reminder"
	"github.com/solomonsojay/TaskDefender-sub000/internal/scheduler"
)

const (
	serverName    = "taskdefender"
	serverVersion = "1.0.0"
)

// Server is the MCP server over a scheduler.
type Server struct {
	mcpServer *server.MCPServer
	sched     *scheduler.Scheduler
}

// NewServer builds the tool surface over the given scheduler.
func NewServer(sched *scheduler.Scheduler) *Server {
	s := &Server{sched: sched}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("create_reminder",
			mcp.WithDescription("Create a reminder. Fires through the configured channels at the scheduled time and keeps re-firing until acknowledged, snoozed, or dismissed"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("scheduled_for", mcp.Required(), mcp.Description("When to fire, RFC3339 (e.g. 2026-01-15T09:00:00Z)")),
			mcp.WithString("message", mcp.Description("Body text; defaults to title")),
			mcp.WithString("kind", mcp.Description("reminder, nudge, deadline, celebration, or emergency (default: reminder)")),
			mcp.WithString("recurring", mcp.Description("none, daily, weekly, or workdays (default: none)")),
			mcp.WithNumber("interval_minutes", mcp.Description("Re-fire spacing while unacknowledged")),
			mcp.WithString("snooze_options", mcp.Description("Comma-separated snooze durations in minutes, e.g. 5,10,15")),
			mcp.WithString("task_id", mcp.Description("Optional task to link the reminder to")),
		),
		s.handleCreate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders, soonest first"),
			mcp.WithBoolean("active_only", mcp.Description("Only reminders still armed (default: false)")),
		),
		s.handleList,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDelete,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("toggle_reminder",
			mcp.WithDescription("Flip a reminder's active flag"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleToggle,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("acknowledge_reminder",
			mcp.WithDescription("Acknowledge a fired reminder; recurring reminders advance to their next slot"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleAcknowledge,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("snooze_reminder",
			mcp.WithDescription("Snooze a fired reminder for a number of minutes"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithNumber("minutes", mcp.Required(), mcp.Description("Snooze duration in minutes")),
		),
		s.handleSnooze,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("dismiss_reminder",
			mcp.WithDescription("Dismiss a fired reminder; it stays stored but will not fire again"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDismiss,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_task_reminder",
			mcp.WithDescription("Create a reminder linked to a task"),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("scheduled_for", mcp.Required(), mcp.Description("When to fire, RFC3339")),
			mcp.WithString("message", mcp.Description("Body text")),
			mcp.WithNumber("interval_minutes", mcp.Description("Re-fire spacing while unacknowledged")),
		),
		s.handleSetTaskReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("clear_task_reminders",
			mcp.WithDescription("Delete every reminder linked to a task"),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
		),
		s.handleClearTaskReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_stats",
			mcp.WithDescription("Intervention statistics: total, trailing 24h, mean level"),
		),
		s.handleGetStats,
	)
}

func parseSpec(req mcp.CallToolRequest) (scheduler.Spec, error) {
	var spec scheduler.Spec

	spec.Title = req.GetString("title", "")
	if spec.Title == "" {
		return spec, fmt.Errorf("title is required")
	}

	scheduledFor := req.GetString("scheduled_for", "")
	if scheduledFor == "" {
		return spec, fmt.Errorf("scheduled_for is required")
	}
	ts, err := time.Parse(time.RFC3339, scheduledFor)
	if err != nil {
		return spec, fmt.Errorf("invalid scheduled_for: %v (use RFC3339, e.g. 2026-01-15T09:00:00Z)", err)
	}
	spec.ScheduledFor = ts

	spec.Message = req.GetString("message", "")
	spec.Kind = reminder.Kind(req.GetString("kind", ""))
	spec.Recurring = reminder.Recurrence(req.GetString("recurring", ""))
	spec.IntervalMinutes = int(req.GetFloat("interval_minutes", 0))
	spec.TaskID = req.GetString("task_id", "")

	if opts := req.GetString("snooze_options", ""); opts != "" {
		for _, part := range strings.Split(opts, ",") {
			var m int
			if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &m); err != nil {
				return spec, fmt.Errorf("invalid snooze option %q", part)
			}
			spec.SnoozeOptions = append(spec.SnoozeOptions, m)
		}
	}
	return spec, nil
}

func (s *Server) handleCreate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spec, err := parseSpec(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, err := s.sched.CreateReminder(spec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created reminder %s.", id)), nil
}

func (s *Server) handleList(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var list []*reminder.Reminder
	if req.GetBool("active_only", false) {
		list = s.sched.Store().Active()
	} else {
		list = s.sched.Store().All()
	}

	if len(list) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}
	output, _ := json.MarshalIndent(list, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleDelete(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	if err := s.sched.DeleteReminder(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}

func (s *Server) handleToggle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	active, err := s.sched.ToggleActive(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to toggle reminder: %v", err)), nil
	}
	if active {
		return mcp.NewToolResultText(fmt.Sprintf("Reminder %s is now active.", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s is now inactive.", id)), nil
}

func (s *Server) handleAcknowledge(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	if err := s.sched.Acknowledge(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to acknowledge reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s acknowledged.", id)), nil
}

func (s *Server) handleSnooze(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	minutes := int(req.GetFloat("minutes", 0))
	if err := s.sched.Snooze(id, minutes); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to snooze reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s snoozed for %d minutes.", id, minutes)), nil
}

func (s *Server) handleDismiss(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	if err := s.sched.Dismiss(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to dismiss reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s dismissed.", id)), nil
}

func (s *Server) handleSetTaskReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := req.GetString("task_id", "")
	if taskID == "" {
		return mcp.NewToolResultError("task_id is required"), nil
	}
	spec, err := parseSpec(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, err := s.sched.SetTaskReminder(taskID, spec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set task reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created reminder %s for task %s.", id, taskID)), nil
}

func (s *Server) handleClearTaskReminders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := req.GetString("task_id", "")
	if taskID == "" {
		return mcp.NewToolResultError("task_id is required"), nil
	}
	if err := s.sched.ClearTaskReminders(taskID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clear task reminders: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Cleared reminders for task %s.", taskID)), nil
}

func (s *Server) handleGetStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.sched.GetStats()
	output, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}
