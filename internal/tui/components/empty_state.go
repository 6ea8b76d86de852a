// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/tui/styles"
)

// EmptyState represents an empty state message with optional suggestions.
type EmptyState struct {
	// Icon is an optional icon to display.
	Icon string
	// Title is the main empty state message.
	Title string
	// Subtitle is an optional secondary message.
	Subtitle string
	// Suggestions are actionable commands the user can run.
	Suggestions []Suggestion
}

// Suggestion represents a suggested command with description.
type Suggestion struct {
	// Command is the CLI command to run (e.g., "outreach import <file>").
	Command string
	// Description explains what the command does.
	Description string
}

// Render renders the empty state with the given styles.
func (e EmptyState) Render(styleSet styles.Styles) string {
	var lines []string

	titleLine := e.Title
	if e.Icon != "" {
		titleLine = e.Icon + "  " + titleLine
	}
	lines = append(lines, styleSet.Muted.Render(titleLine))

	if e.Subtitle != "" {
		lines = append(lines, styleSet.Muted.Render(e.Subtitle))
	}

	if len(e.Suggestions) > 0 {
		lines = append(lines, "")
		lines = append(lines, styleSet.Text.Render("Get started:"))
		for _, s := range e.Suggestions {
			cmdLine := fmt.Sprintf("  %s", styleSet.Accent.Render(s.Command))
			if s.Description != "" {
				cmdLine += styleSet.Muted.Render(fmt.Sprintf("  # %s", s.Description))
			}
			lines = append(lines, cmdLine)
		}
	}

	return strings.Join(lines, "\n")
}

// RenderCompact renders a compact single-line empty state.
func (e EmptyState) RenderCompact(styleSet styles.Styles) string {
	line := e.Title
	if e.Icon != "" {
		line = e.Icon + " " + line
	}
	if len(e.Suggestions) > 0 {
		line += fmt.Sprintf(" Try: %s", e.Suggestions[0].Command)
	}
	return styleSet.Muted.Render(line)
}

// Common empty states for reuse across views.

// EmptyDashboard returns an empty state for a fresh install.
func EmptyDashboard() EmptyState {
	return EmptyState{
		Icon:     "🚀",
		Title:    "No outreach activity yet",
		Subtitle: "Import prospects and run a campaign to see quota and results here.",
		Suggestions: []Suggestion{
			{Command: "outreach init", Description: "write the default config and example campaign"},
			{Command: "outreach import <file>", Description: "load prospects from a list file"},
			{Command: "outreach run example --dry-run", Description: "rehearse a campaign without sending"},
		},
	}
}

// EmptyAudit returns an empty state for when no audit events exist.
func EmptyAudit() EmptyState {
	return EmptyState{
		Icon:     "📋",
		Title:    "No audit events yet",
		Subtitle: "Every import, qualification, and send is logged here.",
		Suggestions: []Suggestion{
			{Command: "outreach run example --dry-run", Description: "generate some events"},
		},
	}
}

// EmptyProspects returns an empty state for an empty prospect store.
func EmptyProspects() EmptyState {
	return EmptyState{
		Icon:     "🔍",
		Title:    "No prospects stored",
		Subtitle: "Prospects come from list files or platform searches.",
		Suggestions: []Suggestion{
			{Command: "outreach import <file>", Description: "load a prospect list"},
			{Command: "outreach discover \"<query>\"", Description: "search a platform"},
		},
	}
}
