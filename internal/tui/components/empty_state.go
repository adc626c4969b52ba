// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/pipebuilder/internal/tui/styles"
)

// EmptyState represents an empty state message with optional suggestions.
type EmptyState struct {
	// Icon is an optional icon to display (e.g., "📭", "🔍", "🚀").
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
	// Command is the key or CLI command to run (e.g., "pipebuilder init").
	Command string
	// Description explains what the command does.
	Description string
}

// Render renders the empty state with the given styles.
func (e EmptyState) Render(styleSet styles.Styles) string {
	var lines []string

	// Icon + Title
	titleLine := e.Title
	if e.Icon != "" {
		titleLine = e.Icon + "  " + titleLine
	}
	lines = append(lines, styleSet.Muted.Render(titleLine))

	// Subtitle
	if e.Subtitle != "" {
		lines = append(lines, styleSet.Muted.Render(e.Subtitle))
	}

	// Suggestions
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

// EmptyPipeline returns an empty state for a pipeline with no blocks.
func EmptyPipeline() EmptyState {
	return EmptyState{
		Icon:     "📭",
		Title:    "Pipeline is empty",
		Subtitle: "Blocks run top to bottom in the generated script.",
		Suggestions: []Suggestion{
			{Command: "enter", Description: "add the highlighted catalog block"},
			{Command: "/", Description: "filter the catalog"},
		},
	}
}

// EmptyCatalog returns an empty state for when no catalog could be loaded.
func EmptyCatalog() EmptyState {
	return EmptyState{
		Icon:     "📋",
		Title:    "No blocks available",
		Subtitle: "The block catalog is empty or could not be loaded.",
		Suggestions: []Suggestion{
			{Command: "pipebuilder catalog list", Description: "check which catalog is used"},
			{Command: "pipebuilder init", Description: "write a default config"},
		},
	}
}

// EmptyCategories returns an empty state for a catalog whose categories
// hold no blocks.
func EmptyCategories() EmptyState {
	return EmptyState{
		Icon:     "📂",
		Title:    "Catalog categories are empty",
		Subtitle: "Add blocks under a category in catalog.yaml.",
	}
}

// EmptyCatalogFiltered returns an empty state for when the filter matches nothing.
func EmptyCatalogFiltered(filter string) EmptyState {
	return EmptyState{
		Icon:     "🔍",
		Title:    fmt.Sprintf("No blocks match '%s'", filter),
		Subtitle: "Press / to edit or esc to clear the filter.",
	}
}
