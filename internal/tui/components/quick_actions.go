// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opencode-ai/pipebuilder/internal/tui/styles"
)

// QuickAction represents a keyboard-triggered action.
type QuickAction struct {
	Key     string // Keyboard key (e.g., "K", "space")
	Label   string // Display label (e.g., "Up", "Grab")
	Enabled bool   // Whether the action is available
}

// ActionContext describes what the editor can do right now.
type ActionContext struct {
	PipelineFocused bool
	Dragging        bool
	HasBlocks       bool
	HasCatalog      bool
	EmitLocalFiles  bool
	Generating      bool
}

// RenderQuickActionBar renders a horizontal bar of available quick actions.
// Format: "K:Up  J:Down  x:Delete  space:Grab"
func RenderQuickActionBar(styleSet styles.Styles, actions []QuickAction) string {
	if len(actions) == 0 {
		return ""
	}

	var parts []string
	for _, action := range actions {
		if !action.Enabled {
			continue
		}
		keyStyle := styleSet.Accent.Copy().Bold(true)
		labelStyle := styleSet.Muted
		part := fmt.Sprintf("%s:%s", keyStyle.Render(action.Key), labelStyle.Render(action.Label))
		parts = append(parts, part)
	}

	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, "  ")
}

// EditorQuickActions returns the actions offered in the given context.
func EditorQuickActions(ctx ActionContext) []QuickAction {
	if ctx.Dragging {
		return []QuickAction{
			{Key: "↑/↓", Label: "Move target", Enabled: true},
			{Key: "space", Label: "Drop", Enabled: true},
			{Key: "esc", Label: "Cancel", Enabled: true},
		}
	}

	local := "Local files: off"
	if ctx.EmitLocalFiles {
		local = "Local files: on"
	}
	generate := QuickAction{Key: "g", Label: "Generate", Enabled: !ctx.Generating}

	if ctx.PipelineFocused {
		return []QuickAction{
			{Key: "K", Label: "Up", Enabled: ctx.HasBlocks},
			{Key: "J", Label: "Down", Enabled: ctx.HasBlocks},
			{Key: "x", Label: "Delete", Enabled: ctx.HasBlocks},
			{Key: "space", Label: "Grab", Enabled: ctx.HasBlocks},
			{Key: "p", Label: "Preview", Enabled: true},
			{Key: "l", Label: local, Enabled: true},
			generate,
			{Key: "tab", Label: "Catalog", Enabled: true},
		}
	}

	return []QuickAction{
		{Key: "enter", Label: "Add", Enabled: ctx.HasCatalog},
		{Key: "/", Label: "Filter", Enabled: ctx.HasCatalog},
		{Key: "l", Label: local, Enabled: true},
		generate,
		{Key: "tab", Label: "Pipeline", Enabled: true},
	}
}

// RenderCenteredActionBar renders the action bar centered in width.
func RenderCenteredActionBar(styleSet styles.Styles, actions []QuickAction, width int) string {
	bar := RenderQuickActionBar(styleSet, actions)
	if bar == "" {
		return ""
	}

	containerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(styleSet.Theme.Tokens.TextMuted)).
		Width(width).
		Align(lipgloss.Center)

	return containerStyle.Render(bar)
}
