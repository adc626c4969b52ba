package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opencode-ai/pipebuilder/internal/editor"
	"github.com/opencode-ai/pipebuilder/internal/tui/styles"
)

// RenderNotice renders a notification with a level badge.
func RenderNotice(styleSet styles.Styles, n editor.Notification, width int) string {
	icon, style := levelDescriptor(styleSet, n.Level)
	line := fmt.Sprintf("%s %s", icon, strings.TrimSpace(n.Message))
	if width > 0 {
		line = truncate(line, width)
	}
	return style.Render(line)
}

func levelDescriptor(styleSet styles.Styles, level editor.Level) (string, lipgloss.Style) {
	switch level {
	case editor.LevelInfo:
		return "OK", styleSet.Success
	case editor.LevelWarning:
		return "WARN", styleSet.Warning
	case editor.LevelError:
		return "ERR", styleSet.Error
	default:
		return "-", styleSet.Muted
	}
}
