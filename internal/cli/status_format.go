// Package cli provides status formatting helpers.
package cli

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

func formatRunStatus(status models.RunStatus) string {
	label, color := statusLabelForRun(status)
	return colorize(formatStatusLabel(label, string(status)), color)
}

func statusLabelForRun(status models.RunStatus) (string, string) {
	switch status {
	case models.RunStatusSucceeded:
		return "OK", colorGreen
	case models.RunStatusPending:
		return "BUSY", colorCyan
	case models.RunStatusFailed:
		return "ERR", colorRed
	default:
		return "WARN", colorYellow
	}
}

func formatCatalogSource(source string) string {
	switch strings.TrimSpace(source) {
	case "":
		return colorize("WARN unknown", colorMagenta)
	default:
		return source
	}
}

func formatStatusLabel(label, status string) string {
	normalized := strings.TrimSpace(status)
	if normalized != "" {
		normalized = strings.ReplaceAll(normalized, "_", " ")
	}
	if normalized == "" {
		return label
	}
	return fmt.Sprintf("%s %s", label, normalized)
}
