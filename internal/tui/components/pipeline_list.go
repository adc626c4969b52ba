package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opencode-ai/pipebuilder/internal/models"
	"github.com/opencode-ai/pipebuilder/internal/tui/styles"
)

// PipelineList contains data needed to render the pipeline pane.
type PipelineList struct {
	Blocks  []models.BlockInstance
	Cursor  int
	Focused bool

	// DragSource and Indicator are -1 when unset.
	DragSource int
	Indicator  int
}

// NoRow marks an unset DragSource or Indicator.
const NoRow = -1

// Render renders at most height lines, keeping the cursor row visible.
func (l PipelineList) Render(styleSet styles.Styles, width, height int) []string {
	heading := styleSet.Muted
	if l.Focused {
		heading = styleSet.Accent
	}
	lines := []string{heading.Render(fmt.Sprintf("PIPELINE (%d)", len(l.Blocks)))}
	if len(l.Blocks) == 0 {
		return append(lines, strings.Split(EmptyPipeline().Render(styleSet), "\n")...)
	}
	if width <= 0 {
		width = defaultWidth
	}

	indicator := paletteLine{text: styleSet.DropTarget.Render(truncate("  ──▶ drop here", width)), entry: -1}
	rows := make([]paletteLine, 0, len(l.Blocks)+1)
	cursorLine := 0
	for idx, block := range l.Blocks {
		// The dragged block lands at the indicator row, so the marker sits
		// on the side of that row the block will occupy.
		if idx == l.Indicator && l.Indicator < l.DragSource {
			rows = append(rows, indicator)
		}
		if idx == l.Cursor {
			cursorLine = len(rows)
		}
		rows = append(rows, paletteLine{text: l.renderRow(styleSet, idx, block, width), entry: idx})
		if idx == l.Indicator && l.DragSource != NoRow && l.Indicator > l.DragSource {
			rows = append(rows, indicator)
		}
	}
	return append(lines, window(rows, cursorLine, height-len(lines))...)
}

func (l PipelineList) renderRow(styleSet styles.Styles, idx int, block models.BlockInstance, width int) string {
	marker := "  "
	style := styleSet.Text
	switch {
	case idx == l.DragSource:
		marker = "≡ "
		style = styleSet.Dragging
	case l.Focused && idx == l.Cursor:
		marker = "> "
		style = styleSet.Cursor
	}
	label := fmt.Sprintf("%s%d. %s", marker, idx+1, strings.ToUpper(block.TypeID))
	if extra := codeSummary(block.Code); extra != "" {
		label += "  " + extra
	}
	return style.Render(truncate(label, width))
}

func codeSummary(code string) string {
	count := 0
	for _, line := range strings.Split(code, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	switch count {
	case 0:
		return ""
	case 1:
		return "(1 line)"
	default:
		return fmt.Sprintf("(%d lines)", count)
	}
}

// RenderBlockDetail renders the code of one block in a bordered box.
func RenderBlockDetail(styleSet styles.Styles, block models.BlockInstance, width, maxLines int) string {
	header := styleSet.Accent.Render("# " + strings.ToUpper(block.TypeID))
	code := strings.TrimRight(strings.ReplaceAll(block.Code, "\r\n", "\n"), "\n")
	body := []string{header}
	if code == "" {
		body = append(body, styleSet.Muted.Render("(no code)"))
	} else {
		codeLines := strings.Split(code, "\n")
		if maxLines > 0 && len(codeLines) > maxLines {
			hidden := len(codeLines) - maxLines
			codeLines = append(codeLines[:maxLines], fmt.Sprintf("... %d more", hidden))
		}
		for _, line := range codeLines {
			body = append(body, styleSet.Text.Render(truncate(line, width-4)))
		}
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(styleSet.Theme.Tokens.Border)).
		Padding(0, 1).
		MaxWidth(width)

	return boxStyle.Render(strings.Join(body, "\n"))
}
