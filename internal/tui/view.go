package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opencode-ai/pipebuilder/internal/tui/components"
)

const (
	defaultViewWidth  = 100
	defaultViewHeight = 30
	viewChrome        = 8
	detailLines       = 6
)

func (m model) viewLines() []string {
	width, height := m.viewSize()
	lines := []string{m.styles.Title.Render("Pipeline Builder"), ""}

	if m.mode == modePreview {
		lines = append(lines, components.RenderScriptPanel(m.styles, m.preview, "run.py preview", width))
		lines = append(lines, m.styles.Muted.Render("↑/↓ scroll  n next block  esc close"))
		return lines
	}

	bodyHeight := height - viewChrome
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	catalogWidth := width * 2 / 5
	pipelineWidth := width - catalogWidth - 2

	left := m.palette.Render(m.styles, catalogWidth, bodyHeight, m.focus == focusCatalog)
	if m.mode == modeFilter {
		left[0] = left[0] + "  " + m.filter.View()
	}
	if m.loading {
		left = append(left, m.styles.Muted.Render("Loading catalog..."))
	}

	right := m.pipelineList().Render(m.styles, pipelineWidth, bodyHeight)
	if m.focus == focusPipeline && m.editor.Len() > 0 {
		block := m.editor.Blocks()[clampCursor(m.cursor, m.editor.Len())]
		right = append(right, "", components.RenderBlockDetail(m.styles, block, pipelineWidth, detailLines))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(catalogWidth).Render(joinLines(left)),
		"  ",
		lipgloss.NewStyle().Width(pipelineWidth).Render(joinLines(right)),
	)
	lines = append(lines, body, "", m.statusLine())

	if n, ok := m.editor.LatestNotification(); ok {
		lines = append(lines, components.RenderNotice(m.styles, n, width))
	}
	if m.mode == modePathPrompt {
		lines = append(lines, m.pathInput.View(), m.styles.Muted.Render("enter generate  esc cancel"))
	}

	lines = append(lines, "", components.RenderQuickActionBar(m.styles, components.EditorQuickActions(components.ActionContext{
		PipelineFocused: m.focus == focusPipeline,
		Dragging:        m.editor.Dragging(),
		HasBlocks:       m.editor.Len() > 0,
		HasCatalog:      m.palette.Len() > 0,
		EmitLocalFiles:  m.editor.EmitLocalFiles(),
		Generating:      m.generating,
	})))
	return lines
}

func (m model) viewSize() (int, int) {
	width, height := m.width, m.height
	if width <= 0 {
		width = defaultViewWidth
	}
	if height <= 0 {
		height = defaultViewHeight
	}
	return width, height
}

func (m model) pipelineList() components.PipelineList {
	list := components.PipelineList{
		Blocks:     m.editor.Blocks(),
		Cursor:     m.cursor,
		Focused:    m.focus == focusPipeline,
		DragSource: components.NoRow,
		Indicator:  components.NoRow,
	}
	if source, ok := m.editor.DragSource(); ok {
		list.DragSource = source
	}
	if indicator, ok := m.editor.DropIndicator(); ok {
		list.Indicator = indicator
	}
	return list
}

func (m model) statusLine() string {
	parts := []string{
		fmt.Sprintf("%d blocks", m.editor.Len()),
		fmt.Sprintf("catalog: %s", m.catalogLabel()),
	}
	if m.editor.EmitLocalFiles() {
		parts = append(parts, "local files: on")
	} else {
		parts = append(parts, "local files: off")
	}
	if m.editor.Dragging() {
		parts = append(parts, m.styles.Dragging.Render("moving block"))
	}
	if m.generating {
		parts = append(parts, m.styles.Info.Render("generating..."))
	}
	return m.styles.Muted.Render(strings.Join(parts, " | "))
}

func (m model) catalogLabel() string {
	c := m.editor.Catalog()
	switch {
	case m.loading:
		return "loading"
	case c.BlockCount() == 0:
		return "empty"
	case c.Source != "":
		return fmt.Sprintf("%d blocks from %s", c.BlockCount(), c.Source)
	default:
		return fmt.Sprintf("%d blocks", c.BlockCount())
	}
}
