package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opencode-ai/pipebuilder/internal/editor"
	"github.com/opencode-ai/pipebuilder/internal/scriptgen"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.preview.Height = msg.Height - previewChrome
	case catalogLoadedMsg:
		m.loading = false
		if msg.err != nil {
			_ = m.editor.CatalogFailed(msg.err)
		} else {
			m.editor.SetCatalog(msg.catalog)
		}
		m.palette.SetCatalog(m.editor.Catalog())
	case pathChosenMsg:
		m.mode = modeBrowse
		m.pathInput.Blur()
		if !msg.ok {
			m.editor.Record(editor.Outcome{Kind: editor.OutcomeCancelled})
			return m, nil
		}
		m.generating = true
		return m, generateCmd(m.ctx, m.editor.Blocks(), msg.path, m.generator, m.editor.EmitLocalFiles())
	case generationDoneMsg:
		m.generating = false
		m.editor.Record(msg.outcome)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

const previewChrome = 6

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modePathPrompt:
		return m.handlePathPromptKey(msg)
	case modeFilter:
		return m.handleFilterKey(msg)
	case modePreview:
		return m.handlePreviewKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		if m.focus == focusCatalog {
			m.focus = focusPipeline
		} else {
			m.editor.CancelDrag()
			m.focus = focusCatalog
		}
		return m, nil
	case "l":
		m.editor.ToggleEmitLocalFiles()
		return m, nil
	case "g":
		return m.openPathPrompt()
	case "p":
		return m.openPreview(), nil
	case "c":
		m.editor.DismissNotifications()
		return m, nil
	case "/":
		m.editor.CancelDrag()
		m.focus = focusCatalog
		m.mode = modeFilter
		m.filter.SetValue(m.palette.Query)
		m.filter.CursorEnd()
		return m, m.filter.Focus()
	case "esc":
		if m.editor.Dragging() {
			m.editor.CancelDrag()
		} else if m.palette.Filtering() {
			m.palette.Reset()
			m.filter.SetValue("")
		}
		return m, nil
	}

	if m.focus == focusCatalog {
		return m.handleCatalogKey(msg), nil
	}
	return m.handlePipelineKey(msg), nil
}

func (m model) handleCatalogKey(msg tea.KeyMsg) model {
	switch msg.String() {
	case "up", "k":
		m.palette.Move(-1)
	case "down", "j":
		m.palette.Move(1)
	case "enter":
		if m.editor.Add(m.palette.SelectedDescriptor()) {
			m.cursor = m.editor.Len() - 1
		}
	}
	return m
}

func (m model) handlePipelineKey(msg tea.KeyMsg) model {
	n := m.editor.Len()
	if n == 0 {
		return m
	}

	switch msg.String() {
	case "up", "k":
		m = m.moveCursor(-1)
	case "down", "j":
		m = m.moveCursor(1)
	case "home":
		m = m.moveCursor(-n)
	case "end":
		m = m.moveCursor(n)
	case "K":
		if changed, err := m.editor.MoveUp(m.cursor); err == nil && changed {
			m.cursor--
		}
	case "J":
		if changed, err := m.editor.MoveDown(m.cursor); err == nil && changed {
			m.cursor++
		}
	case "x", "delete":
		if err := m.editor.Remove(m.cursor); err == nil {
			m.cursor = clampCursor(m.cursor, m.editor.Len())
		}
	case " ":
		if m.editor.Dragging() {
			m = m.drop()
		} else if err := m.editor.StartDrag(m.cursor); err == nil {
			m.editor.Hover(m.cursor)
		}
	case "enter":
		if m.editor.Dragging() {
			m = m.drop()
		}
	}
	return m
}

// moveCursor moves the pipeline cursor; during a drag the indicator
// follows it.
func (m model) moveCursor(delta int) model {
	next := clampCursor(m.cursor+delta, m.editor.Len())
	if next == m.cursor {
		return m
	}
	if m.editor.Dragging() {
		m.editor.Leave(m.cursor)
		m.editor.Hover(next)
	}
	m.cursor = next
	return m
}

func (m model) drop() model {
	m.editor.Drop(m.cursor)
	m.cursor = clampCursor(m.cursor, m.editor.Len())
	return m
}

func clampCursor(cursor, n int) int {
	if n <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func (m model) openPathPrompt() (tea.Model, tea.Cmd) {
	if m.generating {
		m.editor.Notify(editor.LevelInfo, "Generation already in progress")
		return m, nil
	}
	m.editor.CancelDrag()
	m.mode = modePathPrompt
	m.pathInput.CursorEnd()
	return m, tea.Batch(m.pathInput.Focus(), textinput.Blink)
}

func (m model) handlePathPromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, choosePathCmd(m.pathInput.Value(), true)
	case "esc":
		return m, choosePathCmd("", false)
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeBrowse
		m.filter.Blur()
		return m, nil
	case "esc":
		m.mode = modeBrowse
		m.filter.Blur()
		m.filter.SetValue("")
		m.palette.Reset()
		return m, nil
	case "up":
		m.palette.Move(-1)
		return m, nil
	case "down":
		m.palette.Move(1)
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != m.palette.Query {
		m.palette.SetQuery(m.filter.Value())
	}
	return m, cmd
}

// openPreview renders the current pipeline and scrolls to the block under
// the cursor.
func (m model) openPreview() model {
	script, err := scriptgen.RenderScript(m.editor.Blocks())
	if err != nil {
		m.editor.Notify(editor.LevelError, "Preview failed: "+err.Error())
		return m
	}
	m.editor.CancelDrag()
	m.preview.SetContent(script)
	m.preview.ScrollToTop()
	m.preview.ClearSearch()
	if blocks := m.editor.Blocks(); m.cursor < len(blocks) {
		typeID := blocks[m.cursor].TypeID
		earlier := 0
		for _, block := range blocks[:m.cursor] {
			if block.TypeID == typeID {
				earlier++
			}
		}
		m.preview.SetSearchAt("# "+strings.ToUpper(typeID), earlier)
	}
	m.mode = modePreview
	return m
}

func (m model) handlePreviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "p", "q":
		m.mode = modeBrowse
	case "up", "k":
		m.preview.ScrollUp(1)
	case "down", "j":
		m.preview.ScrollDown(1)
	case "pgup":
		m.preview.ScrollUp(m.preview.Height / 2)
	case "pgdown":
		m.preview.ScrollDown(m.preview.Height / 2)
	case "home":
		m.preview.ScrollToTop()
	case "end":
		m.preview.ScrollToBottom()
	case "n":
		m.preview.NextSearchHit()
	}
	return m, nil
}
