package components

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opencode-ai/pipebuilder/internal/tui/styles"
)

// ScriptViewer displays a scrollable preview of a generated script.
type ScriptViewer struct {
	Lines        []string
	ScrollOffset int
	Height       int
	Width        int
	SearchQuery  string
	SearchIndex  int   // Current search match index
	searchHits   []int // Line indices that match search
}

// NewScriptViewer creates a new script viewer.
func NewScriptViewer() *ScriptViewer {
	return &ScriptViewer{
		Lines:  make([]string, 0),
		Height: 20,
		Width:  60,
	}
}

// SetContent sets the script from a single string.
func (v *ScriptViewer) SetContent(content string) {
	content = strings.TrimRight(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if content == "" {
		v.Lines = nil
	} else {
		v.Lines = strings.Split(content, "\n")
	}
	v.clampScroll()
	v.updateSearchHits()
}

// ScrollUp scrolls the view up by n lines.
func (v *ScriptViewer) ScrollUp(n int) {
	v.ScrollOffset -= n
	v.clampScroll()
}

// ScrollDown scrolls the view down by n lines.
func (v *ScriptViewer) ScrollDown(n int) {
	v.ScrollOffset += n
	v.clampScroll()
}

// ScrollToTop scrolls to the top.
func (v *ScriptViewer) ScrollToTop() {
	v.ScrollOffset = 0
}

// ScrollToBottom scrolls to the bottom.
func (v *ScriptViewer) ScrollToBottom() {
	maxOffset := len(v.Lines) - v.visibleLines()
	if maxOffset < 0 {
		maxOffset = 0
	}
	v.ScrollOffset = maxOffset
}

// SetSearch sets the search query and jumps to the first match.
func (v *ScriptViewer) SetSearch(query string) {
	v.SearchQuery = query
	v.SearchIndex = 0
	v.updateSearchHits()
	if len(v.searchHits) > 0 {
		v.scrollToLine(v.searchHits[0])
	}
}

// SetSearchAt sets the search query and jumps to the nth line (from zero)
// that reads exactly query once trimmed. It stays on the first match when
// there are fewer such lines.
func (v *ScriptViewer) SetSearchAt(query string, nth int) {
	v.SetSearch(query)
	seen := 0
	for idx, line := range v.searchHits {
		if strings.TrimSpace(v.Lines[line]) != query {
			continue
		}
		if seen == nth {
			v.SearchIndex = idx
			v.scrollToLine(line)
			return
		}
		seen++
	}
}

// ClearSearch clears the search.
func (v *ScriptViewer) ClearSearch() {
	v.SearchQuery = ""
	v.SearchIndex = 0
	v.searchHits = nil
}

// NextSearchHit moves to the next search result.
func (v *ScriptViewer) NextSearchHit() {
	if len(v.searchHits) == 0 {
		return
	}
	v.SearchIndex = (v.SearchIndex + 1) % len(v.searchHits)
	v.scrollToLine(v.searchHits[v.SearchIndex])
}

// SearchHitCount returns the number of search matches.
func (v *ScriptViewer) SearchHitCount() int {
	return len(v.searchHits)
}

func (v *ScriptViewer) updateSearchHits() {
	v.searchHits = nil
	if v.SearchQuery == "" {
		return
	}
	query := strings.ToLower(v.SearchQuery)
	for i, line := range v.Lines {
		if strings.Contains(strings.ToLower(line), query) {
			v.searchHits = append(v.searchHits, i)
		}
	}
}

func (v *ScriptViewer) scrollToLine(lineIdx int) {
	visible := v.visibleLines()
	if lineIdx < v.ScrollOffset {
		v.ScrollOffset = lineIdx
	} else if lineIdx >= v.ScrollOffset+visible {
		v.ScrollOffset = lineIdx - visible + 1
	}
	v.clampScroll()
}

func (v *ScriptViewer) visibleLines() int {
	if v.Height <= 2 {
		return 1
	}
	return v.Height - 2 // header and footer
}

func (v *ScriptViewer) clampScroll() {
	maxOffset := len(v.Lines) - v.visibleLines()
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.ScrollOffset > maxOffset {
		v.ScrollOffset = maxOffset
	}
	if v.ScrollOffset < 0 {
		v.ScrollOffset = 0
	}
}

// Render renders the visible part of the script with line numbers.
func (v *ScriptViewer) Render(styleSet styles.Styles) string {
	if len(v.Lines) == 0 {
		return styleSet.Muted.Render("Nothing to preview.")
	}

	visible := v.visibleLines()
	endIdx := v.ScrollOffset + visible
	if endIdx > len(v.Lines) {
		endIdx = len(v.Lines)
	}

	var rendered []string
	lineNumWidth := len(fmt.Sprintf("%d", len(v.Lines)))

	for i := v.ScrollOffset; i < endIdx; i++ {
		line := v.Lines[i]
		if v.Width > 0 {
			line = truncate(line, v.Width-lineNumWidth-3)
		}
		lineNum := fmt.Sprintf("%*d", lineNumWidth, i+1)

		isCurrentHit := false
		isHit := false
		for hitIdx, hitLine := range v.searchHits {
			if hitLine == i {
				isHit = true
				isCurrentHit = hitIdx == v.SearchIndex
				break
			}
		}

		styledLine := highlightPython(styleSet, line)
		if isHit {
			styledLine = v.highlightSearchMatch(styleSet, line, isCurrentHit)
		}

		lineNumStyle := styleSet.Muted
		if isCurrentHit {
			lineNumStyle = styleSet.Accent
		}
		rendered = append(rendered, fmt.Sprintf("%s │ %s", lineNumStyle.Render(lineNum), styledLine))
	}

	if info := v.scrollIndicator(styleSet); info != "" {
		rendered = append(rendered, info)
	}
	return strings.Join(rendered, "\n")
}

func (v *ScriptViewer) scrollIndicator(styleSet styles.Styles) string {
	total := len(v.Lines)
	if total == 0 {
		return ""
	}

	visible := v.visibleLines()
	if total <= visible {
		return styleSet.Muted.Render(fmt.Sprintf("─── %d lines ───", total))
	}

	endLine := v.ScrollOffset + visible
	if endLine > total {
		endLine = total
	}
	percent := (v.ScrollOffset * 100) / (total - visible)

	info := fmt.Sprintf("─── %d-%d of %d (%d%%) ───", v.ScrollOffset+1, endLine, total, percent)
	if v.SearchQuery != "" && len(v.searchHits) > 0 {
		info = fmt.Sprintf("─── %d-%d of %d | Match %d/%d ───",
			v.ScrollOffset+1, endLine, total, v.SearchIndex+1, len(v.searchHits))
	}
	return styleSet.Muted.Render(info)
}

var (
	commentPattern = regexp.MustCompile(`^\s*#`)
	importPattern  = regexp.MustCompile(`^\s*(import|from)\s`)
	keywordPattern = regexp.MustCompile(`^\s*(def|if|for|while|with|return|try|except)\b`)
)

func highlightPython(styleSet styles.Styles, line string) string {
	switch {
	case commentPattern.MatchString(line):
		return styleSet.Accent.Render(line)
	case importPattern.MatchString(line):
		return styleSet.Info.Render(line)
	case keywordPattern.MatchString(line):
		return styleSet.Focus.Render(line)
	default:
		return styleSet.Text.Render(line)
	}
}

func (v *ScriptViewer) highlightSearchMatch(styleSet styles.Styles, line string, isCurrentHit bool) string {
	query := strings.ToLower(v.SearchQuery)
	idx := strings.Index(strings.ToLower(line), query)
	if query == "" || idx < 0 {
		return styleSet.Text.Render(line)
	}

	before := line[:idx]
	match := line[idx : idx+len(query)]
	after := line[idx+len(query):]

	matchStyle := styleSet.Match
	if isCurrentHit {
		matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styleSet.Theme.Tokens.Background)).
			Background(lipgloss.Color(styleSet.Theme.Tokens.Match)).
			Bold(true)
	}
	return styleSet.Text.Render(before) + matchStyle.Render(match) + styleSet.Text.Render(after)
}

// RenderScriptPanel renders a titled preview panel.
func RenderScriptPanel(styleSet styles.Styles, viewer *ScriptViewer, title string, width int) string {
	if viewer == nil {
		return styleSet.Muted.Render("No preview.")
	}

	viewer.Width = width - 4
	content := viewer.Render(styleSet)

	header := styleSet.Accent.Render(title)
	if viewer.SearchQuery != "" {
		searchInfo := fmt.Sprintf(" (/%s)", viewer.SearchQuery)
		if len(viewer.searchHits) > 0 {
			searchInfo = fmt.Sprintf(" (/%s %d/%d)", viewer.SearchQuery, viewer.SearchIndex+1, len(viewer.searchHits))
		}
		header += styleSet.Muted.Render(searchInfo)
	}

	return styleSet.Panel.Copy().Width(width).Padding(0, 1).Render(header + "\n" + content)
}
