package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const tablePadding = 2

// table lays out rows in aligned columns. Widths are measured with
// lipgloss so colored status cells line up with plain ones.
type table struct {
	headers  []string
	rows     [][]string
	maxWidth map[int]int
}

func newTable(headers ...string) *table {
	return &table{headers: headers, maxWidth: map[int]int{}}
}

// limit caps column col at width cells. Longer plain-text cells are cut
// with "...".
func (t *table) limit(col, width int) *table {
	t.maxWidth[col] = width
	return t
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(out io.Writer) error {
	lines := make([][]string, 0, len(t.rows)+1)
	if len(t.headers) > 0 {
		lines = append(lines, t.headers)
	}
	for _, row := range t.rows {
		cells := make([]string, len(row))
		for col, cell := range row {
			if limit, ok := t.maxWidth[col]; ok {
				cell = truncateCell(cell, limit)
			}
			cells[col] = cell
		}
		lines = append(lines, cells)
	}

	widths := make([]int, 0)
	for _, cells := range lines {
		for col, cell := range cells {
			if col >= len(widths) {
				widths = append(widths, 0)
			}
			widths[col] = max(widths[col], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	for _, cells := range lines {
		for col, cell := range cells {
			b.WriteString(cell)
			if col < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[col]-lipgloss.Width(cell)+tablePadding))
			}
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func writeTable(out io.Writer, headers []string, rows [][]string) error {
	t := newTable(headers...)
	for _, row := range rows {
		t.add(row...)
	}
	return t.write(out)
}

func truncateCell(cell string, limit int) string {
	if limit <= 0 || lipgloss.Width(cell) <= limit {
		return cell
	}
	runes := []rune(cell)
	if limit <= 3 {
		return string(runes[:min(limit, len(runes))])
	}
	return string(runes[:min(limit-3, len(runes))]) + "..."
}

func formatYesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
