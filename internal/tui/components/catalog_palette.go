// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/models"
	"github.com/opencode-ai/pipebuilder/internal/tui/styles"
)

// CatalogPalette stores state for the block catalog pane.
type CatalogPalette struct {
	Query string
	Index int

	catalog *models.CatalogMap
	matches []catalog.Match
}

// NewCatalogPalette creates an empty palette.
func NewCatalogPalette() *CatalogPalette {
	return &CatalogPalette{catalog: models.EmptyCatalog()}
}

// SetCatalog replaces the catalog and re-applies the current query.
func (p *CatalogPalette) SetCatalog(c *models.CatalogMap) {
	if c == nil {
		c = models.EmptyCatalog()
	}
	p.catalog = c
	p.refresh()
}

// SetQuery updates the filter and resets the selection.
func (p *CatalogPalette) SetQuery(query string) {
	p.Query = query
	p.Index = 0
	p.refresh()
}

// Reset clears the filter.
func (p *CatalogPalette) Reset() {
	p.SetQuery("")
}

// Filtering reports whether a non-blank query is active.
func (p *CatalogPalette) Filtering() bool {
	return strings.TrimSpace(p.Query) != ""
}

// Len returns the number of visible entries.
func (p *CatalogPalette) Len() int {
	return len(p.matches)
}

// Move shifts the selection, wrapping at both ends.
func (p *CatalogPalette) Move(delta int) {
	if len(p.matches) == 0 {
		p.Index = 0
		return
	}
	if delta == 0 {
		return
	}
	idx := p.Index
	if idx < 0 || idx >= len(p.matches) {
		idx = 0
	}
	idx += delta
	if idx < 0 {
		idx = len(p.matches) - 1
	} else if idx >= len(p.matches) {
		idx = 0
	}
	p.Index = idx
}

// ClampIndex ensures the selection index stays in bounds.
func (p *CatalogPalette) ClampIndex() {
	if len(p.matches) == 0 {
		p.Index = 0
		return
	}
	if p.Index < 0 {
		p.Index = 0
	}
	if p.Index >= len(p.matches) {
		p.Index = len(p.matches) - 1
	}
}

// Selected returns the highlighted entry.
func (p *CatalogPalette) Selected() (catalog.Match, bool) {
	if p.Index < 0 || p.Index >= len(p.matches) {
		return catalog.Match{}, false
	}
	return p.matches[p.Index], true
}

// SelectedDescriptor returns a copy of the highlighted descriptor, or nil.
func (p *CatalogPalette) SelectedDescriptor() *models.BlockDescriptor {
	match, ok := p.Selected()
	if !ok {
		return nil
	}
	desc := match.Descriptor
	return &desc
}

// Render renders at most height lines of the palette. Unfiltered entries
// are grouped under their category; filtered entries are listed by rank.
func (p *CatalogPalette) Render(styleSet styles.Styles, width, height int, focused bool) []string {
	heading := styleSet.Muted
	if focused {
		heading = styleSet.Accent
	}
	lines := []string{heading.Render("BLOCKS")}
	if p.Filtering() {
		lines = append(lines, styleSet.Text.Render(fmt.Sprintf("/ %s", p.Query)))
	}

	if p.Filtering() && len(p.matches) == 0 {
		return append(lines, EmptyCatalogFiltered(p.Query).RenderCompact(styleSet))
	}
	if p.catalog.Len() == 0 {
		return append(lines, EmptyCatalog().RenderCompact(styleSet))
	}

	body := p.renderEntries(styleSet, width, focused)
	if !p.Filtering() && p.catalog.BlockCount() == 0 {
		body = append(body, paletteLine{text: EmptyCategories().RenderCompact(styleSet), entry: -1})
	}
	return append(lines, window(body, selectedLine(body, p.Index), height-len(lines))...)
}

type paletteLine struct {
	text  string
	entry int
}

func (p *CatalogPalette) renderEntries(styleSet styles.Styles, width int, focused bool) []paletteLine {
	if width <= 0 {
		width = defaultWidth
	}
	entry := func(idx int, label string) paletteLine {
		label = truncate(label, width-4)
		if focused && idx == p.Index {
			return paletteLine{text: styleSet.Focus.Render("> " + label), entry: idx}
		}
		return paletteLine{text: styleSet.Muted.Render("  " + label), entry: idx}
	}

	out := make([]paletteLine, 0, len(p.matches)+p.catalog.Len())
	if p.Filtering() {
		for idx, match := range p.matches {
			out = append(out, entry(idx, fmt.Sprintf("%s [%s]", match.Descriptor.Label, match.Category)))
		}
		return out
	}

	// Every category gets a heading, empty ones included.
	idx := 0
	for _, category := range p.catalog.Categories {
		out = append(out, paletteLine{text: styleSet.Title.Render(category.Name), entry: -1})
		if len(category.Blocks) == 0 {
			out = append(out, paletteLine{text: styleSet.Muted.Render("  (no blocks)"), entry: -1})
			continue
		}
		for range category.Blocks {
			if idx >= len(p.matches) {
				break
			}
			out = append(out, entry(idx, p.matches[idx].Descriptor.Label))
			idx++
		}
	}
	return out
}

func selectedLine(lines []paletteLine, index int) int {
	for i, line := range lines {
		if line.entry == index {
			return i
		}
	}
	return 0
}

func (p *CatalogPalette) refresh() {
	p.matches = catalog.Search(p.catalog, p.Query)
	p.ClampIndex()
}

// window returns at most height lines around line selected.
func window(lines []paletteLine, selected, height int) []string {
	if height <= 0 {
		height = 1
	}
	start := 0
	if selected >= height {
		start = selected - height + 1
	}
	end := start + height
	if end > len(lines) {
		end = len(lines)
	}
	out := make([]string, 0, end-start)
	for _, line := range lines[start:end] {
		out = append(out, line.text)
	}
	return out
}
