// Package tui implements the pipebuilder terminal user interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/editor"
	"github.com/opencode-ai/pipebuilder/internal/scriptgen"
	"github.com/opencode-ai/pipebuilder/internal/tui/components"
	"github.com/opencode-ai/pipebuilder/internal/tui/styles"
)

// Options configures the TUI program.
type Options struct {
	// Editor is the session to drive. A fresh one is created when nil.
	Editor *editor.Editor

	// Loader supplies the block catalog, loaded once in Init.
	Loader catalog.Loader

	// Generator writes the script once a path was chosen.
	Generator editor.Generator

	// Theme names a palette from styles.Themes.
	Theme string

	// DefaultOutput prefills the path prompt.
	DefaultOutput string

	Logger zerolog.Logger
}

// Run launches the pipebuilder TUI program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	program := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type focusID int

const (
	focusCatalog focusID = iota
	focusPipeline
)

type modeID int

const (
	modeBrowse modeID = iota
	modeFilter
	modePathPrompt
	modePreview
)

type model struct {
	ctx       context.Context
	editor    *editor.Editor
	loader    catalog.Loader
	generator editor.Generator
	logger    zerolog.Logger

	width  int
	height int
	styles styles.Styles

	focus  focusID
	mode   modeID
	cursor int

	palette   *components.CatalogPalette
	filter    textinput.Model
	pathInput textinput.Model
	preview   *components.ScriptViewer

	loading    bool
	generating bool
}

const (
	minWidth  = 60
	minHeight = 15
)

func newModel(ctx context.Context, opts Options) model {
	if ctx == nil {
		ctx = context.Background()
	}
	ed := opts.Editor
	if ed == nil {
		ed = editor.New(editor.WithLogger(opts.Logger))
	}
	defaultOutput := strings.TrimSpace(opts.DefaultOutput)
	if defaultOutput == "" {
		defaultOutput = scriptgen.DefaultOutputPath
	}

	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter blocks"
	filter.CharLimit = 64

	pathInput := textinput.New()
	pathInput.Prompt = "Save to: "
	pathInput.Placeholder = scriptgen.DefaultOutputPath
	pathInput.CharLimit = 512
	pathInput.SetValue(defaultOutput)

	palette := components.NewCatalogPalette()
	palette.SetCatalog(ed.Catalog())

	return model{
		ctx:       ctx,
		editor:    ed,
		loader:    opts.Loader,
		generator: opts.Generator,
		logger:    opts.Logger,
		styles:    styles.ForTheme(opts.Theme),
		focus:     focusCatalog,
		mode:      modeBrowse,
		palette:   palette,
		filter:    filter,
		pathInput: pathInput,
		preview:   components.NewScriptViewer(),
		loading:   opts.Loader != nil,
	}
}

func (m model) Init() tea.Cmd {
	if m.loader == nil {
		return nil
	}
	return loadCatalogCmd(m.ctx, m.loader)
}

func (m model) View() string {
	if m.width > 0 && m.height > 0 {
		if m.width < minWidth || m.height < minHeight {
			return fmt.Sprintf("%s\n", joinLines(m.smallViewLines()))
		}
	}
	return fmt.Sprintf("%s\n", joinLines(m.viewLines()))
}

func (m model) smallViewLines() []string {
	message := fmt.Sprintf("Terminal too small (%dx%d).", m.width, m.height)
	hint := fmt.Sprintf("Resize to at least %dx%d.", minWidth, minHeight)

	return []string{
		m.styles.Warning.Render(message),
		m.styles.Muted.Render(hint),
		m.styles.Muted.Render("Press ctrl+c to quit."),
	}
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
