package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/editor"
	"github.com/opencode-ai/pipebuilder/internal/models"
)

// catalogLoadedMsg carries the result of the startup catalog load.
type catalogLoadedMsg struct {
	catalog *models.CatalogMap
	err     error
}

// pathChosenMsg is the result of the path prompt. ok is false when the
// user dismissed it.
type pathChosenMsg struct {
	path string
	ok   bool
}

// generationDoneMsg carries the generator outcome.
type generationDoneMsg struct {
	outcome editor.Outcome
}

func loadCatalogCmd(ctx context.Context, loader catalog.Loader) tea.Cmd {
	return func() tea.Msg {
		loaded, err := loader.Load(ctx)
		return catalogLoadedMsg{catalog: loaded, err: err}
	}
}

func choosePathCmd(path string, ok bool) tea.Cmd {
	path = strings.TrimSpace(path)
	return func() tea.Msg {
		return pathChosenMsg{path: path, ok: ok && path != ""}
	}
}

// generateCmd runs the generator on a snapshot taken before the command
// was issued.
func generateCmd(ctx context.Context, snapshot []models.BlockInstance, path string, gen editor.Generator, emitLocalFiles bool) tea.Cmd {
	return func() tea.Msg {
		return generationDoneMsg{outcome: editor.Invoke(ctx, snapshot, path, gen, emitLocalFiles)}
	}
}
