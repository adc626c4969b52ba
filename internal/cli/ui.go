// Package cli provides TUI launch commands.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/config"
	"github.com/opencode-ai/pipebuilder/internal/editor"
	"github.com/opencode-ai/pipebuilder/internal/models"
	"github.com/opencode-ai/pipebuilder/internal/presets"
	"github.com/opencode-ai/pipebuilder/internal/tui"
)

var (
	uiPreset string
	uiVars   []string
)

func init() {
	rootCmd.AddCommand(uiCmd)

	uiCmd.Flags().StringVarP(&uiPreset, "preset", "p", "", "open with a preset's blocks already in the pipeline")
	uiCmd.Flags().StringArrayVar(&uiVars, "var", nil, "preset variable as key=value (repeatable)")
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the pipeline editor",
	Long:  "Launch the pipebuilder terminal user interface (TUI).",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func runTUI(cmd *cobra.Command) error {
	if IsNonInteractive() {
		return &PreflightError{
			Message:  "TUI requires an interactive terminal",
			Hint:     "Run without --non-interactive and with a TTY, or use CLI subcommands",
			NextStep: "pipebuilder generate --help",
		}
	}

	ctx := commandContext(cmd)
	cfg := GetConfig()
	b, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	log := logger("tui")
	ed := editor.New(
		editor.WithLogger(log),
		editor.WithEmitLocalFiles(cfg.Generator.EmitLocalFiles),
	)
	if uiPreset != "" {
		if err := seedPreset(ctx, ed, b.Catalog, cfg, uiPreset, uiVars); err != nil {
			return err
		}
	}

	return tui.Run(ctx, tui.Options{
		Editor:        ed,
		Loader:        b.Catalog,
		Generator:     b.Generator,
		Theme:         cfg.TUI.Theme,
		DefaultOutput: cfg.Generator.DefaultOutput,
		Logger:        log,
	})
}

// seedPreset renders a preset into ed before the TUI starts. The catalog
// loader is memoized, so the TUI's own load reuses this result.
func seedPreset(ctx context.Context, ed *editor.Editor, loader catalog.Loader, cfg *config.Config, name string, pairs []string) error {
	preset, err := loadPreset(cfg, name)
	if err != nil {
		return err
	}
	vars, err := parseVars(pairs)
	if err != nil {
		return err
	}
	c, err := loadCatalog(ctx, loader)
	if err != nil {
		return err
	}
	blocks, err := presets.Render(preset, c, vars)
	if err != nil {
		return &PreflightError{
			Message:  err.Error(),
			Hint:     "Pass preset variables with --var key=value",
			NextStep: "pipebuilder preset show " + preset.Name,
		}
	}
	ed.SetCatalog(c)
	for _, block := range blocks {
		ed.Add(&models.BlockDescriptor{ID: block.TypeID, CodeTemplate: block.Code})
	}
	return nil
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
