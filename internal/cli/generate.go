// Package cli provides the non-interactive generate command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/editor"
	"github.com/opencode-ai/pipebuilder/internal/models"
	"github.com/opencode-ai/pipebuilder/internal/presets"
	"github.com/opencode-ai/pipebuilder/internal/scriptgen"
)

var (
	generateBlocks     []string
	generateOut        string
	generateLocalFiles bool
	generateDryRun     bool
	generatePreset     string
	generateVars       []string
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringSliceVarP(&generateBlocks, "block", "b", nil, "catalog block ID, in pipeline order (repeatable)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "output path; run.py is written in its directory (default: generator.default_output)")
	generateCmd.Flags().BoolVar(&generateLocalFiles, "local-files", false, "also create IN/, OUT/ and .env next to run.py")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "print the script instead of writing it")
	generateCmd.Flags().StringVarP(&generatePreset, "preset", "p", "", "start from a named preset (see 'pipebuilder preset list')")
	generateCmd.Flags().StringArrayVar(&generateVars, "var", nil, "preset variable as key=value (repeatable)")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate run.py from catalog blocks",
	Long: `Generate a run.py job script from an ordered list of catalog blocks.

Without --out the output path is prompted for in an interactive terminal,
and generator.default_output is used otherwise.`,
	Example: `  # Read a workbook, fill empty cells, write it back
  pipebuilder generate -b read_excel -b fill_empty_fields -b write_excel --out jobs/clean/

  # Also create IN/, OUT/ and a .env template
  pipebuilder generate -b download_file_on_s3 -b unzip_Files --out jobs/fetch/ --local-files

  # Start from a preset and append a block
  pipebuilder generate --preset s3-archive --var prefix=exports/ -b clear_folder`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		cfg := GetConfig()
		b, err := newBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		req := generateRequest{
			Blocks:     generateBlocks,
			LocalFiles: generateLocalFiles || cfg.Generator.EmitLocalFiles,
			DryRun:     generateDryRun,
		}
		if generatePreset != "" {
			preset, err := loadPreset(cfg, generatePreset)
			if err != nil {
				return err
			}
			vars, err := parseVars(generateVars)
			if err != nil {
				return err
			}
			req.Preset, req.Vars = preset, vars
		}

		chooser := outputPathChooser(generateOut, cfg.Generator.DefaultOutput, IsInteractive(), askOutputPath)
		return runGenerate(ctx, os.Stdout, b.Catalog, b.Generator, chooser, req)
	},
}

type generateRequest struct {
	Preset     *presets.Preset
	Vars       map[string]string
	Blocks     []string
	LocalFiles bool
	DryRun     bool
}

// GenerateResult is the JSON output of `pipebuilder generate`.
type GenerateResult struct {
	Status         string   `json:"status"`
	RequestedPath  string   `json:"requested_path,omitempty"`
	SavedPath      string   `json:"saved_path,omitempty"`
	Blocks         []string `json:"blocks"`
	EmitLocalFiles bool     `json:"emit_local_files"`
	Error          string   `json:"error,omitempty"`
}

func runGenerate(ctx context.Context, out io.Writer, loader catalog.Loader, gen editor.Generator, chooser editor.PathChooser, req generateRequest) error {
	c, err := loadCatalog(ctx, loader)
	if err != nil {
		return err
	}

	ed := editor.New(editor.WithLogger(logger("editor")), editor.WithEmitLocalFiles(req.LocalFiles))
	ed.SetCatalog(c)
	if req.Preset != nil {
		blocks, err := presets.Render(req.Preset, c, req.Vars)
		if err != nil {
			return &PreflightError{
				Message:  err.Error(),
				Hint:     "Pass preset variables with --var key=value",
				NextStep: "pipebuilder preset show " + req.Preset.Name,
			}
		}
		for _, block := range blocks {
			ed.Add(&models.BlockDescriptor{ID: block.TypeID, CodeTemplate: block.Code})
		}
	}
	for _, id := range req.Blocks {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if !ed.AddByID(id) {
			return &PreflightError{
				Message:  fmt.Sprintf("unknown block %q", id),
				Hint:     "Block IDs come from the catalog",
				NextStep: "pipebuilder catalog list --search " + id,
			}
		}
	}

	if req.DryRun {
		script, err := scriptgen.RenderScript(ed.Blocks())
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, script)
		return err
	}

	outcome := ed.Generate(ctx, chooser, progressGenerator{next: gen})
	result := GenerateResult{
		Status:         outcome.Kind.String(),
		RequestedPath:  outcome.RequestedPath,
		SavedPath:      outcome.SavedPath,
		Blocks:         models.BlockTypeIDs(ed.Blocks()),
		EmitLocalFiles: ed.EmitLocalFiles(),
	}

	switch outcome.Kind {
	case editor.OutcomeFailed:
		if errors.Is(outcome.Err, scriptgen.ErrInvalidPath) {
			return &PreflightError{
				Message:  outcome.Err.Error(),
				Hint:     "Pass a file or directory path",
				NextStep: "pipebuilder generate --out jobs/run.py",
			}
		}
		return fmt.Errorf("generation failed: %w", outcome.Err)
	case editor.OutcomeCancelled:
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(out, result)
		}
		fmt.Fprintln(out, "Generation cancelled.")
		return nil
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, result)
	}
	fmt.Fprintf(out, "Script saved to %s (%d blocks", outcome.SavedPath, len(result.Blocks))
	if result.EmitLocalFiles {
		fmt.Fprint(out, ", with local files")
	}
	fmt.Fprintln(out, ")")
	return nil
}

// progressGenerator reports progress only once a path has been chosen, so
// it never interleaves with the path prompt.
type progressGenerator struct {
	next editor.Generator
}

func (g progressGenerator) GenerateScript(ctx context.Context, pipeline []models.BlockInstance, path string, emitLocalFiles bool) (string, error) {
	if g.next == nil {
		return "", editor.ErrNoGenerator
	}
	step := startProgress("Generating script")
	saved, err := g.next.GenerateScript(ctx, pipeline, path, emitLocalFiles)
	if err != nil {
		step.Fail(err)
		return "", err
	}
	step.Done()
	return saved, nil
}

// outputPathChooser prefers the flag value, then a prompt when interactive,
// then the configured default.
func outputPathChooser(flagValue, defaultPath string, interactive bool, ask func(defaultPath string) (string, error)) editor.PathChooser {
	return editor.PathChooserFunc(func(ctx context.Context) (string, bool, error) {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		if path := strings.TrimSpace(flagValue); path != "" {
			return path, true, nil
		}
		if strings.TrimSpace(defaultPath) == "" {
			defaultPath = scriptgen.DefaultOutputPath
		}
		if !interactive || ask == nil {
			return defaultPath, true, nil
		}
		path, err := ask(defaultPath)
		if errors.Is(err, errPromptCancelled) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		path = strings.TrimSpace(path)
		return path, path != "", nil
	})
}

var errPromptCancelled = errors.New("prompt cancelled")

func askOutputPath(defaultPath string) (string, error) {
	var out string
	prompt := &survey.Input{
		Message: "Save run.py to:",
		Default: defaultPath,
		Help:    "run.py is written inside the directory of this path",
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", errPromptCancelled
		}
		return "", err
	}
	return out, nil
}
