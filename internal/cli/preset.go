// Package cli provides preset commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/pipebuilder/internal/config"
	"github.com/opencode-ai/pipebuilder/internal/presets"
)

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetShowCmd)
}

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Inspect pipeline presets",
	Long: `Inspect pipeline presets.

Presets are named block sequences loaded from .pipebuilder/presets,
~/.config/pipebuilder/presets and /usr/share/pipebuilder/presets, then the
builtin set. The first preset found for a name wins.`,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := loadPresets(GetConfig())
		if err != nil {
			return err
		}
		return runPresetList(os.Stdout, list)
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		preset, err := loadPreset(GetConfig(), args[0])
		if err != nil {
			return err
		}
		return runPresetShow(os.Stdout, preset)
	},
}

func loadPresets(cfg *config.Config) ([]*presets.Preset, error) {
	list, err := presets.LoadFromSearchPaths(projectDir(cfg))
	if err != nil {
		return nil, &PreflightError{
			Message: fmt.Sprintf("failed to load presets: %v", err),
			Hint:    "Fix or remove the preset file named above",
		}
	}
	return list, nil
}

func loadPreset(cfg *config.Config, name string) (*presets.Preset, error) {
	list, err := loadPresets(cfg)
	if err != nil {
		return nil, err
	}
	preset, err := presets.Find(list, strings.TrimSpace(name))
	if errors.Is(err, presets.ErrPresetNotFound) {
		return nil, &PreflightError{
			Message:  fmt.Sprintf("preset %q not found", name),
			NextStep: "pipebuilder preset list",
		}
	}
	return preset, err
}

// parseVars parses repeated key=value flags.
func parseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &PreflightError{
				Message: fmt.Sprintf("invalid --var %q", pair),
				Hint:    "Use --var key=value",
			}
		}
		vars[key] = value
	}
	return vars, nil
}

const presetDescriptionWidth = 60

func runPresetList(out io.Writer, list []*presets.Preset) error {
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, list)
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No presets found.")
		return nil
	}

	t := newTable("NAME", "STEPS", "SOURCE", "DESCRIPTION").limit(3, presetDescriptionWidth)
	for _, p := range list {
		t.add(p.Name, fmt.Sprintf("%d", len(p.Steps)), p.Source, p.Description)
	}
	return t.write(out)
}

func runPresetShow(out io.Writer, p *presets.Preset) error {
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, p)
	}

	fmt.Fprintf(out, "Name:   %s\n", p.Name)
	fmt.Fprintf(out, "Source: %s\n", p.Source)
	if p.Description != "" {
		fmt.Fprintf(out, "\n%s\n", p.Description)
	}

	fmt.Fprintln(out, "\nSteps:")
	for i, step := range p.Steps {
		suffix := ""
		if step.Code != "" {
			suffix = " (custom code)"
		}
		fmt.Fprintf(out, "  %d. %s%s\n", i+1, step.Block, suffix)
	}

	if len(p.Variables) > 0 {
		fmt.Fprintln(out, "\nVariables:")
		for _, v := range p.Variables {
			line := "  " + v.Name
			switch {
			case v.Required:
				line += " (required)"
			case v.Default != "":
				line += fmt.Sprintf(" (default %q)", v.Default)
			}
			if v.Description != "" {
				line += ": " + v.Description
			}
			fmt.Fprintln(out, line)
		}
	}
	return nil
}
