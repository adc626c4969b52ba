package presets

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/opencode-ai/pipebuilder/internal/models"
	"github.com/opencode-ai/pipebuilder/internal/scriptgen"
)

// Render resolves a preset against a catalog. Steps without a code override
// take the catalog code verbatim; overrides are rendered with vars, falling
// back to variable defaults, and indented into the main() body unless they
// are already indented.
func Render(preset *Preset, catalog *models.CatalogMap, vars map[string]string) ([]models.BlockInstance, error) {
	if preset == nil {
		return nil, fmt.Errorf("preset is required")
	}

	data, err := resolveVars(preset, vars)
	if err != nil {
		return nil, err
	}

	blocks := make([]models.BlockInstance, 0, len(preset.Steps))
	for i, step := range preset.Steps {
		desc, ok := catalog.Lookup(step.Block)
		if !ok {
			return nil, fmt.Errorf("preset %q step %d: %w: %q", preset.Name, i+1, ErrUnknownBlock, step.Block)
		}
		block := models.NewBlockInstance(*desc)
		if step.Code != "" {
			code, err := renderCode(fmt.Sprintf("%s#%d", preset.Name, i+1), step.Code, data)
			if err != nil {
				return nil, fmt.Errorf("preset %q step %d: %w", preset.Name, i+1, err)
			}
			block.Code = scriptgen.IndentBody(code)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func resolveVars(preset *Preset, vars map[string]string) (map[string]string, error) {
	data := make(map[string]string, len(vars))
	for key, value := range vars {
		data[key] = value
	}

	for _, variable := range preset.Variables {
		if strings.TrimSpace(data[variable.Name]) != "" {
			continue
		}
		if variable.Default != "" {
			data[variable.Name] = variable.Default
			continue
		}
		if variable.Required {
			return nil, fmt.Errorf("preset %q: missing required variable %q", preset.Name, variable.Name)
		}
	}
	return data, nil
}

func renderCode(name, content string, data map[string]string) (string, error) {
	parsed, err := template.New(name).
		Funcs(template.FuncMap{"default": defaultValue, "pyquote": pyQuote}).
		Option("missingkey=zero").
		Parse(content)
	if err != nil {
		return "", fmt.Errorf("parse code template: %w", err)
	}

	var out strings.Builder
	if err := parsed.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render code template: %w", err)
	}
	return out.String(), nil
}

func defaultValue(def string, value any) string {
	if value == nil {
		return def
	}
	text := strings.TrimSpace(fmt.Sprint(value))
	if text == "" {
		return def
	}
	return text
}

// pyQuote renders value as a double-quoted Python string literal. Go's
// escape sequences are a subset of the ones Python accepts.
func pyQuote(value any) string {
	if value == nil {
		return `""`
	}
	return strconv.Quote(fmt.Sprint(value))
}
