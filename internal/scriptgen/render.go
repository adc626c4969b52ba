package scriptgen

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

//go:embed templates/run.py.tmpl
var templateFS embed.FS

var scriptTemplate = template.Must(template.ParseFS(templateFS, "templates/run.py.tmpl"))

type scriptBlock struct {
	Banner string
	Code   string
}

type scriptData struct {
	Imports []string
	Blocks  []scriptBlock
	// Pass is set when no block contributes a statement to main().
	Pass bool
}

// RenderScript renders run.py for a pipeline. Each block becomes a banner
// comment with its upper-cased type followed by its code, in order.
func RenderScript(pipeline []models.BlockInstance) (string, error) {
	data := scriptData{
		Imports: make([]string, 0),
		Blocks:  make([]scriptBlock, 0, len(pipeline)),
		Pass:    true,
	}
	for _, integration := range Integrations(pipeline) {
		data.Imports = append(data.Imports, integration.Module)
	}
	for _, block := range pipeline {
		code := normalizeCode(block.Code)
		if strings.TrimSpace(code) != "" {
			data.Pass = false
		}
		data.Blocks = append(data.Blocks, scriptBlock{
			Banner: strings.ToUpper(block.TypeID),
			Code:   code,
		})
	}

	var out strings.Builder
	if err := scriptTemplate.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render %s: %w", ScriptName, err)
	}
	return out.String(), nil
}

// RenderEnv renders the .env skeleton: a JOB section plus one section per
// integration the pipeline uses.
func RenderEnv(pipeline []models.BlockInstance) string {
	var b strings.Builder
	b.WriteString("# JOB\nIN=\nOUT=\n")
	for _, integration := range Integrations(pipeline) {
		b.WriteString("\n# ")
		b.WriteString(integration.Name)
		b.WriteString("\n")
		for _, key := range integration.EnvKeys {
			b.WriteString(key)
			b.WriteString("=\n")
		}
	}
	return b.String()
}

const bodyIndent = "    "

func normalizeCode(code string) string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	return IndentBody(strings.TrimRight(code, "\n"))
}

// IndentBody indents code into the body of main() unless its first
// non-blank line is already indented.
func IndentBody(code string) string {
	lines := strings.Split(code, "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			return code
		}
		break
	}
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = bodyIndent + line
		}
	}
	return strings.Join(lines, "\n")
}
