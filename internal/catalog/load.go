package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

// FileLoader reads the catalog from a single YAML file.
type FileLoader struct {
	Path string
}

// Load reads and parses the file.
func (l FileLoader) Load(ctx context.Context) (*models.CatalogMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(l.Path)
}

// LoadFile reads a catalog from disk. A missing or unreadable file wraps
// ErrCatalogUnavailable; malformed content does not.
func LoadFile(path string) (*models.CatalogMap, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: catalog path is required", ErrCatalogUnavailable)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read catalog %s: %v", ErrCatalogUnavailable, path, err)
	}

	catalog, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	catalog.Source = path
	return catalog, nil
}

type rawBlock struct {
	ID          string    `yaml:"id"`
	Label       string    `yaml:"label"`
	Description string    `yaml:"description"`
	Code        yaml.Node `yaml:"code"`
}

// Parse decodes catalog YAML. The document is a mapping with a single
// "categories" key whose value maps category names to block lists. Category
// order follows the document.
func Parse(data []byte) (*models.CatalogMap, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	catalog := models.EmptyCatalog()
	if len(doc.Content) == 0 {
		return catalog, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("catalog must be a mapping")
	}

	var categories *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "categories" {
			categories = root.Content[i+1]
			break
		}
	}
	if categories == nil || isNull(categories) {
		return catalog, nil
	}
	if categories.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("categories must be a mapping")
	}

	seen := make(map[string]struct{})
	for i := 0; i+1 < len(categories.Content); i += 2 {
		name := strings.TrimSpace(categories.Content[i].Value)
		if name == "" {
			return nil, fmt.Errorf("category name is required (line %d)", categories.Content[i].Line)
		}
		if _, exists := seen[name]; exists {
			return nil, fmt.Errorf("duplicate category %q", name)
		}
		seen[name] = struct{}{}

		blocks, err := parseBlocks(categories.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		catalog.Categories = append(catalog.Categories, models.Category{Name: name, Blocks: blocks})
	}

	return catalog, nil
}

func parseBlocks(node *yaml.Node) ([]models.BlockDescriptor, error) {
	if isNull(node) {
		return []models.BlockDescriptor{}, nil
	}

	var raw []rawBlock
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}

	blocks := make([]models.BlockDescriptor, 0, len(raw))
	ids := make(map[string]struct{}, len(raw))
	for i, rb := range raw {
		id := strings.TrimSpace(rb.ID)
		if id == "" {
			return nil, fmt.Errorf("block %d: id is required", i+1)
		}
		if _, exists := ids[id]; exists {
			return nil, fmt.Errorf("duplicate block id %q", id)
		}
		ids[id] = struct{}{}

		code, err := decodeCode(&rb.Code)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", id, err)
		}

		label := strings.TrimSpace(rb.Label)
		if label == "" {
			label = id
		}

		blocks = append(blocks, models.BlockDescriptor{
			ID:           id,
			Label:        label,
			Description:  SanitizeDescription(rb.Description),
			CodeTemplate: code,
		})
	}
	return blocks, nil
}

// decodeCode accepts a scalar or a list of lines.
func decodeCode(node *yaml.Node) (string, error) {
	switch {
	case node.Kind == 0 || isNull(node):
		return "", nil
	case node.Kind == yaml.ScalarNode:
		return strings.TrimRight(node.Value, "\n"), nil
	case node.Kind == yaml.SequenceNode:
		var lines []string
		if err := node.Decode(&lines); err != nil {
			return "", err
		}
		return strings.Join(lines, "\n"), nil
	default:
		return "", fmt.Errorf("code must be a string or a list of lines")
	}
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
