package catalog

import (
	"context"
	"embed"
	"fmt"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

//go:embed builtin/catalog.yaml
var builtinFS embed.FS

// BuiltinSource is the Source recorded on the embedded catalog.
const BuiltinSource = "builtin"

// BuiltinLoader serves the embedded catalog.
type BuiltinLoader struct{}

// Load returns the builtin catalog.
func (BuiltinLoader) Load(ctx context.Context) (*models.CatalogMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadBuiltin()
}

// BuiltinYAML returns the raw embedded catalog document.
func BuiltinYAML() ([]byte, error) {
	return builtinFS.ReadFile("builtin/catalog.yaml")
}

// LoadBuiltin parses the catalog bundled with pipebuilder.
func LoadBuiltin() (*models.CatalogMap, error) {
	data, err := BuiltinYAML()
	if err != nil {
		return nil, fmt.Errorf("read builtin catalog: %w", err)
	}
	catalog, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse builtin catalog: %w", err)
	}
	catalog.Source = BuiltinSource
	return catalog, nil
}
