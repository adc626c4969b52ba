package catalog

import (
	"context"
	"os"
	"path/filepath"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

// FileName is the catalog file looked up in each search directory.
const FileName = "catalog.yaml"

// SearchPaths returns catalog file locations in precedence order.
func SearchPaths(projectDir string) []string {
	paths := make([]string, 0, 3)
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ".pipebuilder", FileName))
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "pipebuilder", FileName))
	}

	paths = append(paths, filepath.Join(string(filepath.Separator), "usr", "share", "pipebuilder", FileName))
	return paths
}

// SearchPathLoader loads the first catalog file found on the search paths
// and falls back to the builtin catalog.
type SearchPathLoader struct {
	ProjectDir string

	// Paths overrides SearchPaths(ProjectDir) when set.
	Paths []string
}

// Load resolves the catalog with first-hit precedence.
func (l SearchPathLoader) Load(ctx context.Context) (*models.CatalogMap, error) {
	paths := l.Paths
	if len(paths) == 0 {
		paths = SearchPaths(l.ProjectDir)
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}

	return LoadBuiltin()
}
