package presets

import (
	"os"
	"path/filepath"
)

// SearchPaths returns preset directories in precedence order.
func SearchPaths(projectDir string) []string {
	paths := make([]string, 0, 3)
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ".pipebuilder", "presets"))
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "pipebuilder", "presets"))
	}

	paths = append(paths, filepath.Join(string(filepath.Separator), "usr", "share", "pipebuilder", "presets"))
	return paths
}

// LoadFromSearchPaths loads presets from SearchPaths(projectDir), then the
// builtin presets. The first preset seen for a name wins.
func LoadFromSearchPaths(projectDir string) ([]*Preset, error) {
	return LoadFromDirs(SearchPaths(projectDir))
}

// LoadFromDirs is LoadFromSearchPaths over explicit directories.
func LoadFromDirs(dirs []string) ([]*Preset, error) {
	seen := make(map[string]*Preset)
	order := make([]string, 0)
	add := func(presets []*Preset) {
		for _, p := range presets {
			if _, exists := seen[p.Name]; exists {
				continue
			}
			seen[p.Name] = p
			order = append(order, p.Name)
		}
	}

	for _, dir := range dirs {
		presets, err := LoadPresetsFromDir(dir)
		if err != nil {
			return nil, err
		}
		add(presets)
	}

	builtins, err := LoadBuiltin()
	if err != nil {
		return nil, err
	}
	add(builtins)

	resolved := make([]*Preset, 0, len(order))
	for _, name := range order {
		resolved = append(resolved, seen[name])
	}
	return resolved, nil
}
