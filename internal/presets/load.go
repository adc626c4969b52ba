package presets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadPreset reads a single preset from disk.
func LoadPreset(path string) (*Preset, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("preset path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset %s: %w", path, err)
	}

	preset, err := parsePreset(data)
	if err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}
	preset.Source = path
	return preset, nil
}

// LoadPresetsFromDir loads every .yaml/.yml preset in dir. A missing
// directory yields no presets.
func LoadPresetsFromDir(dir string) ([]*Preset, error) {
	if strings.TrimSpace(dir) == "" {
		return []*Preset{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Preset{}, nil
		}
		return nil, fmt.Errorf("read presets dir %s: %w", dir, err)
	}

	presets := make([]*Preset, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		preset, err := LoadPreset(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		presets = append(presets, preset)
	}

	sort.Slice(presets, func(i, j int) bool {
		return presets[i].Name < presets[j].Name
	})
	return presets, nil
}

func parsePreset(data []byte) (*Preset, error) {
	var preset Preset
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return nil, err
	}

	preset.Name = strings.TrimSpace(preset.Name)
	if preset.Name == "" {
		return nil, fmt.Errorf("preset name is required")
	}
	preset.Description = strings.TrimSpace(preset.Description)

	if len(preset.Steps) == 0 {
		return nil, fmt.Errorf("preset steps are required")
	}
	for i := range preset.Steps {
		step := &preset.Steps[i]
		step.Block = strings.TrimSpace(step.Block)
		if step.Block == "" {
			return nil, fmt.Errorf("preset step %d: block is required", i+1)
		}
		step.Code = strings.TrimRight(strings.ReplaceAll(step.Code, "\r\n", "\n"), "\n")
	}

	seen := make(map[string]struct{})
	for i := range preset.Variables {
		name := strings.TrimSpace(preset.Variables[i].Name)
		if name == "" {
			return nil, fmt.Errorf("preset variable name is required")
		}
		if _, exists := seen[name]; exists {
			return nil, fmt.Errorf("duplicate preset variable %q", name)
		}
		seen[name] = struct{}{}
		preset.Variables[i].Name = name
	}

	return &preset, nil
}
