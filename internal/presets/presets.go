// Package presets loads named pipeline presets and renders them into block
// instances against a catalog.
package presets

import "errors"

// Preset errors.
var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrUnknownBlock   = errors.New("block not in catalog")
)

// Preset is a named, ordered list of catalog blocks.
type Preset struct {
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description,omitempty"`
	Steps       []Step     `yaml:"steps" json:"steps"`
	Variables   []Variable `yaml:"variables,omitempty" json:"variables,omitempty"`
	Tags        []string   `yaml:"tags,omitempty" json:"tags,omitempty"`
	Source      string     `yaml:"-" json:"source"` // file path or "builtin"
}

// Step places one catalog block. Code replaces the block's catalog code and
// may reference variables as {{.name}}.
type Step struct {
	Block string `yaml:"block" json:"block"`
	Code  string `yaml:"code,omitempty" json:"code,omitempty"`
}

// Variable describes a value substituted into step code.
type Variable struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
	Default     string `yaml:"default,omitempty" json:"default,omitempty"`
	Required    bool   `yaml:"required" json:"required"`
}

// BlockIDs returns the step block IDs in order.
func (p *Preset) BlockIDs() []string {
	ids := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		ids = append(ids, step.Block)
	}
	return ids
}

// Find returns the preset with the given name.
func Find(presets []*Preset, name string) (*Preset, error) {
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, ErrPresetNotFound
}
