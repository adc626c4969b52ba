// Package models defines the core data types shared across pipebuilder.
package models

import "strings"

// BlockDescriptor is a catalog entry describing a selectable pipeline step.
type BlockDescriptor struct {
	// ID identifies the block type. Unique within a category.
	ID string `json:"id" yaml:"id"`

	// Label is the human-readable name shown in the catalog.
	Label string `json:"label" yaml:"label"`

	// Description is sanitized rich text explaining the block.
	Description string `json:"description" yaml:"description"`

	// CodeTemplate is copied into a BlockInstance when the block is added.
	CodeTemplate string `json:"code" yaml:"code"`
}

// IsZero reports whether the descriptor carries no usable identity.
func (d *BlockDescriptor) IsZero() bool {
	return d == nil || strings.TrimSpace(d.ID) == ""
}

// BlockInstance is one occurrence of a block in the user's pipeline.
// Instances have no identity beyond their position.
type BlockInstance struct {
	TypeID string `json:"type"`
	Code   string `json:"code"`
}

// NewBlockInstance creates an instance from a descriptor.
func NewBlockInstance(desc BlockDescriptor) BlockInstance {
	return BlockInstance{
		TypeID: desc.ID,
		Code:   desc.CodeTemplate,
	}
}

// Category is a named, ordered group of block descriptors.
type Category struct {
	Name   string            `json:"name"`
	Blocks []BlockDescriptor `json:"blocks"`
}

// CatalogMap maps category names to descriptors, preserving load order.
type CatalogMap struct {
	Categories []Category `json:"categories"`
	Source     string     `json:"source,omitempty"`
}

// EmptyCatalog returns a catalog with no categories.
func EmptyCatalog() *CatalogMap {
	return &CatalogMap{Categories: []Category{}}
}

// Len returns the number of categories.
func (c *CatalogMap) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Categories)
}

// BlockCount returns the total number of descriptors across categories.
func (c *CatalogMap) BlockCount() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, category := range c.Categories {
		total += len(category.Blocks)
	}
	return total
}

// Category returns the category with the given name.
func (c *CatalogMap) Category(name string) (*Category, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Categories {
		if c.Categories[i].Name == name {
			return &c.Categories[i], true
		}
	}
	return nil, false
}

// Lookup finds the first descriptor with the given ID, in display order.
func (c *CatalogMap) Lookup(id string) (*BlockDescriptor, bool) {
	if c == nil {
		return nil, false
	}
	id = strings.TrimSpace(id)
	for i := range c.Categories {
		for j := range c.Categories[i].Blocks {
			if c.Categories[i].Blocks[j].ID == id {
				desc := c.Categories[i].Blocks[j]
				return &desc, true
			}
		}
	}
	return nil, false
}

// Clone returns a deep copy of the catalog.
func (c *CatalogMap) Clone() *CatalogMap {
	if c == nil {
		return nil
	}
	clone := &CatalogMap{
		Categories: make([]Category, len(c.Categories)),
		Source:     c.Source,
	}
	for i, category := range c.Categories {
		blocks := make([]BlockDescriptor, len(category.Blocks))
		copy(blocks, category.Blocks)
		clone.Categories[i] = Category{Name: category.Name, Blocks: blocks}
	}
	return clone
}
