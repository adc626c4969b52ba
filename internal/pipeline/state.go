// Package pipeline holds the editable block sequence, the drag gesture state
// machine that reorders it, and the action table that drives both.
package pipeline

import (
	"fmt"
	"slices"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

// State is the ordered sequence of block instances being edited.
// Indices are always dense and zero-based.
type State struct {
	blocks []models.BlockInstance
}

// NewState creates a state holding copies of the given blocks.
func NewState(blocks ...models.BlockInstance) *State {
	return &State{blocks: slices.Clone(blocks)}
}

// Len returns the number of blocks.
func (s *State) Len() int {
	return len(s.blocks)
}

// At returns the block at index i.
func (s *State) At(i int) models.BlockInstance {
	s.mustIndex(i)
	return s.blocks[i]
}

// Snapshot returns a value copy of the sequence. Later mutations of the
// state do not affect the returned slice.
func (s *State) Snapshot() []models.BlockInstance {
	out := make([]models.BlockInstance, len(s.blocks))
	copy(out, s.blocks)
	return out
}

// Append adds an instance of desc at the end. A nil or ID-less descriptor is
// ignored. Reports whether the state changed.
func (s *State) Append(desc *models.BlockDescriptor) bool {
	if desc.IsZero() {
		return false
	}
	s.blocks = append(s.blocks, models.NewBlockInstance(*desc))
	return true
}

// RemoveAt deletes the block at i; later blocks shift down by one.
// Panics if i is out of range.
func (s *State) RemoveAt(i int) {
	s.mustIndex(i)
	s.blocks = slices.Delete(s.blocks, i, i+1)
}

// MoveUp swaps i with i-1. No-op at the top.
func (s *State) MoveUp(i int) bool {
	s.mustIndex(i)
	if i == 0 {
		return false
	}
	s.blocks[i-1], s.blocks[i] = s.blocks[i], s.blocks[i-1]
	return true
}

// MoveDown swaps i with i+1. No-op at the bottom.
func (s *State) MoveDown(i int) bool {
	s.mustIndex(i)
	if i == len(s.blocks)-1 {
		return false
	}
	s.blocks[i], s.blocks[i+1] = s.blocks[i+1], s.blocks[i]
	return true
}

// MoveBefore removes the block at from and reinserts it at index to of the
// sequence as it stands after the removal. For to < from this is the same
// position in the original sequence. A to beyond the end appends. The moved
// block ends up at min(to, Len()-1). No-op when from == to.
func (s *State) MoveBefore(from, to int) bool {
	s.mustIndex(from)
	if to < 0 {
		panic(fmt.Sprintf("pipeline: move target %d out of range", to))
	}
	if from == to {
		return false
	}

	item := s.blocks[from]
	s.blocks = slices.Delete(s.blocks, from, from+1)
	if to > len(s.blocks) {
		to = len(s.blocks)
	}
	s.blocks = slices.Insert(s.blocks, to, item)
	return true
}

// InRange reports whether i addresses an existing block.
func (s *State) InRange(i int) bool {
	return i >= 0 && i < len(s.blocks)
}

func (s *State) mustIndex(i int) {
	if !s.InRange(i) {
		panic(fmt.Sprintf("pipeline: index %d out of range [0,%d)", i, len(s.blocks)))
	}
}
