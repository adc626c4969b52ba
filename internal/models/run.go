package models

import (
	"strings"
	"time"
)

// RunStatus is the outcome of a generation run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// GenerationRun records one request to generate a script.
type GenerationRun struct {
	// ID is the unique identifier for the run.
	ID string `json:"id"`

	// RequestedPath is the destination chosen by the user.
	RequestedPath string `json:"requested_path"`

	// SavedPath is where the artifact was actually written.
	SavedPath string `json:"saved_path,omitempty"`

	// BlockTypes lists the pipeline's block type IDs in order.
	BlockTypes []string `json:"block_types"`

	// EmitLocalFiles records whether IN/OUT and .env were requested.
	EmitLocalFiles bool `json:"emit_local_files"`

	// Status is the run outcome.
	Status RunStatus `json:"status"`

	// Error holds the failure message for failed runs.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the run was requested.
	CreatedAt time.Time `json:"created_at"`

	// FinishedAt is when the run completed or failed.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Validate checks if the run is valid.
func (r *GenerationRun) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(r.RequestedPath) == "" {
		validation.AddMessage("requested_path", "requested path is required")
	}
	switch r.Status {
	case "", RunStatusPending, RunStatusSucceeded, RunStatusFailed:
	default:
		validation.AddMessage("status", "unknown run status")
	}
	return validation.Err()
}

// BlockTypeIDs returns the type IDs of a pipeline in order.
func BlockTypeIDs(blocks []BlockInstance) []string {
	ids := make([]string, 0, len(blocks))
	for _, block := range blocks {
		ids = append(ids, block.TypeID)
	}
	return ids
}
