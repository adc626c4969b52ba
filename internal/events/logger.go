// Package events provides helper functions for logging pipebuilder events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
}

// LogCatalogLoaded records a successful catalog load.
func LogCatalogLoaded(ctx context.Context, repo Repository, catalog *models.CatalogMap) error {
	if catalog == nil {
		return fmt.Errorf("catalog is required")
	}
	source := catalog.Source
	if source == "" {
		source = "unknown"
	}
	return create(ctx, repo, models.EventTypeCatalogLoaded, models.EntityTypeCatalog, source, models.CatalogLoadedPayload{
		Source:     source,
		Categories: catalog.Len(),
		Blocks:     catalog.BlockCount(),
	})
}

// LogCatalogUnavailable records a failed catalog load.
func LogCatalogUnavailable(ctx context.Context, repo Repository, source string, loadErr error) error {
	if loadErr == nil {
		return fmt.Errorf("error is required")
	}
	if source == "" {
		source = "unknown"
	}
	return create(ctx, repo, models.EventTypeCatalogUnavailable, models.EntityTypeCatalog, source, models.ErrorPayload{
		Error:   loadErr.Error(),
		Context: "catalog load",
	})
}

// LogGenerationRequested records that a run was started.
func LogGenerationRequested(ctx context.Context, repo Repository, run *models.GenerationRun) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	return create(ctx, repo, models.EventTypeGenerationRequested, models.EntityTypeRun, run.ID, models.GenerationRequestedPayload{
		Path:           run.RequestedPath,
		BlockTypes:     run.BlockTypes,
		EmitLocalFiles: run.EmitLocalFiles,
	})
}

// LogGenerationCompleted records a successful run.
func LogGenerationCompleted(ctx context.Context, repo Repository, runID, savedPath string, duration time.Duration) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	return create(ctx, repo, models.EventTypeGenerationCompleted, models.EntityTypeRun, runID, models.GenerationCompletedPayload{
		SavedPath: savedPath,
		Duration:  duration.String(),
	})
}

// LogGenerationFailed records a failed run.
func LogGenerationFailed(ctx context.Context, repo Repository, runID, path string, genErr error) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	if genErr == nil {
		return fmt.Errorf("error is required")
	}
	return create(ctx, repo, models.EventTypeGenerationFailed, models.EntityTypeRun, runID, models.GenerationFailedPayload{
		Path:  path,
		Error: genErr.Error(),
	})
}

func create(ctx context.Context, repo Repository, eventType models.EventType, entityType models.EntityType, entityID string, payload any) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	event := &models.Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    data,
	}
	return repo.Create(ctx, event)
}
