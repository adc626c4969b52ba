package editor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/events"
	"github.com/opencode-ai/pipebuilder/internal/models"
)

// RunStore persists generation history.
type RunStore interface {
	Create(ctx context.Context, run *models.GenerationRun) error
	Finish(ctx context.Context, id, savedPath string, genErr error) error
}

// RecordingGenerator wraps a Generator and records every run. History
// failures are logged and never fail the generation itself.
type RecordingGenerator struct {
	Next   Generator
	Runs   RunStore
	Events events.Repository
	Logger zerolog.Logger
}

// GenerateScript records the request, delegates, then records the outcome.
func (g *RecordingGenerator) GenerateScript(ctx context.Context, pipeline []models.BlockInstance, path string, emitLocalFiles bool) (string, error) {
	if g.Next == nil {
		return "", ErrNoGenerator
	}

	run := &models.GenerationRun{
		RequestedPath:  path,
		BlockTypes:     models.BlockTypeIDs(pipeline),
		EmitLocalFiles: emitLocalFiles,
		Status:         models.RunStatusPending,
	}
	recorded := false
	if g.Runs != nil {
		if err := g.Runs.Create(ctx, run); err != nil {
			g.Logger.Warn().Err(err).Msg("failed to record generation run")
		} else {
			recorded = true
		}
	}
	if recorded && g.Events != nil {
		if err := events.LogGenerationRequested(ctx, g.Events, run); err != nil {
			g.Logger.Warn().Err(err).Msg("failed to log generation event")
		}
	}

	started := time.Now()
	saved, genErr := g.Next.GenerateScript(ctx, pipeline, path, emitLocalFiles)

	if recorded {
		if err := g.Runs.Finish(ctx, run.ID, saved, genErr); err != nil {
			g.Logger.Warn().Err(err).Str("run_id", run.ID).Msg("failed to finish generation run")
		}
		if g.Events != nil {
			var err error
			if genErr != nil {
				err = events.LogGenerationFailed(ctx, g.Events, run.ID, path, genErr)
			} else {
				err = events.LogGenerationCompleted(ctx, g.Events, run.ID, saved, time.Since(started))
			}
			if err != nil {
				g.Logger.Warn().Err(err).Msg("failed to log generation event")
			}
		}
	}

	return saved, genErr
}

// RecordingLoader wraps a catalog loader and logs each load as an event.
// Source names the loader for failed loads, which carry no catalog.
type RecordingLoader struct {
	Next   catalog.Loader
	Source string
	Events events.Repository
	Logger zerolog.Logger
}

// Load delegates and records the outcome.
func (l *RecordingLoader) Load(ctx context.Context) (*models.CatalogMap, error) {
	if l.Next == nil {
		return nil, catalog.ErrCatalogUnavailable
	}
	loaded, err := l.Next.Load(ctx)
	if l.Events == nil {
		return loaded, err
	}

	var logErr error
	if err != nil {
		logErr = events.LogCatalogUnavailable(ctx, l.Events, l.Source, err)
	} else {
		logErr = events.LogCatalogLoaded(ctx, l.Events, loaded)
	}
	if logErr != nil {
		l.Logger.Warn().Err(logErr).Msg("failed to log catalog event")
	}
	return loaded, err
}
