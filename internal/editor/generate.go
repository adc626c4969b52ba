package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

// PathChooser asks the user where to write the script. ok is false when the
// user declined to choose.
type PathChooser interface {
	ChooseOutputPath(ctx context.Context) (path string, ok bool, err error)
}

// PathChooserFunc adapts a function to PathChooser.
type PathChooserFunc func(ctx context.Context) (string, bool, error)

// ChooseOutputPath calls f.
func (f PathChooserFunc) ChooseOutputPath(ctx context.Context) (string, bool, error) {
	return f(ctx)
}

// Generator produces the script artifact from a pipeline snapshot and
// returns where it was saved.
type Generator interface {
	GenerateScript(ctx context.Context, pipeline []models.BlockInstance, path string, emitLocalFiles bool) (string, error)
}

// OutcomeKind classifies a generation attempt.
type OutcomeKind int

const (
	OutcomeCancelled OutcomeKind = iota
	OutcomeSucceeded
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "cancelled"
	}
}

// Outcome is the result of a generation attempt.
type Outcome struct {
	Kind          OutcomeKind
	RequestedPath string
	SavedPath     string
	Err           error
}

// ErrNoGenerator is reported when generation is requested without a backend.
var ErrNoGenerator = errors.New("no generator configured")

// Generate runs the two-step protocol: choose a path, then generate from
// snapshot. The generator is only called once a path was chosen.
func Generate(ctx context.Context, snapshot []models.BlockInstance, chooser PathChooser, gen Generator, emitLocalFiles bool) Outcome {
	if chooser == nil {
		return Outcome{Kind: OutcomeCancelled}
	}
	path, ok, err := chooser.ChooseOutputPath(ctx)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Err: fmt.Errorf("choose output path: %w", err)}
	}
	if !ok || path == "" {
		return Outcome{Kind: OutcomeCancelled}
	}
	return Invoke(ctx, snapshot, path, gen, emitLocalFiles)
}

// Invoke runs the second step against an already chosen path.
func Invoke(ctx context.Context, snapshot []models.BlockInstance, path string, gen Generator, emitLocalFiles bool) Outcome {
	if gen == nil {
		return Outcome{Kind: OutcomeFailed, RequestedPath: path, Err: ErrNoGenerator}
	}
	blocks := make([]models.BlockInstance, len(snapshot))
	copy(blocks, snapshot)

	saved, err := gen.GenerateScript(ctx, blocks, path, emitLocalFiles)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, RequestedPath: path, Err: err}
	}
	return Outcome{Kind: OutcomeSucceeded, RequestedPath: path, SavedPath: saved}
}

// Generate runs both steps synchronously against the current pipeline and
// records the outcome.
func (e *Editor) Generate(ctx context.Context, chooser PathChooser, gen Generator) Outcome {
	outcome := Generate(ctx, e.Blocks(), chooser, gen, e.emitLocalFiles)
	e.Record(outcome)
	return outcome
}

// Record turns an outcome into a notification. Cancellation is silent.
func (e *Editor) Record(outcome Outcome) {
	switch outcome.Kind {
	case OutcomeSucceeded:
		e.logger.Info().Str("path", outcome.SavedPath).Msg("generation succeeded")
		e.Notify(LevelInfo, "Script saved to "+outcome.SavedPath)
	case OutcomeFailed:
		e.logger.Error().Err(outcome.Err).Str("path", outcome.RequestedPath).Msg("generation failed")
		e.Notify(LevelError, "Generation failed: "+errorText(outcome.Err))
	default:
		e.logger.Debug().Msg("generation cancelled")
	}
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
