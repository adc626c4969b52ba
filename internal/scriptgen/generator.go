// Package scriptgen writes the job script and its local scaffolding.
package scriptgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

// ErrInvalidPath is returned when no usable output path was given.
var ErrInvalidPath = errors.New("invalid output path")

const (
	// ScriptName is the file the script is always written to.
	ScriptName = "run.py"
	// EnvName is the environment skeleton written with local files.
	EnvName = ".env"
	// InputDir and OutputDir are created with local files.
	InputDir  = "IN"
	OutputDir = "OUT"

	// DefaultOutputPath is the suggested destination.
	DefaultOutputPath = "jobs/" + ScriptName
)

// Generator writes scripts to the local filesystem.
type Generator struct {
	logger   zerolog.Logger
	dirMode  os.FileMode
	fileMode os.FileMode
	now      func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the generator logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// New creates a local generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		logger:   zerolog.Nop(),
		dirMode:  0o755,
		fileMode: 0o644,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ScriptPath returns where the script for a chosen path is written: run.py
// inside the chosen path's directory.
func ScriptPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", ErrInvalidPath
	}
	if strings.HasSuffix(trimmed, string(filepath.Separator)) || strings.HasSuffix(trimmed, "/") {
		return filepath.Join(trimmed, ScriptName), nil
	}
	return filepath.Join(filepath.Dir(trimmed), ScriptName), nil
}

// GenerateScript writes run.py next to path and, when emitLocalFiles is set,
// the IN and OUT directories and a .env skeleton. It returns the script path.
func (g *Generator) GenerateScript(ctx context.Context, pipeline []models.BlockInstance, path string, emitLocalFiles bool) (string, error) {
	scriptPath, err := ScriptPath(path)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	started := g.now()
	script, err := RenderScript(pipeline)
	if err != nil {
		return "", err
	}

	folder := filepath.Dir(scriptPath)
	if err := os.MkdirAll(folder, g.dirMode); err != nil {
		return "", fmt.Errorf("create %s: %w", folder, err)
	}
	if err := os.WriteFile(scriptPath, []byte(script), g.fileMode); err != nil {
		return "", fmt.Errorf("write %s: %w", scriptPath, err)
	}

	if emitLocalFiles {
		if err := g.writeLocalFiles(ctx, folder, pipeline); err != nil {
			return "", err
		}
	}

	g.logger.Info().
		Str("path", scriptPath).
		Int("blocks", len(pipeline)).
		Bool("local_files", emitLocalFiles).
		Dur("duration", g.now().Sub(started)).
		Msg("script generated")

	return scriptPath, nil
}

func (g *Generator) writeLocalFiles(ctx context.Context, folder string, pipeline []models.BlockInstance) error {
	grp, gctx := errgroup.WithContext(ctx)

	for _, name := range []string{InputDir, OutputDir} {
		dir := filepath.Join(folder, name)
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := os.MkdirAll(dir, g.dirMode); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
			return nil
		})
	}

	envPath := filepath.Join(folder, EnvName)
	grp.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		if err := os.WriteFile(envPath, []byte(RenderEnv(pipeline)), g.fileMode); err != nil {
			return fmt.Errorf("write %s: %w", envPath, err)
		}
		return nil
	})

	return grp.Wait()
}
