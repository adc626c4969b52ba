// Package builderd serves the block catalog and script generation over gRPC.
package builderd

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/editor"
	"github.com/opencode-ai/pipebuilder/internal/scriptgen"
)

// Server implements BuilderServer.
type Server struct {
	logger    zerolog.Logger
	catalog   catalog.Loader
	generator editor.Generator
	startedAt time.Time
	hostname  string
	version   string
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithVersion sets the daemon version.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// WithCatalog sets the catalog served by GetBlockCategories.
func WithCatalog(loader catalog.Loader) ServerOption {
	return func(s *Server) {
		s.catalog = loader
	}
}

// WithGenerator sets the backend used by GenerateScript.
func WithGenerator(gen editor.Generator) ServerOption {
	return func(s *Server) {
		s.generator = gen
	}
}

// NewServer creates a Builder service. Without options it serves the
// builtin catalog and writes scripts to the local filesystem.
func NewServer(logger zerolog.Logger, opts ...ServerOption) *Server {
	hostname, _ := os.Hostname()

	s := &Server{
		logger:    logger,
		startedAt: time.Now(),
		hostname:  hostname,
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = catalog.Once(catalog.BuiltinLoader{})
	}
	if s.generator == nil {
		s.generator = scriptgen.New(scriptgen.WithLogger(logger))
	}
	return s
}

// GetBlockCategories returns the catalog.
func (s *Server) GetBlockCategories(ctx context.Context, req *GetBlockCategoriesRequest) (*GetBlockCategoriesResponse, error) {
	loaded, err := s.catalog.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("catalog load failed")
		if errors.Is(err, catalog.ErrCatalogUnavailable) {
			return nil, status.Error(codes.Unavailable, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &GetBlockCategoriesResponse{
		Categories: loaded.Categories,
		Source:     loaded.Source,
	}, nil
}

// GenerateScript writes the script for the requested pipeline.
func (s *Server) GenerateScript(ctx context.Context, req *GenerateScriptRequest) (*GenerateScriptResponse, error) {
	if req == nil || strings.TrimSpace(req.Path) == "" {
		return nil, status.Error(codes.InvalidArgument, scriptgen.ErrInvalidPath.Error())
	}
	for i, block := range req.Pipeline {
		if strings.TrimSpace(block.TypeID) == "" {
			return nil, status.Errorf(codes.InvalidArgument, "pipeline[%d].type is required", i)
		}
	}

	saved, err := s.generator.GenerateScript(ctx, req.Pipeline, req.Path, req.GenerateLocalFiles)
	if err != nil {
		s.logger.Error().Err(err).Str("path", req.Path).Msg("generation failed")
		switch {
		case errors.Is(err, scriptgen.ErrInvalidPath):
			return nil, status.Error(codes.InvalidArgument, err.Error())
		case errors.Is(err, context.Canceled):
			return nil, status.Error(codes.Canceled, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			return nil, status.Error(codes.DeadlineExceeded, err.Error())
		default:
			return nil, status.Error(codes.Internal, err.Error())
		}
	}

	s.logger.Info().
		Str("path", saved).
		Int("blocks", len(req.Pipeline)).
		Bool("local_files", req.GenerateLocalFiles).
		Msg("script generated")

	return &GenerateScriptResponse{SavedPath: saved}, nil
}

// Ping reports liveness.
func (s *Server) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return &PingResponse{
		Version:   s.version,
		Hostname:  s.hostname,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
	}, nil
}
