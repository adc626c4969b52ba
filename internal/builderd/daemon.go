package builderd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/config"
	"github.com/opencode-ai/pipebuilder/internal/editor"
)

// DefaultPort is the default daemon port.
const DefaultPort = config.DefaultDaemonPort

// Options configure the daemon runtime.
type Options struct {
	Hostname  string
	Port      int
	Version   string
	Catalog   catalog.Loader
	Generator editor.Generator
}

// Daemon runs the Builder gRPC service.
type Daemon struct {
	cfg    *config.Config
	logger zerolog.Logger
	opts   Options

	server     *Server
	limiter    *RateLimiter
	grpcServer *grpc.Server
}

// New constructs a daemon. Hostname and port fall back to the daemon config.
func New(cfg *config.Config, logger zerolog.Logger, opts Options) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if opts.Hostname == "" {
		opts.Hostname = cfg.Daemon.Hostname
	}
	if opts.Hostname == "" {
		opts.Hostname = "127.0.0.1"
	}
	if opts.Port == 0 {
		opts.Port = cfg.Daemon.Port
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}

	serverOpts := []ServerOption{WithVersion(opts.Version)}
	if opts.Catalog != nil {
		serverOpts = append(serverOpts, WithCatalog(opts.Catalog))
	}
	if opts.Generator != nil {
		serverOpts = append(serverOpts, WithGenerator(opts.Generator))
	}
	server := NewServer(logger, serverOpts...)

	limiter := NewRateLimiter(
		WithEnabled(cfg.Daemon.RateLimitEnabled),
		WithMethodLimits(map[string]RateLimitConfig{
			MethodGenerateScript: {RequestsPerSecond: cfg.Daemon.RequestsPerSec, BurstSize: cfg.Daemon.Burst},
		}),
	)

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(limiter.UnaryServerInterceptor()))
	RegisterBuilderServer(grpcServer, server)

	return &Daemon{
		cfg:        cfg,
		logger:     logger,
		opts:       opts,
		server:     server,
		limiter:    limiter,
		grpcServer: grpcServer,
	}, nil
}

// Run listens on the configured address and serves until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	bindAddr := d.bindAddr()
	listener, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", bindAddr, err)
	}
	return d.Serve(ctx, listener)
}

// Serve serves on an existing listener until ctx is canceled.
func (d *Daemon) Serve(ctx context.Context, listener net.Listener) error {
	d.logger.Info().
		Str("bind", listener.Addr().String()).
		Str("version", d.opts.Version).
		Bool("rate_limit", d.limiter.IsEnabled()).
		Msg("builder daemon starting")

	errCh := make(chan error, 1)
	go func() {
		if err := d.grpcServer.Serve(listener); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		d.logger.Info().Msg("builder daemon shutting down...")
		d.grpcServer.GracefulStop()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
	}

	d.logger.Info().Msg("builder daemon shutdown complete")
	return nil
}

func (d *Daemon) bindAddr() string {
	return net.JoinHostPort(d.opts.Hostname, strconv.Itoa(d.opts.Port))
}

// Server returns the service implementation.
func (d *Daemon) Server() *Server {
	return d.server
}

// RateLimiter returns the daemon's limiter.
func (d *Daemon) RateLimiter() *RateLimiter {
	return d.limiter
}
