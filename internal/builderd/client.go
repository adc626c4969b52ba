package builderd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/models"
	"github.com/opencode-ai/pipebuilder/internal/scriptgen"
)

// ErrGeneratorUnavailable is returned when the daemon cannot be reached.
var ErrGeneratorUnavailable = errors.New("generator unavailable")

// Client talks to a Builder daemon. It serves as both a catalog loader and
// a generator.
type Client struct {
	conn    *grpc.ClientConn
	target  string
	timeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	timeout  time.Duration
	dialOpts []grpc.DialOption
}

// WithTimeout bounds each call. Zero means no per-call deadline.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithDialOptions appends gRPC dial options.
func WithDialOptions(opts ...grpc.DialOption) ClientOption {
	return func(o *clientOptions) {
		o.dialOpts = append(o.dialOpts, opts...)
	}
}

// NewClient creates a client for target. The connection is established
// lazily on the first call.
func NewClient(target string, opts ...ClientOption) (*Client, error) {
	if target == "" {
		return nil, fmt.Errorf("%w: address is required", ErrGeneratorUnavailable)
	}
	o := &clientOptions{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(o)
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, o.dialOpts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}
	return &Client{conn: conn, target: target, timeout: o.timeout}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Target returns the daemon address.
func (c *Client) Target() string {
	return c.target
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.conn.Invoke(ctx, method, req, resp)
}

// Load fetches the catalog from the daemon.
func (c *Client) Load(ctx context.Context) (*models.CatalogMap, error) {
	resp := new(GetBlockCategoriesResponse)
	if err := c.invoke(ctx, MethodGetBlockCategories, &GetBlockCategoriesRequest{}, resp); err != nil {
		if unreachable(err) {
			return nil, fmt.Errorf("%w: %s: %v", catalog.ErrCatalogUnavailable, c.target, err)
		}
		return nil, fmt.Errorf("get block categories: %w", err)
	}

	loaded := &models.CatalogMap{Categories: resp.Categories, Source: "remote:" + c.target}
	if loaded.Categories == nil {
		loaded.Categories = []models.Category{}
	}
	return loaded, nil
}

// GenerateScript asks the daemon to write the script.
func (c *Client) GenerateScript(ctx context.Context, pipeline []models.BlockInstance, path string, emitLocalFiles bool) (string, error) {
	if pipeline == nil {
		pipeline = []models.BlockInstance{}
	}
	req := &GenerateScriptRequest{Pipeline: pipeline, Path: path, GenerateLocalFiles: emitLocalFiles}
	resp := new(GenerateScriptResponse)
	if err := c.invoke(ctx, MethodGenerateScript, req, resp); err != nil {
		if unreachable(err) {
			return "", fmt.Errorf("%w: %s: %v", ErrGeneratorUnavailable, c.target, err)
		}
		return "", generateError(err)
	}
	return resp.SavedPath, nil
}

// generateError maps a daemon status back onto the errors the local
// generator returns, so callers can branch on them the same way.
func generateError(err error) error {
	st := status.Convert(err)
	switch {
	case st.Code() == codes.InvalidArgument && strings.Contains(st.Message(), scriptgen.ErrInvalidPath.Error()):
		return fmt.Errorf("generate script: %w", scriptgen.ErrInvalidPath)
	case st.Code() == codes.Canceled:
		return fmt.Errorf("generate script: %w", context.Canceled)
	case st.Code() == codes.DeadlineExceeded:
		return fmt.Errorf("generate script: %w", context.DeadlineExceeded)
	default:
		return fmt.Errorf("generate script: %s", st.Message())
	}
}

// Ping checks the daemon.
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	resp := new(PingResponse)
	if err := c.invoke(ctx, MethodPing, &PingRequest{}, resp); err != nil {
		if unreachable(err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrGeneratorUnavailable, c.target, err)
		}
		return nil, err
	}
	return resp, nil
}

func unreachable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}
