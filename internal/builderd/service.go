package builderd

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

// ServiceName is the fully qualified Builder service name.
const ServiceName = "pipebuilder.v1.Builder"

// Full method names.
const (
	MethodGetBlockCategories = "/" + ServiceName + "/GetBlockCategories"
	MethodGenerateScript     = "/" + ServiceName + "/GenerateScript"
	MethodPing               = "/" + ServiceName + "/Ping"
)

type GetBlockCategoriesRequest struct{}

type GetBlockCategoriesResponse struct {
	Categories []models.Category `json:"categories"`
	Source     string            `json:"source,omitempty"`
}

type GenerateScriptRequest struct {
	Pipeline           []models.BlockInstance `json:"pipeline"`
	Path               string                 `json:"path"`
	GenerateLocalFiles bool                   `json:"generate_local_files"`
}

type GenerateScriptResponse struct {
	SavedPath string `json:"saved_path"`
}

type PingRequest struct{}

type PingResponse struct {
	Version   string    `json:"version"`
	Hostname  string    `json:"hostname,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime,omitempty"`
}

// BuilderServer is the server API for the Builder service.
type BuilderServer interface {
	GetBlockCategories(context.Context, *GetBlockCategoriesRequest) (*GetBlockCategoriesResponse, error)
	GenerateScript(context.Context, *GenerateScriptRequest) (*GenerateScriptResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// RegisterBuilderServer registers srv with a gRPC server.
func RegisterBuilderServer(s grpc.ServiceRegistrar, srv BuilderServer) {
	s.RegisterService(&builderServiceDesc, srv)
}

var builderServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BuilderServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetBlockCategories", Handler: getBlockCategoriesHandler},
		{MethodName: "GenerateScript", Handler: generateScriptHandler},
		{MethodName: "Ping", Handler: pingHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pipebuilder/v1/builder",
}

func getBlockCategoriesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetBlockCategoriesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BuilderServer).GetBlockCategories(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodGetBlockCategories}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BuilderServer).GetBlockCategories(ctx, req.(*GetBlockCategoriesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func generateScriptHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GenerateScriptRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BuilderServer).GenerateScript(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodGenerateScript}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BuilderServer).GenerateScript(ctx, req.(*GenerateScriptRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BuilderServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodPing}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BuilderServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}
