package rpc

// #region imports
import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// #endregion imports

// #region service

// ServiceName is the fully qualified gRPC service the engine registers.
const ServiceName = "flux.Engine"

// EngineServer is the byte-buffer service contract. Every method takes and
// returns a JSON envelope wrapped in a BytesValue.
type EngineServer interface {
	ProcessWearable(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	ProcessBehavior(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	ConvertWearable(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	ConvertBehavior(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Snapshot(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	SaveBaselines(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	LoadBaselines(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

// RegisterEngineServer registers an EngineServer on a gRPC registrar.
func RegisterEngineServer(s grpc.ServiceRegistrar, srv EngineServer) {
	s.RegisterService(&serviceDesc, srv)
}

type engineMethod func(EngineServer, context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)

// methodHandler builds the grpc.MethodDesc handler for one engine method.
// The service has no generated stubs; the descriptor is assembled by hand
// over the BytesValue wire type.
func methodHandler(name string, call engineMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(wrapperspb.BytesValue)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EngineServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(EngineServer), ctx, req.(*wrapperspb.BytesValue))
		})
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ProcessWearable", Handler: methodHandler("ProcessWearable", EngineServer.ProcessWearable)},
		{MethodName: "ProcessBehavior", Handler: methodHandler("ProcessBehavior", EngineServer.ProcessBehavior)},
		{MethodName: "ConvertWearable", Handler: methodHandler("ConvertWearable", EngineServer.ConvertWearable)},
		{MethodName: "ConvertBehavior", Handler: methodHandler("ConvertBehavior", EngineServer.ConvertBehavior)},
		{MethodName: "Snapshot", Handler: methodHandler("Snapshot", EngineServer.Snapshot)},
		{MethodName: "SaveBaselines", Handler: methodHandler("SaveBaselines", EngineServer.SaveBaselines)},
		{MethodName: "LoadBaselines", Handler: methodHandler("LoadBaselines", EngineServer.LoadBaselines)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flux/engine",
}

// #endregion service
