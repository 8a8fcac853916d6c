package handlers

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// PermissionServiceName is the fully qualified gRPC service name
const PermissionServiceName = "rolegate.v1.Permission"

// PermissionServer is the server API for the Permission service.
// Requests are Structs carrying string fields role, action and resource.
type PermissionServer interface {
	Allow(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Deny(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	AllowAll(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	DenyAll(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Check(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRules(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// PermissionServiceDesc describes the Permission service for grpc.Server.RegisterService
var PermissionServiceDesc = grpc.ServiceDesc{
	ServiceName: PermissionServiceName,
	HandlerType: (*PermissionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Allow", Handler: unaryHandler("Allow", PermissionServer.Allow)},
		{MethodName: "Deny", Handler: unaryHandler("Deny", PermissionServer.Deny)},
		{MethodName: "AllowAll", Handler: unaryHandler("AllowAll", PermissionServer.AllowAll)},
		{MethodName: "DenyAll", Handler: unaryHandler("DenyAll", PermissionServer.DenyAll)},
		{MethodName: "Check", Handler: unaryHandler("Check", PermissionServer.Check)},
		{MethodName: "ListRules", Handler: unaryHandler("ListRules", PermissionServer.ListRules)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterPermissionServer registers srv with s
func RegisterPermissionServer(s grpc.ServiceRegistrar, srv PermissionServer) {
	s.RegisterService(&PermissionServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + PermissionServiceName + "/" + method
}

// unaryHandler adapts a PermissionServer method to a grpc.MethodHandler, running it through the interceptor chain
func unaryHandler[Resp proto.Message](
	method string,
	call func(PermissionServer, context.Context, *structpb.Struct) (Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PermissionServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PermissionServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
