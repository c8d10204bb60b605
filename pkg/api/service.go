package api

import (
	"context"

	"github.com/cuemby/reportwatch/pkg/rpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CoreServer is the server API for the Core service
type CoreServer interface {
	BindMethod(context.Context, *structpb.Struct) (*wrapperspb.Int32Value, error)
	GetVersion(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	GetDFVersion(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	Notifications(*emptypb.Empty, grpc.ServerStream) error
}

// ReportsServer is the server API for the Reports service
type ReportsServer interface {
	GetAnnouncements(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetReports(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

var coreServiceDesc = grpc.ServiceDesc{
	ServiceName: rpc.CoreService,
	HandlerType: (*CoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: rpc.BindMethod.Name,
			Handler: unary(rpc.BindMethod, newStruct, func(srv any, ctx context.Context, req proto.Message) (proto.Message, error) {
				return srv.(CoreServer).BindMethod(ctx, req.(*structpb.Struct))
			}),
		},
		{
			MethodName: rpc.GetVersion.Name,
			Handler: unary(rpc.GetVersion, newEmpty, func(srv any, ctx context.Context, req proto.Message) (proto.Message, error) {
				return srv.(CoreServer).GetVersion(ctx, req.(*emptypb.Empty))
			}),
		},
		{
			MethodName: rpc.GetDFVersion.Name,
			Handler: unary(rpc.GetDFVersion, newEmpty, func(srv any, ctx context.Context, req proto.Message) (proto.Message, error) {
				return srv.(CoreServer).GetDFVersion(ctx, req.(*emptypb.Empty))
			}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Notifications",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(emptypb.Empty)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(CoreServer).Notifications(in, stream)
			},
		},
	},
}

var reportsServiceDesc = grpc.ServiceDesc{
	ServiceName: rpc.ReportsService,
	HandlerType: (*ReportsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: rpc.GetAnnouncements.Name,
			Handler: unary(rpc.GetAnnouncements, newEmpty, func(srv any, ctx context.Context, req proto.Message) (proto.Message, error) {
				return srv.(ReportsServer).GetAnnouncements(ctx, req.(*emptypb.Empty))
			}),
		},
		{
			MethodName: rpc.GetReports.Name,
			Handler: unary(rpc.GetReports, newEmpty, func(srv any, ctx context.Context, req proto.Message) (proto.Message, error) {
				return srv.(ReportsServer).GetReports(ctx, req.(*emptypb.Empty))
			}),
		},
	},
}

func newEmpty() proto.Message  { return new(emptypb.Empty) }
func newStruct() proto.Message { return new(structpb.Struct) }

type unaryCall func(srv any, ctx context.Context, req proto.Message) (proto.Message, error)

// unary adapts a typed call to grpc.MethodHandler, running interceptors the
// way generated code does
func unary(p *rpc.Procedure, newReq func() proto.Message, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: p.FullMethod(),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req.(proto.Message))
		}
		return interceptor(ctx, in, info, handler)
	}
}
