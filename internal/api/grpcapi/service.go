// Package grpcapi exposes wheels as the wheel.v1.WheelService gRPC service.
// Messages are protobuf well-known types, so no generated code is needed.
package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "wheel.v1.WheelService"

// WheelServiceServer is the server API of wheel.v1.WheelService.
//
// Requests addressed by wheel id alone take a StringValue; the others take
// a Struct with wheel_id plus method fields (text, option_id, weight, token).
type WheelServiceServer interface {
	GetWheel(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	AddOption(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveOption(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetWeight(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Spin(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ExportShareToken(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	ImportShareToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterWheelServiceServer registers srv on s.
func RegisterWheelServiceServer(s grpc.ServiceRegistrar, srv WheelServiceServer) {
	s.RegisterService(&WheelServiceDesc, srv)
}

func newString() proto.Message { return new(wrapperspb.StringValue) }
func newStruct() proto.Message { return new(structpb.Struct) }

// WheelServiceDesc describes wheel.v1.WheelService.
var WheelServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WheelServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetWheel", newString, func(s WheelServiceServer, ctx context.Context, in proto.Message) (any, error) {
			return s.GetWheel(ctx, in.(*wrapperspb.StringValue))
		}),
		unary("AddOption", newStruct, func(s WheelServiceServer, ctx context.Context, in proto.Message) (any, error) {
			return s.AddOption(ctx, in.(*structpb.Struct))
		}),
		unary("RemoveOption", newStruct, func(s WheelServiceServer, ctx context.Context, in proto.Message) (any, error) {
			return s.RemoveOption(ctx, in.(*structpb.Struct))
		}),
		unary("SetWeight", newStruct, func(s WheelServiceServer, ctx context.Context, in proto.Message) (any, error) {
			return s.SetWeight(ctx, in.(*structpb.Struct))
		}),
		unary("Spin", newString, func(s WheelServiceServer, ctx context.Context, in proto.Message) (any, error) {
			return s.Spin(ctx, in.(*wrapperspb.StringValue))
		}),
		unary("ExportShareToken", newString, func(s WheelServiceServer, ctx context.Context, in proto.Message) (any, error) {
			return s.ExportShareToken(ctx, in.(*wrapperspb.StringValue))
		}),
		unary("ImportShareToken", newStruct, func(s WheelServiceServer, ctx context.Context, in proto.Message) (any, error) {
			return s.ImportShareToken(ctx, in.(*structpb.Struct))
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wheel/v1/wheel.proto",
}

func unary(method string, newReq func() proto.Message, call func(WheelServiceServer, context.Context, proto.Message) (any, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(WheelServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(proto.Message))
			})
		},
	}
}

// WheelServiceClient is the client API of wheel.v1.WheelService.
type WheelServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewWheelServiceClient(cc grpc.ClientConnInterface) *WheelServiceClient {
	return &WheelServiceClient{cc: cc}
}

func (c *WheelServiceClient) invoke(ctx context.Context, method string, in, out proto.Message, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *WheelServiceClient) GetWheel(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "GetWheel", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *WheelServiceClient) AddOption(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "AddOption", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *WheelServiceClient) RemoveOption(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "RemoveOption", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *WheelServiceClient) SetWeight(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "SetWeight", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *WheelServiceClient) Spin(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "Spin", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *WheelServiceClient) ExportShareToken(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.invoke(ctx, "ExportShareToken", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *WheelServiceClient) ImportShareToken(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "ImportShareToken", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
