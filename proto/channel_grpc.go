// Package proto 方法通道的gRPC服务定义
// 服务只使用protobuf内置的包装类型，不依赖额外的生成消息，定义见 channel.proto
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// 元数据键
const (
	ChannelMetadataKey   = "x-channel"    // 目标通道名
	RequestIDMetadataKey = "x-request-id" // 请求ID，用于日志关联
)

const (
	MethodChannel_Send_FullMethodName   = "/hmsservices.MethodChannel/Send"
	MethodChannel_Status_FullMethodName = "/hmsservices.MethodChannel/Status"
)

// MethodChannelClient 方法通道客户端接口
type MethodChannelClient interface {
	Send(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Status(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type methodChannelClient struct {
	cc grpc.ClientConnInterface
}

// NewMethodChannelClient 创建方法通道客户端
func NewMethodChannelClient(cc grpc.ClientConnInterface) MethodChannelClient {
	return &methodChannelClient{cc}
}

func (c *methodChannelClient) Send(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, MethodChannel_Send_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *methodChannelClient) Status(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodChannel_Status_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// MethodChannelServer 方法通道服务端接口
// 实现必须嵌入 UnimplementedMethodChannelServer
type MethodChannelServer interface {
	Send(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Status(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	mustEmbedUnimplementedMethodChannelServer()
}

// UnimplementedMethodChannelServer 默认实现，所有方法返回 Unimplemented
type UnimplementedMethodChannelServer struct{}

func (UnimplementedMethodChannelServer) Send(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Send not implemented")
}

func (UnimplementedMethodChannelServer) Status(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Status not implemented")
}

func (UnimplementedMethodChannelServer) mustEmbedUnimplementedMethodChannelServer() {}

// RegisterMethodChannelServer 将服务实现注册到gRPC服务器
func RegisterMethodChannelServer(s grpc.ServiceRegistrar, srv MethodChannelServer) {
	s.RegisterService(&MethodChannel_ServiceDesc, srv)
}

func _MethodChannel_Send_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MethodChannelServer).Send(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodChannel_Send_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MethodChannelServer).Send(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _MethodChannel_Status_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MethodChannelServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodChannel_Status_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MethodChannelServer).Status(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// MethodChannel_ServiceDesc 方法通道服务描述
var MethodChannel_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "hmsservices.MethodChannel",
	HandlerType: (*MethodChannelServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Send",
			Handler:    _MethodChannel_Send_Handler,
		},
		{
			MethodName: "Status",
			Handler:    _MethodChannel_Status_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "channel.proto",
}
