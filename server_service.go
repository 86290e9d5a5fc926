package hmsservices

import (
	"context"
	"time"

	"github.com/wwwlkj/hmsservices/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// channelService 方法通道gRPC服务实现
type channelService struct {
	proto.UnimplementedMethodChannelServer
	server *ChannelServer
}

// newChannelService 创建服务实现
func newChannelService(server *ChannelServer) *channelService {
	return &channelService{
		server: server,
	}
}

// Send 把消息投递到元数据指定的通道
// 通道未绑定或方法未实现时返回空字节，而不是gRPC错误
func (cs *channelService) Send(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	channel, ok := channelFromContext(ctx)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "缺少元数据 %s", proto.ChannelMetadataKey)
	}

	reply, err := cs.server.messenger.Send(ctx, channel, req.GetValue())
	if err != nil {
		return nil, status.FromContextError(err).Err()
	}
	return wrapperspb.Bytes(reply), nil
}

// Status 返回已绑定通道、运行时长和版本
func (cs *channelService) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	channels := cs.server.messenger.Channels()
	list := make([]any, len(channels))
	for i, name := range channels {
		list[i] = name
	}

	resp, err := structpb.NewStruct(map[string]any{
		"channels": list,
		"uptime":   cs.server.Uptime().Round(time.Millisecond).String(),
		"version":  Version,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "构建状态失败: %v", err)
	}
	return resp, nil
}

// channelFromContext 读取目标通道名
func channelFromContext(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	values := md.Get(proto.ChannelMetadataKey)
	if len(values) == 0 || values[0] == "" {
		return "", false
	}
	return values[0], true
}
