// Package hmsservices 提供通道客户端实现
// 宿主应用通过客户端向远端通道服务端发送方法调用
package hmsservices

import (
	"context"  // 上下文控制，超时管理
	"fmt"      // 错误包装
	"log/slog" // 结构化日志

	"github.com/google/uuid"                            // 请求ID
	"github.com/wwwlkj/hmsservices/proto"               // gRPC服务定义
	"google.golang.org/grpc"                            // gRPC框架
	"google.golang.org/grpc/credentials/insecure"       // gRPC安全凭据（不加密）
	"google.golang.org/grpc/metadata"                   // 请求元数据
	"google.golang.org/protobuf/types/known/emptypb"    // 状态查询请求
	"google.golang.org/protobuf/types/known/wrapperspb" // 字节消息
)

// ServerStatus 服务端状态
type ServerStatus struct {
	Channels []string `json:"channels"`
	Uptime   string   `json:"uptime"`
	Version  string   `json:"version"`
}

// ChannelClient 通道客户端，实现只发送的 BinaryMessenger
type ChannelClient struct {
	config *ClientConfig
	conn   *grpc.ClientConn
	client proto.MethodChannelClient
	logger *slog.Logger
}

// NewChannelClient 创建到服务端的连接
// 连接是惰性建立的，第一次调用时才真正拨号
func NewChannelClient(config *ClientConfig, logger *slog.Logger, opts ...grpc.DialOption) (*ChannelClient, error) {
	if config == nil {
		config = DefaultClientConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(config.Address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("连接服务端 %s 失败: %w", config.Address, err)
	}

	logger = logger.With("component", "client", "address", config.Address)
	logger.Debug("已创建通道客户端")

	return &ChannelClient{
		config: config,
		conn:   conn,
		client: proto.NewMethodChannelClient(conn),
		logger: logger,
	}, nil
}

// Send 向远端通道发送消息
func (c *ChannelClient) Send(ctx context.Context, channel string, message []byte) ([]byte, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	requestID := uuid.NewString()
	ctx = metadata.AppendToOutgoingContext(ctx,
		proto.ChannelMetadataKey, channel,
		proto.RequestIDMetadataKey, requestID,
	)

	resp, err := c.client.Send(ctx, wrapperspb.Bytes(message))
	if err != nil {
		c.logger.Warn("发送消息失败", "channel", channel, "request_id", requestID, "error", err)
		return nil, err
	}
	return resp.GetValue(), nil
}

// SetMessageHandler 客户端不接收消息
func (c *ChannelClient) SetMessageHandler(channel string, handler MessageHandler) error {
	return fmt.Errorf("%w: %s", ErrReceiveUnsupported, channel)
}

// Status 查询服务端状态
func (c *ChannelClient) Status(ctx context.Context) (*ServerStatus, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.client.Status(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}

	fields := resp.GetFields()
	st := &ServerStatus{
		Uptime:  fields["uptime"].GetStringValue(),
		Version: fields["version"].GetStringValue(),
	}
	for _, v := range fields["channels"].GetListValue().GetValues() {
		st.Channels = append(st.Channels, v.GetStringValue())
	}
	return st, nil
}

// Close 关闭连接
func (c *ChannelClient) Close() error {
	return c.conn.Close()
}

// callContext 调用方没有设置截止时间时套用配置的超时
func (c *ChannelClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || c.config.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.config.CallTimeout)
}
