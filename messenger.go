// Package hmsservices 消息通道与注册器
// BinaryMessenger 负责按通道名投递字节消息，Registrar 负责把处理器绑定到通道
package hmsservices

import (
	"context"  // 上下文控制
	"fmt"      // 错误包装
	"log/slog" // 结构化日志
)

// MessageHandler 通道消息处理器
// 返回值为回复字节，nil 表示未实现
type MessageHandler func(ctx context.Context, message []byte) []byte

// BinaryMessenger 按通道名收发字节消息
type BinaryMessenger interface {
	// Send 向通道发送消息并等待回复，空回复表示通道上没有对应实现
	Send(ctx context.Context, channel string, message []byte) ([]byte, error)
	// SetMessageHandler 为通道绑定处理器，每个通道只能绑定一次
	SetMessageHandler(channel string, handler MessageHandler) error
}

// ChannelLister 可以列出已绑定通道的消息通道
type ChannelLister interface {
	Channels() []string
}

// LocalMessenger 进程内消息通道
// 发送和处理在同一个进程中完成，处理器在调用方的goroutine上同步执行
type LocalMessenger struct {
	registry *ChannelRegistry
	logger   *slog.Logger
}

// NewLocalMessenger 创建进程内消息通道
func NewLocalMessenger(logger *slog.Logger) *LocalMessenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalMessenger{
		registry: NewChannelRegistry(),
		logger:   logger.With("component", "messenger"),
	}
}

// Send 投递消息；通道未绑定时返回空回复
func (m *LocalMessenger) Send(ctx context.Context, channel string, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	handler, exists := m.registry.Lookup(channel)
	if !exists {
		m.logger.Debug("通道未绑定处理器", "channel", channel)
		return nil, nil
	}
	return handler(ctx, message), nil
}

// SetMessageHandler 绑定通道处理器
func (m *LocalMessenger) SetMessageHandler(channel string, handler MessageHandler) error {
	if err := m.registry.Bind(channel, handler); err != nil {
		return err
	}
	m.logger.Info("✅ 通道已绑定", "channel", channel)
	return nil
}

// Channels 已绑定的通道列表
func (m *LocalMessenger) Channels() []string {
	return m.registry.Channels()
}

// Registrar 插件注册接口
type Registrar interface {
	// Bind 把处理器绑定到通道
	Bind(channel string, handler MethodCallHandler) error
}

// PluginRegistrar 基于消息通道和编解码器的注册器
type PluginRegistrar struct {
	messenger BinaryMessenger
	codec     MethodCodec
	logger    *slog.Logger
}

// NewPluginRegistrar 创建注册器，codec 为 nil 时使用 StandardMethodCodec
func NewPluginRegistrar(messenger BinaryMessenger, codec MethodCodec, logger *slog.Logger) *PluginRegistrar {
	if codec == nil {
		codec = StandardMethodCodec{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PluginRegistrar{messenger: messenger, codec: codec, logger: logger}
}

// Bind 创建方法通道并设置处理器
func (r *PluginRegistrar) Bind(channel string, handler MethodCallHandler) error {
	mc := NewMethodChannel(channel, r.messenger, r.codec, r.logger)
	if err := mc.SetMethodCallHandler(handler); err != nil {
		return fmt.Errorf("绑定通道 %s 失败: %w", channel, err)
	}
	return nil
}

// Messenger 注册器使用的消息通道
func (r *PluginRegistrar) Messenger() BinaryMessenger {
	return r.messenger
}
