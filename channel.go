package hmsservices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// MethodChannel 命名方法通道
// 两端必须使用相同的通道名和编解码器
type MethodChannel struct {
	name      string
	messenger BinaryMessenger
	codec     MethodCodec
	logger    *slog.Logger
}

// NewMethodChannel 创建方法通道，codec 为 nil 时使用 StandardMethodCodec
func NewMethodChannel(name string, messenger BinaryMessenger, codec MethodCodec, logger *slog.Logger) *MethodChannel {
	if codec == nil {
		codec = StandardMethodCodec{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MethodChannel{
		name:      name,
		messenger: messenger,
		codec:     codec,
		logger:    logger.With("channel", name),
	}
}

// Name 通道名
func (c *MethodChannel) Name() string {
	return c.name
}

// Codec 通道使用的编解码器
func (c *MethodChannel) Codec() MethodCodec {
	return c.codec
}

// InvokeMethod 调用对端方法
//
// 对端未实现时返回 *MissingPluginError（errors.Is(err, ErrNotImplemented) 为真），
// 对端返回错误时返回 *MethodError。
func (c *MethodChannel) InvokeMethod(ctx context.Context, method string, args any) (any, error) {
	message, err := c.codec.EncodeMethodCall(&MethodCall{Method: method, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("编码方法调用 %s 失败: %w", method, err)
	}

	c.logger.Debug("调用方法", "method", method)
	replyBytes, err := c.messenger.Send(ctx, c.name, message)
	if err != nil {
		return nil, fmt.Errorf("发送方法调用 %s 失败: %w", method, err)
	}

	result, err := c.codec.DecodeEnvelope(replyBytes)
	if errors.Is(err, ErrNotImplemented) {
		return nil, &MissingPluginError{Channel: c.name, Method: method}
	}
	return result, err
}

// SetMethodCallHandler 为通道设置处理器
func (c *MethodChannel) SetMethodCallHandler(handler MethodCallHandler) error {
	if handler == nil {
		return fmt.Errorf("通道 %s 的处理器不能为空", c.name)
	}
	return c.messenger.SetMessageHandler(c.name, func(ctx context.Context, message []byte) []byte {
		return c.dispatch(ctx, handler, message)
	})
}

// dispatch 解码调用、执行处理器并返回编码后的回复
func (c *MethodChannel) dispatch(ctx context.Context, handler MethodCallHandler, message []byte) []byte {
	call, err := c.codec.DecodeMethodCall(message)
	if err != nil {
		c.logger.Warn("收到无法解码的调用", "error", err)
		payload, _ := c.codec.EncodeErrorEnvelope(CodeMalformedCall, err.Error(), nil)
		return payload
	}

	r := newReply(c.codec, call, c.logger)
	func() {
		defer func() {
			if v := recover(); v != nil {
				c.logger.Error("处理器发生panic", "method", call.Method, "panic", v)
				r.submit("panic", r.encodeError(CodeHandlerPanic, fmt.Sprint(v)))
			}
		}()
		handler.HandleMethodCall(ctx, call, r)
	}()
	return r.bytes()
}
