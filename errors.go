package hmsservices

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImplemented 方法在当前平台未实现
	// 这是一个预期的结果分支，不是故障
	ErrNotImplemented = errors.New("method not implemented")

	// ErrChannelBound 通道已经绑定过处理器
	ErrChannelBound = errors.New("channel already bound")

	// ErrAlreadyRegistered 插件已经注册过
	ErrAlreadyRegistered = errors.New("plugin already registered")

	// ErrReceiveUnsupported 当前消息通道只能发送，不能接收
	ErrReceiveUnsupported = errors.New("messenger cannot receive messages")

	// ErrAlreadyReplied 同一次调用已经回复过
	ErrAlreadyReplied = errors.New("reply already submitted")
)

// 通道运行时自身产生的错误码
const (
	CodeMalformedCall = "malformed_call" // 收到的消息无法解码为方法调用
	CodeMissingReply  = "missing_reply"  // 处理器返回前没有回复
	CodeHandlerPanic  = "handler_panic"  // 处理器发生panic
)

// MethodError 处理器通过 Result.Error 返回的错误
type MethodError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func (e *MethodError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("method error %s", e.Code)
	}
	return fmt.Sprintf("method error %s: %s", e.Code, e.Message)
}

// MissingPluginError 对端没有实现该方法，或通道上没有处理器
type MissingPluginError struct {
	Channel string
	Method  string
}

func (e *MissingPluginError) Error() string {
	return fmt.Sprintf("no implementation found for method %s on channel %s", e.Method, e.Channel)
}

// Is 使 errors.Is(err, ErrNotImplemented) 成立
func (e *MissingPluginError) Is(target error) bool {
	return target == ErrNotImplemented
}
