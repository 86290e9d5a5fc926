package hmsservices

import (
	"context"
	"log/slog"
	"sync"
)

// Result 方法调用的回复接口
// 每次调用必须且只能回复一次
type Result interface {
	// Success 返回成功结果
	Success(value any)
	// Error 返回错误结果
	Error(code, message string, details any)
	// NotImplemented 表示该方法在此处理器上未实现
	NotImplemented()
}

// MethodCallHandler 方法调用处理器
type MethodCallHandler interface {
	HandleMethodCall(ctx context.Context, call *MethodCall, result Result)
}

// MethodCallHandlerFunc 函数适配器
type MethodCallHandlerFunc func(ctx context.Context, call *MethodCall, result Result)

// HandleMethodCall 实现 MethodCallHandler
func (f MethodCallHandlerFunc) HandleMethodCall(ctx context.Context, call *MethodCall, result Result) {
	f(ctx, call, result)
}

// reply 把处理器的回复编码为字节
// 只接受第一次回复，之后的回复被丢弃并记录警告
type reply struct {
	codec  MethodCodec
	call   *MethodCall
	logger *slog.Logger

	mu      sync.Mutex
	replied bool
	payload []byte
}

func newReply(codec MethodCodec, call *MethodCall, logger *slog.Logger) *reply {
	return &reply{codec: codec, call: call, logger: logger}
}

// submit 保存第一次回复，返回是否被接受
func (r *reply) submit(kind string, payload []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replied {
		r.logger.Warn("重复回复已丢弃",
			"method", r.call.Method,
			"kind", kind,
			"error", ErrAlreadyReplied)
		return false
	}
	r.replied = true
	r.payload = payload
	return true
}

// Success 编码成功结果；编码失败时改为回复 encode_failed 错误
func (r *reply) Success(value any) {
	payload, err := r.codec.EncodeSuccessEnvelope(value)
	if err != nil {
		r.logger.Error("编码返回值失败", "method", r.call.Method, "error", err)
		payload = r.encodeError("encode_failed", err.Error())
	}
	r.submit("success", payload)
}

// Error 编码错误结果；详情无法编码时丢弃详情
func (r *reply) Error(code, message string, details any) {
	payload, err := r.codec.EncodeErrorEnvelope(code, message, details)
	if err != nil {
		r.logger.Error("编码错误详情失败", "method", r.call.Method, "error", err)
		payload = r.encodeError(code, message)
	}
	r.submit("error", payload)
}

// NotImplemented 回复空字节
func (r *reply) NotImplemented() {
	r.submit("not_implemented", nil)
}

// bytes 返回编码后的回复；处理器未回复时补一个 missing_reply 错误
// 之后到达的回复都会被丢弃
func (r *reply) bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.replied {
		r.logger.Warn("处理器没有回复", "method", r.call.Method)
		r.replied = true
		r.payload = r.encodeError(CodeMissingReply, "handler returned without replying to "+r.call.Method)
	}
	return r.payload
}

// encodeError 编码不带详情的错误回复
// 编解码器负责修正非法UTF-8，因此结果总能被对端解码
func (r *reply) encodeError(code, message string) []byte {
	payload, _ := r.codec.EncodeErrorEnvelope(code, message, nil)
	return payload
}
