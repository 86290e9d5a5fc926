// Package hmsservices 方法调用编解码
// 将方法调用和回复信封编码为字节，供消息通道传输
package hmsservices

import (
	"encoding/json" // JSON编解码，JSONMethodCodec使用
	"fmt"           // 格式化输出，用于错误信息
	"strings"       // 修正非法UTF-8

	"google.golang.org/protobuf/proto"                 // protobuf二进制编解码
	"google.golang.org/protobuf/types/known/structpb" // protobuf动态值类型
)

// 编解码器名称
const (
	CodecStandard = "standard" // protobuf Struct 二进制格式
	CodecJSON     = "json"     // JSON格式
)

// MethodCodec 方法调用编解码器
// 空回复（零字节）表示方法未实现，不经过编解码器
type MethodCodec interface {
	// Name 编解码器名称
	Name() string
	// EncodeMethodCall 编码方法调用
	EncodeMethodCall(call *MethodCall) ([]byte, error)
	// DecodeMethodCall 解码方法调用
	DecodeMethodCall(data []byte) (*MethodCall, error)
	// EncodeSuccessEnvelope 编码成功回复
	EncodeSuccessEnvelope(result any) ([]byte, error)
	// EncodeErrorEnvelope 编码错误回复
	EncodeErrorEnvelope(code, message string, details any) ([]byte, error)
	// DecodeEnvelope 解码回复
	// 成功回复返回结果值；错误回复返回 *MethodError；空回复返回 ErrNotImplemented
	DecodeEnvelope(data []byte) (any, error)
}

// CodecByName 根据名称获取编解码器
func CodecByName(name string) (MethodCodec, error) {
	switch name {
	case CodecStandard, "":
		return StandardMethodCodec{}, nil
	case CodecJSON:
		return JSONMethodCodec{}, nil
	default:
		return nil, fmt.Errorf("未知编解码器: %q", name)
	}
}

// StandardMethodCodec 基于 google.protobuf.Struct 的二进制编解码器
//
// 调用:     {"method": string, "arguments": value}
// 成功回复: {"result": value}
// 错误回复: {"error": {"code": string, "message": string, "details": value}}
//
// 数字解码后统一为 float64，[]byte 编码为 base64 字符串。
type StandardMethodCodec struct{}

var deterministic = proto.MarshalOptions{Deterministic: true}

// Name 返回 "standard"
func (StandardMethodCodec) Name() string { return CodecStandard }

// EncodeMethodCall 编码为 {"method", "arguments"} 结构
func (StandardMethodCodec) EncodeMethodCall(call *MethodCall) ([]byte, error) {
	args, err := toValue(call.Arguments)
	if err != nil {
		return nil, fmt.Errorf("编码调用参数失败: %w", err)
	}
	msg := &structpb.Struct{Fields: map[string]*structpb.Value{
		"method":    validString(call.Method),
		"arguments": args,
	}}
	return deterministic.Marshal(msg)
}

// DecodeMethodCall 解码方法调用，缺少字符串类型的 method 字段时返回错误
func (StandardMethodCodec) DecodeMethodCall(data []byte) (*MethodCall, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("解码方法调用失败: %w", err)
	}
	method, ok := msg.Fields["method"]
	if !ok {
		return nil, fmt.Errorf("方法调用缺少 method 字段")
	}
	if _, isString := method.GetKind().(*structpb.Value_StringValue); !isString {
		return nil, fmt.Errorf("method 字段必须是字符串")
	}

	call := &MethodCall{Method: method.GetStringValue()}
	if args, ok := msg.Fields["arguments"]; ok {
		call.Arguments = args.AsInterface()
	}
	return call, nil
}

// EncodeSuccessEnvelope 编码为 {"result": value}
func (StandardMethodCodec) EncodeSuccessEnvelope(result any) ([]byte, error) {
	value, err := toValue(result)
	if err != nil {
		return nil, fmt.Errorf("编码返回值失败: %w", err)
	}
	return deterministic.Marshal(&structpb.Struct{Fields: map[string]*structpb.Value{
		"result": value,
	}})
}

// EncodeErrorEnvelope 编码为 {"error": {...}}
// code 和 message 中的非法UTF-8字节替换为 U+FFFD，否则接收端无法解码
func (StandardMethodCodec) EncodeErrorEnvelope(code, message string, details any) ([]byte, error) {
	detailValue, err := toValue(details)
	if err != nil {
		return nil, fmt.Errorf("编码错误详情失败: %w", err)
	}
	errStruct := &structpb.Struct{Fields: map[string]*structpb.Value{
		"code":    validString(code),
		"message": validString(message),
		"details": detailValue,
	}}
	return deterministic.Marshal(&structpb.Struct{Fields: map[string]*structpb.Value{
		"error": structpb.NewStructValue(errStruct),
	}})
}

// DecodeEnvelope 解码回复信封
func (StandardMethodCodec) DecodeEnvelope(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, ErrNotImplemented
	}

	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("解码回复失败: %w", err)
	}

	if errValue, ok := msg.Fields["error"]; ok {
		fields := errValue.GetStructValue().GetFields()
		methodErr := &MethodError{
			Code:    fields["code"].GetStringValue(),
			Message: fields["message"].GetStringValue(),
		}
		if details, ok := fields["details"]; ok {
			methodErr.Details = details.AsInterface()
		}
		return nil, methodErr
	}

	result, ok := msg.Fields["result"]
	if !ok {
		return nil, fmt.Errorf("无效的回复信封")
	}
	return result.AsInterface(), nil
}

// validString 构造字符串值
// structpb.NewStringValue 不校验UTF-8，而 proto.Unmarshal 会拒绝非法字节
func validString(s string) *structpb.Value {
	return structpb.NewStringValue(strings.ToValidUTF8(s, "\uFFFD"))
}

// toValue 将任意值转换为 structpb.Value
// structpb 不认识的类型（如 []string、自定义结构体）先经过一次JSON往返
func toValue(v any) (*structpb.Value, error) {
	value, err := structpb.NewValue(v)
	if err == nil {
		return value, nil
	}

	data, jsonErr := json.Marshal(v)
	if jsonErr != nil {
		return nil, err
	}
	var generic any
	if jsonErr := json.Unmarshal(data, &generic); jsonErr != nil {
		return nil, err
	}
	return structpb.NewValue(generic)
}

// JSONMethodCodec JSON编解码器
//
// 调用:     {"method": string, "args": value}
// 成功回复: [result]
// 错误回复: [code, message, details]
type JSONMethodCodec struct{}

// Name 返回 "json"
func (JSONMethodCodec) Name() string { return CodecJSON }

// EncodeMethodCall 编码为 {"method", "args"} 对象
func (JSONMethodCodec) EncodeMethodCall(call *MethodCall) ([]byte, error) {
	return json.Marshal(struct {
		Method string `json:"method"`
		Args   any    `json:"args"`
	}{call.Method, call.Arguments})
}

// DecodeMethodCall 解码方法调用，缺少 method 字段时返回错误
func (JSONMethodCodec) DecodeMethodCall(data []byte) (*MethodCall, error) {
	var raw struct {
		Method *string `json:"method"`
		Args   any     `json:"args"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解码方法调用失败: %w", err)
	}
	if raw.Method == nil {
		return nil, fmt.Errorf("方法调用缺少 method 字段")
	}
	return &MethodCall{Method: *raw.Method, Arguments: raw.Args}, nil
}

// EncodeSuccessEnvelope 编码为单元素数组 [result]
func (JSONMethodCodec) EncodeSuccessEnvelope(result any) ([]byte, error) {
	return json.Marshal([]any{result})
}

// EncodeErrorEnvelope 编码为三元素数组 [code, message, details]
// encoding/json 会把非法UTF-8替换为 U+FFFD
func (JSONMethodCodec) EncodeErrorEnvelope(code, message string, details any) ([]byte, error) {
	return json.Marshal([]any{code, message, details})
}

// DecodeEnvelope 按数组长度区分成功回复和错误回复
func (JSONMethodCodec) DecodeEnvelope(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, ErrNotImplemented
	}

	var envelope []any
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("解码回复失败: %w", err)
	}

	switch len(envelope) {
	case 1:
		return envelope[0], nil
	case 3:
		code, ok := envelope[0].(string)
		if !ok {
			return nil, fmt.Errorf("无效的错误回复: code 不是字符串")
		}
		message, _ := envelope[1].(string)
		return nil, &MethodError{Code: code, Message: message, Details: envelope[2]}
	default:
		return nil, fmt.Errorf("无效的回复信封: 长度 %d", len(envelope))
	}
}
