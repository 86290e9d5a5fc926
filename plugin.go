// Package hmsservices 提供 hms_services 插件实现
// 插件通过方法通道接收宿主调用，目前只实现 getPlatformVersion
package hmsservices

import (
	"context"  // 上下文控制
	"fmt"      // 错误包装
	"log/slog" // 结构化日志
	"sync"     // 保护注册状态
)

// ChannelName 插件通道名，宿主端和插件端必须完全一致
const ChannelName = "hms_services"

// 插件支持的方法
const (
	MethodGetPlatformVersion = "getPlatformVersion" // 返回 "<OS name> <OS version>"
)

// Plugin hms_services 插件
// 处理器本身无状态，可被并发调用；唯一的状态是一次性的注册绑定
type Plugin struct {
	platform PlatformInfo
	logger   *slog.Logger

	mu      sync.Mutex
	state   RegistrationState
	channel string
}

// PluginOption 插件选项
type PluginOption func(*Plugin)

// WithPlatform 指定平台信息来源，默认（或传入 nil 时）读取当前操作系统
func WithPlatform(platform PlatformInfo) PluginOption {
	return func(p *Plugin) {
		p.platform = platform
	}
}

// WithLogger 指定日志记录器，nil 时使用 slog.Default()
func WithLogger(logger *slog.Logger) PluginOption {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// NewPlugin 创建插件实例
func NewPlugin(opts ...PluginOption) *Plugin {
	p := &Plugin{
		platform: HostPlatform(),
		logger:   slog.Default(),
		state:    StateUnregistered,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.platform == nil {
		p.platform = HostPlatform()
	}
	p.logger = p.logger.With("plugin", ChannelName)
	return p
}

// Register 把插件绑定到 hms_services 通道
// 只能成功一次；再次调用返回 ErrAlreadyRegistered，已有绑定不受影响
func (p *Plugin) Register(registrar Registrar) error {
	return p.RegisterOn(registrar, ChannelName)
}

// RegisterOn 把插件绑定到指定通道
func (p *Plugin) RegisterOn(registrar Registrar, channel string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateRegistered {
		return fmt.Errorf("%w: 已绑定到通道 %s", ErrAlreadyRegistered, p.channel)
	}
	if err := registrar.Bind(channel, p); err != nil {
		return err
	}

	p.state = StateRegistered
	p.channel = channel
	p.logger.Info("插件注册成功", "channel", channel)
	return nil
}

// State 当前注册状态
func (p *Plugin) State() RegistrationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// HandleMethodCall 按方法名分发调用
// 未知方法（包括空方法名）返回未实现，这不是错误
func (p *Plugin) HandleMethodCall(ctx context.Context, call *MethodCall, result Result) {
	switch call.Method {
	case MethodGetPlatformVersion:
		result.Success(PlatformVersion(p.platform))
	default:
		p.logger.Debug("方法未实现", "method", call.Method)
		result.NotImplemented()
	}
}

// Methods 插件支持的方法列表
func (p *Plugin) Methods() []string {
	return []string{MethodGetPlatformVersion}
}
