// Package hmsservices 提供方法通道框架的核心类型定义
// 包含方法调用、注册状态、配置、通道注册表等基础数据结构
package hmsservices

import (
	"fmt"      // 格式化输出
	"log/slog" // 结构化日志
	"sort"     // 排序，保证通道列表顺序稳定
	"strings"  // 字符串处理，用于解析日志级别
	"sync"     // 同步原语
	"time"     // 时间处理
)

// RegistrationState 插件注册状态
// 只有一次单向迁移：Unregistered -> Registered
type RegistrationState string

const (
	StateUnregistered RegistrationState = "unregistered" // 初始状态
	StateRegistered   RegistrationState = "registered"   // 已绑定到通道，直到进程退出
)

// MethodCall 一次方法调用
// 由宿主端每次调用时创建，不做持久化
type MethodCall struct {
	Method    string `json:"method"`         // 方法名 - 按精确字符串匹配分发
	Arguments any    `json:"args,omitempty"` // 调用参数 - 不透明，可为空
}

// ServerConfig gRPC通道服务端配置
type ServerConfig struct {
	Port            int           `yaml:"port" json:"port" validate:"gte=0,lte=65535"`                       // 监听端口（0表示在范围内自动分配）
	PortRange       []int         `yaml:"port_range" json:"port_range" validate:"len=2,dive,gt=0,lte=65535"` // 端口范围 [start, end]
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"gte=0"`         // 优雅关闭等待时间
}

// ClientConfig gRPC通道客户端配置
type ClientConfig struct {
	Address     string        `yaml:"address" json:"address" validate:"required,hostname_port"` // 服务端地址
	CallTimeout time.Duration `yaml:"call_timeout" json:"call_timeout" validate:"gt=0"`         // 单次调用超时
}

// GatewayConfig HTTP调试网关配置
type GatewayConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address" validate:"required_if=Enabled true"`
}

// LogLevel 日志级别
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLogLevel 解析日志级别字符串，大小写不敏感
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "info", "":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("未知日志级别: %q", s)
	}
}

// MarshalText 实现 encoding.TextMarshaler，配置文件中以字符串保存
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (l *LogLevel) UnmarshalText(text []byte) error {
	level, err := ParseLogLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// slogLevel 转换为slog级别
func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogConfig 日志配置
type LogConfig struct {
	DebugMode   bool     `yaml:"debug_mode" json:"debug_mode"`     // 是否开启Debug模式，开启后忽略LogLevel
	LogLevel    LogLevel `yaml:"log_level" json:"log_level"`       // 日志级别
	LogDir      string   `yaml:"log_dir" json:"log_dir"`           // 日志文件目录，为空时输出到stderr
	ServiceName string   `yaml:"service_name" json:"service_name"` // 服务名称，同时用作日志文件名
}

// DefaultServerConfig 返回默认的服务端配置
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            0, // 自动分配端口
		PortRange:       []int{50051, 50100},
		ShutdownTimeout: 5 * time.Second,
	}
}

// DefaultClientConfig 返回默认的客户端配置
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Address:     "localhost:50051",
		CallTimeout: 30 * time.Second,
	}
}

// DefaultLogConfig 返回默认的日志配置
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		DebugMode:   false,
		LogLevel:    INFO,
		ServiceName: ChannelName,
	}
}

// ChannelRegistry 通道注册表
// 通道一旦绑定就不再修改，也不会被显式移除
type ChannelRegistry struct {
	handlers map[string]MessageHandler
	mutex    sync.RWMutex
}

// NewChannelRegistry 创建新的通道注册表
func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{
		handlers: make(map[string]MessageHandler),
	}
}

// Bind 绑定通道处理器
// 通道名为空或处理器为空时返回错误，重复绑定返回 ErrChannelBound
func (cr *ChannelRegistry) Bind(channel string, handler MessageHandler) error {
	if channel == "" {
		return fmt.Errorf("通道名不能为空")
	}
	if handler == nil {
		return fmt.Errorf("通道 %s 的处理器不能为空", channel)
	}

	cr.mutex.Lock()
	defer cr.mutex.Unlock()
	if _, exists := cr.handlers[channel]; exists {
		return fmt.Errorf("%w: %s", ErrChannelBound, channel)
	}
	cr.handlers[channel] = handler
	return nil
}

// Lookup 查找通道处理器
func (cr *ChannelRegistry) Lookup(channel string) (MessageHandler, bool) {
	cr.mutex.RLock()
	defer cr.mutex.RUnlock()
	handler, exists := cr.handlers[channel]
	return handler, exists
}

// Channels 获取已绑定的通道名列表（已排序）
func (cr *ChannelRegistry) Channels() []string {
	cr.mutex.RLock()
	defer cr.mutex.RUnlock()

	channels := make([]string, 0, len(cr.handlers))
	for name := range cr.handlers {
		channels = append(channels, name)
	}
	sort.Strings(channels)
	return channels
}

// Count 获取已绑定的通道数量
func (cr *ChannelRegistry) Count() int {
	cr.mutex.RLock()
	defer cr.mutex.RUnlock()
	return len(cr.handlers)
}
