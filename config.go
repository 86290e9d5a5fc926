// Package hmsservices 配置文件加载
// 配置以YAML保存，加载后补全默认值并校验
package hmsservices

import (
	"context"  // 控制配置监听的生命周期
	"errors"   // 错误判断
	"fmt"      // 错误包装
	"log/slog" // 结构化日志
	"os"       // 读取配置文件
	"time"     // 防抖

	"github.com/fsnotify/fsnotify"            // 文件变更通知
	"github.com/go-playground/validator/v10" // 结构体校验
	"gopkg.in/yaml.v3"                        // YAML解析
)

// Config 完整配置
type Config struct {
	Channel string        `yaml:"channel" json:"channel" validate:"required"`
	Codec   string        `yaml:"codec" json:"codec" validate:"oneof=standard json"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Client  ClientConfig  `yaml:"client" json:"client"`
	Gateway GatewayConfig `yaml:"gateway" json:"gateway"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Channel: ChannelName,
		Codec:   CodecStandard,
		Server:  *DefaultServerConfig(),
		Client:  *DefaultClientConfig(),
		Gateway: GatewayConfig{Enabled: false, Address: "localhost:8080"},
		Log:     *DefaultLogConfig(),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig 从YAML文件加载配置
// 文件中未出现的字段保留默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig 解析YAML配置
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("配置校验失败: %s 不满足 %s", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("配置校验失败: %w", err)
	}
	if len(c.Server.PortRange) == 2 && c.Server.PortRange[0] > c.Server.PortRange[1] {
		return fmt.Errorf("配置校验失败: 端口范围 %v 起点大于终点", c.Server.PortRange)
	}
	return nil
}

// MethodCodec 配置对应的编解码器
func (c *Config) MethodCodec() MethodCodec {
	codec, err := CodecByName(c.Codec)
	if err != nil {
		return StandardMethodCodec{}
	}
	return codec
}

// WatchConfig 监听配置文件变化，每次成功重新加载后调用 onChange
// 解析失败的版本只记录日志，不会回调；ctx 取消后停止监听
func WatchConfig(ctx context.Context, path string, logger *slog.Logger, onChange func(*Config)) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建配置监听失败: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return fmt.Errorf("监听配置文件失败: %w", err)
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				time.Sleep(100 * time.Millisecond) // 防抖，等待写入完成

				cfg, err := LoadConfig(path)
				if err != nil {
					logger.Error("重新加载配置失败", "path", path, "error", err)
					continue
				}
				logger.Info("配置已重新加载", "path", path)
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("配置监听错误", "error", err)
			}
		}
	}()

	return nil
}
