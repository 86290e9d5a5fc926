// Package hmsservices 提供通道服务端实现
// 通过gRPC把进程内的方法通道暴露给其他进程中的宿主应用
package hmsservices

import (
	"context"   // 上下文控制，用于取消和超时管理
	"fmt"       // 格式化输出，用于错误信息
	"log/slog"  // 结构化日志
	"net"       // 网络操作，gRPC服务器监听
	"os"        // 操作系统接口，信号处理
	"os/signal" // 系统信号处理，用于优雅关闭
	"sync"      // 同步原语，等待goroutine结束
	"syscall"   // 系统调用，用于信号处理
	"time"      // 时间处理，运行时长和关闭超时

	"github.com/wwwlkj/hmsservices/proto" // gRPC服务定义
	"google.golang.org/grpc"              // gRPC框架
	"google.golang.org/grpc/metadata"     // 请求元数据
)

// ChannelServer 通道服务端
// 持有一个 LocalMessenger，插件注册到它上面，远端宿主通过gRPC发送消息
type ChannelServer struct {
	// === 核心组件 === //
	config     *ServerConfig   // 服务端配置
	messenger  *LocalMessenger // 进程内消息通道
	service    *channelService // gRPC服务实现
	grpcServer *grpc.Server    // gRPC服务器
	listener   net.Listener    // 网络监听器
	actualPort int             // 实际使用端口（可能与配置不同）
	startTime  time.Time       // 启动时间，用于计算运行时长
	logger     *slog.Logger

	// === 控制组件 === //
	wg           sync.WaitGroup // 等待服务goroutine结束
	stopOnce     sync.Once      // 保证只关闭一次
	shutdownOnce sync.Once      // 保证关闭信号只发送一次
	shutdownChan chan struct{}  // 主动关闭信号
}

// NewChannelServer 创建通道服务端
// config 为 nil 时使用默认配置，messenger 为 nil 时新建一个
func NewChannelServer(config *ServerConfig, messenger *LocalMessenger, logger *slog.Logger) (*ChannelServer, error) {
	if config == nil {
		config = DefaultServerConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if messenger == nil {
		messenger = NewLocalMessenger(logger)
	}

	server := &ChannelServer{
		config:       config,
		messenger:    messenger,
		logger:       logger.With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
	server.service = newChannelService(server)
	server.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(server.loggingInterceptor))
	proto.RegisterMethodChannelServer(server.grpcServer, server.service)

	return server, nil
}

// Messenger 服务端使用的进程内消息通道，插件应注册到它上面
func (s *ChannelServer) Messenger() *LocalMessenger {
	return s.messenger
}

// Start 在配置的端口或端口范围内监听并开始服务
func (s *ChannelServer) Start() error {
	s.logger.Info("🚀 启动通道服务端...")

	listener, port, err := s.listen()
	if err != nil {
		return err
	}
	s.actualPort = port
	s.Serve(listener)

	s.logger.Info("✅ 通道服务端启动完成", "port", s.actualPort)
	return nil
}

// Serve 在给定的监听器上开始服务，不阻塞
func (s *ChannelServer) Serve(listener net.Listener) {
	s.listener = listener
	s.startTime = time.Now()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.grpcServer.Serve(listener); err != nil {
			s.logger.Error("gRPC服务器错误", "error", err)
		}
	}()
}

// Stop 优雅关闭；超过 ShutdownTimeout 后强制关闭
func (s *ChannelServer) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("🛑 停止通道服务端...")

		done := make(chan struct{})
		go func() {
			s.grpcServer.GracefulStop()
			close(done)
		}()

		if s.config.ShutdownTimeout > 0 {
			select {
			case <-done:
			case <-time.After(s.config.ShutdownTimeout):
				s.logger.Warn("优雅关闭超时，强制关闭")
				s.grpcServer.Stop()
				<-done
			}
		} else {
			<-done
		}

		s.wg.Wait()
		s.logger.Info("✅ 通道服务端已安全停止")
	})
}

// Shutdown 通知 Wait 退出
func (s *ChannelServer) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
	})
}

// Wait 等待系统退出信号或 Shutdown，然后停止服务
func (s *ChannelServer) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		s.logger.Info("📥 收到系统退出信号...")
	case <-s.shutdownChan:
		s.logger.Info("📥 收到程序关闭信号...")
	}

	s.Stop()
}

// ActualPort 实际监听的端口
func (s *ChannelServer) ActualPort() int {
	return s.actualPort
}

// Uptime 运行时长
func (s *ChannelServer) Uptime() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// listen 自动寻找可用端口
func (s *ChannelServer) listen() (net.Listener, int, error) {
	startPort, maxPort := s.config.Port, s.config.Port
	if s.config.Port == 0 {
		if len(s.config.PortRange) != 2 {
			return nil, 0, fmt.Errorf("端口范围必须为 [start, end]，当前: %v", s.config.PortRange)
		}
		startPort, maxPort = s.config.PortRange[0], s.config.PortRange[1]
	}

	for port := startPort; port <= maxPort; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			// 端口为0时由系统分配，以监听地址为准
			actual := listener.Addr().(*net.TCPAddr).Port
			s.logger.Debug("🎯 找到可用端口", "port", actual)
			return listener, actual, nil
		}
		s.logger.Debug("端口被占用，尝试下一个", "port", port, "error", err)
	}
	return nil, 0, fmt.Errorf("无法找到可用端口 (尝试范围: %d-%d)", startPort, maxPort)
}

// loggingInterceptor 记录每次RPC的通道、请求ID和耗时
func (s *ChannelServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	attrs := []any{"rpc", info.FullMethod, "duration", time.Since(start)}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(proto.ChannelMetadataKey); len(v) > 0 {
			attrs = append(attrs, "channel", v[0])
		}
		if v := md.Get(proto.RequestIDMetadataKey); len(v) > 0 {
			attrs = append(attrs, "request_id", v[0])
		}
	}
	if err != nil {
		s.logger.Warn("RPC失败", append(attrs, "error", err)...)
	} else {
		s.logger.Debug("RPC完成", attrs...)
	}
	return resp, err
}
