// Package gateway 方法通道的HTTP调试网关
// 把 POST /channels/{channel}/methods/{method} 转换为一次方法调用
package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	hmsservices "github.com/wwwlkj/hmsservices"
)

// 请求体上限
const maxBodySize = 1 << 20

// Response 统一响应格式
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo 错误信息
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Gateway HTTP网关
type Gateway struct {
	messenger hmsservices.BinaryMessenger
	codec     hmsservices.MethodCodec
	logger    *slog.Logger
	router    chi.Router
}

// New 创建网关，codec 必须与通道另一端一致，nil 时使用 StandardMethodCodec
func New(messenger hmsservices.BinaryMessenger, codec hmsservices.MethodCodec, logger *slog.Logger) *Gateway {
	if codec == nil {
		codec = hmsservices.StandardMethodCodec{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gateway{
		messenger: messenger,
		codec:     codec,
		logger:    logger.With("component", "gateway"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", g.health)
	r.Get("/channels", g.listChannels)
	r.Post("/channels/{channel}/methods/{method}", g.invoke)

	g.router = r
	return g
}

// ServeHTTP 实现 http.Handler
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.router.ServeHTTP(w, r)
}

func (g *Gateway) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (g *Gateway) listChannels(w http.ResponseWriter, r *http.Request) {
	lister, ok := g.messenger.(hmsservices.ChannelLister)
	if !ok {
		writeError(w, http.StatusNotImplemented, "unsupported", "messenger cannot list channels", nil)
		return
	}
	writeJSON(w, http.StatusOK, lister.Channels())
}

// invoke 请求体为调用参数（JSON），为空时参数为 nil
func (g *Gateway) invoke(w http.ResponseWriter, r *http.Request) {
	channelName := chi.URLParam(r, "channel")
	method := chi.URLParam(r, "method")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	var args any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "请求体不是有效的JSON: "+err.Error(), nil)
			return
		}
	}

	channel := hmsservices.NewMethodChannel(channelName, g.messenger, g.codec, g.logger)
	result, err := channel.InvokeMethod(r.Context(), method, args)

	var methodErr *hmsservices.MethodError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, hmsservices.ErrNotImplemented):
		writeError(w, http.StatusNotImplemented, "not_implemented", err.Error(), nil)
	case errors.As(err, &methodErr):
		writeError(w, http.StatusBadGateway, methodErr.Code, methodErr.Message, methodErr.Details)
	default:
		g.logger.Error("网关调用失败",
			"channel", channelName,
			"method", method,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err)
		writeError(w, http.StatusBadGateway, "transport_error", err.Error(), nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message, Details: details},
	})
}
