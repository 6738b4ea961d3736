package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/BaSui01/videoflow/api/handlers"
	"github.com/BaSui01/videoflow/config"
	"github.com/BaSui01/videoflow/internal/metrics"
	"github.com/BaSui01/videoflow/internal/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// skipAuthPaths 不需要认证的路径
var skipAuthPaths = []string{"/health", "/healthz", "/ready", "/readyz", "/version"}

// Server 是 VideoFlow 的主服务器
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	// 服务器管理器
	httpManager    *server.Manager
	metricsManager *server.Manager

	// Handlers
	healthHandler     *handlers.HealthHandler
	generationHandler *handlers.GenerationHandler

	// 指标收集器
	metricsCollector *metrics.Collector

	rt *runtime

	// Rate limiter 生命周期管理
	rateLimiterCancel context.CancelFunc

	shutdownOnce sync.Once
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 启动所有服务
func (s *Server) Start() error {
	// 1. 初始化指标收集器
	s.metricsCollector = metrics.NewCollector("videoflow", nil, s.logger)

	// 2. 装配生成栈
	rt, err := buildRuntime(s.cfg, s.logger, s.metricsCollector)
	if err != nil {
		return fmt.Errorf("failed to build runtime: %w", err)
	}
	s.rt = rt

	// 3. 初始化 Handlers
	s.initHandlers()

	// 4. 启动 HTTP 服务器
	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	// 5. 启动 Metrics 服务器
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Int("models", len(s.rt.dispatcher.Models())),
	)
	return nil
}

// initHandlers 初始化所有 handlers
func (s *Server) initHandlers() {
	s.healthHandler = handlers.NewHealthHandler(s.logger).WithVersion(Version)
	if s.rt.secrets != nil {
		s.healthHandler.RegisterCheck(s.rt.secrets.check)
	}

	s.generationHandler = handlers.NewGenerationHandler(s.rt.dispatcher, s.logger,
		handlers.WithInFlightTracker(s.metricsCollector.GenerationStarted))

	s.logger.Info("Handlers initialized")
}

// =============================================================================
// 🌐 HTTP 服务器
// =============================================================================

// routes 注册全部路由
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// 健康检查端点
	mux.HandleFunc("GET /health", s.healthHandler.HandleHealth)
	mux.HandleFunc("GET /healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("GET /ready", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	// API 路由
	mux.HandleFunc("GET /api/v1/models", s.generationHandler.HandleModels)
	mux.HandleFunc("POST /api/v1/generations", s.generationHandler.HandleGenerate)

	return mux
}

// authMiddleware 配置了 JWT 密钥时使用 JWTAuth，否则配置了 API Key 时使用 APIKeyAuth
func (s *Server) authMiddleware() Middleware {
	switch {
	case s.cfg.JWT.Secret != "":
		s.logger.Info("JWT authentication enabled")
		return JWTAuth(s.cfg.JWT, skipAuthPaths, s.logger)
	case len(s.cfg.Server.APIKeys) > 0:
		s.logger.Info("API key authentication enabled", zap.Int("keys", len(s.cfg.Server.APIKeys)))
		return APIKeyAuth(s.cfg.Server.APIKeys, skipAuthPaths, s.logger)
	default:
		s.logger.Warn("no authentication configured, API is open")
		return nil
	}
}

// startHTTPServer 启动 HTTP 服务器
func (s *Server) startHTTPServer() error {
	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel

	handler := Chain(s.routes(),
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
		OTelTracing(s.rt.telemetry.Tracer("videoflow/http")),
		CORS(s.cfg.Server.CORSAllowedOrigins),
		RateLimiter(rateLimiterCtx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger),
		s.authMiddleware(),
	)

	s.httpManager = server.NewManager(handler, server.ConfigFrom(s.cfg.Server), s.logger)

	// 启动服务器（非阻塞）
	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

// =============================================================================
// 📊 Metrics 服务器
// =============================================================================

// startMetricsServer 启动 Metrics 服务器
func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	s.metricsManager = server.NewManager(mux, server.MetricsConfig(s.cfg.Server), s.logger)

	// 启动服务器（非阻塞）
	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// WaitForShutdown 等待关闭信号并优雅关闭
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown(context.Background())
	}
	s.Shutdown()
}

// Shutdown 优雅关闭所有服务，可重复调用
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.logger.Info("Starting graceful shutdown...")

		ctx := context.Background()

		// 0. 停止 rate limiter 清理 goroutine
		if s.rateLimiterCancel != nil {
			s.rateLimiterCancel()
		}

		// 1. 关闭 HTTP 服务器，等待进行中的生成结束
		if s.httpManager != nil {
			if err := s.httpManager.Shutdown(ctx); err != nil {
				s.logger.Error("HTTP server shutdown error", zap.Error(err))
			}
		}

		// 2. 关闭 Metrics 服务器
		if s.metricsManager != nil {
			if err := s.metricsManager.Shutdown(ctx); err != nil {
				s.logger.Error("Metrics server shutdown error", zap.Error(err))
			}
		}

		// 3. 释放密钥存储与遥测
		if s.rt != nil {
			s.rt.close(ctx, s.logger)
		}

		s.logger.Info("Graceful shutdown completed")
	})
}
