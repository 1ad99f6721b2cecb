package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/imagegate/api/handlers"
	"github.com/BaSui01/imagegate/config"
	"github.com/BaSui01/imagegate/gateway"
	"github.com/BaSui01/imagegate/internal/metrics"
	"github.com/BaSui01/imagegate/internal/quota"
	"github.com/BaSui01/imagegate/internal/server"
	"github.com/BaSui01/imagegate/internal/telemetry"
	"github.com/BaSui01/imagegate/provider"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是 ImageGate 的主服务器
type Server struct {
	cfg    *config.Config
	loader *config.Loader
	logger *zap.Logger

	// 服务器管理器
	httpManager    *server.Manager
	metricsManager *server.Manager
	group          *server.Group

	service       *gateway.Service
	healthHandler *handlers.HealthHandler
	cors          *gateway.CorsPolicy
	proxies       *handlers.TrustedProxies

	metricsCollector *metrics.Collector
	limiter          *quota.RedisLimiter
	otel             *telemetry.Providers

	// 凭据与配置热重载
	reloader *config.Reloader

	// 后台协程（限流清理、配置监听）的生命周期
	cancel context.CancelFunc
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, loader *config.Loader, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		loader: loader,
		logger: logger,
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 启动所有服务
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	providers, err := telemetry.Init(s.cfg.Telemetry, Version, s.logger)
	if err != nil {
		s.logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	s.otel = providers

	s.metricsCollector = metrics.NewCollector("imagegate", s.logger)

	proxies, err := handlers.ParseTrustedProxies(s.cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}
	s.proxies = proxies
	s.cors = gateway.NewCorsPolicy(s.cfg.Gateway.DevRefererMarkers)

	if err := s.initReloader(ctx); err != nil {
		return fmt.Errorf("failed to init config reloader: %w", err)
	}
	if err := s.initLimiter(); err != nil {
		return fmt.Errorf("failed to init quota limiter: %w", err)
	}
	s.initService()
	s.initHealth()

	s.httpManager = server.NewManager(s.buildHandler(ctx), s.httpConfig(), s.logger)
	s.metricsManager = server.NewManager(metricsMux(), s.metricsConfig(), s.logger)
	s.group = server.NewGroup(s.logger, s.httpManager, s.metricsManager)
	if err := s.group.Start(); err != nil {
		return fmt.Errorf("failed to start servers: %w", err)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Int("models", s.service.Registry().Len()),
		zap.Bool("quota_enabled", s.limiter != nil),
		zap.Strings("watched_files", s.loader.WatchPaths()),
	)
	return nil
}

// =============================================================================
// 🔧 初始化方法
// =============================================================================

func (s *Server) initReloader(ctx context.Context) error {
	s.reloader = config.NewReloader(s.loader, s.cfg, s.logger)
	s.reloader.OnReload(func(old, next *config.Config) {
		// 只有凭据在运行时生效，其余字段需要重启
		if !reflect.DeepEqual(old.Server, next.Server) ||
			!reflect.DeepEqual(old.Gateway, next.Gateway) ||
			!reflect.DeepEqual(old.Quota, next.Quota) ||
			!reflect.DeepEqual(old.Providers, next.Providers) {
			s.logger.Warn("configuration changed outside credentials, restart required to apply")
		}
	})
	return s.reloader.Watch(ctx)
}

func (s *Server) initLimiter() error {
	if !s.cfg.Quota.Enabled {
		return nil
	}
	limiter, err := quota.NewRedisLimiter(quota.Config{
		Addr:         s.cfg.Redis.Addr,
		Password:     s.cfg.Redis.Password,
		DB:           s.cfg.Redis.DB,
		PoolSize:     s.cfg.Redis.PoolSize,
		MinIdleConns: s.cfg.Redis.MinIdleConns,
		Limit:        s.cfg.Quota.Limit,
		Window:       s.cfg.Quota.Window,
		KeyPrefix:    s.cfg.Quota.KeyPrefix,
	}, s.logger, quota.WithRecorder(s.metricsCollector))
	if err != nil {
		return err
	}
	s.limiter = limiter
	return nil
}

func (s *Server) initService() {
	opts := []gateway.Option{
		gateway.WithFactory(provider.NewFactory(providerOverrides(s.cfg.Providers))),
		gateway.WithStrictSizes(s.cfg.Gateway.StrictSizes),
		gateway.WithCorsPolicy(s.cors),
		gateway.WithMetrics(s.metricsCollector),
		gateway.WithLogger(s.logger),
	}
	if s.limiter != nil {
		opts = append(opts, gateway.WithLimiter(s.limiter))
	}
	s.service = gateway.NewService(s.reloader, opts...)
}

func (s *Server) initHealth() {
	s.healthHandler = handlers.NewHealthHandler(s.logger)
	if s.limiter != nil {
		s.healthHandler.RegisterCheck(handlers.NewPingHealthCheck("redis", s.limiter.Ping))
	}
	registry := s.service.Registry()
	s.healthHandler.SetCredentialReport(func() map[string]bool {
		models := make([]gateway.ModelConfig, 0, registry.Len())
		for _, id := range registry.Models() {
			if cfg, err := registry.Resolve(id); err == nil {
				models = append(models, cfg)
			}
		}
		return s.service.Credentials().Configured(models)
	})
}

// providerOverrides 把 YAML 中按变体名配置的端点转换为 provider.Config
func providerOverrides(in map[string]config.ProviderConfig) map[provider.Variant]provider.Config {
	out := make(map[provider.Variant]provider.Config, len(in))
	for name, pc := range in {
		out[provider.Variant(name)] = provider.Config{
			BaseURL:      pc.BaseURL,
			Timeout:      pc.Timeout,
			PollInterval: pc.PollInterval,
		}
	}
	return out
}

// =============================================================================
// 🌐 HTTP 路由
// =============================================================================

// buildHandler 注册路由并构建中间件链
func (s *Server) buildHandler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("/ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	// 图像生成：两条路径共享同一处理器与执行预算
	generate := withBudget(handlers.NewImageHandler(s.service, s.logger), s.cfg.Gateway.RequestTimeout, s.cors)
	mux.Handle("/api/generate-image", generate)
	mux.Handle("/api/ai", generate)
	mux.HandleFunc("/api/models", handlers.HandleModels(s.service))

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		RealIP(s.proxies),
		OTelTracing(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
	}
	if s.cfg.Server.RateLimitRPS > 0 {
		middlewares = append(middlewares,
			RateLimiter(ctx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger))
	}
	return Chain(mux, middlewares...)
}

// withBudget 限制单次请求的执行时间。超时后 http.TimeoutHandler 写出 503，
// 响应体为 GENERATION_FAILED 错误。Content-Type 与 CORS 头需提前设置，
// 否则开发前端读不到超时错误。
func withBudget(h http.Handler, budget time.Duration, cors *gateway.CorsPolicy) http.Handler {
	if cors == nil {
		cors = gateway.NewCorsPolicy(nil)
	}
	timed := h
	if budget > 0 {
		timed = http.TimeoutHandler(h, budget, handlers.TimeoutBody())
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range cors.Headers(r.Referer()) {
			w.Header().Set(k, v)
		}
		timed.ServeHTTP(w, r)
	})
}

func (s *Server) httpConfig() server.Config {
	return server.Config{
		Name:            "api",
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}
}

// =============================================================================
// 📊 Metrics 服务器
// =============================================================================

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) metricsConfig() server.Config {
	return server.Config{
		Name:            "metrics",
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// WaitForShutdown 阻塞到收到信号或服务器异常退出，然后清理全部资源
func (s *Server) WaitForShutdown() error {
	var err error
	if s.group != nil {
		err = s.group.Wait(context.Background())
	}
	return errors.Join(err, s.Shutdown())
}

// Shutdown 停止后台任务并释放外部连接，HTTP 服务器由 Group 关闭
func (s *Server) Shutdown() error {
	s.logger.Info("Starting graceful shutdown...")

	if s.cancel != nil {
		s.cancel()
	}
	if s.reloader != nil {
		s.reloader.Stop()
	}

	var errs []error
	if s.limiter != nil {
		if err := s.limiter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close quota limiter: %w", err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.otel.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown telemetry: %w", err))
	}

	s.logger.Info("Graceful shutdown completed")
	return errors.Join(errs...)
}
