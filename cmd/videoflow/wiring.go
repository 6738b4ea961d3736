package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BaSui01/videoflow/config"
	"github.com/BaSui01/videoflow/credentials"
	"github.com/BaSui01/videoflow/internal/database"
	"github.com/BaSui01/videoflow/internal/metrics"
	"github.com/BaSui01/videoflow/internal/telemetry"
	"github.com/BaSui01/videoflow/video"
	"go.uber.org/zap"
)

// =============================================================================
// 🔌 组件装配
// =============================================================================

// videoConfig 将配置文件中的后端设置转换为 video.Config，密钥不在其中
func videoConfig(p config.ProvidersConfig) video.Config {
	conv := func(c config.ProviderConfig) video.ProviderConfig {
		return video.ProviderConfig{BaseURL: c.BaseURL, Model: c.Model, Timeout: c.Timeout}
	}
	return video.Config{
		Sora:   conv(p.Sora),
		Runway: conv(p.Runway),
		Luma:   conv(p.Luma),
		Vidu:   conv(p.Vidu),
		Replicate: video.ReplicateConfig{
			BaseURL:          p.Replicate.BaseURL,
			Timeout:          p.Replicate.Timeout,
			KlingModel:       p.Replicate.KlingModel,
			PikaModel:        p.Replicate.PikaModel,
			FluxSchnellModel: p.Replicate.FluxSchnellModel,
			FluxDevModel:     p.Replicate.FluxDevModel,
			SVDModel:         p.Replicate.SVDModel,
			PonyPromptSuffix: p.Replicate.PonyPromptSuffix,
		},
	}
}

// configuredSecrets 收集配置文件中直接给出的密钥
func configuredSecrets(p config.ProvidersConfig) credentials.StaticResolver {
	return credentials.StaticResolver{
		credentials.ServiceOpenAI:    p.Sora.APIKey,
		credentials.ServiceRunway:    p.Runway.APIKey,
		credentials.ServiceLuma:      p.Luma.APIKey,
		credentials.ServiceVidu:      p.Vidu.APIKey,
		credentials.ServiceReplicate: p.Replicate.APIKey,
	}
}

// secretStore 已打开的外部密钥存储
type secretStore struct {
	store credentials.Store
	check interface {
		Name() string
		Check(ctx context.Context) error
	}
	close   func() error
	disable func(ctx context.Context, service string) error
}

// openSecretStore 按 secrets.backend 打开 Redis 或数据库存储；none 返回 nil
func openSecretStore(cfg config.SecretsConfig, logger *zap.Logger, opts ...database.Option) (*secretStore, error) {
	switch cfg.Backend {
	case "", config.SecretsBackendNone:
		return nil, nil
	case config.SecretsBackendRedis:
		rs, err := credentials.NewRedisStore(cfg.Redis, cfg.KeyPrefix, logger)
		if err != nil {
			return nil, err
		}
		return &secretStore{store: rs, check: rs, close: rs.Close, disable: rs.Delete}, nil
	case config.SecretsBackendDatabase:
		pm, err := database.Open(cfg.Database, logger, opts...)
		if err != nil {
			return nil, err
		}
		ds, err := credentials.NewDBStore(pm.DB(), logger, credentials.WithTransactor(pm))
		if err != nil {
			_ = pm.Close()
			return nil, err
		}
		if err := ds.Migrate(); err != nil {
			_ = pm.Close()
			return nil, err
		}
		return &secretStore{store: ds, check: pm, close: pm.Close, disable: ds.Disable}, nil
	default:
		return nil, fmt.Errorf("unsupported secrets backend: %s", cfg.Backend)
	}
}

// runtime 服务与 CLI 共享的生成栈
type runtime struct {
	dispatcher *video.Dispatcher
	secrets    *secretStore
	telemetry  *telemetry.Providers
}

// buildRuntime 装配 Resolver → Poller → Registry → Dispatcher。
// 密钥解析顺序：配置文件 → 环境变量 → 外部存储。
func buildRuntime(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) (*runtime, error) {
	rt := &runtime{}

	providers, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	rt.telemetry = providers

	var dbOpts []database.Option
	if collector != nil {
		dbOpts = append(dbOpts, database.WithStatsObserver(func(s database.PoolStats) {
			collector.RecordDBConnections("secrets", s.OpenConnections, s.Idle)
		}))
	}
	rt.secrets, err = openSecretStore(cfg.Secrets, logger, dbOpts...)
	if err != nil {
		rt.close(context.Background(), logger)
		return nil, fmt.Errorf("failed to open secret store: %w", err)
	}

	var external credentials.Resolver
	if rt.secrets != nil {
		external = rt.secrets.store
	}
	chain := credentials.NewChain(configuredSecrets(cfg.Providers), credentials.NewEnvResolver(nil), external)

	var resolver credentials.Resolver = chain
	if collector != nil {
		resolver = credentials.ResolverFunc(func(ctx context.Context, service string) (string, bool) {
			v, ok := chain.Resolve(ctx, service)
			collector.RecordCredentialLookup(service, ok)
			return v, ok
		})
	}

	recorders := fanout{}
	if collector != nil {
		recorders = append(recorders, collector)
	}
	if rt.telemetry.Enabled() {
		rec, err := telemetry.NewRecorder(rt.telemetry.Meter("videoflow/video"))
		if err != nil {
			logger.Warn("failed to create telemetry recorder", zap.Error(err))
		} else {
			recorders = append(recorders, rec)
		}
	}

	poller := video.NewPoller(video.PollerConfig{
		Interval: cfg.Polling.Interval,
		Deadline: cfg.Polling.Deadline,
	}, logger, recorders)

	registry := video.NewDefaultRegistry(videoConfig(cfg.Providers), resolver, poller, logger)
	rt.dispatcher = video.NewDispatcher(registry,
		video.WithLogger(logger),
		video.WithMetrics(recorders),
		video.WithTracer(rt.telemetry.Tracer("videoflow/video")),
	)
	return rt, nil
}

// close 释放外部资源
func (rt *runtime) close(ctx context.Context, logger *zap.Logger) {
	if rt.secrets != nil && rt.secrets.close != nil {
		if err := rt.secrets.close(); err != nil {
			logger.Error("secret store close error", zap.Error(err))
		}
	}
	if rt.telemetry != nil {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rt.telemetry.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("telemetry shutdown error", zap.Error(err))
		}
	}
}

// fanout 将指标同时写入多个 video.MetricsRecorder
type fanout []video.MetricsRecorder

func (f fanout) RecordGeneration(model, provider, outcome string, d time.Duration) {
	for _, r := range f {
		r.RecordGeneration(model, provider, outcome, d)
	}
}

func (f fanout) RecordPollAttempt(provider string, state video.JobState) {
	for _, r := range f {
		r.RecordPollAttempt(provider, state)
	}
}
