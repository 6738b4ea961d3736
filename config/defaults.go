// =============================================================================
// 📦 videoflow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultPonyPromptSuffix 是 Pony-like 变体默认追加的质量标签
const DefaultPonyPromptSuffix = "score_9, score_8_up, score_7_up, source_anime, high quality, masterpiece"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Providers: DefaultProvidersConfig(),
		Polling:   DefaultPollingConfig(),
		Secrets:   DefaultSecretsConfig(),
		JWT:       DefaultJWTConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    35 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    10,
		RateLimitBurst:  20,
	}
}

// DefaultProvidersConfig 返回默认后端配置
func DefaultProvidersConfig() ProvidersConfig {
	return ProvidersConfig{
		Sora: ProviderConfig{
			BaseURL: "https://api.openai.com",
			Model:   "sora-2",
			Timeout: 60 * time.Second,
		},
		Runway: ProviderConfig{
			BaseURL: "https://api.dev.runwayml.com",
			Model:   "gen4.5",
			Timeout: 60 * time.Second,
		},
		Luma: ProviderConfig{
			BaseURL: "https://api.lumalabs.ai",
			Model:   "ray-2",
			Timeout: 60 * time.Second,
		},
		Vidu: ProviderConfig{
			BaseURL: "https://api.vidu.com",
			Model:   "viduq1",
			Timeout: 60 * time.Second,
		},
		Replicate: DefaultReplicateConfig(),
	}
}

// DefaultReplicateConfig 返回默认 Replicate 配置
func DefaultReplicateConfig() ReplicateConfig {
	return ReplicateConfig{
		BaseURL:          "https://api.replicate.com",
		Timeout:          5 * time.Minute,
		KlingModel:       "kwaivgi/kling-v2.1",
		PikaModel:        "pika-labs/pika-2.2",
		FluxSchnellModel: "black-forest-labs/flux-schnell",
		FluxDevModel:     "black-forest-labs/flux-dev",
		SVDModel:         "stability-ai/stable-video-diffusion:3f0457e4619daac51203dedb472816fd4af51f3149fa7a9e0b5ffcf1b8172438",
		PonyPromptSuffix: DefaultPonyPromptSuffix,
	}
}

// DefaultPollingConfig 返回默认轮询配置
func DefaultPollingConfig() PollingConfig {
	return PollingConfig{
		Interval: 10 * time.Second,
		Deadline: 30 * time.Minute,
	}
}

// DefaultSecretsConfig 返回默认凭证存储配置
func DefaultSecretsConfig() SecretsConfig {
	return SecretsConfig{
		Backend:   SecretsBackendNone,
		KeyPrefix: "videoflow:secret:",
		Redis:     DefaultRedisConfig(),
		Database:  DefaultDatabaseConfig(),
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "postgres",
		Host:            "localhost",
		Port:            5432,
		User:            "videoflow",
		Password:        "",
		Name:            "videoflow",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultJWTConfig 返回默认 JWT 配置
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		Issuer: "videoflow",
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "videoflow",
		SampleRate:   0.1,
	}
}
