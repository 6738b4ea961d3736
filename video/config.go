package video

import "time"

// ProviderConfig 单个异步后端的连接配置。密钥不在此处，由 credentials.Resolver 解析。
type ProviderConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ReplicateConfig 配置 Replicate 托管的同步模型
type ReplicateConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	KlingModel       string `json:"kling_model" yaml:"kling_model"`
	PikaModel        string `json:"pika_model" yaml:"pika_model"`
	FluxSchnellModel string `json:"flux_schnell_model" yaml:"flux_schnell_model"`
	FluxDevModel     string `json:"flux_dev_model" yaml:"flux_dev_model"`
	SVDModel         string `json:"svd_model" yaml:"svd_model"`
	PonyPromptSuffix string `json:"pony_prompt_suffix,omitempty" yaml:"pony_prompt_suffix,omitempty"`
}

// Config 汇总全部后端配置
type Config struct {
	Sora      ProviderConfig  `json:"sora" yaml:"sora"`
	Runway    ProviderConfig  `json:"runway" yaml:"runway"`
	Luma      ProviderConfig  `json:"luma" yaml:"luma"`
	Vidu      ProviderConfig  `json:"vidu" yaml:"vidu"`
	Replicate ReplicateConfig `json:"replicate" yaml:"replicate"`
}

// DefaultSoraConfig 返回默认 Sora 配置
func DefaultSoraConfig() ProviderConfig {
	return ProviderConfig{
		BaseURL: "https://api.openai.com",
		Model:   "sora-2",
		Timeout: 60 * time.Second,
	}
}

// DefaultRunwayConfig 返回默认 Runway 配置
func DefaultRunwayConfig() ProviderConfig {
	return ProviderConfig{
		BaseURL: "https://api.dev.runwayml.com",
		Model:   "gen4.5",
		Timeout: 60 * time.Second,
	}
}

// DefaultLumaConfig 返回默认 Luma 配置
func DefaultLumaConfig() ProviderConfig {
	return ProviderConfig{
		BaseURL: "https://api.lumalabs.ai",
		Model:   "ray-2",
		Timeout: 60 * time.Second,
	}
}

// DefaultViduConfig 返回默认 Vidu 配置
func DefaultViduConfig() ProviderConfig {
	return ProviderConfig{
		BaseURL: "https://api.vidu.com",
		Model:   "viduq1",
		Timeout: 60 * time.Second,
	}
}

// DefaultPonyPromptSuffix Pony-like 路由追加的风格标签
const DefaultPonyPromptSuffix = "score_9, score_8_up, score_7_up, source_anime, high quality, masterpiece"

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

// DefaultConfig 返回全部后端的默认配置
func DefaultConfig() Config {
	return Config{
		Sora:      DefaultSoraConfig(),
		Runway:    DefaultRunwayConfig(),
		Luma:      DefaultLumaConfig(),
		Vidu:      DefaultViduConfig(),
		Replicate: DefaultReplicateConfig(),
	}
}

// withDefaults 用 def 填充 cfg 的空字段
func (cfg ProviderConfig) withDefaults(def ProviderConfig) ProviderConfig {
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return cfg
}

func (cfg ReplicateConfig) withDefaults() ReplicateConfig {
	def := DefaultReplicateConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.KlingModel == "" {
		cfg.KlingModel = def.KlingModel
	}
	if cfg.PikaModel == "" {
		cfg.PikaModel = def.PikaModel
	}
	if cfg.FluxSchnellModel == "" {
		cfg.FluxSchnellModel = def.FluxSchnellModel
	}
	if cfg.FluxDevModel == "" {
		cfg.FluxDevModel = def.FluxDevModel
	}
	if cfg.SVDModel == "" {
		cfg.SVDModel = def.SVDModel
	}
	if cfg.PonyPromptSuffix == "" {
		cfg.PonyPromptSuffix = def.PonyPromptSuffix
	}
	return cfg
}
