package video

import (
	"fmt"
	"sync"

	"github.com/BaSui01/videoflow/credentials"
	"go.uber.org/zap"
)

// 默认模型名
const (
	ModelSora        = "Sora"
	ModelRunway      = "Runway"
	ModelLuma        = "Luma"
	ModelKling       = "Kling"
	ModelPika        = "Pika"
	ModelVidu        = "Vidu"
	ModelFluxSchnell = "Flux Schnell"
	ModelFluxDev     = "Flux Dev"
	ModelPonyLike    = "Pony-like"
)

// Registry 模型名到生成器的静态路由表，模型名精确匹配
type Registry struct {
	mu     sync.RWMutex
	routes map[string]Generator
	order  []string
}

// NewRegistry 创建空路由表
func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]Generator)}
}

// Register 注册一条路由，模型名重复时返回错误
func (r *Registry) Register(model string, g Generator) error {
	if model == "" {
		return fmt.Errorf("model name is required")
	}
	if g == nil {
		return fmt.Errorf("generator for %q is nil", model)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.routes[model]; exists {
		return fmt.Errorf("model %q already registered", model)
	}
	r.routes[model] = g
	r.order = append(r.order, model)
	return nil
}

// MustRegister 注册失败时 panic
func (r *Registry) MustRegister(model string, g Generator) {
	if err := r.Register(model, g); err != nil {
		panic(err)
	}
}

// Lookup 查找路由
func (r *Registry) Lookup(model string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.routes[model]
	return g, ok
}

// Models 按注册顺序列出可选模型
func (r *Registry) Models() []ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ModelInfo, 0, len(r.order))
	for _, name := range r.order {
		g := r.routes[name]
		out = append(out, ModelInfo{Name: name, Provider: g.Provider(), Kind: g.Kind()})
	}
	return out
}

// NewDefaultRegistry 注册全部默认模型
func NewDefaultRegistry(cfg Config, resolver credentials.Resolver, poller *Poller, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	rep := cfg.Replicate.withDefaults()
	svd := NewSVDProvider(rep, resolver, logger)

	r := NewRegistry()
	r.MustRegister(ModelSora, NewAsyncGenerator(NewSoraProvider(cfg.Sora, resolver, logger), poller))
	r.MustRegister(ModelRunway, NewAsyncGenerator(NewRunwayProvider(cfg.Runway, resolver, logger), poller))
	r.MustRegister(ModelLuma, NewAsyncGenerator(NewLumaProvider(cfg.Luma, resolver, logger), poller))
	r.MustRegister(ModelKling, NewSyncGenerator(NewKlingProvider(rep, resolver, logger)))
	r.MustRegister(ModelPika, NewSyncGenerator(NewPikaProvider(rep, resolver, logger)))
	r.MustRegister(ModelVidu, NewAsyncGenerator(NewViduProvider(cfg.Vidu, resolver, logger), poller))
	r.MustRegister(ModelFluxSchnell, NewPipeline(ModelFluxSchnell,
		NewFluxProvider(rep.FluxSchnellModel, "", rep, resolver, logger), svd, logger))
	r.MustRegister(ModelFluxDev, NewPipeline(ModelFluxDev,
		NewFluxProvider(rep.FluxDevModel, "", rep, resolver, logger), svd, logger))
	r.MustRegister(ModelPonyLike, NewPipeline(ModelPonyLike,
		NewFluxProvider(rep.FluxDevModel, rep.PonyPromptSuffix, rep, resolver, logger), svd, logger))
	return r
}
