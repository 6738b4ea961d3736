package video

import (
	"github.com/BaSui01/videoflow/credentials"
	"go.uber.org/zap"
)

var pikaDurations = []int{5, 10}

// NewPikaProvider 创建 Replicate 托管的 Pika 模型
func NewPikaProvider(cfg ReplicateConfig, resolver credentials.Resolver, logger *zap.Logger) *ReplicateModel {
	cfg = cfg.withDefaults()
	return &ReplicateModel{
		name:   "pika",
		ref:    cfg.PikaModel,
		client: newReplicateClient("pika", cfg, resolver, logger),
		input: func(req GenerationRequest) map[string]any {
			return map[string]any{
				"prompt":       req.Prompt,
				"duration":     snapDuration(req.DurationSeconds, pikaDurations),
				"resolution":   string(req.Resolution),
				"aspect_ratio": "16:9",
			}
		},
	}
}
