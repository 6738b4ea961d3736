package video

import (
	"github.com/BaSui01/videoflow/credentials"
	"go.uber.org/zap"
)

var klingDurations = []int{5, 10}

// klingMode 720p 使用 standard，1080p 使用 pro
func klingMode(r Resolution) string {
	if r == Resolution1080p {
		return "pro"
	}
	return "standard"
}

// NewKlingProvider 创建 Replicate 托管的 Kling 模型
func NewKlingProvider(cfg ReplicateConfig, resolver credentials.Resolver, logger *zap.Logger) *ReplicateModel {
	cfg = cfg.withDefaults()
	return &ReplicateModel{
		name:   "kling",
		ref:    cfg.KlingModel,
		client: newReplicateClient("kling", cfg, resolver, logger),
		input: func(req GenerationRequest) map[string]any {
			return map[string]any{
				"prompt":       req.Prompt,
				"duration":     snapDuration(req.DurationSeconds, klingDurations),
				"mode":         klingMode(req.Resolution),
				"aspect_ratio": "16:9",
			}
		},
	}
}
