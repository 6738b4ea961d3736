package video

import (
	"strings"

	"github.com/BaSui01/videoflow/credentials"
	"go.uber.org/zap"
)

// fluxMegapixels 720p 出 0.25MP 草图，1080p 出 1MP
func fluxMegapixels(r Resolution) string {
	if r == Resolution1080p {
		return "1"
	}
	return "0.25"
}

// fluxPrompt 追加风格标签
func fluxPrompt(prompt, suffix string) string {
	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		return prompt
	}
	return strings.TrimRight(prompt, " ,") + ", " + suffix
}

// NewFluxProvider 创建 Flux 文生图模型，作为 Pipeline 的第一阶段。
// 列表输出取第一张图。
func NewFluxProvider(ref, promptSuffix string, cfg ReplicateConfig, resolver credentials.Resolver, logger *zap.Logger) *ReplicateModel {
	return &ReplicateModel{
		name:   "flux",
		ref:    ref,
		client: newReplicateClient("flux", cfg, resolver, logger),
		first:  true,
		input: func(req GenerationRequest) map[string]any {
			return map[string]any{
				"prompt":        fluxPrompt(req.Prompt, promptSuffix),
				"aspect_ratio":  "16:9",
				"megapixels":    fluxMegapixels(req.Resolution),
				"num_outputs":   1,
				"output_format": "png",
			}
		},
	}
}
