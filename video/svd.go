package video

import (
	"context"

	"github.com/BaSui01/videoflow/credentials"
	"go.uber.org/zap"
)

// SVD 固定参数
const (
	svdFPS            = 6
	svdMotionBucketID = 127
	svdCondAug        = 0.02
)

// svdVideoLength 10 秒以内用 14 帧模型，否则用 25 帧 xt 模型
func svdVideoLength(durationSeconds int) string {
	if durationSeconds <= 10 {
		return "14_frames_with_svd"
	}
	return "25_frames_with_svd_xt"
}

// SVDProvider 使用 Stable Video Diffusion 将图片转为视频
type SVDProvider struct {
	ref    string
	client *replicateClient
}

// NewSVDProvider 创建 SVD 后端
func NewSVDProvider(cfg ReplicateConfig, resolver credentials.Resolver, logger *zap.Logger) *SVDProvider {
	cfg = cfg.withDefaults()
	return &SVDProvider{
		ref:    cfg.SVDModel,
		client: newReplicateClient("svd", cfg, resolver, logger),
	}
}

func (p *SVDProvider) Name() string { return "svd" }

// Animate 实现 Animator
func (p *SVDProvider) Animate(ctx context.Context, imageURL string, req GenerationRequest) (string, error) {
	input := map[string]any{
		"input_image":       imageURL,
		"video_length":      svdVideoLength(req.DurationSeconds),
		"sizing_strategy":   "maintain_aspect_ratio",
		"frames_per_second": svdFPS,
		"motion_bucket_id":  svdMotionBucketID,
		"cond_aug":          svdCondAug,
	}
	return p.client.predict(ctx, p.ref, input, false)
}
