package video

import (
	"context"

	"github.com/BaSui01/videoflow/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pipeline 先出图再转视频，两个阶段顺序执行
type Pipeline struct {
	name   string
	image  SyncProvider
	video  Animator
	logger *zap.Logger
}

// NewPipeline 创建图生视频流水线
func NewPipeline(name string, image SyncProvider, video Animator, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		name:   name,
		image:  image,
		video:  video,
		logger: logger.With(zap.String("component", "pipeline"), zap.String("pipeline", name)),
	}
}

// Provider 实现 Generator
func (p *Pipeline) Provider() string {
	return p.image.Name() + "+" + p.video.Name()
}

// Kind 实现 Generator
func (p *Pipeline) Kind() Kind { return KindPipeline }

// Generate 实现 Generator。第一阶段失败时不会调用第二阶段。
func (p *Pipeline) Generate(ctx context.Context, req GenerationRequest) (Output, error) {
	imageURL, err := p.image.Run(ctx, req)
	if err != nil {
		return Output{}, types.PipelineStageFailed(types.StageImage, err)
	}
	if !validURL(imageURL) {
		return Output{}, types.PipelineStageFailed(types.StageImage,
			types.InvalidOutputShape(p.image.Name(), "image stage returned no url"))
	}

	p.logger.Debug("image stage completed")

	videoURL, err := p.video.Animate(ctx, imageURL, req)
	if err != nil {
		return Output{}, types.PipelineStageFailed(types.StageVideo, err)
	}
	return Output{URL: videoURL, JobID: uuid.NewString()}, nil
}

// Run 实现 SyncProvider
func (p *Pipeline) Run(ctx context.Context, req GenerationRequest) (string, error) {
	out, err := p.Generate(ctx, req)
	return out.URL, err
}

// Name 实现 SyncProvider
func (p *Pipeline) Name() string { return p.name }
