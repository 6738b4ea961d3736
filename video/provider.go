package video

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AsyncProvider 提交后需要轮询的后端
type AsyncProvider interface {
	// Name 返回后端名称
	Name() string

	// Submit 创建一个远端任务
	Submit(ctx context.Context, req GenerationRequest) (JobHandle, error)

	// Poll 查询一次任务状态，无副作用
	Poll(ctx context.Context, h JobHandle) (JobStatus, error)

	// ExtractResult 从完成状态中取出视频 URL
	ExtractResult(status JobStatus) (string, error)
}

// SyncProvider 一次请求即返回结果的后端
type SyncProvider interface {
	Name() string
	Run(ctx context.Context, req GenerationRequest) (string, error)
}

// Animator 将图片转换为视频
type Animator interface {
	Name() string
	Animate(ctx context.Context, imageURL string, req GenerationRequest) (string, error)
}

// Generator 是 Registry 中一条路由的统一调用入口
type Generator interface {
	Provider() string
	Kind() Kind
	Generate(ctx context.Context, req GenerationRequest) (Output, error)
}

// MetricsRecorder 记录生成与轮询指标
type MetricsRecorder interface {
	RecordGeneration(model, provider, outcome string, duration time.Duration)
	RecordPollAttempt(provider string, state JobState)
}

type nopMetrics struct{}

func (nopMetrics) RecordGeneration(string, string, string, time.Duration) {}
func (nopMetrics) RecordPollAttempt(string, JobState)                    {}

// =============================================================================
// Generator 适配
// =============================================================================

// asyncGenerator 提交后交给 Poller 等待
type asyncGenerator struct {
	provider AsyncProvider
	poller   *Poller
}

// NewAsyncGenerator 将 AsyncProvider 适配为 Generator
func NewAsyncGenerator(p AsyncProvider, poller *Poller) Generator {
	return &asyncGenerator{provider: p, poller: poller}
}

func (g *asyncGenerator) Provider() string { return g.provider.Name() }
func (g *asyncGenerator) Kind() Kind       { return KindAsync }

func (g *asyncGenerator) Generate(ctx context.Context, req GenerationRequest) (Output, error) {
	h, err := g.provider.Submit(ctx, req)
	if err != nil {
		return Output{}, err
	}

	job, err := g.poller.Wait(ctx, g.provider, h)
	if err != nil {
		return Output{JobID: h.ID}, err
	}

	url, err := g.provider.ExtractResult(job.Status)
	if err != nil {
		return Output{JobID: h.ID}, err
	}
	return Output{URL: url, JobID: h.ID}, nil
}

// syncGenerator 直接调用 SyncProvider
type syncGenerator struct {
	provider SyncProvider
}

// NewSyncGenerator 将 SyncProvider 适配为 Generator
func NewSyncGenerator(p SyncProvider) Generator {
	return &syncGenerator{provider: p}
}

func (g *syncGenerator) Provider() string { return g.provider.Name() }
func (g *syncGenerator) Kind() Kind       { return KindSync }

func (g *syncGenerator) Generate(ctx context.Context, req GenerationRequest) (Output, error) {
	url, err := g.provider.Run(ctx, req)
	if err != nil {
		return Output{}, err
	}
	return Output{URL: url, JobID: uuid.NewString()}, nil
}
