package video

import (
	"context"
	"errors"
	"time"

	"github.com/BaSui01/videoflow/types"
	"go.uber.org/zap"
)

// 轮询默认值
const (
	DefaultPollInterval = 10 * time.Second
	DefaultPollDeadline = 30 * time.Minute
)

// PollerConfig 轮询配置。Deadline 为 0 表示不设上限。
type PollerConfig struct {
	Interval time.Duration `json:"interval" yaml:"interval"`
	Deadline time.Duration `json:"deadline" yaml:"deadline"`
}

// Poller 以固定间隔轮询异步任务直到终态
type Poller struct {
	interval time.Duration
	deadline time.Duration
	logger   *zap.Logger
	metrics  MetricsRecorder
}

// NewPoller 创建 Poller
func NewPoller(cfg PollerConfig, logger *zap.Logger, metrics MetricsRecorder) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Deadline < 0 {
		cfg.Deadline = DefaultPollDeadline
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Poller{
		interval: cfg.Interval,
		deadline: cfg.Deadline,
		logger:   logger.With(zap.String("component", "poller")),
		metrics:  metrics,
	}
}

// Wait 先等待一个间隔再查询，直到任务进入终态。
// 查询出错立即返回；failed 状态返回 REMOTE_GENERATION_FAILED；
// completed 状态返回 Job，由调用方提取结果。
func (p *Poller) Wait(ctx context.Context, provider AsyncProvider, h JobHandle) (Job, error) {
	job := Job{Handle: h, Status: JobStatus{State: JobPending}}

	waitCtx := ctx
	if p.deadline > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.deadline)
		defer cancel()
	}

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-waitCtx.Done():
			return job, p.stopped(ctx, provider.Name(), job)
		case <-timer.C:
		}

		status, err := provider.Poll(waitCtx, h)
		job.Attempts++
		if err != nil {
			if ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
				return job, p.stopped(ctx, provider.Name(), job)
			}
			p.logger.Debug("poll failed",
				zap.String("provider", provider.Name()),
				zap.String("job_id", h.ID),
				zap.Int("attempt", job.Attempts),
				zap.Error(err),
			)
			if _, ok := types.AsError(err); !ok {
				err = types.TransportError(provider.Name(), err)
			}
			return job, err
		}

		job.Status = status
		p.metrics.RecordPollAttempt(provider.Name(), status.State)
		p.logger.Debug("poll attempt",
			zap.String("provider", provider.Name()),
			zap.String("job_id", h.ID),
			zap.Int("attempt", job.Attempts),
			zap.String("state", string(status.State)),
		)

		switch status.State {
		case JobCompleted:
			return job, nil
		case JobFailed:
			return job, types.RemoteGenerationFailed(provider.Name(), status.Detail)
		}

		timer.Reset(p.interval)
	}
}

// stopped 区分调用方取消与轮询截止
func (p *Poller) stopped(ctx context.Context, provider string, job Job) error {
	if err := ctx.Err(); err != nil {
		return types.TransportError(provider, context.Cause(ctx))
	}
	p.logger.Warn("poll deadline exceeded",
		zap.String("provider", provider),
		zap.String("job_id", job.Handle.ID),
		zap.Int("attempts", job.Attempts),
		zap.Duration("deadline", p.deadline),
	)
	return types.Timeout(provider, p.deadline)
}
