package telemetry

import (
	"context"
	"time"

	"github.com/BaSui01/videoflow/video"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recorder 以 OTel 指标记录生成与轮询，实现 video.MetricsRecorder
type Recorder struct {
	generations metric.Int64Counter
	duration    metric.Float64Histogram
	polls       metric.Int64Counter
}

// NewRecorder 在 meter 上注册生成相关指标
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	generations, err := meter.Int64Counter("videoflow.generations",
		metric.WithDescription("Number of finished generation requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("videoflow.generation.duration",
		metric.WithDescription("End-to-end generation latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(5, 15, 30, 60, 120, 300, 600, 1200, 1800),
	)
	if err != nil {
		return nil, err
	}

	polls, err := meter.Int64Counter("videoflow.poll.attempts",
		metric.WithDescription("Number of status polls against async providers"),
		metric.WithUnit("{poll}"),
	)
	if err != nil {
		return nil, err
	}

	return &Recorder{generations: generations, duration: duration, polls: polls}, nil
}

// RecordGeneration 实现 video.MetricsRecorder
func (r *Recorder) RecordGeneration(model, provider, outcome string, d time.Duration) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("video.model", model),
		attribute.String("video.provider", provider),
		attribute.String("video.outcome", outcome),
	)
	r.generations.Add(ctx, 1, attrs)
	r.duration.Record(ctx, d.Seconds(), attrs)
}

// RecordPollAttempt 实现 video.MetricsRecorder
func (r *Recorder) RecordPollAttempt(provider string, state video.JobState) {
	r.polls.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("video.provider", provider),
		attribute.String("video.state", string(state)),
	))
}
