package video

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/BaSui01/videoflow/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/BaSui01/videoflow/video"

// 生成结果分类（指标标签）
const (
	OutcomeSuccess = "success"
)

// Dispatcher 校验请求、选择路由并调用对应生成器
type Dispatcher struct {
	registry *Registry
	logger   *zap.Logger
	metrics  MetricsRecorder
	tracer   trace.Tracer
	now      func() time.Time
}

// DispatcherOption 配置 Dispatcher
type DispatcherOption func(*Dispatcher)

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics 设置指标记录器
func WithMetrics(m MetricsRecorder) DispatcherOption {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

// WithTracer 设置 tracer
func WithTracer(t trace.Tracer) DispatcherOption {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

// NewDispatcher 创建 Dispatcher
func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		logger:   zap.NewNop(),
		metrics:  nopMetrics{},
		tracer:   otel.Tracer(instrumentationName),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(zap.String("component", "dispatcher"))
	return d
}

// Models 列出可选模型
func (d *Dispatcher) Models() []ModelInfo {
	return d.registry.Models()
}

// Generate 执行一次生成。每次调用恰好创建一个远端任务，失败时不重试。
func (d *Dispatcher) Generate(ctx context.Context, req GenerationRequest) (result *Result, err error) {
	// 未知模型优先于参数校验
	gen, ok := d.registry.Lookup(req.Model)
	if !ok {
		return nil, types.UnsupportedModel(req.Model)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx = types.WithModel(ctx, req.Model)
	ctx, span := d.tracer.Start(ctx, "video.generate",
		trace.WithAttributes(
			attribute.String("video.model", req.Model),
			attribute.String("video.provider", gen.Provider()),
			attribute.String("video.kind", string(gen.Kind())),
			attribute.Int("video.duration_seconds", req.DurationSeconds),
			attribute.String("video.resolution", string(req.Resolution)),
		))
	start := d.now()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("generator panicked",
				zap.String("model", req.Model),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			result = nil
			err = types.NewError(types.ErrInternalError, "internal error during generation").
				WithProvider(gen.Provider()).
				WithCause(fmt.Errorf("panic: %v", r))
		}
		d.finish(ctx, span, req, gen, start, err)
	}()

	out, genErr := gen.Generate(ctx, req)
	if genErr != nil {
		if _, typed := types.AsError(genErr); !typed {
			genErr = types.TransportError(gen.Provider(), genErr)
		}
		return nil, genErr
	}

	return &Result{
		ResultURL: out.URL,
		Model:     req.Model,
		Provider:  gen.Provider(),
		JobID:     out.JobID,
		CreatedAt: d.now(),
	}, nil
}

func (d *Dispatcher) finish(ctx context.Context, span trace.Span, req GenerationRequest, gen Generator, start time.Time, err error) {
	defer span.End()

	elapsed := d.now().Sub(start)
	outcome := OutcomeSuccess
	if err != nil {
		outcome = string(types.GetErrorCode(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, string(types.GetErrorCode(err)))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.String("video.outcome", outcome))
	d.metrics.RecordGeneration(req.Model, gen.Provider(), outcome, elapsed)

	fields := []zap.Field{
		zap.String("model", req.Model),
		zap.String("provider", gen.Provider()),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed),
	}
	if id, ok := types.RequestID(ctx); ok {
		fields = append(fields, zap.String("request_id", id))
	}
	if err != nil {
		d.logger.Warn("generation failed", append(fields, zap.Error(err))...)
		return
	}
	d.logger.Info("generation completed", fields...)
}
