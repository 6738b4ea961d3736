package video

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/BaSui01/videoflow/credentials"
	"github.com/BaSui01/videoflow/types"
	"go.uber.org/zap"
)

// runwayAPIVersion 固定的 API 版本信头
const runwayAPIVersion = "2024-11-06"

// RunwayProvider 使用 Runway 文生视频接口。
// API 文件: https://docs.dev.runwayml.com/api/
type RunwayProvider struct {
	cfg      ProviderConfig
	client   *apiClient
	resolver credentials.Resolver
}

// NewRunwayProvider 创建 Runway 后端
func NewRunwayProvider(cfg ProviderConfig, resolver credentials.Resolver, logger *zap.Logger) *RunwayProvider {
	cfg = cfg.withDefaults(DefaultRunwayConfig())
	client := newAPIClient("runway", cfg.BaseURL, cfg.Timeout, logger)
	client.headers["X-Runway-Version"] = runwayAPIVersion
	return &RunwayProvider{
		cfg:      cfg,
		client:   client,
		resolver: resolver,
	}
}

func (p *RunwayProvider) Name() string { return "runway" }

var runwayDurations = []int{5, 10}

// runwayRatio 分辨率到 ratio 参数
func runwayRatio(r Resolution) string {
	if r == Resolution1080p {
		return "1920:1080"
	}
	return "1280:720"
}

type runwayRequest struct {
	Model      string `json:"model"`
	PromptText string `json:"promptText"`
	Ratio      string `json:"ratio"`
	Duration   int    `json:"duration"`
}

type runwayTask struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"` // PENDING, THROTTLED, RUNNING, SUCCEEDED, FAILED, CANCELLED
	Output      json.RawMessage `json:"output,omitempty"`
	Failure     remoteError     `json:"failure,omitempty"`
	FailureCode string          `json:"failureCode,omitempty"`
	Error       remoteError     `json:"error,omitempty"`
}

// Submit 创建文生视频任务
// 终点: POST /v1/text_to_video
func (p *RunwayProvider) Submit(ctx context.Context, req GenerationRequest) (JobHandle, error) {
	secret, err := resolveSecret(ctx, p.resolver, p.Name(), credentials.ServiceRunway)
	if err != nil {
		return JobHandle{}, err
	}

	body := runwayRequest{
		Model:      p.cfg.Model,
		PromptText: req.Prompt,
		Ratio:      runwayRatio(req.Resolution),
		Duration:   snapDuration(req.DurationSeconds, runwayDurations),
	}

	var task runwayTask
	if err := p.client.submit(ctx, "/v1/text_to_video", secret, body, &task, nil); err != nil {
		return JobHandle{}, err
	}
	if task.ID == "" {
		return JobHandle{}, types.InvalidOutputShape(p.Name(), "create response has no id")
	}
	return NewJobHandle(p.Name(), task.ID, secret), nil
}

// Poll 查询任务状态
// 终点: GET /v1/tasks/{id}
func (p *RunwayProvider) Poll(ctx context.Context, h JobHandle) (JobStatus, error) {
	var task runwayTask
	raw, err := p.client.fetch(ctx, "/v1/tasks/"+url.PathEscape(h.ID), h.secret, &task)
	if err != nil {
		return JobStatus{}, err
	}

	detail := task.Failure.String()
	if detail == "" {
		detail = task.FailureCode
	}
	if detail == "" {
		detail = task.Error.String()
	}
	return JobStatus{
		State:   runwayState(task.Status),
		Detail:  detail,
		Payload: raw,
	}, nil
}

// ExtractResult 读取 output.url 或 output[0]
func (p *RunwayProvider) ExtractResult(status JobStatus) (string, error) {
	var task runwayTask
	if err := decodePayload(status.Payload, &task); err != nil {
		return "", types.InvalidOutputShape(p.Name(), "completed payload is not valid JSON")
	}
	u, ok := objectOrListURL(task.Output)
	if !ok {
		return "", types.InvalidOutputShape(p.Name(), "completed task has no output url")
	}
	return u, nil
}

func runwayState(s string) JobState {
	switch strings.ToUpper(s) {
	case "PENDING", "THROTTLED":
		return JobPending
	case "RUNNING":
		return JobProcessing
	case "SUCCEEDED":
		return JobCompleted
	case "FAILED", "CANCELLED", "CANCELED":
		return JobFailed
	default:
		return JobProcessing
	}
}
