package video

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/BaSui01/videoflow/credentials"
	"github.com/BaSui01/videoflow/types"
	"go.uber.org/zap"
)

// SoraProvider 使用 OpenAI Videos API 生成视频。
// API: POST /v1/videos, GET /v1/videos/{id}
type SoraProvider struct {
	cfg      ProviderConfig
	client   *apiClient
	resolver credentials.Resolver
}

// NewSoraProvider 创建 Sora 后端
func NewSoraProvider(cfg ProviderConfig, resolver credentials.Resolver, logger *zap.Logger) *SoraProvider {
	cfg = cfg.withDefaults(DefaultSoraConfig())
	return &SoraProvider{
		cfg:      cfg,
		client:   newAPIClient("sora", cfg.BaseURL, cfg.Timeout, logger),
		resolver: resolver,
	}
}

func (p *SoraProvider) Name() string { return "sora" }

var soraSeconds = []int{4, 8, 12}

// soraSize 分辨率到像素尺寸
func soraSize(r Resolution) string {
	if r == Resolution1080p {
		return "1792x1024"
	}
	return "1280x720"
}

type soraRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Seconds string `json:"seconds"`
	Size    string `json:"size"`
}

type soraJob struct {
	ID     string      `json:"id"`
	Status string      `json:"status"` // queued, in_progress, completed, failed
	URL    string      `json:"url,omitempty"`
	Error  remoteError `json:"error,omitempty"`
}

// Submit 创建视频任务
func (p *SoraProvider) Submit(ctx context.Context, req GenerationRequest) (JobHandle, error) {
	secret, err := resolveSecret(ctx, p.resolver, p.Name(), credentials.ServiceOpenAI)
	if err != nil {
		return JobHandle{}, err
	}

	body := soraRequest{
		Model:   p.cfg.Model,
		Prompt:  req.Prompt,
		Seconds: strconv.Itoa(snapDuration(req.DurationSeconds, soraSeconds)),
		Size:    soraSize(req.Resolution),
	}

	var job soraJob
	if err := p.client.submit(ctx, "/v1/videos", secret, body, &job, nil); err != nil {
		return JobHandle{}, err
	}
	if job.ID == "" {
		return JobHandle{}, types.InvalidOutputShape(p.Name(), "create response has no id")
	}
	return NewJobHandle(p.Name(), job.ID, secret), nil
}

// Poll 查询任务状态
func (p *SoraProvider) Poll(ctx context.Context, h JobHandle) (JobStatus, error) {
	var job soraJob
	raw, err := p.client.fetch(ctx, "/v1/videos/"+url.PathEscape(h.ID), h.secret, &job)
	if err != nil {
		return JobStatus{}, err
	}
	return JobStatus{
		State:   soraState(job.Status),
		Detail:  job.Error.String(),
		Payload: raw,
	}, nil
}

// ExtractResult 读取 url 字段
func (p *SoraProvider) ExtractResult(status JobStatus) (string, error) {
	var job soraJob
	if err := decodePayload(status.Payload, &job); err != nil {
		return "", types.InvalidOutputShape(p.Name(), "completed payload is not valid JSON")
	}
	u := strings.TrimSpace(job.URL)
	if !validURL(u) {
		return "", types.InvalidOutputShape(p.Name(), "completed job has no url")
	}
	return u, nil
}

func soraState(s string) JobState {
	switch strings.ToLower(s) {
	case "queued":
		return JobPending
	case "in_progress":
		return JobProcessing
	case "completed":
		return JobCompleted
	case "failed", "cancelled", "canceled", "expired":
		return JobFailed
	default:
		return JobProcessing
	}
}
