package video

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/BaSui01/videoflow/credentials"
	"github.com/BaSui01/videoflow/types"
	"go.uber.org/zap"
)

// LumaProvider 使用 Luma Dream Machine 生成视频。
// API: POST /dream-machine/v1/generations, GET /dream-machine/v1/generations/{id}
type LumaProvider struct {
	cfg      ProviderConfig
	client   *apiClient
	resolver credentials.Resolver
}

// NewLumaProvider 创建 Luma 后端
func NewLumaProvider(cfg ProviderConfig, resolver credentials.Resolver, logger *zap.Logger) *LumaProvider {
	cfg = cfg.withDefaults(DefaultLumaConfig())
	return &LumaProvider{
		cfg:      cfg,
		client:   newAPIClient("luma", cfg.BaseURL, cfg.Timeout, logger),
		resolver: resolver,
	}
}

func (p *LumaProvider) Name() string { return "luma" }

var lumaDurations = []int{5, 9}

type lumaRequest struct {
	Prompt      string `json:"prompt"`
	Model       string `json:"model"`
	Resolution  string `json:"resolution"`
	Duration    string `json:"duration"`
	AspectRatio string `json:"aspect_ratio"`
}

type lumaGeneration struct {
	ID            string      `json:"id"`
	State         string      `json:"state"` // queued, dreaming, completed, failed
	Status        string      `json:"status,omitempty"`
	FailureReason remoteError `json:"failure_reason,omitempty"`
	Error         remoteError `json:"error,omitempty"`
	Assets        struct {
		Video string `json:"video"`
	} `json:"assets"`
}

// failure 优先 failure_reason，其次通用 error 字段
func (g lumaGeneration) failure() string {
	if g.FailureReason != "" {
		return g.FailureReason.String()
	}
	return g.Error.String()
}

func (g lumaGeneration) state() string {
	if g.State != "" {
		return g.State
	}
	return g.Status
}

// Submit 创建生成任务
func (p *LumaProvider) Submit(ctx context.Context, req GenerationRequest) (JobHandle, error) {
	secret, err := resolveSecret(ctx, p.resolver, p.Name(), credentials.ServiceLuma)
	if err != nil {
		return JobHandle{}, err
	}

	body := lumaRequest{
		Prompt:      req.Prompt,
		Model:       p.cfg.Model,
		Resolution:  string(req.Resolution),
		Duration:    fmt.Sprintf("%ds", snapDuration(req.DurationSeconds, lumaDurations)),
		AspectRatio: "16:9",
	}

	var gen lumaGeneration
	if err := p.client.submit(ctx, "/dream-machine/v1/generations", secret, body, &gen, nil); err != nil {
		return JobHandle{}, err
	}
	if gen.ID == "" {
		return JobHandle{}, types.InvalidOutputShape(p.Name(), "create response has no id")
	}
	return NewJobHandle(p.Name(), gen.ID, secret), nil
}

// Poll 查询任务状态
func (p *LumaProvider) Poll(ctx context.Context, h JobHandle) (JobStatus, error) {
	var gen lumaGeneration
	raw, err := p.client.fetch(ctx, "/dream-machine/v1/generations/"+url.PathEscape(h.ID), h.secret, &gen)
	if err != nil {
		return JobStatus{}, err
	}
	return JobStatus{
		State:   lumaState(gen.state()),
		Detail:  gen.failure(),
		Payload: raw,
	}, nil
}

// ExtractResult 读取 assets.video
func (p *LumaProvider) ExtractResult(status JobStatus) (string, error) {
	var gen lumaGeneration
	if err := decodePayload(status.Payload, &gen); err != nil {
		return "", types.InvalidOutputShape(p.Name(), "completed payload is not valid JSON")
	}
	u := strings.TrimSpace(gen.Assets.Video)
	if !validURL(u) {
		return "", types.InvalidOutputShape(p.Name(), "completed generation has no assets.video")
	}
	return u, nil
}

func lumaState(s string) JobState {
	switch strings.ToLower(s) {
	case "queued", "pending":
		return JobPending
	case "dreaming", "processing":
		return JobProcessing
	case "completed":
		return JobCompleted
	case "failed":
		return JobFailed
	default:
		return JobProcessing
	}
}
