package video

import (
	"context"
	"net/url"
	"strings"

	"github.com/BaSui01/videoflow/credentials"
	"github.com/BaSui01/videoflow/types"
	"go.uber.org/zap"
)

// ViduProvider 使用 Vidu 文生视频接口。
// API: POST /ent/v2/text2video, GET /ent/v2/tasks/{id}/creations
type ViduProvider struct {
	cfg      ProviderConfig
	client   *apiClient
	resolver credentials.Resolver
}

// NewViduProvider 创建 Vidu 后端
func NewViduProvider(cfg ProviderConfig, resolver credentials.Resolver, logger *zap.Logger) *ViduProvider {
	cfg = cfg.withDefaults(DefaultViduConfig())
	return &ViduProvider{
		cfg:      cfg,
		client:   newAPIClient("vidu", cfg.BaseURL, cfg.Timeout, logger),
		resolver: resolver,
	}
}

func (p *ViduProvider) Name() string { return "vidu" }

var viduDurations = []int{4, 8}

type viduRequest struct {
	Model      string `json:"model"`
	Prompt     string `json:"prompt"`
	Duration   int    `json:"duration"`
	Resolution string `json:"resolution"`
}

type viduTask struct {
	ID       string      `json:"id,omitempty"`
	TaskID   string      `json:"task_id,omitempty"`
	Status   string      `json:"status,omitempty"`
	State    string      `json:"state,omitempty"` // created, queueing, processing, success, failed
	VideoURL string      `json:"video_url,omitempty"`
	Error    remoteError `json:"error,omitempty"`
	ErrCode  string      `json:"err_code,omitempty"`

	Creations []struct {
		URL string `json:"url"`
	} `json:"creations,omitempty"`
}

func (t viduTask) id() string {
	if t.TaskID != "" {
		return t.TaskID
	}
	return t.ID
}

func (t viduTask) state() string {
	if t.Status != "" {
		return t.Status
	}
	return t.State
}

// Submit 创建文生视频任务
func (p *ViduProvider) Submit(ctx context.Context, req GenerationRequest) (JobHandle, error) {
	secret, err := resolveSecret(ctx, p.resolver, p.Name(), credentials.ServiceVidu)
	if err != nil {
		return JobHandle{}, err
	}

	body := viduRequest{
		Model:      p.cfg.Model,
		Prompt:     req.Prompt,
		Duration:   snapDuration(req.DurationSeconds, viduDurations),
		Resolution: string(req.Resolution),
	}

	var task viduTask
	if err := p.client.submit(ctx, "/ent/v2/text2video", secret, body, &task, nil); err != nil {
		return JobHandle{}, err
	}
	if task.id() == "" {
		return JobHandle{}, types.InvalidOutputShape(p.Name(), "create response has no task_id")
	}
	return NewJobHandle(p.Name(), task.id(), secret), nil
}

// Poll 查询任务状态
func (p *ViduProvider) Poll(ctx context.Context, h JobHandle) (JobStatus, error) {
	var task viduTask
	raw, err := p.client.fetch(ctx, "/ent/v2/tasks/"+url.PathEscape(h.ID)+"/creations", h.secret, &task)
	if err != nil {
		return JobStatus{}, err
	}

	detail := task.Error.String()
	if detail == "" {
		detail = task.ErrCode
	}
	return JobStatus{
		State:   viduState(task.state()),
		Detail:  detail,
		Payload: raw,
	}, nil
}

// ExtractResult 读取 video_url，兼容 creations[0].url
func (p *ViduProvider) ExtractResult(status JobStatus) (string, error) {
	var task viduTask
	if err := decodePayload(status.Payload, &task); err != nil {
		return "", types.InvalidOutputShape(p.Name(), "completed payload is not valid JSON")
	}
	u := strings.TrimSpace(task.VideoURL)
	if u == "" && len(task.Creations) > 0 {
		u = strings.TrimSpace(task.Creations[0].URL)
	}
	if !validURL(u) {
		return "", types.InvalidOutputShape(p.Name(), "completed task has no video_url")
	}
	return u, nil
}

func viduState(s string) JobState {
	switch strings.ToLower(s) {
	case "created", "queueing", "queued":
		return JobPending
	case "processing":
		return JobProcessing
	case "success", "completed":
		return JobCompleted
	case "failed":
		return JobFailed
	default:
		return JobProcessing
	}
}
