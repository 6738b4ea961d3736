package video

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/BaSui01/videoflow/credentials"
	"github.com/BaSui01/videoflow/types"
)

// Resolution 输出分辨率
type Resolution string

const (
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
)

// Valid 判断分辨率是否受支持
func (r Resolution) Valid() bool {
	return r == Resolution720p || r == Resolution1080p
}

// 时长范围（秒）
const (
	MinDurationSeconds = 5
	MaxDurationSeconds = 60
)

// GenerationRequest 一次生成请求
type GenerationRequest struct {
	Model           string     `json:"model"`
	Prompt          string     `json:"prompt"`
	DurationSeconds int        `json:"duration_seconds"`
	Resolution      Resolution `json:"resolution"`
}

// Validate 校验请求字段，失败时返回 ErrInvalidRequest
func (r GenerationRequest) Validate() error {
	var problems []string
	if strings.TrimSpace(r.Prompt) == "" {
		problems = append(problems, "prompt is required")
	}
	if r.DurationSeconds < MinDurationSeconds || r.DurationSeconds > MaxDurationSeconds {
		problems = append(problems, fmt.Sprintf("duration_seconds must be between %d and %d",
			MinDurationSeconds, MaxDurationSeconds))
	}
	if !r.Resolution.Valid() {
		problems = append(problems, fmt.Sprintf("resolution must be %s or %s",
			Resolution720p, Resolution1080p))
	}
	if len(problems) > 0 {
		return types.NewError(types.ErrInvalidRequest, strings.Join(problems, "; "))
	}
	return nil
}

// JobState 规范化后的任务状态
type JobState string

const (
	JobPending    JobState = "pending"
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
)

// IsTerminal 是否为终态
func (s JobState) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// JobHandle 远端任务句柄。密钥随句柄传递给 Poll，不会出现在 String 或 JSON 中。
type JobHandle struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	SubmittedAt time.Time `json:"submitted_at"`

	secret string
}

// NewJobHandle 创建任务句柄
func NewJobHandle(provider, id, secret string) JobHandle {
	return JobHandle{
		ID:          id,
		Provider:    provider,
		SubmittedAt: time.Now(),
		secret:      secret,
	}
}

// String 实现 fmt.Stringer
func (h JobHandle) String() string {
	return fmt.Sprintf("%s/%s (key %s)", h.Provider, h.ID, credentials.Mask(h.secret))
}

// JobStatus 一次 Poll 的结果
type JobStatus struct {
	State JobState `json:"state"`
	// Detail 为后端给出的失败原因
	Detail string `json:"detail,omitempty"`
	// Payload 为后端原始响应体
	Payload json.RawMessage `json:"payload,omitempty"`
}

// IsTerminal 是否为终态
func (s JobStatus) IsTerminal() bool {
	return s.State.IsTerminal()
}

// Job 轮询期间的任务状态，仅在一次 Wait 内存在
type Job struct {
	Handle   JobHandle
	Status   JobStatus
	Attempts int
}

// Result 生成结果
type Result struct {
	ResultURL string    `json:"result_url"`
	Model     string    `json:"model"`
	Provider  string    `json:"provider"`
	JobID     string    `json:"job_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Output 是生成器的原始输出
type Output struct {
	URL   string
	JobID string
}

// Kind 后端调用方式
type Kind string

const (
	KindAsync    Kind = "async"
	KindSync     Kind = "sync"
	KindPipeline Kind = "pipeline"
)

// ModelInfo 可选模型描述
type ModelInfo struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Kind     Kind   `json:"kind"`
}
