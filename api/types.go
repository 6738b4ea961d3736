package api

import (
	"time"

	"github.com/BaSui01/videoflow/video"
)

// =============================================================================
// 视频生成类型
// =============================================================================

// GenerateRequest 代表一次视频生成请求。
// @Description 视频生成请求结构
type GenerateRequest struct {
	// 模型名称（例如 Sora、Runway、Pony）
	Model string `json:"model" example:"Sora" binding:"required"`
	// 生成提示词
	Prompt string `json:"prompt" example:"a red fox running through snow" binding:"required"`
	// 期望时长（秒，5-60）
	DurationSeconds int `json:"duration_seconds" example:"10"`
	// 分辨率（720p 或 1080p）
	Resolution string `json:"resolution" example:"1080p"`
}

// ToVideo 转换为 video.GenerationRequest
func (r GenerateRequest) ToVideo() video.GenerationRequest {
	return video.GenerationRequest{
		Model:           r.Model,
		Prompt:          r.Prompt,
		DurationSeconds: r.DurationSeconds,
		Resolution:      video.Resolution(r.Resolution),
	}
}

// GenerateResponse 代表生成结果。
// @Description 视频生成响应结构
type GenerateResponse struct {
	// 结果视频地址
	ResultURL string `json:"result_url" example:"https://cdn.example.com/video.mp4"`
	// 请求的模型
	Model string `json:"model" example:"Sora"`
	// 实际处理的后端
	Provider string `json:"provider" example:"sora"`
	// 远端任务 ID
	JobID string `json:"job_id,omitempty"`
	// 完成时间
	CreatedAt time.Time `json:"created_at"`
	// 总耗时
	Elapsed string `json:"elapsed,omitempty" example:"2m31s"`
}

// NewGenerateResponse 从 video.Result 构造响应
func NewGenerateResponse(res *video.Result, elapsed time.Duration) GenerateResponse {
	return GenerateResponse{
		ResultURL: res.ResultURL,
		Model:     res.Model,
		Provider:  res.Provider,
		JobID:     res.JobID,
		CreatedAt: res.CreatedAt,
		Elapsed:   elapsed.Round(time.Millisecond).String(),
	}
}

// ModelsResponse 代表可选模型列表。
// @Description 模型列表响应结构
type ModelsResponse struct {
	Models []video.ModelInfo `json:"models"`
}
