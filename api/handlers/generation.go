package handlers

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/BaSui01/videoflow/api"
	"github.com/BaSui01/videoflow/types"
	"github.com/BaSui01/videoflow/video"
	"go.uber.org/zap"
)

// =============================================================================
// 🎬 视频生成 Handler
// =============================================================================

// GenerationService 生成服务接口，由 video.Dispatcher 实现
type GenerationService interface {
	Generate(ctx context.Context, req video.GenerationRequest) (*video.Result, error)
	Models() []video.ModelInfo
}

// GenerationHandler 视频生成处理器
type GenerationHandler struct {
	service  GenerationService
	logger   *zap.Logger
	sessions *SessionGate
	inFlight func() func()
}

// GenerationOption 配置 GenerationHandler
type GenerationOption func(*GenerationHandler)

// WithInFlightTracker 设置并发计数钩子，返回值在请求结束时调用
func WithInFlightTracker(started func() func()) GenerationOption {
	return func(h *GenerationHandler) {
		h.inFlight = started
	}
}

// NewGenerationHandler 创建视频生成处理器
func NewGenerationHandler(service GenerationService, logger *zap.Logger, opts ...GenerationOption) *GenerationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &GenerationHandler{
		service:  service,
		logger:   logger.With(zap.String("handler", "generation")),
		sessions: NewSessionGate(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleModels 处理 GET /api/v1/models
// @Summary 模型列表
// @Description 返回可选视频模型及其后端
// @Tags 生成
// @Produce json
// @Success 200 {object} Response{data=api.ModelsResponse}
// @Router /api/v1/models [get]
func (h *GenerationHandler) HandleModels(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, api.ModelsResponse{Models: h.service.Models()})
}

// HandleGenerate 处理 POST /api/v1/generations。
// 请求阻塞直到生成结束；同一会话同时只允许一个生成。
// @Summary 生成视频
// @Description 提交一次视频生成并等待结果
// @Tags 生成
// @Accept json
// @Produce json
// @Param request body api.GenerateRequest true "生成请求"
// @Success 200 {object} Response{data=api.GenerateResponse}
// @Failure 400 {object} Response "请求无效"
// @Failure 404 {object} Response "模型不支持"
// @Failure 409 {object} Response "会话忙"
// @Failure 502 {object} Response "后端失败"
// @Failure 504 {object} Response "超时"
// @Router /api/v1/generations [post]
// @Security ApiKeyAuth
func (h *GenerationHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.GenerateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	session := sessionKey(r)
	release, ok := h.sessions.TryAcquire(session)
	if !ok {
		WriteError(w, types.NewError(types.ErrBusy, "a generation is already running for this session"), h.logger)
		return
	}
	defer release()

	if h.inFlight != nil {
		defer h.inFlight()()
	}

	start := time.Now()
	result, err := h.service.Generate(r.Context(), req.ToVideo())
	if err != nil {
		WriteErr(w, err, h.logger)
		return
	}

	h.logger.Info("generation completed",
		zap.String("model", result.Model),
		zap.String("provider", result.Provider),
		zap.String("job_id", result.JobID),
		zap.Duration("elapsed", time.Since(start)),
	)
	WriteSuccess(w, api.NewGenerateResponse(result, time.Since(start)))
}

// sessionKey 认证用户优先，否则使用客户端 IP
func sessionKey(r *http.Request) string {
	if id, ok := types.UserID(r.Context()); ok {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// =============================================================================
// 🔒 会话闸门
// =============================================================================

// SessionGate 每个会话同时最多一个进行中的生成
type SessionGate struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewSessionGate 创建会话闸门
func NewSessionGate() *SessionGate {
	return &SessionGate{active: make(map[string]struct{})}
}

// TryAcquire 尝试占用会话；成功时返回释放函数，可重复调用
func (g *SessionGate) TryAcquire(session string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[session]; busy {
		return nil, false
	}
	g.active[session] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, session)
			g.mu.Unlock()
		})
	}, true
}

// Active 当前进行中的会话数
func (g *SessionGate) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.active)
}
