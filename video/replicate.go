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

// replicateClient 以同步等待方式调用 Replicate 预测接口
type replicateClient struct {
	api      *apiClient
	resolver credentials.Resolver
}

func newReplicateClient(provider string, cfg ReplicateConfig, resolver credentials.Resolver, logger *zap.Logger) *replicateClient {
	cfg = cfg.withDefaults()
	return &replicateClient{
		api:      newAPIClient(provider, cfg.BaseURL, cfg.Timeout, logger),
		resolver: resolver,
	}
}

type replicateRequest struct {
	Version string `json:"version,omitempty"`
	Input   any    `json:"input"`
}

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"` // starting, processing, succeeded, failed, canceled
	Output json.RawMessage `json:"output"`
	Error  remoteError     `json:"error"`
}

// predictionPath 按模型引用选择端点。
// owner/name:version 走 /v1/predictions，owner/name 走模型端点。
func predictionPath(ref string) (path, version string) {
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		return "/v1/predictions", ref[i+1:]
	}
	owner, name, _ := strings.Cut(ref, "/")
	return "/v1/models/" + url.PathEscape(owner) + "/" + url.PathEscape(name) + "/predictions", ""
}

// predict 创建预测并等待输出。first 为 true 时列表输出取第一个元素。
func (c *replicateClient) predict(ctx context.Context, ref string, input any, first bool) (string, error) {
	provider := c.api.provider
	secret, err := resolveSecret(ctx, c.resolver, provider, credentials.ServiceReplicate)
	if err != nil {
		return "", err
	}

	path, version := predictionPath(ref)
	body := replicateRequest{Version: version, Input: input}

	var pred replicatePrediction
	if err := c.api.submit(ctx, path, secret, body, &pred, map[string]string{"Prefer": "wait"}); err != nil {
		return "", err
	}

	switch pred.Status {
	case "failed", "canceled", "cancelled":
		return "", types.RemoteGenerationFailed(provider, pred.Error.String())
	}

	u, ok := outputURL(pred.Output, first)
	if !ok {
		detail := "output is not a url or a single-element list"
		if pred.Status != "succeeded" {
			detail = "prediction " + pred.ID + " still " + pred.Status + " without output"
		}
		return "", types.InvalidOutputShape(provider, detail)
	}
	return u, nil
}

// ReplicateModel 一个 Replicate 托管的文生视频/文生图模型
type ReplicateModel struct {
	name   string
	ref    string
	client *replicateClient
	input  func(GenerationRequest) map[string]any
	first  bool
}

func (m *ReplicateModel) Name() string { return m.name }

// Ref 返回模型引用
func (m *ReplicateModel) Ref() string { return m.ref }

// Run 实现 SyncProvider
func (m *ReplicateModel) Run(ctx context.Context, req GenerationRequest) (string, error) {
	return m.client.predict(ctx, m.ref, m.input(req), m.first)
}
