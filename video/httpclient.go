package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/videoflow/internal/tlsutil"
	"github.com/BaSui01/videoflow/types"
	"go.uber.org/zap"
)

// maxBodyBytes 限制读取的响应体大小
const maxBodyBytes = 4 << 20

// maxErrorBodyBytes 限制写入错误中的响应体长度
const maxErrorBodyBytes = 2048

// apiClient 后端共用的 JSON over HTTP 客户端
type apiClient struct {
	provider string
	baseURL  string
	timeout  time.Duration
	headers  map[string]string
	client   *http.Client
	logger   *zap.Logger
}

func newAPIClient(provider, baseURL string, timeout time.Duration, logger *zap.Logger) *apiClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &apiClient{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeout:  timeout,
		headers:  map[string]string{},
		client:   tlsutil.SecureHTTPClient(timeout),
		logger:   logger.With(zap.String("provider", provider)),
	}
}

// rawResponse 一次 HTTP 调用的状态码与响应体
type rawResponse struct {
	StatusCode int
	Body       []byte
}

func (r rawResponse) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// do 发送请求。仅网络层失败返回错误，非 2xx 由调用方判定。
func (c *apiClient) do(ctx context.Context, method, path, secret string, body any, extra map[string]string) (rawResponse, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return rawResponse{}, types.NewError(types.ErrInternalError, "failed to encode request").
				WithProvider(c.provider).
				WithCause(err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return rawResponse{}, types.TransportError(c.provider, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+secret)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range extra {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Debug("provider request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return rawResponse{}, c.classify(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return rawResponse{}, c.classify(ctx, fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.Debug("provider request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	return rawResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

// classify 将网络错误映射为 TIMEOUT 或 TRANSPORT_ERROR
func (c *apiClient) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return types.TransportError(c.provider, ctx.Err())
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return types.Timeout(c.provider, c.timeout).WithCause(err)
	}
	return types.TransportError(c.provider, err)
}

// submit 发送创建请求并解码响应，非 2xx 返回 SUBMISSION_REJECTED
func (c *apiClient) submit(ctx context.Context, path, secret string, body, out any, extra map[string]string) error {
	resp, err := c.do(ctx, http.MethodPost, path, secret, body, extra)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return types.SubmissionRejected(c.provider, resp.StatusCode, truncate(resp.Body))
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return types.InvalidOutputShape(c.provider, "response is not valid JSON").WithCause(err)
	}
	return nil
}

// fetch 发送 GET 查询。非 2xx 视为传输失败，返回原始响应体供调用方保存。
func (c *apiClient) fetch(ctx context.Context, path, secret string, out any) (json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodGet, path, secret, nil, nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, types.TransportError(c.provider,
			fmt.Errorf("status query returned %d: %s", resp.StatusCode, truncate(resp.Body))).
			WithHTTPStatus(http.StatusBadGateway)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return nil, types.InvalidOutputShape(c.provider, "status response is not valid JSON").WithCause(err)
	}
	return json.RawMessage(resp.Body), nil
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyBytes {
		return s[:maxErrorBodyBytes] + "..."
	}
	return s
}
