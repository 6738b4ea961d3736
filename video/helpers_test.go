package video

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/BaSui01/videoflow/credentials"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// allSecrets 覆盖全部逻辑服务的测试密钥
func allSecrets() credentials.StaticResolver {
	return credentials.StaticResolver{
		credentials.ServiceOpenAI:    "sk-openai-test",
		credentials.ServiceRunway:    "rw-test",
		credentials.ServiceLuma:      "luma-test",
		credentials.ServiceVidu:      "vidu-test",
		credentials.ServiceReplicate: "r8-test",
	}
}

// recordedRequest 测试服务器收到的请求
type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

// stubServer 记录请求并按路由返回预设响应
type stubServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]func(w http.ResponseWriter, r recordedRequest)
}

// newStubServer 创建测试服务器，路由键为 "METHOD /path"
func newStubServer(t *testing.T) *stubServer {
	t.Helper()
	s := &stubServer{routes: make(map[string]func(http.ResponseWriter, recordedRequest))}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}

		s.mu.Lock()
		s.requests = append(s.requests, rec)
		h, ok := s.routes[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if !ok {
			http.Error(w, `{"error":"no route"}`, http.StatusNotFound)
			return
		}
		h(w, rec)
	}))
	t.Cleanup(s.Close)
	return s
}

// handle 注册路由
func (s *stubServer) handle(key string, h func(w http.ResponseWriter, r recordedRequest)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[key] = h
}

// respond 注册固定响应
func (s *stubServer) respond(key string, status int, body string) {
	s.handle(key, func(w http.ResponseWriter, _ recordedRequest) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// sequence 按顺序返回多个响应，最后一个重复使用
func (s *stubServer) sequence(key string, bodies ...string) {
	var mu sync.Mutex
	i := 0
	s.handle(key, func(w http.ResponseWriter, _ recordedRequest) {
		mu.Lock()
		body := bodies[i]
		if i < len(bodies)-1 {
			i++
		}
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	})
}

// count 返回某路由的调用次数
func (s *stubServer) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method+" "+r.Path == key {
			n++
		}
	}
	return n
}

// total 返回总请求数
func (s *stubServer) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// last 返回某路由最后一次请求
func (s *stubServer) last(t *testing.T, key string) recordedRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Method+" "+s.requests[i].Path == key {
			return s.requests[i]
		}
	}
	require.FailNow(t, "no request recorded", key)
	return recordedRequest{}
}

// testProviderConfig 指向测试服务器的后端配置
func testProviderConfig(baseURL string) ProviderConfig {
	return ProviderConfig{BaseURL: baseURL, Timeout: 5 * time.Second}
}

// testReplicateConfig 指向测试服务器的 Replicate 配置
func testReplicateConfig(baseURL string) ReplicateConfig {
	cfg := DefaultReplicateConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 5 * time.Second
	return cfg
}

// fastPoller 测试用的毫秒级 Poller
func fastPoller(metrics MetricsRecorder) *Poller {
	return NewPoller(PollerConfig{Interval: time.Millisecond, Deadline: 5 * time.Second}, zap.NewNop(), metrics)
}

// validRequest 返回一个合法请求
func validRequest(model string) GenerationRequest {
	return GenerationRequest{
		Model:           model,
		Prompt:          "a sunrise over mountains",
		DurationSeconds: 10,
		Resolution:      Resolution720p,
	}
}

// recordingMetrics 记录指标调用
type recordingMetrics struct {
	mu          sync.Mutex
	generations []string
	polls       []JobState
}

func (m *recordingMetrics) RecordGeneration(model, provider, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations = append(m.generations, model+"|"+provider+"|"+outcome)
}

func (m *recordingMetrics) RecordPollAttempt(_ string, state JobState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls = append(m.polls, state)
}
