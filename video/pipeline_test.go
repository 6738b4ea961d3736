package video

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/BaSui01/videoflow/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fluxDevRoute = "POST /v1/models/black-forest-labs/flux-dev/predictions"

func TestPipeline_PonyLikeEndToEnd(t *testing.T) {
	srv := newStubServer(t)
	srv.respond(fluxDevRoute, http.StatusCreated, `{"status":"succeeded","output":["https://img/1.png"]}`)
	srv.respond("POST /v1/predictions", http.StatusCreated, `{"status":"succeeded","output":["https://cdn/out.mp4"]}`)

	cfg := DefaultConfig()
	cfg.Replicate = testReplicateConfig(srv.URL)
	d := NewDispatcher(NewDefaultRegistry(cfg, allSecrets(), fastPoller(nil), nil))

	result, err := d.Generate(context.Background(), validRequest(ModelPonyLike))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/out.mp4", result.ResultURL)
	assert.Equal(t, "flux+svd", result.Provider)
	assert.NotEmpty(t, result.JobID)

	input := srv.last(t, fluxDevRoute).Body["input"].(map[string]any)
	prompt := input["prompt"].(string)
	assert.True(t, strings.HasPrefix(prompt, "a sunrise over mountains, "))
	assert.True(t, strings.HasSuffix(prompt, DefaultPonyPromptSuffix))
	assert.Equal(t, "0.25", input["megapixels"])

	svdInput := srv.last(t, "POST /v1/predictions").Body["input"].(map[string]any)
	assert.Equal(t, "https://img/1.png", svdInput["input_image"])
	assert.Equal(t, 1, srv.count(fluxDevRoute))
	assert.Equal(t, 1, srv.count("POST /v1/predictions"))
}

func TestPipeline_FluxDevHasNoSuffix(t *testing.T) {
	srv := newStubServer(t)
	srv.respond(fluxDevRoute, http.StatusCreated, `{"status":"succeeded","output":["https://img/1.png"]}`)
	srv.respond("POST /v1/predictions", http.StatusCreated, `{"status":"succeeded","output":"https://cdn/out.mp4"}`)

	cfg := DefaultConfig()
	cfg.Replicate = testReplicateConfig(srv.URL)
	d := NewDispatcher(NewDefaultRegistry(cfg, allSecrets(), fastPoller(nil), nil))

	_, err := d.Generate(context.Background(), validRequest(ModelFluxDev))
	require.NoError(t, err)
	input := srv.last(t, fluxDevRoute).Body["input"].(map[string]any)
	assert.Equal(t, "a sunrise over mountains", input["prompt"])
}

func TestPipeline_ImageFailureSkipsVideoStage(t *testing.T) {
	srv := newStubServer(t)
	srv.respond("POST /v1/models/black-forest-labs/flux-schnell/predictions", http.StatusCreated,
		`{"status":"failed","error":"out of memory"}`)
	srv.respond("POST /v1/predictions", http.StatusCreated, `{"status":"succeeded","output":"https://cdn/out.mp4"}`)

	cfg := DefaultConfig()
	cfg.Replicate = testReplicateConfig(srv.URL)
	d := NewDispatcher(NewDefaultRegistry(cfg, allSecrets(), fastPoller(nil), nil))

	_, err := d.Generate(context.Background(), validRequest(ModelFluxSchnell))
	require.Error(t, err)
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrPipelineStageFailed, e.Code)
	assert.Equal(t, types.StageImage, e.Stage)
	assert.Equal(t, types.ErrRemoteGenerationFailed, types.GetErrorCode(e.Cause))
	assert.Contains(t, types.DisplayMessage(err), "out of memory")
	assert.Equal(t, 0, srv.count("POST /v1/predictions"))
}

// stubImage 固定返回的图片阶段
type stubImage struct {
	url string
	err error
}

func (s stubImage) Name() string { return "img" }
func (s stubImage) Run(context.Context, GenerationRequest) (string, error) {
	return s.url, s.err
}

// stubAnimator 记录调用次数
type stubAnimator struct {
	calls int
	url   string
	err   error
}

func (s *stubAnimator) Name() string { return "anim" }
func (s *stubAnimator) Animate(_ context.Context, _ string, _ GenerationRequest) (string, error) {
	s.calls++
	return s.url, s.err
}

func TestPipeline_InvalidImageURL(t *testing.T) {
	anim := &stubAnimator{url: "https://v/1.mp4"}
	p := NewPipeline("test", stubImage{url: "not-a-url"}, anim, nil)

	_, err := p.Generate(context.Background(), validRequest("test"))
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.StageImage, e.Stage)
	assert.Equal(t, 0, anim.calls)
}

func TestPipeline_VideoStageFailure(t *testing.T) {
	anim := &stubAnimator{err: types.TransportError("anim", errors.New("reset"))}
	p := NewPipeline("test", stubImage{url: "https://img/1.png"}, anim, nil)

	_, err := p.Generate(context.Background(), validRequest("test"))
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrPipelineStageFailed, e.Code)
	assert.Equal(t, types.StageVideo, e.Stage)
	assert.Equal(t, "anim", e.Provider)
	assert.Equal(t, 1, anim.calls)

	assert.Equal(t, "img+anim", p.Provider())
	assert.Equal(t, KindPipeline, p.Kind())
	assert.Equal(t, "test", p.Name())
}
