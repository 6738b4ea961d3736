package video

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/BaSui01/videoflow/credentials"
	"github.com/BaSui01/videoflow/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// funcGenerator 以函数实现 Generator
type funcGenerator struct {
	calls int
	fn    func(ctx context.Context, req GenerationRequest) (Output, error)
}

func (g *funcGenerator) Provider() string { return "func" }
func (g *funcGenerator) Kind() Kind       { return KindSync }
func (g *funcGenerator) Generate(ctx context.Context, req GenerationRequest) (Output, error) {
	g.calls++
	return g.fn(ctx, req)
}

func TestDispatcher_UnsupportedModel(t *testing.T) {
	srv := newStubServer(t)
	cfg := DefaultConfig()
	cfg.Sora = testProviderConfig(srv.URL)
	d := NewDispatcher(NewDefaultRegistry(cfg, allSecrets(), fastPoller(nil), nil))

	for _, model := range []string{"Midjourney", "sora", " Sora", ""} {
		_, err := d.Generate(context.Background(), validRequest(model))
		assert.Equal(t, types.ErrUnsupportedModel, types.GetErrorCode(err), model)
	}
	assert.Equal(t, 0, srv.total())
}

func TestDispatcher_UnsupportedModelWinsOverValidation(t *testing.T) {
	d := NewDispatcher(NewDefaultRegistry(DefaultConfig(), allSecrets(), fastPoller(nil), nil))

	_, err := d.Generate(context.Background(), GenerationRequest{
		Model:           "Midjourney",
		Prompt:          "x",
		DurationSeconds: 3,
		Resolution:      Resolution720p,
	})
	assert.Equal(t, types.ErrUnsupportedModel, types.GetErrorCode(err))

	_, err = d.Generate(context.Background(), GenerationRequest{Model: "Midjourney"})
	assert.Equal(t, types.ErrUnsupportedModel, types.GetErrorCode(err))
}

func TestDispatcher_MissingCredentialMakesNoCalls(t *testing.T) {
	srv := newStubServer(t)
	cfg := DefaultConfig()
	cfg.Sora = testProviderConfig(srv.URL)
	cfg.Runway = testProviderConfig(srv.URL)
	cfg.Luma = testProviderConfig(srv.URL)
	cfg.Vidu = testProviderConfig(srv.URL)
	cfg.Replicate = testReplicateConfig(srv.URL)
	d := NewDispatcher(NewDefaultRegistry(cfg, credentials.StaticResolver{}, fastPoller(nil), nil))

	models := d.Models()
	require.Len(t, models, 9)
	for _, m := range models {
		t.Run(m.Name, func(t *testing.T) {
			_, err := d.Generate(context.Background(), validRequest(m.Name))
			require.Error(t, err)

			e, ok := types.AsError(err)
			require.True(t, ok)
			if e.Code == types.ErrPipelineStageFailed {
				assert.Equal(t, types.StageImage, e.Stage)
				assert.Equal(t, types.ErrMissingCredential, types.GetErrorCode(e.Cause))
			} else {
				assert.Equal(t, types.ErrMissingCredential, e.Code)
			}
		})
	}
	assert.Equal(t, 0, srv.total())
}

func TestDispatcher_InvalidRequestMakesNoCalls(t *testing.T) {
	g := &funcGenerator{fn: func(context.Context, GenerationRequest) (Output, error) {
		return Output{URL: "https://x/1.mp4"}, nil
	}}
	d := NewDispatcher(registryWith("Test", g))

	req := validRequest("Test")
	req.DurationSeconds = 90
	_, err := d.Generate(context.Background(), req)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
	assert.Equal(t, 0, g.calls)
}

func TestDispatcher_AsyncRemoteFailure(t *testing.T) {
	srv := newStubServer(t)
	srv.respond("POST /v1/videos", http.StatusOK, `{"id":"job1"}`)
	srv.respond("GET /v1/videos/job1", http.StatusOK, `{"status":"failed","error":"quota exceeded"}`)

	metrics := &recordingMetrics{}
	p := NewSoraProvider(testProviderConfig(srv.URL), allSecrets(), nil)
	d := NewDispatcher(registryWith(ModelSora, NewAsyncGenerator(p, fastPoller(metrics))), WithMetrics(metrics))

	result, err := d.Generate(context.Background(), validRequest(ModelSora))
	require.Error(t, err)
	assert.Nil(t, result)

	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrRemoteGenerationFailed, e.Code)
	assert.Equal(t, "quota exceeded", e.Detail)
	assert.Equal(t, 1, srv.count("POST /v1/videos"))
	assert.Equal(t, 1, srv.count("GET /v1/videos/job1"))

	assert.Equal(t, []string{"Sora|sora|REMOTE_GENERATION_FAILED"}, metrics.generations)
	assert.Equal(t, []JobState{JobFailed}, metrics.polls)
}

func TestDispatcher_PanicBecomesInternalError(t *testing.T) {
	g := &funcGenerator{fn: func(context.Context, GenerationRequest) (Output, error) {
		panic("boom")
	}}
	metrics := &recordingMetrics{}
	d := NewDispatcher(registryWith("Test", g), WithMetrics(metrics))

	result, err := d.Generate(context.Background(), validRequest("Test"))
	assert.Nil(t, result)
	assert.Equal(t, types.ErrInternalError, types.GetErrorCode(err))
	assert.Equal(t, []string{"Test|func|INTERNAL_ERROR"}, metrics.generations)
}

func TestDispatcher_UntypedErrorBecomesTransport(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	g := &funcGenerator{fn: func(context.Context, GenerationRequest) (Output, error) {
		return Output{}, cause
	}}
	d := NewDispatcher(registryWith("Test", g))

	_, err := d.Generate(context.Background(), validRequest("Test"))
	assert.Equal(t, types.ErrTransport, types.GetErrorCode(err))
	assert.ErrorIs(t, err, cause)
}

func TestDispatcher_SuccessCarriesModelAndTrace(t *testing.T) {
	g := &funcGenerator{fn: func(ctx context.Context, req GenerationRequest) (Output, error) {
		model, _ := types.Model(ctx)
		assert.Equal(t, "Test", model)
		return Output{URL: "https://x/1.mp4", JobID: "j1"}, nil
	}}

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	metrics := &recordingMetrics{}
	d := NewDispatcher(registryWith("Test", g), WithTracer(tp.Tracer("test")), WithMetrics(metrics))

	result, err := d.Generate(context.Background(), validRequest("Test"))
	require.NoError(t, err)
	assert.Equal(t, "https://x/1.mp4", result.ResultURL)
	assert.Equal(t, "j1", result.JobID)
	assert.Equal(t, "func", result.Provider)
	assert.False(t, result.CreatedAt.IsZero())
	assert.Equal(t, 1, g.calls)
	assert.Equal(t, []string{"Test|func|success"}, metrics.generations)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "video.generate", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}

func TestDispatcher_FailureMarksSpan(t *testing.T) {
	g := &funcGenerator{fn: func(context.Context, GenerationRequest) (Output, error) {
		return Output{}, types.Timeout("func", 0)
	}}
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	d := NewDispatcher(registryWith("Test", g), WithTracer(tp.Tracer("test")))
	_, err := d.Generate(context.Background(), validRequest("Test"))
	assert.Equal(t, types.ErrTimeout, types.GetErrorCode(err))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, string(types.ErrTimeout), spans[0].Status().Description)
}

func TestDispatcher_Models(t *testing.T) {
	d := NewDispatcher(NewDefaultRegistry(DefaultConfig(), allSecrets(), fastPoller(nil), nil))

	models := d.Models()
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{
		ModelSora, ModelRunway, ModelLuma, ModelKling, ModelPika, ModelVidu,
		ModelFluxSchnell, ModelFluxDev, ModelPonyLike,
	}, names)

	byName := map[string]ModelInfo{}
	for _, m := range models {
		byName[m.Name] = m
	}
	assert.Equal(t, KindAsync, byName[ModelSora].Kind)
	assert.Equal(t, "vidu", byName[ModelVidu].Provider)
	assert.Equal(t, KindSync, byName[ModelKling].Kind)
	assert.Equal(t, KindPipeline, byName[ModelPonyLike].Kind)
	assert.Equal(t, "flux+svd", byName[ModelPonyLike].Provider)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	g := &funcGenerator{}
	require.NoError(t, r.Register("A", g))
	assert.Error(t, r.Register("A", g))
	assert.Error(t, r.Register("", g))
	assert.Error(t, r.Register("B", nil))
	assert.Panics(t, func() { r.MustRegister("A", g) })

	_, ok := r.Lookup("a")
	assert.False(t, ok)
}
