package video

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/BaSui01/videoflow/types"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*GenerationRequest)
		wantErr string
	}{
		{name: "valid", modify: func(*GenerationRequest) {}},
		{name: "lower bound", modify: func(r *GenerationRequest) { r.DurationSeconds = 5 }},
		{name: "upper bound", modify: func(r *GenerationRequest) { r.DurationSeconds = 60 }},
		{name: "1080p", modify: func(r *GenerationRequest) { r.Resolution = Resolution1080p }},
		{name: "empty prompt", modify: func(r *GenerationRequest) { r.Prompt = "" }, wantErr: "prompt"},
		{name: "blank prompt", modify: func(r *GenerationRequest) { r.Prompt = " \t\n" }, wantErr: "prompt"},
		{name: "too short", modify: func(r *GenerationRequest) { r.DurationSeconds = 4 }, wantErr: "duration_seconds"},
		{name: "too long", modify: func(r *GenerationRequest) { r.DurationSeconds = 61 }, wantErr: "duration_seconds"},
		{name: "bad resolution", modify: func(r *GenerationRequest) { r.Resolution = "4k" }, wantErr: "resolution"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(ModelSora)
			tt.modify(&req)
			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenerationRequest_ValidateProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("duration within [5,60] with a prompt and known resolution is valid", prop.ForAll(
		func(d int, hd bool, prompt string) bool {
			res := Resolution720p
			if hd {
				res = Resolution1080p
			}
			req := GenerationRequest{Model: ModelLuma, Prompt: "x" + prompt, DurationSeconds: d, Resolution: res}
			err := req.Validate()
			inRange := d >= MinDurationSeconds && d <= MaxDurationSeconds
			return (err == nil) == inRange
		},
		gen.IntRange(-10, 100),
		gen.Bool(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestJobState_IsTerminal(t *testing.T) {
	assert.False(t, JobPending.IsTerminal())
	assert.False(t, JobProcessing.IsTerminal())
	assert.True(t, JobCompleted.IsTerminal())
	assert.True(t, JobFailed.IsTerminal())
	assert.True(t, JobStatus{State: JobFailed}.IsTerminal())
}

func TestJobHandle_HidesSecret(t *testing.T) {
	h := NewJobHandle("sora", "video_123", "sk-supersecretvalue")

	assert.Equal(t, "video_123", h.ID)
	assert.False(t, h.SubmittedAt.IsZero())
	assert.NotContains(t, h.String(), "supersecret")
	assert.True(t, strings.HasSuffix(h.String(), "alue)"))

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "supersecret")
}
