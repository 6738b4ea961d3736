package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/BaSui01/videoflow/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRecorder(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	r, err := NewRecorder(mp.Meter("test"))
	require.NoError(t, err)

	var _ video.MetricsRecorder = r
	r.RecordGeneration("Sora", "sora", "success", 90*time.Second)
	r.RecordGeneration("Sora", "sora", "TIMEOUT", 30*time.Minute)
	r.RecordPollAttempt("sora", video.JobProcessing)
	r.RecordPollAttempt("sora", video.JobCompleted)
	r.RecordPollAttempt("sora", video.JobCompleted)

	metrics := collect(t, reader)

	gens, ok := metrics["videoflow.generations"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range gens.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)
	assert.Len(t, gens.DataPoints, 2)

	hist, ok := metrics["videoflow.generation.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2)

	polls, ok := metrics["videoflow.poll.attempts"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	total = 0
	for _, dp := range polls.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3), total)
	assert.Len(t, polls.DataPoints, 2)
}
