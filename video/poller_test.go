package video

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BaSui01/videoflow/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAsync 按预设序列返回状态
type fakeAsync struct {
	mu       sync.Mutex
	statuses []JobStatus
	pollErr  error
	polls    int
}

func (f *fakeAsync) Name() string { return "fake" }

func (f *fakeAsync) Submit(context.Context, GenerationRequest) (JobHandle, error) {
	return NewJobHandle("fake", "job-1", "secret"), nil
}

func (f *fakeAsync) Poll(context.Context, JobHandle) (JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.pollErr != nil {
		return JobStatus{}, f.pollErr
	}
	if len(f.statuses) == 0 {
		return JobStatus{State: JobProcessing}, nil
	}
	s := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return s, nil
}

func (f *fakeAsync) ExtractResult(status JobStatus) (string, error) {
	return string(status.Payload), nil
}

func (f *fakeAsync) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func TestPoller_StopsAtFirstTerminalStatus(t *testing.T) {
	metrics := &recordingMetrics{}
	p := &fakeAsync{statuses: []JobStatus{
		{State: JobPending},
		{State: JobProcessing},
		{State: JobCompleted, Payload: []byte("https://x/1.mp4")},
		{State: JobFailed},
	}}

	job, err := fastPoller(metrics).Wait(context.Background(), p, NewJobHandle("fake", "job-1", ""))
	require.NoError(t, err)
	assert.Equal(t, JobCompleted, job.Status.State)
	assert.Equal(t, 3, job.Attempts)
	assert.Equal(t, 3, p.pollCount())
	assert.Equal(t, []JobState{JobPending, JobProcessing, JobCompleted}, metrics.polls)
}

func TestPoller_FailedStatus(t *testing.T) {
	p := &fakeAsync{statuses: []JobStatus{{State: JobFailed, Detail: "quota exceeded"}}}

	_, err := fastPoller(nil).Wait(context.Background(), p, NewJobHandle("fake", "job-1", ""))
	require.Error(t, err)
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrRemoteGenerationFailed, e.Code)
	assert.Equal(t, "quota exceeded", e.Detail)
	assert.Equal(t, 1, p.pollCount())
}

func TestPoller_PollErrorReturnsImmediately(t *testing.T) {
	p := &fakeAsync{pollErr: errors.New("connection reset")}

	_, err := fastPoller(nil).Wait(context.Background(), p, NewJobHandle("fake", "job-1", ""))
	require.Error(t, err)
	assert.Equal(t, types.ErrTransport, types.GetErrorCode(err))
	assert.Equal(t, 1, p.pollCount())
}

func TestPoller_TypedPollErrorIsKept(t *testing.T) {
	p := &fakeAsync{pollErr: types.InvalidOutputShape("fake", "bad json")}

	_, err := fastPoller(nil).Wait(context.Background(), p, NewJobHandle("fake", "job-1", ""))
	assert.Equal(t, types.ErrInvalidOutputShape, types.GetErrorCode(err))
}

func TestPoller_DeadlineExceeded(t *testing.T) {
	p := &fakeAsync{}
	poller := NewPoller(PollerConfig{Interval: time.Millisecond, Deadline: 30 * time.Millisecond}, zap.NewNop(), nil)

	job, err := poller.Wait(context.Background(), p, NewJobHandle("fake", "job-1", ""))
	require.Error(t, err)
	assert.Equal(t, types.ErrTimeout, types.GetErrorCode(err))
	assert.Greater(t, job.Attempts, 0)
}

func TestPoller_CallerCancellation(t *testing.T) {
	p := &fakeAsync{}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := fastPoller(nil).Wait(ctx, p, NewJobHandle("fake", "job-1", ""))
	require.Error(t, err)
	assert.Equal(t, types.ErrTransport, types.GetErrorCode(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoller_WaitsBeforeFirstPoll(t *testing.T) {
	p := &fakeAsync{statuses: []JobStatus{{State: JobCompleted}}}
	poller := NewPoller(PollerConfig{Interval: 40 * time.Millisecond, Deadline: time.Second}, nil, nil)

	start := time.Now()
	_, err := poller.Wait(context.Background(), p, NewJobHandle("fake", "job-1", ""))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestNewPoller_Defaults(t *testing.T) {
	p := NewPoller(PollerConfig{Deadline: -1}, nil, nil)
	assert.Equal(t, DefaultPollInterval, p.interval)
	assert.Equal(t, DefaultPollDeadline, p.deadline)

	unbounded := NewPoller(PollerConfig{Interval: time.Second}, nil, nil)
	assert.Equal(t, time.Duration(0), unbounded.deadline)
}
