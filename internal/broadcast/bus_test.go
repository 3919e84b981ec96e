package broadcast

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"synthesis-tracker/internal/errs"
	"synthesis-tracker/internal/model"
	"synthesis-tracker/test/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource 可控的任务快照来源
type stubSource struct {
	mu   sync.Mutex
	jobs map[string]*model.SynthesisJob
}

func newStubSource() *stubSource {
	return &stubSource{jobs: make(map[string]*model.SynthesisJob)}
}

func (s *stubSource) Get(jobID string) (*model.SynthesisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", jobID, errs.ErrJobNotFound)
	}
	return job.Clone(), nil
}

func (s *stubSource) put(job *model.SynthesisJob) {
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
}

func stubJob(id string, stage model.Stage, pct int) *model.SynthesisJob {
	job := &model.SynthesisJob{
		ID:         id,
		Stage:      stage,
		Percentage: pct,
		RunID:      "run-1",
		StartedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if stage == model.StageComplete {
		now := time.Now()
		job.CompletedAt = &now
		job.Result = &model.SynthesisResult{Code: "x", Language: "python", FunctionName: "f"}
	}
	return job
}

// recv 带超时地从订阅通道读一个事件
func recv(t *testing.T, c <-chan *model.SynthesisJob) *model.SynthesisJob {
	t.Helper()
	select {
	case job, ok := <-c:
		require.True(t, ok, "subscription channel closed unexpectedly")
		return job
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestProgressBusSubscribeDeliversSnapshot(t *testing.T) {
	source := newStubSource()
	source.put(stubJob("job-1", model.StageGenerating, 40))
	bus := NewProgressBus(source, 8, &mocks.MockLogger{})

	sub, err := bus.Subscribe("job-1")
	require.NoError(t, err)
	require.NotEmpty(t, sub.ID)
	assert.Equal(t, "job-1", sub.JobID)

	// 订阅立即收到当前完整快照
	snapshot := recv(t, sub.C)
	assert.Equal(t, model.StageGenerating, snapshot.Stage)
	assert.Equal(t, 40, snapshot.Percentage)
	assert.Equal(t, 1, bus.SubscriberCount("job-1"))
}

func TestProgressBusSubscribeUnknownJob(t *testing.T) {
	bus := NewProgressBus(newStubSource(), 8, &mocks.MockLogger{})

	_, err := bus.Subscribe("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrJobNotFound)
}

func TestProgressBusPublishInOrder(t *testing.T) {
	source := newStubSource()
	source.put(stubJob("job-1", model.StageQueued, 0))
	bus := NewProgressBus(source, 8, &mocks.MockLogger{})

	sub, err := bus.Subscribe("job-1")
	require.NoError(t, err)
	recv(t, sub.C) // 快照

	bus.Publish(stubJob("job-1", model.StageAnalyzing, 10))
	bus.Publish(stubJob("job-1", model.StageGenerating, 50))
	bus.Publish(stubJob("job-1", model.StageTesting, 90))

	assert.Equal(t, model.StageAnalyzing, recv(t, sub.C).Stage)
	assert.Equal(t, model.StageGenerating, recv(t, sub.C).Stage)
	assert.Equal(t, model.StageTesting, recv(t, sub.C).Stage)
}

func TestProgressBusSubscribeSnapshotNeverRegresses(t *testing.T) {
	// 订阅与发布并发时，快照必须先于任何后续事件入队：
	// 订阅者观察到的进度只能前进，不能倒退。
	for i := 0; i < 200; i++ {
		source := newStubSource()
		source.put(stubJob("job-1", model.StageAnalyzing, 10))
		bus := NewProgressBus(source, 8, &mocks.MockLogger{})

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pct := 11; pct <= 15; pct++ {
				job := stubJob("job-1", model.StageAnalyzing, pct)
				source.put(job)
				bus.Publish(job)
			}
		}()

		sub, err := bus.Subscribe("job-1")
		require.NoError(t, err)
		wg.Wait()

		last := -1
		for len(sub.C) > 0 {
			job := <-sub.C
			require.GreaterOrEqual(t, job.Percentage, last,
				"iteration %d: progress regressed from %d to %d", i, last, job.Percentage)
			last = job.Percentage
		}
		bus.Unsubscribe(sub.ID)
	}
}

func TestProgressBusSlowSubscriberDoesNotBlock(t *testing.T) {
	source := newStubSource()
	source.put(stubJob("job-1", model.StageQueued, 0))
	bus := NewProgressBus(source, 1, &mocks.MockLogger{})

	slow, err := bus.Subscribe("job-1")
	require.NoError(t, err)
	// slow从不消费；缓冲1已被快照占满

	done := make(chan struct{})
	go func() {
		for i := 1; i <= 50; i++ {
			bus.Publish(stubJob("job-1", model.StageGenerating, i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	// 慢订阅者仍在册，只是丢了事件
	assert.Equal(t, 1, bus.SubscriberCount("job-1"))
	_ = slow
}

func TestProgressBusUnsubscribeIdempotent(t *testing.T) {
	source := newStubSource()
	source.put(stubJob("job-1", model.StageQueued, 0))
	bus := NewProgressBus(source, 8, &mocks.MockLogger{})

	sub, err := bus.Subscribe("job-1")
	require.NoError(t, err)

	bus.Unsubscribe(sub.ID)
	assert.Equal(t, 0, bus.SubscriberCount("job-1"))

	// 重复注销和未知句柄都安全
	bus.Unsubscribe(sub.ID)
	bus.Unsubscribe("unknown-sub")

	// 注销后通道被关闭（先收掉快照）
	recv(t, sub.C)
	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestProgressBusTerminalClosesSubscribers(t *testing.T) {
	source := newStubSource()
	source.put(stubJob("job-1", model.StageTesting, 90))
	bus := NewProgressBus(source, 8, &mocks.MockLogger{})

	sub, err := bus.Subscribe("job-1")
	require.NoError(t, err)
	recv(t, sub.C) // 快照

	bus.Publish(stubJob("job-1", model.StageComplete, 100))

	final := recv(t, sub.C)
	assert.Equal(t, model.StageComplete, final.Stage)

	// 终态之后流结束
	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after terminal event")
	}
	assert.Equal(t, 0, bus.SubscriberCount("job-1"))
}

func TestProgressBusCompletionLatchAcrossPushAndPoll(t *testing.T) {
	source := newStubSource()
	terminal := stubJob("job-1", model.StageComplete, 100)
	source.put(terminal)
	bus := NewProgressBus(source, 8, &mocks.MockLogger{})

	var mu sync.Mutex
	fired := 0
	bus.OnComplete(func(job *model.SynthesisJob) {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	// 推送和轮询路径交替观察到同一个终态
	bus.Publish(terminal)
	_, err := bus.Poll("job-1")
	require.NoError(t, err)
	bus.Publish(terminal)
	_, err = bus.Poll("job-1")
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, 1, fired)
	mu.Unlock()
}

func TestProgressBusPollFirstObservesTerminal(t *testing.T) {
	source := newStubSource()
	source.put(stubJob("job-1", model.StageComplete, 100))
	bus := NewProgressBus(source, 8, &mocks.MockLogger{})

	fired := make(chan *model.SynthesisJob, 2)
	bus.OnComplete(func(job *model.SynthesisJob) {
		fired <- job
	})

	job, err := bus.Poll("job-1")
	require.NoError(t, err)
	assert.True(t, job.Terminal())

	select {
	case done := <-fired:
		assert.Equal(t, "job-1", done.ID)
	default:
		t.Fatal("completion callback not fired on poll")
	}

	// 后续推送不再触发
	bus.Publish(job)
	assert.Empty(t, fired)
}

func TestProgressBusPollUnknownJob(t *testing.T) {
	bus := NewProgressBus(newStubSource(), 8, &mocks.MockLogger{})

	_, err := bus.Poll("missing")
	assert.ErrorIs(t, err, errs.ErrJobNotFound)
}

func TestProgressBusSweepStale(t *testing.T) {
	source := newStubSource()
	source.put(stubJob("job-1", model.StageQueued, 0))
	bus := NewProgressBus(source, 8, &mocks.MockLogger{})

	stale, err := bus.Subscribe("job-1")
	require.NoError(t, err)
	fresh, err := bus.Subscribe("job-1")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	bus.Heartbeat(fresh.ID)

	swept := bus.SweepStale(10 * time.Millisecond)
	assert.Equal(t, 1, swept)
	assert.Equal(t, 1, bus.SubscriberCount("job-1"))

	// 被清掉的是超时的那个
	recv(t, stale.C)
	_, ok := <-stale.C
	assert.False(t, ok)

	// 未知句柄的心跳被忽略
	bus.Heartbeat("unknown-sub")
}

func TestProgressBusPurgeJob(t *testing.T) {
	source := newStubSource()
	source.put(stubJob("job-1", model.StageQueued, 0))
	bus := NewProgressBus(source, 8, &mocks.MockLogger{})

	sub, err := bus.Subscribe("job-1")
	require.NoError(t, err)

	bus.PurgeJob("job-1")
	assert.Equal(t, 0, bus.SubscriberCount("job-1"))

	recv(t, sub.C)
	_, ok := <-sub.C
	assert.False(t, ok)
}
