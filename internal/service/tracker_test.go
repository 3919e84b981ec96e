package service

import (
	"os"
	"sync"
	"testing"

	"synthesis-tracker/internal/broadcast"
	"synthesis-tracker/internal/errs"
	"synthesis-tracker/internal/journal"
	"synthesis-tracker/internal/model"
	"synthesis-tracker/internal/registry"
	"synthesis-tracker/test/mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackerFixture 组装一套真实的注册表/总线/日志加mock存储的服务
type trackerFixture struct {
	svc        TrackerService
	registry   registry.JobRegistry
	bus        *broadcast.ProgressBus
	corpusRepo *mocks.MockCorpusRepository
}

func setupTracker(t *testing.T) (*trackerFixture, func()) {
	t.Helper()
	ctrl := gomock.NewController(t)

	tempDir, err := os.MkdirTemp("", "test-tracker-journal")
	require.NoError(t, err)

	logger := &mocks.MockLogger{}
	transitionJournal, err := journal.NewLevelDBJournal(tempDir, logger)
	require.NoError(t, err)

	jobRegistry := registry.NewJobRegistry(logger)
	bus := broadcast.NewProgressBus(jobRegistry, 16, logger)
	corpusRepo := mocks.NewMockCorpusRepository(ctrl)
	corpusService := NewCorpusService(corpusRepo, newTestMetrics(t), logger)
	svc := NewTrackerService(jobRegistry, transitionJournal, bus, corpusService, newTestMetrics(t), logger)

	cleanup := func() {
		transitionJournal.Close()
		os.RemoveAll(tempDir)
		ctrl.Finish()
	}
	return &trackerFixture{
		svc:        svc,
		registry:   jobRegistry,
		bus:        bus,
		corpusRepo: corpusRepo,
	}, cleanup
}

func trackerResult() *model.SynthesisResult {
	return &model.SynthesisResult{
		Code:         "def add(a, b):\n    return a + b",
		Language:     "python",
		FunctionName: "add",
	}
}

func TestTrackerServiceLifecycle(t *testing.T) {
	f, cleanup := setupTracker(t)
	defer cleanup()

	job, err := f.svc.Submit("run-1")
	require.NoError(t, err)
	assert.Equal(t, model.StageQueued, job.Stage)

	_, err = f.svc.Advance(job.ID, registry.StageUpdate{Stage: model.StageAnalyzing, Percentage: 10, Message: "parsing spec"})
	require.NoError(t, err)
	_, err = f.svc.Advance(job.ID, registry.StageUpdate{Stage: model.StageGenerating, Percentage: 50, Message: "beam search"})
	require.NoError(t, err)

	// 完成时结果进语料库
	var archived *model.CorpusEntry
	f.corpusRepo.EXPECT().Insert(gomock.Any()).DoAndReturn(func(entry *model.CorpusEntry) error {
		archived = entry
		return nil
	})

	done, err := f.svc.Complete(job.ID, "all green", trackerResult(), 4, 4)
	require.NoError(t, err)
	assert.Equal(t, model.StageComplete, done.Stage)
	assert.Equal(t, 100, done.Percentage)

	require.NotNil(t, archived)
	assert.Equal(t, "add", archived.Name)
	assert.Equal(t, "run-1", archived.RunID)
	assert.Equal(t, 1.0, archived.Score)
	assert.Equal(t, 4, archived.Passed)
	assert.Equal(t, 4, archived.Total)

	// 历史记录覆盖全部阶段转换
	history, err := f.svc.History(job.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, model.StageQueued, history[0].Stage)
	assert.Equal(t, model.StageComplete, history[3].Stage)
}

func TestTrackerServiceCompleteArchiveFailureKeepsJobTerminal(t *testing.T) {
	f, cleanup := setupTracker(t)
	defer cleanup()

	job, err := f.svc.Submit("run-1")
	require.NoError(t, err)

	// 语料写入失败不回滚完成状态
	f.corpusRepo.EXPECT().Insert(gomock.Any()).Return(assert.AnError)

	done, err := f.svc.Complete(job.ID, "", trackerResult(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, model.StageComplete, done.Stage)

	got, err := f.svc.GetJob(job.ID)
	require.NoError(t, err)
	assert.True(t, got.Terminal())
}

func TestTrackerServiceFail(t *testing.T) {
	f, cleanup := setupTracker(t)
	defer cleanup()

	job, err := f.svc.Submit("run-1")
	require.NoError(t, err)

	failed, err := f.svc.Fail(job.ID, "timeout", "no candidate within budget")
	require.NoError(t, err)
	assert.Equal(t, model.StageError, failed.Stage)
	require.NotNil(t, failed.Error)
	assert.Equal(t, "timeout", failed.Error.Message)
	assert.Nil(t, failed.Result)

	// 失败不写语料库（mock无EXPECT，误调用会失败）
	_, err = f.svc.Fail(job.ID, "again", "")
	assert.ErrorIs(t, err, errs.ErrAlreadyTerminal)
}

func TestTrackerServiceGetJobFiresCompletionOnce(t *testing.T) {
	f, cleanup := setupTracker(t)
	defer cleanup()

	var mu sync.Mutex
	fired := 0
	f.bus.OnComplete(func(job *model.SynthesisJob) {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	job, err := f.svc.Submit("run-1")
	require.NoError(t, err)

	// 非终态轮询不触发
	_, err = f.svc.GetJob(job.ID)
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, 0, fired)
	mu.Unlock()

	_, err = f.svc.Fail(job.ID, "boom", "")
	require.NoError(t, err)

	// 终态经推送路径已触发一次，后续轮询不再触发
	for i := 0; i < 3; i++ {
		_, err = f.svc.GetJob(job.ID)
		require.NoError(t, err)
	}
	mu.Lock()
	assert.Equal(t, 1, fired)
	mu.Unlock()
}

func TestTrackerServiceSubscriberSeesCompletion(t *testing.T) {
	f, cleanup := setupTracker(t)
	defer cleanup()

	job, err := f.svc.Submit("run-1")
	require.NoError(t, err)

	sub, err := f.bus.Subscribe(job.ID)
	require.NoError(t, err)

	snapshot := <-sub.C
	assert.Equal(t, model.StageQueued, snapshot.Stage)

	f.corpusRepo.EXPECT().Insert(gomock.Any()).Return(nil)
	_, err = f.svc.Complete(job.ID, "", trackerResult(), 1, 1)
	require.NoError(t, err)

	final := <-sub.C
	assert.Equal(t, model.StageComplete, final.Stage)

	// 终态后订阅流结束
	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestTrackerServiceHistoryUnknownJob(t *testing.T) {
	f, cleanup := setupTracker(t)
	defer cleanup()

	_, err := f.svc.History("missing")
	assert.ErrorIs(t, err, errs.ErrJobNotFound)

	_, err = f.svc.GetJob("missing")
	assert.ErrorIs(t, err, errs.ErrJobNotFound)
}
