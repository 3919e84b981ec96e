package registry

import (
	"fmt"
	"sync"
	"time"

	"synthesis-tracker/internal/errs"
	"synthesis-tracker/internal/model"
	"synthesis-tracker/internal/utils"
	"synthesis-tracker/pkg/logger"
)

// StageUpdate 阶段推进参数
type StageUpdate struct {
	Stage                         model.Stage
	Percentage                    int
	Message                       string
	EstimatedTimeRemainingSeconds int
	Complexity                    string // 可选，只在第一次提供时生效
}

// JobRegistry 任务注册表，阶段转换的唯一写入方
type JobRegistry interface {
	// Submit 创建一个处于queued阶段的新任务
	Submit(runID string) (*model.SynthesisJob, error)
	// Advance 推进任务到非终态阶段，校验阶段全序和进度单调性
	Advance(jobID string, upd StageUpdate) (*model.SynthesisJob, error)
	// Complete 将任务置为complete终态并附加结果
	Complete(jobID string, message string, result *model.SynthesisResult) (*model.SynthesisJob, error)
	// Fail 将任务置为error终态并附加错误信息
	Fail(jobID string, synthErr *model.SynthesisError) (*model.SynthesisJob, error)
	// Get 返回任务当前快照
	Get(jobID string) (*model.SynthesisJob, error)
	// ExpireTerminal 清理超过保留期且不再被引用的终态任务，返回被清理的任务ID
	ExpireTerminal(retention time.Duration, inUse func(jobID string) bool) []string
}

// jobEntry 单个任务记录。mu串行化该任务的全部写入，
// 读取方通过Clone获得与单次写入原子的快照。
type jobEntry struct {
	mu  sync.Mutex
	job *model.SynthesisJob
}

// jobRegistry 内存任务注册表实现
type jobRegistry struct {
	mu     sync.RWMutex
	jobs   map[string]*jobEntry
	logger logger.Logger
}

// NewJobRegistry 创建任务注册表
func NewJobRegistry(logger logger.Logger) JobRegistry {
	return &jobRegistry{
		jobs:   make(map[string]*jobEntry),
		logger: logger,
	}
}

// Submit 创建一个处于queued阶段的新任务
func (r *jobRegistry) Submit(runID string) (*model.SynthesisJob, error) {
	id := utils.GenerateUUID()
	now := time.Now()
	job := &model.SynthesisJob{
		ID:         id,
		Stage:      model.StageQueued,
		Percentage: 0,
		Message:    "queued",
		RunID:      runID,
		StartedAt:  now,
		UpdatedAt:  now,
	}

	r.mu.Lock()
	r.jobs[id] = &jobEntry{job: job}
	r.mu.Unlock()

	r.logger.Info("job %s submitted", id)
	return job.Clone(), nil
}

// Advance 推进任务到非终态阶段。终态只能经由Complete/Fail进入，
// 保证result/error恰好有一个被设置。
func (r *jobRegistry) Advance(jobID string, upd StageUpdate) (*model.SynthesisJob, error) {
	entry, err := r.entry(jobID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	job := entry.job

	if job.Terminal() {
		return nil, fmt.Errorf("job %s is terminal: %w", jobID, errs.ErrInvalidTransition)
	}
	if !model.IsValidStage(upd.Stage) {
		return nil, fmt.Errorf("unknown stage %q: %w", upd.Stage, errs.ErrInvalidTransition)
	}
	if model.IsTerminal(upd.Stage) {
		return nil, fmt.Errorf("stage %q requires Complete or Fail: %w", upd.Stage, errs.ErrInvalidTransition)
	}
	if !model.CanTransition(job.Stage, upd.Stage) {
		return nil, fmt.Errorf("cannot move %s -> %s: %w", job.Stage, upd.Stage, errs.ErrInvalidTransition)
	}
	if upd.Percentage < job.Percentage || upd.Percentage > 100 {
		return nil, fmt.Errorf("percentage %d regresses from %d: %w", upd.Percentage, job.Percentage, errs.ErrInvalidTransition)
	}

	job.Stage = upd.Stage
	job.Percentage = upd.Percentage
	job.Message = upd.Message
	if upd.EstimatedTimeRemainingSeconds >= 0 {
		job.EstimatedTimeRemainingSeconds = upd.EstimatedTimeRemainingSeconds
	}
	// 复杂度分类只设置一次
	if job.Complexity == "" && model.IsValidComplexity(upd.Complexity) {
		job.Complexity = upd.Complexity
	}
	job.UpdatedAt = time.Now()

	return job.Clone(), nil
}

// Complete 将任务置为complete终态并附加结果
func (r *jobRegistry) Complete(jobID string, message string, result *model.SynthesisResult) (*model.SynthesisJob, error) {
	entry, err := r.entry(jobID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	job := entry.job

	if job.Terminal() {
		return nil, fmt.Errorf("job %s: %w", jobID, errs.ErrAlreadyTerminal)
	}
	if result == nil {
		return nil, errs.NewMissingParamError("result")
	}

	now := time.Now()
	job.Stage = model.StageComplete
	job.Percentage = 100
	if message != "" {
		job.Message = message
	} else {
		job.Message = "synthesis complete"
	}
	job.EstimatedTimeRemainingSeconds = 0
	job.Result = result
	job.UpdatedAt = now
	job.CompletedAt = &now

	r.logger.Info("job %s completed", jobID)
	return job.Clone(), nil
}

// Fail 将任务置为error终态并附加错误信息
func (r *jobRegistry) Fail(jobID string, synthErr *model.SynthesisError) (*model.SynthesisJob, error) {
	entry, err := r.entry(jobID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	job := entry.job

	if job.Terminal() {
		return nil, fmt.Errorf("job %s: %w", jobID, errs.ErrAlreadyTerminal)
	}
	if synthErr == nil {
		return nil, errs.NewMissingParamError("error")
	}

	now := time.Now()
	job.Stage = model.StageError
	job.Message = synthErr.Message
	job.EstimatedTimeRemainingSeconds = 0
	job.Error = synthErr
	job.UpdatedAt = now
	job.CompletedAt = &now

	r.logger.Warn("job %s failed: %s", jobID, synthErr.Message)
	return job.Clone(), nil
}

// Get 返回任务当前快照
func (r *jobRegistry) Get(jobID string) (*model.SynthesisJob, error) {
	entry, err := r.entry(jobID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.job.Clone(), nil
}

// ExpireTerminal 清理超过保留期且不再被引用的终态任务
func (r *jobRegistry) ExpireTerminal(retention time.Duration, inUse func(jobID string) bool) []string {
	cutoff := time.Now().Add(-retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []string
	for id, entry := range r.jobs {
		entry.mu.Lock()
		job := entry.job
		eligible := job.Terminal() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff)
		entry.mu.Unlock()

		if eligible && (inUse == nil || !inUse(id)) {
			delete(r.jobs, id)
			expired = append(expired, id)
		}
	}

	if len(expired) > 0 {
		r.logger.Info("expired %d terminal jobs past retention", len(expired))
	}
	return expired
}

// entry 查找任务记录
func (r *jobRegistry) entry(jobID string) (*jobEntry, error) {
	r.mu.RLock()
	entry, ok := r.jobs[jobID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("job %s: %w", jobID, errs.ErrJobNotFound)
	}
	return entry, nil
}
