package service

import (
	"context"
	"errors"
	"fmt"

	"synthesis-tracker/internal/broadcast"
	"synthesis-tracker/internal/dto"
	"synthesis-tracker/internal/errs"
	"synthesis-tracker/internal/journal"
	"synthesis-tracker/internal/model"
	"synthesis-tracker/internal/registry"
	"synthesis-tracker/pkg/logger"
	"synthesis-tracker/pkg/metrics"
)

// TrackerService 合成任务生命周期服务接口
type TrackerService interface {
	// Submit 提交新任务，初始阶段为queued
	Submit(runID string) (*model.SynthesisJob, error)
	// Advance 推进任务到指定非终态阶段
	Advance(jobID string, update registry.StageUpdate) (*model.SynthesisJob, error)
	// Complete 将任务置为complete并把结果写入语料库
	Complete(jobID, message string, result *model.SynthesisResult, passed, total int) (*model.SynthesisJob, error)
	// Fail 将任务置为error
	Fail(jobID, message, detail string) (*model.SynthesisJob, error)
	// GetJob 查询任务当前快照
	GetJob(jobID string) (*model.SynthesisJob, error)
	// History 返回任务的全部阶段变迁记录
	History(jobID string) ([]*model.JobTransition, error)
}

// trackerService 合成任务生命周期服务实现
type trackerService struct {
	registry      registry.JobRegistry
	journal       journal.TransitionJournal
	bus           *broadcast.ProgressBus
	corpusService CorpusService
	metrics       *metrics.TrackerMetrics
	logger        logger.Logger
}

// NewTrackerService 创建合成任务生命周期服务
func NewTrackerService(
	jobRegistry registry.JobRegistry,
	transitionJournal journal.TransitionJournal,
	bus *broadcast.ProgressBus,
	corpusService CorpusService,
	trackerMetrics *metrics.TrackerMetrics,
	logger logger.Logger,
) TrackerService {
	return &trackerService{
		registry:      jobRegistry,
		journal:       transitionJournal,
		bus:           bus,
		corpusService: corpusService,
		metrics:       trackerMetrics,
		logger:        logger,
	}
}

// Submit 提交新任务
func (ts *trackerService) Submit(runID string) (*model.SynthesisJob, error) {
	job, err := ts.registry.Submit(runID)
	if err != nil {
		return nil, fmt.Errorf("failed to submit job: %w", err)
	}

	ts.recordAndPublish(job)
	ts.metrics.JobsSubmitted.Add(context.Background(), 1)
	ts.logger.Info("job submitted: %s (run %s)", job.ID, runID)
	return job, nil
}

// Advance 推进任务到指定非终态阶段
func (ts *trackerService) Advance(jobID string, update registry.StageUpdate) (*model.SynthesisJob, error) {
	job, err := ts.registry.Advance(jobID, update)
	if err != nil {
		return nil, err
	}

	ts.recordAndPublish(job)
	ts.logger.Debug("job %s advanced to %s (%d%%)", jobID, job.Stage, job.Percentage)
	return job, nil
}

// Complete 将任务置为complete。结果代码同时追加进语料库，
// 归一化签名和复杂度由语料服务计算。
func (ts *trackerService) Complete(jobID, message string, result *model.SynthesisResult, passed, total int) (*model.SynthesisJob, error) {
	job, err := ts.registry.Complete(jobID, message, result)
	if err != nil {
		return nil, err
	}

	entry, err := ts.corpusService.Insert(&dto.InsertCorpusRequest{
		Name:     result.FunctionName,
		Snippet:  result.Code,
		Language: result.Language,
		Score:    scoreOf(passed, total),
		Passed:   passed,
		Total:    total,
		RunID:    job.RunID,
	})
	if err != nil {
		// 语料写入失败不回滚任务状态，完成事实已经成立
		ts.logger.Error("failed to archive result of job %s: %v", jobID, err)
	} else {
		ts.logger.Info("job %s result archived as corpus entry %s", jobID, entry.ID)
	}

	ts.recordAndPublish(job)
	ts.metrics.JobsCompleted.Add(context.Background(), 1)
	return job, nil
}

// Fail 将任务置为error
func (ts *trackerService) Fail(jobID, message, detail string) (*model.SynthesisJob, error) {
	job, err := ts.registry.Fail(jobID, &model.SynthesisError{
		Message: message,
		Detail:  detail,
	})
	if err != nil {
		return nil, err
	}

	ts.recordAndPublish(job)
	ts.metrics.JobsFailed.Add(context.Background(), 1)
	ts.logger.Info("job %s failed: %s", jobID, message)
	return job, nil
}

// GetJob 查询任务当前快照。走广播总线的Poll路径，
// 保证轮询到终态时同样触发一次性完成回调。
func (ts *trackerService) GetJob(jobID string) (*model.SynthesisJob, error) {
	return ts.bus.Poll(jobID)
}

// History 返回任务的全部阶段变迁记录
func (ts *trackerService) History(jobID string) ([]*model.JobTransition, error) {
	transitions, err := ts.journal.History(jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to read job history: %w", err)
	}
	if len(transitions) == 0 {
		// 日志为空时区分“从未存在”和“尚无记录”
		if _, err := ts.registry.Get(jobID); err != nil {
			if errors.Is(err, errs.ErrJobNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to get job: %w", err)
		}
	}
	return transitions, nil
}

// recordAndPublish 先落日志再广播，历史记录总是先于推送可见
func (ts *trackerService) recordAndPublish(job *model.SynthesisJob) {
	if err := ts.journal.Append(job); err != nil {
		ts.logger.Error("failed to journal transition of job %s: %v", job.ID, err)
	}
	ts.bus.Publish(job)
	ts.metrics.TransitionsPublished.Add(context.Background(), 1)
}

// scoreOf 计算通过率，total为0时记0
func scoreOf(passed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(passed) / float64(total)
}
