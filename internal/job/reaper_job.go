// job/reaper_job.go - 订阅续活检查和终态任务回收
package job

import (
	"context"
	"time"

	"synthesis-tracker/internal/broadcast"
	"synthesis-tracker/internal/config"
	"synthesis-tracker/internal/journal"
	"synthesis-tracker/internal/registry"
	"synthesis-tracker/pkg/logger"
)

// ReaperJob 周期性清理任务：清除心跳超时的订阅者，
// 回收超过保留期的终态任务及其变迁日志。
type ReaperJob struct {
	registry registry.JobRegistry
	bus      *broadcast.ProgressBus
	journal  journal.TransitionJournal
	logger   logger.Logger
}

// NewReaperJob 创建清理任务
func NewReaperJob(
	jobRegistry registry.JobRegistry,
	bus *broadcast.ProgressBus,
	transitionJournal journal.TransitionJournal,
	logger logger.Logger,
) *ReaperJob {
	return &ReaperJob{
		registry: jobRegistry,
		bus:      bus,
		journal:  transitionJournal,
		logger:   logger,
	}
}

// Start 启动清理任务，ctx取消时退出
func (j *ReaperJob) Start(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("recovered from panic in reaper job: %v", r)
		}
	}()

	jobsConfig := config.GetTrackerConfig().Jobs
	ticker := time.NewTicker(jobsConfig.ReapInterval())
	defer ticker.Stop()

	j.logger.Info("reaper job started (heartbeat timeout %s, retention %s)",
		jobsConfig.HeartbeatTimeout(), jobsConfig.Retention())

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("reaper job stopped")
			return
		case <-ticker.C:
			j.reap(jobsConfig.HeartbeatTimeout(), jobsConfig.Retention())
		}
	}
}

// reap 执行一轮清理
func (j *ReaperJob) reap(heartbeatTimeout, retention time.Duration) {
	if swept := j.bus.SweepStale(heartbeatTimeout); swept > 0 {
		j.logger.Info("swept %d stale subscribers", swept)
	}

	// 仍有订阅者的终态任务留到下一轮
	expired := j.registry.ExpireTerminal(retention, func(jobID string) bool {
		return j.bus.SubscriberCount(jobID) > 0
	})
	for _, jobID := range expired {
		j.bus.PurgeJob(jobID)
		if err := j.journal.Purge(jobID); err != nil {
			j.logger.Error("failed to purge journal of job %s: %v", jobID, err)
		}
	}
	if len(expired) > 0 {
		j.logger.Info("reaped %d terminal jobs past retention", len(expired))
	}
}
