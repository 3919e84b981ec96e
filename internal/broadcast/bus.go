package broadcast

import (
	"sync"
	"time"

	"synthesis-tracker/internal/model"
	"synthesis-tracker/internal/utils"
	"synthesis-tracker/pkg/logger"
)

// SnapshotSource 任务快照来源，由任务注册表实现
type SnapshotSource interface {
	Get(jobID string) (*model.SynthesisJob, error)
}

// CompletionFunc 任务终态回调。对每个任务至多触发一次，
// 无论终态是经推送路径还是轮询路径先被观察到。
type CompletionFunc func(job *model.SynthesisJob)

// Subscription 推送订阅句柄
type Subscription struct {
	ID    string
	JobID string
	C     <-chan *model.SynthesisJob
}

// subscriber 订阅者内部状态
type subscriber struct {
	id       string
	jobID    string
	ch       chan *model.SynthesisJob
	mu       sync.Mutex
	closed   bool
	lastBeat time.Time
	dropped  int
}

// send 非阻塞投递。订阅者消费过慢时丢弃事件，绝不阻塞发布方。
func (s *subscriber) send(job *model.SynthesisJob) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- job:
		return true
	default:
		s.dropped++
		return false
	}
}

// close 幂等关闭
func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// beat 更新心跳时间
func (s *subscriber) beat(now time.Time) {
	s.mu.Lock()
	s.lastBeat = now
	s.mu.Unlock()
}

// stale 判断心跳是否超时
func (s *subscriber) stale(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBeat.Before(cutoff)
}

// ProgressBus 进度事件总线。推送订阅和轮询快照共用同一份任务状态
// 和同一个终态闩锁，不存在两套"是否已通知完成"的记账。
type ProgressBus struct {
	mu       sync.RWMutex
	source   SnapshotSource
	buffer   int
	subs     map[string]map[string]*subscriber // jobID -> subID -> subscriber
	subIndex map[string]*subscriber            // subID -> subscriber
	latches  map[string]*sync.Once             // jobID -> 终态闩锁
	onDone   []CompletionFunc
	logger   logger.Logger
}

// NewProgressBus 创建进度事件总线
func NewProgressBus(source SnapshotSource, buffer int, logger logger.Logger) *ProgressBus {
	if buffer <= 0 {
		buffer = 16
	}
	return &ProgressBus{
		source:   source,
		buffer:   buffer,
		subs:     make(map[string]map[string]*subscriber),
		subIndex: make(map[string]*subscriber),
		latches:  make(map[string]*sync.Once),
		logger:   logger,
	}
}

// OnComplete 注册终态回调。必须在发布开始前注册。
func (b *ProgressBus) OnComplete(fn CompletionFunc) {
	b.mu.Lock()
	b.onDone = append(b.onDone, fn)
	b.mu.Unlock()
}

// Subscribe 注册推送订阅者并立即投递任务当前完整快照，
// 晚到的订阅者不会缺失任务现状。快照读取、注册和入队在同一
// 临界区内完成，并发的Publish不可能插到快照前面。
func (b *ProgressBus) Subscribe(jobID string) (*Subscription, error) {
	subID := utils.GenerateUUID()
	sub := &subscriber{
		id:       subID,
		jobID:    jobID,
		ch:       make(chan *model.SynthesisJob, b.buffer),
		lastBeat: time.Now(),
	}

	b.mu.Lock()
	snapshot, err := b.source.Get(jobID)
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	if b.subs[jobID] == nil {
		b.subs[jobID] = make(map[string]*subscriber)
	}
	b.subs[jobID][subID] = sub
	b.subIndex[subID] = sub
	sub.send(snapshot)
	b.mu.Unlock()

	b.logger.Debug("subscriber %s registered for job %s", subID, jobID)
	return &Subscription{ID: subID, JobID: jobID, C: sub.ch}, nil
}

// Unsubscribe 注销订阅者。幂等，任务已终态或句柄未知时安全。
func (b *ProgressBus) Unsubscribe(subID string) {
	b.mu.Lock()
	sub, ok := b.subIndex[subID]
	if ok {
		delete(b.subIndex, subID)
		if jobSubs := b.subs[sub.jobID]; jobSubs != nil {
			delete(jobSubs, subID)
			if len(jobSubs) == 0 {
				delete(b.subs, sub.jobID)
			}
		}
	}
	b.mu.Unlock()

	if ok {
		sub.close()
		b.logger.Debug("subscriber %s unregistered", subID)
	}
}

// Heartbeat 订阅者活性信号。句柄未知时忽略。
func (b *ProgressBus) Heartbeat(subID string) {
	b.mu.RLock()
	sub, ok := b.subIndex[subID]
	b.mu.RUnlock()
	if ok {
		sub.beat(time.Now())
	}
}

// Poll 轮询路径：返回任务最新快照，从不阻塞。
// 终态快照同样经过终态闩锁，完成回调不会因轮询重复触发。
func (b *ProgressBus) Poll(jobID string) (*model.SynthesisJob, error) {
	snapshot, err := b.source.Get(jobID)
	if err != nil {
		return nil, err
	}
	if snapshot.Terminal() {
		b.fireCompletion(snapshot)
	}
	return snapshot, nil
}

// Publish 向任务的全部订阅者投递一次阶段转换。
// 投递非阻塞：慢订阅者丢事件，不影响其他订阅者，也不阻塞写入方。
// 终态事件投递后关闭该任务的所有订阅通道。
func (b *ProgressBus) Publish(job *model.SynthesisJob) {
	b.mu.RLock()
	targets := make([]*subscriber, 0, len(b.subs[job.ID]))
	for _, sub := range b.subs[job.ID] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		if !sub.send(job) && !job.Terminal() {
			b.logger.Warn("subscriber %s lagging on job %s, event dropped", sub.id, job.ID)
		}
	}

	if job.Terminal() {
		b.fireCompletion(job)
		b.closeJobSubscribers(job.ID)
	}
}

// SubscriberCount 返回任务当前订阅者数量
func (b *ProgressBus) SubscriberCount(jobID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[jobID])
}

// SweepStale 移除心跳超时的订阅者，返回被移除的数量。
// 只做资源回收，不改变任何任务状态。
func (b *ProgressBus) SweepStale(timeout time.Duration) int {
	cutoff := time.Now().Add(-timeout)

	b.mu.RLock()
	var staleIDs []string
	for subID, sub := range b.subIndex {
		if sub.stale(cutoff) {
			staleIDs = append(staleIDs, subID)
		}
	}
	b.mu.RUnlock()

	for _, subID := range staleIDs {
		b.Unsubscribe(subID)
	}

	if len(staleIDs) > 0 {
		b.logger.Info("dropped %d stale subscribers past heartbeat timeout", len(staleIDs))
	}
	return len(staleIDs)
}

// PurgeJob 任务过期时清理其订阅者和终态闩锁
func (b *ProgressBus) PurgeJob(jobID string) {
	b.closeJobSubscribers(jobID)

	b.mu.Lock()
	delete(b.latches, jobID)
	b.mu.Unlock()
}

// fireCompletion 终态闩锁：每个任务的完成回调至多触发一次
func (b *ProgressBus) fireCompletion(job *model.SynthesisJob) {
	b.mu.Lock()
	once, ok := b.latches[job.ID]
	if !ok {
		once = &sync.Once{}
		b.latches[job.ID] = once
	}
	callbacks := b.onDone
	b.mu.Unlock()

	once.Do(func() {
		for _, fn := range callbacks {
			fn(job)
		}
	})
}

// closeJobSubscribers 关闭并移除任务的全部订阅者
func (b *ProgressBus) closeJobSubscribers(jobID string) {
	b.mu.Lock()
	jobSubs := b.subs[jobID]
	delete(b.subs, jobID)
	for subID := range jobSubs {
		delete(b.subIndex, subID)
	}
	b.mu.Unlock()

	for _, sub := range jobSubs {
		sub.close()
	}
}
