package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"synthesis-tracker/internal/model"
	"synthesis-tracker/pkg/logger"
)

// TransitionJournal 阶段转换日志。每次发布的转换按序追加，
// 支撑任务历史查询；任务过期时随之清理。
type TransitionJournal interface {
	// Append 追加一条阶段转换记录
	Append(job *model.SynthesisJob) error
	// History 按序返回任务的全部转换记录
	History(jobID string) ([]*model.JobTransition, error)
	// Purge 删除任务的全部转换记录
	Purge(jobID string) error
	Close() error
}

// levelDBJournal LevelDB日志实现
type levelDBJournal struct {
	db     *leveldb.DB
	logger logger.Logger
	mu     sync.Mutex
	seqs   map[string]uint64 // jobID -> 下一个序号
	closed bool
}

// NewLevelDBJournal 创建LevelDB阶段转换日志
func NewLevelDBJournal(dir string, logger logger.Logger) (TransitionJournal, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	// 任务注册表只在内存中，重启后上个进程留下的记录都属于
	// 已不存在的任务，启动时统一清理。
	swept, err := sweepOrphans(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to sweep orphaned transitions: %w", err)
	}
	if swept > 0 {
		logger.Info("swept %d orphaned transition records from previous run", swept)
	}

	logger.Info("transition journal opened at %s", dir)
	return &levelDBJournal{
		db:     db,
		logger: logger,
		seqs:   make(map[string]uint64),
	}, nil
}

// sweepOrphans 删除数据库中的全部转换记录，返回删除条数
func sweepOrphans(db *leveldb.DB) (int, error) {
	iter := db.NewIterator(nil, nil)
	batch := new(leveldb.Batch)
	count := 0
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
		count++
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	if err := db.Write(batch, nil); err != nil {
		return 0, err
	}
	return count, nil
}

// Append 追加一条阶段转换记录
func (j *levelDBJournal) Append(job *model.SynthesisJob) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return fmt.Errorf("journal is closed")
	}

	seq := j.seqs[job.ID]
	j.seqs[job.ID] = seq + 1

	rec := &model.JobTransition{
		JobID:      job.ID,
		Seq:        seq,
		Stage:      job.Stage,
		Percentage: job.Percentage,
		Message:    job.Message,
		Timestamp:  job.UpdatedAt,
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode transition: %w", err)
	}

	if err := j.db.Put(transitionKey(job.ID, seq), data, nil); err != nil {
		j.logger.Error("failed to append transition for job %s: %v", job.ID, err)
		return fmt.Errorf("failed to append transition: %w", err)
	}
	return nil
}

// History 按序返回任务的全部转换记录
func (j *levelDBJournal) History(jobID string) ([]*model.JobTransition, error) {
	iter := j.db.NewIterator(util.BytesPrefix(jobPrefix(jobID)), nil)
	defer iter.Release()

	var transitions []*model.JobTransition
	for iter.Next() {
		var rec model.JobTransition
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			j.logger.Error("corrupt transition record for job %s: %v", jobID, err)
			continue
		}
		transitions = append(transitions, &rec)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to read transition history: %w", err)
	}
	return transitions, nil
}

// Purge 删除任务的全部转换记录
func (j *levelDBJournal) Purge(jobID string) error {
	iter := j.db.NewIterator(util.BytesPrefix(jobPrefix(jobID)), nil)
	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("failed to scan transitions for purge: %w", err)
	}

	if err := j.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to purge transitions: %w", err)
	}

	j.mu.Lock()
	delete(j.seqs, jobID)
	j.mu.Unlock()
	return nil
}

// Close 关闭日志数据库
func (j *levelDBJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}

// transitionKey 键格式: <jobID>!<16位十六进制序号>，保证前缀遍历按序
func transitionKey(jobID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s!%016x", jobID, seq))
}

// jobPrefix 任务的键前缀
func jobPrefix(jobID string) []byte {
	return []byte(jobID + "!")
}
