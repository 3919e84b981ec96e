package model

import (
	"encoding/json"
	"time"
)

// SynthesisResult 合成成功产物，由外部合成器在任务完成时提交
type SynthesisResult struct {
	Code         string `json:"code"`
	Language     string `json:"language"`
	FunctionName string `json:"functionName"`
	Description  string `json:"description,omitempty"`
}

// SynthesisError 合成失败信息
type SynthesisError struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// SynthesisJob 合成任务数据模型。
// Result 与 Error 互斥：至多一个非空，且仅在终态由注册表一次性写入。
type SynthesisJob struct {
	ID                            string           `json:"id"`
	Stage                         Stage            `json:"stage"`
	Percentage                    int              `json:"percentage"`
	Message                       string           `json:"message"`
	EstimatedTimeRemainingSeconds int              `json:"estimatedTimeRemainingSeconds"`
	Complexity                    string           `json:"complexity,omitempty"`
	RunID                         string           `json:"runId,omitempty"`
	StartedAt                     time.Time        `json:"startedAt"`
	UpdatedAt                     time.Time        `json:"updatedAt"`
	CompletedAt                   *time.Time       `json:"completedAt,omitempty"`
	Result                        *SynthesisResult `json:"result,omitempty"`
	Error                         *SynthesisError  `json:"error,omitempty"`
}

// Terminal 判断任务是否已到终态
func (j *SynthesisJob) Terminal() bool {
	return IsTerminal(j.Stage)
}

// Clone 返回任务的深拷贝快照，读取方不会观察到后续修改
func (j *SynthesisJob) Clone() *SynthesisJob {
	cp := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	if j.Result != nil {
		r := *j.Result
		cp.Result = &r
	}
	if j.Error != nil {
		e := *j.Error
		cp.Error = &e
	}
	return &cp
}

// CorpusFilter 语料库查询过滤条件
type CorpusFilter struct {
	NamePrefix   string
	MinScore     *float64
	SignatureKey string
}

// CorpusEntry 语料库条目数据模型
type CorpusEntry struct {
	ID           string    `json:"id" db:"id"`
	SignatureKey string    `json:"signatureKey" db:"signature_key"`
	Name         string    `json:"name" db:"name"`
	Snippet      string    `json:"snippet" db:"snippet"`
	Language     string    `json:"language" db:"language"`
	Score        float64   `json:"score" db:"score"`
	Passed       int       `json:"passed" db:"passed"`
	Total        int       `json:"total" db:"total"`
	Complexity   int       `json:"complexity" db:"complexity"`
	RunID        string    `json:"runId,omitempty" db:"run_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// UsedSeed 种子使用记录数据模型。Reason是调用方提交的结构化JSON，
// 存储和返回时均不解释其内容。
type UsedSeed struct {
	ID            string          `json:"id" db:"id"`
	RunID         string          `json:"runId" db:"run_id"`
	SourceEntryID string          `json:"sourceEntryId" db:"source_entry_id"`
	FunctionName  string          `json:"functionName" db:"function_name"`
	Score         *float64        `json:"score,omitempty" db:"score"`
	Reason        json.RawMessage `json:"reason" db:"reason"`
	Snippet       string          `json:"snippet" db:"snippet"`
	Timestamp     time.Time       `json:"timestamp" db:"timestamp"`
}

// RunMeta 合成运行配置数据模型
type RunMeta struct {
	RunID          string    `json:"runId" db:"run_id"`
	Timestamp      time.Time `json:"timestamp" db:"timestamp"`
	SeedBias       float64   `json:"seedBias" db:"seed_bias"`
	SeedingEnabled bool      `json:"seedingEnabled" db:"seeding_enabled"`
	MaxIters       int       `json:"maxIters" db:"max_iters"`
	Beam           *int      `json:"beam,omitempty" db:"beam"`
	Notes          string    `json:"notes,omitempty" db:"notes"`
}

// JobTransition 任务阶段转换日志条目
type JobTransition struct {
	JobID      string    `json:"jobId"`
	Seq        uint64    `json:"seq"`
	Stage      Stage     `json:"stage"`
	Percentage int       `json:"percentage"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}
