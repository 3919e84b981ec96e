// internal/dto/tracker.go - 合成任务API请求和响应数据结构定义
package dto

import "synthesis-tracker/internal/model"

// SubmitJobRequest 提交合成任务请求
type SubmitJobRequest struct {
	RunID string `json:"runId" binding:"required"`
}

// SubmitJobData 提交合成任务响应数据
type SubmitJobData struct {
	Job *model.SynthesisJob `json:"job"`
}

// AdvanceJobRequest 推进任务阶段请求
type AdvanceJobRequest struct {
	Stage                         string  `json:"stage" binding:"required"`
	Percentage                    int     `json:"percentage"`
	Message                       string  `json:"message"`
	EstimatedTimeRemainingSeconds int     `json:"estimatedTimeRemainingSeconds"`
	Complexity                    string  `json:"complexity,omitempty"`
}

// CompleteJobRequest 完成任务请求
type CompleteJobRequest struct {
	Message string                 `json:"message"`
	Result  *model.SynthesisResult `json:"result" binding:"required"`
}

// FailJobRequest 任务失败请求
type FailJobRequest struct {
	Message string `json:"message" binding:"required"`
	Detail  string `json:"detail"`
}

// JobData 任务查询响应数据
type JobData struct {
	Job *model.SynthesisJob `json:"job"`
}

// JobHistoryData 任务阶段历史响应数据
type JobHistoryData struct {
	JobID       string                 `json:"jobId"`
	Transitions []*model.JobTransition `json:"transitions"`
}
