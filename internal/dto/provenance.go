// internal/dto/provenance.go - 运行元数据和种子溯源API数据结构定义
package dto

import (
	"encoding/json"

	"synthesis-tracker/internal/model"
)

// RecordRunRequest 记录运行配置快照请求
type RecordRunRequest struct {
	RunID          string  `json:"runId" binding:"required"`
	SeedBias       float64 `json:"seedBias"`
	SeedingEnabled bool    `json:"seedingEnabled"`
	MaxIters       int     `json:"maxIters" binding:"required"`
	Beam           *int    `json:"beam,omitempty"`
	Notes          string  `json:"notes"`
}

// RunMetaData 运行元数据响应数据
type RunMetaData struct {
	Run *model.RunMeta `json:"run"`
}

// RecordSeedRequest 记录种子使用请求。
// reason是调用方自定义结构的JSON，原样保存。
type RecordSeedRequest struct {
	SourceEntryID string          `json:"sourceEntryId" binding:"required"`
	FunctionName  string          `json:"functionName" binding:"required"`
	Score         *float64        `json:"score,omitempty"`
	Reason        json.RawMessage `json:"reason" binding:"required"`
	Snippet       string          `json:"snippet"`
}

// SeedData 种子使用记录响应数据
type SeedData struct {
	Seed *model.UsedSeed `json:"seed"`
}

// SeedListData 运行的种子使用列表响应数据
type SeedListData struct {
	RunID string            `json:"runId"`
	Seeds []*model.UsedSeed `json:"seeds"`
}
