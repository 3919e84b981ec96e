// internal/dto/corpus.go - 语料库API请求和响应数据结构定义
package dto

import "synthesis-tracker/internal/model"

// InsertCorpusRequest 追加语料条目请求。signature为原始签名文本，
// 服务端归一化后生成signatureKey。
type InsertCorpusRequest struct {
	Name      string  `json:"name" binding:"required"`
	Signature string  `json:"signature"`
	Snippet   string  `json:"snippet" binding:"required"`
	Language  string  `json:"language" binding:"required"`
	Score     float64 `json:"score"`
	Passed    int     `json:"passed"`
	Total     int     `json:"total"`
	RunID     string  `json:"runId" binding:"required"`
}

// QueryCorpusRequest 语料库分页查询请求
type QueryCorpusRequest struct {
	NamePrefix   string   `form:"namePrefix"`
	MinScore     *float64 `form:"minScore"`
	SignatureKey string   `form:"signatureKey"`
	Limit        int      `form:"limit"`
	Offset       int      `form:"offset"`
}

// CorpusPageData 语料库分页查询响应数据
type CorpusPageData struct {
	Items   []*model.CorpusEntry `json:"items"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
	HasMore bool                 `json:"hasMore"`
}

// BestCorpusRequest 按签名键取最优语料请求
type BestCorpusRequest struct {
	SignatureKey string `form:"signatureKey" binding:"required"`
	K            int    `form:"k"`
}

// CorpusEntryData 单条语料响应数据
type CorpusEntryData struct {
	Entry *model.CorpusEntry `json:"entry"`
}

// CorpusListData 语料列表响应数据
type CorpusListData struct {
	Entries []*model.CorpusEntry `json:"entries"`
}
