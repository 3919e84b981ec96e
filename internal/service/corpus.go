package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"synthesis-tracker/internal/dto"
	"synthesis-tracker/internal/errs"
	"synthesis-tracker/internal/model"
	"synthesis-tracker/internal/repository"
	"synthesis-tracker/internal/utils"
	"synthesis-tracker/pkg/complexity"
	"synthesis-tracker/pkg/logger"
	"synthesis-tracker/pkg/metrics"
	"synthesis-tracker/pkg/signature"
)

// scoreTolerance 浮点通过率和passed/total的允许偏差
const scoreTolerance = 1e-6

// CorpusService 语料库服务接口。语料库只增不改。
type CorpusService interface {
	// Insert 校验并追加语料条目，签名键和复杂度由服务端计算
	Insert(req *dto.InsertCorpusRequest) (*model.CorpusEntry, error)
	// Query 按过滤条件分页查询，最新优先
	Query(req *dto.QueryCorpusRequest) (*dto.CorpusPageData, error)
	// GetByID 根据ID获取语料条目
	GetByID(id string) (*model.CorpusEntry, error)
	// BestBySignature 按签名键返回得分最高的k个条目
	BestBySignature(signatureKey string, k int) ([]*model.CorpusEntry, error)
}

// corpusService 语料库服务实现
type corpusService struct {
	corpusRepo repository.CorpusRepository
	metrics    *metrics.TrackerMetrics
	logger     logger.Logger
}

// NewCorpusService 创建语料库服务
func NewCorpusService(
	corpusRepo repository.CorpusRepository,
	trackerMetrics *metrics.TrackerMetrics,
	logger logger.Logger,
) CorpusService {
	return &corpusService{
		corpusRepo: corpusRepo,
		metrics:    trackerMetrics,
		logger:     logger,
	}
}

// Insert 校验并追加语料条目
func (cs *corpusService) Insert(req *dto.InsertCorpusRequest) (*model.CorpusEntry, error) {
	if err := validateEntry(req); err != nil {
		return nil, err
	}

	entry := &model.CorpusEntry{
		ID:           utils.GenerateUUID(),
		SignatureKey: signature.Key(req.Name, req.Signature),
		Name:         req.Name,
		Snippet:      req.Snippet,
		Language:     req.Language,
		Score:        req.Score,
		Passed:       req.Passed,
		Total:        req.Total,
		Complexity:   complexity.Estimate(req.Language, req.Snippet),
		RunID:        req.RunID,
		CreatedAt:    time.Now(),
	}

	if err := cs.corpusRepo.Insert(entry); err != nil {
		return nil, err
	}

	cs.metrics.CorpusInserts.Add(context.Background(), 1)
	cs.logger.Debug("corpus entry %s inserted (signature %s, score %.3f)",
		entry.ID, entry.SignatureKey, entry.Score)
	return entry, nil
}

// Query 按过滤条件分页查询
func (cs *corpusService) Query(req *dto.QueryCorpusRequest) (*dto.CorpusPageData, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	filter := model.CorpusFilter{
		NamePrefix:   req.NamePrefix,
		MinScore:     req.MinScore,
		SignatureKey: req.SignatureKey,
	}
	entries, hasMore, err := cs.corpusRepo.Query(filter, limit, offset)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*model.CorpusEntry{}
	}

	return &dto.CorpusPageData{
		Items:   entries,
		Limit:   limit,
		Offset:  offset,
		HasMore: hasMore,
	}, nil
}

// GetByID 根据ID获取语料条目
func (cs *corpusService) GetByID(id string) (*model.CorpusEntry, error) {
	return cs.corpusRepo.GetByID(id)
}

// BestBySignature 按签名键返回得分最高的k个条目
func (cs *corpusService) BestBySignature(signatureKey string, k int) ([]*model.CorpusEntry, error) {
	entries, err := cs.corpusRepo.BestBySignature(signatureKey, k)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*model.CorpusEntry{}
	}
	return entries, nil
}

// validateEntry 校验语料条目的一致性：passed不得超过total，
// total大于0时score必须等于passed/total。total为0表示没有测例，
// score不做一致性约束。
func validateEntry(req *dto.InsertCorpusRequest) error {
	if req.Passed < 0 || req.Total < 0 {
		return fmt.Errorf("passed and total must be non-negative: %w", errs.ErrInvalidEntry)
	}
	if req.Passed > req.Total {
		return fmt.Errorf("passed %d exceeds total %d: %w", req.Passed, req.Total, errs.ErrInvalidEntry)
	}

	if req.Total > 0 {
		expected := float64(req.Passed) / float64(req.Total)
		if math.Abs(req.Score-expected) > scoreTolerance {
			return fmt.Errorf("score %.6f does not match passed/total %.6f: %w", req.Score, expected, errs.ErrInvalidEntry)
		}
	}
	return nil
}
