package service

import (
	"time"

	"synthesis-tracker/internal/dto"
	"synthesis-tracker/internal/errs"
	"synthesis-tracker/internal/model"
	"synthesis-tracker/internal/repository"
	"synthesis-tracker/internal/utils"
	"synthesis-tracker/pkg/logger"
)

// ProvenanceService 运行元数据和种子溯源服务接口
type ProvenanceService interface {
	// RecordRun 记录一次合成运行的配置快照
	RecordRun(req *dto.RecordRunRequest) (*model.RunMeta, error)
	// GetRunMeta 根据runID获取运行元数据
	GetRunMeta(runID string) (*model.RunMeta, error)
	// GetLatestRunMeta 获取最近一次运行的元数据
	GetLatestRunMeta() (*model.RunMeta, error)
	// RecordSeedUsage 记录某次运行使用了哪条语料作为种子
	RecordSeedUsage(runID string, req *dto.RecordSeedRequest) (*model.UsedSeed, error)
	// ListSeedsForRun 按时间升序列出某次运行使用的全部种子
	ListSeedsForRun(runID string) ([]*model.UsedSeed, error)
}

// provenanceService 溯源服务实现
type provenanceService struct {
	runRepo  repository.RunMetaRepository
	seedRepo repository.UsedSeedRepository
	logger   logger.Logger
}

// NewProvenanceService 创建溯源服务
func NewProvenanceService(
	runRepo repository.RunMetaRepository,
	seedRepo repository.UsedSeedRepository,
	logger logger.Logger,
) ProvenanceService {
	return &provenanceService{
		runRepo:  runRepo,
		seedRepo: seedRepo,
		logger:   logger,
	}
}

// RecordRun 记录一次合成运行的配置快照
func (ps *provenanceService) RecordRun(req *dto.RecordRunRequest) (*model.RunMeta, error) {
	if err := validateRunConfig(req); err != nil {
		return nil, err
	}

	meta := &model.RunMeta{
		RunID:          req.RunID,
		Timestamp:      time.Now(),
		SeedBias:       req.SeedBias,
		SeedingEnabled: req.SeedingEnabled,
		MaxIters:       req.MaxIters,
		Beam:           req.Beam,
		Notes:          req.Notes,
	}
	if err := ps.runRepo.Create(meta); err != nil {
		return nil, err
	}

	ps.logger.Info("run %s recorded (seeding=%v, bias=%.2f, maxIters=%d)",
		meta.RunID, meta.SeedingEnabled, meta.SeedBias, meta.MaxIters)
	return meta, nil
}

// GetRunMeta 根据runID获取运行元数据
func (ps *provenanceService) GetRunMeta(runID string) (*model.RunMeta, error) {
	return ps.runRepo.GetByRunID(runID)
}

// GetLatestRunMeta 获取最近一次运行的元数据
func (ps *provenanceService) GetLatestRunMeta() (*model.RunMeta, error) {
	return ps.runRepo.GetLatest()
}

// RecordSeedUsage 记录某次运行使用了哪条语料作为种子
func (ps *provenanceService) RecordSeedUsage(runID string, req *dto.RecordSeedRequest) (*model.UsedSeed, error) {
	seed := &model.UsedSeed{
		ID:            utils.GenerateUUID(),
		RunID:         runID,
		SourceEntryID: req.SourceEntryID,
		FunctionName:  req.FunctionName,
		Score:         req.Score,
		Reason:        req.Reason,
		Snippet:       req.Snippet,
		Timestamp:     time.Now(),
	}
	if err := ps.seedRepo.Create(seed); err != nil {
		return nil, err
	}

	ps.logger.Debug("seed usage recorded for run %s: entry %s (%s)",
		runID, seed.SourceEntryID, seed.Reason)
	return seed, nil
}

// ListSeedsForRun 按时间升序列出某次运行使用的全部种子
func (ps *provenanceService) ListSeedsForRun(runID string) ([]*model.UsedSeed, error) {
	seeds, err := ps.seedRepo.ListByRunID(runID)
	if err != nil {
		return nil, err
	}
	if seeds == nil {
		seeds = []*model.UsedSeed{}
	}
	return seeds, nil
}

// validateRunConfig 校验运行配置：seedBias在[0,1]内，maxIters为正，
// beam给出时必须为正。
func validateRunConfig(req *dto.RecordRunRequest) error {
	if req.SeedBias < 0 || req.SeedBias > 1 {
		return errs.NewInvalidParamErr("seedBias", req.SeedBias)
	}
	if req.MaxIters <= 0 {
		return errs.NewInvalidParamErr("maxIters", req.MaxIters)
	}
	if req.Beam != nil && *req.Beam <= 0 {
		return errs.NewInvalidParamErr("beam", *req.Beam)
	}
	return nil
}
