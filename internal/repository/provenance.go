package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"synthesis-tracker/internal/database"
	"synthesis-tracker/internal/errs"
	"synthesis-tracker/internal/model"
	"synthesis-tracker/pkg/logger"
)

// RunMetaRepository 运行元数据访问层
type RunMetaRepository interface {
	// Create 记录一次合成运行的配置快照，runID重复时返回ErrDuplicateRun
	Create(meta *model.RunMeta) error
	// GetByRunID 根据runID获取运行元数据
	GetByRunID(runID string) (*model.RunMeta, error)
	// GetLatest 获取最近一次运行的元数据
	GetLatest() (*model.RunMeta, error)
	// Exists 判断运行是否已记录
	Exists(runID string) (bool, error)
}

// UsedSeedRepository 种子溯源数据访问层
type UsedSeedRepository interface {
	// Create 记录一次种子使用，运行或来源条目不存在时分别返回
	// ErrUnknownRun和ErrUnknownSourceEntry
	Create(seed *model.UsedSeed) error
	// ListByRunID 按时间升序列出某次运行使用的全部种子
	ListByRunID(runID string) ([]*model.UsedSeed, error)
}

// runMetaRepository 运行元数据Repository实现
type runMetaRepository struct {
	db     database.DatabaseManager
	logger logger.Logger
}

// NewRunMetaRepository 创建运行元数据Repository
func NewRunMetaRepository(db database.DatabaseManager, logger logger.Logger) RunMetaRepository {
	return &runMetaRepository{
		db:     db,
		logger: logger,
	}
}

const runMetaColumns = "run_id, timestamp, seed_bias, seeding_enabled, max_iters, beam, notes"

// Create 记录一次合成运行的配置快照
func (r *runMetaRepository) Create(meta *model.RunMeta) error {
	tx, err := r.db.BeginTransaction()
	if err != nil {
		r.logger.Error("Failed to begin transaction: %v", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 唯一性检查与插入在同一事务内，保证runID不会被并发写入两次
	var one int
	err = tx.QueryRow("SELECT 1 FROM run_meta WHERE run_id = ?", meta.RunID).Scan(&one)
	if err == nil {
		return fmt.Errorf("run %s: %w", meta.RunID, errs.ErrDuplicateRun)
	}
	if err != sql.ErrNoRows {
		r.logger.Error("Failed to check run existence: %v", err)
		return fmt.Errorf("failed to check run existence: %w", err)
	}

	query := `
		INSERT INTO run_meta (` + runMetaColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query,
		meta.RunID,
		meta.Timestamp,
		meta.SeedBias,
		meta.SeedingEnabled,
		meta.MaxIters,
		meta.Beam,
		meta.Notes,
	)
	if err != nil {
		r.logger.Error("Failed to insert run meta: %v", err)
		return fmt.Errorf("failed to insert run meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit run meta: %v", err)
		return fmt.Errorf("failed to commit run meta: %w", err)
	}
	return nil
}

// GetByRunID 根据runID获取运行元数据
func (r *runMetaRepository) GetByRunID(runID string) (*model.RunMeta, error) {
	query := `SELECT ` + runMetaColumns + ` FROM run_meta WHERE run_id = ?`

	meta, err := scanRunMeta(r.db.GetDB().QueryRow(query, runID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s: %w", runID, errs.ErrRecordNotFound)
		}
		r.logger.Error("Failed to get run meta: %v", err)
		return nil, fmt.Errorf("failed to get run meta: %w", err)
	}
	return meta, nil
}

// GetLatest 获取最近一次运行的元数据
func (r *runMetaRepository) GetLatest() (*model.RunMeta, error) {
	query := `SELECT ` + runMetaColumns + ` FROM run_meta ORDER BY timestamp DESC, run_id DESC LIMIT 1`

	meta, err := scanRunMeta(r.db.GetDB().QueryRow(query))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no runs recorded: %w", errs.ErrRecordNotFound)
		}
		r.logger.Error("Failed to get latest run meta: %v", err)
		return nil, fmt.Errorf("failed to get latest run meta: %w", err)
	}
	return meta, nil
}

// Exists 判断运行是否已记录
func (r *runMetaRepository) Exists(runID string) (bool, error) {
	var one int
	err := r.db.GetDB().QueryRow("SELECT 1 FROM run_meta WHERE run_id = ?", runID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check run existence: %w", err)
	}
	return true, nil
}

// scanRunMeta 扫描运行元数据记录
func scanRunMeta(row rowScanner) (*model.RunMeta, error) {
	var meta model.RunMeta
	var timestamp time.Time
	var beam sql.NullInt64
	err := row.Scan(
		&meta.RunID,
		&timestamp,
		&meta.SeedBias,
		&meta.SeedingEnabled,
		&meta.MaxIters,
		&beam,
		&meta.Notes,
	)
	if err != nil {
		return nil, err
	}
	meta.Timestamp = timestamp
	if beam.Valid {
		b := int(beam.Int64)
		meta.Beam = &b
	}
	return &meta, nil
}

// usedSeedRepository 种子溯源Repository实现
type usedSeedRepository struct {
	db     database.DatabaseManager
	logger logger.Logger
}

// NewUsedSeedRepository 创建种子溯源Repository
func NewUsedSeedRepository(db database.DatabaseManager, logger logger.Logger) UsedSeedRepository {
	return &usedSeedRepository{
		db:     db,
		logger: logger,
	}
}

const usedSeedColumns = "id, run_id, source_entry_id, function_name, score, reason, snippet, timestamp"

// Create 记录一次种子使用。外键目标的存在性检查和插入在同一事务里完成，
// 避免检查通过后目标行在插入前消失。
func (r *usedSeedRepository) Create(seed *model.UsedSeed) error {
	tx, err := r.db.BeginTransaction()
	if err != nil {
		r.logger.Error("Failed to begin transaction: %v", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRow("SELECT 1 FROM run_meta WHERE run_id = ?", seed.RunID).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("run %s: %w", seed.RunID, errs.ErrUnknownRun)
	}
	if err != nil {
		r.logger.Error("Failed to check run existence: %v", err)
		return fmt.Errorf("failed to check run existence: %w", err)
	}

	err = tx.QueryRow("SELECT 1 FROM corpus WHERE id = ?", seed.SourceEntryID).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("corpus entry %s: %w", seed.SourceEntryID, errs.ErrUnknownSourceEntry)
	}
	if err != nil {
		r.logger.Error("Failed to check source entry existence: %v", err)
		return fmt.Errorf("failed to check source entry existence: %w", err)
	}

	query := `
		INSERT INTO used_seeds (` + usedSeedColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query,
		seed.ID,
		seed.RunID,
		seed.SourceEntryID,
		seed.FunctionName,
		seed.Score,
		string(seed.Reason),
		seed.Snippet,
		seed.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to insert used seed: %v", err)
		return fmt.Errorf("failed to insert used seed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit used seed: %v", err)
		return fmt.Errorf("failed to commit used seed: %w", err)
	}
	return nil
}

// ListByRunID 按时间升序列出某次运行使用的全部种子
func (r *usedSeedRepository) ListByRunID(runID string) ([]*model.UsedSeed, error) {
	query := `
		SELECT ` + usedSeedColumns + ` FROM used_seeds
		WHERE run_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := r.db.GetDB().Query(query, runID)
	if err != nil {
		r.logger.Error("Failed to list used seeds: %v", err)
		return nil, fmt.Errorf("failed to list used seeds: %w", err)
	}
	defer rows.Close()

	var seeds []*model.UsedSeed
	for rows.Next() {
		var seed model.UsedSeed
		var timestamp time.Time
		var score sql.NullFloat64
		var reason string
		err = rows.Scan(
			&seed.ID,
			&seed.RunID,
			&seed.SourceEntryID,
			&seed.FunctionName,
			&score,
			&reason,
			&seed.Snippet,
			&timestamp,
		)
		if err != nil {
			r.logger.Error("Failed to scan used seed: %v", err)
			return nil, fmt.Errorf("failed to scan used seed: %w", err)
		}
		seed.Reason = json.RawMessage(reason)
		seed.Timestamp = timestamp
		if score.Valid {
			s := score.Float64
			seed.Score = &s
		}
		seeds = append(seeds, &seed)
	}
	return seeds, rows.Err()
}
