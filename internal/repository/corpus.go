package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"synthesis-tracker/internal/database"
	"synthesis-tracker/internal/errs"
	"synthesis-tracker/internal/model"
	"synthesis-tracker/pkg/logger"
)

// CorpusRepository 语料库数据访问层。语料库只增不改：
// 同一signatureKey的不同实现并存，修正以新条目表达。
type CorpusRepository interface {
	// Insert 追加语料条目
	Insert(entry *model.CorpusEntry) error
	// GetByID 根据ID获取语料条目
	GetByID(id string) (*model.CorpusEntry, error)
	// Query 按过滤条件分页查询，最新优先；hasMore表示后面还有更多条目
	Query(filter model.CorpusFilter, limit, offset int) ([]*model.CorpusEntry, bool, error)
	// BestBySignature 按签名键返回得分最高的k个条目
	BestBySignature(signatureKey string, k int) ([]*model.CorpusEntry, error)
	// Exists 判断条目是否存在
	Exists(id string) (bool, error)
}

// corpusRepository 语料库Repository实现
type corpusRepository struct {
	db     database.DatabaseManager
	logger logger.Logger
}

// NewCorpusRepository 创建语料库Repository
func NewCorpusRepository(db database.DatabaseManager, logger logger.Logger) CorpusRepository {
	return &corpusRepository{
		db:     db,
		logger: logger,
	}
}

const corpusColumns = "id, signature_key, name, snippet, language, score, passed, total, complexity, run_id, created_at"

// Insert 追加语料条目
func (r *corpusRepository) Insert(entry *model.CorpusEntry) error {
	query := `
		INSERT INTO corpus (` + corpusColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.GetDB().Exec(query,
		entry.ID,
		entry.SignatureKey,
		entry.Name,
		entry.Snippet,
		entry.Language,
		entry.Score,
		entry.Passed,
		entry.Total,
		entry.Complexity,
		entry.RunID,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert corpus entry: %v", err)
		return fmt.Errorf("failed to insert corpus entry: %w", err)
	}

	return nil
}

// GetByID 根据ID获取语料条目
func (r *corpusRepository) GetByID(id string) (*model.CorpusEntry, error) {
	query := `SELECT ` + corpusColumns + ` FROM corpus WHERE id = ?`

	row := r.db.GetDB().QueryRow(query, id)
	entry, err := scanCorpusEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("corpus entry %s: %w", id, errs.ErrRecordNotFound)
		}
		r.logger.Error("Failed to get corpus entry by id: %v", err)
		return nil, fmt.Errorf("failed to get corpus entry: %w", err)
	}

	return entry, nil
}

// Query 按过滤条件分页查询，最新优先
func (r *corpusRepository) Query(filter model.CorpusFilter, limit, offset int) ([]*model.CorpusEntry, bool, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var conditions []string
	var args []interface{}

	if filter.NamePrefix != "" {
		conditions = append(conditions, `name LIKE ? ESCAPE '\'`)
		args = append(args, escapeLikePrefix(filter.NamePrefix)+"%")
	}
	if filter.MinScore != nil {
		conditions = append(conditions, "score >= ?")
		args = append(args, *filter.MinScore)
	}
	if filter.SignatureKey != "" {
		conditions = append(conditions, "signature_key = ?")
		args = append(args, filter.SignatureKey)
	}

	query := `SELECT ` + corpusColumns + ` FROM corpus`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	// 多取一行用于判断hasMore
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit+1, offset)

	rows, err := r.db.GetDB().Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to query corpus: %v", err)
		return nil, false, fmt.Errorf("failed to query corpus: %w", err)
	}
	defer rows.Close()

	entries, err := scanCorpusEntries(rows)
	if err != nil {
		r.logger.Error("Failed to scan corpus rows: %v", err)
		return nil, false, fmt.Errorf("failed to scan corpus rows: %w", err)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}
	return entries, hasMore, nil
}

// BestBySignature 按签名键返回得分最高的k个条目
func (r *corpusRepository) BestBySignature(signatureKey string, k int) ([]*model.CorpusEntry, error) {
	if k <= 0 {
		k = 10
	}

	query := `
		SELECT ` + corpusColumns + ` FROM corpus
		WHERE signature_key = ?
		ORDER BY score DESC, passed DESC, created_at DESC
		LIMIT ?
	`

	rows, err := r.db.GetDB().Query(query, signatureKey, k)
	if err != nil {
		r.logger.Error("Failed to query best corpus entries: %v", err)
		return nil, fmt.Errorf("failed to query best corpus entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanCorpusEntries(rows)
	if err != nil {
		r.logger.Error("Failed to scan corpus rows: %v", err)
		return nil, fmt.Errorf("failed to scan corpus rows: %w", err)
	}
	return entries, nil
}

// Exists 判断条目是否存在
func (r *corpusRepository) Exists(id string) (bool, error) {
	var one int
	err := r.db.GetDB().QueryRow("SELECT 1 FROM corpus WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check corpus entry existence: %w", err)
	}
	return true, nil
}

// rowScanner 兼容*sql.Row和*sql.Rows的扫描接口
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanCorpusEntry 扫描单条语料记录
func scanCorpusEntry(row rowScanner) (*model.CorpusEntry, error) {
	var entry model.CorpusEntry
	var createdAt time.Time
	err := row.Scan(
		&entry.ID,
		&entry.SignatureKey,
		&entry.Name,
		&entry.Snippet,
		&entry.Language,
		&entry.Score,
		&entry.Passed,
		&entry.Total,
		&entry.Complexity,
		&entry.RunID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	entry.CreatedAt = createdAt
	return &entry, nil
}

// scanCorpusEntries 扫描多条语料记录
func scanCorpusEntries(rows *sql.Rows) ([]*model.CorpusEntry, error) {
	var entries []*model.CorpusEntry
	for rows.Next() {
		entry, err := scanCorpusEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// escapeLikePrefix 转义LIKE模式中的通配符
func escapeLikePrefix(prefix string) string {
	prefix = strings.ReplaceAll(prefix, "%", `\%`)
	return strings.ReplaceAll(prefix, "_", `\_`)
}
