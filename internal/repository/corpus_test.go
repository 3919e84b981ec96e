package repository

import (
	"fmt"
	"os"
	"testing"
	"time"

	"synthesis-tracker/internal/config"
	"synthesis-tracker/internal/database"
	"synthesis-tracker/internal/errs"
	"synthesis-tracker/internal/model"
	"synthesis-tracker/internal/utils"
	"synthesis-tracker/test/mocks"

	_ "github.com/mattn/go-sqlite3" // SQLite3驱动
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCorpusDB(t *testing.T) (database.DatabaseManager, func()) {
	// 创建临时目录用于测试数据库
	tempDir, err := os.MkdirTemp("", "test-corpus-db")
	require.NoError(t, err)

	// 创建测试日志记录器
	logger := &mocks.MockLogger{}

	// 创建数据库配置
	dbConfig := &config.DatabaseConfig{
		DataDir:         tempDir,
		DatabaseName:    "test-corpus.db",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	}

	// 创建数据库管理器
	dbManager := database.NewSQLiteManager(dbConfig, logger)
	err = dbManager.Initialize()
	require.NoError(t, err)

	cleanup := func() {
		dbManager.Close()
		os.RemoveAll(tempDir)
	}

	return dbManager, cleanup
}

func newTestEntry(name, signatureKey string, score float64, passed, total int) *model.CorpusEntry {
	return &model.CorpusEntry{
		ID:           utils.GenerateUUID(),
		SignatureKey: signatureKey,
		Name:         name,
		Snippet:      "def " + name + "(): pass",
		Language:     "python",
		Score:        score,
		Passed:       passed,
		Total:        total,
		Complexity:   1,
		RunID:        "run-0001",
		CreatedAt:    time.Now(),
	}
}

func TestCorpusRepository(t *testing.T) {
	dbManager, cleanup := setupTestCorpusDB(t)
	defer cleanup()

	logger := &mocks.MockLogger{}
	repo := NewCorpusRepository(dbManager, logger)

	t.Run("InsertAndGetByID", func(t *testing.T) {
		entry := newTestEntry("reverse_list", "reverse_list(L)->L", 1.0, 4, 4)
		err := repo.Insert(entry)
		require.NoError(t, err)

		got, err := repo.GetByID(entry.ID)
		require.NoError(t, err)
		assert.Equal(t, entry.ID, got.ID)
		assert.Equal(t, entry.SignatureKey, got.SignatureKey)
		assert.Equal(t, entry.Name, got.Name)
		assert.Equal(t, entry.Score, got.Score)
		assert.Equal(t, entry.Passed, got.Passed)
		assert.Equal(t, entry.Total, got.Total)
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		_, err := repo.GetByID("no-such-id")
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrRecordNotFound)
	})

	t.Run("AppendOnlyKeepsBothEntries", func(t *testing.T) {
		// 同签名键的两条实现并存，修正以新条目表达
		first := newTestEntry("sum_pair", "sum_pair(I,I)->I", 0.5, 2, 4)
		second := newTestEntry("sum_pair", "sum_pair(I,I)->I", 1.0, 4, 4)
		require.NoError(t, repo.Insert(first))
		require.NoError(t, repo.Insert(second))

		entries, _, err := repo.Query(model.CorpusFilter{SignatureKey: "sum_pair(I,I)->I"}, 10, 0)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}

func TestCorpusRepositoryQuery(t *testing.T) {
	dbManager, cleanup := setupTestCorpusDB(t)
	defer cleanup()

	logger := &mocks.MockLogger{}
	repo := NewCorpusRepository(dbManager, logger)

	base := time.Now().Add(-time.Hour)
	names := []string{"sort_ints", "sort_strings", "merge_lists", "merge_maps", "find_max"}
	for i, name := range names {
		entry := newTestEntry(name, fmt.Sprintf("%s(L)->L", name), float64(i)*0.25, i, 4)
		entry.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Insert(entry))
	}

	t.Run("NamePrefixFilter", func(t *testing.T) {
		entries, hasMore, err := repo.Query(model.CorpusFilter{NamePrefix: "sort_"}, 10, 0)
		require.NoError(t, err)
		assert.False(t, hasMore)
		require.Len(t, entries, 2)
		for _, e := range entries {
			assert.Contains(t, e.Name, "sort_")
		}
	})

	t.Run("MinScoreFilter", func(t *testing.T) {
		minScore := 0.5
		entries, _, err := repo.Query(model.CorpusFilter{MinScore: &minScore}, 10, 0)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		for _, e := range entries {
			assert.GreaterOrEqual(t, e.Score, 0.5)
		}
	})

	t.Run("CombinedFilters", func(t *testing.T) {
		minScore := 0.5
		entries, _, err := repo.Query(model.CorpusFilter{NamePrefix: "merge_", MinScore: &minScore}, 10, 0)
		require.NoError(t, err)
		require.Len(t, entries, 2)
	})

	t.Run("NewestFirstOrdering", func(t *testing.T) {
		entries, _, err := repo.Query(model.CorpusFilter{}, 10, 0)
		require.NoError(t, err)
		require.Len(t, entries, 5)
		for i := 1; i < len(entries); i++ {
			assert.False(t, entries[i].CreatedAt.After(entries[i-1].CreatedAt))
		}
	})

	t.Run("PaginationHasMore", func(t *testing.T) {
		page1, hasMore, err := repo.Query(model.CorpusFilter{}, 2, 0)
		require.NoError(t, err)
		assert.True(t, hasMore)
		require.Len(t, page1, 2)

		page2, hasMore, err := repo.Query(model.CorpusFilter{}, 2, 2)
		require.NoError(t, err)
		assert.True(t, hasMore)
		require.Len(t, page2, 2)

		page3, hasMore, err := repo.Query(model.CorpusFilter{}, 2, 4)
		require.NoError(t, err)
		assert.False(t, hasMore)
		require.Len(t, page3, 1)

		// 三页之间无重叠
		seen := map[string]bool{}
		for _, e := range append(append(page1, page2...), page3...) {
			assert.False(t, seen[e.ID])
			seen[e.ID] = true
		}
	})

	t.Run("OffsetBeyondEnd", func(t *testing.T) {
		entries, hasMore, err := repo.Query(model.CorpusFilter{}, 10, 100)
		require.NoError(t, err)
		assert.False(t, hasMore)
		assert.Empty(t, entries)
	})

	t.Run("NoMatches", func(t *testing.T) {
		entries, hasMore, err := repo.Query(model.CorpusFilter{NamePrefix: "zzz_"}, 10, 0)
		require.NoError(t, err)
		assert.False(t, hasMore)
		assert.Empty(t, entries)
	})
}

func TestCorpusRepositoryBestBySignature(t *testing.T) {
	dbManager, cleanup := setupTestCorpusDB(t)
	defer cleanup()

	logger := &mocks.MockLogger{}
	repo := NewCorpusRepository(dbManager, logger)

	sig := "fib(I)->I"
	scores := []float64{0.25, 1.0, 0.75, 0.5}
	for i, score := range scores {
		entry := newTestEntry("fib", sig, score, int(score*4), 4)
		entry.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Insert(entry))
	}

	best, err := repo.BestBySignature(sig, 2)
	require.NoError(t, err)
	require.Len(t, best, 2)
	assert.Equal(t, 1.0, best[0].Score)
	assert.Equal(t, 0.75, best[1].Score)

	none, err := repo.BestBySignature("unknown(I)->I", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}
