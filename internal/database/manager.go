package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"synthesis-tracker/internal/config"
	"synthesis-tracker/pkg/logger"

	_ "github.com/mattn/go-sqlite3" // SQLite3驱动
)

// DatabaseManager 数据库管理器接口
type DatabaseManager interface {
	Initialize() error
	Close() error
	GetDB() *sql.DB
	BeginTransaction() (*sql.Tx, error)
}

// SQLiteManager SQLite数据库管理器实现
type SQLiteManager struct {
	db       *sql.DB
	config   *config.DatabaseConfig
	logger   logger.Logger
	mutex    sync.RWMutex
	migrator *Migrator
}

// NewSQLiteManager 创建SQLite数据库管理器
func NewSQLiteManager(config *config.DatabaseConfig, logger logger.Logger) DatabaseManager {
	return &SQLiteManager{
		config: config,
		logger: logger,
	}
}

// Initialize 初始化数据库连接和表结构
func (m *SQLiteManager) Initialize() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// 构建数据库文件路径
	dbPath := filepath.Join(m.config.DataDir, m.config.DatabaseName)

	// 创建数据目录
	if err := os.MkdirAll(m.config.DataDir, 0755); err != nil {
		return err
	}

	// 打开数据库连接
	dsn := dbPath + "?_busy_timeout=5000"
	if m.config.EnableForeignKeys {
		dsn += "&_foreign_keys=on"
	}
	if m.config.EnableWAL {
		dsn += "&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return err
	}

	// 配置连接池
	db.SetMaxOpenConns(m.config.MaxOpenConns)
	db.SetMaxIdleConns(m.config.MaxIdleConns)
	db.SetConnMaxLifetime(m.config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(m.config.ConnMaxIdleTime)

	// 测试连接
	if err := db.Ping(); err != nil {
		return err
	}

	m.db = db

	// 使用迁移器自动执行数据库迁移
	m.migrator = NewMigrator(m.db, m.logger)
	if err := m.migrator.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	m.logger.Info("Database initialized successfully")
	return nil
}

// Close 关闭数据库连接
func (m *SQLiteManager) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// GetDB 获取数据库连接
func (m *SQLiteManager) GetDB() *sql.DB {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.db
}

// BeginTransaction 开始事务
func (m *SQLiteManager) BeginTransaction() (*sql.Tx, error) {
	return m.db.Begin()
}
