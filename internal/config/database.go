package config

import (
	"time"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DataDir           string        `json:"dataDir"`           // 数据库文件存储目录
	DatabaseName      string        `json:"databaseName"`      // 数据库文件名
	MaxOpenConns      int           `json:"maxOpenConns"`      // 最大打开连接数
	MaxIdleConns      int           `json:"maxIdleConns"`      // 最大空闲连接数
	ConnMaxLifetime   time.Duration `json:"connMaxLifetime"`   // 连接最大生命周期
	ConnMaxIdleTime   time.Duration `json:"connMaxIdleTime"`   // 连接最大空闲时间
	EnableWAL         bool          `json:"enableWAL"`         // 启用WAL模式
	EnableForeignKeys bool          `json:"enableForeignKeys"` // 启用外键约束
}

// DefaultDatabaseConfig 默认数据库配置
func DefaultDatabaseConfig(dataDir string) *DatabaseConfig {
	return &DatabaseConfig{
		DataDir:           dataDir,
		DatabaseName:      "synthesis_tracker.db",
		MaxOpenConns:      5,
		MaxIdleConns:      3,
		ConnMaxLifetime:   15 * time.Minute,
		ConnMaxIdleTime:   3 * time.Minute, // 连接空闲超过3分钟则关闭
		EnableWAL:         true,
		EnableForeignKeys: true,
	}
}
