package utils

import (
	"github.com/google/uuid"
)

// GenerateUUID 生成一个新的 UUID v7
func GenerateUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsValidUUID 检查字符串是否是有效的 UUID
func IsValidUUID(uuidStr string) bool {
	_, err := uuid.Parse(uuidStr)
	return err == nil
}
