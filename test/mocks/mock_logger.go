package mocks

import (
	"fmt"

	"github.com/stretchr/testify/mock"
)

type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, v ...interface{}) {
	fmt.Printf("[MOCK DEBUG] %s\n", fmt.Sprintf(format, v...)) // 输出日志
}

func (m *MockLogger) Info(format string, v ...interface{}) {
	fmt.Printf("[MOCK INFO] %s\n", fmt.Sprintf(format, v...)) // 输出日志
}

func (m *MockLogger) Warn(format string, v ...interface{}) {
	fmt.Printf("[MOCK WARN] %s\n", fmt.Sprintf(format, v...)) // 输出日志
}

func (m *MockLogger) Error(format string, v ...interface{}) {
	fmt.Printf("[MOCK ERROR] %s\n", fmt.Sprintf(format, v...)) // 输出日志
}

func (m *MockLogger) Fatal(format string, v ...interface{}) {
	fmt.Printf("[MOCK FATAL] %s\n", fmt.Sprintf(format, v...)) // 输出日志
}
