package logger

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	t.Run("Successfully create log directory", func(t *testing.T) {
		tempDir := t.TempDir()
		_, err := NewLogger(tempDir, "debug", "synthesis-tracker")
		if err != nil {
			t.Fatalf("Failed to create log: %v", err)
		}
	})

	t.Run("Log level validation", func(t *testing.T) {
		// Use observer to test log levels
		observedCore, observedLogs := observer.New(zapcore.InfoLevel)
		logger := zap.New(observedCore).Sugar()

		logger.Debug("debug message") // Should not be recorded
		logger.Info("info message")   // Should be recorded

		logs := observedLogs.All()
		if len(logs) != 1 {
			t.Errorf("Expected 1 log record, got: %d", len(logs))
		}
		if logs[0].Message != "info message" {
			t.Errorf("Log message mismatch: %s", logs[0].Message)
		}
	})

	t.Run("Unknown level falls back to info", func(t *testing.T) {
		tempDir := t.TempDir()
		log, err := NewLogger(tempDir, "verbose", "synthesis-tracker")
		if err != nil {
			t.Fatalf("Failed to create log: %v", err)
		}
		log.Info("fallback level works")
	})

	t.Run("Failed to create log directory returns error", func(t *testing.T) {
		rootDir := t.TempDir()
		blocker := filepath.Join(rootDir, "blocked")
		if err := os.WriteFile(blocker, []byte("not a dir"), 0644); err != nil {
			t.Fatalf("Failed to create blocker file: %v", err)
		}

		_, err := NewLogger(filepath.Join(blocker, "logs"), "info", "synthesis-tracker")
		if err == nil {
			t.Error("Expected error when logs dir cannot be created")
		}
	})
}
