package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDebugLogger_WritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "debug.log")

	logger, err := NewDebugLogger(logPath)
	if err != nil {
		t.Fatalf("NewDebugLogger failed: %v", err)
	}

	logger.Log("processing %s (priority: %s)", "task_1", "P0")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "processing task_1 (priority: P0)") {
		t.Errorf("log content = %q, missing message", content)
	}
	if !strings.Contains(content, "Debug Log Started") {
		t.Errorf("log content = %q, missing start banner", content)
	}
}

func TestDebugLogger_EmptyPathIsNop(t *testing.T) {
	logger, err := NewDebugLogger("")
	if err != nil {
		t.Fatalf("NewDebugLogger(\"\") failed: %v", err)
	}
	logger.Log("dropped")
	if err := logger.Close(); err != nil {
		t.Errorf("Close on no-op logger returned %v", err)
	}
}

func TestDebugLogger_NilSafe(t *testing.T) {
	var logger *DebugLogger
	logger.Log("nil logger should not panic")
	if err := logger.Close(); err != nil {
		t.Errorf("Close on nil logger returned %v", err)
	}
}
