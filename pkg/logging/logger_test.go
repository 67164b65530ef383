package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// setupTestDir points the log directory at a temp dir and resets global state
func setupTestDir(t *testing.T) {
	t.Helper()

	origLogDir := logDir
	origInitErr := initErr
	origSessionID := sessionID

	logDir = t.TempDir()
	initErr = nil
	initOnce = sync.Once{}
	sessionID = ""
	sessionIDOnce = sync.Once{}

	t.Cleanup(func() {
		logDir = origLogDir
		initErr = origInitErr
		initOnce = sync.Once{}
		sessionID = origSessionID
		sessionIDOnce = sync.Once{}
	})
}

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	content, err := os.ReadFile(l.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("publish")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.component != "publish" {
		t.Errorf("Expected component 'publish', got %q", logger.component)
	}
	if logger.SessionID() == "" {
		t.Error("Expected non-empty session ID")
	}
	if _, err := os.Stat(logger.LogPath()); os.IsNotExist(err) {
		t.Errorf("Log file does not exist at %s", logger.LogPath())
	}
}

func TestLoggerFormatting(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Debugf("Debug message")
	logger.Infof("Attempt %d", 2)
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	content := readLog(t, logger)

	for _, pattern := range []string{
		"[test] [DEBUG] Debug message",
		"[test] [INFO] Attempt 2",
		"[test] [WARN] Warning message",
		"[test] [ERROR] Error message",
	} {
		if !strings.Contains(content, pattern) {
			t.Errorf("Log content missing expected pattern: %q\nContent:\n%s", pattern, content)
		}
	}
}

func TestWithSharesFile(t *testing.T) {
	setupTestDir(t)

	root, err := NewLogger("postnote")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer root.Close()

	editor := root.With("editor")
	editor.Infof("typing title")
	root.Infof("run started")

	if editor.LogPath() != root.LogPath() {
		t.Errorf("Expected same log path, got %q and %q", editor.LogPath(), root.LogPath())
	}

	content := readLog(t, root)
	if !strings.Contains(content, "[editor] [INFO] typing title") {
		t.Error("Log missing editor entries")
	}
	if !strings.Contains(content, "[postnote] [INFO] run started") {
		t.Error("Log missing root entries")
	}
}

func TestMultipleLoggersShareSession(t *testing.T) {
	setupTestDir(t)

	logger1, err := NewLogger("component1")
	if err != nil {
		t.Fatalf("Failed to create logger1: %v", err)
	}
	defer logger1.Close()

	logger2, err := NewLogger("component2")
	if err != nil {
		t.Fatalf("Failed to create logger2: %v", err)
	}
	defer logger2.Close()

	if logger1.SessionID() != logger2.SessionID() {
		t.Errorf("Expected same session ID, got %q and %q", logger1.SessionID(), logger2.SessionID())
	}
	if logger1.LogPath() != logger2.LogPath() {
		t.Errorf("Expected same log path, got %q and %q", logger1.LogPath(), logger2.LogPath())
	}
}

func TestGetLogDirectory(t *testing.T) {
	setupTestDir(t)

	dir, err := GetLogDirectory()
	if err != nil {
		t.Fatalf("Failed to get log directory: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Log directory does not exist or is not a directory: %s", dir)
	}
}

func TestLoggerClose(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestLogPathFormat(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	fileName := filepath.Base(logger.LogPath())
	if !strings.HasSuffix(fileName, "-postnote.log") {
		t.Errorf("Expected log file to end with '-postnote.log', got %q", fileName)
	}

	// UUID session IDs contain dashes
	sessionPart := strings.TrimSuffix(fileName, "-postnote.log")
	if !strings.Contains(sessionPart, "-") {
		t.Errorf("Expected session ID part to contain dashes (UUID format), got %q", sessionPart)
	}
}

func TestFallbackLogger(t *testing.T) {
	logger := newFallbackLogger("test", os.ErrPermission)

	if logger.LogPath() != "" {
		t.Errorf("Expected empty log path in fallback mode, got %q", logger.LogPath())
	}
	if logger.Writer() != os.Stderr {
		t.Error("Expected fallback writer to be stderr")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close on fallback logger failed: %v", err)
	}
}
