package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Farman-RT/QuickSaver/internal/config"
	"github.com/Farman-RT/QuickSaver/internal/logging"
	"github.com/Farman-RT/QuickSaver/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("server ready")

	if !strings.Contains(readLog(t, cfg.LogPath()), "server ready") {
		t.Fatal("expected message in configured log file")
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "fetch")
	component.Info("artifact resolved", logging.String("token", "video-abc.mp4"), logging.Error(errors.New("two words")))
	component.Debug("hidden")

	content := readLog(t, logPath)
	if !strings.Contains(content, "INFO fetch: artifact resolved") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if !strings.Contains(content, "token=video-abc.mp4") {
		t.Fatalf("expected token field, got %q", content)
	}
	if !strings.Contains(content, `error="two words"`) {
		t.Fatalf("expected quoted error, got %q", content)
	}
	if strings.Contains(content, "hidden") {
		t.Fatalf("expected debug line suppressed at info level, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRequestID(context.Background(), "req-1")
	ctx = services.WithFetchID(ctx, "0123456789abcdef")
	logging.WithContext(ctx, logger).Info("fetch started")

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["msg"] != "fetch started" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Fatalf("unexpected level: %v", entry["level"])
	}
	if entry[logging.FieldCorrelationID] != "req-1" {
		t.Fatalf("expected correlation id, got %v", entry[logging.FieldCorrelationID])
	}
	if entry[logging.FieldFetchID] != "0123456789abcdef" {
		t.Fatalf("expected fetch id, got %v", entry[logging.FieldFetchID])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatal("expected ts key")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "ledger queue full", "ledger_dropped", logging.String(logging.FieldImpact, "url not recorded"))

	content := readLog(t, logPath)
	for _, fragment := range []string{"event_type=ledger_dropped", "error_hint=", `impact="url not recorded"`} {
		if !strings.Contains(content, fragment) {
			t.Fatalf("expected %q in %q", fragment, content)
		}
	}
}
